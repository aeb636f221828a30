package activity

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/nicolep/letterboxd-trmnl/app/snapshot"
)

// RSSParser reads the source site's public per-user RSS feed as an
// alternate activity source. The feed carries the film title, year,
// member rating and watched date in a site-specific XML namespace.
type RSSParser struct {
	gofeedParser *gofeed.Parser
}

func NewRSSParser() *RSSParser {
	return &RSSParser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses feed data into the same ordered review sequence the HTML
// extractor produces. Items without a film title (list announcements
// and the like) are skipped.
func (p *RSSParser) Run(data []byte) ([]snapshot.Review, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	reviews := []snapshot.Review{}
	for _, item := range feed.Items {
		review, ok := p.normalizeItem(item)
		if !ok {
			continue
		}
		reviews = append(reviews, review)
	}

	return reviews, nil
}

func (p *RSSParser) normalizeItem(item *gofeed.Item) (snapshot.Review, bool) {
	title := extensionValue(item, "filmTitle")
	year := extensionValue(item, "filmYear")
	if title == "" {
		title, year = splitItemTitle(item.Title)
	}
	if title == "" {
		return snapshot.Review{}, false
	}

	review := snapshot.Review{
		Title:  title,
		Year:   year,
		Review: plainText(item.Description),
		URL:    item.Link,
	}

	if value := extensionValue(item, "memberRating"); value != "" {
		if rating, err := strconv.ParseFloat(value, 64); err == nil {
			review.Rating = &rating
		}
	}
	review.RatingDisplay = snapshot.RatingDisplay(review.Rating)

	if watched := extensionValue(item, "watchedDate"); watched != "" {
		if t, err := time.Parse("2006-01-02", watched); err == nil {
			review.Date = t.Format(snapshot.DateLayout)
			review.DateShort = t.Format(snapshot.DateShortLayout)
		}
	}
	if review.Date == "" && item.PublishedParsed != nil {
		review.Date = item.PublishedParsed.Format(snapshot.DateLayout)
		review.DateShort = item.PublishedParsed.Format(snapshot.DateShortLayout)
	}

	return review, true
}

// extensionValue reads a value from the site's RSS namespace, e.g.
// <letterboxd:memberRating>3.5</letterboxd:memberRating>.
func extensionValue(item *gofeed.Item, name string) string {
	ns, ok := item.Extensions["letterboxd"]
	if !ok {
		return ""
	}
	values, ok := ns[name]
	if !ok || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}

// splitItemTitle recovers title and year from the item title form
// "Film Name, 2024 - ★★★½" used when the namespace fields are absent.
func splitItemTitle(s string) (string, string) {
	if idx := strings.LastIndex(s, " - "); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if idx := strings.LastIndex(s, ", "); idx >= 0 {
		candidate := strings.TrimSpace(s[idx+2:])
		if len(candidate) == 4 {
			if _, err := strconv.Atoi(candidate); err == nil {
				return strings.TrimSpace(s[:idx]), candidate
			}
		}
	}

	return s, ""
}

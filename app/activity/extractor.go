package activity

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"github.com/nicolep/letterboxd-trmnl/app/snapshot"
)

var (
	yearRe      = regexp.MustCompile(`(\d{4})`)
	brRe        = regexp.MustCompile(`(?i)<br\s*/?>`)
	spaceRe     = regexp.MustCompile(`\s+`)
	translateRe = regexp.MustCompile(`\s*Translate(\s*Translated from.*)?$`)
)

// Extractor turns raw activity-feed HTML into an ordered review
// sequence. Pure with respect to its inputs: the same HTML and base URL
// always produce the same records.
type Extractor struct {
	selectors Selectors
	slugRe    *regexp.Regexp
}

func NewExtractor(selectors Selectors) *Extractor {
	return &Extractor{
		selectors: selectors,
		slugRe:    regexp.MustCompile(regexp.QuoteMeta(selectors.FilmHrefMarker) + `([^/]+)/`),
	}
}

// Run extracts review records in document order (most recent first, per
// the source site's convention). Rows that are not logged/reviewed films
// (likes, follows) carry no title heading and are skipped, as are rows
// missing required fields. Relative hrefs resolve against baseURL.
func (e *Extractor) Run(data []byte, baseURL string) ([]snapshot.Review, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("HTML data is empty")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	reviews := []snapshot.Review{}
	doc.Find(e.selectors.Row).Each(func(i int, row *goquery.Selection) {
		review, ok := e.extractRow(row, base)
		if !ok {
			slog.Debug("Skipping activity entry without review data", "index", i)
			return
		}
		reviews = append(reviews, review)
	})

	return reviews, nil
}

func (e *Extractor) extractRow(row *goquery.Selection, base *url.URL) (snapshot.Review, bool) {
	title := e.extractTitle(row)
	if title == "" {
		return snapshot.Review{}, false
	}

	rating := e.extractRating(row)

	review := snapshot.Review{
		Title:         title,
		Year:          e.extractYear(row),
		Rating:        rating,
		RatingDisplay: snapshot.RatingDisplay(rating),
		Review:        e.extractReviewText(row),
	}

	review.Date, review.DateShort = e.extractDate(row)
	review.URL, review.Slug = e.extractFilmURL(row, base)

	return review, true
}

func (e *Extractor) extractTitle(row *goquery.Selection) string {
	heading := row.Find(e.selectors.TitleHeading).First()
	if heading.Length() == 0 {
		return ""
	}

	if link := heading.Find("a").First(); link.Length() > 0 {
		if title := normSpace(link.Text()); title != "" {
			return title
		}
	}

	return stripActivityVerbs(normSpace(heading.Text()))
}

func (e *Extractor) extractYear(row *goquery.Selection) string {
	var year string
	row.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if !strings.Contains(href, e.selectors.YearHrefPrefix) {
			return true
		}
		rest := href[strings.Index(href, e.selectors.YearHrefPrefix)+len(e.selectors.YearHrefPrefix):]
		if match := yearRe.FindString(rest); match != "" {
			year = match
			return false
		}
		return true
	})
	return year
}

// extractRating distinguishes "not rated" (no rating marker in the row,
// returns nil) from "rated zero" (marker present with value 0). The
// numeric class is authoritative; glyph counting is the fallback for
// markup that carries only the star characters.
func (e *Extractor) extractRating(row *goquery.Selection) *float64 {
	span := row.Find(e.selectors.RatingSpan).First()
	if span.Length() == 0 {
		return nil
	}

	class, _ := span.Attr("class")
	for _, token := range strings.Fields(class) {
		if !strings.HasPrefix(token, e.selectors.RatingClassPrefix) {
			continue
		}
		value, err := strconv.Atoi(strings.TrimPrefix(token, e.selectors.RatingClassPrefix))
		if err != nil {
			continue
		}
		// Class values count half-stars: rated-7 is 3.5 stars.
		rating := float64(value) / 2.0
		return &rating
	}

	if rating, found := snapshot.ParseGlyphs(span.Text()); found {
		return &rating
	}

	return nil
}

func (e *Extractor) extractReviewText(row *goquery.Selection) string {
	body := row.Find(e.selectors.ReviewBody).First()
	if body.Length() == 0 {
		return ""
	}

	html, err := body.Html()
	if err != nil {
		return normSpace(body.Text())
	}

	text := plainText(html)
	text = translateRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func (e *Extractor) extractDate(row *goquery.Selection) (string, string) {
	el := row.Find(e.selectors.Timestamp).First()
	if el.Length() == 0 {
		return "", ""
	}

	var parsed time.Time
	if attr, ok := el.Attr("datetime"); ok && attr != "" {
		if t, err := time.Parse(time.RFC3339, attr); err == nil {
			parsed = t
		} else if t, err := dateparse.ParseAny(attr); err == nil {
			parsed = t
		}
	}
	if parsed.IsZero() {
		if t, err := dateparse.ParseAny(normSpace(el.Text())); err == nil {
			parsed = t
		}
	}
	if parsed.IsZero() {
		return "", ""
	}

	return parsed.Format(snapshot.DateLayout), parsed.Format(snapshot.DateShortLayout)
}

func (e *Extractor) extractFilmURL(row *goquery.Selection, base *url.URL) (string, string) {
	var absolute, slug string
	row.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		groups := e.slugRe.FindStringSubmatch(href)
		if len(groups) < 2 {
			return true
		}

		slug = groups[1]
		if ref, err := url.Parse(href); err == nil {
			absolute = base.ResolveReference(ref).String()
		} else {
			absolute = href
		}
		return false
	})
	return absolute, slug
}

// plainText strips markup from an HTML fragment, decoding entities and
// collapsing whitespace. Line-break tags become a single space.
func plainText(fragment string) string {
	fragment = brRe.ReplaceAllString(fragment, " ")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return normSpace(fragment)
	}

	return normSpace(doc.Text())
}

func normSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// stripActivityVerbs drops the "watched"/"rewatched" verbs the activity
// heading mixes in with the film title.
func stripActivityVerbs(s string) string {
	fields := strings.Fields(s)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "watched", "rewatched", "reviewed", "rated":
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

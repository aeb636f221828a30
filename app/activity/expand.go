package activity

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/nicolep/letterboxd-trmnl/app/snapshot"
)

// Fetcher is the retrieval capability the expander needs. Satisfied by
// fetch.Client; declared here so this package stays testable without
// network access.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ReviewExpander replaces reviews the activity feed truncated with the
// full text from the review's own page.
type ReviewExpander struct {
	fetcher Fetcher
}

func NewReviewExpander(fetcher Fetcher) *ReviewExpander {
	return &ReviewExpander{fetcher: fetcher}
}

// Run expands truncated reviews in place. Expansion failures keep the
// truncated text; a partially expanded snapshot is still a valid one.
func (e *ReviewExpander) Run(ctx context.Context, reviews []snapshot.Review) []snapshot.Review {
	for i := range reviews {
		if !isTruncated(reviews[i].Review) || reviews[i].URL == "" {
			continue
		}

		full, err := e.expand(ctx, reviews[i].URL)
		if err != nil {
			slog.Warn("Failed to expand review, keeping truncated text",
				"title", reviews[i].Title, "url", reviews[i].URL, "error", err)
			continue
		}
		if full != "" {
			reviews[i].Review = full
		}
	}
	return reviews
}

func (e *ReviewExpander) expand(ctx context.Context, pageURL string) (string, error) {
	data, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), parsed)
	if err != nil {
		return "", err
	}

	text := normSpace(article.TextContent)
	text = translateRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text), nil
}

func isTruncated(review string) bool {
	return strings.HasSuffix(review, "…") || strings.HasSuffix(review, "...")
}

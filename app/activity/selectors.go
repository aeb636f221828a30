package activity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Selectors isolates every structural marker the extractor depends on.
// The source site's markup changes from time to time; when it does, the
// fix is a config edit here, not a change to the extraction logic.
type Selectors struct {
	// Row matches one activity entry in the feed.
	Row string `yaml:"row"`
	// TitleHeading matches the heading carrying the film title inside a row.
	TitleHeading string `yaml:"title_heading"`
	// YearHrefPrefix marks links whose href encodes the release year.
	YearHrefPrefix string `yaml:"year_href_prefix"`
	// RatingSpan matches the element carrying the rating marker.
	RatingSpan string `yaml:"rating_span"`
	// RatingClassPrefix prefixes the numeric rating class (e.g. rated-7).
	RatingClassPrefix string `yaml:"rating_class_prefix"`
	// ReviewBody matches the free-text review block.
	ReviewBody string `yaml:"review_body"`
	// Timestamp matches the element carrying the watch/log datetime.
	Timestamp string `yaml:"timestamp"`
	// FilmHrefMarker identifies hrefs that link to the reviewed film.
	FilmHrefMarker string `yaml:"film_href_marker"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		Row:               "section.activity-row",
		TitleHeading:      "h2.name",
		YearHrefPrefix:    "/films/year/",
		RatingSpan:        "span.rating",
		RatingClassPrefix: "rated-",
		ReviewBody:        "div.js-review-body",
		Timestamp:         "time[datetime]",
		FilmHrefMarker:    "/film/",
	}
}

// LoadSelectors reads a selector override file. Fields left empty in the
// file keep their defaults.
func LoadSelectors(path string) (Selectors, error) {
	selectors := DefaultSelectors()

	data, err := os.ReadFile(path)
	if err != nil {
		return selectors, fmt.Errorf("failed to read selectors file: %w", err)
	}

	if err := yaml.Unmarshal(data, &selectors); err != nil {
		return selectors, fmt.Errorf("invalid selectors file %s: %w", path, err)
	}

	if err := validateSelectors(selectors); err != nil {
		return selectors, fmt.Errorf("invalid selectors file %s: %w", path, err)
	}

	return selectors, nil
}

func validateSelectors(s Selectors) error {
	if s.Row == "" {
		return fmt.Errorf("row selector is required")
	}
	if s.TitleHeading == "" {
		return fmt.Errorf("title_heading selector is required")
	}
	if s.FilmHrefMarker == "" {
		return fmt.Errorf("film_href_marker is required")
	}
	return nil
}

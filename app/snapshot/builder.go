package snapshot

import (
	"math"
	"strings"
	"time"
)

// Display formats for the e-ink templates. Days and hours are
// zero-padded to keep column widths stable on the device.
const (
	DateLayout       = "Jan 02, 2006"
	DateShortLayout  = "Jan 02"
	UpdateTimeLayout = "Jan 02, 2006 03:04 PM"
)

// RatingDisplay renders a half-star rating as star glyphs: one filled
// star per full point, a half glyph for the remaining half point.
// A nil rating (entry was never rated) renders empty; a zero rating
// renders empty too, but the two remain distinguishable in the JSON.
func RatingDisplay(rating *float64) string {
	if rating == nil || *rating <= 0 {
		return ""
	}

	full := int(math.Floor(*rating))
	var b strings.Builder
	for i := 0; i < full; i++ {
		b.WriteRune('★')
	}
	if *rating-float64(full) >= 0.5 {
		b.WriteRune('½')
	}
	return b.String()
}

// ParseGlyphs sums star glyphs back into a numeric rating: each filled
// star counts 1.0, each half glyph 0.5. The second return value reports
// whether any glyph was present at all, so callers can tell "rated zero"
// apart from "not rated".
func ParseGlyphs(s string) (float64, bool) {
	var rating float64
	found := false
	for _, r := range s {
		switch r {
		case '★':
			rating += 1.0
			found = true
		case '½':
			rating += 0.5
			found = true
		}
	}
	return rating, found
}

// Build assembles the snapshot document from the ordered review
// sequence. Pure: identical inputs produce an identical snapshot.
// An empty sequence still yields a valid document with movies: [].
func Build(user string, reviews []Review, limit int, now time.Time) Snapshot {
	if limit > 0 && len(reviews) > limit {
		reviews = reviews[:limit]
	}

	movies := make([]Review, len(reviews))
	copy(movies, reviews)

	vars := MergeVariables{
		User:            user,
		UpdateTime:      now.In(time.Local).Format(UpdateTimeLayout),
		Movies:          movies,
		TotalActivities: len(movies),
	}

	if len(movies) > 0 {
		latest := movies[0]
		vars.LatestTitle = latest.Title
		vars.LatestYear = latest.Year
		vars.LatestRating = latest.RatingDisplay
		vars.LatestReview = latest.Review
		vars.LatestDate = latest.Date
	}

	return Snapshot{MergeVariables: vars}
}

package snapshot

// Review is one logged/reviewed film extracted from the activity feed.
type Review struct {
	Title         string   `json:"title"`
	Year          string   `json:"year"`
	Rating        *float64 `json:"rating"`
	RatingDisplay string   `json:"rating_display"`
	Review        string   `json:"review"`
	Date          string   `json:"date"`
	DateShort     string   `json:"date_short"`
	URL           string   `json:"url"`

	// Slug is the film identifier from the entry's href. Kept for
	// review expansion, not part of the emitted document.
	Slug string `json:"-"`
}

// MergeVariables is the payload the display service's templating layer
// consumes. The latest_* fields mirror movies[0] for templates that
// cannot iterate.
type MergeVariables struct {
	User            string   `json:"user"`
	UpdateTime      string   `json:"update_time"`
	Movies          []Review `json:"movies"`
	TotalActivities int      `json:"total_activities"`

	LatestTitle  string `json:"latest_title,omitempty"`
	LatestYear   string `json:"latest_year,omitempty"`
	LatestRating string `json:"latest_rating,omitempty"`
	LatestReview string `json:"latest_review,omitempty"`
	LatestDate   string `json:"latest_date,omitempty"`
}

// Snapshot is the emitted document, regenerated in full on every run.
type Snapshot struct {
	MergeVariables MergeVariables `json:"merge_variables"`
}

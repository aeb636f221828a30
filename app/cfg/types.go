package cfg

// Cfg holds the resolved application configuration.
type Cfg struct {
	// Source site
	User        string
	Source      string
	ActivityURL string
	RSSURL      string

	// Pipeline
	HTMLFile      string
	OutputFile    string
	SelectorsFile string
	Limit         int
	ExpandReviews bool

	// Fetching
	FetchTimeout int
	FetchRetries int
	UserAgent    string

	// Server
	Port            string
	RefreshSchedule string
	APIAccessKey    string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string

	// Command surface
	Command string
	Args    []string
}

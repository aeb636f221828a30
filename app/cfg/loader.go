package cfg

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Source site
	User        string `long:"user" env:"LETTERBOXD_USER" default:"NicoleP" description:"Letterboxd username whose activity is fetched"`
	Source      string `long:"source" env:"SOURCE" default:"activity" choice:"activity" choice:"rss" description:"Activity source: the ajax activity feed or the public RSS feed"`
	ActivityURL string `long:"activity-url" env:"ACTIVITY_URL" description:"Override the activity feed URL (derived from the username by default)"`
	RSSURL      string `long:"rss-url" env:"RSS_URL" description:"Override the RSS feed URL (derived from the username by default)"`

	// Pipeline
	HTMLFile      string `long:"html-file" env:"HTML_FILE" default:"activity.html" description:"Path the fetched HTML is saved to and parsed from"`
	OutputFile    string `long:"output-file" env:"OUTPUT_FILE" default:"letterboxd_trmnl_data.json" description:"Path of the emitted snapshot document"`
	SelectorsFile string `long:"selectors-file" env:"SELECTORS_FILE" description:"Optional YAML file overriding the extraction selectors"`
	Limit         int    `long:"limit" env:"LIMIT" default:"5" description:"Maximum number of reviews in the snapshot"`
	ExpandReviews bool   `long:"expand-reviews" env:"EXPAND_REVIEWS" description:"Fetch review permalinks to recover text the feed truncated"`

	// Fetching
	FetchTimeout int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Fetch timeout in seconds"`
	FetchRetries int    `long:"fetch-retries" env:"FETCH_RETRIES" default:"2" description:"Retries for transient fetch failures"`
	UserAgent    string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests (browser-like default)"`

	// Server
	Port            string `long:"port" env:"PORT" default:"5000" description:"HTTP server port (serve mode)"`
	RefreshSchedule string `long:"refresh-schedule" env:"REFRESH_SCHEDULE" default:"@every 1h" description:"Cron schedule for pipeline refreshes (serve mode)"`
	APIAccessKey    string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the refresh endpoint (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.Usage = "[OPTIONS] [fetch <url> [output] | parse [input] | run | serve]"

	args, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		User:            raw.User,
		Source:          raw.Source,
		ActivityURL:     raw.ActivityURL,
		RSSURL:          raw.RSSURL,
		HTMLFile:        raw.HTMLFile,
		OutputFile:      raw.OutputFile,
		SelectorsFile:   raw.SelectorsFile,
		Limit:           raw.Limit,
		ExpandReviews:   raw.ExpandReviews,
		FetchTimeout:    raw.FetchTimeout,
		FetchRetries:    raw.FetchRetries,
		UserAgent:       raw.UserAgent,
		Port:            raw.Port,
		RefreshSchedule: raw.RefreshSchedule,
		APIAccessKey:    raw.APIAccessKey,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if cfg.ActivityURL == "" {
		cfg.ActivityURL = fmt.Sprintf("https://letterboxd.com/ajax/activity-pagination/%s/", cfg.User)
	}
	if cfg.RSSURL == "" {
		cfg.RSSURL = fmt.Sprintf("https://letterboxd.com/%s/rss/", strings.ToLower(cfg.User))
	}

	cfg.Command = "run"
	if len(args) > 0 {
		cfg.Command = args[0]
		cfg.Args = args[1:]
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// SourceURL returns the feed URL matching the configured source.
func (c *Cfg) SourceURL() string {
	if c.Source == "rss" {
		return c.RSSURL
	}
	return c.ActivityURL
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
	}
	return nil
}

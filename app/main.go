package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/nicolep/letterboxd-trmnl/app/activity"
	"github.com/nicolep/letterboxd-trmnl/app/api"
	"github.com/nicolep/letterboxd-trmnl/app/cfg"
	"github.com/nicolep/letterboxd-trmnl/app/fetch"
	"github.com/nicolep/letterboxd-trmnl/app/snapshot"
	"github.com/nicolep/letterboxd-trmnl/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var runErr error
	switch appCfg.Command {
	case "fetch":
		runErr = runFetch(appCfg)
	case "parse":
		runErr = runParse(appCfg)
	case "run":
		runErr = runOnce(appCfg)
	case "serve":
		runErr = runServe(appCfg)
	default:
		runErr = fmt.Errorf("unknown command %q (expected fetch, parse, run or serve)", appCfg.Command)
	}

	if runErr != nil {
		slog.Error("Command failed", "command", appCfg.Command, "error", runErr)
		os.Exit(1)
	}
}

// components wires the pipeline stages from configuration.
type components struct {
	client    fetch.Client
	extractor *activity.Extractor
	rssParser *activity.RSSParser
	expander  tasks.ExpanderInterface
	writer    *snapshot.Writer
}

func buildComponents(appCfg *cfg.Cfg) (*components, error) {
	client, err := newFetchClient(appCfg)
	if err != nil {
		return nil, err
	}

	selectors := activity.DefaultSelectors()
	if appCfg.SelectorsFile != "" {
		selectors, err = activity.LoadSelectors(appCfg.SelectorsFile)
		if err != nil {
			return nil, err
		}
		slog.Info("Selector overrides loaded", "file", appCfg.SelectorsFile)
	}

	c := &components{
		client:    client,
		extractor: activity.NewExtractor(selectors),
		rssParser: activity.NewRSSParser(),
		writer:    snapshot.NewWriter(),
	}
	if appCfg.ExpandReviews {
		c.expander = activity.NewReviewExpander(client)
	}

	return c, nil
}

func newFetchClient(appCfg *cfg.Cfg) (fetch.Client, error) {
	client, err := fetch.NewHTTPClient(appCfg.UserAgent, time.Duration(appCfg.FetchTimeout)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch client: %w", err)
	}
	if appCfg.FetchRetries > 0 {
		return fetch.NewRetryClient(client, uint64(appCfg.FetchRetries), time.Second), nil
	}
	return client, nil
}

func newRefreshTask(c *components, appCfg *cfg.Cfg) tasks.TaskInterface {
	return tasks.NewRefreshTask(c.client, c.extractor, c.rssParser, c.expander, c.writer,
		appCfg.User, appCfg.Source, appCfg.SourceURL(), appCfg.Limit, appCfg.OutputFile)
}

// runFetch retrieves the activity page and saves the raw HTML.
func runFetch(appCfg *cfg.Cfg) error {
	if len(appCfg.Args) == 0 {
		return fmt.Errorf("fetch requires a URL argument")
	}
	url := appCfg.Args[0]

	output := appCfg.HTMLFile
	if len(appCfg.Args) > 1 {
		output = appCfg.Args[1]
	}

	client, err := newFetchClient(appCfg)
	if err != nil {
		return err
	}

	slog.Info("Fetching activity page", "url", url, "output", output)
	if err := fetch.SaveTo(context.Background(), client, url, output); err != nil {
		return err
	}
	slog.Info("Activity page saved", "output", output)

	return nil
}

// runParse extracts and emits from an already-saved source file.
func runParse(appCfg *cfg.Cfg) error {
	input := appCfg.HTMLFile
	if len(appCfg.Args) > 0 {
		input = appCfg.Args[0]
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}

	c, err := buildComponents(appCfg)
	if err != nil {
		return err
	}

	var reviews []snapshot.Review
	if appCfg.Source == "rss" {
		reviews, err = c.rssParser.Run(data)
	} else {
		reviews, err = c.extractor.Run(data, appCfg.ActivityURL)
	}
	if err != nil {
		return err
	}

	snap := snapshot.Build(appCfg.User, reviews, appCfg.Limit, time.Now())
	if err := c.writer.Write(appCfg.OutputFile, snap); err != nil {
		return err
	}

	slog.Info("Snapshot written", "input", input, "output", appCfg.OutputFile,
		"extracted", len(reviews), "emitted", snap.MergeVariables.TotalActivities)

	return nil
}

// runOnce executes the full pipeline a single time. Scheduling is left
// to the external trigger (cron, CI) that invoked us.
func runOnce(appCfg *cfg.Cfg) error {
	c, err := buildComponents(appCfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	task := newRefreshTask(c, appCfg)
	task.Start()
	return task.Execute(ctx)
}

// runServe starts the HTTP server and the in-process refresh scheduler.
func runServe(appCfg *cfg.Cfg) error {
	c, err := buildComponents(appCfg)
	if err != nil {
		return err
	}

	scheduler := tasks.NewScheduler(appCfg.RefreshSchedule, func() tasks.TaskInterface {
		return newRefreshTask(c, appCfg)
	})
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	handler := api.NewHandler(appCfg.OutputFile, scheduler, func() tasks.TaskInterface {
		return newRefreshTask(c, appCfg)
	})
	server := api.NewServer(handler, appCfg.Version, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		slog.Info("Endpoints available",
			"plugin", fmt.Sprintf("http://localhost:%s/api/plugin", appCfg.Port),
			"data", fmt.Sprintf("http://localhost:%s/api/data", appCfg.Port),
			"health", fmt.Sprintf("http://localhost:%s/health", appCfg.Port))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Letterboxd TRMNL server started", "user", appCfg.User, "schedule", appCfg.RefreshSchedule)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")

	return nil
}

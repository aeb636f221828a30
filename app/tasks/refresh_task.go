package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nicolep/letterboxd-trmnl/app/fetch"
	"github.com/nicolep/letterboxd-trmnl/app/snapshot"
)

// RefreshTask runs the full pipeline once: fetch the activity source,
// extract review records, optionally expand truncated reviews, and
// atomically replace the snapshot document. A failed run leaves the
// previous snapshot untouched.
type RefreshTask struct {
	Task
	fetcher    fetch.Client
	extractor  ExtractorInterface
	rssParser  RSSParserInterface
	expander   ExpanderInterface
	writer     WriterInterface
	user       string
	source     string
	sourceURL  string
	limit      int
	outputFile string
}

func NewRefreshTask(fetcher fetch.Client, extractor ExtractorInterface, rssParser RSSParserInterface,
	expander ExpanderInterface, writer WriterInterface,
	user, source, sourceURL string, limit int, outputFile string) *RefreshTask {
	return &RefreshTask{
		Task:       NewTask(TaskTypeRefreshSnapshot),
		fetcher:    fetcher,
		extractor:  extractor,
		rssParser:  rssParser,
		expander:   expander,
		writer:     writer,
		user:       user,
		source:     source,
		sourceURL:  sourceURL,
		limit:      limit,
		outputFile: outputFile,
	}
}

func (t *RefreshTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetcher.Fetch(ctx, t.sourceURL)
	if err != nil {
		return fmt.Errorf("failed to fetch activity: %w", err)
	}

	var reviews []snapshot.Review
	if t.source == "rss" {
		reviews, err = t.rssParser.Run(data)
	} else {
		reviews, err = t.extractor.Run(data, t.sourceURL)
	}
	if err != nil {
		return fmt.Errorf("failed to extract reviews: %w", err)
	}

	if t.expander != nil {
		reviews = t.expander.Run(ctx, reviews)
	}

	snap := snapshot.Build(t.user, reviews, t.limit, time.Now())

	if err := t.writer.Write(t.outputFile, snap); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	slog.Info("Task completed",
		"type", "RefreshSnapshot",
		"duration", t.GetDuration(),
		"extracted", len(reviews),
		"emitted", snap.MergeVariables.TotalActivities,
		"output", t.outputFile)

	return nil
}

package tasks

import (
	"context"

	"github.com/nicolep/letterboxd-trmnl/app/activity"
	"github.com/nicolep/letterboxd-trmnl/app/snapshot"
)

// TaskSchedulerInterface defines the interface for task scheduling
// operations. Used by the main application and the API layer to manage
// background snapshot refreshes.
type TaskSchedulerInterface interface {
	Start() error
	Stop()
	EnqueueTask(task TaskInterface) error
}

type ExtractorInterface interface {
	Run(data []byte, baseURL string) ([]snapshot.Review, error)
}

type RSSParserInterface interface {
	Run(data []byte) ([]snapshot.Review, error)
}

type ExpanderInterface interface {
	Run(ctx context.Context, reviews []snapshot.Review) []snapshot.Review
}

type WriterInterface interface {
	Write(path string, snap snapshot.Snapshot) error
}

var _ ExtractorInterface = (*activity.Extractor)(nil)
var _ RSSParserInterface = (*activity.RSSParser)(nil)
var _ ExpanderInterface = (*activity.ReviewExpander)(nil)
var _ WriterInterface = (*snapshot.Writer)(nil)

package api

import (
	"github.com/nicolep/letterboxd-trmnl/app/tasks"
)

// Handler serves the snapshot document to the polling display service.
// It reads the same file the pipeline writes, so HTTP consumers and
// static-file consumers always see the same artifact.
type Handler struct {
	snapshotPath   string
	scheduler      tasks.TaskSchedulerInterface
	newRefreshTask func() tasks.TaskInterface
}

func NewHandler(snapshotPath string, scheduler tasks.TaskSchedulerInterface,
	newRefreshTask func() tasks.TaskInterface) *Handler {
	return &Handler{
		snapshotPath:   snapshotPath,
		scheduler:      scheduler,
		newRefreshTask: newRefreshTask,
	}
}

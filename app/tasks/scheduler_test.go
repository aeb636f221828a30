package tasks

import (
	"context"
	"testing"
	"time"
)

// signalTask reports executions over a channel.
type signalTask struct {
	Task
	executed chan string
}

func (t *signalTask) Execute(ctx context.Context) error {
	t.executed <- t.ID
	return nil
}

func TestSchedulerRunsStartupRefresh(t *testing.T) {
	executed := make(chan string, 1)
	scheduler := NewScheduler("@every 1h", func() TaskInterface {
		return &signalTask{Task: NewTask(TaskTypeRefreshSnapshot), executed: executed}
	})

	if err := scheduler.Start(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	defer scheduler.Stop()

	select {
	case <-executed:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a refresh task to run at startup")
	}
}

func TestSchedulerRejectsInvalidSchedule(t *testing.T) {
	scheduler := NewScheduler("not a schedule", func() TaskInterface {
		return &signalTask{Task: NewTask(TaskTypeRefreshSnapshot), executed: make(chan string, 1)}
	})

	if err := scheduler.Start(); err == nil {
		t.Fatal("Expected error for invalid cron schedule")
	}
}

func TestSchedulerRejectsWhenQueueFull(t *testing.T) {
	executed := make(chan string, 1)
	scheduler := NewScheduler("@every 1h", func() TaskInterface {
		return &signalTask{Task: NewTask(TaskTypeRefreshSnapshot), executed: executed}
	})

	// Not started, so nothing drains the queue.
	for i := 0; i < 16; i++ {
		task := &signalTask{Task: NewTask(TaskTypeRefreshSnapshot), executed: executed}
		if err := scheduler.EnqueueTask(task); err != nil {
			t.Fatalf("Expected enqueue %d to succeed, got: %v", i, err)
		}
	}

	task := &signalTask{Task: NewTask(TaskTypeRefreshSnapshot), executed: executed}
	if err := scheduler.EnqueueTask(task); err == nil {
		t.Fatal("Expected error when task queue is full")
	}
}

func TestTaskRetryBookkeeping(t *testing.T) {
	task := NewTask(TaskTypeRefreshSnapshot)

	if !task.CanRetry() {
		t.Error("Expected fresh task to be retryable")
	}
	for i := 0; i < DefaultMaxRetries; i++ {
		task.IncrementRetryCount()
	}
	if task.CanRetry() {
		t.Error("Expected task to be exhausted after max retries")
	}
	if task.GetRetryCount() != DefaultMaxRetries {
		t.Errorf("Expected retry count %d, got %d", DefaultMaxRetries, task.GetRetryCount())
	}
}

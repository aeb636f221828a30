package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nicolep/letterboxd-trmnl/app/activity"
	"github.com/nicolep/letterboxd-trmnl/app/snapshot"
)

// MockFetcher implements a simple mock for testing
type MockFetcher struct {
	data []byte
	err  error
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

const fixtureHTML = `<html><body>
<section class="activity-row">
  <h2 class="name"><a href="/film/wicked/">Wicked</a></h2>
  <a href="/films/year/2024/">2024</a>
  <span class="rating rated-7"></span>
  <div class="js-review-body"><p>Great film<br>loved it</p></div>
  <time datetime="2025-11-18T00:00:00Z">18 Nov 2025</time>
</section>
<section class="activity-row">
  <h2 class="name"><a href="/film/heat/">Heat</a></h2>
</section>
</body></html>`

func newTestTask(fetcher *MockFetcher, outputFile string) *RefreshTask {
	return NewRefreshTask(
		fetcher,
		activity.NewExtractor(activity.DefaultSelectors()),
		activity.NewRSSParser(),
		nil,
		snapshot.NewWriter(),
		"testuser",
		"activity",
		"https://letterboxd.com/ajax/activity-pagination/testuser/",
		5,
		outputFile,
	)
}

func TestRefreshTaskWritesSnapshot(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "out.json")
	task := newTestTask(&MockFetcher{data: []byte(fixtureHTML)}, outputFile)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatal(err)
	}

	var snap snapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("Expected valid JSON, got: %v", err)
	}

	vars := snap.MergeVariables
	if vars.User != "testuser" {
		t.Errorf("Expected user 'testuser', got %q", vars.User)
	}
	if vars.TotalActivities != 2 {
		t.Errorf("Expected total_activities 2, got %d", vars.TotalActivities)
	}
	if vars.LatestTitle != "Wicked" {
		t.Errorf("Expected latest_title 'Wicked', got %q", vars.LatestTitle)
	}
	if vars.LatestRating != "★★★½" {
		t.Errorf("Expected latest_rating '★★★½', got %q", vars.LatestRating)
	}
	if vars.LatestDate != "Nov 18, 2025" {
		t.Errorf("Expected latest_date 'Nov 18, 2025', got %q", vars.LatestDate)
	}
	if vars.UpdateTime == "" {
		t.Error("Expected update_time to be set")
	}
}

func TestRefreshTaskFetchFailureLeavesSnapshotUntouched(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "out.json")

	// Seed a prior snapshot.
	task := newTestTask(&MockFetcher{data: []byte(fixtureHTML)}, outputFile)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatal(err)
	}

	failing := newTestTask(&MockFetcher{err: errors.New("tool unavailable")}, outputFile)
	if err := failing.Execute(context.Background()); err == nil {
		t.Fatal("Expected fetch failure to surface as an error")
	}

	after, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("Expected prior snapshot to be left untouched on fetch failure")
	}
}

func TestRefreshTaskEmptyFeedStillEmits(t *testing.T) {
	html := `<html><body><section class="activity-row"><p>followed someone</p></section></body></html>`
	outputFile := filepath.Join(t.TempDir(), "out.json")
	task := newTestTask(&MockFetcher{data: []byte(html)}, outputFile)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error for review-free feed, got: %v", err)
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatal(err)
	}

	var snap snapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.MergeVariables.TotalActivities != 0 {
		t.Errorf("Expected total_activities 0, got %d", snap.MergeVariables.TotalActivities)
	}
	if snap.MergeVariables.Movies == nil || len(snap.MergeVariables.Movies) != 0 {
		t.Errorf("Expected empty movies sequence, got %v", snap.MergeVariables.Movies)
	}
}

func TestRefreshTaskCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := newTestTask(&MockFetcher{data: []byte(fixtureHTML)}, filepath.Join(t.TempDir(), "out.json"))
	if err := task.Execute(ctx); err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}

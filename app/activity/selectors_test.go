package activity

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSelectorsOverride(t *testing.T) {
	tempDir := t.TempDir()

	content := `
row: "li.activity-item"
review_body: "div.review-text"
`
	path := filepath.Join(tempDir, "selectors.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	selectors, err := LoadSelectors(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if selectors.Row != "li.activity-item" {
		t.Errorf("Expected overridden row selector, got %q", selectors.Row)
	}
	if selectors.ReviewBody != "div.review-text" {
		t.Errorf("Expected overridden review body selector, got %q", selectors.ReviewBody)
	}

	// Fields absent from the file keep their defaults.
	defaults := DefaultSelectors()
	if selectors.TitleHeading != defaults.TitleHeading {
		t.Errorf("Expected default title heading, got %q", selectors.TitleHeading)
	}
	if selectors.FilmHrefMarker != defaults.FilmHrefMarker {
		t.Errorf("Expected default film href marker, got %q", selectors.FilmHrefMarker)
	}
}

func TestLoadSelectorsMissingFile(t *testing.T) {
	_, err := LoadSelectors(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestLoadSelectorsRejectsEmptyRequiredField(t *testing.T) {
	tempDir := t.TempDir()

	content := `
row: ""
`
	path := filepath.Join(tempDir, "selectors.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSelectors(path); err == nil {
		t.Fatal("Expected validation error for empty row selector")
	}
}

func TestDefaultSelectorsAreValid(t *testing.T) {
	if err := validateSelectors(DefaultSelectors()); err != nil {
		t.Errorf("Expected defaults to validate, got: %v", err)
	}
}

package activity

import (
	"testing"
)

func TestRSSParseReviewItems(t *testing.T) {
	rssData := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:letterboxd="https://letterboxd.com">
  <channel>
    <title>Letterboxd - NicoleP</title>
    <link>https://letterboxd.com/nicolep/</link>
    <item>
      <title>Wicked, 2024 - ★★★½</title>
      <link>https://letterboxd.com/nicolep/film/wicked/</link>
      <pubDate>Tue, 18 Nov 2025 12:00:00 +0000</pubDate>
      <letterboxd:watchedDate>2025-11-18</letterboxd:watchedDate>
      <letterboxd:filmTitle>Wicked</letterboxd:filmTitle>
      <letterboxd:filmYear>2024</letterboxd:filmYear>
      <letterboxd:memberRating>3.5</letterboxd:memberRating>
      <description>&lt;p&gt;Great film&lt;br&gt;loved it&lt;/p&gt;</description>
    </item>
    <item>
      <title>Heat, 1995</title>
      <link>https://letterboxd.com/nicolep/film/heat/</link>
      <pubDate>Sun, 16 Nov 2025 12:00:00 +0000</pubDate>
      <description>&lt;p&gt;Watched on Sunday November 16, 2025.&lt;/p&gt;</description>
    </item>
  </channel>
</rss>`

	parser := NewRSSParser()
	reviews, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(reviews) != 2 {
		t.Fatalf("Expected 2 reviews, got %d", len(reviews))
	}

	first := reviews[0]
	if first.Title != "Wicked" {
		t.Errorf("Expected title 'Wicked', got %q", first.Title)
	}
	if first.Year != "2024" {
		t.Errorf("Expected year '2024', got %q", first.Year)
	}
	if first.Rating == nil || *first.Rating != 3.5 {
		t.Errorf("Expected rating 3.5, got %v", first.Rating)
	}
	if first.RatingDisplay != "★★★½" {
		t.Errorf("Expected rating display '★★★½', got %q", first.RatingDisplay)
	}
	if first.Date != "Nov 18, 2025" {
		t.Errorf("Expected date 'Nov 18, 2025', got %q", first.Date)
	}
	if first.Review != "Great film loved it" {
		t.Errorf("Expected normalized review text, got %q", first.Review)
	}
	if first.URL != "https://letterboxd.com/nicolep/film/wicked/" {
		t.Errorf("Expected item link as URL, got %q", first.URL)
	}

	// Second item has no namespace fields; title and year come from the
	// item title, the rating stays nil.
	second := reviews[1]
	if second.Title != "Heat" {
		t.Errorf("Expected title 'Heat', got %q", second.Title)
	}
	if second.Year != "1995" {
		t.Errorf("Expected year '1995', got %q", second.Year)
	}
	if second.Rating != nil {
		t.Errorf("Expected nil rating, got %v", *second.Rating)
	}
	if second.Date != "Nov 16, 2025" {
		t.Errorf("Expected date from pubDate, got %q", second.Date)
	}
}

func TestRSSParseInvalidData(t *testing.T) {
	parser := NewRSSParser()
	if _, err := parser.Run([]byte("not a feed")); err == nil {
		t.Fatal("Expected error for invalid feed data")
	}
}

func TestSplitItemTitle(t *testing.T) {
	tests := []struct {
		input string
		title string
		year  string
	}{
		{"Wicked, 2024 - ★★★½", "Wicked", "2024"},
		{"Heat, 1995", "Heat", "1995"},
		{"Just a Title", "Just a Title", ""},
		{"Love, Actually", "Love, Actually", ""},
	}

	for _, tt := range tests {
		title, year := splitItemTitle(tt.input)
		if title != tt.title || year != tt.year {
			t.Errorf("splitItemTitle(%q): expected (%q, %q), got (%q, %q)",
				tt.input, tt.title, tt.year, title, year)
		}
	}
}

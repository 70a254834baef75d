package watch

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://example.com/video", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractVideoID(tt.url); got != tt.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestTrackerEmitsOnlyOnChange(t *testing.T) {
	tr := NewTracker()

	var emissions []string
	tr.OnChange(func(videoID, url string) {
		emissions = append(emissions, videoID)
	})

	tr.Set("https://www.youtube.com/watch?v=aaa11122233")
	tr.Set("https://www.youtube.com/watch?v=aaa11122233") // same video, no emission
	tr.Set("https://www.youtube.com/watch?v=aaa11122233&t=90s")
	tr.Set("https://www.youtube.com/watch?v=bbb44455566")

	if len(emissions) != 2 {
		t.Fatalf("expected 2 emissions, got %d: %v", len(emissions), emissions)
	}
	if emissions[0] != "aaa11122233" || emissions[1] != "bbb44455566" {
		t.Errorf("unexpected emissions: %v", emissions)
	}
}

func TestTrackerIgnoresNonVideoURLs(t *testing.T) {
	tr := NewTracker()
	fired := false
	tr.OnChange(func(string, string) { fired = true })

	tr.Set("https://www.youtube.com/feed/subscriptions")
	if fired {
		t.Error("non-video navigation should not emit")
	}
	if id, _ := tr.Current(); id != "" {
		t.Errorf("identity should stay empty, got %q", id)
	}
}

func TestTrackerCurrent(t *testing.T) {
	tr := NewTracker()
	tr.Set("https://youtu.be/ccc77788899")
	id, url := tr.Current()
	if id != "ccc77788899" {
		t.Errorf("unexpected id %q", id)
	}
	if url != "https://youtu.be/ccc77788899" {
		t.Errorf("unexpected url %q", url)
	}
}

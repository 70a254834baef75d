// Package watch tracks which video is currently open. The identity is an
// opaque token derived from the watch-page URL; a new value supersedes all
// session state tied to the old one. Navigation signals are abstracted
// behind Set/OnChange so the tracker does not care whether the signal is a
// user prompt, a history hook, or anything else the host surface provides.
package watch

import (
	"regexp"
	"sync"
)

var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([^&\n?#]+)`),
}

// ExtractVideoID pulls the video identity out of a watch-page URL. It
// returns "" when the URL does not name a video.
func ExtractVideoID(url string) string {
	for _, p := range urlPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// Tracker holds the current video identity and notifies subscribers when it
// actually changes. Repeated signals for the same video emit nothing.
type Tracker struct {
	mu      sync.Mutex
	url     string
	videoID string
	subs    []func(videoID, url string)
}

// NewTracker returns an empty tracker; no video is open yet.
func NewTracker() *Tracker {
	return &Tracker{}
}

// OnChange registers a callback fired whenever the identity changes value.
// Callbacks run synchronously on the navigating goroutine.
func (t *Tracker) OnChange(fn func(videoID, url string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, fn)
}

// Set records a navigation to url. Subscribers are notified only when the
// derived identity differs from the previous emission, so unrelated
// navigation noise never restarts a session.
func (t *Tracker) Set(url string) {
	id := ExtractVideoID(url)

	t.mu.Lock()
	if id == "" || id == t.videoID {
		t.mu.Unlock()
		return
	}
	t.url = url
	t.videoID = id
	subs := make([]func(string, string), len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	for _, fn := range subs {
		fn(id, url)
	}
}

// Current returns the active identity and its URL, both "" when no video is
// open.
func (t *Tracker) Current() (videoID, url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.videoID, t.url
}

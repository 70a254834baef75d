// Package player seeks the playable media for the current video. In a
// terminal there is no in-page video element, so mpv stands in: jumping to a
// timestamp spawns mpv at that offset. Without mpv available the jump is a
// reported no-op, never a failure.
package player

import (
	"fmt"
	"os/exec"
	"sync"

	"go.uber.org/zap"

	"github.com/tubetalk/tubetalk/internal/timestamp"
)

// Player seeks playback to an offset within the current video.
type Player interface {
	// Jump seeks to seconds and resumes playback. The returned note is a
	// short human-readable outcome; ok is false when no playable media
	// exists, which is a report, not an error.
	Jump(videoURL string, seconds int) (note string, ok bool)
}

// MPV plays videos through an mpv subprocess, which resolves watch-page
// URLs itself via its ytdl hook.
type MPV struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	current *exec.Cmd
}

// NewMPV returns an mpv-backed player. path "" means "mpv" from PATH.
func NewMPV(path string, logger *zap.Logger) *MPV {
	if path == "" {
		path = "mpv"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MPV{path: path, logger: logger}
}

// Available reports whether the mpv binary can be found.
func (m *MPV) Available() bool {
	_, err := exec.LookPath(m.path)
	return err == nil
}

// Jump starts (or restarts) playback of videoURL at the given offset.
// Negative offsets and missing mpv degrade to a reported no-op.
func (m *MPV) Jump(videoURL string, seconds int) (string, bool) {
	if seconds < 0 || videoURL == "" {
		return "nothing to seek to", false
	}
	if !m.Available() {
		return "no playable media (mpv not installed)", false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// One playable media at a time; a new jump replaces the old playback.
	if m.current != nil && m.current.Process != nil {
		m.current.Process.Kill()
		m.current = nil
	}

	cmd := exec.Command(m.path, fmt.Sprintf("--start=%d", seconds), videoURL)
	if err := cmd.Start(); err != nil {
		m.logger.Warn("mpv start failed", zap.Error(err))
		return "could not start playback", false
	}
	m.current = cmd
	go cmd.Wait()

	return "jumped to " + timestamp.Format(float64(seconds)), true
}

// Stop ends any playback the player started.
func (m *MPV) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.Process != nil {
		m.current.Process.Kill()
		m.current = nil
	}
}

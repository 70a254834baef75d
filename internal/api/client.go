// Package api is the HTTP client for the transcript backend: transcript
// extraction, chat readiness checks and chat itself. All three operations
// speak JSON to a fixed base URL.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Kind classifies a backend failure for the presentation layer.
type Kind int

const (
	// KindNetwork means the request never produced an HTTP response.
	KindNetwork Kind = iota
	// KindBackend means the backend answered with an error status or
	// success:false. Malformed JSON is folded in here with a generic message.
	KindBackend
)

// Error is the single error type surfaced by the client. Message is always
// human-readable and safe to show directly.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
}

func (e *Error) Error() string { return e.Message }

// AsError extracts an *Error when err came from this package.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Client talks to the transcript backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a client for the given base URL. An empty baseURL falls back
// to the backend's default local address. token, when non-empty, is sent as
// a bearer credential on every request.
func New(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Transcript requests transcript extraction for a watch-page URL.
func (c *Client) Transcript(ctx context.Context, videoURL string) (*TranscriptResponse, error) {
	var out TranscriptResponse
	err := c.postJSON(ctx, "/transcript", transcriptRequest{URL: videoURL}, &out,
		"Network error while fetching transcript")
	if err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &Error{Kind: KindBackend, Message: orDefault(out.Error, "Failed to get transcript")}
	}
	return &out, nil
}

// ChatStatus asks whether conversational chat is available for a video.
func (c *Client) ChatStatus(ctx context.Context, videoID string) (*ChatStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/chat/status/"+videoID, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "Network error while checking chat status"}
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("chat status request failed", zap.String("video_id", videoID), zap.Error(err))
		return nil, &Error{Kind: KindNetwork, Message: "Network error while checking chat status"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Kind:       KindBackend,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	var out ChatStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Kind: KindBackend, Message: "Network error while checking chat status"}
	}
	return &out, nil
}

// Chat sends a user message about a video. The backend keys its conversation
// memory by sessionId, which is the video id.
func (c *Client) Chat(ctx context.Context, videoID, message string) (*ChatResponse, error) {
	var out ChatResponse
	err := c.postJSON(ctx, "/chat", chatRequest{
		ChatInput: message,
		VideoID:   videoID,
		SessionID: videoID,
	}, &out, "Network error while sending chat message")
	if err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &Error{Kind: KindBackend, Message: orDefault(out.Error, "Chat request failed")}
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, dst any, networkMsg string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Kind: KindNetwork, Message: networkMsg}
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("path", path), zap.Error(err))
		return &Error{Kind: KindNetwork, Message: networkMsg}
	}
	defer resp.Body.Close()

	// The backend reports failures in the body with success:false, even on
	// error statuses, so decode first and let the success flag decide.
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &Error{
				Kind:       KindBackend,
				Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
				StatusCode: resp.StatusCode,
			}
		}
		return &Error{Kind: KindBackend, Message: networkMsg}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

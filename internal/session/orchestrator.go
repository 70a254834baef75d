// Package session owns all per-video state: the chat message log, the
// transcript document, and the orchestrator that ties identity changes to
// transcript fetching and readiness polling. Everything keyed by a video
// identity lives here and nowhere else; when the identity changes, the old
// state is torn down and in-flight results for it are discarded on arrival.
package session

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/tubetalk/tubetalk/internal/api"
	"github.com/tubetalk/tubetalk/internal/poll"
)

// Backend is the slice of the HTTP client the orchestrator needs.
type Backend interface {
	Transcript(ctx context.Context, videoURL string) (*api.TranscriptResponse, error)
	ChatStatus(ctx context.Context, videoID string) (*api.ChatStatusResponse, error)
	Chat(ctx context.Context, videoID, message string) (*api.ChatResponse, error)
}

// EventKind tags orchestrator notifications.
type EventKind int

const (
	EventSessionReset EventKind = iota
	EventTranscriptLoading
	EventTranscriptLoaded
	EventTranscriptFailed
	EventReadinessChanged
	EventMessagesChanged
	// EventPollGaveUp fires when the polling ceiling elapsed without a
	// ready check. The readiness state stays whatever the last check
	// produced; the presentation layer decides how to word the give-up.
	EventPollGaveUp
)

// Event signals that orchestrator state changed; consumers re-read the
// snapshot rather than carrying payloads around.
type Event struct {
	Kind    EventKind
	VideoID string
}

// Snapshot is a consistent read of all per-video state.
type Snapshot struct {
	VideoID       string
	VideoURL      string
	Fetching      bool
	Transcript    *Transcript
	TranscriptErr string
	Readiness     poll.Readiness
	Polling       bool
	Messages      []Message
}

// Orchestrator composes the fetcher, poller and chat log for the active
// video. All mutation goes through it; async completions are guarded by a
// generation counter so superseded work cannot touch current state.
type Orchestrator struct {
	backend Backend
	poller  *poll.Poller
	log     *Log
	logger  *zap.Logger
	events  chan Event

	mu            sync.Mutex
	gen           int
	videoID       string
	videoURL      string
	cancel        context.CancelFunc
	ctx           context.Context
	fetching      bool
	transcript    *Transcript
	transcriptErr string

	// Sends have their own generation and context, bumped only on identity
	// change. A transcript retry supersedes fetch/poll work for the same
	// video but must not orphan an in-flight send's pending placeholder.
	sendGen    int
	sendCtx    context.Context
	sendCancel context.CancelFunc
}

// NewOrchestrator wires the orchestrator. The poller is injected so its
// cadence and ceiling stay configurable.
func NewOrchestrator(backend Backend, poller *poll.Poller, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		backend: backend,
		poller:  poller,
		log:     NewLog(),
		logger:  logger,
		events:  make(chan Event, 32),
	}
}

// Events is the notification stream the presentation layer drains. Events
// are change signals; dropping one under load is safe because consumers
// re-read the snapshot.
func (o *Orchestrator) Events() <-chan Event { return o.events }

// SetVideo switches the active identity. A repeat of the current identity
// is a no-op; a new one cancels all in-flight work for the old identity,
// clears the chat log back to its welcome message, resets readiness to
// unknown, and starts a transcript fetch.
func (o *Orchestrator) SetVideo(videoID, url string) {
	o.mu.Lock()
	if videoID == "" || videoID == o.videoID {
		o.mu.Unlock()
		return
	}
	if o.cancel != nil {
		o.cancel()
	}
	if o.sendCancel != nil {
		o.sendCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	sendCtx, sendCancel := context.WithCancel(context.Background())
	o.gen++
	o.sendGen++
	gen := o.gen
	o.ctx, o.cancel = ctx, cancel
	o.sendCtx, o.sendCancel = sendCtx, sendCancel
	o.videoID, o.videoURL = videoID, url
	o.transcript, o.transcriptErr = nil, ""
	o.fetching = true
	o.mu.Unlock()

	o.poller.Reset()
	o.log.Reset()
	o.logger.Info("video changed", zap.String("video_id", videoID))

	o.emit(EventSessionReset, videoID)
	o.emit(EventTranscriptLoading, videoID)
	go o.fetchTranscript(ctx, gen, videoID, url)
}

// RetryTranscript repeats the transcript fetch for the current identity,
// superseding any fetch still in flight. The chat log is untouched and an
// in-flight send keeps running; the identity did not change.
func (o *Orchestrator) RetryTranscript() {
	o.mu.Lock()
	if o.videoID == "" {
		o.mu.Unlock()
		return
	}
	if o.cancel != nil {
		o.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	o.gen++
	gen := o.gen
	o.ctx, o.cancel = ctx, cancel
	videoID, url := o.videoID, o.videoURL
	o.transcript, o.transcriptErr = nil, ""
	o.fetching = true
	o.mu.Unlock()

	o.poller.Stop()
	o.emit(EventTranscriptLoading, videoID)
	go o.fetchTranscript(ctx, gen, videoID, url)
}

func (o *Orchestrator) fetchTranscript(ctx context.Context, gen int, videoID, url string) {
	resp, err := o.backend.Transcript(ctx, url)

	o.mu.Lock()
	if gen != o.gen {
		// Superseded while in flight; the result belongs to a dead session.
		o.mu.Unlock()
		return
	}
	o.fetching = false
	if err != nil {
		o.transcriptErr = errorMessage(err)
		o.mu.Unlock()
		o.logger.Warn("transcript fetch failed", zap.String("video_id", videoID), zap.Error(err))
		o.emit(EventTranscriptFailed, videoID)
		return
	}
	doc := transcriptFromResponse(resp)
	o.transcript = doc
	o.mu.Unlock()

	o.logger.Info("transcript loaded",
		zap.String("video_id", videoID),
		zap.Int("segments", len(doc.Segments)),
		zap.Bool("cached", doc.Cached),
		zap.Bool("enriched", doc.ChatEnrichmentComplete),
	)
	o.emit(EventTranscriptLoaded, videoID)

	// Readiness work starts only once the transcript response is known.
	// Enrichment already complete needs a single confirming check; pending
	// enrichment needs the polling schedule.
	if doc.ChatEnrichmentComplete {
		r := o.poller.Check(ctx, videoID)
		if o.stale(gen) {
			return
		}
		o.afterReadiness(r, videoID)
		return
	}

	o.poller.Start(ctx, videoID,
		func(r poll.Readiness) {
			if o.stale(gen) {
				return
			}
			o.afterReadiness(r, videoID)
		},
		func(err error) {
			if o.stale(gen) {
				return
			}
			if err != nil {
				o.emit(EventPollGaveUp, videoID)
			}
		},
	)
}

func (o *Orchestrator) afterReadiness(r poll.Readiness, videoID string) {
	if r.State == poll.Ready && o.log.AnnounceReady() {
		o.emit(EventMessagesChanged, videoID)
	}
	o.emit(EventReadinessChanged, videoID)
}

// Send submits a user message. It is a silent no-op when the text is blank,
// no video is open, chat is not ready, or a previous send is still pending.
// Returns whether a send actually started.
func (o *Orchestrator) Send(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	o.mu.Lock()
	videoID, gen, ctx := o.videoID, o.sendGen, o.sendCtx
	o.mu.Unlock()

	if videoID == "" {
		return false
	}
	if o.poller.Current().State != poll.Ready {
		return false
	}
	if !o.log.BeginSend(text) {
		return false
	}
	o.emit(EventMessagesChanged, videoID)

	go func() {
		resp, err := o.backend.Chat(ctx, videoID, text)
		if o.staleSend(gen) {
			return
		}
		if err != nil {
			o.log.FailSend(errorMessage(err))
		} else {
			o.log.CompleteSend(resp.Response, resp.Timestamps)
		}
		o.emit(EventMessagesChanged, videoID)
	}()
	return true
}

// Snapshot returns a consistent copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	snap := Snapshot{
		VideoID:       o.videoID,
		VideoURL:      o.videoURL,
		Fetching:      o.fetching,
		Transcript:    o.transcript,
		TranscriptErr: o.transcriptErr,
	}
	o.mu.Unlock()

	snap.Readiness = o.poller.Current()
	snap.Polling = o.poller.Polling()
	snap.Messages = o.log.Messages()
	return snap
}

// Close tears the session down: cancels in-flight work and the poll timer.
func (o *Orchestrator) Close() {
	o.poller.Stop()
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	if o.sendCancel != nil {
		o.sendCancel()
		o.sendCancel = nil
	}
	o.mu.Unlock()
}

func (o *Orchestrator) stale(gen int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gen != o.gen
}

func (o *Orchestrator) staleSend(gen int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gen != o.sendGen
}

func (o *Orchestrator) emit(kind EventKind, videoID string) {
	select {
	case o.events <- Event{Kind: kind, VideoID: videoID}:
	default:
		// Consumer is behind; the snapshot covers whatever was dropped.
	}
}

func errorMessage(err error) string {
	if apiErr, ok := api.AsError(err); ok {
		return apiErr.Message
	}
	return "Unknown error occurred"
}

// Package poll is the chat readiness state machine. Transcript enrichment
// happens asynchronously on the backend, so after a transcript arrives with
// the chat index still pending, the poller re-asks on a fixed cadence until
// the backend reports ready, the ceiling elapses, or the owner stops it.
package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/tubetalk/tubetalk/internal/api"
)

// State is the readiness of conversational chat for one video.
type State int

const (
	Unknown State = iota
	Ready
	Processing
	NotFound
	Failed
	Unavailable
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Processing:
		return "processing"
	case NotFound:
		return "notFound"
	case Failed:
		return "error"
	case Unavailable:
		return "backendUnavailable"
	default:
		return "unknown"
	}
}

// Readiness is a state plus the backend's human message and optional retry
// hint, in seconds.
type Readiness struct {
	State      State
	Message    string
	RetryAfter int
}

// StatusClient is the single backend operation the poller needs.
type StatusClient interface {
	ChatStatus(ctx context.Context, videoID string) (*api.ChatStatusResponse, error)
}

const (
	// DefaultInterval is the fixed polling cadence.
	DefaultInterval = 15 * time.Second
	// DefaultCeiling bounds total polling wall-clock time. When it elapses
	// the state stays whatever the last check produced; there is no distinct
	// timed-out state.
	DefaultCeiling = 10 * time.Minute

	offlineMessage = "Could not check chat status. Server may be offline."
)

var errNotReady = errors.New("chat not ready yet")

// Poller issues readiness checks for one video at a time. At most one
// polling schedule is active; starting while polling is a no-op, and Stop
// is idempotent.
type Poller struct {
	client   StatusClient
	interval time.Duration
	ceiling  time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	readiness Readiness
	cancel    context.CancelFunc
	// gen is bumped by Start and Stop. Checks capture it before the request
	// and drop their recording when it moved, so a check still in flight for
	// a superseded video cannot overwrite the state a Reset just installed.
	gen int
}

// New creates a poller. Non-positive interval/ceiling take the defaults.
func New(client StatusClient, interval, ceiling time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{client: client, interval: interval, ceiling: ceiling, logger: logger}
}

// Check issues a single readiness request and records the resulting state.
// A transport failure becomes Failed with a fixed offline message rather
// than an error return; the state machine never propagates exceptions. A
// check superseded by Stop or Reset while in flight still returns its result
// but does not record it.
func (p *Poller) Check(ctx context.Context, videoID string) Readiness {
	p.mu.Lock()
	gen := p.gen
	p.mu.Unlock()

	resp, err := p.client.ChatStatus(ctx, videoID)

	var r Readiness
	switch {
	case err != nil:
		p.logger.Warn("readiness check failed", zap.String("video_id", videoID), zap.Error(err))
		r = Readiness{State: Failed, Message: offlineMessage}
	default:
		r = fromResponse(resp)
	}

	p.mu.Lock()
	if p.gen == gen {
		p.readiness = r
	}
	p.mu.Unlock()
	return r
}

func fromResponse(resp *api.ChatStatusResponse) Readiness {
	r := Readiness{Message: resp.Message, RetryAfter: resp.RetryAfter}
	switch resp.Status {
	case api.StatusReady:
		if resp.Available {
			r.State = Ready
		} else {
			r.State = Processing
		}
	case api.StatusProcessing:
		r.State = Processing
	case api.StatusNotFound:
		r.State = NotFound
	case api.StatusRagUnavailable:
		r.State = Unavailable
	default:
		r.State = Failed
	}
	return r
}

// Start begins polling for videoID. Every check result is delivered through
// onUpdate; when polling ends, onDone receives nil after a ready check and a
// non-nil error after the ceiling elapsed or Stop was called. Start is a
// no-op while a previous schedule is still active.
func (p *Poller) Start(ctx context.Context, videoID string, onUpdate func(Readiness), onDone func(error)) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	pollCtx, cancel := context.WithTimeout(ctx, p.ceiling)
	p.cancel = cancel
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			p.mu.Lock()
			if p.gen == gen {
				p.cancel = nil
			}
			p.mu.Unlock()
		}()

		op := func() error {
			r := p.Check(pollCtx, videoID)
			if pollCtx.Err() != nil {
				// Cancelled mid-check; the result is stale.
				return backoff.Permanent(pollCtx.Err())
			}
			if onUpdate != nil {
				onUpdate(r)
			}
			if r.State == Ready {
				return nil
			}
			return errNotReady
		}

		schedule := backoff.WithContext(backoff.NewConstantBackOff(p.interval), pollCtx)
		err := backoff.Retry(op, schedule)
		if onDone != nil {
			onDone(err)
		}
	}()
}

// Stop cancels any active polling schedule. Safe to call repeatedly and
// when nothing is polling.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.gen++
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Polling reports whether a schedule is currently active.
func (p *Poller) Polling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Current returns the last recorded readiness.
func (p *Poller) Current() Readiness {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readiness
}

// Reset puts the state machine back to Unknown, for a new video identity.
func (p *Poller) Reset() {
	p.Stop()
	p.mu.Lock()
	p.readiness = Readiness{}
	p.mu.Unlock()
}

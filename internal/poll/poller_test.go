package poll

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tubetalk/tubetalk/internal/api"
)

// scriptedClient returns one response (or error) per call, repeating the
// last entry once the script runs out.
type scriptedClient struct {
	mu     sync.Mutex
	script []func() (*api.ChatStatusResponse, error)
	calls  int
}

func (c *scriptedClient) ChatStatus(ctx context.Context, videoID string) (*api.ChatStatusResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	if i >= len(c.script) {
		i = len(c.script) - 1
	}
	c.calls++
	return c.script[i]()
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func processing() (*api.ChatStatusResponse, error) {
	return &api.ChatStatusResponse{Available: false, Status: api.StatusProcessing, Message: "still indexing"}, nil
}

func ready() (*api.ChatStatusResponse, error) {
	return &api.ChatStatusResponse{Available: true, Status: api.StatusReady, Message: "Chat ready"}, nil
}

func TestCheckMapsStatuses(t *testing.T) {
	tests := []struct {
		status    string
		available bool
		want      State
	}{
		{api.StatusReady, true, Ready},
		{api.StatusReady, false, Processing},
		{api.StatusProcessing, false, Processing},
		{api.StatusNotFound, false, NotFound},
		{api.StatusRagUnavailable, false, Unavailable},
		{api.StatusError, false, Failed},
		{"something-new", false, Failed},
	}
	for _, tt := range tests {
		client := &scriptedClient{script: []func() (*api.ChatStatusResponse, error){
			func() (*api.ChatStatusResponse, error) {
				return &api.ChatStatusResponse{Available: tt.available, Status: tt.status}, nil
			},
		}}
		p := New(client, 0, 0, nil)
		r := p.Check(context.Background(), "vid1")
		if r.State != tt.want {
			t.Errorf("status %q/available=%v: got %v, want %v", tt.status, tt.available, r.State, tt.want)
		}
	}
}

func TestCheckTransportFailure(t *testing.T) {
	client := &scriptedClient{script: []func() (*api.ChatStatusResponse, error){
		func() (*api.ChatStatusResponse, error) {
			return nil, &api.Error{Kind: api.KindNetwork, Message: "boom"}
		},
	}}
	p := New(client, 0, 0, nil)
	r := p.Check(context.Background(), "vid1")
	if r.State != Failed {
		t.Errorf("transport failure should map to error state, got %v", r.State)
	}
	if r.Message != "Could not check chat status. Server may be offline." {
		t.Errorf("unexpected message: %q", r.Message)
	}
}

func TestStartStopsOnReady(t *testing.T) {
	client := &scriptedClient{script: []func() (*api.ChatStatusResponse, error){
		processing, processing, ready,
	}}
	p := New(client, 5*time.Millisecond, time.Second, nil)

	var mu sync.Mutex
	var seen []State
	done := make(chan error, 1)

	p.Start(context.Background(), "vid1", func(r Readiness) {
		mu.Lock()
		seen = append(seen, r.State)
		mu.Unlock()
	}, func(err error) { done <- err })

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("polling should end in success, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("polling never finished")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 {
		t.Fatalf("expected 3 updates, got %d: %v", len(seen), seen)
	}
	if seen[2] != Ready {
		t.Errorf("last update should be ready, got %v", seen[2])
	}
	if p.Current().State != Ready {
		t.Errorf("current state should be ready, got %v", p.Current().State)
	}
	if p.Polling() {
		t.Error("poller should be idle after a ready check")
	}
}

func TestStartCeilingKeepsLastState(t *testing.T) {
	client := &scriptedClient{script: []func() (*api.ChatStatusResponse, error){processing}}
	p := New(client, 5*time.Millisecond, 30*time.Millisecond, nil)

	done := make(chan error, 1)
	p.Start(context.Background(), "vid1", nil, func(err error) { done <- err })

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("ceiling expiry should report a non-nil error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("polling never gave up")
	}

	if p.Current().State != Processing {
		t.Errorf("state should remain the last check result, got %v", p.Current().State)
	}
}

func TestStartIsNoOpWhilePolling(t *testing.T) {
	client := &scriptedClient{script: []func() (*api.ChatStatusResponse, error){processing}}
	p := New(client, 10*time.Millisecond, time.Second, nil)

	p.Start(context.Background(), "vid1", nil, nil)
	p.Start(context.Background(), "vid1", nil, nil) // must not double-schedule

	time.Sleep(35 * time.Millisecond)
	p.Stop()

	// With a doubled schedule the call count would be roughly twice this.
	if n := client.callCount(); n > 5 {
		t.Errorf("too many checks for a single schedule: %d", n)
	}
}

func TestStopCancelsPendingChecks(t *testing.T) {
	client := &scriptedClient{script: []func() (*api.ChatStatusResponse, error){processing}}
	p := New(client, 5*time.Millisecond, time.Second, nil)

	done := make(chan error, 1)
	p.Start(context.Background(), "vid1", nil, func(err error) { done <- err })

	time.Sleep(12 * time.Millisecond)
	p.Stop()
	p.Stop() // idempotent

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop did not end polling")
	}

	before := client.callCount()
	time.Sleep(30 * time.Millisecond)
	if after := client.callCount(); after != before {
		t.Errorf("checks continued after stop: %d -> %d", before, after)
	}
}

// gatedClient blocks each status request until the gate opens, reporting on
// entered so tests can act while a check is in flight.
type gatedClient struct {
	entered chan struct{}
	gate    chan struct{}
}

func (c *gatedClient) ChatStatus(ctx context.Context, videoID string) (*api.ChatStatusResponse, error) {
	c.entered <- struct{}{}
	<-c.gate
	return ready()
}

func TestResetDropsInFlightCheck(t *testing.T) {
	client := &gatedClient{entered: make(chan struct{}, 1), gate: make(chan struct{})}
	p := New(client, 0, 0, nil)

	result := make(chan Readiness, 1)
	go func() { result <- p.Check(context.Background(), "old-video") }()

	<-client.entered
	p.Reset()
	close(client.gate)

	if r := <-result; r.State != Ready {
		t.Fatalf("check should still return its own result, got %v", r.State)
	}
	// The recording must not survive the reset; the next video would
	// otherwise inherit the old video's readiness.
	if p.Current().State != Unknown {
		t.Errorf("superseded check recorded its state: got %v, want Unknown", p.Current().State)
	}
}

func TestResetReturnsToUnknown(t *testing.T) {
	client := &scriptedClient{script: []func() (*api.ChatStatusResponse, error){processing}}
	p := New(client, 0, 0, nil)
	p.Check(context.Background(), "vid1")
	if p.Current().State != Processing {
		t.Fatalf("setup failed, state %v", p.Current().State)
	}
	p.Reset()
	if p.Current().State != Unknown {
		t.Errorf("reset should return to unknown, got %v", p.Current().State)
	}
}

package session

import (
	"strings"
	"testing"
)

func TestNewLogSeedsWelcome(t *testing.T) {
	l := NewLog()
	msgs := l.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 seeded message, got %d", len(msgs))
	}
	if msgs[0].Role != RoleAssistant || msgs[0].Text != WelcomeText {
		t.Errorf("unexpected seed message: %+v", msgs[0])
	}
}

func TestBeginSendSingleFlight(t *testing.T) {
	l := NewLog()
	if !l.BeginSend("first") {
		t.Fatal("first send should be accepted")
	}
	if l.BeginSend("second") {
		t.Error("send while pending should be refused")
	}

	msgs := l.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected welcome+user+pending, got %d", len(msgs))
	}
	if msgs[1].Role != RoleUser || msgs[2].Role != RolePending {
		t.Errorf("unexpected ordering: %v then %v", msgs[1].Role, msgs[2].Role)
	}
}

func TestCompleteSendReplacesPlaceholder(t *testing.T) {
	l := NewLog()
	l.BeginSend("question")
	l.CompleteSend("answer [1:30]", []string{"1:30"})

	msgs := l.Messages()
	last := msgs[len(msgs)-1]
	if last.Role != RoleAssistant || last.Text != "answer [1:30]" {
		t.Errorf("unexpected resolution: %+v", last)
	}
	if len(last.Timestamps) != 1 || last.Timestamps[0] != "1:30" {
		t.Errorf("structured timestamps lost: %v", last.Timestamps)
	}
	for _, m := range msgs {
		if m.Role == RolePending {
			t.Error("pending placeholder left dangling")
		}
	}
	if l.HasPending() {
		t.Error("log should accept a new send after resolution")
	}
}

func TestFailSendReplacesPlaceholderWithError(t *testing.T) {
	l := NewLog()
	l.BeginSend("question")
	l.FailSend("backend exploded")

	msgs := l.Messages()
	last := msgs[len(msgs)-1]
	if last.Role != RoleSystem {
		t.Errorf("failure should be a system bubble, got %v", last.Role)
	}
	if !strings.HasPrefix(last.Text, "Error: ") {
		t.Errorf("unexpected error text: %q", last.Text)
	}
	if l.HasPending() {
		t.Error("pending flag should clear on failure")
	}
}

func TestAnnounceReadyOnce(t *testing.T) {
	l := NewLog()
	if !l.AnnounceReady() {
		t.Fatal("first announcement should append")
	}
	if l.AnnounceReady() {
		t.Error("second announcement should be suppressed")
	}
	count := 0
	for _, m := range l.Messages() {
		if m.Role == RoleSystem {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one system announcement, got %d", count)
	}
}

func TestResetReturnsToWelcomeAndRearms(t *testing.T) {
	l := NewLog()
	l.BeginSend("hi")
	l.CompleteSend("hello", nil)
	l.AnnounceReady()

	l.Reset()

	msgs := l.Messages()
	if len(msgs) != 1 || msgs[0].Text != WelcomeText {
		t.Fatalf("reset should reseed the welcome message, got %d messages", len(msgs))
	}
	if !l.AnnounceReady() {
		t.Error("ready announcement should be re-armed after reset")
	}
}

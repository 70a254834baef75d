package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role classifies a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	// RolePending is the placeholder shown while a reply is in flight. At
	// most one pending message exists, and it is always replaced.
	RolePending Role = "pending"
)

// Message is one entry of the chat log. Timestamps carries the backend's
// structured timestamp strings verbatim; navigation targets are recomputed
// from them at render time.
type Message struct {
	ID         string
	Role       Role
	Text       string
	Timestamps []string
	CreatedAt  time.Time
}

// WelcomeText seeds every fresh chat log.
const WelcomeText = "Hi! I'm your video assistant. I can help you chat about this video's content. Ask me anything about what you're watching!"

const readyText = "🎉 Chat is now ready! You can ask questions about this video."

// Log is the append-only message log for one video identity. Switching
// identity clears it back to the seeded welcome message.
type Log struct {
	mu             sync.Mutex
	messages       []Message
	pendingID      string
	readyAnnounced bool
}

// NewLog returns a log seeded with the welcome message.
func NewLog() *Log {
	l := &Log{}
	l.Reset()
	return l
}

// Reset clears the log back to the welcome message and re-arms the
// one-time ready announcement.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = []Message{newMessage(RoleAssistant, WelcomeText, nil)}
	l.pendingID = ""
	l.readyAnnounced = false
}

// Messages returns a copy of the log in append order.
func (l *Log) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasPending reports whether a send is in flight.
func (l *Log) HasPending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pendingID != ""
}

// BeginSend appends the user message followed by a pending placeholder.
// It refuses (returning false) while a previous send is still in flight;
// the placeholder is the single-flight guard against double submission.
func (l *Log) BeginSend(text string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pendingID != "" {
		return false
	}
	l.messages = append(l.messages, newMessage(RoleUser, text, nil))
	pending := newMessage(RolePending, "", nil)
	l.pendingID = pending.ID
	l.messages = append(l.messages, pending)
	return true
}

// CompleteSend replaces the pending placeholder with the assistant reply.
func (l *Log) CompleteSend(text string, timestamps []string) {
	l.resolvePending(newMessage(RoleAssistant, text, timestamps))
}

// FailSend replaces the pending placeholder with a visible error bubble.
func (l *Log) FailSend(errText string) {
	l.resolvePending(newMessage(RoleSystem, "Error: "+errText, nil))
}

func (l *Log) resolvePending(resolution Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pendingID == "" {
		return
	}
	kept := l.messages[:0]
	for _, m := range l.messages {
		if m.ID != l.pendingID {
			kept = append(kept, m)
		}
	}
	l.messages = append(kept, resolution)
	l.pendingID = ""
}

// AnnounceReady appends the chat-ready system message, at most once per
// identity. Returns whether the message was appended.
func (l *Log) AnnounceReady() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readyAnnounced {
		return false
	}
	l.readyAnnounced = true
	l.messages = append(l.messages, newMessage(RoleSystem, readyText, nil))
	return true
}

func newMessage(role Role, text string, timestamps []string) Message {
	return Message{
		ID:         uuid.NewString(),
		Role:       role,
		Text:       text,
		Timestamps: timestamps,
		CreatedAt:  time.Now(),
	}
}

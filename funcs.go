package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tubetalk/tubetalk/internal/markdown"
	"github.com/tubetalk/tubetalk/internal/player"
	"github.com/tubetalk/tubetalk/internal/poll"
	"github.com/tubetalk/tubetalk/internal/session"
	"github.com/tubetalk/tubetalk/internal/timestamp"
)

func waitForEventCmd(o *session.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-o.Events()
		if !ok {
			return nil
		}
		return orchestratorEventMsg{event: ev}
	}
}

func copyReplyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		out := exportText(text)
		if err := clipboard.WriteAll(out); err != nil {
			return copiedMsg{err: err}
		}
		note := "Reply copied to clipboard."
		if out != text {
			note = "Reply copied to clipboard as HTML."
		}
		return copiedMsg{note: note}
	}
}

// exportText is gated on markup detection: plain text is never routed
// through HTML construction.
func exportText(text string) string {
	if markdown.HasMarkup(text) {
		return markdown.ToSafeHTML(text)
	}
	return text
}

func jumpCmd(p player.Player, videoURL string, seconds int) tea.Cmd {
	return func() tea.Msg {
		note, ok := p.Jump(videoURL, seconds)
		return jumpedMsg{note: note, ok: ok}
	}
}

func transcriptItems(doc *session.Transcript) []list.Item {
	if doc == nil {
		return nil
	}
	items := make([]list.Item, len(doc.Segments))
	for i, seg := range doc.Segments {
		items[i] = item{
			text:      seg.Text,
			timestamp: seg.DisplayStart + " - " + seg.DisplayEnd,
			seconds:   int(seg.StartSeconds),
		}
	}
	return items
}

func newTranscriptList(items []list.Item, width, height int) list.Model {
	l := list.New(items, itemDelegate{}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)
	l.SetShowPagination(false)

	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "jump"),
			),
			key.NewBinding(
				key.WithKeys("o"),
				key.WithHelp("o", "open video"),
			),
		}
	}
	return l
}

// lastAssistant returns the newest assistant message, which is what copy
// and timestamp navigation act on.
func lastAssistant(msgs []session.Message) (session.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == session.RoleAssistant {
			return msgs[i], true
		}
	}
	return session.Message{}, false
}

// navTargets merges inline and backend-supplied timestamps of a message
// into the deduplicated navigation bar.
func navTargets(m session.Message) []timestamp.Timestamp {
	return timestamp.Merge(timestamp.Parse(m.Text), m.Timestamps)
}

func renderMessages(msgs []session.Message, spin string, width int) string {
	var b strings.Builder
	for _, m := range msgs {
		switch m.Role {
		case session.RoleUser:
			b.WriteString(UserMsgStyle.Render("You: ") + TextStyle.Render(m.Text))
		case session.RoleAssistant:
			b.WriteString(AssistantStyle.Render("Assistant: " + m.Text))
			if targets := navTargets(m); len(targets) > 0 {
				b.WriteString("\n" + NavBarStyle.Render("  Quick Navigation: "+formatNavBar(targets)))
			}
		case session.RoleSystem:
			b.WriteString(SystemMsgStyle.Render(m.Text))
		case session.RolePending:
			b.WriteString(spin + DimTextStyle.Render("thinking..."))
		}
		b.WriteString("\n\n")
	}
	return lipglossWrap(b.String(), width)
}

func formatNavBar(targets []timestamp.Timestamp) string {
	parts := make([]string, len(targets))
	for i, ts := range targets {
		parts[i] = timestamp.Format(float64(ts.TotalSeconds))
	}
	return strings.Join(parts, " | ")
}

// lipglossWrap keeps long assistant paragraphs inside the window.
func lipglossWrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return TextStyle.Width(width).Render(s)
}

func styleOutput(statuses []string) string {
	var styledStatuses []string
	for i, status := range statuses {
		bullet := "├"
		if i == len(statuses)-1 {
			bullet = "└"
		}
		styledStatuses = append(styledStatuses, BulletStyle.Render(bullet)+TextStyle.Render(status))
	}
	return strings.Join(styledStatuses, "\n") + "\n"
}

// statusLine summarizes the active session for the strip under the header.
func statusLine(snap session.Snapshot, spin string) string {
	switch {
	case snap.VideoID == "":
		return DimTextStyle.Render("No video open. Press 'o' and paste a watch URL.")
	case snap.Fetching:
		return spin + TextStyle.Render("Extracting transcript...")
	case snap.TranscriptErr != "":
		return ErrorStyle.Render(snap.TranscriptErr) + DimTextStyle.Render("  (press 'r' to retry)")
	}

	var meta string
	if doc := snap.Transcript; doc != nil {
		meta = fmt.Sprintf("%d cues", len(doc.Segments))
		if doc.Cached {
			meta += ", cached"
		} else if doc.ExtractionSeconds > 0 {
			meta += fmt.Sprintf(", extracted in %.1fs", doc.ExtractionSeconds)
		}
	}

	readiness := readinessLine(snap, spin)
	if meta == "" {
		return readiness
	}
	return DimTextStyle.Render(meta+"  ·  ") + readiness
}

func readinessLine(snap session.Snapshot, spin string) string {
	r := snap.Readiness
	switch r.State {
	case poll.Ready:
		return SuccessStyle.Render("Chat ready")
	case poll.Processing:
		if snap.Polling {
			return spin + TextStyle.Render("Preparing chat for this video...")
		}
		return TextStyle.Render("Chat still processing. It may become available shortly.")
	case poll.NotFound:
		return DimTextStyle.Render("Chat has no record of this video yet.")
	case poll.Unavailable:
		return ErrorStyle.Render("Chat is unavailable on this backend.")
	case poll.Failed:
		return ErrorStyle.Render(r.Message)
	default:
		return DimTextStyle.Render("Checking chat availability...")
	}
}

func checkDependency(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func getSystemUser() string {
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME") // Windows fallback
	}
	if username == "" {
		username = "anon" // Default fallback
	}

	return username
}

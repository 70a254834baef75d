package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	"github.com/tubetalk/tubetalk/internal/api"
	"github.com/tubetalk/tubetalk/internal/config"
	"github.com/tubetalk/tubetalk/internal/logging"
	"github.com/tubetalk/tubetalk/internal/player"
	"github.com/tubetalk/tubetalk/internal/poll"
	"github.com/tubetalk/tubetalk/internal/session"
	"github.com/tubetalk/tubetalk/internal/watch"
)

const VERSION = "1.0.0"

func (i item) FilterValue() string { return i.text }

func (d itemDelegate) Height() int                             { return 2 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	timestampLine := TimestampStyle.Render(i.timestamp)

	fn := ItemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return SelectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprintf(w, "%s\n%s\n", timestampLine, fn(i.text))
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		waitForEventCmd(m.orch),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := msg.Height - 9
		if bodyHeight < 4 {
			bodyHeight = 4
		}
		if m.listReady {
			m.list.SetSize(msg.Width-2, bodyHeight)
		}
		m.chatView.Width = msg.Width - 2
		m.chatView.Height = bodyHeight - 2
		m.chatInput.Width = msg.Width - 6
		m.urlInput.Width = msg.Width - 6
		m.refreshChatView()
		return m, nil

	case tea.KeyMsg:
		if m.openingURL {
			return m.updateURLPrompt(msg)
		}

		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			m.orch.Close()
			return m, tea.Quit

		case "tab":
			if m.activeTab == tabTranscript {
				m.activeTab = tabChat
				m.chatInput.Focus()
				return m, textinput.Blink
			}
			m.activeTab = tabTranscript
			m.chatInput.Blur()
			return m, nil
		}

		if m.activeTab == tabTranscript {
			return m.updateTranscriptTab(msg)
		}
		return m.updateChatTab(msg)

	case orchestratorEventMsg:
		m.snap = m.orch.Snapshot()
		switch msg.event.Kind {
		case session.EventSessionReset:
			m.listReady = false
			m.addStatus("Opened video " + msg.event.VideoID)
		case session.EventTranscriptLoaded:
			bodyHeight := m.height - 9
			if bodyHeight < 4 {
				bodyHeight = 4
			}
			m.list = newTranscriptList(transcriptItems(m.snap.Transcript), m.width-2, bodyHeight)
			m.listReady = true
		case session.EventPollGaveUp:
			m.addStatus("Gave up waiting for chat readiness. The video may still finish processing later.")
		}
		m.refreshChatView()
		return m, waitForEventCmd(m.orch)

	case copiedMsg:
		if msg.err != nil {
			m.addStatus("Clipboard copy failed: " + msg.err.Error())
		} else {
			m.addStatus(msg.note)
		}
		return m, nil

	case jumpedMsg:
		m.addStatus(msg.note)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) updateURLPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		m.orch.Close()
		return m, tea.Quit

	case "esc":
		m.openingURL = false
		m.urlInput.Blur()
		m.urlInput.SetValue("")
		return m, nil

	case "enter":
		url := strings.TrimSpace(m.urlInput.Value())
		m.openingURL = false
		m.urlInput.Blur()
		m.urlInput.SetValue("")
		if url == "" {
			return m, nil
		}
		if watch.ExtractVideoID(url) == "" {
			m.addStatus("That URL does not look like a watch page.")
			return m, nil
		}
		m.tracker.Set(url)
		return m, nil
	}

	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	return m, cmd
}

func (m model) updateTranscriptTab(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the list filter is capturing input, every key belongs to it.
	if m.listReady && m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		m.orch.Close()
		return m, tea.Quit

	case "o":
		m.openingURL = true
		m.urlInput.Focus()
		return m, textinput.Blink

	case "r":
		if m.snap.VideoID != "" {
			m.orch.RetryTranscript()
		}
		return m, nil

	case "enter":
		if m.listReady {
			if it, ok := m.list.SelectedItem().(item); ok {
				return m, jumpCmd(m.player, m.snap.VideoURL, it.seconds)
			}
		}
		return m, nil
	}

	if m.listReady {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) updateChatTab(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.activeTab = tabTranscript
		m.chatInput.Blur()
		return m, nil

	case "enter":
		if m.orch.Send(m.chatInput.Value()) {
			m.chatInput.SetValue("")
			m.refreshChatView()
		}
		return m, nil

	case "ctrl+y":
		if reply, ok := lastAssistant(m.snap.Messages); ok {
			return m, copyReplyCmd(reply.Text)
		}
		return m, nil

	case "ctrl+j":
		if reply, ok := lastAssistant(m.snap.Messages); ok {
			if targets := navTargets(reply); len(targets) > 0 {
				return m, jumpCmd(m.player, m.snap.VideoURL, targets[0].TotalSeconds)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m *model) refreshChatView() {
	width := m.chatView.Width
	if width <= 0 {
		width = 78
	}
	m.chatView.SetContent(renderMessages(m.snap.Messages, m.spinner.View(), width))
	m.chatView.GotoBottom()
}

func (m *model) addStatus(status string) {
	m.statuses = append(m.statuses, status)
	if len(m.statuses) > 4 {
		m.statuses = m.statuses[len(m.statuses)-4:]
	}
}

func (m model) View() string {
	if m.quitting {
		return styleOutput(m.statuses)
	}

	header := BulletStyle.Render("┌") + TitleStyle.Render("tubetalk")
	if doc := m.snap.Transcript; doc != nil && doc.Title != "" {
		header += DimTextStyle.Render("  ·  " + doc.Title)
	} else if m.snap.VideoID != "" {
		header += DimTextStyle.Render("  ·  " + m.snap.VideoID)
	}

	status := statusLine(m.snap, m.spinner.View())

	transcriptTab := InactiveTabStyle.Render("Transcript")
	chatTab := InactiveTabStyle.Render("Chat")
	if m.activeTab == tabTranscript {
		transcriptTab = ActiveTabStyle.Render("Transcript")
	} else {
		chatTab = ActiveTabStyle.Render("Chat")
	}
	tabs := transcriptTab + DimTextStyle.Render("  │  ") + chatTab + DimTextStyle.Render("   (tab to switch)")

	var body string
	switch {
	case m.openingURL:
		body = TextStyle.Render("Open video URL:") + "\n" + m.urlInput.View()
	case m.activeTab == tabTranscript:
		if m.listReady {
			body = m.list.View()
		} else if m.snap.Fetching {
			body = ""
		} else {
			body = DimTextStyle.Render("No transcript yet.")
		}
	default:
		body = m.chatView.View() + "\n" + m.chatInput.View()
	}

	var notes string
	if len(m.statuses) > 0 {
		notes = styleOutput(m.statuses)
	}

	return strings.Join([]string{header, status, tabs, body, notes}, "\n")
}

func main() {
	fmt.Println(BulletStyle.Render("┌") + TitleStyle.Render("tubetalk"))

	var help bool
	var version bool

	flag.BoolVar(&help, "help", false, "Show usage info")
	flag.BoolVar(&version, "version", false, "Show version info")
	flag.Usage = func() {
		fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Usage: tubetalk [options] [watch-url]"))
		fmt.Println(BulletStyle.Render("│"))
		fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Opens the transcript and chat companion for a video. The URL"))
		fmt.Println(BulletStyle.Render("├") + TextStyle.Render("can also be pasted later with the 'o' key."))
		fmt.Println(BulletStyle.Render("│"))
		fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Environment (TUBETALK_*): API_BASE_URL, REQUEST_TIMEOUT,"))
		fmt.Println(BulletStyle.Render("├") + TextStyle.Render("POLL_INTERVAL, POLL_CEILING, LOG_FILE, PLAYER_PATH, REQUIRE_AUTH"))
		fmt.Println(BulletStyle.Render("│"))
		fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Optional:"))

		status := "✔ installed"
		if !checkDependency("mpv") {
			status = "✗ missing (timestamp jumps disabled)"
		}
		fmt.Println(BulletStyle.Render("├────") + TextStyle.Render("mpv") + DimTextStyle.Render("  "+status))

		fmt.Println(BulletStyle.Render("│"))
		fmt.Println(BulletStyle.Render("└") + TextStyle.Render("The transcript backend must be reachable at the base URL."))
	}

	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}

	if version {
		fmt.Println(BulletStyle.Render("└") + TextStyle.Render(VERSION))
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println(BulletStyle.Render("└") + ErrorStyle.Render("Configuration error: "+err.Error()))
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogFile)
	if err != nil {
		fmt.Println(BulletStyle.Render("└") + ErrorStyle.Render("Logging error: "+err.Error()))
		os.Exit(1)
	}
	defer logger.Sync()

	token := ""
	if cfg.RequireAuth {
		token, err = resolveToken()
		if err != nil {
			fmt.Println(BulletStyle.Render("└") + ErrorStyle.Render(err.Error()))
			os.Exit(1)
		}
	}

	client := api.New(cfg.APIBaseURL, token, cfg.RequestTimeout, logger)
	poller := poll.New(client, cfg.PollInterval, cfg.PollCeiling, logger)
	orch := session.NewOrchestrator(client, poller, logger)

	tracker := watch.NewTracker()
	tracker.OnChange(func(videoID, url string) {
		orch.SetVideo(videoID, url)
	})

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = SpinnerStyle

	chatInput := textinput.New()
	chatInput.Placeholder = "Ask about this video..."
	chatInput.CharLimit = 500

	urlInput := textinput.New()
	urlInput.Placeholder = "https://www.youtube.com/watch?v=..."

	initialModel := model{
		cfg:       cfg,
		logger:    logger,
		orch:      orch,
		tracker:   tracker,
		player:    player.NewMPV(cfg.PlayerPath, logger),
		spinner:   spin,
		chatView:  viewport.New(78, 16),
		chatInput: chatInput,
		urlInput:  urlInput,
	}

	if args := flag.Args(); len(args) == 1 {
		url := args[0]
		if watch.ExtractVideoID(url) == "" {
			fmt.Printf(BulletStyle.Render("└")+TextStyle.Render("Error: '%s' is not a watch-page URL.")+"\n", url)
			os.Exit(1)
		}
		tracker.Set(url)
	}

	p := tea.NewProgram(
		initialModel,
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
	}
	orch.Close()
}

func resolveToken() (string, error) {
	username := getSystemUser()

	token, err := keyring.Get("tubetalk", username)
	if err != nil && !strings.Contains(err.Error(), "secret not found") {
		return "", fmt.Errorf("error reading backend token: %w", err)
	}
	if token != "" {
		fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Backend token loaded for this session."))
		return token, nil
	}

	fmt.Print(BulletStyle.Render("├") + TextStyle.Render("Backend token not found, enter one: "))
	byteToken, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("error reading backend token: %w", err)
	}
	fmt.Println()

	token = strings.TrimSpace(string(byteToken))
	if token == "" {
		return "", fmt.Errorf("a backend token is required when auth is enabled")
	}

	if err := keyring.Set("tubetalk", username, token); err != nil {
		return "", fmt.Errorf("error saving backend token: %w", err)
	}

	fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Backend token saved for future sessions."))
	return token, nil
}

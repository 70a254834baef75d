package main

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"

	"github.com/tubetalk/tubetalk/internal/config"
	"github.com/tubetalk/tubetalk/internal/player"
	"github.com/tubetalk/tubetalk/internal/session"
	"github.com/tubetalk/tubetalk/internal/watch"
)

type tab int

const (
	tabTranscript tab = iota
	tabChat
)

type orchestratorEventMsg struct {
	event session.Event
}

type copiedMsg struct {
	note string
	err  error
}

type jumpedMsg struct {
	note string
	ok   bool
}

type model struct {
	cfg     *config.Config
	logger  *zap.Logger
	orch    *session.Orchestrator
	tracker *watch.Tracker
	player  player.Player

	snap session.Snapshot

	activeTab  tab
	spinner    spinner.Model
	list       list.Model
	listReady  bool
	chatView   viewport.Model
	chatInput  textinput.Model
	urlInput   textinput.Model
	openingURL bool

	width    int
	height   int
	statuses []string
	quitting bool
}

type item struct {
	text      string
	timestamp string
	seconds   int
}

type itemDelegate struct{}

package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/glucobar/internal/browser"
	"github.com/five82/glucobar/internal/fetcher"
	"github.com/five82/glucobar/internal/logtail"
	"github.com/five82/glucobar/internal/prefs"
	"github.com/five82/glucobar/internal/state"
)

const (
	defaultPollTick = time.Second
	logTailLines    = 200
	refreshTimeout  = 15 * time.Second
)

// Refresher performs an unthrottled refresh on demand.
type Refresher interface {
	ForceRefresh(ctx context.Context) fetcher.Outcome
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Refresher Refresher
	SiteURL   string
	LogPath   string
	HideStale bool
	PollTick  time.Duration
	ThemeName string
	ShowLogs  bool
	PrefsPath string
	Open      browser.Opener   // nil uses the system browser
	Now       func() time.Time // nil uses time.Now
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	refresher Refresher
	siteURL   string
	logPath   string
	hideStale bool
	prefsPath string
	pollTick  time.Duration
	open      browser.Opener
	now       func() time.Time

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	width    int
	height   int
	ready    bool
	showHelp bool
	showLogs bool
	notice   string

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time
	refreshing  bool

	// Log state
	logViewport viewport.Model
	logLines    []string
	logErr      error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = defaultPollTick
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return Model{
		ctx:       ctx,
		store:     opts.Store,
		refresher: opts.Refresher,
		siteURL:   opts.SiteURL,
		logPath:   opts.LogPath,
		hideStale: opts.HideStale,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		open:      opts.Open,
		now:       now,
		theme:     GetTheme(opts.ThemeName),
		keys:      defaultKeyMap(),
		help:      help.New(),
		showLogs:  opts.ShowLogs,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.showLogs {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.logViewport = viewport.New(m.logWidth(), m.logHeight())
		}
		m.ready = true
		m.logViewport.Width = m.logWidth()
		m.logViewport.Height = m.logHeight()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = m.now()
		return m, nil

	case logLinesMsg:
		m.logLines = msg.lines
		m.logErr = msg.err
		m.updateLogViewport()
		return m, nil

	case refreshDoneMsg:
		m.refreshing = false
		m.notice = "refresh: " + fetcher.Outcome(msg).String()
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil

	case openResultMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
		} else {
			m.notice = "opened " + m.siteURL
		}
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.notice = "save prefs: " + msg.err.Error()
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.refresher == nil || m.refreshing {
			return m, nil
		}
		m.refreshing = true
		m.notice = "refreshing..."
		return m, forceRefreshCmd(m.ctx, m.refresher)

	case key.Matches(msg, m.keys.Open):
		return m, openSiteCmd(m.open, m.siteURL)

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.notice = "theme: " + m.theme.Name
		m.updateLogViewport()
		return m, m.savePrefsCmd()

	case key.Matches(msg, m.keys.ToggleLogs):
		m.showLogs = !m.showLogs
		m.logViewport.Height = m.logHeight()
		cmds := []tea.Cmd{m.savePrefsCmd()}
		if m.showLogs {
			cmds = append(cmds, readLogsCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)
	}

	if m.showLogs {
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
	}
	return m, nil
}

// handleTick refreshes the snapshot and, when visible, the log pane.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.showLogs {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m Model) savePrefsCmd() tea.Cmd {
	path := m.prefsPath
	p := prefs.Prefs{Theme: m.theme.Name, ShowLogs: m.showLogs}
	return func() tea.Msg {
		return prefsSavedMsg{err: prefs.Save(path, p)}
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type logLinesMsg struct {
	lines []string
	err   error
}

type refreshDoneMsg fetcher.Outcome

type openResultMsg struct{ err error }

type prefsSavedMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func readLogsCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, logTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

func forceRefreshCmd(ctx context.Context, r Refresher) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()
		return refreshDoneMsg(r.ForceRefresh(ctx))
	}
}

func openSiteCmd(open browser.Opener, target string) tea.Cmd {
	return func() tea.Msg {
		return openResultMsg{err: browser.Open(open, target)}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}

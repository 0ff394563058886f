package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/glucobar/internal/fetcher"
	"github.com/five82/glucobar/internal/glucose"
	"github.com/five82/glucobar/internal/prefs"
	"github.com/five82/glucobar/internal/state"
)

type fakeRefresher struct {
	calls atomic.Int32
}

func (f *fakeRefresher) ForceRefresh(context.Context) fetcher.Outcome {
	f.calls.Add(1)
	return fetcher.OutcomeRefreshed
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, store *state.Store, opts Options) Model {
	t.Helper()
	opts.Store = store
	opts.Now = func() time.Time { return testNow }
	if opts.PrefsPath == "" {
		opts.PrefsPath = filepath.Join(t.TempDir(), "prefs.toml")
	}
	m := New(opts)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = updated.(Model)
	if store != nil {
		updated, _ = m.Update(snapshotMsg(store.Snapshot()))
		m = updated.(Model)
	}
	return m
}

func storeWithReading(mgdl int, dir glucose.Direction, age time.Duration) *state.Store {
	store := state.NewStore(glucose.UnitMmol, glucose.DefaultStaleAfter)
	r := glucose.NewReading(mgdl, dir, testNow.Add(-age), testNow, glucose.DefaultPolicy())
	store.Update(r, r.Text(glucose.UnitMmol))
	return store
}

func TestViewShowsReading(t *testing.T) {
	m := newTestModel(t, storeWithReading(90, glucose.Flat, 2*time.Minute), Options{})

	view := m.View()
	for _, want := range []string{"5.0→", "90 mg/dL", "5.0 mmol/L", "in range", "2m ago"} {
		if !strings.Contains(view, want) {
			t.Fatalf("View() missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "stale") {
		t.Fatalf("fresh reading rendered as stale:\n%s", view)
	}
}

func TestViewStaleReading(t *testing.T) {
	store := storeWithReading(90, glucose.Flat, time.Hour)

	shown := newTestModel(t, store, Options{HideStale: false})
	header := shown.renderHeader()
	if !strings.Contains(header, "5.0→") || !strings.Contains(header, "stale") {
		t.Fatalf("header = %q, want text with stale badge", header)
	}

	hidden := newTestModel(t, store, Options{HideStale: true})
	header = hidden.renderHeader()
	if strings.Contains(header, "5.0→") {
		t.Fatalf("header = %q, want stale text hidden", header)
	}
	if !strings.Contains(header, "stale") {
		t.Fatalf("header = %q, want stale badge", header)
	}
}

func TestViewErrorMarker(t *testing.T) {
	store := storeWithReading(90, glucose.Flat, time.Minute)
	store.FailWith(errors.New("api returned status 500"), state.ErrorMarker)
	store.FailWith(errors.New("api returned status 500"), state.ErrorMarker)

	m := newTestModel(t, store, Options{HideStale: true})
	view := m.View()
	for _, want := range []string{state.ErrorMarker, "status 500 (x2)", "offline"} {
		if !strings.Contains(view, want) {
			t.Fatalf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestViewWaiting(t *testing.T) {
	m := newTestModel(t, state.NewStore(glucose.UnitMmol, glucose.DefaultStaleAfter), Options{})
	if !strings.Contains(m.View(), "waiting for first reading") {
		t.Fatalf("View() = %q, want waiting message", m.View())
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, nil, Options{})
	for _, msg := range []tea.KeyMsg{runes("e"), {Type: tea.KeyCtrlC}} {
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("key %q returned nil cmd", msg.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("key %q did not quit", msg.String())
		}
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, nil, Options{})

	updated, _ := m.Update(runes("?"))
	m = updated.(Model)
	if !m.showHelp {
		t.Fatal("? did not open help")
	}
	if !strings.Contains(m.View(), "cycle theme") {
		t.Fatalf("help view missing bindings:\n%s", m.View())
	}

	updated, cmd := m.Update(runes("e"))
	m = updated.(Model)
	if m.showHelp {
		t.Fatal("key did not close help")
	}
	if cmd != nil {
		t.Fatal("closing help should not quit")
	}
}

func TestForceRefreshKey(t *testing.T) {
	r := &fakeRefresher{}
	store := storeWithReading(90, glucose.Flat, time.Minute)
	m := newTestModel(t, store, Options{Refresher: r})

	updated, cmd := m.Update(runes("r"))
	m = updated.(Model)
	if cmd == nil || !m.refreshing {
		t.Fatal("r did not start a refresh")
	}

	// A second press while the first is running is ignored.
	if _, again := m.Update(runes("r")); again != nil {
		t.Fatal("second r started another refresh")
	}

	msg := cmd()
	done, ok := msg.(refreshDoneMsg)
	if !ok {
		t.Fatalf("refresh cmd returned %T, want refreshDoneMsg", msg)
	}
	if r.calls.Load() != 1 {
		t.Fatalf("ForceRefresh calls = %d, want 1", r.calls.Load())
	}

	updated, _ = m.Update(done)
	m = updated.(Model)
	if m.refreshing {
		t.Fatal("refreshing still set after completion")
	}
	if m.notice != "refresh: refreshed" {
		t.Fatalf("notice = %q, want %q", m.notice, "refresh: refreshed")
	}
}

func TestOpenKey(t *testing.T) {
	var opened string
	m := newTestModel(t, nil, Options{
		SiteURL: "https://cgm.example.com",
		Open: func(u string) error {
			opened = u
			return nil
		},
	})

	_, cmd := m.Update(runes("o"))
	if cmd == nil {
		t.Fatal("o returned nil cmd")
	}
	msg := cmd()
	if opened != "https://cgm.example.com" {
		t.Fatalf("opened = %q", opened)
	}
	updated, _ := m.Update(msg)
	if got := updated.(Model).notice; got != "opened https://cgm.example.com" {
		t.Fatalf("notice = %q", got)
	}
}

func TestOpenKeyRejectsBadURL(t *testing.T) {
	called := false
	m := newTestModel(t, nil, Options{
		SiteURL: "file:///etc/passwd",
		Open:    func(string) error { called = true; return nil },
	})

	_, cmd := m.Update(runes("o"))
	msg := cmd()
	if called {
		t.Fatal("opener called for non-http url")
	}
	if res, ok := msg.(openResultMsg); !ok || res.err == nil {
		t.Fatalf("msg = %#v, want open error", msg)
	}
}

func TestCycleThemePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	m := newTestModel(t, nil, Options{ThemeName: "Nightfox", PrefsPath: path})

	updated, cmd := m.Update(runes("T"))
	m = updated.(Model)
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	if msg, ok := cmd().(prefsSavedMsg); !ok || msg.err != nil {
		t.Fatalf("save prefs msg = %#v", msg)
	}
	if got := prefs.Load(path).Theme; got != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", got)
	}
}

func TestToggleLogsReadsTail(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "glucobar.log")
	m := newTestModel(t, nil, Options{LogPath: logPath, PrefsPath: filepath.Join(dir, "prefs.toml")})

	updated, cmd := m.Update(runes("l"))
	m = updated.(Model)
	if !m.showLogs {
		t.Fatal("l did not show logs")
	}
	if cmd == nil {
		t.Fatal("l returned nil cmd")
	}

	updated, _ = m.Update(logLinesMsg{lines: []string{
		"2024-05-01 12:00:00 INF refreshed text=5.0→",
		"2024-05-01 12:00:05 ERR refresh failed",
	}})
	m = updated.(Model)
	view := m.View()
	if !strings.Contains(view, "refresh failed") {
		t.Fatalf("log pane missing lines:\n%s", view)
	}

	updated, _ = m.Update(runes("l"))
	if updated.(Model).showLogs {
		t.Fatal("second l did not hide logs")
	}
}

func TestTickSchedulesWork(t *testing.T) {
	m := newTestModel(t, storeWithReading(90, glucose.Flat, time.Minute), Options{})
	_, cmd := m.Update(tickMsg(testNow))
	if cmd == nil {
		t.Fatal("tick returned nil cmd")
	}
}

func TestViewBeforeResize(t *testing.T) {
	m := New(Options{})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View() = %q, want Loading...", got)
	}
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/glucobar/internal/glucose"
	"github.com/five82/glucobar/internal/logtail"
	"github.com/five82/glucobar/internal/state"
)

const (
	headerHeight = 1
	panelHeight  = 9 // six rows plus border and title
	footerHeight = 2
	labelWidth   = 13
)

// renderMain renders the header, detail panel, optional log pane and footer.
func (m Model) renderMain() string {
	parts := []string{m.renderHeader(), m.renderDetail()}
	if m.showLogs {
		parts = append(parts, m.renderLogs())
	}
	parts = append(parts, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader renders the logo and the glucose text.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	now := m.now()
	snap := m.snapshot

	parts := []string{styles.Logo.Render("glucobar")}
	switch {
	case snap.Text == state.ErrorMarker:
		parts = append(parts, styles.DangerText.Render(snap.Text))
	case !snap.HasReading && snap.Text == "":
		parts = append(parts, styles.MutedText.Render("waiting for first reading"))
	default:
		title := snap.Title(now, m.hideStale)
		stale := snap.IsStale(now)
		if title != "" {
			parts = append(parts, m.theme.ValueStyle(snap.Reading.Range, stale).Render(title))
		}
		if stale {
			parts = append(parts, styles.Badge.Render("stale"))
		}
	}
	if snap.IsOffline() {
		parts = append(parts, styles.DangerText.Render("offline"))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		Render(strings.Join(parts, "  "))
}

// renderDetail renders the reading details.
func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	snap := m.snapshot

	row := func(label, value string) string {
		return styles.MutedText.Render(padRight(label, labelWidth)) + value
	}

	var rows []string
	if snap.HasReading {
		r := snap.Reading
		rangeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.RangeColor(r.Range)))
		rows = append(rows,
			row("Glucose", styles.Text.Render(fmt.Sprintf("%s mg/dL  %s mmol/L",
				glucose.FormatMgdl(r.Mgdl), glucose.FormatMmol(r.Mgdl)))),
			row("Range", rangeStyle.Render(rangeLabel(r.Range))),
			row("Trend", styles.Text.Render(r.Direction.Glyph()+" "+r.Direction.Label())),
			row("Age", m.renderAge(snap)),
		)
	} else {
		rows = append(rows, row("Glucose", styles.FaintText.Render("-")))
	}
	rows = append(rows, row("Refreshed", styles.Text.Render(formatClock(snap.LastRefreshed))))

	errText := styles.FaintText.Render("none")
	if snap.LastError != nil {
		msg := snap.LastError.Error()
		if snap.ConsecutiveFailures > 1 {
			msg = fmt.Sprintf("%s (x%d)", msg, snap.ConsecutiveFailures)
		}
		errText = styles.DangerText.Render(truncate(msg, m.width-labelWidth-6))
	}
	rows = append(rows, row("Last error", errText))

	title := styles.AccentText.Render("Reading")
	if snap.IsOffline() {
		title += "  " + styles.DangerText.Render("site offline")
	}
	body := title + "\n" + strings.Join(rows, "\n")
	return styles.Panel.Width(max(m.width-2, 0)).Render(body)
}

func (m Model) renderAge(snap state.Snapshot) string {
	styles := m.theme.Styles()
	now := m.now()
	age := humanizeAge(snap.Reading.Age(now))
	if snap.IsStale(now) {
		return styles.FaintText.Render(age) + " " + styles.Badge.Render("stale")
	}
	return styles.Text.Render(age)
}

func rangeLabel(r glucose.Range) string {
	switch r {
	case glucose.RangeLow:
		return "low"
	case glucose.RangeHigh:
		return "high"
	default:
		return "in range"
	}
}

// renderLogs renders the log pane.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Render("Log") + "  " + styles.FaintText.Render(m.logPath)
	return styles.Panel.Width(max(m.width-2, 0)).Render(title + "\n" + m.logViewport.View())
}

// updateLogViewport re-renders log lines into the viewport, following the tail.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	follow := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0
	m.logViewport.SetContent(m.formatLogLines())
	if follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) formatLogLines() string {
	styles := m.theme.Styles()
	if m.logErr != nil {
		return styles.DangerText.Render(m.logErr.Error())
	}
	if len(m.logLines) == 0 {
		return styles.FaintText.Render("no log lines yet")
	}
	width := m.logWidth()
	out := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		color := m.theme.LevelColor(logtail.ParseLevel(line))
		out[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(truncate(line, width))
	}
	return strings.Join(out, "\n")
}

func (m Model) logWidth() int {
	return max(m.width-4, 0)
}

func (m Model) logHeight() int {
	// Panel border and title take three rows.
	return max(m.height-headerHeight-panelHeight-footerHeight-3, 1)
}

// renderFooter renders the notice line and the short help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	notice := m.notice
	if notice == "" && !m.lastUpdated.IsZero() {
		notice = "updated " + formatClock(m.lastUpdated)
	}
	return styles.Footer.Render(notice) + "\n" + styles.Footer.Render(m.help.View(m.keys))
}

// renderHelp renders the full help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	h := m.help
	h.ShowAll = true
	body := styles.AccentText.Render("Keys") + "\n\n" + h.View(m.keys) + "\n\n" +
		styles.FaintText.Render("themes: "+strings.Join(ThemeNames(), ", ")+"  |  press any key to close")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, styles.Panel.Render(body))
}

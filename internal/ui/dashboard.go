package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skywatch/internal/engine"
	"github.com/litescript/ls-skywatch/internal/state"
)

// Styles for the dashboard
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// DashboardOpenTargetMsg requests the detail view for a target.
type DashboardOpenTargetMsg struct {
	Target string
}

// DashboardModel lists the latest scan of every target.
type DashboardModel struct {
	width    int
	height   int
	cursor   int
	snapshot state.Snapshot
	lastErr  error
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel() DashboardModel {
	return DashboardModel{}
}

// Init implements the Bubble Tea model interface.
func (m DashboardModel) Init() tea.Cmd {
	return nil
}

// SetSize updates the viewport size.
func (m DashboardModel) SetSize(width, height int) DashboardModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m DashboardModel) UpdateData(snapshot state.Snapshot) DashboardModel {
	m.snapshot = snapshot
	if m.cursor >= len(snapshot.Latest) {
		m.cursor = max(len(snapshot.Latest)-1, 0)
	}
	return m
}

// SetError sets the last error for display.
func (m DashboardModel) SetError(err error) DashboardModel {
	m.lastErr = err
	return m
}

// Update handles messages.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	n := len(m.snapshot.Latest)
	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "home":
		m.cursor = 0
	case "end":
		if n > 0 {
			m.cursor = n - 1
		}
	case "enter":
		if target := m.SelectedTarget(); target != "" {
			return m, func() tea.Msg { return DashboardOpenTargetMsg{Target: target} }
		}
	}
	return m, nil
}

// SelectedTarget returns the target under the cursor, or "".
func (m DashboardModel) SelectedTarget() string {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Latest) {
		return ""
	}
	return m.snapshot.Latest[m.cursor].Target
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	var b strings.Builder

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("Error: " + m.lastErr.Error()))
		b.WriteString("\n\n")
	}

	if len(m.snapshot.Latest) == 0 {
		if m.lastErr == nil {
			b.WriteString("Waiting for the first scan...\n")
		}
		return b.String()
	}

	b.WriteString(m.renderScanTable())
	return b.String()
}

func (m DashboardModel) renderScanTable() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Latest Scans"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-16s %-12s %-8s %-10s %-10s %s",
		"Target", "From", "Visible", "Best Date", "Rating", "Days")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 6
	if maxRows < 5 {
		maxRows = 5
	}
	scans := m.snapshot.Latest
	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := min(startIdx+maxRows, len(scans))

	for i := startIdx; i < endIdx; i++ {
		rec := scans[i]
		bestDate, rating := "-", "-"
		if best, ok := bestDay(rec.Days); ok {
			bestDate, rating = best.Date, string(best.Verdict.Rating)
		}

		row := fmt.Sprintf("%-16s %-12s %-8s %-10s %-10s ",
			truncate(rec.Target, 16),
			truncate(rec.Start.Format("2006-01-02"), 12),
			fmt.Sprintf("%d/%d", rec.VisibleDays(), len(rec.Days)),
			bestDate,
			rating,
		)
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString(RenderDayBar(rec.Days))
		b.WriteString("\n")
	}

	if len(scans) > maxRows {
		b.WriteString(fmt.Sprintf("\n  Showing %d-%d of %d targets", startIdx+1, endIdx, len(scans)))
	}
	return b.String()
}

// bestDay returns the visible date with the highest peak score.
func bestDay(days []engine.DayVerdict) (engine.DayVerdict, bool) {
	var best engine.DayVerdict
	found := false
	for _, d := range days {
		if d.Verdict == nil || !d.Verdict.Visible || d.Peak == nil {
			continue
		}
		if !found || d.Peak.Score > best.Peak.Score {
			best, found = d, true
		}
	}
	return best, found
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

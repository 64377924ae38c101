package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skywatch/internal/state"
)

// DetailModel shows each date of one target's latest scan.
type DetailModel struct {
	width     int
	height    int
	target    string
	dayCursor int
	snapshot  state.Snapshot
}

// NewDetailModel creates a new detail model.
func NewDetailModel() DetailModel {
	return DetailModel{}
}

// SetSize updates the viewport size.
func (m DetailModel) SetSize(width, height int) DetailModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data. The first target is selected
// when none is.
func (m DetailModel) UpdateData(snapshot state.Snapshot) DetailModel {
	m.snapshot = snapshot
	if m.target == "" && len(snapshot.Latest) > 0 {
		m.target = snapshot.Latest[0].Target
	}
	if rec, ok := m.current(); ok && m.dayCursor >= len(rec.Days) {
		m.dayCursor = max(len(rec.Days)-1, 0)
	}
	return m
}

// SetTarget selects a target and rewinds to its first date.
func (m DetailModel) SetTarget(target string) DetailModel {
	m.target = target
	m.dayCursor = 0
	return m
}

// Target returns the selected target.
func (m DetailModel) Target() string {
	return m.target
}

func (m DetailModel) current() (state.ScanRecord, bool) {
	for _, rec := range m.snapshot.Latest {
		if rec.Target == m.target {
			return rec, true
		}
	}
	return state.ScanRecord{}, false
}

func (m DetailModel) targetIndex() int {
	for i, rec := range m.snapshot.Latest {
		if rec.Target == m.target {
			return i
		}
	}
	return -1
}

// Update handles messages.
func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	n := len(m.snapshot.Latest)
	switch keyMsg.String() {
	case "left", "h":
		if n > 0 {
			idx := (m.targetIndex() - 1 + n) % n
			m = m.SetTarget(m.snapshot.Latest[idx].Target)
		}
	case "right", "l":
		if n > 0 {
			idx := (m.targetIndex() + 1) % n
			m = m.SetTarget(m.snapshot.Latest[idx].Target)
		}
	case "up", "k":
		if m.dayCursor > 0 {
			m.dayCursor--
		}
	case "down", "j":
		if rec, ok := m.current(); ok && m.dayCursor < len(rec.Days)-1 {
			m.dayCursor++
		}
	}
	return m, nil
}

// View renders the detail view.
func (m DetailModel) View() string {
	rec, ok := m.current()
	if !ok {
		return "No scan selected\n"
	}

	var b strings.Builder
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	site := rec.Observer.Name
	if site == "" {
		site = fmt.Sprintf("%.2f, %.2f", rec.Observer.LatDeg, rec.Observer.LonDeg)
	}
	b.WriteString(titleStyle.Render(rec.Target))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  from %s, computed %s in %s",
		site, rec.ComputedAt.Format("2006-01-02 15:04"), rec.Duration.Round(time.Millisecond))))
	b.WriteString("\n\n")

	for i, d := range rec.Days {
		line := "  " + d.Date
		if d.Verdict != nil {
			line += "  " + string(d.Verdict.Rating)
		}
		if i == m.dayCursor {
			b.WriteString(selectedRowStyle.Render("▶" + line[1:]))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if len(rec.Days) > 0 {
		b.WriteString("\n")
		b.WriteString(RenderVerdictPanel(rec.Days[m.dayCursor]))
		b.WriteString("\n")
	}
	return b.String()
}

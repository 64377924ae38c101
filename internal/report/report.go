// Package report renders engine results for the terminal and as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/engine"
	"github.com/litescript/ls-skywatch/internal/meteor"
	"github.com/litescript/ls-skywatch/internal/state"
	"github.com/litescript/ls-skywatch/internal/verdict"
)

const ruleWidth = 78

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	visibleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	hiddenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// ScanExport is the JSON-serializable representation of a scan.
type ScanExport struct {
	Target      string         `json:"target"`
	Observer    astro.Observer `json:"observer"`
	Start       string         `json:"start"`
	ComputedAt  time.Time      `json:"computed_at"`
	VisibleDays int            `json:"visible_days"`
	Days        []DayExport    `json:"days"`
}

// DayExport is one judged date. Verdict is nil when the date could not be
// judged and Error says why.
type DayExport struct {
	Date    string           `json:"date"`
	Verdict *verdict.Verdict `json:"verdict"`
	Score   float64          `json:"composite_score"`
	Error   string           `json:"error,omitempty"`
}

// ExportScan converts a scan record to its exportable form.
func ExportScan(rec state.ScanRecord) *ScanExport {
	export := &ScanExport{
		Target:      rec.Target,
		Observer:    rec.Observer,
		Start:       rec.Start.Format("2006-01-02"),
		ComputedAt:  rec.ComputedAt,
		VisibleDays: rec.VisibleDays(),
		Days:        make([]DayExport, 0, len(rec.Days)),
	}
	for _, d := range rec.Days {
		day := DayExport{Date: d.Date, Verdict: d.Verdict, Error: d.Error}
		if d.Peak != nil {
			day.Score = d.Peak.Score
		}
		export.Days = append(export.Days, day)
	}
	return export
}

// WriteJSON writes the scan as indented JSON.
func (s *ScanExport) WriteJSON(w io.Writer) error {
	return WriteJSON(w, s)
}

// WriteJSON writes any result as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteScanTable writes a per-date table of a scan.
func WriteScanTable(w io.Writer, rec state.ScanRecord) {
	site := rec.Observer.Name
	if site == "" {
		site = fmt.Sprintf("%.4f, %.4f", rec.Observer.LatDeg, rec.Observer.LonDeg)
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s from %s @ %s", rec.Target, site, rec.ComputedAt.Format(time.RFC3339))))
	fmt.Fprintln(w, strings.Repeat("─", ruleWidth))

	if len(rec.Days) == 0 {
		fmt.Fprintln(w, "No dates scanned")
		return
	}

	fmt.Fprintf(w, "%-10s %-7s %-5s %6s %-9s %-9s %s\n",
		"Date", "Visible", "Best", "Alt", "Direction", "Rating", "Moon")
	fmt.Fprintln(w, strings.Repeat("─", ruleWidth))

	for _, d := range rec.Days {
		if d.Verdict == nil {
			fmt.Fprintf(w, "%-10s %s\n", d.Date, errorStyle.Render(d.Error))
			continue
		}
		v := d.Verdict
		mark, style := "no", hiddenStyle
		if v.Visible {
			mark, style = "yes", visibleStyle
		}
		best := "--:--"
		if v.BestTime != nil {
			best = *v.BestTime
		}
		moon := ""
		if d.Peak != nil {
			moon = fmt.Sprintf("%s %.0f%%", d.Peak.MoonPhase, d.Peak.Illumination*100)
		}
		row := fmt.Sprintf("%-10s %-7s %-5s %5.1f° %-9s %-9s %s",
			d.Date, mark, best, v.AltitudeDeg, truncateStr(v.AzimuthDirection, 9), v.Rating, moon)
		fmt.Fprintln(w, style.Render(row))
	}

	fmt.Fprintf(w, "\nVisible on %d of %d dates\n", rec.VisibleDays(), len(rec.Days))
}

// WriteReasons writes the reasons behind each verdict of a scan.
func WriteReasons(w io.Writer, rec state.ScanRecord) {
	for _, d := range rec.Days {
		if d.Verdict == nil {
			continue
		}
		fmt.Fprintln(w, titleStyle.Render(d.Date))
		for _, r := range d.Verdict.Reasons {
			fmt.Fprintln(w, "  - "+r)
		}
	}
}

// WriteEvents writes the last n visibility changes, newest last.
func WriteEvents(w io.Writer, events []state.Event, n int) {
	fmt.Fprintln(w, titleStyle.Render("Visibility changes"))
	if len(events) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  none"))
		return
	}
	if len(events) > n {
		events = events[len(events)-n:]
	}
	for _, e := range events {
		line := fmt.Sprintf("  %s %-18s %s %s", e.Timestamp.Format("15:04:05"), e.Type, e.Target, e.Date)
		if e.Type == state.EventRatingChanged {
			line += fmt.Sprintf(" %s → %s", e.OldRating, e.NewRating)
		}
		fmt.Fprintln(w, line)
	}
}

// WriteNights writes sunset, sunrise and twilight for each night window.
func WriteNights(w io.Writer, nights []astro.NightWindow) {
	fmt.Fprintf(w, "%-10s %-16s %-16s %-5s %-5s %s\n", "Date", "Sunset", "Sunrise", "Dusk", "Dawn", "Dark")
	fmt.Fprintln(w, strings.Repeat("─", ruleWidth))
	for _, n := range nights {
		dusk, dawn := "--:--", "--:--"
		if n.HasTwilight {
			dusk = astro.ToLocal(n.DuskUTC, n.UTCOffsetSec).Format("15:04")
			dawn = astro.ToLocal(n.DawnUTC, n.UTCOffsetSec).Format("15:04")
		}
		fmt.Fprintf(w, "%-10s %-16s %-16s %-5s %-5s %s\n",
			n.Date.Format("2006-01-02"),
			n.SunsetLocal.Format("2006-01-02 15:04"),
			n.SunriseLocal.Format("2006-01-02 15:04"),
			dusk, dawn,
			n.Duration().Round(time.Minute))
	}
}

// WriteMoon writes a one-line moon phase summary.
func WriteMoon(w io.Writer, m astro.MoonPhase) {
	fmt.Fprintf(w, "Moon %s: %s, %.0f%% illuminated (phase angle %.1f°)\n",
		m.Date.Format("2006-01-02"), m.Name, m.Illumination*100, m.PhaseAngleDeg)
}

// WriteApproach writes an approach classification.
func WriteApproach(w io.Writer, r engine.ApproachReport) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s: %s", r.Body, r.Status)))
	fmt.Fprintf(w, "  window     %s + %d days\n", r.WindowStart.Format("2006-01-02"), r.WindowDays)
	fmt.Fprintf(w, "  closest    %s at %.4f AU\n", r.ClosestApproach.Time.Format("2006-01-02"), r.ClosestApproach.DistanceAU)
	if r.NextClosestApproach != nil {
		fmt.Fprintf(w, "  next       %s at %.4f AU\n", r.NextClosestApproach.Time.Format("2006-01-02"), r.NextClosestApproach.DistanceAU)
	}
	if r.Requeried {
		fmt.Fprintln(w, dimStyle.Render("  (requeried from the return date)"))
	}
	fmt.Fprintln(w, "  "+r.Message)
}

// WriteShowers writes meteor shower reports.
func WriteShowers(w io.Writer, reports []meteor.Report) {
	for _, r := range reports {
		kind := "annual"
		if !r.Annual {
			kind = "estimated"
		}
		fmt.Fprintf(w, "%-14s %s..%s (%s)  %s\n", r.Name, r.PeakStartDate, r.PeakEndDate, kind, r.Message)
		if r.Lenient {
			fmt.Fprintln(w, dimStyle.Render("  "+r.ConditionsUsed))
		}
	}
}

// WriteOppositions writes close-approach events, closest first.
func WriteOppositions(w io.Writer, events []engine.OppositionEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No close approaches within the thresholds")
		return
	}
	for _, e := range events {
		fmt.Fprintf(w, "%s  %.4f AU  %-19s RA %s  Dec %s\n",
			e.Time.Format("2006-01-02"), e.DistanceAU, e.Event, e.RA, e.Dec)
	}
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}

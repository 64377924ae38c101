package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skywatch/internal/engine"
	"github.com/litescript/ls-skywatch/internal/verdict"
)

// Rating colors
const (
	colorExcellent = "#7CFC00" // Lawn green
	colorGood      = "#ADFF2F" // Green yellow
	colorModerate  = "#FFD700" // Gold
	colorPoor      = "#FF6347" // Tomato
	colorVeryPoor  = "#444444" // Dark gray
	colorDayError  = "#E84A27"
)

// ratingToColor returns the color for a rating.
func ratingToColor(r verdict.Rating) string {
	switch r {
	case verdict.Excellent:
		return colorExcellent
	case verdict.Good:
		return colorGood
	case verdict.Moderate:
		return colorModerate
	case verdict.Poor:
		return colorPoor
	default:
		return colorVeryPoor
	}
}

// ratingToBar converts a rating to a 4-character bar.
func ratingToBar(r verdict.Rating) string {
	switch r {
	case verdict.Excellent:
		return "████"
	case verdict.Good:
		return "███░"
	case verdict.Moderate:
		return "██░░"
	case verdict.Poor:
		return "█░░░"
	default:
		return "░░░░"
	}
}

// colorByRating applies rating-based coloring to text.
func colorByRating(r verdict.Rating, text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ratingToColor(r))).Render(text)
}

// RenderDayBar renders one cell per scanned date.
// Format: ██░█·██ (█ visible, ░ not visible, · could not be judged)
func RenderDayBar(days []engine.DayVerdict) string {
	var b strings.Builder
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorDayError))
	for _, d := range days {
		switch {
		case d.Verdict == nil:
			b.WriteString(errStyle.Render("·"))
		case d.Verdict.Visible:
			b.WriteString(colorByRating(d.Verdict.Rating, "█"))
		default:
			b.WriteString(colorByRating(verdict.VeryPoor, "░"))
		}
	}
	return b.String()
}

// RenderVerdictPanel renders one date's judgment.
// Format:
//
//	Visible   yes   23:00 @ 55.1° South
//	Rating    ████ Excellent   score 91.2
//	Moon      Waning Crescent, 2%
//	  - reason
func RenderVerdictPanel(d engine.DayVerdict) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)
	label := func(s string) string { return labelStyle.Render(fmt.Sprintf("%-10s", s)) }

	if d.Verdict == nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorDayError))
		return label("Error") + errStyle.Render(d.Error)
	}
	v := d.Verdict

	var lines []string
	if v.Visible && v.BestTime != nil {
		lines = append(lines, label("Visible")+colorByRating(v.Rating,
			fmt.Sprintf("yes   %s @ %.1f° %s", *v.BestTime, v.AltitudeDeg, v.AzimuthDirection)))
	} else {
		lines = append(lines, label("Visible")+dimStyle.Render(
			fmt.Sprintf("no    peak %.1f° %s", v.AltitudeDeg, v.AzimuthDirection)))
	}

	rating := colorByRating(v.Rating, ratingToBar(v.Rating)+" "+string(v.Rating))
	if d.Peak != nil {
		rating += dimStyle.Render(fmt.Sprintf("   score %.1f", d.Peak.Score))
	}
	lines = append(lines, label("Rating")+rating)

	if d.Peak != nil && d.Peak.MoonPhase != "" {
		lines = append(lines, label("Moon")+fmt.Sprintf("%s, %.0f%%", d.Peak.MoonPhase, d.Peak.Illumination*100))
	}
	for _, r := range v.Reasons {
		lines = append(lines, dimStyle.Render("  - "+r))
	}
	return strings.Join(lines, "\n")
}

package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/greenops"
	"github.com/rshade/ghgledger/internal/rollup"
	"github.com/rshade/ghgledger/internal/timeseries"
)

const (
	barFull  = "█"
	barEmpty = "░"
)

// RenderSummary renders the dashboard cards for stats as a bordered box of
// the given width: headline totals, the current month with its
// month-over-month change, the scope breakdown as bars and the per-category
// subtotals. An equivalency line is appended when the total is large enough.
func RenderSummary(stats rollup.Stats, width int) string {
	if stats.EntryCount == 0 {
		return InfoStyle.Render("No activity records to summarise.")
	}

	var content strings.Builder

	content.WriteString(HeaderStyle.Render("EMISSIONS SUMMARY"))
	content.WriteString("\n")

	content.WriteString(LabelStyle.Render("Total:         "))
	content.WriteString(ValueStyle.Render(greenops.FormatTCO2e(stats.Total)))
	content.WriteString(LabelStyle.Render("    Entries: "))
	content.WriteString(ValueStyle.Render(strconv.Itoa(stats.EntryCount)))
	if stats.NotComputable > 0 {
		content.WriteString(LabelStyle.Render("    Not computable: "))
		content.WriteString(WarningStyle.Render(strconv.Itoa(stats.NotComputable)))
	}
	content.WriteString("\n")

	content.WriteString(LabelStyle.Render("This month:    "))
	content.WriteString(ValueStyle.Render(greenops.FormatTCO2e(stats.CurrentMonth)))
	content.WriteString(LabelStyle.Render("    vs last month: "))
	content.WriteString(RenderChange(stats.Change))
	content.WriteString("\n")

	if !stats.LastEntryDate.IsZero() {
		content.WriteString(LabelStyle.Render("Last entry:    "))
		content.WriteString(ValueStyle.Render(stats.LastEntryDate.Format("2006-01-02")))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	content.WriteString(HeaderStyle.Render("BY SCOPE"))
	content.WriteString("\n")
	for _, share := range stats.ByScope {
		content.WriteString(renderShareLine(share.Name, share.Total, share.Percentage, share.Color))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	content.WriteString(HeaderStyle.Render("BY CATEGORY"))
	content.WriteString("\n")
	for _, c := range stats.Categories {
		content.WriteString(renderShareLine(c.Category.Label(), c.Total, c.Percentage, rollup.ScopeColor(c.Scope)))
		content.WriteString(SubtleStyle.Render(fmt.Sprintf("  (%d)", c.Count)))
		content.WriteString("\n")
	}

	if stats.Undated > 0 {
		content.WriteString(SubtleStyle.Render(
			fmt.Sprintf("%d undated record(s) count toward totals but not monthly figures", stats.Undated)))
		content.WriteString("\n")
	}

	if eq, err := greenops.Calculate(greenops.CarbonInput{Value: stats.Total, Unit: "tCO2e"}); err == nil && !eq.IsEmpty {
		content.WriteString(SubtleStyle.Render(eq.DisplayText))
	}

	return BoxStyle.Width(width - borderPadding).Render(strings.TrimRight(content.String(), "\n"))
}

// RenderChange styles a month-over-month change: increases are critical,
// decreases OK, and an unavailable change is subtle.
func RenderChange(ch rollup.Change) string {
	if !ch.Available {
		return SubtleStyle.Render(ch.String())
	}
	switch r := greenops.Round(ch.Percent, 1); {
	case r > 0:
		return CriticalStyle.Render(ch.String())
	case r < 0:
		return OKStyle.Render(ch.String())
	default:
		return ValueStyle.Render(ch.String())
	}
}

func renderShareLine(name string, total, pct float64, color string) string {
	label := fmt.Sprintf("%-22s", truncate(name, 22)) //nolint:mnd // label column width.
	bar := RenderBar(pct/100, barWidth, color)         //nolint:mnd // percent to fraction.
	return fmt.Sprintf("%s %s %s %s",
		LabelStyle.Render(label),
		bar,
		ValueStyle.Render(fmt.Sprintf("%10s", greenops.FormatFloat(total, greenops.DisplayPrecision))),
		LabelStyle.Render(fmt.Sprintf("%6s", greenops.FormatPercent(pct))),
	)
}

// RenderBar draws a horizontal bar of width cells filled to fraction
// (clamped to [0, 1]) in the given colour.
func RenderBar(fraction float64, width int, color string) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	fraction = min(fraction, 1)
	filled := int(math.Round(fraction * float64(width)))
	style := lipgloss.NewStyle()
	if color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	return style.Render(strings.Repeat(barFull, filled)) +
		SubtleStyle.Render(strings.Repeat(barEmpty, width-filled))
}

// RenderTrendChart renders one bar per bucket scaled to the largest bucket,
// for styled non-interactive trend output.
func RenderTrendChart(series timeseries.Series, width int) string {
	var content strings.Builder
	content.WriteString(HeaderStyle.Render("EMISSIONS TREND"))
	content.WriteString(LabelStyle.Render("  " + series.Window.String()))
	content.WriteString("\n")

	if len(series.Buckets) == 0 {
		content.WriteString(InfoStyle.Render("No periods in window."))
		return BoxStyle.Width(width - borderPadding).Render(content.String())
	}

	var peak float64
	for _, b := range series.Buckets {
		peak = max(peak, b.Total)
	}
	cells := max(width-44, barWidth) //nolint:mnd // label, value and border columns.
	for _, b := range series.Buckets {
		frac := 0.0
		if peak > 0 {
			frac = b.Total / peak
		}
		content.WriteString(LabelStyle.Render(fmt.Sprintf("%-12s", b.Label)))
		content.WriteString(" ")
		content.WriteString(RenderBar(frac, cells, rollup.ScopeColor(dominantScope(b))))
		content.WriteString(" ")
		content.WriteString(ValueStyle.Render(fmt.Sprintf("%16s", greenops.FormatTCO2e(b.Total))))
		content.WriteString("\n")
	}
	content.WriteString(LabelStyle.Render("Window total: "))
	content.WriteString(ValueStyle.Render(greenops.FormatTCO2e(series.Total())))
	if series.Undated > 0 {
		content.WriteString(SubtleStyle.Render(fmt.Sprintf("  (%d undated record(s) not shown)", series.Undated)))
	}
	return BoxStyle.Width(width - borderPadding).Render(content.String())
}

// dominantScope returns the scope with the largest share of a bucket.
func dominantScope(b timeseries.Bucket) emissions.Scope {
	best, bestTotal := emissions.ScopeUnknown, 0.0
	for _, s := range emissions.Scopes {
		if t := b.ScopeTotal(s); t > bestTotal {
			best, bestTotal = s, t
		}
	}
	return best
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	const suffix = "..."
	return s[:n-len(suffix)] + suffix
}

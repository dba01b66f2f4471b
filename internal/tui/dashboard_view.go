package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/ghgledger/internal/greenops"
	"github.com/rshade/ghgledger/internal/timeseries"
)

// View renders the current view (Bubble Tea interface).
func (m DashboardModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateError:
		return CriticalStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n" +
			LabelStyle.Render("q: quit") + "\n"
	case ViewStateLoading:
		return RenderLoading(m.loadingState)
	case ViewStateDetail:
		return lipgloss.JoinVertical(lipgloss.Left,
			RenderSummary(m.stats, m.width),
			LabelStyle.Render("esc: back  q: quit"),
		)
	case ViewStateList:
		return m.renderListView()
	default:
		return ""
	}
}

func (m DashboardModel) renderListView() string {
	header := HeaderStyle.Render("EMISSIONS TREND") +
		LabelStyle.Render("  "+m.window.String())

	totals := LabelStyle.Render("Window total: ") +
		ValueStyle.Render(greenops.FormatTCO2e(windowTotal(m.trend.Buckets))) +
		LabelStyle.Render("    All time: ") +
		ValueStyle.Render(greenops.FormatTCO2e(m.stats.Total)) +
		LabelStyle.Render("    vs last month: ") +
		RenderChange(m.stats.Change)

	sections := []string{header, totals, m.table.View(), m.renderStatusBar()}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderStatusBar() string {
	granularities := []struct {
		key string
		g   timeseries.Granularity
	}{
		{keyDay, timeseries.Day},
		{keyWeek, timeseries.Week},
		{keyMonth, timeseries.Month},
		{keyYear, timeseries.Year},
	}
	parts := make([]string, 0, len(granularities))
	for _, gr := range granularities {
		label := gr.key + ":" + gr.g.String()
		if !m.window.Custom && m.window.Granularity == gr.g {
			parts = append(parts, ValueStyle.Render(label))
			continue
		}
		parts = append(parts, LabelStyle.Render(label))
	}

	scope := "s:scopes"
	if m.byScope {
		scope = "s:totals"
	}
	help := strings.Join(parts, " ") + LabelStyle.Render("  "+scope+"  enter:summary  r:reload  q:quit")
	return SubtleStyle.Width(m.width).Render(help)
}

func bucketRow(b timeseries.Bucket, byScope bool) table.Row {
	row := table.Row{
		b.Label,
		formatCell(b.Total),
		strconv.Itoa(b.Count),
	}
	if byScope {
		row = append(row,
			formatCell(b.Scope1),
			formatCell(b.Scope2),
			formatCell(b.Scope3),
		)
	}
	return row
}

func windowTotal(buckets []timeseries.Bucket) float64 {
	return timeseries.Series{Buckets: buckets}.Total()
}

func formatCell(v float64) string {
	return greenops.FormatFloat(v, greenops.DisplayPrecision)
}

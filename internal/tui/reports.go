package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hyperfocus/internal/history"
	"github.com/sadopc/hyperfocus/internal/session"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

type reportsModel struct {
	machine *session.Machine
	width   int
	height  int

	mode   reportMode
	totals []history.DayTotal
	today  int // seconds focused since local midnight
	offset int // weeks or 7-day blocks offset from today (0 = current)

	chart barchart.Model
}

func newReportsModel(m *session.Machine) reportsModel {
	return reportsModel{
		machine: m,
		chart:   barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

// refresh recomputes totals from the ledger and redraws the chart.
func (r *reportsModel) refresh() {
	from, to := r.dateRange()
	r.totals = r.machine.DailyTotals(from, to, time.Local)
	r.today = r.machine.FocusedSince(startOfDay(time.Now()))
	r.buildChart()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (r reportsModel) dateRange() (time.Time, time.Time) {
	today := startOfDay(time.Now())

	switch r.mode {
	case reportWeekly:
		// Start of current week (Monday)
		weekday := today.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		startOfWeek := today.AddDate(0, 0, -int(weekday-time.Monday))
		startOfWeek = startOfWeek.AddDate(0, 0, -7*r.offset)
		return startOfWeek, startOfWeek.AddDate(0, 0, 7)
	default:
		// Daily: last 7 days
		end := today.AddDate(0, 0, 1-7*r.offset)
		start := end.AddDate(0, 0, -7)
		return start, end
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}
	switch {
	case key.Matches(km, keys.Left):
		r.offset++
	case key.Matches(km, keys.Right):
		if r.offset > 0 {
			r.offset--
		}
	case key.Matches(km, keys.Tab):
		if r.mode == reportDaily {
			r.mode = reportWeekly
		} else {
			r.mode = reportDaily
		}
		r.offset = 0
	default:
		return r, nil
	}
	r.refresh()
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	bars := make([]barchart.BarData, 0, len(r.totals))
	for _, d := range r.totals {
		style := barStyle
		if d.Seconds == 0 {
			style = emptyBarStyle
		}
		bars = append(bars, barchart.BarData{
			Label: d.Date.Format("Mon 02"),
			Values: []barchart.BarValue{{
				Name:  "focus",
				Value: float64(d.Seconds) / 60,
				Style: style,
			}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	// Mode tabs
	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	today := accentStyle.Render("Today: ") + formatSeconds(int64(r.today))
	nav := mutedStyle.Render("  ←/→: navigate  tab: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", today, "", r.chart.View(), "", r.renderSummaryTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	var total, sessions int
	for _, d := range r.totals {
		total += d.Seconds
		sessions += d.Sessions
	}
	if sessions == 0 {
		return mutedStyle.Render("  No focus sessions in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %9s", "Date", "Focus", "Sessions")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 33))))

	for _, d := range r.totals {
		if d.Sessions == 0 {
			continue
		}
		rows = append(rows, fmt.Sprintf("  %-12s %10s %9d",
			d.Date.Format("2006-01-02"), formatSeconds(int64(d.Seconds)), d.Sessions,
		))
	}
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 33))))
	rows = append(rows, accentStyle.Render(fmt.Sprintf("  %-12s %10s %9d", "Total", formatHours(int64(total)), sessions)))

	return strings.Join(rows, "\n")
}

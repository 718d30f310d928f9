package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hyperfocus/internal/history"
	"github.com/sadopc/hyperfocus/internal/session"
)

const entryTimeLayout = "2006-01-02 15:04"

type historyModel struct {
	machine *session.Machine
	width   int
	height  int

	cursor     int
	confirming string // "delete" or "clear" while waiting for y

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"
	editingID  string

	// Form values as pointers (survive value copies)
	formStart    *string
	formEnd      *string
	formPoints   *string
	formFeedback *string
	formPlans    *string
}

func newHistoryModel(m *session.Machine) historyModel {
	start, end, points, feedback, plans := "", "", "", "", ""
	return historyModel{
		machine:      m,
		formStart:    &start,
		formEnd:      &end,
		formPoints:   &points,
		formFeedback: &feedback,
		formPlans:    &plans,
	}
}

func (h *historyModel) setSize(w, height int) {
	h.width = w
	h.height = height
}

func (h historyModel) capturing() bool {
	return (h.formActive && h.form != nil) || h.confirming != ""
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	if h.formActive && h.form != nil {
		return h.updateForm(msg)
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return h, nil
	}

	entries := h.machine.History()
	if h.confirming != "" {
		action := h.confirming
		h.confirming = ""
		if !key.Matches(km, keys.Confirm) {
			return h, nil
		}
		switch action {
		case "delete":
			if h.cursor < len(entries) {
				err := h.machine.DeleteHistory(entries[h.cursor].ID)
				return h.clampCursor(), reportErr(err)
			}
		case "clear":
			h.machine.ClearHistory()
			h.cursor = 0
			return h, reportStatus("History cleared")
		}
		return h, nil
	}

	switch {
	case key.Matches(km, keys.Up):
		if h.cursor > 0 {
			h.cursor--
		}
	case key.Matches(km, keys.Down):
		if h.cursor < len(entries)-1 {
			h.cursor++
		}
	case key.Matches(km, keys.New):
		now := time.Now()
		return h.showForm("new", history.Entry{
			StartTime: now.Add(-time.Duration(h.machine.Settings().WorkDuration) * time.Second),
			EndTime:   now,
		})
	case key.Matches(km, keys.Enter):
		if h.cursor < len(entries) {
			return h.showForm("edit", entries[h.cursor])
		}
	case key.Matches(km, keys.Delete):
		if len(entries) > 0 {
			h.confirming = "delete"
		}
	case key.Matches(km, keys.Clear):
		if len(entries) > 0 {
			h.confirming = "clear"
		}
	}
	return h, nil
}

func (h historyModel) clampCursor() historyModel {
	if n := len(h.machine.History()); h.cursor >= n {
		h.cursor = max(0, n-1)
	}
	return h
}

func (h historyModel) showForm(formType string, e history.Entry) (historyModel, tea.Cmd) {
	*h.formStart = e.StartTime.Local().Format(entryTimeLayout)
	*h.formEnd = e.EndTime.Local().Format(entryTimeLayout)
	*h.formPoints = strings.Join(e.FocusPoints, "\n")
	*h.formFeedback = e.FeedbackNotes
	*h.formPlans = strings.Join(e.NextFocusPlans, "\n")
	h.formType = formType
	h.editingID = e.ID

	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Start (YYYY-MM-DD HH:MM)").Value(h.formStart).Validate(validateEntryTime),
			huh.NewInput().Title("End (YYYY-MM-DD HH:MM)").Value(h.formEnd).Validate(validateEntryTime),
			huh.NewText().Title("Focus points (one per line)").Value(h.formPoints).Lines(4),
		),
		huh.NewGroup(
			huh.NewInput().Title("Feedback").Value(h.formFeedback),
			huh.NewText().Title("Next focus plans (one per line)").Value(h.formPlans).Lines(3),
		),
	).WithShowHelp(true).WithShowErrors(true)

	h.formActive = true
	return h, h.form.Init()
}

func (h historyModel) updateForm(msg tea.Msg) (historyModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			h.formActive = false
			h.form = nil
			return h, nil
		}
	}

	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}

	if h.form.State == huh.StateCompleted {
		h.formActive = false
		h.form = nil
		return h, h.save()
	}
	return h, cmd
}

func (h historyModel) save() tea.Cmd {
	start, err := parseEntryTime(*h.formStart)
	if err != nil {
		return reportErr(err)
	}
	end, err := parseEntryTime(*h.formEnd)
	if err != nil {
		return reportErr(err)
	}
	points := splitLines(*h.formPoints)
	plans := splitLines(*h.formPlans)

	switch h.formType {
	case "new":
		_, err := h.machine.AddManualHistory(history.Manual{
			StartTime:      start,
			EndTime:        end,
			FocusPoints:    points,
			FeedbackNotes:  *h.formFeedback,
			NextFocusPlans: plans,
		})
		if err != nil {
			return reportErr(err)
		}
		return reportStatus("Session logged")
	case "edit":
		if len(points) == 0 {
			return reportErr(history.ErrNoFocusPoints)
		}
		feedback := *h.formFeedback
		patch := history.Patch{
			StartTime:      &start,
			EndTime:        &end,
			FocusPoints:    points,
			FeedbackNotes:  &feedback,
			NextFocusPlans: &plans,
		}
		if old, ok := h.entry(h.editingID); ok && !sameMinute(old, start, end) {
			d := history.Seconds(end.Sub(start))
			patch.Duration = &d
		}
		return reportErr(h.machine.UpdateHistory(h.editingID, patch))
	}
	return nil
}

func (h historyModel) entry(id string) (history.Entry, bool) {
	for _, e := range h.machine.History() {
		if e.ID == id {
			return e, true
		}
	}
	return history.Entry{}, false
}

// sameMinute reports whether the form left both times untouched. The form
// only has minute precision, so the stored duration is kept unless a
// time was actually edited.
func sameMinute(e history.Entry, start, end time.Time) bool {
	return e.StartTime.Truncate(time.Minute).Equal(start) && e.EndTime.Truncate(time.Minute).Equal(end)
}

func (h historyModel) view() string {
	w := h.width - 4

	if h.formActive && h.form != nil {
		title := titleStyle.Render("Log Session")
		if h.formType == "edit" {
			title = titleStyle.Render("Edit Session")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", h.form.View())
		return panelStyle.Width(w).Render(content)
	}

	entries := h.machine.History()
	title := titleStyle.Render(fmt.Sprintf("History (%d)", len(entries)))
	if len(entries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No sessions yet. Finish a focus session or press n to log one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-16s %-13s %8s  %s", "Date", "Time", "Length", "Focus")))

	first, last := h.window(len(entries))
	focusWidth := w - 48
	for i := first; i < last; i++ {
		e := entries[i]
		cursor := "  "
		style := normalItemStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		start, end := e.StartTime.Local(), e.EndTime.Local()
		row := fmt.Sprintf("%s%-16s %-13s %8s  %s",
			cursor,
			start.Format("Mon Jan 02"),
			start.Format("15:04")+"-"+end.Format("15:04"),
			formatClock(e.Duration),
			truncate(strings.Join(e.FocusPoints, ", "), focusWidth),
		)
		rows = append(rows, style.Render(row))
	}

	if h.cursor < len(entries) {
		rows = append(rows, "", h.renderDetail(entries[h.cursor], w-4))
	}

	rows = append(rows, "")
	switch h.confirming {
	case "delete":
		rows = append(rows, warningStyle.Render("  Delete this session? y: yes  any key: cancel"))
	case "clear":
		rows = append(rows, warningStyle.Render("  Delete all history? y: yes  any key: cancel"))
	default:
		rows = append(rows, mutedStyle.Render("  n: log session  enter: edit  d: delete  D: clear  e: export"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// window returns the slice of rows that fits the panel around the cursor.
func (h historyModel) window(n int) (int, int) {
	visible := max(3, h.height-22)
	if n <= visible {
		return 0, n
	}
	first := max(0, h.cursor-visible/2)
	if first+visible > n {
		first = n - visible
	}
	return first, first + visible
}

func (h historyModel) renderDetail(e history.Entry, w int) string {
	lines := []string{subtitleStyle.Render("Focus points")}
	for _, p := range e.FocusPoints {
		lines = append(lines, "  • "+truncate(p, w-4))
	}
	if e.FeedbackNotes != "" {
		lines = append(lines, subtitleStyle.Render("Feedback"), "  "+truncate(e.FeedbackNotes, w-2))
	}
	if len(e.NextFocusPlans) > 0 {
		lines = append(lines, subtitleStyle.Render("Next"))
		for _, p := range e.NextFocusPlans {
			lines = append(lines, "  • "+truncate(p, w-4))
		}
	}
	return strings.Join(lines, "\n")
}

func parseEntryTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(entryTimeLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", s)
	}
	return t, nil
}

func validateEntryTime(s string) error {
	if _, err := parseEntryTime(s); err != nil {
		return errors.New("use YYYY-MM-DD HH:MM")
	}
	return nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hyperfocus/internal/session"
)

// extendSeconds is the regular one-time extension.
const extendSeconds = 5 * 60

type inputMode int

const (
	inputNone inputMode = iota
	inputFocusPoint
	inputEditFocusPoint
	inputFeedback
	inputPlan
	inputAdjust
)

var inputPrompts = map[inputMode]string{
	inputFocusPoint:     "Focus point",
	inputEditFocusPoint: "Edit focus point",
	inputFeedback:       "How did it go?",
	inputPlan:           "Next focus plan",
	inputAdjust:         "Time left (MM or MM:SS)",
}

type timerModel struct {
	machine *session.Machine
	width   int
	height  int

	cursor int
	mode   inputMode
	input  textinput.Model
}

func newTimerModel(m *session.Machine) timerModel {
	ti := textinput.New()
	ti.CharLimit = 200
	return timerModel{machine: m, input: ti}
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t timerModel) capturing() bool { return t.mode != inputNone }

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	if t.capturing() {
		return t.updateInput(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}
	m := t.machine
	snap := m.Snapshot()
	work := snap.Session.Phase == session.Work

	switch {
	case key.Matches(km, keys.Toggle):
		return t, reportErr(m.ToggleStart())
	case key.Matches(km, keys.Reset):
		m.Reset()
		t.cursor = 0
	case key.Matches(km, keys.Skip):
		return t, reportErr(m.Skip())
	case key.Matches(km, keys.Extend):
		return t, reportErr(m.Extend(extendSeconds))
	case key.Matches(km, keys.Hyperfocus):
		return t, reportErr(m.Extend(snap.Session.InitialDuration))
	case key.Matches(km, keys.New):
		if work {
			return t.openInput(inputFocusPoint, "")
		}
		return t.openInput(inputPlan, "")
	case key.Matches(km, keys.Enter):
		if work && t.cursor < len(snap.FocusPoints) {
			return t.openInput(inputEditFocusPoint, snap.FocusPoints[t.cursor])
		}
	case key.Matches(km, keys.Feedback):
		if !work {
			return t.openInput(inputFeedback, snap.Feedback)
		}
	case key.Matches(km, keys.Commit):
		if !work {
			if err := m.CommitBreakInfo(); err != nil {
				return t, reportErr(err)
			}
			return t, reportStatus("Break notes saved")
		}
	case key.Matches(km, keys.Adjust):
		if work && !snap.Session.IsRunning && !m.Starting() {
			return t.openInput(inputAdjust, formatClock(snap.Session.TimeLeft))
		}
	case key.Matches(km, keys.Delete):
		var err error
		if work {
			err = m.RemoveFocusPoint(t.cursor)
		} else {
			err = m.RemoveNextPlan(t.cursor)
		}
		return t.clampCursor(), reportErr(err)
	case key.Matches(km, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(km, keys.Down):
		if t.cursor < t.listLen(snap)-1 {
			t.cursor++
		}
	}
	return t.clampCursor(), nil
}

func (t timerModel) listLen(snap session.Snapshot) int {
	if snap.Session.Phase == session.Work {
		return len(snap.FocusPoints)
	}
	return len(snap.NextPlans)
}

func (t timerModel) clampCursor() timerModel {
	n := t.listLen(t.machine.Snapshot())
	if t.cursor >= n {
		t.cursor = max(0, n-1)
	}
	return t
}

func (t timerModel) openInput(mode inputMode, value string) (timerModel, tea.Cmd) {
	t.mode = mode
	t.input.Placeholder = inputPrompts[mode]
	t.input.SetValue(value)
	t.input.CursorEnd()
	return t, t.input.Focus()
}

func (t *timerModel) closeInput() {
	t.mode = inputNone
	t.input.Blur()
	t.input.SetValue("")
}

func (t timerModel) updateInput(msg tea.Msg) (timerModel, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyEsc:
			t.closeInput()
			return t, nil
		case tea.KeyEnter:
			mode, value := t.mode, t.input.Value()
			t.closeInput()
			cmd := t.submit(mode, value)
			return t.clampCursor(), cmd
		}
	}

	prev := t.input.Value()
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	if t.mode == inputFeedback && t.input.Value() != prev {
		// Feedback is live so the typing cue follows keystrokes.
		if err := t.machine.SetFeedback(t.input.Value()); err != nil {
			return t, reportErr(err)
		}
	}
	return t, cmd
}

func (t timerModel) submit(mode inputMode, value string) tea.Cmd {
	m := t.machine
	switch mode {
	case inputFocusPoint:
		return reportErr(m.AddFocusPoint(value))
	case inputEditFocusPoint:
		return reportErr(m.UpdateFocusPoint(t.cursor, value))
	case inputFeedback:
		return reportErr(m.SetFeedback(value))
	case inputPlan:
		return reportErr(m.AddNextPlan(value))
	case inputAdjust:
		secs, err := parseClock(value)
		if err != nil {
			return reportErr(err)
		}
		return reportErr(m.AdjustTimeLeft(secs))
	}
	return nil
}

func (t timerModel) view() string {
	w := t.width - 4
	snap := t.machine.Snapshot()
	s := snap.Session

	title := titleStyle.Render("Focus")
	phaseLabel := phaseStyle(s.Phase).Bold(true).Render(s.Phase.String())
	if s.IsHyperfocusActive {
		phaseLabel += " " + hyperfocusBadgeStyle.Render("HYPERFOCUS")
	}

	clock := formatClock(s.TimeLeft)
	var timeDisplay, state string
	switch {
	case snap.GateStage.Beat():
		timeDisplay = timerBeatStyle.Width(w - 6).Render(clock)
		state = accentStyle.Render("Get ready" + strings.Repeat(".", int(snap.GateStage)))
	case snap.GateStage == session.GateSettling:
		timeDisplay = timerStyle.Width(w - 6).Render(clock)
		state = accentStyle.Render("Focus")
	case s.IsRunning && s.IsHyperfocusActive:
		timeDisplay = timerHyperfocusStyle.Width(w - 6).Render(clock)
		state = successStyle.Render("Running")
	case s.IsRunning:
		timeDisplay = timerRunningStyle.Width(w - 6).Render(clock)
		state = successStyle.Render("Running")
	default:
		timeDisplay = timerPausedStyle.Width(w - 6).Render(clock)
		state = mutedStyle.Render("Paused")
	}

	sections := []string{
		title,
		"",
		phaseLabel,
		timeDisplay,
		state,
		"",
		t.renderProgress(snap),
	}
	if s.ShowExtensionOptions {
		sections = append(sections, "",
			warningStyle.Render(fmt.Sprintf("Almost done!  +: %d more minutes  H: hyperfocus (+%s)",
				extendSeconds/60, formatClock(s.InitialDuration))))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, sections...)

	var notes string
	if s.Phase == session.Work {
		notes = t.renderList("Focus points", snap.FocusPoints, "Press n to add what you will focus on.")
	} else {
		feedback := snap.Feedback
		if feedback == "" {
			feedback = mutedStyle.Render("Press f to note how the session went.")
		}
		notes = lipgloss.JoinVertical(lipgloss.Left,
			subtitleStyle.Render("Feedback"),
			"  "+truncate(feedback, w-8),
			"",
			t.renderList("Next focus plans", snap.NextPlans, "Press n to plan the next session."),
		)
	}

	parts := []string{content, "", notes}
	if t.capturing() {
		parts = append(parts, "", accentStyle.Render(inputPrompts[t.mode]), t.input.View())
	}
	parts = append(parts, "", t.renderControls(s))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (t timerModel) renderList(heading string, items []string, empty string) string {
	rows := []string{subtitleStyle.Render(heading)}
	if len(items) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(rows, mutedStyle.Render("  "+empty))...)
	}
	for i, item := range items {
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+truncate(item, t.width-12)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (t timerModel) renderProgress(snap session.Snapshot) string {
	target := snap.Settings.CyclesBeforeLongBreak
	done := snap.Session.CycleCount % target
	if snap.Session.Phase == session.LongBreak {
		done = target
	}
	var parts []string
	for i := 0; i < target; i++ {
		if i < done {
			parts = append(parts, successStyle.Render("●"))
		} else if i == done && snap.Session.Phase == session.Work {
			parts = append(parts, accentStyle.Render("◐"))
		} else {
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render("  cycle " + strconv.Itoa(snap.Session.CycleCount))
	return strings.Join(parts, " ") + counter
}

func (t timerModel) renderControls(s session.Session) string {
	if t.capturing() {
		return mutedStyle.Render("enter: save  esc: cancel")
	}
	if s.Phase == session.Work {
		return mutedStyle.Render("s: start/pause  n: focus point  enter: edit  d: remove  t: set time  r: reset  x: skip")
	}
	return mutedStyle.Render("s: start/pause  f: feedback  c: save  n: plan  d: remove  r: reset  x: skip")
}

package session

import (
	"strings"
	"time"

	"github.com/sadopc/hyperfocus/internal/backlog"
	"github.com/sadopc/hyperfocus/internal/cue"
	"github.com/sadopc/hyperfocus/internal/history"
)

// ==========================================================================
// Focus points
// ==========================================================================

func (m *Machine) FocusPoints() []string { return append([]string(nil), m.focusPoints...) }

// AddFocusPoint appends a point to the current focus session.
func (m *Machine) AddFocusPoint(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		m.play(cue.ButtonPress)
		return ErrEmptyText
	}
	if m.sess.Phase != Work {
		m.play(cue.ButtonPress)
		return ErrNotWorkPhase
	}
	m.focusPoints = append(m.focusPoints, text)
	m.play(cue.Confirm)
	m.notify(true)
	return nil
}

func (m *Machine) UpdateFocusPoint(i int, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		m.play(cue.ButtonPress)
		return ErrEmptyText
	}
	if i < 0 || i >= len(m.focusPoints) {
		return ErrNoSuchItem
	}
	m.focusPoints[i] = text
	m.notify(true)
	return nil
}

func (m *Machine) RemoveFocusPoint(i int) error {
	if i < 0 || i >= len(m.focusPoints) {
		return ErrNoSuchItem
	}
	m.focusPoints = append(m.focusPoints[:i], m.focusPoints[i+1:]...)
	m.play(cue.Remove)
	m.notify(true)
	return nil
}

// ==========================================================================
// Break notes
// ==========================================================================

func (m *Machine) Feedback() string    { return m.feedback }
func (m *Machine) NextPlans() []string { return append([]string(nil), m.nextPlans...) }

// SetFeedback replaces the break's feedback buffer. It is attached to the
// last focus session when the break starts or ends.
func (m *Machine) SetFeedback(text string) error {
	if !m.sess.Phase.IsBreak() {
		return ErrNotBreakPhase
	}
	m.feedback = text
	m.play(cue.Typing)
	m.notify(true)
	return nil
}

func (m *Machine) AddNextPlan(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		m.play(cue.ButtonPress)
		return ErrEmptyText
	}
	if !m.sess.Phase.IsBreak() {
		return ErrNotBreakPhase
	}
	m.nextPlans = append(m.nextPlans, text)
	m.play(cue.Confirm)
	m.notify(true)
	return nil
}

func (m *Machine) RemoveNextPlan(i int) error {
	if i < 0 || i >= len(m.nextPlans) {
		return ErrNoSuchItem
	}
	m.nextPlans = append(m.nextPlans[:i], m.nextPlans[i+1:]...)
	m.play(cue.Remove)
	m.notify(true)
	return nil
}

// CommitBreakInfo attaches the typed feedback and plans to the last
// focus session now, without waiting for the break to end.
func (m *Machine) CommitBreakInfo() error {
	if !m.sess.Phase.IsBreak() {
		return ErrNotBreakPhase
	}
	if strings.TrimSpace(m.feedback) == "" {
		m.play(cue.ButtonPress)
		return ErrFeedbackRequired
	}
	if m.history.BackfillBreakInfo(m.feedback, m.nextPlans) {
		m.play(cue.Confirm)
		m.notify(true)
	}
	return nil
}

// ==========================================================================
// Backlog
// ==========================================================================

func (m *Machine) Backlog() []backlog.Task { return m.backlog.Tasks() }

func (m *Machine) AddTask(text string) (backlog.Task, error) {
	t, err := m.backlog.Add(text)
	if err != nil {
		m.play(cue.ButtonPress)
		return t, err
	}
	m.play(cue.Confirm)
	m.notify(true)
	return t, nil
}

func (m *Machine) UpdateTask(id, text string) error {
	if err := m.backlog.Update(id, text); err != nil {
		m.play(cue.ButtonPress)
		return err
	}
	m.notify(true)
	return nil
}

func (m *Machine) RemoveTask(id string) error {
	if !m.backlog.Remove(id) {
		return backlog.ErrNotFound
	}
	m.play(cue.Remove)
	m.notify(true)
	return nil
}

func (m *Machine) ClearBacklog() {
	if m.backlog.Len() == 0 {
		return
	}
	m.backlog.Clear()
	m.play(cue.Remove)
	m.notify(true)
}

// PromoteTask moves a backlog task into the current focus session as a
// focus point. A missing id is ignored.
func (m *Machine) PromoteTask(id string) error {
	if m.sess.Phase != Work {
		m.play(cue.ButtonPress)
		return ErrNotWorkPhase
	}
	t, ok := m.backlog.Take(id)
	if !ok {
		return nil
	}
	m.focusPoints = append(m.focusPoints, t.Text)
	m.play(cue.Select)
	m.notify(true)
	return nil
}

// ==========================================================================
// History
// ==========================================================================

func (m *Machine) History() []history.Entry { return m.history.Entries() }

func (m *Machine) UpdateHistory(id string, p history.Patch) error {
	if err := m.history.Update(id, p); err != nil {
		m.play(cue.ButtonPress)
		return err
	}
	m.notify(true)
	return nil
}

func (m *Machine) DeleteHistory(id string) error {
	if !m.history.Delete(id) {
		return history.ErrNotFound
	}
	m.play(cue.Remove)
	m.notify(true)
	return nil
}

func (m *Machine) ClearHistory() {
	if m.history.Len() == 0 {
		return
	}
	m.history.Clear()
	m.play(cue.Remove)
	m.notify(true)
}

func (m *Machine) AddManualHistory(entry history.Manual) (history.Entry, error) {
	e, err := m.history.AddManual(entry)
	if err != nil {
		m.play(cue.ButtonPress)
		return e, err
	}
	m.play(cue.Confirm)
	m.notify(true)
	return e, nil
}

// DailyTotals sums focus time per calendar day in loc.
func (m *Machine) DailyTotals(from, to time.Time, loc *time.Location) []history.DayTotal {
	return m.history.DailyTotals(from, to, loc)
}

func (m *Machine) FocusedSince(t time.Time) int { return m.history.TotalSince(t) }

package session

import (
	"strings"
	"time"

	"github.com/sadopc/hyperfocus/internal/cue"
	"github.com/sadopc/hyperfocus/internal/history"
)

// extensionWindow is how close to the end a focus session offers extensions.
const extensionWindow = 60

// ToggleStart starts a paused timer, or pauses a running one. Pressing it
// while the focus-start sequence plays cancels the sequence.
func (m *Machine) ToggleStart() error {
	if m.reconcile(m.clock.Now()) {
		return nil
	}
	if m.sess.IsRunning || m.gate.pending() {
		m.Pause()
		return nil
	}
	return m.Start()
}

// Start begins counting down the current phase. A focus session needs at
// least one focus point and first plays the focus-start sequence; the
// countdown is armed by the Tick that sees the sequence finish. A break
// needs feedback on the session before it, and commits any typed
// feedback on the way.
func (m *Machine) Start() error {
	if m.sess.IsRunning || m.gate.pending() {
		return nil
	}
	now := m.clock.Now()

	if m.sess.Phase == Work {
		if len(m.focusPoints) == 0 {
			m.play(cue.ButtonPress)
			return ErrFocusPointsRequired
		}
		m.gate.begin(now)
		m.play(cue.FocusStart)
		m.notify(false)
		return nil
	}

	if err := m.requireFeedback(); err != nil {
		m.play(cue.ButtonPress)
		return err
	}
	m.history.BackfillBreakInfo(m.feedback, m.nextPlans)
	m.engage(now)
	m.play(cue.Click)
	m.notify(true)
	return nil
}

// Pause freezes the countdown. If the deadline already passed, the phase
// completes instead. A focus-start sequence whose window has already
// elapsed is engaged first, so only a sequence still in flight is
// cancelled.
func (m *Machine) Pause() {
	now := m.clock.Now()
	if m.reconcile(now) {
		return
	}
	if m.gate.pending() {
		m.gate.reset()
		m.play(cue.Click)
		m.notify(false)
		return
	}
	if !m.sess.IsRunning {
		return
	}

	s := &m.sess
	s.TimeLeft = remainingSeconds(s.Deadline, now)
	s.IsRunning = false
	s.Deadline = time.Time{}
	s.ShowExtensionOptions = false
	m.play(cue.Click)
	m.notify(true)
}

// Tick reconciles the countdown against the clock. It is safe to call at
// any rate; the deadline is the only source of truth.
func (m *Machine) Tick() {
	m.reconcile(m.clock.Now())
}

// SetVisible records whether the user can currently see the app.
// Coming back into view stops any looping alarm and reconciles at once,
// so a completion missed while hidden is handled immediately.
func (m *Machine) SetVisible(visible bool) {
	was := m.visible
	m.visible = visible
	if visible && !was {
		m.cues.Stop()
		m.reconcile(m.clock.Now())
	}
}

func (m *Machine) Visible() bool { return m.visible }

// reconcile advances the focus-start sequence and the countdown to now.
// Reports whether the phase completed.
func (m *Machine) reconcile(now time.Time) bool {
	if m.gate.pending() {
		if !m.gate.advance(now) {
			return false
		}
		if m.gate.stage != GateRunning {
			m.notify(false)
			return false
		}
		at := m.gate.readyAt()
		m.gate.reset()
		m.engage(at)
		m.notify(true)
	}
	if !m.sess.IsRunning {
		return false
	}

	s := &m.sess
	if !s.Deadline.After(now) {
		m.complete()
		return true
	}
	left := remainingSeconds(s.Deadline, now)
	moved := left != s.TimeLeft
	s.TimeLeft = left
	durable := m.updateExtensionWindow()
	if moved || durable {
		m.notify(durable)
	}
	return false
}

// engage arms the countdown from the current TimeLeft.
func (m *Machine) engage(now time.Time) {
	s := &m.sess
	s.IsRunning = true
	s.Deadline = now.Add(time.Duration(s.TimeLeft) * time.Second)
	s.InitialDuration = s.TimeLeft
	s.IsAtDefaultDuration = false
	if s.Phase == Work && s.SessionStartTime.IsZero() {
		s.SessionStartTime = now
	}
	m.lastCompleted = time.Time{}
	m.updateExtensionWindow()
}

// updateExtensionWindow keeps ShowExtensionOptions in step with the
// countdown. Reports whether the flag changed.
func (m *Machine) updateExtensionWindow() bool {
	s := &m.sess
	if s.TimeLeft > extensionWindow || s.Phase != Work {
		m.almostSignaled = false
	}
	inWindow := s.IsRunning && s.Phase == Work && !s.HasExtendedCurrentFocus &&
		s.TimeLeft > 0 && s.TimeLeft <= extensionWindow

	if !inWindow {
		if s.ShowExtensionOptions {
			s.ShowExtensionOptions = false
			return true
		}
		return false
	}
	if !m.almostSignaled {
		m.almostSignaled = true
		m.play(cue.FocusAlmostEnding)
	}
	if s.ShowExtensionOptions {
		return false
	}
	s.ShowExtensionOptions = true
	return true
}

// complete finishes the phase once per deadline crossing.
func (m *Machine) complete() {
	deadline := m.sess.Deadline
	if deadline.IsZero() || deadline.Equal(m.lastCompleted) {
		return
	}
	m.lastCompleted = deadline
	m.finishPhase(deadline, true)
}

// finishPhase moves to the next phase. Leaving a focus session logs it to
// history; leaving a break attaches the break's feedback to that entry.
func (m *Machine) finishPhase(end time.Time, finished bool) {
	m.gate.reset()
	s := &m.sess
	s.IsRunning = false
	s.Deadline = time.Time{}
	s.HasExtendedCurrentFocus = false
	s.IsHyperfocusActive = false
	s.ShowExtensionOptions = false
	m.almostSignaled = false

	switch {
	case !finished:
		m.play(cue.Click)
	case m.visible:
		m.play(cue.Alarm)
	default:
		m.loop(cue.AlarmLoop)
	}

	if s.Phase == Work {
		start := s.SessionStartTime
		if start.IsZero() || start.After(end) {
			start = end
		}
		e := m.history.Append(history.Entry{
			StartTime:   start,
			EndTime:     end,
			Duration:    history.Seconds(end.Sub(start)),
			FocusPoints: m.focusPoints,
		})
		m.logger.Info("focus session logged", "id", e.ID, "duration", e.Duration, "finished", finished)

		m.focusPoints = nil
		s.SessionStartTime = time.Time{}
		s.CycleCount++
		if s.CycleCount%m.settings.CyclesBeforeLongBreak == 0 {
			s.Phase = LongBreak
		} else {
			s.Phase = ShortBreak
		}
	} else {
		m.history.BackfillBreakInfo(m.feedback, m.nextPlans)
		m.feedback = ""
		m.nextPlans = nil
		s.Phase = Work
	}
	m.size(m.settings.Duration(s.Phase))
	m.notify(true)
}

// Skip ends the current phase early. Skipping a focus session still logs
// it; skipping a break needs the same feedback Start does.
func (m *Machine) Skip() error {
	if m.sess.Phase.IsBreak() {
		if err := m.requireFeedback(); err != nil {
			m.play(cue.ButtonPress)
			return err
		}
	}
	now := m.clock.Now()
	if m.reconcile(now) {
		return nil
	}
	m.finishPhase(now, false)
	return nil
}

// Reset stops the timer and restores the phase's configured duration,
// discarding the phase's working notes.
func (m *Machine) Reset() {
	m.gate.reset()
	s := &m.sess
	s.IsRunning = false
	s.Deadline = time.Time{}
	s.HasExtendedCurrentFocus = false
	s.IsHyperfocusActive = false
	s.ShowExtensionOptions = false
	m.almostSignaled = false

	if s.Phase == Work {
		m.focusPoints = nil
		s.SessionStartTime = time.Time{}
	} else {
		m.feedback = ""
		m.nextPlans = nil
	}
	m.size(m.settings.Duration(s.Phase))
	m.play(cue.Click)
	m.notify(true)
}

// Extend adds seconds to a running focus session in its last minute.
// Only one extension is allowed per session; extending by the session's
// full length turns on hyperfocus.
func (m *Machine) Extend(seconds int) error {
	if seconds <= 0 {
		m.play(cue.ButtonPress)
		return ErrInvalidExtension
	}
	if m.sess.HasExtendedCurrentFocus {
		m.play(cue.Remove)
		return ErrAlreadyExtended
	}
	now := m.clock.Now()
	if m.reconcile(now) {
		return ErrExtensionUnavailable
	}
	s := &m.sess
	if !s.IsRunning || s.Phase != Work || !s.ShowExtensionOptions {
		m.play(cue.ButtonPress)
		return ErrExtensionUnavailable
	}

	full := seconds == s.InitialDuration
	s.Deadline = s.Deadline.Add(time.Duration(seconds) * time.Second)
	s.InitialDuration += seconds
	s.TimeLeft = remainingSeconds(s.Deadline, now)
	s.HasExtendedCurrentFocus = true
	s.ShowExtensionOptions = false
	if s.TimeLeft > extensionWindow {
		m.almostSignaled = false
	}
	if full {
		s.IsHyperfocusActive = true
		m.play(cue.Hyperfocus)
	} else {
		m.play(cue.Confirm)
	}
	m.logger.Info("focus session extended", "seconds", seconds, "hyperfocus", full)
	m.notify(true)
	return nil
}

// AdjustTimeLeft sets the remaining time of a paused focus session,
// clamped to [0, MaxTimeLeft].
func (m *Machine) AdjustTimeLeft(seconds int) error {
	if m.sess.IsRunning || m.gate.pending() {
		m.play(cue.ButtonPress)
		return ErrRunning
	}
	if m.sess.Phase != Work {
		m.play(cue.ButtonPress)
		return ErrNotWorkPhase
	}
	seconds = min(max(seconds, 0), MaxTimeLeft)
	m.sess.TimeLeft = seconds
	m.sess.InitialDuration = seconds
	m.sess.IsAtDefaultDuration = false
	m.notify(true)
	return nil
}

// requireFeedback checks a break may start or end: either the last
// session already has feedback or some is typed now.
func (m *Machine) requireFeedback() error {
	if strings.TrimSpace(m.feedback) != "" || m.history.LatestHasFeedback() {
		return nil
	}
	return ErrFeedbackRequired
}

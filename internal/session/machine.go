// Package session implements the focus timer: phase transitions,
// deadline-based countdown, the one-time focus extension and the
// history writes tied to phase boundaries.
//
// A Machine is driven from a single goroutine. Commands mutate it in
// place and notify subscribers with a fresh Snapshot.
package session

import (
	"log/slog"
	"time"

	"github.com/sadopc/hyperfocus/internal/backlog"
	"github.com/sadopc/hyperfocus/internal/clock"
	"github.com/sadopc/hyperfocus/internal/cue"
	"github.com/sadopc/hyperfocus/internal/history"
)

// SchemaVersion tags persisted snapshots.
const SchemaVersion = 1

// Session is the state of the current phase instance.
type Session struct {
	Phase           Phase
	TimeLeft        int // seconds; derived from Deadline while running
	InitialDuration int
	IsRunning       bool
	Deadline        time.Time // zero unless running
	CycleCount      int
	// SessionStartTime is set when a focus session first starts running.
	SessionStartTime        time.Time
	HasExtendedCurrentFocus bool
	IsHyperfocusActive      bool
	ShowExtensionOptions    bool
	// IsAtDefaultDuration is true until the countdown is started or
	// adjusted by hand, so setting changes may still resize it.
	IsAtDefaultDuration bool
}

// Snapshot is everything the machine owns, as one versioned value.
type Snapshot struct {
	Version     int
	Settings    Settings
	Session     Session
	FocusPoints []string
	Feedback    string
	NextPlans   []string
	History     []history.Entry
	Backlog     []backlog.Task
	GateStage   GateStage `cbor:"-"`
}

// Change is delivered to subscribers after every mutation. Durable is
// false for refreshes that only move a running countdown.
type Change struct {
	Snapshot Snapshot
	Durable  bool
}

type Options struct {
	Clock    clock.Clock
	Cues     cue.Emitter
	Logger   *slog.Logger
	Settings Settings
}

type subscriber struct {
	id int
	fn func(Change)
}

// Machine is the session state machine.
type Machine struct {
	clock  clock.Clock
	cues   cue.Emitter
	logger *slog.Logger

	settings    Settings
	sess        Session
	focusPoints []string
	feedback    string
	nextPlans   []string
	history     *history.Ledger
	backlog     *backlog.List

	gate           gate
	visible        bool
	almostSignaled bool
	// lastCompleted is the deadline whose completion already fired.
	lastCompleted time.Time

	subscribers []subscriber
	nextSubID   int
}

// New returns a machine at the start of a focus session.
func New(opts Options) *Machine {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Cues == nil {
		opts.Cues = cue.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Settings.Validate() != nil {
		opts.Settings = DefaultSettings()
	}

	m := &Machine{
		clock:    opts.Clock,
		cues:     opts.Cues,
		logger:   opts.Logger,
		settings: opts.Settings,
		history:  history.NewLedger(nil),
		backlog:  backlog.NewList(nil),
		visible:  true,
	}
	m.sess.Phase = Work
	m.size(m.settings.WorkDuration)
	return m
}

// Restore replaces the machine state with s. A running snapshot stays
// running; the next Tick reconciles it against the clock.
func (m *Machine) Restore(s Snapshot) error {
	if s.Version != SchemaVersion {
		return ErrSchemaVersion
	}
	if err := s.Settings.Validate(); err != nil {
		m.logger.Warn("restored settings invalid, using defaults", "error", err)
		s.Settings = DefaultSettings()
	}

	m.gate.reset()
	m.settings = s.Settings
	m.sess = s.Session
	m.focusPoints = append([]string(nil), s.FocusPoints...)
	m.feedback = s.Feedback
	m.nextPlans = append([]string(nil), s.NextPlans...)
	m.history = history.NewLedger(s.History)
	m.backlog = backlog.NewList(s.Backlog)
	m.almostSignaled = m.sess.ShowExtensionOptions
	m.lastCompleted = time.Time{}

	if m.sess.IsRunning && m.sess.Deadline.IsZero() {
		m.sess.IsRunning = false
	}
	if !m.sess.IsRunning {
		m.sess.Deadline = time.Time{}
	}
	if m.sess.TimeLeft < 0 {
		m.sess.TimeLeft = 0
	}
	return nil
}

// Subscribe registers fn for every change. The returned func removes it.
func (m *Machine) Subscribe(fn func(Change)) func() {
	m.nextSubID++
	id := m.nextSubID
	m.subscribers = append(m.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range m.subscribers {
			if s.id == id {
				m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a copy of the current state. While running, TimeLeft
// is derived from the deadline at the moment of the call.
func (m *Machine) Snapshot() Snapshot {
	sess := m.sess
	if sess.IsRunning {
		sess.TimeLeft = remainingSeconds(sess.Deadline, m.clock.Now())
	}
	return Snapshot{
		Version:     SchemaVersion,
		Settings:    m.settings,
		Session:     sess,
		FocusPoints: append([]string(nil), m.focusPoints...),
		Feedback:    m.feedback,
		NextPlans:   append([]string(nil), m.nextPlans...),
		History:     m.history.Entries(),
		Backlog:     m.backlog.Tasks(),
		GateStage:   m.gate.stage,
	}
}

func (m *Machine) Settings() Settings { return m.settings }
func (m *Machine) Phase() Phase       { return m.sess.Phase }

// Starting reports whether the focus-start sequence is in flight.
func (m *Machine) Starting() bool { return m.gate.pending() }

func (m *Machine) notify(durable bool) {
	if len(m.subscribers) == 0 {
		return
	}
	ch := Change{Snapshot: m.Snapshot(), Durable: durable}
	for _, s := range append([]subscriber(nil), m.subscribers...) {
		s.fn(ch)
	}
}

func (m *Machine) play(c cue.Cue) {
	if m.settings.SoundEnabled {
		m.cues.Play(c)
	}
}

func (m *Machine) loop(c cue.Cue) {
	if m.settings.SoundEnabled {
		m.cues.Loop(c)
	}
}

// size resets the countdown to d seconds at its default length.
func (m *Machine) size(d int) {
	m.sess.TimeLeft = d
	m.sess.InitialDuration = d
	m.sess.IsAtDefaultDuration = true
}

func remainingSeconds(deadline, now time.Time) int {
	return max(0, history.Seconds(deadline.Sub(now)))
}

// Package history keeps the ledger of completed focus sessions. The
// ledger is always sorted by start time, newest first.
package history

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("history entry not found")
	ErrEndBeforeStart = errors.New("end time must be after start time")
	ErrNoFocusPoints  = errors.New("add at least one focus point")
)

// Entry is one completed focus session.
type Entry struct {
	ID             string    `cbor:"id" json:"id" yaml:"id"`
	StartTime      time.Time `cbor:"start" json:"start_time" yaml:"start_time"`
	EndTime        time.Time `cbor:"end" json:"end_time" yaml:"end_time"`
	Duration       int       `cbor:"duration" json:"duration_seconds" yaml:"duration_seconds"`
	FocusPoints    []string  `cbor:"focus" json:"focus_points" yaml:"focus_points"`
	FeedbackNotes  string    `cbor:"feedback" json:"feedback_notes,omitempty" yaml:"feedback_notes,omitempty"`
	NextFocusPlans []string  `cbor:"next,omitempty" json:"next_focus_plans,omitempty" yaml:"next_focus_plans,omitempty"`
}

// Patch is a partial edit. Nil fields are left untouched.
type Patch struct {
	StartTime      *time.Time
	EndTime        *time.Time
	Duration       *int
	FocusPoints    []string
	FeedbackNotes  *string
	NextFocusPlans *[]string
}

// Manual is a user-authored entry not tied to a timer run.
type Manual struct {
	StartTime      time.Time
	EndTime        time.Time
	FocusPoints    []string
	FeedbackNotes  string
	NextFocusPlans []string
}

// Ledger owns the entry collection.
type Ledger struct {
	entries []Entry
	newID   func() string
}

// NewLedger returns a ledger seeded with entries, sorted newest first.
func NewLedger(entries []Entry) *Ledger {
	l := &Ledger{newID: newID}
	for _, e := range entries {
		l.entries = append(l.entries, clone(e))
	}
	l.sort()
	return l
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Entries returns a copy of the collection.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = clone(e)
	}
	return out
}

func (l *Ledger) Len() int { return len(l.entries) }

// Get returns the entry with the given id.
func (l *Ledger) Get(id string) (Entry, bool) {
	i := l.index(id)
	if i < 0 {
		return Entry{}, false
	}
	return clone(l.entries[i]), true
}

// Latest returns the most recent entry.
func (l *Ledger) Latest() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return clone(l.entries[0]), true
}

// LatestHasFeedback reports whether the newest entry carries feedback.
func (l *Ledger) LatestHasFeedback() bool {
	return len(l.entries) > 0 && strings.TrimSpace(l.entries[0].FeedbackNotes) != ""
}

// Append inserts e, assigning an id if it has none.
func (l *Ledger) Append(e Entry) Entry {
	e = clone(e)
	if e.ID == "" {
		e.ID = l.newID()
	}
	e.FocusPoints = compact(e.FocusPoints)
	e.NextFocusPlans = normalizePlans(e.NextFocusPlans)
	l.entries = append(l.entries, e)
	l.sort()
	return clone(e)
}

// BackfillBreakInfo fills the newest entry's empty feedback and plans.
// Existing values are never overwritten. Reports whether anything changed.
func (l *Ledger) BackfillBreakInfo(feedback string, plans []string) bool {
	if len(l.entries) == 0 {
		return false
	}
	latest := &l.entries[0]
	changed := false

	feedback = strings.TrimSpace(feedback)
	if feedback != "" && strings.TrimSpace(latest.FeedbackNotes) == "" {
		latest.FeedbackNotes = feedback
		changed = true
	}
	plans = normalizePlans(plans)
	if len(plans) > 0 && len(latest.NextFocusPlans) == 0 {
		latest.NextFocusPlans = plans
		changed = true
	}
	return changed
}

// Update applies p to the entry with the given id. A time edit that
// would leave the end before the start rejects the whole edit.
func (l *Ledger) Update(id string, p Patch) error {
	i := l.index(id)
	if i < 0 {
		return ErrNotFound
	}
	e := clone(l.entries[i])

	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if (p.StartTime != nil || p.EndTime != nil) && e.EndTime.Before(e.StartTime) {
		return ErrEndBeforeStart
	}
	if p.Duration != nil && *p.Duration >= 0 {
		e.Duration = *p.Duration
	}
	if p.FocusPoints != nil {
		e.FocusPoints = compact(p.FocusPoints)
	}
	if p.FeedbackNotes != nil {
		e.FeedbackNotes = strings.TrimSpace(*p.FeedbackNotes)
	}
	if p.NextFocusPlans != nil {
		e.NextFocusPlans = normalizePlans(*p.NextFocusPlans)
	}

	resort := !e.StartTime.Equal(l.entries[i].StartTime)
	l.entries[i] = e
	if resort {
		l.sort()
	}
	return nil
}

// Delete removes one entry. Reports whether it existed.
func (l *Ledger) Delete(id string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return true
}

// Clear removes every entry.
func (l *Ledger) Clear() {
	l.entries = nil
}

// AddManual validates and inserts a user-authored entry.
func (l *Ledger) AddManual(m Manual) (Entry, error) {
	if !m.EndTime.After(m.StartTime) {
		return Entry{}, ErrEndBeforeStart
	}
	points := compact(m.FocusPoints)
	if len(points) == 0 {
		return Entry{}, ErrNoFocusPoints
	}
	return l.Append(Entry{
		StartTime:      m.StartTime,
		EndTime:        m.EndTime,
		Duration:       Seconds(m.EndTime.Sub(m.StartTime)),
		FocusPoints:    points,
		FeedbackNotes:  strings.TrimSpace(m.FeedbackNotes),
		NextFocusPlans: m.NextFocusPlans,
	}), nil
}

// Seconds rounds d to the nearest whole second.
func Seconds(d time.Duration) int {
	return int(math.Round(float64(d) / float64(time.Second)))
}

func (l *Ledger) index(id string) int {
	for i := range l.entries {
		if l.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) sort() {
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].StartTime.After(l.entries[j].StartTime)
	})
}

// compact trims items and drops the empty ones.
func compact(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// normalizePlans is compact with "no plans" represented as nil.
func normalizePlans(plans []string) []string {
	out := compact(plans)
	if len(out) == 0 {
		return nil
	}
	return out
}

func clone(e Entry) Entry {
	if e.FocusPoints != nil {
		e.FocusPoints = append([]string(nil), e.FocusPoints...)
	}
	if e.NextFocusPlans != nil {
		e.NextFocusPlans = append([]string(nil), e.NextFocusPlans...)
	}
	return e
}

// Package cue defines the named audio/notification events the session
// emits and the backends that play them. Playback is fire-and-forget:
// backends swallow and log their own failures.
package cue

import "sync"

// Cue names a sound or notification event.
type Cue string

const (
	Click             Cue = "click"
	ButtonPress       Cue = "buttonPress"
	Typing            Cue = "typing"
	Alarm             Cue = "alarm"
	AlarmLoop         Cue = "alarm-loop"
	FocusStart        Cue = "focusStart"
	FocusAlmostEnding Cue = "focusAlmostEnding"
	Confirm           Cue = "confirm"
	Remove            Cue = "remove"
	Select            Cue = "select"
	Hyperfocus        Cue = "hyperfocus"
)

// All lists every cue in a stable order.
var All = []Cue{
	Click, ButtonPress, Typing, Alarm, AlarmLoop, FocusStart,
	FocusAlmostEnding, Confirm, Remove, Select, Hyperfocus,
}

// Emitter plays cues. Play is single-shot, Loop repeats until Stop.
type Emitter interface {
	Play(c Cue)
	Loop(c Cue)
	Stop()
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Play(Cue) {}
func (Nop) Loop(Cue) {}
func (Nop) Stop()    {}

// Multi fans cues out to several emitters.
type Multi []Emitter

func (m Multi) Play(c Cue) {
	for _, e := range m {
		e.Play(c)
	}
}

func (m Multi) Loop(c Cue) {
	for _, e := range m {
		e.Loop(c)
	}
}

func (m Multi) Stop() {
	for _, e := range m {
		e.Stop()
	}
}

// Recorder remembers every cue it receives. Used by tests.
type Recorder struct {
	mu      sync.Mutex
	played  []Cue
	looping Cue
	stops   int
}

func (r *Recorder) Play(c Cue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, c)
}

func (r *Recorder) Loop(c Cue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, c)
	r.looping = c
}

func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.looping = ""
	r.stops++
}

// Played returns a copy of the cues received so far, loops included.
func (r *Recorder) Played() []Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Cue, len(r.played))
	copy(out, r.played)
	return out
}

// Count returns how many times c was received.
func (r *Recorder) Count(c Cue) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.played {
		if p == c {
			n++
		}
	}
	return n
}

// Looping returns the cue currently looping, or "".
func (r *Recorder) Looping() Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.looping
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = nil
	r.looping = ""
	r.stops = 0
}

// Stops returns how many times Stop was called.
func (r *Recorder) Stops() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stops
}

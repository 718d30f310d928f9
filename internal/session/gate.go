package session

import "time"

// GateStage is the position of the focus-start sequence. The timer only
// starts running once the sequence reaches GateRunning.
type GateStage int

const (
	GateIdle GateStage = iota
	GateBeat1
	GateBeat2
	GateBeat3
	GateSettling
	GateRunning
)

const (
	BeatInterval     = 500 * time.Millisecond
	FocusStartWindow = 4 * BeatInterval
)

// Beat reports whether the stage is one of the accent flashes.
func (g GateStage) Beat() bool {
	return g == GateBeat1 || g == GateBeat2 || g == GateBeat3
}

// gate delays the start of a focus session by FocusStartWindow. It is
// driven by the same reconciliation clock as the countdown, so there
// are no callbacks to cancel: reset is the whole cancellation.
type gate struct {
	stage     GateStage
	startedAt time.Time
}

func (g *gate) begin(now time.Time) {
	g.stage = GateBeat1
	g.startedAt = now
}

func (g *gate) pending() bool { return g.stage != GateIdle }

func (g *gate) readyAt() time.Time { return g.startedAt.Add(FocusStartWindow) }

// advance moves to the stage for now. Stages never go backwards, even
// if the clock does. Reports whether the stage changed.
func (g *gate) advance(now time.Time) bool {
	next := stageAt(now.Sub(g.startedAt))
	if next <= g.stage {
		return false
	}
	g.stage = next
	return true
}

func (g *gate) reset() { *g = gate{} }

func stageAt(elapsed time.Duration) GateStage {
	switch {
	case elapsed >= FocusStartWindow:
		return GateRunning
	case elapsed >= 3*BeatInterval:
		return GateSettling
	case elapsed >= 2*BeatInterval:
		return GateBeat3
	case elapsed >= BeatInterval:
		return GateBeat2
	default:
		return GateBeat1
	}
}

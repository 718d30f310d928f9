package cue

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// beats is how many terminal bells each cue rings.
var beats = map[Cue]int{
	Alarm:             2,
	AlarmLoop:         1,
	FocusStart:        3,
	FocusAlmostEnding: 1,
	Hyperfocus:        2,
}

// Bell rings the terminal bell on an io.Writer. Cues without an entry
// in the beats table are silent, so UI clicks and typing don't beep.
type Bell struct {
	w        io.Writer
	logger   *slog.Logger
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}

	writeMu sync.Mutex
}

// NewBell returns a Bell writing to w. A loop rings every interval.
func NewBell(w io.Writer, interval time.Duration, logger *slog.Logger) *Bell {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Bell{w: w, logger: logger, interval: interval}
}

func (b *Bell) Play(c Cue) {
	n := beats[c]
	if n == 0 {
		return
	}
	b.ring(c, n)
}

// Loop rings c every interval until Stop. A second Loop replaces the first.
func (b *Bell) Loop(c Cue) {
	b.Stop()

	stop := make(chan struct{})
	b.mu.Lock()
	b.stop = stop
	b.mu.Unlock()

	b.ring(c, 1)
	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				b.ring(c, 1)
			}
		}
	}()
}

func (b *Bell) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		close(b.stop)
		b.stop = nil
	}
}

func (b *Bell) ring(c Cue, n int) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if _, err := io.WriteString(b.w, strings.Repeat("\a", n)); err != nil {
		b.logger.Warn("ring bell", "cue", string(c), "error", err)
	}
}

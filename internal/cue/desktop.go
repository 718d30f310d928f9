package cue

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// messages maps the cues worth a desktop notification to their text.
var messages = map[Cue]struct{ title, body string }{
	Alarm:             {"hyperfocus", "Time is up."},
	AlarmLoop:         {"hyperfocus", "Time is up. Come back to the timer."},
	FocusAlmostEnding: {"hyperfocus", "One minute left in this focus session."},
	Hyperfocus:        {"hyperfocus", "Hyperfocus: a full extra session granted."},
}

// Desktop sends desktop notifications through osascript (macOS) or
// notify-send (everywhere else). Each notification runs in its own
// goroutine so a slow helper never blocks the caller.
type Desktop struct {
	logger  *slog.Logger
	goos    string
	run     func(name string, args ...string) ([]byte, error)
	pending sync.WaitGroup
}

// NewDesktop returns a Desktop notifier for the running OS.
func NewDesktop(logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desktop{
		logger: logger,
		goos:   runtime.GOOS,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).CombinedOutput()
		},
	}
}

func (d *Desktop) Play(c Cue) {
	m, ok := messages[c]
	if !ok {
		return
	}
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		if err := d.send(m.title, m.body); err != nil {
			d.logger.Warn("desktop notification", "cue", string(c), "error", err)
		}
	}()
}

// Loop notifies once; repeating a desktop notification is just noise.
func (d *Desktop) Loop(c Cue) { d.Play(c) }

func (d *Desktop) Stop() {}

// Wait blocks until every notification already sent has finished.
func (d *Desktop) Wait() { d.pending.Wait() }

func (d *Desktop) send(title, message string) error {
	name, args := d.command(title, message)
	if out, err := d.run(name, args...); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (d *Desktop) command(title, message string) (string, []string) {
	if d.goos == "darwin" {
		script := fmt.Sprintf(
			`display notification "%s" with title "%s" sound name "default"`,
			escapeAppleScript(message), escapeAppleScript(title),
		)
		return "osascript", []string{"-e", script}
	}
	return "notify-send", []string{"--app-name=hyperfocus", title, message}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

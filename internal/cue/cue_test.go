package cue

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// ============================================================
// Recorder / Multi
// ============================================================

func TestRecorderCounts(t *testing.T) {
	r := &Recorder{}
	r.Play(Click)
	r.Play(Click)
	r.Loop(AlarmLoop)

	if r.Count(Click) != 2 {
		t.Fatalf("expected 2 clicks, got %d", r.Count(Click))
	}
	if r.Looping() != AlarmLoop {
		t.Fatalf("expected alarm-loop looping, got %q", r.Looping())
	}
	r.Stop()
	if r.Looping() != "" {
		t.Fatal("Stop should end the loop")
	}
	if len(r.Played()) != 3 {
		t.Fatalf("expected 3 recorded cues, got %d", len(r.Played()))
	}
}

func TestMultiFansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, b}
	m.Play(Confirm)
	m.Loop(AlarmLoop)
	m.Stop()

	for i, r := range []*Recorder{a, b} {
		if r.Count(Confirm) != 1 || r.Count(AlarmLoop) != 1 {
			t.Fatalf("recorder %d missed cues: %v", i, r.Played())
		}
		if r.Looping() != "" {
			t.Fatalf("recorder %d still looping", i)
		}
	}
}

func TestCueNames(t *testing.T) {
	seen := make(map[Cue]bool)
	for _, c := range All {
		if c == "" {
			t.Fatal("empty cue name")
		}
		if seen[c] {
			t.Fatalf("duplicate cue %q", c)
		}
		seen[c] = true
	}
	if len(All) != 11 {
		t.Fatalf("expected 11 cues, got %d", len(All))
	}
}

// ============================================================
// Bell
// ============================================================

func TestBellPlayRingsBeats(t *testing.T) {
	var buf syncBuffer
	b := NewBell(&buf, time.Second, nil)

	b.Play(FocusStart)
	if got := strings.Count(buf.String(), "\a"); got != 3 {
		t.Fatalf("focusStart should ring 3 bells, got %d", got)
	}
}

func TestBellSilentCues(t *testing.T) {
	var buf syncBuffer
	b := NewBell(&buf, time.Second, nil)

	b.Play(Click)
	b.Play(Typing)
	if buf.String() != "" {
		t.Fatalf("click/typing should be silent, got %q", buf.String())
	}
}

func TestBellLoopStops(t *testing.T) {
	var buf syncBuffer
	b := NewBell(&buf, 5*time.Millisecond, nil)

	b.Loop(AlarmLoop)
	time.Sleep(30 * time.Millisecond)
	b.Stop()
	rung := strings.Count(buf.String(), "\a")
	if rung < 2 {
		t.Fatalf("loop should ring repeatedly, got %d", rung)
	}

	time.Sleep(20 * time.Millisecond)
	if after := strings.Count(buf.String(), "\a"); after > rung+1 {
		t.Fatalf("loop kept ringing after Stop: %d -> %d", rung, after)
	}
}

func TestBellStopWithoutLoop(t *testing.T) {
	b := NewBell(&syncBuffer{}, time.Second, nil)
	b.Stop() // no-op, must not panic
	b.Stop()
}

// ============================================================
// Desktop
// ============================================================

func TestDesktopCommandDarwin(t *testing.T) {
	d := NewDesktop(nil)
	d.goos = "darwin"
	name, args := d.command(`say "hi"`, "body")
	if name != "osascript" {
		t.Fatalf("expected osascript, got %s", name)
	}
	if !strings.Contains(args[1], `say \"hi\"`) {
		t.Fatalf("title not escaped: %s", args[1])
	}
}

func TestDesktopCommandLinux(t *testing.T) {
	d := NewDesktop(nil)
	d.goos = "linux"
	name, args := d.command("t", "m")
	if name != "notify-send" {
		t.Fatalf("expected notify-send, got %s", name)
	}
	if args[len(args)-1] != "m" {
		t.Fatalf("message should be last arg: %v", args)
	}
}

func TestDesktopOnlyNotifiesForAlerts(t *testing.T) {
	d := NewDesktop(nil)
	var mu sync.Mutex
	var calls int
	d.run = func(string, ...string) ([]byte, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil, nil
	}
	d.Play(Click)
	d.Play(Confirm)
	d.Wait()
	if calls != 0 {
		t.Fatalf("click/confirm should not notify, got %d calls", calls)
	}
	d.Play(Alarm)
	d.Loop(AlarmLoop)
	d.Wait()
	if calls != 2 {
		t.Fatalf("expected 2 notifications, got %d", calls)
	}
}

func TestDesktopDoesNotBlockCaller(t *testing.T) {
	d := NewDesktop(nil)
	release := make(chan struct{})
	d.run = func(string, ...string) ([]byte, error) {
		<-release
		return nil, nil
	}

	done := make(chan struct{})
	go func() {
		d.Play(Alarm)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Play blocked on a slow notification helper")
	}

	close(release)
	d.Wait()
}

func TestDesktopFailureSwallowed(t *testing.T) {
	d := NewDesktop(nil)
	d.run = func(string, ...string) ([]byte, error) {
		return []byte("no display"), errors.New("exit status 1")
	}
	d.Play(Alarm) // logged, not fatal
	d.Wait()
}

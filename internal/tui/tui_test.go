package tui

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/hyperfocus/internal/clock"
	"github.com/sadopc/hyperfocus/internal/config"
	"github.com/sadopc/hyperfocus/internal/cue"
	"github.com/sadopc/hyperfocus/internal/export"
	"github.com/sadopc/hyperfocus/internal/history"
	"github.com/sadopc/hyperfocus/internal/session"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestMachine(t *testing.T) (*session.Machine, *clock.FakeClock, *cue.Recorder) {
	t.Helper()
	clk := clock.Fake(t0)
	rec := &cue.Recorder{}
	m := session.New(session.Options{
		Clock:    clk,
		Cues:     rec,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Settings: session.DefaultSettings(),
	})
	return m, clk, rec
}

func newTestApp(t *testing.T) (App, *session.Machine, *clock.FakeClock) {
	t.Helper()
	m, clk, _ := newTestMachine(t)
	app := NewApp(m).WithExportDir(t.TempDir())
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return model.(App), m, clk
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

// send feeds msgs to the app in order and returns the last command.
func send(t *testing.T, a App, msgs ...tea.Msg) (App, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var model tea.Model
		model, cmd = a.Update(msg)
		a = model.(App)
	}
	return a, cmd
}

// statusOf runs cmd and returns the status message it produced.
func statusOf(t *testing.T, cmd tea.Cmd) statusMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(statusMsg)
	if !ok {
		t.Fatalf("expected statusMsg, got %T", msg)
	}
	return msg
}

// ============================================================
// Timer view
// ============================================================

func TestTimerStartWithoutFocusPoints(t *testing.T) {
	app, m, _ := newTestApp(t)

	_, cmd := send(t, app, runes("s"))
	msg := statusOf(t, cmd)
	if !msg.isError || msg.text != session.ErrFocusPointsRequired.Error() {
		t.Fatalf("unexpected status %+v", msg)
	}
	if m.Starting() || m.Snapshot().Session.IsRunning {
		t.Fatal("timer should not start without focus points")
	}
}

func TestTimerAddFocusPointThroughInput(t *testing.T) {
	app, m, _ := newTestApp(t)

	app, _ = send(t, app, runes("n"))
	if !app.isFormActive() {
		t.Fatal("n should open the focus point input")
	}
	// q is text while the input is open.
	app, cmd := send(t, app, runes("quiet refactor"), enter)
	if cmd != nil {
		if _, isQuit := cmd().(tea.QuitMsg); isQuit {
			t.Fatal("typing q in the input should not quit")
		}
	}
	if app.isFormActive() {
		t.Fatal("enter should close the input")
	}
	if got := m.FocusPoints(); len(got) != 1 || got[0] != "quiet refactor" {
		t.Fatalf("unexpected focus points %v", got)
	}
}

func TestTimerInputEscCancels(t *testing.T) {
	app, m, _ := newTestApp(t)
	app, _ = send(t, app, runes("n"), runes("abandoned"), esc)
	if app.isFormActive() {
		t.Fatal("esc should close the input")
	}
	if len(m.FocusPoints()) != 0 {
		t.Fatal("cancelled input should not add a focus point")
	}
}

func TestTimerEditAndRemoveFocusPoint(t *testing.T) {
	app, m, _ := newTestApp(t)
	m.AddFocusPoint("first")
	m.AddFocusPoint("second")

	app, _ = send(t, app, runes("j"), enter)
	app, _ = send(t, app, runes(" draft"), enter)
	if got := m.FocusPoints(); got[1] != "second draft" {
		t.Fatalf("edit should apply to the selected point, got %v", got)
	}

	app, _ = send(t, app, runes("d"))
	if got := m.FocusPoints(); len(got) != 1 || got[0] != "first" {
		t.Fatalf("unexpected focus points after delete %v", got)
	}
	if app.timer.cursor != 0 {
		t.Fatalf("cursor should clamp after delete, got %d", app.timer.cursor)
	}
}

func TestTickRunsFocusStartGate(t *testing.T) {
	app, m, clk := newTestApp(t)
	m.AddFocusPoint("write tests")

	app, _ = send(t, app, runes("s"))
	if !m.Starting() {
		t.Fatal("start should begin the focus-start sequence")
	}
	if !strings.Contains(app.timer.view(), "Get ready") {
		t.Fatal("timer view should show the focus-start beats")
	}

	clk.Advance(session.FocusStartWindow)
	app, cmd := send(t, app, tickMsg(clk.Now()))
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
	if !m.Snapshot().Session.IsRunning {
		t.Fatal("countdown should run after the focus-start window")
	}
	if !strings.Contains(app.timer.view(), "Running") {
		t.Fatal("timer view should show the running state")
	}
}

func TestTimerAdjustTime(t *testing.T) {
	app, m, _ := newTestApp(t)
	app, _ = send(t, app, runes("t"))
	if app.timer.input.Value() != "25:00" {
		t.Fatalf("adjust input should be prefilled, got %q", app.timer.input.Value())
	}
	app.timer.input.SetValue("12:30")
	send(t, app, enter)
	if got := m.Snapshot().Session.TimeLeft; got != 750 {
		t.Fatalf("TimeLeft = %d, want 750", got)
	}
}

func TestSkipChangesPhaseAndStatus(t *testing.T) {
	app, m, _ := newTestApp(t)
	m.AddFocusPoint("review")

	app, _ = send(t, app, runes("x"))
	if m.Phase() != session.ShortBreak {
		t.Fatalf("phase = %v, want short break", m.Phase())
	}
	if app.status != "Break time!" {
		t.Fatalf("status = %q", app.status)
	}
	if !strings.Contains(app.timer.view(), "Feedback") {
		t.Fatal("break view should show the feedback section")
	}
}

func TestBreakFeedbackAndPlans(t *testing.T) {
	app, m, _ := newTestApp(t)
	m.AddFocusPoint("review")
	m.Skip()

	app, _ = send(t, app, runes("f"), runes("went well"), enter)
	if m.Feedback() != "went well" {
		t.Fatalf("feedback = %q", m.Feedback())
	}
	app, _ = send(t, app, runes("n"), runes("ship it"), enter)
	if got := m.NextPlans(); len(got) != 1 || got[0] != "ship it" {
		t.Fatalf("plans = %v", got)
	}
	_, cmd := send(t, app, runes("c"))
	if msg := statusOf(t, cmd); msg.isError {
		t.Fatalf("commit failed: %s", msg.text)
	}
	if e := m.History()[0]; e.FeedbackNotes != "went well" {
		t.Fatalf("latest entry not backfilled: %+v", e)
	}
}

func TestExtensionOptionsShown(t *testing.T) {
	app, m, clk := newTestApp(t)
	m.AddFocusPoint("deep work")
	m.Start()
	clk.Advance(session.FocusStartWindow)
	m.Tick()
	clk.Advance(1450 * time.Second)
	app, _ = send(t, app, tickMsg(clk.Now()))

	if !strings.Contains(app.timer.view(), "Almost done") {
		t.Fatal("extension options should show in the last minute")
	}
	send(t, app, runes("H"))
	s := m.Snapshot().Session
	if !s.IsHyperfocusActive || s.TimeLeft != 50+1500 {
		t.Fatalf("hyperfocus extension not applied: %+v", s)
	}
}

// ============================================================
// App messages
// ============================================================

func TestFocusAndBlurSetVisibility(t *testing.T) {
	app, m, _ := newTestApp(t)
	app, _ = send(t, app, tea.BlurMsg{})
	if m.Visible() {
		t.Fatal("blur should hide the app")
	}
	send(t, app, tea.FocusMsg{})
	if !m.Visible() {
		t.Fatal("focus should show the app")
	}
}

func TestConfigReloaded(t *testing.T) {
	app, m, _ := newTestApp(t)
	m.ChangeSetting(session.SettingShortBreakDuration, 7*60)

	work := 50
	app, _ = send(t, app, ConfigReloadedMsg{Config: config.FileConfig{
		Timer: config.TimerConfig{WorkMinutes: &work},
	}})
	if m.Settings().WorkDuration != 3000 || m.Snapshot().Session.TimeLeft != 3000 {
		t.Fatal("reloaded config should resize an untouched focus session")
	}
	if m.Settings().ShortBreakDuration != 7*60 {
		t.Fatal("keys missing from the file should keep their current value")
	}
	if app.status != "Config reloaded" {
		t.Fatalf("status = %q", app.status)
	}
}

func TestTabCyclesViews(t *testing.T) {
	app, _, _ := newTestApp(t)
	tab := tea.KeyMsg{Type: tea.KeyTab}
	app, _ = send(t, app, tab, tab)
	if app.activeView != viewHistory {
		t.Fatalf("activeView = %d, want history", app.activeView)
	}
	app, _ = send(t, app, runes("4"), tab)
	if app.activeView != viewReports || app.reports.mode != reportWeekly {
		t.Fatal("tab on reports should switch the report mode")
	}
}

// ============================================================
// Backlog view
// ============================================================

func TestBacklogPromote(t *testing.T) {
	app, m, _ := newTestApp(t)
	m.AddTask("write changelog")
	m.AddTask("tag release")

	app, _ = send(t, app, runes("2"), runes("j"), runes("p"))
	if got := m.FocusPoints(); len(got) != 1 || got[0] != "tag release" {
		t.Fatalf("focus points = %v", got)
	}
	if len(m.Backlog()) != 1 || app.backlog.cursor != 0 {
		t.Fatal("promoted task should leave the backlog")
	}
}

func TestBacklogClearNeedsConfirm(t *testing.T) {
	app, m, _ := newTestApp(t)
	m.AddTask("a")

	app, _ = send(t, app, runes("2"), runes("D"), runes("n"))
	if len(m.Backlog()) != 1 {
		t.Fatal("clear should need confirmation")
	}
	app, _ = send(t, app, runes("D"))
	if !strings.Contains(app.backlog.view(), "Clear the whole backlog?") {
		t.Fatal("confirmation prompt should be shown")
	}
	send(t, app, runes("y"))
	if len(m.Backlog()) != 0 {
		t.Fatal("confirmed clear should empty the backlog")
	}
}

// ============================================================
// History view
// ============================================================

func addManual(t *testing.T, m *session.Machine, start time.Time, point string) history.Entry {
	t.Helper()
	e, err := m.AddManualHistory(history.Manual{
		StartTime:   start,
		EndTime:     start.Add(25 * time.Minute),
		FocusPoints: []string{point},
	})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestHistoryDeleteNeedsConfirm(t *testing.T) {
	app, m, _ := newTestApp(t)
	addManual(t, m, t0.Add(-2*time.Hour), "older")
	addManual(t, m, t0.Add(-1*time.Hour), "newer")

	app, _ = send(t, app, runes("3"), runes("d"), esc)
	if len(m.History()) != 2 {
		t.Fatal("delete should need confirmation")
	}
	send(t, app, runes("d"), runes("y"))
	if h := m.History(); len(h) != 1 || h[0].FocusPoints[0] != "older" {
		t.Fatalf("unexpected history %+v", h)
	}
}

func TestHistoryEditSave(t *testing.T) {
	m, _, _ := newTestMachine(t)
	e := addManual(t, m, t0.Add(-time.Hour), "draft")

	h := newHistoryModel(m)
	h, _ = h.showForm("edit", e)
	*h.formPoints = "final\n\n  polish  "
	*h.formFeedback = "fine"
	*h.formPlans = "next"
	if msg := h.save(); msg != nil {
		t.Fatalf("save failed: %+v", msg())
	}

	got := m.History()[0]
	if len(got.FocusPoints) != 2 || got.FocusPoints[1] != "polish" {
		t.Fatalf("focus points = %v", got.FocusPoints)
	}
	if got.FeedbackNotes != "fine" || got.NextFocusPlans[0] != "next" {
		t.Fatalf("break info = %+v", got)
	}
	if got.Duration != 25*60 {
		t.Fatalf("untouched times should keep duration, got %d", got.Duration)
	}

	h, _ = h.showForm("edit", got)
	*h.formEnd = got.EndTime.Local().Add(5 * time.Minute).Format(entryTimeLayout)
	h.save()
	if d := m.History()[0].Duration; d != 30*60 {
		t.Fatalf("edited end should recompute duration, got %d", d)
	}
}

func TestHistoryManualEntryRejectsBadRange(t *testing.T) {
	m, _, _ := newTestMachine(t)
	h := newHistoryModel(m)
	h, _ = h.showForm("new", history.Entry{StartTime: t0, EndTime: t0})
	*h.formPoints = "something"

	msg := statusOf(t, h.save())
	if !msg.isError {
		t.Fatal("end equal to start should be rejected")
	}
	if len(m.History()) != 0 {
		t.Fatal("rejected entry should not be added")
	}
}

// ============================================================
// Settings view
// ============================================================

func TestSettingsFormApplies(t *testing.T) {
	m, _, rec := newTestMachine(t)
	s := newSettingsModel(m)
	s, _ = s.showForm()
	if *s.workMinutes != "25" || *s.cycles != "4" || !*s.sound {
		t.Fatal("form should be prefilled with current settings")
	}

	*s.workMinutes = "45"
	*s.sound = false
	if err := m.ApplySettings(s.formSettings()); err != nil {
		t.Fatal(err)
	}
	if got := m.Settings(); got.WorkDuration != 2700 || got.SoundEnabled {
		t.Fatalf("unexpected settings %+v", got)
	}
	if rec.Stops() == 0 {
		t.Fatal("turning sound off should stop cues")
	}
}

func TestValidateMinutes(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"25", true},
		{" 1 ", true},
		{"99", true},
		{"0", false},
		{"100", false},
		{"abc", false},
	}
	for _, tt := range tests {
		if err := validateMinutes(tt.in); (err == nil) != tt.ok {
			t.Errorf("validateMinutes(%q) = %v", tt.in, err)
		}
	}
}

// ============================================================
// Reports view
// ============================================================

func TestReportsRefresh(t *testing.T) {
	m, _, _ := newTestMachine(t)
	now := time.Now()
	addManual(t, m, startOfDay(now).Add(time.Minute), "today")

	r := newReportsModel(m)
	r.setSize(120, 40)
	r.refresh()
	if len(r.totals) != 7 {
		t.Fatalf("daily mode should cover 7 days, got %d", len(r.totals))
	}
	if r.totals[6].Sessions != 1 || r.today != 25*60 {
		t.Fatalf("today totals wrong: %+v today=%d", r.totals[6], r.today)
	}
	if !strings.Contains(r.view(), "Total") {
		t.Fatal("summary table should be rendered")
	}
}

// ============================================================
// Export
// ============================================================

func TestExportPicker(t *testing.T) {
	app, m, _ := newTestApp(t)
	addManual(t, m, t0.Add(-time.Hour), "exported")

	app, _ = send(t, app, runes("e"), runes("j"), runes("j"), runes("j"))
	if !app.exportPicking || app.exportCursor != 2 {
		t.Fatalf("picker cursor = %d, want 2", app.exportCursor)
	}
	app, cmd := send(t, app, enter)
	done, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg, got %T", cmd())
	}
	if filepath.Ext(done.path) != "."+string(export.YAML) {
		t.Fatalf("unexpected export path %q", done.path)
	}
	data, err := os.ReadFile(done.path)
	if err != nil || !strings.Contains(string(data), "exported") {
		t.Fatalf("export file missing entry: %v", err)
	}

	app, _ = send(t, app, done)
	if !strings.Contains(app.status, "Exported to") {
		t.Fatalf("status = %q", app.status)
	}
}

// ============================================================
// Helper functions
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Minute, "00:01:00"},
		{time.Hour, "01:00:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		got := formatDuration(tt.d)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0.0h"},
		{3600, "1.0h"},
		{5400, "1.5h"},
	}
	for _, tt := range tests {
		got := formatHours(tt.secs)
		if got != tt.want {
			t.Errorf("formatHours(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00"},
		{-5, "00:00"},
		{59, "00:59"},
		{1500, "25:00"},
		{session.MaxTimeLeft, "99:59"},
		{6300, "105:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.secs); got != tt.want {
			t.Errorf("formatClock(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"25", 1500, false},
		{"12:30", 750, false},
		{" 0:05 ", 5, false},
		{"1:60", 0, true},
		{"-1", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := parseClock(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseClock(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("a longer line", 6); got != "a lon…" {
		t.Fatalf("got %q", got)
	}
	// Wide runes take two cells.
	if got := truncate("集中集中集中", 5); got != "集中…" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("x", 0); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines("a\n\n  b \n")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
	if splitLines("  ") != nil {
		t.Fatal("blank input should give nil")
	}
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	expected := []string{"Timer", "Backlog", "History", "Reports", "Settings"}
	if len(viewNames) != len(expected) {
		t.Fatalf("expected %d view names, got %d", len(expected), len(viewNames))
	}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	m, _, _ := newTestMachine(t)
	app := NewApp(m)

	if app.activeView != viewTimer {
		t.Fatal("default view should be the timer")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	app, m, _ := newTestApp(t)
	m.AddTask("queued")
	addManual(t, m, t0.Add(-time.Hour), "logged")

	// Test all views render without panic
	for v := range viewNames {
		app.activeView = viewState(v)
		if output := app.View(); output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _, _ := newTestApp(t)
	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppFooterShowsCountdownOutsideTimer(t *testing.T) {
	app, _, _ := newTestApp(t)
	if strings.Contains(app.renderFooter(), "WORK 25:00") {
		t.Fatal("timer view should not repeat the countdown in the footer")
	}
	app.activeView = viewBacklog
	if !strings.Contains(app.renderFooter(), "WORK 25:00") {
		t.Fatal("footer should show the countdown on other views")
	}
}

func TestAppLoadingState(t *testing.T) {
	m, _, _ := newTestMachine(t)
	app := NewApp(m)
	// Width 0 means not yet sized
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _, _ := newTestApp(t)
	app, _ = send(t, app, statusMsg{text: "test status"})
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapFullHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test, just verify they do not panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"timer", func() string { return timerStyle.Render("test") }},
		{"timerRunning", func() string { return timerRunningStyle.Render("test") }},
		{"timerPaused", func() string { return timerPausedStyle.Render("test") }},
		{"timerBeat", func() string { return timerBeatStyle.Render("test") }},
		{"timerHyperfocus", func() string { return timerHyperfocusStyle.Render("test") }},
		{"hyperfocusBadge", func() string { return hyperfocusBadgeStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"subtitle", func() string { return subtitleStyle.Render("test") }},
		{"accent", func() string { return accentStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
	}

	for _, s := range styles {
		if result := s.fn(); result == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}

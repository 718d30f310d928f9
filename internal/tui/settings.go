package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hyperfocus/internal/session"
)

type settingsModel struct {
	machine *session.Machine
	width   int
	height  int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	workMinutes       *string
	shortBreakMinutes *string
	longBreakMinutes  *string
	cycles            *string
	sound             *bool
}

func newSettingsModel(m *session.Machine) settingsModel {
	w, sb, lb, c := "", "", "", ""
	sound := true
	return settingsModel{
		machine:           m,
		workMinutes:       &w,
		shortBreakMinutes: &sb,
		longBreakMinutes:  &lb,
		cycles:            &c,
		sound:             &sound,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.machine.Settings()
	*s.workMinutes = secsToMin(cur.WorkDuration)
	*s.shortBreakMinutes = secsToMin(cur.ShortBreakDuration)
	*s.longBreakMinutes = secsToMin(cur.LongBreakDuration)
	*s.cycles = strconv.Itoa(cur.CyclesBeforeLongBreak)
	*s.sound = cur.SoundEnabled

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Focus (min)").Value(s.workMinutes).Validate(validateMinutes),
			huh.NewInput().Title("Short break (min)").Value(s.shortBreakMinutes).Validate(validateMinutes),
			huh.NewInput().Title("Long break (min)").Value(s.longBreakMinutes).Validate(validateMinutes),
			huh.NewInput().Title("Focus sessions before long break").Value(s.cycles).Validate(validateCycles),
			huh.NewConfirm().Title("Sound").Affirmative("On").Negative("Off").Value(s.sound),
		).Title("Timer"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		if err := s.machine.ApplySettings(s.formSettings()); err != nil {
			return s, reportErr(err)
		}
		return s, reportStatus("Settings saved")
	}

	return s, cmd
}

// formSettings converts the validated form strings back to seconds.
func (s settingsModel) formSettings() session.Settings {
	next := s.machine.Settings()
	next.WorkDuration = minToSecs(*s.workMinutes)
	next.ShortBreakDuration = minToSecs(*s.shortBreakMinutes)
	next.LongBreakDuration = minToSecs(*s.longBreakMinutes)
	next.CyclesBeforeLongBreak, _ = strconv.Atoi(strings.TrimSpace(*s.cycles))
	next.SoundEnabled = *s.sound
	return next
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Edit Settings"), "", s.form.View())
		return panelStyle.Width(w).Render(content)
	}

	cur := s.machine.Settings()
	sound := "off"
	if cur.SoundEnabled {
		sound = "on"
	}
	rows := []string{
		titleStyle.Render("Settings"),
		"",
		settingRow("Focus", fmt.Sprintf("%d min", cur.WorkDuration/60)),
		settingRow("Short break", fmt.Sprintf("%d min", cur.ShortBreakDuration/60)),
		settingRow("Long break", fmt.Sprintf("%d min", cur.LongBreakDuration/60)),
		settingRow("Long break every", fmt.Sprintf("%d sessions", cur.CyclesBeforeLongBreak)),
		settingRow("Sound", sound),
		"",
		mutedStyle.Render("  enter: edit"),
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func settingRow(label, value string) string {
	return fmt.Sprintf("  %s %s", mutedStyle.Render(padRight(label, 20)), value)
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n*60 > session.MaxTimeLeft {
		return errors.New("enter whole minutes between 1 and 99")
	}
	return nil
}

func validateCycles(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return errors.New("enter a positive number")
	}
	return nil
}

func secsToMin(secs int) string {
	return strconv.Itoa(secs / 60)
}

func minToSecs(s string) int {
	mins, _ := strconv.Atoi(strings.TrimSpace(s))
	return mins * 60
}

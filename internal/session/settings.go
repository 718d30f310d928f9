package session

import "github.com/sadopc/hyperfocus/internal/cue"

// ChangeSetting updates one setting. Changing the duration of the
// current phase resizes it when the timer is paused and still at its
// default length; otherwise only later phases see the new value.
// SettingSoundEnabled takes 0 or 1.
func (m *Machine) ChangeSetting(key SettingKey, value int) error {
	next := m.settings
	switch key {
	case SettingWorkDuration:
		next.WorkDuration = value
	case SettingShortBreakDuration:
		next.ShortBreakDuration = value
	case SettingLongBreakDuration:
		next.LongBreakDuration = value
	case SettingCyclesBeforeLongBreak:
		next.CyclesBeforeLongBreak = value
	case SettingSoundEnabled:
		m.SetSoundEnabled(value != 0)
		return nil
	default:
		return ErrInvalidSetting
	}
	if err := next.Validate(); err != nil {
		m.play(cue.ButtonPress)
		return err
	}
	m.settings = next
	if key == durationKey(m.sess.Phase) {
		m.resizeToDefault()
	}
	m.notify(true)
	return nil
}

// SetSoundEnabled turns every cue on or off. Turning sound off also
// silences a looping alarm.
func (m *Machine) SetSoundEnabled(on bool) {
	if m.settings.SoundEnabled == on {
		return
	}
	m.settings.SoundEnabled = on
	if !on {
		m.cues.Stop()
	}
	m.notify(true)
}

// ApplySettings replaces all settings at once, as a config reload does.
func (m *Machine) ApplySettings(next Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	prev := m.settings
	if prev == next {
		return nil
	}
	m.settings = next
	if prev.Duration(m.sess.Phase) != next.Duration(m.sess.Phase) {
		m.resizeToDefault()
	}
	if prev.SoundEnabled && !next.SoundEnabled {
		m.cues.Stop()
	}
	m.notify(true)
	return nil
}

func (m *Machine) resizeToDefault() {
	if m.sess.IsRunning || m.gate.pending() || !m.sess.IsAtDefaultDuration {
		return
	}
	m.size(m.settings.Duration(m.sess.Phase))
}

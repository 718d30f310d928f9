package session

import "errors"

// Phase is the kind of interval the timer is counting down.
type Phase int

const (
	Work Phase = iota
	ShortBreak
	LongBreak
)

var phaseNames = map[Phase]string{
	Work:       "WORK",
	ShortBreak: "SHORT BREAK",
	LongBreak:  "LONG BREAK",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsBreak reports whether p is a short or long break.
func (p Phase) IsBreak() bool {
	return p == ShortBreak || p == LongBreak
}

// MaxTimeLeft is 99:59, the largest value the countdown can display.
const MaxTimeLeft = 99*60 + 59

// Settings are the user-tunable durations (seconds) and flags.
type Settings struct {
	WorkDuration          int  `cbor:"work"`
	ShortBreakDuration    int  `cbor:"short_break"`
	LongBreakDuration     int  `cbor:"long_break"`
	CyclesBeforeLongBreak int  `cbor:"cycles"`
	SoundEnabled          bool `cbor:"sound"`
}

// DefaultSettings is 25/5/15 with a long break every fourth cycle.
func DefaultSettings() Settings {
	return Settings{
		WorkDuration:          25 * 60,
		ShortBreakDuration:    5 * 60,
		LongBreakDuration:     15 * 60,
		CyclesBeforeLongBreak: 4,
		SoundEnabled:          true,
	}
}

// Duration returns the configured length of p in seconds.
func (s Settings) Duration(p Phase) int {
	switch p {
	case ShortBreak:
		return s.ShortBreakDuration
	case LongBreak:
		return s.LongBreakDuration
	default:
		return s.WorkDuration
	}
}

// Validate checks every field is within range.
func (s Settings) Validate() error {
	for _, d := range []int{s.WorkDuration, s.ShortBreakDuration, s.LongBreakDuration} {
		if d < 1 || d > MaxTimeLeft {
			return ErrInvalidSetting
		}
	}
	if s.CyclesBeforeLongBreak < 1 {
		return ErrInvalidSetting
	}
	return nil
}

// SettingKey names one field of Settings for ChangeSetting.
type SettingKey string

const (
	SettingWorkDuration          SettingKey = "workDuration"
	SettingShortBreakDuration    SettingKey = "shortBreakDuration"
	SettingLongBreakDuration     SettingKey = "longBreakDuration"
	SettingCyclesBeforeLongBreak SettingKey = "cyclesBeforeLongBreak"
	SettingSoundEnabled          SettingKey = "soundEnabled"
)

func durationKey(p Phase) SettingKey {
	switch p {
	case ShortBreak:
		return SettingShortBreakDuration
	case LongBreak:
		return SettingLongBreakDuration
	default:
		return SettingWorkDuration
	}
}

// Rejections. The message is the reason shown to the user.
var (
	ErrFocusPointsRequired  = errors.New("add at least one focus point before starting")
	ErrFeedbackRequired     = errors.New("write some feedback on the last session first")
	ErrAlreadyExtended      = errors.New("this focus session was already extended")
	ErrExtensionUnavailable = errors.New("extensions are only offered in the last minute of a running focus session")
	ErrInvalidExtension     = errors.New("extension must be a positive number of seconds")
	ErrRunning              = errors.New("pause the timer first")
	ErrNotWorkPhase         = errors.New("only available during a focus session")
	ErrNotBreakPhase        = errors.New("only available during a break")
	ErrInvalidSetting       = errors.New("invalid setting value")
	ErrEmptyText            = errors.New("text cannot be empty")
	ErrNoSuchItem           = errors.New("no such item")
	ErrSchemaVersion        = errors.New("snapshot schema version mismatch")
)

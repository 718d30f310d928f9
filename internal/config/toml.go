package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sadopc/hyperfocus/internal/session"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Timer   TimerConfig   `toml:"timer"`
	Notify  NotifyConfig  `toml:"notify"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// TimerConfig maps the timer settings. Durations are in minutes.
type TimerConfig struct {
	WorkMinutes       *int  `toml:"work-minutes"`
	ShortBreakMinutes *int  `toml:"short-break-minutes"`
	LongBreakMinutes  *int  `toml:"long-break-minutes"`
	Cycles            *int  `toml:"cycles"`
	Sound             *bool `toml:"sound"`
}

type NotifyConfig struct {
	Bell    *bool `toml:"bell"`
	Desktop *bool `toml:"desktop"`
}

type StorageConfig struct {
	DB *string `toml:"db"`
}

type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Settings overlays the timer section onto base. Values that would make
// the settings invalid are ignored.
func (c FileConfig) Settings(base session.Settings) session.Settings {
	out := base
	minutes := func(dst *int, v *int) {
		if v != nil && *v > 0 && *v*60 <= session.MaxTimeLeft {
			*dst = *v * 60
		}
	}
	minutes(&out.WorkDuration, c.Timer.WorkMinutes)
	minutes(&out.ShortBreakDuration, c.Timer.ShortBreakMinutes)
	minutes(&out.LongBreakDuration, c.Timer.LongBreakMinutes)
	if c.Timer.Cycles != nil && *c.Timer.Cycles > 0 {
		out.CyclesBeforeLongBreak = *c.Timer.Cycles
	}
	if c.Timer.Sound != nil {
		out.SoundEnabled = *c.Timer.Sound
	}
	return out
}

// Bell reports whether the terminal bell is enabled. Defaults to true.
func (c FileConfig) Bell() bool {
	return c.Notify.Bell == nil || *c.Notify.Bell
}

// Desktop reports whether desktop notifications are enabled. Defaults to false.
func (c FileConfig) Desktop() bool {
	return c.Notify.Desktop != nil && *c.Notify.Desktop
}

// DBPath returns the configured database path or the default.
func (c FileConfig) DBPath() string {
	if c.Storage.DB != nil && strings.TrimSpace(*c.Storage.DB) != "" {
		return *c.Storage.DB
	}
	return DefaultDBPath()
}

// LogLevel parses the configured level. Unknown values mean info.
func (c FileConfig) LogLevel() slog.Level {
	if c.Log.Level == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(strings.TrimSpace(*c.Log.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const defaultTemplate = `# hyperfocus configuration

[timer]
work-minutes = 25
short-break-minutes = 5
long-break-minutes = 15
cycles = 4
sound = true

[notify]
bell = true
desktop = false

[storage]
# db = "/path/to/hyperfocus.db"

[log]
level = "info"
`

// EnsureConfigFile writes the default template to path if nothing is there.
func EnsureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultTemplate), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

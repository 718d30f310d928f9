// Command hyperfocus is a focus timer for the terminal with a session
// history and a task backlog.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sadopc/hyperfocus/internal/clock"
	"github.com/sadopc/hyperfocus/internal/config"
	"github.com/sadopc/hyperfocus/internal/cue"
	"github.com/sadopc/hyperfocus/internal/session"
	"github.com/sadopc/hyperfocus/internal/store"
	"github.com/sadopc/hyperfocus/internal/tui"
)

var execCommand = exec.Command

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:          "hyperfocus",
		Short:        "Focus timer with history and backlog",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTimer(cmd, flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/hyperfocus/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "database file (overrides the config)")

	rootCmd.AddCommand(newStatusCmd(flags))
	rootCmd.AddCommand(newHistoryCmd(flags))
	rootCmd.AddCommand(newBacklogCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))

	return rootCmd
}

func (f *rootFlags) resolvedConfigPath() string {
	if f.configPath != "" {
		return f.configPath
	}
	return config.DefaultConfigPath()
}

// env is an opened store with a machine restored from it.
type env struct {
	configPath string
	cfg        config.FileConfig
	logger     *slog.Logger
	store      *store.Store
	machine    *session.Machine
	unpersist  func()
	// readOnly skips the final snapshot save.
	readOnly bool
}

// openEnv loads the config, opens the database and restores the last
// snapshot. Timer keys set in the config file win over stored settings.
func openEnv(flags *rootFlags, logOut io.Writer, cues func(config.FileConfig, *slog.Logger) cue.Emitter) (*env, error) {
	configPath := flags.resolvedConfigPath()
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: cfg.LogLevel()}))

	dbPath := cfg.DBPath()
	if flags.dbPath != "" {
		dbPath = flags.dbPath
	}
	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	st.SetLogger(logger)

	m := session.New(session.Options{
		Clock:    clock.Real(),
		Cues:     cues(cfg, logger),
		Logger:   logger,
		Settings: cfg.Settings(session.DefaultSettings()),
	})
	if snap, ok := st.LoadSnapshot(); ok {
		if err := m.Restore(snap); err != nil {
			logger.Warn("ignoring stored snapshot", "error", err)
		} else if err := m.ApplySettings(cfg.Settings(m.Settings())); err != nil {
			logger.Warn("config settings rejected", "error", err)
		}
	}

	e := &env{
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
		store:      st,
		machine:    m,
		unpersist:  st.Persist(m, logger),
	}
	// A restored running timer may have passed its deadline while the
	// program was not running.
	m.Tick()
	return e, nil
}

func (e *env) Close() {
	e.unpersist()
	if !e.readOnly {
		if err := e.store.SaveSnapshot(e.machine.Snapshot()); err != nil {
			e.logger.Error("final save failed", "error", err)
		}
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("failed to close db", "error", err)
	}
}

func silentCues(config.FileConfig, *slog.Logger) cue.Emitter { return cue.Nop{} }

// terminalCues rings the bell and sends desktop notifications as the
// config allows.
func terminalCues(cfg config.FileConfig, logger *slog.Logger) cue.Emitter {
	var out cue.Multi
	if cfg.Bell() {
		out = append(out, cue.NewBell(os.Stderr, 0, logger))
	}
	if cfg.Desktop() {
		out = append(out, cue.NewDesktop(logger))
	}
	if len(out) == 0 {
		return cue.Nop{}
	}
	return out
}

func runTimer(cmd *cobra.Command, flags *rootFlags) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the timer needs an interactive terminal; try 'hyperfocus status'")
	}

	logFile, err := openLogFile(config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()

	e, err := openEnv(flags, logFile, terminalCues)
	if err != nil {
		return err
	}
	defer e.Close()

	program := tea.NewProgram(tui.NewApp(e.machine), tea.WithAltScreen(), tea.WithReportFocus())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	err = config.Watch(ctx, e.configPath, e.logger, func(c config.FileConfig) {
		program.Send(tui.ConfigReloadedMsg{Config: c})
	})
	if err != nil {
		e.logger.Warn("config reload disabled", "error", err)
	}

	e.logger.Info("timer started", "phase", e.machine.Phase().String())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// openLogFile appends to the log at path. The TUI owns the terminal, so
// logs never go to stderr while it runs.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return f, nil
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flags.resolvedConfigPath()
			if err := config.EnsureConfigFile(path); err != nil {
				return err
			}
			return openEditor(path)
		},
	}
}

func openEditor(path string) error {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := execCommand(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

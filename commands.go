package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/hyperfocus/internal/export"
	"github.com/sadopc/hyperfocus/internal/history"
	"github.com/sadopc/hyperfocus/internal/session"
)

const dateTimeLayout = "2006-01-02 15:04"

// withEnv opens a silent environment for a one-shot command. Logs go to
// stderr.
func withEnv(cmd *cobra.Command, flags *rootFlags, fn func(*env) error) error {
	e, err := openEnv(flags, cmd.ErrOrStderr(), silentCues)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(e)
}

// withReadEnv is withEnv for commands that only report. Nothing is
// written back on close; a phase that completed while nobody was
// watching is still saved by the subscription.
func withReadEnv(cmd *cobra.Command, flags *rootFlags, fn func(*env) error) error {
	return withEnv(cmd, flags, func(e *env) error {
		e.readOnly = true
		return fn(e)
	})
}

// confirm asks a yes/no question on the command's input. Anything but
// y or yes, including end of input, is a no.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// ============================================================
// status
// ============================================================

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withReadEnv(cmd, flags, func(e *env) error {
				return printStatus(cmd.OutOrStdout(), e.machine, time.Now())
			})
		},
	}
}

func printStatus(w io.Writer, m *session.Machine, now time.Time) error {
	snap := m.Snapshot()
	s := snap.Session

	state := "paused"
	switch {
	case s.IsRunning:
		state = "running"
	case m.Starting():
		state = "starting"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %02d:%02d  %s\n", s.Phase, s.TimeLeft/60, s.TimeLeft%60, state)
	fmt.Fprintf(&b, "Cycle:        %d (long break every %d)\n", s.CycleCount, snap.Settings.CyclesBeforeLongBreak)
	if s.IsHyperfocusActive {
		b.WriteString("Hyperfocus:   active\n")
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	fmt.Fprintf(&b, "Today:        %s\n", formatMinutes(m.FocusedSince(midnight)))

	if s.Phase == session.Work {
		writeList(&b, "Focus points", snap.FocusPoints)
	} else {
		if snap.Feedback != "" {
			fmt.Fprintf(&b, "Feedback:     %s\n", snap.Feedback)
		}
		writeList(&b, "Next plans", snap.NextPlans)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

func formatMinutes(secs int) string {
	return fmt.Sprintf("%dh%02dm", secs/3600, secs%3600/60)
}

// ============================================================
// history
// ============================================================

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, log and export focus sessions",
	}
	cmd.AddCommand(newHistoryListCmd(flags))
	cmd.AddCommand(newHistoryAddCmd(flags))
	cmd.AddCommand(newHistoryDeleteCmd(flags))
	cmd.AddCommand(newHistoryExportCmd(flags))
	return cmd
}

func newHistoryListCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withReadEnv(cmd, flags, func(e *env) error {
				entries := e.machine.History()
				if limit > 0 && len(entries) > limit {
					entries = entries[:limit]
				}
				return printHistory(cmd.OutOrStdout(), entries)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "show at most N sessions (0 for all)")
	return cmd
}

func printHistory(w io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No sessions yet.")
		return err
	}
	var b strings.Builder
	for _, e := range entries {
		start := e.StartTime.Local()
		fmt.Fprintf(&b, "%s  %s  %-8s %s\n",
			e.ID[:min(8, len(e.ID))],
			start.Format(dateTimeLayout),
			time.Duration(e.Duration)*time.Second,
			strings.Join(e.FocusPoints, "; "),
		)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func newHistoryAddCmd(flags *rootFlags) *cobra.Command {
	var (
		start, end, feedback string
		points, plans        []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a session that was not timed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			startTime, err := time.ParseInLocation(dateTimeLayout, start, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --start value: %w", err)
			}
			endTime, err := time.ParseInLocation(dateTimeLayout, end, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --end value: %w", err)
			}
			return withEnv(cmd, flags, func(e *env) error {
				entry, err := e.machine.AddManualHistory(history.Manual{
					StartTime:      startTime,
					EndTime:        endTime,
					FocusPoints:    points,
					FeedbackNotes:  feedback,
					NextFocusPlans: plans,
				})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%s)\n", entry.ID, time.Duration(entry.Duration)*time.Second)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start time (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "end time (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringArrayVar(&points, "focus", nil, "focus point (repeatable)")
	cmd.Flags().StringVar(&feedback, "feedback", "", "feedback notes")
	cmd.Flags().StringArrayVar(&plans, "next", nil, "next focus plan (repeatable)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newHistoryDeleteCmd(flags *rootFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session by id or id prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(e *env) error {
				id, err := matchID(args[0], historyIDs(e.machine.History()))
				if err != nil {
					return err
				}
				if !yes {
					ok, err := confirm(cmd, fmt.Sprintf("Delete session %s?", id[:min(8, len(id))]))
					if err != nil {
						return err
					}
					if !ok {
						_, err := fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
						return err
					}
				}
				if err := e.machine.DeleteHistory(id); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
				return err
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

func historyIDs(entries []history.Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func newHistoryExportCmd(flags *rootFlags) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export sessions to CSV, JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := resolveFormat(format, out)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("hyperfocus-export-%s.%s", time.Now().Format("2006-01-02"), f)
			}
			return withReadEnv(cmd, flags, func(e *env) error {
				entries := e.machine.History()
				if err := export.Write(f, entries, out); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sessions to %s\n", len(entries), out)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "csv, json or yaml (default: from --out, else csv)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func resolveFormat(format, out string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	if out != "" {
		return export.FormatFromPath(out)
	}
	return export.CSV, nil
}

// ============================================================
// backlog
// ============================================================

func newBacklogCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backlog",
		Short: "Manage tasks waiting for a focus session",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <text>",
		Short: "Queue a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(e *env) error {
				task, err := e.machine.AddTask(strings.Join(args, " "))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", task.ID)
				return err
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List queued tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withReadEnv(cmd, flags, func(e *env) error {
				w := cmd.OutOrStdout()
				tasks := e.machine.Backlog()
				if len(tasks) == 0 {
					_, err := fmt.Fprintln(w, "Backlog is empty.")
					return err
				}
				for i, t := range tasks {
					if _, err := fmt.Fprintf(w, "%2d. %s\n", i+1, t.Text); err != nil {
						return fmt.Errorf("failed to write output: %w", err)
					}
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <number|id>",
		Short: "Remove a task by list number or id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(e *env) error {
				tasks := e.machine.Backlog()
				var id string
				if n, err := strconv.Atoi(args[0]); err == nil {
					if n < 1 || n > len(tasks) {
						return fmt.Errorf("no task number %d", n)
					}
					id = tasks[n-1].ID
				} else {
					ids := make([]string, len(tasks))
					for i, t := range tasks {
						ids[i] = t.ID
					}
					if id, err = matchID(args[0], ids); err != nil {
						return err
					}
				}
				if err := e.machine.RemoveTask(id); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Removed")
				return err
			})
		},
	})
	return cmd
}

// matchID resolves a full id or a unique prefix of one.
func matchID(prefix string, ids []string) (string, error) {
	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no match for %q", prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous (%d matches)", prefix, len(found))
	}
}

package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/sadopc/hyperfocus/internal/config"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewBacklog
	viewHistory
	viewReports
	viewSettings
)

var viewNames = []string{"Timer", "Backlog", "History", "Reports", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// ConfigReloadedMsg carries a config file that changed on disk. Its
// timer section is overlaid on the current settings.
type ConfigReloadedMsg struct {
	Config config.FileConfig
}

// --- Helpers ---

// reportErr turns a rejected command into a status line.
func reportErr(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return func() tea.Msg {
		return statusMsg{text: err.Error(), isError: true}
	}
}

func reportStatus(text string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text}
	}
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

// formatClock renders a countdown as MM:SS. Minutes may exceed 99 after
// an extension.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// parseClock accepts "MM" or "MM:SS".
func parseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	mins, secs, hasSecs := strings.Cut(s, ":")
	m, err := strconv.Atoi(mins)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	total := m * 60
	if hasSecs {
		sec, err := strconv.Atoi(secs)
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		total += sec
	}
	return total, nil
}

// truncate cuts s to at most w terminal cells.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= w {
		return s
	}
	return runewidth.Truncate(s, w, "…")
}

// padRight pads s with spaces to w terminal cells.
func padRight(s string, w int) string {
	return runewidth.FillRight(truncate(s, w), w)
}

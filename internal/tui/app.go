package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hyperfocus/internal/export"
	"github.com/sadopc/hyperfocus/internal/session"
)

// tickInterval is how often the countdown is reconciled with the clock.
// It is finer than a second so the focus-start beats are visible.
const tickInterval = 250 * time.Millisecond

var exportFormats = []export.Format{export.CSV, export.JSON, export.YAML}

// App is the root Bubble Tea model.
type App struct {
	machine *session.Machine
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string
	lastPhase     session.Phase

	timer    timerModel
	backlog  backlogModel
	history  historyModel
	reports  reportsModel
	settings settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(m *session.Machine) App {
	h := help.New()
	h.ShowAll = false

	home, _ := os.UserHomeDir()
	return App{
		machine:    m,
		activeView: viewTimer,
		exportDir:  home,
		lastPhase:  m.Phase(),
		timer:      newTimerModel(m),
		backlog:    newBacklogModel(m),
		history:    newHistoryModel(m),
		reports:    newReportsModel(m),
		settings:   newSettingsModel(m),
		help:       h,
	}
}

// WithExportDir sets where the export picker writes files.
func (a App) WithExportDir(dir string) App {
	a.exportDir = dir
	return a
}

func (a App) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.route(msg)
	a = model.(App)
	if p := a.machine.Phase(); p != a.lastPhase {
		a.lastPhase = p
		a.setStatus(phaseMessage(p), false)
		if a.activeView == viewReports {
			a.reports.refresh()
		}
	}
	return a, cmd
}

func (a App) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.backlog.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.reports.refresh()
		return a, nil

	case tea.FocusMsg:
		a.machine.SetVisible(true)
		return a, nil

	case tea.BlurMsg:
		a.machine.SetVisible(false)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewTimer), nil
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewBacklog), nil
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewHistory), nil
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewReports), nil
		case key.Matches(msg, keys.Tab5):
			return a.switchView(viewSettings), nil
		case key.Matches(msg, keys.Tab):
			// Reports uses tab for its own mode switch.
			if a.activeView != viewReports {
				return a.switchView((a.activeView + 1) % viewState(len(viewNames))), nil
			}
		}

	case tickMsg:
		a.machine.Tick()
		return a, tickCmd()

	case ConfigReloadedMsg:
		next := msg.Config.Settings(a.machine.Settings())
		if err := a.machine.ApplySettings(next); err != nil {
			a.setStatus("Config rejected: "+err.Error(), true)
			return a, nil
		}
		a.setStatus("Config reloaded", false)
		return a, nil

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusErr = isError
}

func phaseMessage(p session.Phase) string {
	switch p {
	case session.ShortBreak:
		return "Break time!"
	case session.LongBreak:
		return "Long break, well earned!"
	default:
		return "Back to focus"
	}
}

func (a App) switchView(v viewState) App {
	a.activeView = v
	if v == viewReports {
		a.reports.refresh()
	}
	return a
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewBacklog:
		a.backlog, cmd = a.backlog.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTimer:
		return a.timer.capturing()
	case viewBacklog:
		return a.backlog.capturing()
	case viewHistory:
		return a.history.capturing()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timer.view()
	case viewBacklog:
		content = a.backlog.view()
	case viewHistory:
		content = a.history.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("hyperfocus")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Countdown indicator outside the timer view
	timerInfo := ""
	if a.activeView != viewTimer {
		s := a.machine.Snapshot().Session
		clock := s.Phase.String() + " " + formatClock(s.TimeLeft)
		switch {
		case s.IsRunning:
			timerInfo = successStyle.Render(" ● " + clock)
		case a.machine.Starting():
			timerInfo = accentStyle.Render(" ◐ " + clock)
		default:
			timerInfo = warningStyle.Render(" ⏸ " + clock)
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export History")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(string(f))))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport copies the ledger on the update goroutine and writes it in
// the background.
func (a App) doExport(format export.Format) tea.Cmd {
	entries := a.machine.History()
	dir := a.exportDir
	return func() tea.Msg {
		dateStr := time.Now().Format("2006-01-02")
		path := filepath.Join(dir, fmt.Sprintf("hyperfocus-export-%s.%s", dateStr, format))
		if err := export.Write(format, entries, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

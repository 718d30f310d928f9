package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hyperfocus/internal/backlog"
	"github.com/sadopc/hyperfocus/internal/session"
)

type backlogModel struct {
	machine *session.Machine
	width   int
	height  int

	cursor     int
	confirming bool // waiting for y before clearing

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"
	formText   *string
	editingID  string
}

func newBacklogModel(m *session.Machine) backlogModel {
	text := ""
	return backlogModel{machine: m, formText: &text}
}

func (b *backlogModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

func (b backlogModel) capturing() bool {
	return (b.formActive && b.form != nil) || b.confirming
}

func (b backlogModel) update(msg tea.Msg) (backlogModel, tea.Cmd) {
	if b.formActive && b.form != nil {
		return b.updateForm(msg)
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}
	if b.confirming {
		b.confirming = false
		if key.Matches(km, keys.Confirm) {
			b.machine.ClearBacklog()
			b.cursor = 0
			return b, reportStatus("Backlog cleared")
		}
		return b, nil
	}

	tasks := b.machine.Backlog()
	switch {
	case key.Matches(km, keys.Up):
		if b.cursor > 0 {
			b.cursor--
		}
	case key.Matches(km, keys.Down):
		if b.cursor < len(tasks)-1 {
			b.cursor++
		}
	case key.Matches(km, keys.New):
		return b.showForm("new", backlog.Task{})
	case key.Matches(km, keys.Enter):
		if b.cursor < len(tasks) {
			return b.showForm("edit", tasks[b.cursor])
		}
	case key.Matches(km, keys.Delete):
		if b.cursor < len(tasks) {
			err := b.machine.RemoveTask(tasks[b.cursor].ID)
			return b.clampCursor(), reportErr(err)
		}
	case key.Matches(km, keys.Promote):
		if b.cursor < len(tasks) {
			if err := b.machine.PromoteTask(tasks[b.cursor].ID); err != nil {
				return b, reportErr(err)
			}
			return b.clampCursor(), reportStatus("Added to focus points")
		}
	case key.Matches(km, keys.Clear):
		if len(tasks) > 0 {
			b.confirming = true
		}
	}
	return b, nil
}

func (b backlogModel) clampCursor() backlogModel {
	if n := len(b.machine.Backlog()); b.cursor >= n {
		b.cursor = max(0, n-1)
	}
	return b
}

func (b backlogModel) showForm(formType string, task backlog.Task) (backlogModel, tea.Cmd) {
	*b.formText = task.Text
	b.formType = formType
	b.editingID = task.ID

	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(b.formText),
		),
	).WithShowHelp(true).WithShowErrors(true)

	b.formActive = true
	return b, b.form.Init()
}

func (b backlogModel) updateForm(msg tea.Msg) (backlogModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			b.formActive = false
			b.form = nil
			return b, nil
		}
	}

	form, cmd := b.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		b.form = f
	}

	if b.form.State == huh.StateCompleted {
		b.formActive = false
		b.form = nil
		switch b.formType {
		case "new":
			if _, err := b.machine.AddTask(*b.formText); err != nil {
				return b, reportErr(err)
			}
			b.cursor = len(b.machine.Backlog()) - 1
		case "edit":
			return b, reportErr(b.machine.UpdateTask(b.editingID, *b.formText))
		}
		return b, nil
	}

	return b, cmd
}

func (b backlogModel) view() string {
	w := b.width - 4

	if b.formActive && b.form != nil {
		title := titleStyle.Render("New Task")
		if b.formType == "edit" {
			title = titleStyle.Render("Edit Task")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", b.form.View())
		return panelStyle.Width(w).Render(content)
	}

	tasks := b.machine.Backlog()
	title := titleStyle.Render(fmt.Sprintf("Backlog (%d)", len(tasks)))

	if len(tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("Nothing queued. Press n to add a task."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, task := range tasks {
		cursor := "  "
		style := normalItemStyle
		if i == b.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+truncate(task.Text, w-8)))
	}

	rows = append(rows, "")
	if b.confirming {
		rows = append(rows, warningStyle.Render("  Clear the whole backlog? y: yes  any key: cancel"))
	} else {
		rows = append(rows, mutedStyle.Render("  n: new  enter: edit  d: delete  p: promote  D: clear"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// Package backlog holds tasks waiting to be promoted into a focus session.
package backlog

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyText = errors.New("task text cannot be empty")
	ErrNotFound  = errors.New("task not found")
)

// Task is one pending backlog item.
type Task struct {
	ID   string `cbor:"id" json:"id" yaml:"id"`
	Text string `cbor:"text" json:"text" yaml:"text"`
}

// List is an ordered backlog. New tasks go to the end.
type List struct {
	tasks []Task
}

// NewList returns a list seeded with tasks in the given order.
func NewList(tasks []Task) *List {
	return &List{tasks: append([]Task(nil), tasks...)}
}

// Tasks returns a copy of the backlog.
func (l *List) Tasks() []Task {
	return append([]Task(nil), l.tasks...)
}

func (l *List) Len() int { return len(l.tasks) }

// Add appends a task with trimmed text.
func (l *List) Add(text string) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrEmptyText
	}
	t := Task{ID: uuid.Must(uuid.NewV7()).String(), Text: text}
	l.tasks = append(l.tasks, t)
	return t, nil
}

// Update replaces a task's text.
func (l *List) Update(id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	i := l.index(id)
	if i < 0 {
		return ErrNotFound
	}
	l.tasks[i].Text = text
	return nil
}

// Remove deletes a task. Reports whether it existed.
func (l *List) Remove(id string) bool {
	_, ok := l.Take(id)
	return ok
}

// Take removes a task and returns it.
func (l *List) Take(id string) (Task, bool) {
	i := l.index(id)
	if i < 0 {
		return Task{}, false
	}
	t := l.tasks[i]
	l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)
	return t, true
}

// Clear empties the backlog.
func (l *List) Clear() {
	l.tasks = nil
}

func (l *List) index(id string) int {
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Package task defines the task tree domain model shared by the parser,
// exporter, and tree engines.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Task is a single node in a list's task tree. Header nodes mark sections and
// are excluded from completion and due-date semantics.
type Task struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Level       int        `json:"level"`
	IsHeader    bool       `json:"isHeader,omitempty"`
	Children    []Task     `json:"children,omitempty"`
	DueDate     string     `json:"dueDate,omitempty"`
}

// NewID returns a fresh opaque task identifier.
func NewID() string {
	return uuid.NewString()
}

// New creates an incomplete leaf task with a fresh id.
func New(text string) Task {
	return Task{ID: NewID(), Text: text}
}

// NewHeader creates a section header node with a fresh id.
func NewHeader(text string) Task {
	return Task{ID: NewID(), Text: text, IsHeader: true}
}

// HasChildren reports whether the task has at least one child.
func (t *Task) HasChildren() bool {
	return len(t.Children) > 0
}

// SetCompleted sets the completion state and keeps CompletedAt consistent:
// it is stamped on a false->true transition and cleared when incomplete.
func (t *Task) SetCompleted(completed bool, at time.Time) {
	switch {
	case completed && !t.Completed:
		stamp := at
		t.CompletedAt = &stamp
	case !completed:
		t.CompletedAt = nil
	}
	t.Completed = completed
}

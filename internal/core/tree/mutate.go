// Package tree implements structural operations over task trees: merging
// parsed fragments, completion cascade, reparenting, and filtering.
//
// Every function returns a new tree and leaves its input untouched. Unchanged
// subtrees are shared between input and output, so callers must treat trees
// as immutable values. Lookups by an unknown id are silent no-ops that return
// the input unchanged.
package tree

import (
	"errors"
	"slices"
	"time"

	"github.com/colonyops/marksync/internal/core/task"
)

// ErrNotFound is returned by signalling variants when an id does not exist.
var ErrNotFound = errors.New("task not found")

// updateNode copies the path from the root to the node with id and applies fn
// to the copy. fn must replace, not modify, the node's Children slice.
func updateNode(tasks []task.Task, id string, fn func(t *task.Task)) ([]task.Task, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			out := slices.Clone(tasks)
			fn(&out[i])
			return out, true
		}
		if kids, ok := updateNode(tasks[i].Children, id, fn); ok {
			out := slices.Clone(tasks)
			out[i].Children = kids
			return out, true
		}
	}
	return tasks, false
}

// removeNode drops the node with id and returns it alongside the new tree.
func removeNode(tasks []task.Task, id string) ([]task.Task, task.Task, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			out := slices.Delete(slices.Clone(tasks), i, i+1)
			return out, tasks[i], true
		}
		if kids, removed, ok := removeNode(tasks[i].Children, id); ok {
			out := slices.Clone(tasks)
			out[i].Children = kids
			return out, removed, true
		}
	}
	return tasks, task.Task{}, false
}

// Toggle flips completion on the node with id and cascades the new state to
// every descendant. Header nodes cannot be completed; toggling one is a no-op.
func Toggle(tasks []task.Task, id string, now time.Time) []task.Task {
	out, _ := updateNode(tasks, id, func(t *task.Task) {
		if t.IsHeader {
			return
		}
		t.SetCompleted(!t.Completed, now)
		t.Children = cascade(t.Children, t.Completed, t.CompletedAt)
	})
	return out
}

// cascade copies completed and completedAt onto every non-header descendant.
func cascade(tasks []task.Task, completed bool, at *time.Time) []task.Task {
	if tasks == nil {
		return nil
	}
	out := make([]task.Task, len(tasks))
	for i, t := range tasks {
		if !t.IsHeader {
			t.Completed = completed
			t.CompletedAt = nil
			if completed && at != nil {
				stamp := *at
				t.CompletedAt = &stamp
			}
		}
		t.Children = cascade(t.Children, completed, at)
		out[i] = t
	}
	return out
}

// UpdateText replaces the text of the node with id.
func UpdateText(tasks []task.Task, id, text string) []task.Task {
	out, _ := updateNode(tasks, id, func(t *task.Task) {
		t.Text = text
	})
	return out
}

// SetDueDate sets or clears (empty date) the due date of a non-header node.
func SetDueDate(tasks []task.Task, id, date string) []task.Task {
	out, _ := updateNode(tasks, id, func(t *task.Task) {
		if !t.IsHeader {
			t.DueDate = date
		}
	})
	return out
}

// Delete removes the node with id together with its subtree.
func Delete(tasks []task.Task, id string) []task.Task {
	out, _, _ := removeNode(tasks, id)
	return out
}

// AddTask appends a new root-level task and returns its id.
func AddTask(tasks []task.Task, text string) ([]task.Task, string) {
	t := task.New(text)
	return append(slices.Clip(tasks), t), t.ID
}

// AddSection appends a new root-level header and returns its id.
func AddSection(tasks []task.Task, text string) ([]task.Task, string) {
	h := task.NewHeader(text)
	return append(slices.Clip(tasks), h), h.ID
}

// AddSubtask appends a new leaf to the children of parentID and returns its
// id. The returned id is empty when the parent does not exist.
func AddSubtask(tasks []task.Task, parentID, text string) ([]task.Task, string) {
	child := task.New(text)
	out, ok := updateNode(tasks, parentID, func(t *task.Task) {
		child.Level = t.Level + 1
		t.Children = append(slices.Clip(t.Children), child)
	})
	if !ok {
		return tasks, ""
	}
	return out, child.ID
}

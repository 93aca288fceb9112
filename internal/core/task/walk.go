package task

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTree is wrapped by Validate when a tree breaks a structural invariant.
var ErrInvalidTree = errors.New("invalid task tree")

// Clone returns a structural deep copy of t.
func Clone(t Task) Task {
	out := t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		out.CompletedAt = &at
	}
	if t.Children != nil {
		out.Children = CloneAll(t.Children)
	}
	return out
}

// CloneAll deep copies a forest. A nil input yields nil.
func CloneAll(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = Clone(tasks[i])
	}
	return out
}

// Walk visits every node in pre-order. The parent is nil for roots.
// Returning false from fn stops the walk.
func Walk(tasks []Task, fn func(t *Task, parent *Task) bool) {
	walk(tasks, nil, fn)
}

func walk(tasks []Task, parent *Task, fn func(t *Task, parent *Task) bool) bool {
	for i := range tasks {
		if !fn(&tasks[i], parent) {
			return false
		}
		if !walk(tasks[i].Children, &tasks[i], fn) {
			return false
		}
	}
	return true
}

// Find returns a copy of the node with the given id.
func Find(tasks []Task, id string) (Task, bool) {
	var (
		found Task
		ok    bool
	)
	Walk(tasks, func(t *Task, _ *Task) bool {
		if t.ID == id {
			found, ok = Clone(*t), true
			return false
		}
		return true
	})
	return found, ok
}

// Contains reports whether a node with the given id exists anywhere in tasks.
func Contains(tasks []Task, id string) bool {
	_, ok := Find(tasks, id)
	return ok
}

// Relevel returns a copy of tasks with roots at base and every descendant at
// its parent's level + 1. Relative depth inside each subtree is preserved.
func Relevel(tasks []Task, base int) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		t.Level = base
		t.Children = Relevel(t.Children, base+1)
		out[i] = t
	}
	return out
}

// Flatten returns every node in pre-order with children stripped.
func Flatten(tasks []Task) []Task {
	var out []Task
	Walk(tasks, func(t *Task, _ *Task) bool {
		flat := Clone(*t)
		flat.Children = nil
		out = append(out, flat)
		return true
	})
	return out
}

// Count returns completed and total counts over non-header nodes.
func Count(tasks []Task) (completed, total int) {
	Walk(tasks, func(t *Task, _ *Task) bool {
		if t.IsHeader {
			return true
		}
		total++
		if t.Completed {
			completed++
		}
		return true
	})
	return completed, total
}

// Validate checks that every level matches its ancestry depth and that ids
// are unique and non-empty.
func Validate(tasks []Task) error {
	seen := make(map[string]bool)
	var err error
	Walk(tasks, func(t *Task, parent *Task) bool {
		want := 0
		if parent != nil {
			want = parent.Level + 1
		}
		switch {
		case t.Level != want:
			err = fmt.Errorf("%w: task %q has level %d, want %d", ErrInvalidTree, t.ID, t.Level, want)
		case t.ID == "":
			err = fmt.Errorf("%w: task %q has no id", ErrInvalidTree, t.Text)
		case seen[t.ID]:
			err = fmt.Errorf("%w: duplicate id %q", ErrInvalidTree, t.ID)
		}
		seen[t.ID] = true
		return err == nil
	})
	return err
}

// Equal reports whether two forests have the same shape and node fields.
// A nil and an empty Children slice compare equal.
func Equal(a, b []Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := &a[i], &b[i]
		if x.ID != y.ID || x.Text != y.Text || x.Completed != y.Completed ||
			x.Level != y.Level || x.IsHeader != y.IsHeader || x.DueDate != y.DueDate {
			return false
		}
		if !sameTime(x.CompletedAt, y.CompletedAt) {
			return false
		}
		if !Equal(x.Children, y.Children) {
			return false
		}
	}
	return true
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

package tree

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/colonyops/marksync/internal/core/task"
)

// prune keeps nodes that match or have a matching descendant. A matching
// node whose descendants do not match keeps its original children.
func prune(tasks []task.Task, match func(t *task.Task) bool) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		kids := prune(t.Children, match)
		switch {
		case len(kids) > 0:
			t.Children = kids
			out = append(out, t)
		case match(&t):
			out = append(out, t)
		}
	}
	return out
}

// Search keeps nodes whose text contains query, ignoring case, plus their
// ancestors. An empty query returns tasks unchanged.
func Search(tasks []task.Task, query string) []task.Task {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return tasks
	}
	return prune(tasks, func(t *task.Task) bool {
		return strings.Contains(fold.String(t.Text), q)
	})
}

// HideCompleted drops completed tasks and any header left without children.
// Applying it twice gives the same result as applying it once.
func HideCompleted(tasks []task.Task) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if !t.IsHeader && t.Completed {
			continue
		}
		kids := HideCompleted(t.Children)
		if t.IsHeader && len(kids) == 0 {
			continue
		}
		t.Children = kids
		out = append(out, t)
	}
	return out
}

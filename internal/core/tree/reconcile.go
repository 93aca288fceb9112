package tree

import (
	"time"

	"github.com/colonyops/marksync/internal/core/task"
)

type matchKey struct {
	header bool
	level  int
	text   string
}

type textKey struct {
	header bool
	text   string
}

// Reconcile carries identity from prev onto a freshly parsed next tree so ids
// survive markdown edits. Nodes are matched in document order on
// (header, level, text) first and on (header, text) second; each previous
// node is used at most once. Matched completed nodes keep their completedAt,
// newly completed nodes are stamped with now.
func Reconcile(prev, next []task.Task, now time.Time) []task.Task {
	var (
		byExact = make(map[matchKey][]*task.Task)
		byText  = make(map[textKey][]*task.Task)
		used    = make(map[string]bool)
	)

	task.Walk(prev, func(t *task.Task, _ *task.Task) bool {
		byExact[matchKey{t.IsHeader, t.Level, t.Text}] = append(byExact[matchKey{t.IsHeader, t.Level, t.Text}], t)
		byText[textKey{t.IsHeader, t.Text}] = append(byText[textKey{t.IsHeader, t.Text}], t)
		return true
	})

	take := func(candidates []*task.Task) *task.Task {
		for _, c := range candidates {
			if !used[c.ID] {
				used[c.ID] = true
				return c
			}
		}
		return nil
	}

	out := task.CloneAll(next)
	var unmatched []*task.Task

	task.Walk(out, func(t *task.Task, _ *task.Task) bool {
		if match := take(byExact[matchKey{t.IsHeader, t.Level, t.Text}]); match != nil {
			adopt(t, match, now)
		} else {
			unmatched = append(unmatched, t)
		}
		return true
	})

	for _, t := range unmatched {
		match := take(byText[textKey{t.IsHeader, t.Text}])
		adopt(t, match, now)
	}

	return out
}

func adopt(t, match *task.Task, now time.Time) {
	if match != nil {
		t.ID = match.ID
	}
	if !t.Completed || t.IsHeader {
		t.CompletedAt = nil
		return
	}
	if match != nil && match.Completed && match.CompletedAt != nil {
		at := *match.CompletedAt
		t.CompletedAt = &at
		return
	}
	stamp := now
	t.CompletedAt = &stamp
}

package tree

import (
	"fmt"
	"slices"

	"github.com/colonyops/marksync/internal/core/task"
)

// Merge appends incoming under parentID, or after the existing roots when
// parentID is empty. Incoming roots are releveled to their attach level and
// keep their internal relative depth. Incoming nodes whose id is already taken
// get a fresh one, so merging the same fragment twice keeps ids unique. An
// unknown parentID leaves existing unchanged; use MergeInto to detect that case.
func Merge(existing, incoming []task.Task, parentID string) []task.Task {
	out, _ := MergeInto(existing, incoming, parentID)
	return out
}

// MergeInto is Merge with an explicit ErrNotFound when parentID does not exist.
func MergeInto(existing, incoming []task.Task, parentID string) ([]task.Task, error) {
	if len(incoming) == 0 {
		return existing, nil
	}
	incoming = rekey(existing, incoming)

	if parentID == "" {
		roots := task.Relevel(incoming, 0)
		return append(slices.Clip(existing), roots...), nil
	}

	out, ok := updateNode(existing, parentID, func(t *task.Task) {
		kids := task.Relevel(incoming, t.Level+1)
		t.Children = append(slices.Clip(t.Children), kids...)
	})
	if !ok {
		return existing, fmt.Errorf("merge under %q: %w", parentID, ErrNotFound)
	}
	return out, nil
}

// rekey returns a copy of incoming where every id already used in existing,
// or earlier in incoming, is replaced by a fresh one.
func rekey(existing, incoming []task.Task) []task.Task {
	taken := make(map[string]bool)
	task.Walk(existing, func(t *task.Task, _ *task.Task) bool {
		taken[t.ID] = true
		return true
	})

	out := task.CloneAll(incoming)
	task.Walk(out, func(t *task.Task, _ *task.Task) bool {
		if t.ID == "" || taken[t.ID] {
			t.ID = task.NewID()
		}
		taken[t.ID] = true
		return true
	})
	return out
}

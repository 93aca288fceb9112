package tree

import (
	"fmt"
	"slices"

	"github.com/colonyops/marksync/internal/core/task"
)

// Position says where a dragged node lands relative to its drop target.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionInside Position = "inside"
)

// IsValid reports whether p is a known position.
func (p Position) IsValid() bool {
	switch p {
	case PositionBefore, PositionAfter, PositionInside:
		return true
	default:
		return false
	}
}

// ParsePosition converts a string into a Position.
func ParsePosition(s string) (Position, error) {
	p := Position(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid position %q: must be one of before, after, inside", s)
	}
	return p, nil
}

// Move detaches the dragged subtree and reattaches it relative to targetID.
// Before and after insert it as a sibling of the target; inside appends it as
// the target's last child. Levels of the moved subtree are recomputed from the
// attach point.
//
// The input is returned unchanged when either id is missing, when the target
// lies inside the dragged subtree (including self-drop), when pos is not a
// valid position, or when the new place could not be written as markdown and
// read back the same way (see readsBack).
func Move(tasks []task.Task, draggedID, targetID string, pos Position) []task.Task {
	if !pos.IsValid() {
		return tasks
	}

	rest, dragged, ok := removeNode(tasks, draggedID)
	if !ok {
		return tasks
	}

	var out []task.Task
	if pos == PositionInside {
		out, ok = updateNode(rest, targetID, func(t *task.Task) {
			moved := task.Relevel([]task.Task{dragged}, t.Level+1)
			t.Children = append(slices.Clip(t.Children), moved...)
		})
	} else {
		out, ok = insertSibling(rest, targetID, dragged, pos == PositionAfter)
	}

	// a target that vanished with the dragged subtree would lose the node
	if !ok || !readsBack(out, draggedID) {
		return tasks
	}
	return out
}

// maxHeaderLevel is the level written as "######", the deepest markdown header.
const maxHeaderLevel = 3

// readsBack reports whether the node id sits where the markdown parser would
// put it again. A bullet following a header line is read as that header's
// child, so a header may only sit under the root or another header, after all
// of its task siblings, and a task may not follow a header sibling.
func readsBack(tasks []task.Task, id string) bool {
	var (
		parent *task.Task
		found  bool
	)
	task.Walk(tasks, func(t *task.Task, p *task.Task) bool {
		if t.ID == id {
			parent, found = p, true
			return false
		}
		return true
	})
	if !found {
		return false
	}

	siblings := tasks
	if parent != nil {
		siblings = parent.Children
	}
	i := slices.IndexFunc(siblings, func(t task.Task) bool { return t.ID == id })
	isHeader := func(t task.Task) bool { return t.IsHeader }

	if !siblings[i].IsHeader {
		return !slices.ContainsFunc(siblings[:i], isHeader)
	}
	if parent != nil && !parent.IsHeader {
		return false
	}
	if slices.ContainsFunc(siblings[i+1:], func(t task.Task) bool { return !t.IsHeader }) {
		return false
	}

	deep := false
	task.Walk(siblings[i:i+1], func(t *task.Task, _ *task.Task) bool {
		deep = t.IsHeader && t.Level > maxHeaderLevel
		return !deep
	})
	return !deep
}

func insertSibling(tasks []task.Task, targetID string, node task.Task, after bool) ([]task.Task, bool) {
	for i := range tasks {
		if tasks[i].ID == targetID {
			at := i
			if after {
				at = i + 1
			}
			moved := task.Relevel([]task.Task{node}, tasks[i].Level)
			return slices.Insert(slices.Clone(tasks), at, moved...), true
		}
		if kids, ok := insertSibling(tasks[i].Children, targetID, node, after); ok {
			out := slices.Clone(tasks)
			out[i].Children = kids
			return out, true
		}
	}
	return tasks, false
}

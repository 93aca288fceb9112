package listsync

import (
	"time"

	"github.com/colonyops/marksync/internal/core/task"
	"github.com/colonyops/marksync/internal/core/tree"
)

// Mutation is a tree edit applied through Controller.Apply. Destructive
// mutations save an undo snapshot before they run.
type Mutation struct {
	op          string
	destructive bool
	fn          func(tasks []task.Task, now time.Time) ([]task.Task, string)
}

// Op names the mutation for logs, events, and undo entries.
func (m Mutation) Op() string { return m.op }

// Destructive reports whether the mutation records an undo snapshot.
func (m Mutation) Destructive() bool { return m.destructive }

// Toggle flips completion of id and cascades it to descendants.
func Toggle(id string) Mutation {
	return Mutation{
		op:          "toggle",
		destructive: true,
		fn: func(tasks []task.Task, now time.Time) ([]task.Task, string) {
			return tree.Toggle(tasks, id, now), id
		},
	}
}

// UpdateText replaces the text of id.
func UpdateText(id, text string) Mutation {
	return Mutation{
		op: "update_text",
		fn: func(tasks []task.Task, _ time.Time) ([]task.Task, string) {
			return tree.UpdateText(tasks, id, text), id
		},
	}
}

// SetDueDate sets or clears (empty date) the due date of id.
func SetDueDate(id, date string) Mutation {
	return Mutation{
		op: "set_due_date",
		fn: func(tasks []task.Task, _ time.Time) ([]task.Task, string) {
			return tree.SetDueDate(tasks, id, date), id
		},
	}
}

// Delete removes id and its subtree.
func Delete(id string) Mutation {
	return Mutation{
		op:          "delete",
		destructive: true,
		fn: func(tasks []task.Task, _ time.Time) ([]task.Task, string) {
			return tree.Delete(tasks, id), id
		},
	}
}

// AddTask appends a root task. Apply returns the new task's id.
func AddTask(text string) Mutation {
	return Mutation{
		op: "add_task",
		fn: func(tasks []task.Task, _ time.Time) ([]task.Task, string) {
			return tree.AddTask(tasks, text)
		},
	}
}

// AddSection appends a root header. Apply returns the new header's id.
func AddSection(text string) Mutation {
	return Mutation{
		op: "add_section",
		fn: func(tasks []task.Task, _ time.Time) ([]task.Task, string) {
			return tree.AddSection(tasks, text)
		},
	}
}

// AddSubtask appends a child under parentID. Apply returns the new id, or an
// empty id when the parent does not exist.
func AddSubtask(parentID, text string) Mutation {
	return Mutation{
		op: "add_subtask",
		fn: func(tasks []task.Task, _ time.Time) ([]task.Task, string) {
			return tree.AddSubtask(tasks, parentID, text)
		},
	}
}

// Move reattaches draggedID relative to targetID.
func Move(draggedID, targetID string, pos tree.Position) Mutation {
	return Mutation{
		op:          "move",
		destructive: true,
		fn: func(tasks []task.Task, _ time.Time) ([]task.Task, string) {
			return tree.Move(tasks, draggedID, targetID, pos), draggedID
		},
	}
}

// Merge grafts incoming under parentID, or appends it at the root when
// parentID is empty.
func Merge(incoming []task.Task, parentID string) Mutation {
	return Mutation{
		op:          "merge",
		destructive: true,
		fn: func(tasks []task.Task, _ time.Time) ([]task.Task, string) {
			return tree.Merge(tasks, incoming, parentID), parentID
		},
	}
}

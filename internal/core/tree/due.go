package tree

import (
	"fmt"
	"time"

	"github.com/colonyops/marksync/internal/core/task"
)

// DateLayout is the calendar-date format of Task.DueDate.
const DateLayout = "2006-01-02"

// DefaultWeekHorizon is the number of days after today still counted as this week.
const DefaultWeekHorizon = 7

// DueStatus is the bucket a task's due date falls into relative to today.
type DueStatus string

const (
	DueOverdue  DueStatus = "overdue"
	DueToday    DueStatus = "today"
	DueTomorrow DueStatus = "tomorrow"
	DueThisWeek DueStatus = "thisWeek"
	DueLater    DueStatus = "later"
	DueNone     DueStatus = "noDueDate"
)

// IsValid reports whether s is a known bucket.
func (s DueStatus) IsValid() bool {
	switch s {
	case DueOverdue, DueToday, DueTomorrow, DueThisWeek, DueLater, DueNone:
		return true
	default:
		return false
	}
}

// ParseDueStatus converts a string into a DueStatus.
func ParseDueStatus(s string) (DueStatus, error) {
	st := DueStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid due status %q", s)
	}
	return st, nil
}

// DueGroups holds non-header tasks bucketed by due date. Tasks are flattened
// and carry no children.
type DueGroups struct {
	Overdue   []task.Task `json:"overdue"`
	Today     []task.Task `json:"today"`
	Tomorrow  []task.Task `json:"tomorrow"`
	ThisWeek  []task.Task `json:"thisWeek"`
	Later     []task.Task `json:"later"`
	NoDueDate []task.Task `json:"noDueDate"`
}

// Calendar buckets due dates relative to a fixed day.
type Calendar struct {
	today       time.Time
	weekHorizon int
}

// NewCalendar returns a Calendar anchored on the calendar date of now.
// A non-positive weekHorizon falls back to DefaultWeekHorizon.
func NewCalendar(now time.Time, weekHorizon int) Calendar {
	if weekHorizon <= 0 {
		weekHorizon = DefaultWeekHorizon
	}
	return Calendar{today: civil(now), weekHorizon: weekHorizon}
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Status buckets a due date string. Empty or unparseable dates have no due date.
func (c Calendar) Status(due string) DueStatus {
	if due == "" {
		return DueNone
	}
	d, err := time.Parse(DateLayout, due)
	if err != nil {
		return DueNone
	}

	days := int(d.Sub(c.today).Hours() / 24)
	switch {
	case days < 0:
		return DueOverdue
	case days == 0:
		return DueToday
	case days == 1:
		return DueTomorrow
	case days <= c.weekHorizon:
		return DueThisWeek
	default:
		return DueLater
	}
}

// Filter keeps tasks in the given bucket plus their ancestors. Headers are
// never bucketed themselves.
func (c Calendar) Filter(tasks []task.Task, status DueStatus) []task.Task {
	return prune(tasks, func(t *task.Task) bool {
		return !t.IsHeader && c.Status(t.DueDate) == status
	})
}

// Group buckets every non-header task in the tree.
func (c Calendar) Group(tasks []task.Task) DueGroups {
	var g DueGroups
	for _, t := range task.Flatten(tasks) {
		if t.IsHeader {
			continue
		}
		switch c.Status(t.DueDate) {
		case DueOverdue:
			g.Overdue = append(g.Overdue, t)
		case DueToday:
			g.Today = append(g.Today, t)
		case DueTomorrow:
			g.Tomorrow = append(g.Tomorrow, t)
		case DueThisWeek:
			g.ThisWeek = append(g.ThisWeek, t)
		case DueLater:
			g.Later = append(g.Later, t)
		default:
			g.NoDueDate = append(g.NoDueDate, t)
		}
	}
	return g
}

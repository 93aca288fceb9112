// Package history keeps a bounded undo stack of task tree snapshots.
package history

import (
	"errors"
	"sync"
	"time"

	"github.com/colonyops/marksync/internal/core/task"
	"github.com/colonyops/marksync/pkg/randid"
)

// DefaultMaxEntries is the undo depth used when none is configured.
const DefaultMaxEntries = 20

// ErrEmpty is returned by Pop when there is nothing to undo.
var ErrEmpty = errors.New("undo history is empty")

// Entry is a snapshot of a tree taken before a destructive mutation.
type Entry struct {
	ID        string      `json:"id"`
	Op        string      `json:"op"`
	Tasks     []task.Task `json:"tasks"`
	Timestamp time.Time   `json:"timestamp"`
}

// Stack is a bounded LIFO of entries. When full, the oldest entry is dropped.
// Safe for concurrent use.
type Stack struct {
	mu         sync.Mutex
	entries    []Entry // oldest first
	maxEntries int
}

// NewStack creates a stack holding at most maxEntries snapshots.
// A non-positive value falls back to DefaultMaxEntries.
func NewStack(maxEntries int) *Stack {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Stack{maxEntries: maxEntries}
}

// Push records a deep copy of tasks and returns the new entry.
func (s *Stack) Push(op string, tasks []task.Task, at time.Time) Entry {
	entry := Entry{
		ID:        randid.Generate(8),
		Op:        op,
		Tasks:     task.CloneAll(tasks),
		Timestamp: at,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	if over := len(s.entries) - s.maxEntries; over > 0 {
		s.entries = append([]Entry(nil), s.entries[over:]...)
	}
	return entry
}

// Pop removes and returns the newest entry.
func (s *Stack) Pop() (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return Entry{}, ErrEmpty
	}
	last := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return last, nil
}

// Peek returns the newest entry without removing it.
func (s *Stack) Peek() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Len returns the number of stored entries.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns the stored entries, newest first.
func (s *Stack) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[len(s.entries)-1-i] = e
	}
	return out
}

// Clear drops every entry.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

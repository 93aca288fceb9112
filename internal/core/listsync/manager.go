package listsync

import (
	"errors"
	"fmt"
	"sync"

	"github.com/colonyops/marksync/pkg/kv"
)

// ErrUnknownList is returned when a list id has no open controller.
var ErrUnknownList = errors.New("unknown list")

// Manager keeps one Controller per list id and tracks which list is active.
type Manager struct {
	opts  Options
	lists *kv.Store[string, *Controller]

	mu     sync.Mutex
	active string
}

// NewManager creates a manager whose controllers share opts.
func NewManager(opts Options) *Manager {
	return &Manager{
		opts:  opts,
		lists: kv.New[string, *Controller](),
	}
}

// Open returns the controller for listID, creating it from initial when the
// list is not open yet. initial is ignored for an already open list.
func (m *Manager) Open(listID string, initial State) *Controller {
	c, _ := m.lists.GetOrCreate(listID, func() *Controller {
		return New(listID, initial, m.opts)
	})
	return c
}

// Get returns the controller for listID.
func (m *Manager) Get(listID string) (*Controller, bool) {
	return m.lists.Get(listID)
}

// Lists returns the ids of open lists.
func (m *Manager) Lists() []string {
	return m.lists.Keys()
}

// Active returns the controller of the active list.
func (m *Manager) Active() (*Controller, bool) {
	m.mu.Lock()
	id := m.active
	m.mu.Unlock()

	if id == "" {
		return nil, false
	}
	return m.lists.Get(id)
}

// Activate makes listID the active list. Pending propagation on the
// previously active list is flushed so it lands on that list before the
// switch.
func (m *Manager) Activate(listID string) (*Controller, error) {
	next, ok := m.lists.Get(listID)
	if !ok {
		return nil, fmt.Errorf("activate %q: %w", listID, ErrUnknownList)
	}

	m.mu.Lock()
	prev := m.active
	m.active = listID
	m.mu.Unlock()

	if prev != "" && prev != listID {
		if c, ok := m.lists.Get(prev); ok {
			if err := c.Flush(); err != nil && !errors.Is(err, ErrClosed) {
				return next, fmt.Errorf("flush %q: %w", prev, err)
			}
		}
	}
	return next, nil
}

// Delete closes and forgets listID, cancelling its pending propagation.
func (m *Manager) Delete(listID string) error {
	c, ok := m.lists.Take(listID)
	if !ok {
		return fmt.Errorf("delete %q: %w", listID, ErrUnknownList)
	}

	m.mu.Lock()
	if m.active == listID {
		m.active = ""
	}
	m.mu.Unlock()

	return c.Close()
}

// Close closes every open controller.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.active = ""
	m.mu.Unlock()

	var errs []error
	for _, c := range m.lists.Drain() {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package listsync keeps a list's markdown and task tree in step.
//
// A Controller owns the pair for one list. Markdown edits are parsed into the
// tree and tree edits are exported back to markdown, each direction after a
// debounce window. Every propagation arms a one-shot echo flag holding the
// value it produced; the next change in the opposite direction consumes the
// flag and is dropped only when it carries that same value, so a host that
// reflects updates back into the controller does not start a loop.
package listsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/marksync/internal/core/eventbus"
	"github.com/colonyops/marksync/internal/core/history"
	"github.com/colonyops/marksync/internal/core/logging"
	"github.com/colonyops/marksync/internal/core/markdown"
	"github.com/colonyops/marksync/internal/core/task"
	"github.com/colonyops/marksync/internal/core/tree"
)

// DefaultDebounce is the coalescing window used when Options leaves it unset.
const DefaultDebounce = 300 * time.Millisecond

// ErrClosed is returned by operations on a closed controller.
var ErrClosed = errors.New("list controller closed")

// Options configures a Controller.
type Options struct {
	Debounce time.Duration
	Parser   markdown.Parser
	MaxUndo  int
	Bus      *eventbus.EventBus
	Now      func() time.Time
	// OnMarkdownChanged receives markdown produced from the tree.
	OnMarkdownChanged func(listID, markdown string)
	// OnTasksChanged receives a tree produced from markdown or by Apply/Undo.
	OnTasksChanged func(listID string, tasks []task.Task)
}

// DefaultOptions returns options with the default debounce and parser.
func DefaultOptions() Options {
	return Options{
		Debounce: DefaultDebounce,
		Parser:   markdown.DefaultParser,
		MaxUndo:  history.DefaultMaxEntries,
	}
}

// State is a list's markdown and tree.
type State struct {
	Markdown string      `json:"markdown"`
	Tasks    []task.Task `json:"tasks"`
}

type direction int

const (
	toTasks direction = iota
	toMarkdown
)

func (d direction) event() eventbus.Direction {
	if d == toTasks {
		return eventbus.DirectionToTasks
	}
	return eventbus.DirectionToMarkdown
}

// Controller synchronizes one list. Safe for concurrent use; callbacks run
// outside the controller's lock and may call back into it.
type Controller struct {
	id      string
	opts    Options
	ctx     context.Context
	log     zerolog.Logger
	history *history.Stack

	mu       sync.Mutex
	markdown string
	tasks    []task.Task
	closed   bool

	// echo flags: the value our last propagation produced in each direction
	echoMarkdown *string
	echoTasks    *[]task.Task

	timers  [2]*time.Timer
	gen     [2]uint64
	pending [2]bool
}

// New creates a controller seeded with initial. Seeding does not propagate.
func New(listID string, initial State, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Controller{
		id:       listID,
		opts:     opts,
		ctx:      logging.WithListID(context.Background(), listID),
		log:      logging.Component("listsync"),
		history:  history.NewStack(opts.MaxUndo),
		markdown: initial.Markdown,
		tasks:    task.CloneAll(initial.Tasks),
	}
}

// ID returns the list id.
func (c *Controller) ID() string { return c.id }

// Markdown returns the current markdown.
func (c *Controller) Markdown() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markdown
}

// Tasks returns a copy of the current tree.
func (c *Controller) Tasks() []task.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return task.CloneAll(c.tasks)
}

// Snapshot returns a copy of both representations.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Markdown: c.markdown, Tasks: task.CloneAll(c.tasks)}
}

// History returns the list's undo stack.
func (c *Controller) History() *history.Stack { return c.history }

// Pending reports whether a propagation is waiting on its debounce timer.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[toTasks] || c.pending[toMarkdown]
}

// SetMarkdown records a markdown change and schedules parsing it into the
// tree. A change equal to the markdown this controller just exported is an
// echo and is dropped. A tree export still waiting on its debounce is
// cancelled: the markdown edit is newer and its parse replaces the tree.
func (c *Controller) SetMarkdown(md string) error {
	var out outbox
	defer out.deliver()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if expected := c.echoMarkdown; expected != nil {
		c.echoMarkdown = nil
		if *expected == md {
			c.suppressed(&out, toTasks)
			return nil
		}
	}

	c.cancel(toMarkdown)
	c.markdown = md
	c.schedule(toTasks)
	return nil
}

// SetTasks records a tree change made outside the controller and schedules
// exporting it to markdown. A tree equal to the one this controller last
// produced is an echo and is dropped. A markdown parse still waiting on its
// debounce is cancelled in favour of the newer tree.
func (c *Controller) SetTasks(tasks []task.Task) error {
	var out outbox
	defer out.deliver()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if expected := c.echoTasks; expected != nil {
		c.echoTasks = nil
		if task.Equal(*expected, tasks) {
			c.suppressed(&out, toMarkdown)
			return nil
		}
	}

	c.cancel(toTasks)
	c.tasks = task.CloneAll(tasks)
	c.schedule(toMarkdown)
	return nil
}

// Apply runs m against the current tree and schedules exporting the result.
// A pending markdown parse runs first so m sees the latest tree. It returns
// the id m acted on, which for additions is the new node's id.
func (c *Controller) Apply(m Mutation) (string, error) {
	var out outbox
	defer out.deliver()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", ErrClosed
	}
	if c.pending[toTasks] {
		c.run(&out, toTasks)
	}

	now := c.opts.Now()
	next, id := m.fn(c.tasks, now)
	if task.Equal(next, c.tasks) {
		c.log.Debug().Ctx(c.ctx).Str("op", m.op).Msg("mutation left tree unchanged")
		return id, nil
	}

	if m.destructive {
		c.history.Push(m.op, c.tasks, now)
		depth := c.history.Len()
		out.add(func() {
			c.opts.Bus.PublishListUndoPushed(eventbus.ListUndoPushedPayload{ListID: c.id, Op: m.op, Depth: depth})
		})
	}

	c.replaceTasks(&out, next)
	c.log.Debug().Ctx(c.ctx).Str("op", m.op).Str("task_id", id).Msg("mutation applied")
	return id, nil
}

// Undo restores the tree saved by the latest destructive mutation.
func (c *Controller) Undo() (history.Entry, error) {
	var out outbox
	defer out.deliver()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return history.Entry{}, ErrClosed
	}

	entry, err := c.history.Pop()
	if err != nil {
		return history.Entry{}, fmt.Errorf("undo %s: %w", c.id, err)
	}

	c.cancel(toTasks)
	c.replaceTasks(&out, entry.Tasks)
	out.add(func() {
		c.opts.Bus.PublishListUndoApplied(eventbus.ListUndoAppliedPayload{ListID: c.id, Op: entry.Op})
	})
	return entry, nil
}

// Flush runs pending propagations immediately.
func (c *Controller) Flush() error {
	var out outbox
	defer out.deliver()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	for _, d := range []direction{toTasks, toMarkdown} {
		if c.pending[d] {
			c.run(&out, d)
		}
	}
	return nil
}

// Close cancels pending propagations and releases the undo snapshots.
// Calling Close twice is a no-op.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	dropped := c.pending[toTasks] || c.pending[toMarkdown]
	c.cancel(toTasks)
	c.cancel(toMarkdown)
	c.history.Clear()
	c.mu.Unlock()

	if dropped {
		c.log.Debug().Ctx(c.ctx).Msg("pending propagation dropped on close")
	}
	c.opts.Bus.PublishListClosed(eventbus.ListClosedPayload{ListID: c.id, Dropped: dropped})
	return nil
}

// replaceTasks installs a tree produced by the controller itself. The host is
// told about it, so the flag now expects that tree coming back.
func (c *Controller) replaceTasks(out *outbox, next []task.Task) {
	c.tasks = next
	c.echoTasks = &next
	c.schedule(toMarkdown)

	if fn := c.opts.OnTasksChanged; fn != nil {
		snapshot := task.CloneAll(next)
		out.add(func() { fn(c.id, snapshot) })
	}
}

func (c *Controller) schedule(d direction) {
	if t := c.timers[d]; t != nil {
		t.Stop()
	}
	c.gen[d]++
	c.pending[d] = true

	gen := c.gen[d]
	c.timers[d] = time.AfterFunc(c.opts.Debounce, func() { c.fire(d, gen) })
}

func (c *Controller) cancel(d direction) {
	if t := c.timers[d]; t != nil {
		t.Stop()
		c.timers[d] = nil
	}
	c.gen[d]++
	c.pending[d] = false
}

func (c *Controller) fire(d direction, gen uint64) {
	var out outbox
	defer out.deliver()

	c.mu.Lock()
	defer c.mu.Unlock()

	// a stopped timer may already be waiting on the lock
	if c.closed || gen != c.gen[d] || !c.pending[d] {
		return
	}
	c.run(&out, d)
}

// run performs one propagation. Callers hold c.mu.
func (c *Controller) run(out *outbox, d direction) {
	c.cancel(d)
	switch d {
	case toTasks:
		c.propagateMarkdown(out)
	case toMarkdown:
		c.propagateTasks(out)
	}
}

func (c *Controller) propagateMarkdown(out *outbox) {
	var next []task.Task
	if strings.TrimSpace(c.markdown) != "" {
		next = tree.Reconcile(c.tasks, c.opts.Parser.Parse(c.markdown), c.opts.Now())
	}

	if task.Equal(next, c.tasks) {
		c.log.Debug().Ctx(c.ctx).Msg("markdown parsed to unchanged tree")
		return
	}

	populated := len(c.tasks) == 0 && len(next) > 0
	c.tasks = next
	c.echoTasks = &next

	c.log.Debug().Ctx(c.ctx).Int("roots", len(next)).Msg("markdown propagated to tasks")

	snapshot := task.CloneAll(next)
	out.add(func() {
		if fn := c.opts.OnTasksChanged; fn != nil {
			fn(c.id, snapshot)
		}
		c.opts.Bus.PublishListTasksSynced(eventbus.ListTasksSyncedPayload{ListID: c.id, Tasks: snapshot})
	})

	if populated {
		_, total := task.Count(next)
		out.add(func() {
			c.opts.Bus.PublishListPopulated(eventbus.ListPopulatedPayload{ListID: c.id, Count: total})
		})
	}
}

func (c *Controller) propagateTasks(out *outbox) {
	md := markdown.Export(c.tasks)
	if md == c.markdown {
		c.log.Debug().Ctx(c.ctx).Msg("tasks exported to unchanged markdown")
		return
	}

	c.markdown = md
	c.echoMarkdown = &md

	c.log.Debug().Ctx(c.ctx).Int("bytes", len(md)).Msg("tasks propagated to markdown")

	out.add(func() {
		if fn := c.opts.OnMarkdownChanged; fn != nil {
			fn(c.id, md)
		}
		c.opts.Bus.PublishListMarkdownSynced(eventbus.ListMarkdownSyncedPayload{ListID: c.id, Markdown: md})
	})
}

func (c *Controller) suppressed(out *outbox, d direction) {
	c.log.Debug().Ctx(c.ctx).Str("direction", string(d.event())).Msg("echo suppressed")
	out.add(func() {
		c.opts.Bus.PublishListEchoSuppressed(eventbus.ListEchoSuppressedPayload{ListID: c.id, Direction: d.event()})
	})
}

// outbox collects callbacks and events while the lock is held so they can be
// delivered after it is released.
type outbox struct {
	fns []func()
}

func (o *outbox) add(fn func()) { o.fns = append(o.fns, fn) }

func (o *outbox) deliver() {
	for _, fn := range o.fns {
		fn()
	}
}

// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within marksync.
package eventbus

import "github.com/colonyops/marksync/internal/core/task"

// Event names a kind of bus message.
type Event string

// Keep list sorted A-Z
const (
	EventListClosed            Event = "list.closed"
	EventListEchoSuppressed    Event = "list.echo-suppressed"
	EventListMarkdownSynced    Event = "list.markdown-synced"
	EventListPopulated         Event = "list.populated"
	EventListTasksSynced       Event = "list.tasks-synced"
	EventListUndoApplied       Event = "list.undo-applied"
	EventListUndoPushed        Event = "list.undo-pushed"
	EventNotificationPublished Event = "notification.published"
)

// Direction names which representation an echo would have flowed into.
type Direction string

const (
	// DirectionToTasks is markdown->tree propagation.
	DirectionToTasks Direction = "to_tasks"
	// DirectionToMarkdown is tree->markdown propagation.
	DirectionToMarkdown Direction = "to_markdown"
)

// ListTasksSyncedPayload is emitted after parsed markdown replaced a list's tree.
type ListTasksSyncedPayload struct {
	ListID string
	Tasks  []task.Task
}

// ListMarkdownSyncedPayload is emitted after an exported tree replaced a list's markdown.
type ListMarkdownSyncedPayload struct {
	ListID   string
	Markdown string
}

// ListEchoSuppressedPayload is emitted when a change caused by the other
// direction's own update was swallowed.
type ListEchoSuppressedPayload struct {
	ListID    string
	Direction Direction
}

// ListPopulatedPayload is emitted the first time markdown fills a previously
// empty tree. Hosts typically collapse the markdown editor in response.
type ListPopulatedPayload struct {
	ListID string
	Count  int
}

// ListUndoPushedPayload is emitted when a destructive mutation saved a snapshot.
type ListUndoPushedPayload struct {
	ListID string
	Op     string
	Depth  int
}

// ListUndoAppliedPayload is emitted when a snapshot was restored.
type ListUndoAppliedPayload struct {
	ListID string
	Op     string
}

// ListClosedPayload is emitted when a list's controller shuts down.
// Dropped reports whether a pending propagation was cancelled.
type ListClosedPayload struct {
	ListID  string
	Dropped bool
}

// NotificationLevel is the severity of a user-facing notification.
type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
)

// NotificationPublishedPayload carries a user-facing message.
type NotificationPublishedPayload struct {
	Level   NotificationLevel
	Message string
}

package eventbus

import "fmt"

// NotificationRouter maps list sync events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeListPopulated(func(p ListPopulatedPayload) {
		r.notifyf(LevelInfo, "list %s populated with %d tasks", p.ListID, p.Count)
	})

	r.bus.SubscribeListUndoApplied(func(p ListUndoAppliedPayload) {
		r.notifyf(LevelInfo, "undid %s", p.Op)
	})

	r.bus.SubscribeListClosed(func(p ListClosedPayload) {
		if p.Dropped {
			r.notifyf(LevelWarning, "list %s closed with a pending sync; last edit was not propagated", p.ListID)
		}
	})
}

func (r *NotificationRouter) notifyf(level NotificationLevel, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

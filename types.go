package eventcore

// Priority determines listener execution order within one event type.
// Higher values execute first.
type Priority int

const (
	// PriorityLow is for UI updates and non-critical notifications.
	PriorityLow Priority = 0

	// PriorityNormal is the default priority for most events.
	PriorityNormal Priority = 1

	// PriorityHigh is for critical system events and state changes.
	PriorityHigh Priority = 2

	// PriorityCritical is for emergency events and error handling.
	PriorityCritical Priority = 3
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time snapshot of dispatcher counters. Each field is
// read atomically, but the snapshot is not transactional across fields.
type Stats struct {
	// TotalListeners is the current number of registered, not-yet-reclaimed
	// subscriptions.
	TotalListeners int

	// TotalDispatches is the cumulative number of dispatch passes that found
	// at least one registered event type.
	TotalDispatches uint64

	// QueuedEvents is the current deferred-queue depth.
	QueuedEvents int

	// EventTypes is the number of distinct event types with at least one
	// subscription.
	EventTypes int

	// HandlerPanics is the cumulative number of listener callbacks that
	// panicked and were recovered.
	HandlerPanics uint64
}

// PanicHandler is called when a listener callback panics. The event is the
// value being dispatched; recovered is the value passed to panic.
type PanicHandler func(event any, recovered any)

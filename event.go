package eventcore

// Event is the capability required of every dispatchable type. Embed
// BaseEvent in an event struct to satisfy it:
//
//	type PlayerDied struct {
//	    eventcore.BaseEvent
//	    PlayerID int
//	}
//
// The constraint is checked at compile time by the generic signatures of
// Subscribe, Dispatch and Enqueue; there is no runtime "not an event" error.
type Event interface {
	isEvent()
}

// BaseEvent marks a struct as an event when embedded. It carries no data.
type BaseEvent struct{}

func (BaseEvent) isEvent() {}

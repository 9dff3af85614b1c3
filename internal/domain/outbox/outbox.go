package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AllEvents subscribes a handler to every published event name.
const AllEvents = "*"

// Event is any domain event with a name identifier.
type Event interface {
	EventName() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher publishes events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// Envelope is the transport form of an event for sinks outside the process.
type Envelope struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    Event     `json:"payload"`
}

func NewEnvelope(e Event) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Name:       e.EventName(),
		OccurredAt: time.Now().UTC(),
		Payload:    e,
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

// NopPublisher discards every event.
func NopPublisher() Publisher { return nopPublisher{} }

// Package notify fans committed domain events out to websocket clients and Kafka.
// Delivery is best effort: a failed notification is logged and never undoes the
// write that produced it.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingDeleted       = "booking.deleted"
	EventRoomStatusChanged    = "room.status_changed"
	EventPaymentOpened        = "payment.opened"
	EventPaymentApproved      = "payment.approved"
	EventPaymentRejected      = "payment.rejected"
)

type Event struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	ResourceType string      `json:"resource_type"`
	ResourceID   int64       `json:"resource_id"`
	RoomID       int64       `json:"room_id,omitempty"`
	ActorID      int64       `json:"actor_id,omitempty"`
	Payload      interface{} `json:"payload,omitempty"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

func NewEvent(eventType, resourceType string, resourceID int64, payload interface{}) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Payload:      payload,
		OccurredAt:   time.Now().UTC(),
	}
}

// Notifier delivers one event to one sink.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// Publisher is what services hold. Publish must not block the caller.
type Publisher interface {
	Publish(evt Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(Event) {}

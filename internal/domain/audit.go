package domain

import "time"

const (
	AuditBookingCreated    = "booking.created"
	AuditBookingTransition = "booking.transition"
	AuditBookingDeleted    = "booking.deleted"
	AuditPaymentOpened     = "payment.opened"
	AuditPaymentApproved   = "payment.approved"
	AuditPaymentRejected   = "payment.rejected"
	AuditRoomOverride      = "room.override"
)

// AuditEntry records who changed what. It is written in the same transaction as the change.
type AuditEntry struct {
	ID           int64                  `json:"id"`
	ActorID      int64                  `json:"actor_id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   int64                  `json:"resource_id"`
	Details      map[string]interface{} `json:"details,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

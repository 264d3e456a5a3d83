package domain

import "time"

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomOccupied    RoomStatus = "OCCUPIED"
	RoomMaintenance RoomStatus = "MAINTENANCE"
	RoomOutOfOrder  RoomStatus = "OUT_OF_ORDER"
)

// IsManual reports whether the status was set by an operator rather than derived from bookings.
func (s RoomStatus) IsManual() bool {
	return s == RoomMaintenance || s == RoomOutOfOrder
}

func (s RoomStatus) IsValid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomOutOfOrder:
		return true
	}
	return false
}

type Room struct {
	ID            int64      `json:"id"`
	HostelID      int64      `json:"hostel_id"`
	Number        string     `json:"number"`
	Capacity      int        `json:"capacity" validate:"required,gt=0"`
	PricePerNight float64    `json:"price_per_night" validate:"gte=0"`
	PricePerMonth float64    `json:"price_per_month" validate:"gte=0"`
	Status        RoomStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Availability is the outcome of an availability decision for a room and date range.
type Availability struct {
	RoomID    int64     `json:"room_id"`
	Checkin   time.Time `json:"checkin"`
	Checkout  time.Time `json:"checkout"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
	// ConflictingBookingID is set when an active booking blocks the range.
	ConflictingBookingID int64 `json:"conflicting_booking_id,omitempty"`
}

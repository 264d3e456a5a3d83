package booking

import (
	"time"

	"hostelcore/internal/domain"
	"hostelcore/internal/modules/guest"
)

// CreateRequest is the service-level booking request. Nil dates and price are
// filled in from the booking type and the room's rates.
type CreateRequest struct {
	RoomID        int64
	Guest         guest.Ref
	Checkin       *time.Time
	Checkout      *time.Time
	BookingType   domain.BookingType
	Price         *float64
	Notes         string
	PaymentMethod domain.PaymentMethod
	// Confirm moves the new booking to CONFIRMED in the same transaction.
	Confirm bool
	ActorID int64
}

type CreateBookingRequest struct {
	RoomID        int64                `json:"room_id" binding:"required,gt=0"`
	GuestID       int64                `json:"guest_id" binding:"omitempty,gt=0"`
	NewGuest      *domain.NewGuest     `json:"new_guest"`
	Checkin       string               `json:"checkin"`
	Checkout      string               `json:"checkout"`
	BookingType   domain.BookingType   `json:"booking_type" binding:"required" validate:"booking_type"`
	Price         *float64             `json:"price" binding:"omitempty,gte=0"`
	Notes         string               `json:"notes" binding:"max=1000"`
	PaymentMethod domain.PaymentMethod `json:"payment_method" validate:"omitempty,payment_method"`
	Confirm       bool                 `json:"confirm"`
}

type UpdateStatusRequest struct {
	Status domain.BookingStatus `json:"status" binding:"required" validate:"booking_status"`
}

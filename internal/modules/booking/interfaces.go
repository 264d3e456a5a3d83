package booking

import (
	"context"

	"hostelcore/internal/domain"
	"hostelcore/internal/repository"
)

// EventHandler reacts to a booking event inside the transaction that produced it.
// An error rolls the whole booking operation back.
type EventHandler interface {
	HandleBookingEvent(ctx context.Context, tx *repository.Store, evt domain.BookingEvent) error
}

// GuestResolver finds or provisions the guest of a booking.
type GuestResolver interface {
	Prepare(ng domain.NewGuest) (*domain.Guest, error)
	ResolveTx(ctx context.Context, tx *repository.Store, id int64, prepared *domain.Guest) (*domain.Guest, error)
}

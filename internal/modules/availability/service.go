package availability

import (
	"context"
	"fmt"
	"time"

	"hostelcore/internal/domain"
	"hostelcore/internal/pkg/apperror"
	"hostelcore/internal/repository"

	"gorm.io/gorm"
)

const (
	ReasonRoomBlocked = "room_blocked"
	ReasonOverlap     = "overlapping_booking"
)

type Service struct {
	store   *repository.Store
	timeout time.Duration
}

func NewService(db *gorm.DB, timeout time.Duration) *Service {
	return &Service{store: repository.NewStore(db), timeout: timeout}
}

// Decide answers whether room can take a reservation for [checkin, checkout).
// active must hold the room's CONFIRMED and CHECKED_IN bookings (extra rows are ignored).
// excludeID skips one booking, the one being confirmed.
func Decide(room domain.Room, active []domain.Booking, checkin, checkout time.Time, excludeID int64) domain.Availability {
	out := domain.Availability{RoomID: room.ID, Checkin: checkin, Checkout: checkout}

	if room.Status.IsManual() {
		out.Reason = fmt.Sprintf("%s: room %s is %s", ReasonRoomBlocked, room.Number, room.Status)
		return out
	}

	for _, b := range active {
		if b.ID == excludeID || b.RoomID != room.ID || !b.Status.IsActive() {
			continue
		}
		if b.Overlaps(checkin, checkout) {
			out.Reason = fmt.Sprintf("%s: booking %d holds %s to %s", ReasonOverlap,
				b.ID, b.Checkin.Format(time.DateOnly), b.Checkout.Format(time.DateOnly))
			out.ConflictingBookingID = b.ID
			return out
		}
	}

	out.Available = true
	return out
}

func validateRange(checkin, checkout time.Time) error {
	if !checkin.Before(checkout) {
		return apperror.Validation("checkin %s must be before checkout %s",
			checkin.Format(time.DateOnly), checkout.Format(time.DateOnly))
	}
	return nil
}

// CheckAvailability is the read-only query. It takes no locks.
func (s *Service) CheckAvailability(ctx context.Context, roomID int64, checkin, checkout time.Time) (*domain.Availability, error) {
	checkin, checkout = domain.DateOnly(checkin), domain.DateOnly(checkout)
	if err := validateRange(checkin, checkout); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	room, err := s.store.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return evaluate(ctx, s.store, room, checkin, checkout, 0)
}

// CheckTx evaluates availability inside the caller's transaction. The caller is
// expected to hold the room's row lock so the answer stays true until commit.
func CheckTx(ctx context.Context, tx *repository.Store, room *domain.Room, checkin, checkout time.Time, excludeID int64) (*domain.Availability, error) {
	if err := validateRange(checkin, checkout); err != nil {
		return nil, err
	}
	return evaluate(ctx, tx, room, checkin, checkout, excludeID)
}

func evaluate(ctx context.Context, store *repository.Store, room *domain.Room, checkin, checkout time.Time, excludeID int64) (*domain.Availability, error) {
	var active []domain.Booking
	if !room.Status.IsManual() {
		b, err := store.Bookings.FindActiveOverlap(ctx, room.ID, checkin, checkout, excludeID)
		if err != nil {
			return nil, err
		}
		if b != nil {
			active = append(active, *b)
		}
	}
	out := Decide(*room, active, checkin, checkout, excludeID)
	return &out, nil
}

package booking

import (
	"context"
	"log"
	"time"

	"hostelcore/internal/domain"
	"hostelcore/internal/modules/availability"
	"hostelcore/internal/notify"
	"hostelcore/internal/pkg/apperror"
	"hostelcore/internal/repository"

	"gorm.io/gorm"
)

// Service owns the booking state machine. Every write locks the room row first,
// so writes for one room serialize, and runs its event handlers in the same
// transaction.
type Service struct {
	store     *repository.Store
	guests    GuestResolver
	handlers  []EventHandler
	publisher notify.Publisher
	timeout   time.Duration
	loggerf   func(format string, args ...interface{})
	now       func() time.Time
}

func NewService(db *gorm.DB, guests GuestResolver, publisher notify.Publisher, timeout time.Duration, handlers ...EventHandler) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Service{
		store:     repository.NewStore(db),
		guests:    guests,
		handlers:  handlers,
		publisher: publisher,
		timeout:   timeout,
		loggerf:   log.Printf,
		now:       time.Now,
	}
}

func (s *Service) CreateBooking(ctx context.Context, req CreateRequest) (*domain.Booking, error) {
	if req.RoomID <= 0 {
		return nil, apperror.Validation("invalid room id %d", req.RoomID)
	}
	if err := req.Guest.Validate(); err != nil {
		return nil, err
	}
	if !req.BookingType.IsValid() {
		return nil, apperror.Validation("invalid booking type %q", req.BookingType)
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, apperror.Validation("price must not be negative, got %.2f", *req.Price)
	}
	if req.PaymentMethod != "" && !req.PaymentMethod.IsValid() {
		return nil, apperror.Validation("invalid payment method %q", req.PaymentMethod)
	}

	checkin, checkout, days, err := domain.ResolveStay(req.BookingType, req.Checkin, req.Checkout, s.now())
	if err != nil {
		return nil, apperror.Validation("%v", err)
	}

	var prepared *domain.Guest
	if req.Guest.New != nil {
		if prepared, err = s.guests.Prepare(*req.Guest.New); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var created *domain.Booking
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		room, err := tx.Rooms.GetForUpdate(ctx, req.RoomID)
		if err != nil {
			return err
		}

		g, err := s.guests.ResolveTx(ctx, tx, req.Guest.ID, prepared)
		if err != nil {
			return err
		}

		if err := s.ensureAvailable(ctx, tx, room, checkin, checkout, 0); err != nil {
			return err
		}

		price := domain.StayPrice(*room, req.BookingType, days)
		if req.Price != nil {
			price = *req.Price
		}

		b := &domain.Booking{
			RoomID:       room.ID,
			GuestID:      g.ID,
			Checkin:      checkin,
			Checkout:     checkout,
			Status:       domain.BookingPending,
			Price:        price,
			BookingType:  req.BookingType,
			DurationDays: days,
			Notes:        req.Notes,
		}
		if err := tx.Bookings.Create(ctx, b); err != nil {
			return err
		}

		if err := s.dispatch(ctx, tx, domain.BookingEvent{
			Type:          domain.BookingCreated,
			Booking:       *b,
			ActorID:       req.ActorID,
			PaymentMethod: req.PaymentMethod,
		}); err != nil {
			return err
		}
		if err := tx.Audit.Record(ctx, &domain.AuditEntry{
			ActorID:      req.ActorID,
			Action:       domain.AuditBookingCreated,
			ResourceType: "booking",
			ResourceID:   b.ID,
			Details: map[string]interface{}{
				"room_id":  b.RoomID,
				"guest_id": b.GuestID,
				"checkin":  b.Checkin.Format(time.DateOnly),
				"checkout": b.Checkout.Format(time.DateOnly),
				"price":    b.Price,
			},
		}); err != nil {
			return err
		}

		if req.Confirm {
			if b, err = s.transitionTx(ctx, tx, room, b, domain.BookingConfirmed, req.ActorID); err != nil {
				return err
			}
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(notify.EventBookingCreated, created, req.ActorID)
	return created, nil
}

// TransitionStatus moves a booking along one edge of the state machine.
func (s *Service) TransitionStatus(ctx context.Context, bookingID int64, target domain.BookingStatus, actorID int64) (*domain.Booking, error) {
	if !target.IsValid() {
		return nil, apperror.Validation("invalid booking status %q", target)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var updated *domain.Booking
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		room, b, err := s.lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		updated, err = s.transitionTx(ctx, tx, room, b, target, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(notify.EventBookingStatusChanged, updated, actorID)
	return updated, nil
}

// DeleteBooking removes a booking in any status together with its payment.
// Unlike cancellation it leaves no row behind; the audit trail remains.
func (s *Service) DeleteBooking(ctx context.Context, bookingID, actorID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var deleted *domain.Booking
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		_, b, err := s.lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if err := tx.Bookings.Delete(ctx, b.ID); err != nil {
			return err
		}
		if err := s.dispatch(ctx, tx, domain.BookingEvent{
			Type:       domain.BookingDeleted,
			Booking:    *b,
			FromStatus: b.Status,
			ActorID:    actorID,
		}); err != nil {
			return err
		}
		if err := tx.Audit.Record(ctx, &domain.AuditEntry{
			ActorID:      actorID,
			Action:       domain.AuditBookingDeleted,
			ResourceType: "booking",
			ResourceID:   b.ID,
			Details:      map[string]interface{}{"room_id": b.RoomID, "status": string(b.Status)},
		}); err != nil {
			return err
		}
		deleted = b
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(notify.EventBookingDeleted, deleted, actorID)
	return nil
}

func (s *Service) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Bookings.GetByID(ctx, bookingID)
}

func (s *Service) ListRoomBookings(ctx context.Context, roomID int64, statuses []domain.BookingStatus) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.store.Rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.store.Bookings.ListByRoom(ctx, roomID, statuses)
}

// History returns the audit trail of a booking. It outlives the booking itself.
func (s *Service) History(ctx context.Context, bookingID int64) ([]domain.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entries, err := s.store.Audit.ListForResource(ctx, "booking", bookingID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		if _, err := s.store.Bookings.GetByID(ctx, bookingID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// lockBooking takes the room lock and then re-reads the booking, always in
// that order, so booking writes never deadlock against creates on the same room.
func (s *Service) lockBooking(ctx context.Context, tx *repository.Store, bookingID int64) (*domain.Room, *domain.Booking, error) {
	b, err := tx.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	room, err := tx.Rooms.GetForUpdate(ctx, b.RoomID)
	if err != nil {
		return nil, nil, err
	}
	b, err = tx.Bookings.GetForUpdate(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	return room, b, nil
}

func (s *Service) transitionTx(ctx context.Context, tx *repository.Store, room *domain.Room, b *domain.Booking, target domain.BookingStatus, actorID int64) (*domain.Booking, error) {
	from := b.Status
	if !from.CanTransitionTo(target) {
		return nil, apperror.InvalidTransition("booking %d cannot move from %s to %s", b.ID, from, target)
	}

	if target == domain.BookingConfirmed {
		if err := s.ensureAvailable(ctx, tx, room, b.Checkin, b.Checkout, b.ID); err != nil {
			return nil, err
		}
	}
	if target == domain.BookingCheckedIn && room.Status.IsManual() {
		return nil, apperror.Conflict("room %d is %s and cannot take a check-in", room.ID, room.Status)
	}

	ok, err := tx.Bookings.CompareAndSetStatus(ctx, b.ID, from, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.StaleState("booking %d is no longer %s", b.ID, from)
	}

	next := *b
	next.Status = target
	next.UpdatedAt = s.now().UTC()

	if err := s.dispatch(ctx, tx, domain.BookingEvent{
		Type:       domain.BookingStatusChanged,
		Booking:    next,
		FromStatus: from,
		ActorID:    actorID,
	}); err != nil {
		return nil, err
	}
	if err := tx.Audit.Record(ctx, &domain.AuditEntry{
		ActorID:      actorID,
		Action:       domain.AuditBookingTransition,
		ResourceType: "booking",
		ResourceID:   b.ID,
		Details:      map[string]interface{}{"from": string(from), "to": string(target)},
	}); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *Service) ensureAvailable(ctx context.Context, tx *repository.Store, room *domain.Room, checkin, checkout time.Time, excludeID int64) error {
	avail, err := availability.CheckTx(ctx, tx, room, checkin, checkout, excludeID)
	if err != nil {
		return err
	}
	if !avail.Available {
		return apperror.Conflict("room %d unavailable for %s to %s: %s", room.ID,
			checkin.Format(time.DateOnly), checkout.Format(time.DateOnly), avail.Reason)
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, tx *repository.Store, evt domain.BookingEvent) error {
	for _, h := range s.handlers {
		if err := h.HandleBookingEvent(ctx, tx, evt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) publish(eventType string, b *domain.Booking, actorID int64) {
	evt := notify.NewEvent(eventType, "booking", b.ID, b)
	evt.RoomID = b.RoomID
	evt.ActorID = actorID
	s.publisher.Publish(evt)
}

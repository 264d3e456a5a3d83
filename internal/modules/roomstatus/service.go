package roomstatus

import (
	"context"
	"log"
	"time"

	"hostelcore/internal/domain"
	"hostelcore/internal/notify"
	"hostelcore/internal/pkg/apperror"
	"hostelcore/internal/repository"

	"gorm.io/gorm"
)

const resyncBatchSize = 100

// Derive is the room status implied by its bookings. A checked-in guest wins over
// everything, a manual status is kept otherwise, and an idle room is AVAILABLE.
func Derive(current domain.RoomStatus, hasCheckedIn bool) domain.RoomStatus {
	switch {
	case hasCheckedIn:
		return domain.RoomOccupied
	case current.IsManual():
		return current
	default:
		return domain.RoomAvailable
	}
}

type ResyncResult struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
}

type Synchronizer struct {
	store     *repository.Store
	timeout   time.Duration
	publisher notify.Publisher
	loggerf   func(format string, args ...interface{})
}

func NewSynchronizer(db *gorm.DB, timeout time.Duration, publisher notify.Publisher) *Synchronizer {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Synchronizer{
		store:     repository.NewStore(db),
		timeout:   timeout,
		publisher: publisher,
		loggerf:   log.Printf,
	}
}

// HandleBookingEvent keeps the room in step with its bookings inside the
// transaction that changed them.
func (s *Synchronizer) HandleBookingEvent(ctx context.Context, tx *repository.Store, evt domain.BookingEvent) error {
	_, _, err := s.ResyncTx(ctx, tx, evt.Booking.RoomID)
	return err
}

// ResyncTx recomputes one room's status within tx and reports whether it changed.
func (s *Synchronizer) ResyncTx(ctx context.Context, tx *repository.Store, roomID int64) (*domain.Room, bool, error) {
	room, err := tx.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, false, err
	}
	checkedIn, err := tx.Bookings.HasCheckedIn(ctx, roomID)
	if err != nil {
		return nil, false, err
	}

	next := Derive(room.Status, checkedIn)
	if next == room.Status {
		return room, false, nil
	}
	if err := tx.Rooms.SetStatus(ctx, roomID, next); err != nil {
		return nil, false, err
	}
	room.Status = next
	return room, true, nil
}

// Resync recomputes one room's status in its own transaction.
func (s *Synchronizer) Resync(ctx context.Context, roomID int64) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		room    *domain.Room
		changed bool
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Rooms.GetForUpdate(ctx, roomID); err != nil {
			return err
		}
		var err error
		room, changed, err = s.ResyncTx(ctx, tx, roomID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.publishRoom(room, 0)
	}
	return room, nil
}

// ResyncAll walks every room and repairs drift between room status and bookings.
// A room is only written if its status is still the one that was read, so a
// concurrent booking transition is never overwritten with a stale derivation.
func (s *Synchronizer) ResyncAll(ctx context.Context) (ResyncResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var res ResyncResult

	err := s.store.Rooms.FindInBatches(ctx, resyncBatchSize, func(rooms []domain.Room) error {
		ids := make([]int64, 0, len(rooms))
		for _, r := range rooms {
			ids = append(ids, r.ID)
		}
		checkedIn, err := s.store.Bookings.CheckedInRoomIDs(ctx, ids)
		if err != nil {
			return err
		}

		for i := range rooms {
			room := rooms[i]
			res.Checked++
			next := Derive(room.Status, checkedIn[room.ID])
			if next == room.Status {
				continue
			}
			ok, err := s.store.Rooms.CompareAndSetStatus(ctx, room.ID, room.Status, next)
			if err != nil {
				return err
			}
			if !ok {
				s.loggerf("level=info msg=\"resync skipped room changed concurrently\" room_id=%d", room.ID)
				continue
			}
			res.Updated++
			room.Status = next
			s.publishRoom(&room, 0)
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	s.loggerf("level=info msg=\"room resync finished\" checked=%d updated=%d", res.Checked, res.Updated)
	return res, nil
}

// SetManualStatus is the admin override. MAINTENANCE and OUT_OF_ORDER block the
// room; AVAILABLE clears the override and lets the bookings decide again.
// A room with a checked-in guest cannot be taken out of service.
func (s *Synchronizer) SetManualStatus(ctx context.Context, roomID int64, status domain.RoomStatus, actorID int64) (*domain.Room, error) {
	if status != domain.RoomAvailable && !status.IsManual() {
		return nil, apperror.Validation("room status %q cannot be set manually", status)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var room *domain.Room
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Rooms.GetForUpdate(ctx, roomID)
		if err != nil {
			return err
		}
		checkedIn, err := tx.Bookings.HasCheckedIn(ctx, roomID)
		if err != nil {
			return err
		}
		if checkedIn && status.IsManual() {
			return apperror.Conflict("room %d has a checked-in guest and cannot be set to %s", roomID, status)
		}

		next := status
		if status == domain.RoomAvailable {
			next = Derive(domain.RoomAvailable, checkedIn)
		}
		if next != current.Status {
			if err := tx.Rooms.SetStatus(ctx, roomID, next); err != nil {
				return err
			}
		}

		if err := tx.Audit.Record(ctx, &domain.AuditEntry{
			ActorID:      actorID,
			Action:       domain.AuditRoomOverride,
			ResourceType: "room",
			ResourceID:   roomID,
			Details:      map[string]interface{}{"from": string(current.Status), "to": string(next)},
		}); err != nil {
			return err
		}

		current.Status = next
		room = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishRoom(room, actorID)
	return room, nil
}

func (s *Synchronizer) publishRoom(room *domain.Room, actorID int64) {
	evt := notify.NewEvent(notify.EventRoomStatusChanged, "room", room.ID, map[string]string{"status": string(room.Status)})
	evt.RoomID = room.ID
	evt.ActorID = actorID
	s.publisher.Publish(evt)
}

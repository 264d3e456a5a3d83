package repository

import (
	"context"
	"errors"
	"time"

	"hostelcore/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:           m.ID,
		RoomID:       m.RoomID,
		GuestID:      m.GuestID,
		Checkin:      m.Checkin.UTC(),
		Checkout:     m.Checkout.UTC(),
		Status:       domain.BookingStatus(m.Status),
		Price:        m.Price,
		BookingType:  domain.BookingType(m.BookingType),
		DurationDays: m.DurationDays,
		Notes:        strVal(m.Notes),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:           b.ID,
		RoomID:       b.RoomID,
		GuestID:      b.GuestID,
		Checkin:      b.Checkin.UTC(),
		Checkout:     b.Checkout.UTC(),
		Status:       string(b.Status),
		Price:        b.Price,
		BookingType:  string(b.BookingType),
		DurationDays: b.DurationDays,
		Notes:        strPtr(b.Notes),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func activeStatuses() []string {
	out := make([]string, 0, len(domain.ActiveBookingStatuses))
	for _, s := range domain.ActiveBookingStatuses {
		out = append(out, string(s))
	}
	return out
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := r.db.WithContext(ctx).Omit("Room", "Guest").Create(&m).Error; err != nil {
		return translate(err, "create booking for room %d", b.RoomID)
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "booking %d", id)
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id).Error
	if err != nil {
		return nil, translate(err, "booking %d", id)
	}
	return toDomainBooking(m), nil
}

// FindActiveOverlap returns the first active booking of the room whose
// [checkin, checkout) range intersects the given one, or nil.
// excludeID skips one booking, used when that booking is itself being confirmed.
func (r *BookingRepository) FindActiveOverlap(ctx context.Context, roomID int64, checkin, checkout time.Time, excludeID int64) (*domain.Booking, error) {
	q := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Where("status IN ?", activeStatuses()).
		Where("checkin < ? AND checkout > ?", checkout.UTC(), checkin.UTC())
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var m bookingModel
	err := q.Order("checkin ASC").Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "overlap check for room %d", roomID)
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) ListByRoom(ctx context.Context, roomID int64, statuses []domain.BookingStatus) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).Where("room_id = ?", roomID)
	if len(statuses) > 0 {
		raw := make([]string, 0, len(statuses))
		for _, s := range statuses {
			raw = append(raw, string(s))
		}
		q = q.Where("status IN ?", raw)
	}

	var rows []bookingModel
	if err := q.Order("checkin ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, translate(err, "list bookings of room %d", roomID)
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// CompareAndSetStatus moves the booking to the target status only if it is
// still in the expected one.
func (r *BookingRepository) CompareAndSetStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, translate(res.Error, "update booking %d", id)
	}
	return res.RowsAffected > 0, nil
}

func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&bookingModel{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete booking %d", id)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "booking %d", id)
	}
	return nil
}

func (r *BookingRepository) HasCheckedIn(ctx context.Context, roomID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("room_id = ? AND status = ?", roomID, string(domain.BookingCheckedIn)).
		Count(&n).Error
	if err != nil {
		return false, translate(err, "count checked-in bookings of room %d", roomID)
	}
	return n > 0, nil
}

// CheckedInRoomIDs returns which of the given rooms hold at least one CHECKED_IN booking.
func (r *BookingRepository) CheckedInRoomIDs(ctx context.Context, roomIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(roomIDs))
	if len(roomIDs) == 0 {
		return out, nil
	}
	var ids []int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Distinct("room_id").
		Where("room_id IN ? AND status = ?", roomIDs, string(domain.BookingCheckedIn)).
		Pluck("room_id", &ids).Error
	if err != nil {
		return nil, translate(err, "checked-in rooms")
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

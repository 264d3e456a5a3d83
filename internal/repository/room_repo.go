package repository

import (
	"context"
	"time"

	"hostelcore/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func toDomainRoom(m roomModel) *domain.Room {
	return &domain.Room{
		ID:            m.ID,
		HostelID:      m.HostelID,
		Number:        m.Number,
		Capacity:      m.Capacity,
		PricePerNight: m.PricePerNight,
		PricePerMonth: m.PricePerMonth,
		Status:        domain.RoomStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toRoomModel(r *domain.Room) roomModel {
	status := r.Status
	if status == "" {
		status = domain.RoomAvailable
	}
	return roomModel{
		ID:            r.ID,
		HostelID:      r.HostelID,
		Number:        r.Number,
		Capacity:      r.Capacity,
		PricePerNight: r.PricePerNight,
		PricePerMonth: r.PricePerMonth,
		Status:        string(status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	m := toRoomModel(room)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "create room %s", room.Number)
	}
	*room = *toDomainRoom(m)
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var m roomModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "room %d", id)
	}
	return toDomainRoom(m), nil
}

// GetForUpdate reads the room and holds its row lock until the transaction ends.
// Booking writes for one room serialize on this lock.
func (r *RoomRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Room, error) {
	var m roomModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id).Error
	if err != nil {
		return nil, translate(err, "room %d", id)
	}
	return toDomainRoom(m), nil
}

func (r *RoomRepository) ListByHostel(ctx context.Context, hostelID int64) ([]domain.Room, error) {
	var rows []roomModel
	if err := r.db.WithContext(ctx).Where("hostel_id = ?", hostelID).Order("number ASC").Find(&rows).Error; err != nil {
		return nil, translate(err, "list rooms of hostel %d", hostelID)
	}
	out := make([]domain.Room, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainRoom(m))
	}
	return out, nil
}

// SetStatus overwrites the status unconditionally.
func (r *RoomRepository) SetStatus(ctx context.Context, id int64, status domain.RoomStatus) error {
	res := r.db.WithContext(ctx).Model(&roomModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return translate(res.Error, "update room %d", id)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "room %d", id)
	}
	return nil
}

// CompareAndSetStatus moves the room from one status to another only if it still
// holds the expected one. It reports whether the row changed.
func (r *RoomRepository) CompareAndSetStatus(ctx context.Context, id int64, from, to domain.RoomStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&roomModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, translate(res.Error, "update room %d", id)
	}
	return res.RowsAffected > 0, nil
}

// FindInBatches walks every room ordered by id.
func (r *RoomRepository) FindInBatches(ctx context.Context, size int, fn func(rooms []domain.Room) error) error {
	var rows []roomModel
	res := r.db.WithContext(ctx).Order("id ASC").FindInBatches(&rows, size, func(tx *gorm.DB, batch int) error {
		rooms := make([]domain.Room, 0, len(rows))
		for _, m := range rows {
			rooms = append(rooms, *toDomainRoom(m))
		}
		return fn(rooms)
	})
	if res.Error != nil {
		return translate(res.Error, "scan rooms")
	}
	return nil
}

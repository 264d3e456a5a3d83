package repository

import (
	"context"
	"errors"
	"strings"

	"hostelcore/internal/domain"

	"gorm.io/gorm"
)

type GuestRepository struct {
	db *gorm.DB
}

func NewGuestRepository(db *gorm.DB) *GuestRepository {
	return &GuestRepository{db: db}
}

func toDomainGuest(m guestModel) *domain.Guest {
	return &domain.Guest{
		ID:                m.ID,
		Name:              m.Name,
		Email:             m.Email,
		Phone:             strVal(m.Phone),
		Role:              domain.GuestRole(m.Role),
		PasswordHash:      m.PasswordHash,
		MustResetPassword: m.MustResetPassword,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toGuestModel(g *domain.Guest) guestModel {
	role := g.Role
	if role == "" {
		role = domain.RoleGuest
	}
	return guestModel{
		ID:                g.ID,
		Name:              strings.TrimSpace(g.Name),
		Email:             normalizeEmail(g.Email),
		Phone:             strPtr(g.Phone),
		Role:              string(role),
		PasswordHash:      g.PasswordHash,
		MustResetPassword: g.MustResetPassword,
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         g.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (r *GuestRepository) Create(ctx context.Context, g *domain.Guest) error {
	m := toGuestModel(g)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "guest with email %s", m.Email)
	}
	*g = *toDomainGuest(m)
	return nil
}

func (r *GuestRepository) GetByID(ctx context.Context, id int64) (*domain.Guest, error) {
	var m guestModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "guest %d", id)
	}
	return toDomainGuest(m), nil
}

// FindByEmail returns nil without error when no guest has the email.
func (r *GuestRepository) FindByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	var m guestModel
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "guest with email %s", email)
	}
	return toDomainGuest(m), nil
}

// UpdatePassword stores a new hash and clears the forced-reset flag.
func (r *GuestRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res := r.db.WithContext(ctx).Model(&guestModel{}).Where("id = ?", id).
		Updates(map[string]interface{}{"password_hash": hash, "must_reset_password": false})
	if res.Error != nil {
		return translate(res.Error, "guest %d", id)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "guest %d", id)
	}
	return nil
}

package auth

import (
	"context"

	"hostelcore/internal/domain"
)

// GuestStore is the part of the guest storage that auth uses.
type GuestStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Guest, error)
	GetByID(ctx context.Context, id int64) (*domain.Guest, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

type tokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
}

package auth

import (
	"context"
	"fmt"
	"time"

	"hostelcore/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// Service logs guests and staff in and rotates their credentials.
type Service struct {
	guests     GuestStore
	jwt        tokenIssuer
	bcryptCost int
	timeout    time.Duration
}

func NewService(guests GuestStore, jwt tokenIssuer, timeout time.Duration) *Service {
	return &Service{guests: guests, jwt: jwt, bcryptCost: bcrypt.DefaultCost, timeout: timeout}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	g, err := s.guests.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(g.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(g.ID, string(g.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token for guest %d: %w", g.ID, err)
	}
	return &LoginResult{Guest: g, AccessToken: token, MustResetPassword: g.MustResetPassword}, nil
}

// ChangePassword replaces the caller's password and clears a pending forced reset.
func (s *Service) ChangePassword(ctx context.Context, guestID int64, current, next string) error {
	if len(next) < minPasswordLength {
		return ErrWeakPassword
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	g, err := s.guests.GetByID(ctx, guestID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(g.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.guests.UpdatePassword(ctx, guestID, string(hash))
}

func (s *Service) Me(ctx context.Context, guestID int64) (*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.guests.GetByID(ctx, guestID)
}

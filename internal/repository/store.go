package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one database handle.
// A Store passed to a Transaction callback is bound to that transaction.
type Store struct {
	db *gorm.DB

	Rooms    *RoomRepository
	Bookings *BookingRepository
	Payments *PaymentRepository
	Guests   *GuestRepository
	Salaries *SalaryRepository
	Expenses *ExpenseRepository
	Audit    *AuditRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Rooms:    NewRoomRepository(db),
		Bookings: NewBookingRepository(db),
		Payments: NewPaymentRepository(db),
		Guests:   NewGuestRepository(db),
		Salaries: NewSalaryRepository(db),
		Expenses: NewExpenseRepository(db),
		Audit:    NewAuditRepository(db),
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn inside one database transaction. Any error rolls it back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

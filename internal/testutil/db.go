// Package testutil opens throwaway databases and inserts fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"hostelcore/internal/database"
	"hostelcore/internal/domain"
	"hostelcore/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:hostel_test_%s?mode=memory&cache=shared", name)

	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)
	if err := repository.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db
}

func Room(t *testing.T, db *gorm.DB, number string) *domain.Room {
	t.Helper()
	room := &domain.Room{
		HostelID:      1,
		Number:        number,
		Capacity:      2,
		PricePerNight: 500,
		PricePerMonth: 9000,
		Status:        domain.RoomAvailable,
	}
	if err := repository.NewRoomRepository(db).Create(context.Background(), room); err != nil {
		t.Fatalf("create room %s: %v", number, err)
	}
	return room
}

func Guest(t *testing.T, db *gorm.DB, email string, role domain.GuestRole) *domain.Guest {
	t.Helper()
	g := &domain.Guest{
		Name:         "Guest " + email,
		Email:        email,
		Phone:        "+919876543210",
		Role:         role,
		PasswordHash: "x",
	}
	if err := repository.NewGuestRepository(db).Create(context.Background(), g); err != nil {
		t.Fatalf("create guest %s: %v", email, err)
	}
	return g
}

// Booking inserts a booking row directly, bypassing lifecycle checks.
func Booking(t *testing.T, db *gorm.DB, roomID, guestID int64, checkin, checkout string, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	in, out := Date(t, checkin), Date(t, checkout)
	b := &domain.Booking{
		RoomID:       roomID,
		GuestID:      guestID,
		Checkin:      in,
		Checkout:     out,
		Status:       status,
		Price:        1000,
		BookingType:  domain.BookingDaily,
		DurationDays: domain.StayDays(in, out),
	}
	if err := repository.NewBookingRepository(db).Create(context.Background(), b); err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func Salary(t *testing.T, db *gorm.DB, staffID int64, period string, amount float64) *domain.SalaryRecord {
	t.Helper()
	s := &domain.SalaryRecord{StaffID: staffID, Period: period, Amount: amount}
	if err := repository.NewSalaryRepository(db).Create(context.Background(), s); err != nil {
		t.Fatalf("create salary: %v", err)
	}
	return s
}

func Expense(t *testing.T, db *gorm.DB, category string, amount float64) *domain.Expense {
	t.Helper()
	e := &domain.Expense{HostelID: 1, Category: category, Amount: amount}
	if err := repository.NewExpenseRepository(db).Create(context.Background(), e); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return e
}

// Date parses YYYY-MM-DD as midnight UTC.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

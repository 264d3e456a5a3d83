package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

const bookingOverlapConstraint = `DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_active_overlap') THEN
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_active_overlap
			EXCLUDE USING gist (room_id WITH =, tstzrange(checkin, checkout, '[)') WITH &&)
			WHERE (status IN ('CONFIRMED', 'CHECKED_IN'));
	END IF;
END $$`

// Migrate creates or updates every table. On PostgreSQL it also installs the
// exclusion constraint that rejects overlapping active bookings for one room.
// It is safe to run on every start.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(
		&roomModel{},
		&guestModel{},
		&bookingModel{},
		&paymentModel{},
		&salaryModel{},
		&expenseModel{},
		&auditModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return fmt.Errorf("install btree_gist: %w", err)
	}
	if err := db.Exec(bookingOverlapConstraint).Error; err != nil {
		return fmt.Errorf("install booking overlap constraint: %w", err)
	}
	return nil
}

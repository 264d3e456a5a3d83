package repository

import (
	"time"

	"gorm.io/datatypes"
)

type roomModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	HostelID      int64     `gorm:"column:hostel_id;not null;uniqueIndex:idx_rooms_hostel_number"`
	Number        string    `gorm:"column:number;not null;uniqueIndex:idx_rooms_hostel_number"`
	Capacity      int       `gorm:"column:capacity;not null;default:1"`
	PricePerNight float64   `gorm:"column:price_per_night;not null"`
	PricePerMonth float64   `gorm:"column:price_per_month;not null"`
	Status        string    `gorm:"column:status;not null;index"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

type bookingModel struct {
	ID           int64       `gorm:"column:id;primaryKey"`
	RoomID       int64       `gorm:"column:room_id;not null;index:idx_bookings_room_status"`
	GuestID      int64       `gorm:"column:guest_id;not null;index"`
	Checkin      time.Time   `gorm:"column:checkin;not null"`
	Checkout     time.Time   `gorm:"column:checkout;not null"`
	Status       string      `gorm:"column:status;not null;index:idx_bookings_room_status"`
	Price        float64     `gorm:"column:price;not null"`
	BookingType  string      `gorm:"column:booking_type;not null"`
	DurationDays int         `gorm:"column:duration_days;not null"`
	Notes        *string     `gorm:"column:notes"`
	CreatedAt    time.Time   `gorm:"column:created_at"`
	UpdatedAt    time.Time   `gorm:"column:updated_at"`
	Room         *roomModel  `gorm:"foreignKey:RoomID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Guest        *guestModel `gorm:"foreignKey:GuestID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (bookingModel) TableName() string { return "bookings" }

type paymentModel struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	OriginType      string     `gorm:"column:origin_type;not null;uniqueIndex:idx_payments_origin"`
	OriginID        int64      `gorm:"column:origin_id;not null;uniqueIndex:idx_payments_origin"`
	Amount          float64    `gorm:"column:amount;not null"`
	Method          string     `gorm:"column:method;not null"`
	Status          string     `gorm:"column:status;not null"`
	ApprovalStatus  string     `gorm:"column:approval_status;not null;index"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	Notes           *string    `gorm:"column:notes"`
	ResolvedAt      *time.Time `gorm:"column:resolved_at"`
	ResolvedBy      *int64     `gorm:"column:resolved_by"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (paymentModel) TableName() string { return "payments" }

type guestModel struct {
	ID                int64     `gorm:"column:id;primaryKey"`
	Name              string    `gorm:"column:name;not null"`
	Email             string    `gorm:"column:email;not null;uniqueIndex"`
	Phone             *string   `gorm:"column:phone"`
	Role              string    `gorm:"column:role;not null"`
	PasswordHash      string    `gorm:"column:password_hash;not null"`
	MustResetPassword bool      `gorm:"column:must_reset_password;not null;default:false"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (guestModel) TableName() string { return "guests" }

type salaryModel struct {
	ID        int64      `gorm:"column:id;primaryKey"`
	StaffID   int64      `gorm:"column:staff_id;not null;uniqueIndex:idx_salary_staff_period"`
	Period    string     `gorm:"column:period;not null;uniqueIndex:idx_salary_staff_period"`
	Amount    float64    `gorm:"column:amount;not null"`
	Status    string     `gorm:"column:status;not null"`
	PaidAt    *time.Time `gorm:"column:paid_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (salaryModel) TableName() string { return "salary_records" }

type expenseModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	HostelID    int64      `gorm:"column:hostel_id;not null;index"`
	Category    string     `gorm:"column:category;not null"`
	Description string     `gorm:"column:description"`
	Amount      float64    `gorm:"column:amount;not null"`
	Status      string     `gorm:"column:status;not null"`
	ApprovedAt  *time.Time `gorm:"column:approved_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
}

func (expenseModel) TableName() string { return "expenses" }

type auditModel struct {
	ID           int64          `gorm:"column:id;primaryKey"`
	ActorID      int64          `gorm:"column:actor_id;not null"`
	Action       string         `gorm:"column:action;not null"`
	ResourceType string         `gorm:"column:resource_type;not null;index:idx_audit_resource"`
	ResourceID   int64          `gorm:"column:resource_id;not null;index:idx_audit_resource"`
	Details      datatypes.JSON `gorm:"column:details"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
}

func (auditModel) TableName() string { return "audit_log" }

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

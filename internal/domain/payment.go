package domain

import (
	"fmt"
	"time"
)

type OriginType string

const (
	OriginBooking OriginType = "BOOKING"
	OriginSalary  OriginType = "SALARY"
	OriginExpense OriginType = "EXPENSE"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodCard         PaymentMethod = "CARD"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodUPI          PaymentMethod = "UPI"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodUPI:
		return true
	}
	return false
}

type Payment struct {
	ID              int64          `json:"id"`
	OriginType      OriginType     `json:"origin_type"`
	OriginID        int64          `json:"origin_id"`
	Amount          float64        `json:"amount"`
	Method          PaymentMethod  `json:"method"`
	Status          PaymentStatus  `json:"status"`
	ApprovalStatus  ApprovalStatus `json:"approval_status"`
	RejectionReason *string        `json:"rejection_reason"`
	Notes           string         `json:"notes,omitempty"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty"`
	ResolvedBy      *int64         `json:"resolved_by,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (p Payment) Origin() (Origin, error) {
	return NewOrigin(p.OriginType, p.OriginID)
}

// Origin is the closed set of entities a payment can settle.
// Code that acts on an origin goes through Accept so that every OriginVisitor
// has to handle every origin kind.
type Origin interface {
	Type() OriginType
	ID() int64
	Accept(v OriginVisitor) error
	origin()
}

type OriginVisitor interface {
	VisitBooking(o BookingOrigin) error
	VisitSalary(o SalaryOrigin) error
	VisitExpense(o ExpenseOrigin) error
}

type BookingOrigin struct{ BookingID int64 }

func (o BookingOrigin) Type() OriginType             { return OriginBooking }
func (o BookingOrigin) ID() int64                    { return o.BookingID }
func (o BookingOrigin) Accept(v OriginVisitor) error { return v.VisitBooking(o) }
func (BookingOrigin) origin()                        {}

type SalaryOrigin struct{ SalaryID int64 }

func (o SalaryOrigin) Type() OriginType             { return OriginSalary }
func (o SalaryOrigin) ID() int64                    { return o.SalaryID }
func (o SalaryOrigin) Accept(v OriginVisitor) error { return v.VisitSalary(o) }
func (SalaryOrigin) origin()                        {}

type ExpenseOrigin struct{ ExpenseID int64 }

func (o ExpenseOrigin) Type() OriginType             { return OriginExpense }
func (o ExpenseOrigin) ID() int64                    { return o.ExpenseID }
func (o ExpenseOrigin) Accept(v OriginVisitor) error { return v.VisitExpense(o) }
func (ExpenseOrigin) origin()                        {}

// NewOrigin converts a stored or requested origin tag into its typed form.
func NewOrigin(t OriginType, id int64) (Origin, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid origin id: %d", id)
	}
	switch t {
	case OriginBooking:
		return BookingOrigin{BookingID: id}, nil
	case OriginSalary:
		return SalaryOrigin{SalaryID: id}, nil
	case OriginExpense:
		return ExpenseOrigin{ExpenseID: id}, nil
	}
	return nil, fmt.Errorf("invalid origin type: %q", t)
}

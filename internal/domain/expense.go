package domain

import "time"

type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "PENDING"
	ExpenseApproved ExpenseStatus = "APPROVED"
	ExpenseRejected ExpenseStatus = "REJECTED"
)

// Expense is an operational cost of a hostel that needs sign-off before it is paid.
type Expense struct {
	ID          int64         `json:"id"`
	HostelID    int64         `json:"hostel_id"`
	Category    string        `json:"category"`
	Description string        `json:"description,omitempty"`
	Amount      float64       `json:"amount"`
	Status      ExpenseStatus `json:"status"`
	ApprovedAt  *time.Time    `json:"approved_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

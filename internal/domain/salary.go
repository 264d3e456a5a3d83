package domain

import "time"

type SalaryStatus string

const (
	SalaryUnpaid SalaryStatus = "UNPAID"
	SalaryPaid   SalaryStatus = "PAID"
)

// SalaryRecord is a staff member's pay for one period.
type SalaryRecord struct {
	ID        int64        `json:"id"`
	StaffID   int64        `json:"staff_id"`
	Period    string       `json:"period"` // YYYY-MM
	Amount    float64      `json:"amount"`
	Status    SalaryStatus `json:"status"`
	PaidAt    *time.Time   `json:"paid_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

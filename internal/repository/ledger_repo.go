package repository

import (
	"context"
	"time"

	"hostelcore/internal/domain"

	"gorm.io/gorm"
)

type SalaryRepository struct {
	db *gorm.DB
}

func NewSalaryRepository(db *gorm.DB) *SalaryRepository {
	return &SalaryRepository{db: db}
}

func toDomainSalary(m salaryModel) *domain.SalaryRecord {
	return &domain.SalaryRecord{
		ID:        m.ID,
		StaffID:   m.StaffID,
		Period:    m.Period,
		Amount:    m.Amount,
		Status:    domain.SalaryStatus(m.Status),
		PaidAt:    m.PaidAt,
		CreatedAt: m.CreatedAt,
	}
}

func (r *SalaryRepository) Create(ctx context.Context, s *domain.SalaryRecord) error {
	status := s.Status
	if status == "" {
		status = domain.SalaryUnpaid
	}
	m := salaryModel{
		StaffID: s.StaffID,
		Period:  s.Period,
		Amount:  s.Amount,
		Status:  string(status),
		PaidAt:  s.PaidAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "salary of staff %d for %s", s.StaffID, s.Period)
	}
	*s = *toDomainSalary(m)
	return nil
}

func (r *SalaryRepository) GetByID(ctx context.Context, id int64) (*domain.SalaryRecord, error) {
	var m salaryModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "salary record %d", id)
	}
	return toDomainSalary(m), nil
}

// MarkPaid moves an UNPAID record to PAID and reports whether it changed.
func (r *SalaryRepository) MarkPaid(ctx context.Context, id int64, at time.Time) (bool, error) {
	paidAt := at.UTC()
	res := r.db.WithContext(ctx).Model(&salaryModel{}).
		Where("id = ? AND status = ?", id, string(domain.SalaryUnpaid)).
		Updates(map[string]interface{}{
			"status":  string(domain.SalaryPaid),
			"paid_at": &paidAt,
		})
	if res.Error != nil {
		return false, translate(res.Error, "mark salary %d paid", id)
	}
	return res.RowsAffected > 0, nil
}

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func toDomainExpense(m expenseModel) *domain.Expense {
	return &domain.Expense{
		ID:          m.ID,
		HostelID:    m.HostelID,
		Category:    m.Category,
		Description: m.Description,
		Amount:      m.Amount,
		Status:      domain.ExpenseStatus(m.Status),
		ApprovedAt:  m.ApprovedAt,
		CreatedAt:   m.CreatedAt,
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	status := e.Status
	if status == "" {
		status = domain.ExpensePending
	}
	m := expenseModel{
		HostelID:    e.HostelID,
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount,
		Status:      string(status),
		ApprovedAt:  e.ApprovedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "expense %s", e.Category)
	}
	*e = *toDomainExpense(m)
	return nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*domain.Expense, error) {
	var m expenseModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "expense %d", id)
	}
	return toDomainExpense(m), nil
}

// MarkApproved moves a PENDING expense to APPROVED and reports whether it changed.
func (r *ExpenseRepository) MarkApproved(ctx context.Context, id int64, at time.Time) (bool, error) {
	approvedAt := at.UTC()
	res := r.db.WithContext(ctx).Model(&expenseModel{}).
		Where("id = ? AND status = ?", id, string(domain.ExpensePending)).
		Updates(map[string]interface{}{
			"status":      string(domain.ExpenseApproved),
			"approved_at": &approvedAt,
		})
	if res.Error != nil {
		return false, translate(res.Error, "approve expense %d", id)
	}
	return res.RowsAffected > 0, nil
}

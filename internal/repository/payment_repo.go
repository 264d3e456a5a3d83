package repository

import (
	"context"
	"errors"
	"time"

	"hostelcore/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func toDomainPayment(m paymentModel) *domain.Payment {
	return &domain.Payment{
		ID:              m.ID,
		OriginType:      domain.OriginType(m.OriginType),
		OriginID:        m.OriginID,
		Amount:          m.Amount,
		Method:          domain.PaymentMethod(m.Method),
		Status:          domain.PaymentStatus(m.Status),
		ApprovalStatus:  domain.ApprovalStatus(m.ApprovalStatus),
		RejectionReason: m.RejectionReason,
		Notes:           strVal(m.Notes),
		ResolvedAt:      m.ResolvedAt,
		ResolvedBy:      m.ResolvedBy,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toPaymentModel(p *domain.Payment) paymentModel {
	return paymentModel{
		ID:              p.ID,
		OriginType:      string(p.OriginType),
		OriginID:        p.OriginID,
		Amount:          p.Amount,
		Method:          string(p.Method),
		Status:          string(p.Status),
		ApprovalStatus:  string(p.ApprovalStatus),
		RejectionReason: p.RejectionReason,
		Notes:           strPtr(p.Notes),
		ResolvedAt:      p.ResolvedAt,
		ResolvedBy:      p.ResolvedBy,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	m := toPaymentModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "payment for %s %d", p.OriginType, p.OriginID)
	}
	*p = *toDomainPayment(m)
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var m paymentModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "payment %d", id)
	}
	return toDomainPayment(m), nil
}

// GetByOrigin returns nil without error when the origin has no payment.
func (r *PaymentRepository) GetByOrigin(ctx context.Context, origin domain.Origin) (*domain.Payment, error) {
	return r.getByOrigin(r.db.WithContext(ctx), origin)
}

// GetByOriginForUpdate is GetByOrigin holding a row lock until the transaction ends.
func (r *PaymentRepository) GetByOriginForUpdate(ctx context.Context, origin domain.Origin) (*domain.Payment, error) {
	return r.getByOrigin(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), origin)
}

func (r *PaymentRepository) getByOrigin(q *gorm.DB, origin domain.Origin) (*domain.Payment, error) {
	var m paymentModel
	err := q.Where("origin_type = ? AND origin_id = ?", string(origin.Type()), origin.ID()).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "payment for %s %d", origin.Type(), origin.ID())
	}
	return toDomainPayment(m), nil
}

// DeleteByOrigin removes the origin's payment whatever its state.
func (r *PaymentRepository) DeleteByOrigin(ctx context.Context, origin domain.Origin) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("origin_type = ? AND origin_id = ?", string(origin.Type()), origin.ID()).
		Delete(&paymentModel{})
	if res.Error != nil {
		return 0, translate(res.Error, "delete payment for %s %d", origin.Type(), origin.ID())
	}
	return res.RowsAffected, nil
}

// DeleteUnapprovedByOrigin removes the origin's payment only while it is not
// APPROVED. It reports 0 for an approved payment, which stays in place.
func (r *PaymentRepository) DeleteUnapprovedByOrigin(ctx context.Context, origin domain.Origin) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("origin_type = ? AND origin_id = ? AND approval_status <> ?",
			string(origin.Type()), origin.ID(), string(domain.ApprovalApproved)).
		Delete(&paymentModel{})
	if res.Error != nil {
		return 0, translate(res.Error, "delete payment for %s %d", origin.Type(), origin.ID())
	}
	return res.RowsAffected, nil
}

// Resolution is the terminal approval outcome written by Resolve.
type Resolution struct {
	Approval        domain.ApprovalStatus
	Status          domain.PaymentStatus
	RejectionReason *string
	ActorID         int64
	At              time.Time
}

// Resolve moves a PENDING payment to its resolution. It reports false when the
// payment is missing or no longer pending; the caller tells the two apart.
func (r *PaymentRepository) Resolve(ctx context.Context, id int64, res Resolution) (bool, error) {
	actor := res.ActorID
	at := res.At.UTC()
	out := r.db.WithContext(ctx).Model(&paymentModel{}).
		Where("id = ? AND approval_status = ?", id, string(domain.ApprovalPending)).
		Updates(map[string]interface{}{
			"approval_status":  string(res.Approval),
			"status":           string(res.Status),
			"rejection_reason": res.RejectionReason,
			"resolved_at":      &at,
			"resolved_by":      &actor,
			"updated_at":       at,
		})
	if out.Error != nil {
		return false, translate(out.Error, "resolve payment %d", id)
	}
	return out.RowsAffected > 0, nil
}

package payment

import (
	"context"
	"log"
	"strings"
	"time"

	"hostelcore/internal/domain"
	"hostelcore/internal/notify"
	"hostelcore/internal/pkg/apperror"
	"hostelcore/internal/repository"

	"gorm.io/gorm"
)

// Coordinator resolves pending payments of every origin type. Each payment is
// resolved exactly once; the origin side effect runs in the same transaction as
// the resolution.
type Coordinator struct {
	store     *repository.Store
	timeout   time.Duration
	publisher notify.Publisher
	loggerf   func(format string, args ...interface{})
	now       func() time.Time
}

func NewCoordinator(db *gorm.DB, timeout time.Duration, publisher notify.Publisher) *Coordinator {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Coordinator{
		store:     repository.NewStore(db),
		timeout:   timeout,
		publisher: publisher,
		loggerf:   log.Printf,
		now:       time.Now,
	}
}

func (c *Coordinator) Approve(ctx context.Context, paymentID, actorID int64) (*domain.Payment, error) {
	return c.resolve(ctx, paymentID, actorID, repository.Resolution{
		Approval: domain.ApprovalApproved,
		Status:   domain.PaymentCompleted,
	})
}

// Reject fails the payment and leaves its origin as it was, so that a new
// payment can be opened for it.
func (c *Coordinator) Reject(ctx context.Context, paymentID, actorID int64, reason string) (*domain.Payment, error) {
	res := repository.Resolution{
		Approval: domain.ApprovalRejected,
		Status:   domain.PaymentFailed,
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		res.RejectionReason = &reason
	}
	return c.resolve(ctx, paymentID, actorID, res)
}

func (c *Coordinator) resolve(ctx context.Context, paymentID, actorID int64, res repository.Resolution) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res.ActorID = actorID
	res.At = c.now()

	var out *domain.Payment
	err := c.store.Transaction(ctx, func(tx *repository.Store) error {
		p, err := tx.Payments.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.ApprovalStatus != domain.ApprovalPending {
			return apperror.StaleState("payment %d is already %s", paymentID, p.ApprovalStatus)
		}

		ok, err := tx.Payments.Resolve(ctx, paymentID, res)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.StaleState("payment %d was resolved concurrently", paymentID)
		}

		if res.Approval == domain.ApprovalApproved {
			origin, err := p.Origin()
			if err != nil {
				return err
			}
			if err := origin.Accept(&settleOrigin{ctx: ctx, tx: tx, at: res.At}); err != nil {
				return err
			}
		}

		action := domain.AuditPaymentApproved
		if res.Approval == domain.ApprovalRejected {
			action = domain.AuditPaymentRejected
		}
		details := map[string]interface{}{"origin_type": string(p.OriginType), "origin_id": p.OriginID}
		if res.RejectionReason != nil {
			details["reason"] = *res.RejectionReason
		}
		if err := tx.Audit.Record(ctx, &domain.AuditEntry{
			ActorID:      actorID,
			Action:       action,
			ResourceType: "payment",
			ResourceID:   paymentID,
			Details:      details,
		}); err != nil {
			return err
		}

		out, err = tx.Payments.GetByID(ctx, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	eventType := notify.EventPaymentApproved
	if res.Approval == domain.ApprovalRejected {
		eventType = notify.EventPaymentRejected
	}
	c.publisher.Publish(paymentEvent(eventType, out, actorID))
	c.loggerf("level=info msg=\"payment resolved\" payment_id=%d approval=%s actor_id=%d", out.ID, out.ApprovalStatus, actorID)
	return out, nil
}

// settleOrigin applies the approval of a payment to the entity it pays for.
type settleOrigin struct {
	ctx context.Context
	tx  *repository.Store
	at  time.Time
}

// VisitBooking only checks the booking still exists; its status is driven by
// the booking lifecycle, not by payment.
func (s *settleOrigin) VisitBooking(o domain.BookingOrigin) error {
	_, err := s.tx.Bookings.GetByID(s.ctx, o.BookingID)
	return err
}

func (s *settleOrigin) VisitSalary(o domain.SalaryOrigin) error {
	ok, err := s.tx.Salaries.MarkPaid(s.ctx, o.SalaryID, s.at)
	if err != nil {
		return err
	}
	if !ok {
		if _, err := s.tx.Salaries.GetByID(s.ctx, o.SalaryID); err != nil {
			return err
		}
		return apperror.StaleState("salary record %d is already paid", o.SalaryID)
	}
	return nil
}

func (s *settleOrigin) VisitExpense(o domain.ExpenseOrigin) error {
	ok, err := s.tx.Expenses.MarkApproved(s.ctx, o.ExpenseID, s.at)
	if err != nil {
		return err
	}
	if !ok {
		e, err := s.tx.Expenses.GetByID(s.ctx, o.ExpenseID)
		if err != nil {
			return err
		}
		return apperror.StaleState("expense %d is %s, expected PENDING", o.ExpenseID, e.Status)
	}
	return nil
}

package payment

import (
	"context"
	"log"
	"time"

	"hostelcore/internal/domain"
	"hostelcore/internal/notify"
	"hostelcore/internal/pkg/apperror"
	"hostelcore/internal/repository"

	"gorm.io/gorm"
)

// OpenRequest asks the ledger for a new payment against an origin.
// A nil Amount takes the origin's own amount.
type OpenRequest struct {
	Origin  domain.Origin
	Amount  *float64
	Method  domain.PaymentMethod
	Notes   string
	ActorID int64
}

// Ledger owns payment records. There is at most one payment per origin: opening
// a payment replaces a PENDING or REJECTED one and refuses to replace an APPROVED one.
type Ledger struct {
	store     *repository.Store
	timeout   time.Duration
	publisher notify.Publisher
	loggerf   func(format string, args ...interface{})
}

func NewLedger(db *gorm.DB, timeout time.Duration, publisher notify.Publisher) *Ledger {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Ledger{
		store:     repository.NewStore(db),
		timeout:   timeout,
		publisher: publisher,
		loggerf:   log.Printf,
	}
}

func (l *Ledger) OpenPayment(ctx context.Context, req OpenRequest) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var p *domain.Payment
	err := l.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		p, err = l.OpenTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.publisher.Publish(paymentEvent(notify.EventPaymentOpened, p, req.ActorID))
	return p, nil
}

// OpenTx opens a payment inside the caller's transaction.
func (l *Ledger) OpenTx(ctx context.Context, tx *repository.Store, req OpenRequest) (*domain.Payment, error) {
	if req.Origin == nil {
		return nil, apperror.Validation("payment origin is required")
	}
	if !req.Method.IsValid() {
		return nil, apperror.Validation("invalid payment method %q", req.Method)
	}
	if req.Amount != nil && *req.Amount <= 0 {
		return nil, apperror.Validation("payment amount must be positive, got %.2f", *req.Amount)
	}

	lookup := &originLookup{ctx: ctx, tx: tx}
	if err := req.Origin.Accept(lookup); err != nil {
		return nil, err
	}
	amount := lookup.amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount <= 0 {
		return nil, apperror.Validation("%s %d has no payable amount", req.Origin.Type(), req.Origin.ID())
	}

	existing, err := tx.Payments.GetByOriginForUpdate(ctx, req.Origin)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.ApprovalStatus == domain.ApprovalApproved {
			return nil, apperror.Conflict("%s %d already has approved payment %d", req.Origin.Type(), req.Origin.ID(), existing.ID)
		}
		deleted, err := tx.Payments.DeleteUnapprovedByOrigin(ctx, req.Origin)
		if err != nil {
			return nil, err
		}
		if deleted == 0 {
			return nil, apperror.Conflict("payment %d for %s %d was approved concurrently", existing.ID, req.Origin.Type(), req.Origin.ID())
		}
		l.loggerf("level=info msg=\"payment superseded\" payment_id=%d origin=%s/%d", existing.ID, req.Origin.Type(), req.Origin.ID())
	}

	p := &domain.Payment{
		OriginType:     req.Origin.Type(),
		OriginID:       req.Origin.ID(),
		Amount:         amount,
		Method:         req.Method,
		Status:         domain.PaymentPending,
		ApprovalStatus: domain.ApprovalPending,
		Notes:          req.Notes,
	}
	if err := tx.Payments.Create(ctx, p); err != nil {
		return nil, err
	}

	details := map[string]interface{}{"origin_type": string(p.OriginType), "origin_id": p.OriginID, "amount": p.Amount}
	if existing != nil {
		details["superseded"] = existing.ID
	}
	if err := tx.Audit.Record(ctx, &domain.AuditEntry{
		ActorID:      req.ActorID,
		Action:       domain.AuditPaymentOpened,
		ResourceType: "payment",
		ResourceID:   p.ID,
		Details:      details,
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// HandleBookingEvent opens the payment of a new booking and removes the payment
// of a deleted one, inside the booking's transaction.
func (l *Ledger) HandleBookingEvent(ctx context.Context, tx *repository.Store, evt domain.BookingEvent) error {
	origin := domain.BookingOrigin{BookingID: evt.Booking.ID}

	switch evt.Type {
	case domain.BookingCreated:
		if evt.Booking.Price <= 0 {
			l.loggerf("level=info msg=\"free booking, no payment opened\" booking_id=%d", evt.Booking.ID)
			return nil
		}
		method := evt.PaymentMethod
		if method == "" {
			method = domain.MethodCash
		}
		price := evt.Booking.Price
		_, err := l.OpenTx(ctx, tx, OpenRequest{Origin: origin, Amount: &price, Method: method, ActorID: evt.ActorID})
		return err
	case domain.BookingDeleted:
		_, err := tx.Payments.DeleteByOrigin(ctx, origin)
		return err
	}
	return nil
}

func (l *Ledger) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.store.Payments.GetByID(ctx, id)
}

// originLookup checks that an origin can take a payment and finds its default amount.
type originLookup struct {
	ctx    context.Context
	tx     *repository.Store
	amount float64
}

func (o *originLookup) VisitBooking(origin domain.BookingOrigin) error {
	b, err := o.tx.Bookings.GetByID(o.ctx, origin.BookingID)
	if err != nil {
		return err
	}
	if b.Status == domain.BookingCancelled {
		return apperror.Conflict("booking %d is cancelled", b.ID)
	}
	room, err := o.tx.Rooms.GetByID(o.ctx, b.RoomID)
	if err != nil {
		return err
	}
	if b.BookingType == domain.BookingMonthly {
		o.amount = room.PricePerMonth
	} else {
		o.amount = room.PricePerNight
	}
	return nil
}

func (o *originLookup) VisitSalary(origin domain.SalaryOrigin) error {
	s, err := o.tx.Salaries.GetByID(o.ctx, origin.SalaryID)
	if err != nil {
		return err
	}
	if s.Status == domain.SalaryPaid {
		return apperror.Conflict("salary record %d is already paid", s.ID)
	}
	o.amount = s.Amount
	return nil
}

func (o *originLookup) VisitExpense(origin domain.ExpenseOrigin) error {
	e, err := o.tx.Expenses.GetByID(o.ctx, origin.ExpenseID)
	if err != nil {
		return err
	}
	if e.Status == domain.ExpenseApproved {
		return apperror.Conflict("expense %d is already approved", e.ID)
	}
	o.amount = e.Amount
	return nil
}

func paymentEvent(eventType string, p *domain.Payment, actorID int64) notify.Event {
	evt := notify.NewEvent(eventType, "payment", p.ID, p)
	evt.ActorID = actorID
	return evt
}

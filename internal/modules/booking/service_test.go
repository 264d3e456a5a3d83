package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hostelcore/internal/domain"
	"hostelcore/internal/modules/availability"
	"hostelcore/internal/modules/guest"
	"hostelcore/internal/modules/payment"
	"hostelcore/internal/modules/roomstatus"
	"hostelcore/internal/notify"
	"hostelcore/internal/pkg/apperror"
	"hostelcore/internal/repository"
	"hostelcore/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(evt notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db      *gorm.DB
	store   *repository.Store
	service *Service
	pub     *recordingPublisher
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	pub := &recordingPublisher{}
	directory := guest.NewDirectory(db, "IN", 5*time.Second)
	syncer := roomstatus.NewSynchronizer(db, 5*time.Second, pub)
	ledger := payment.NewLedger(db, 5*time.Second, pub)
	s := NewService(db, directory, pub, 5*time.Second, syncer, ledger)
	s.loggerf = t.Logf
	return &fixture{db: db, store: repository.NewStore(db), service: s, pub: pub}
}

func day(t *testing.T, s string) *time.Time {
	d := testutil.Date(t, s)
	return &d
}

func (f *fixture) roomStatus(t *testing.T, id int64) domain.RoomStatus {
	t.Helper()
	room, err := f.store.Rooms.GetByID(context.Background(), id)
	require.NoError(t, err)
	return room.Status
}

func TestCheckinLifecycleDrivesRoomStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := testutil.Room(t, f.db, "R101")
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)

	b, err := f.service.CreateBooking(ctx, CreateRequest{
		RoomID:      room.ID,
		Guest:       guest.Ref{ID: g.ID},
		Checkin:     day(t, "2024-01-10"),
		Checkout:    day(t, "2024-01-15"),
		BookingType: domain.BookingDaily,
		ActorID:     3,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, 5, b.DurationDays)
	assert.Equal(t, 5*room.PricePerNight, b.Price)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t, room.ID))

	_, err = f.service.TransitionStatus(ctx, b.ID, domain.BookingConfirmed, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t, room.ID))

	_, err = f.service.TransitionStatus(ctx, b.ID, domain.BookingCheckedIn, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomOccupied, f.roomStatus(t, room.ID))

	avail, err := availability.NewService(f.db, 5*time.Second).
		CheckAvailability(ctx, room.ID, testutil.Date(t, "2024-01-12"), testutil.Date(t, "2024-01-14"))
	require.NoError(t, err)
	assert.False(t, avail.Available)

	out, err := f.service.TransitionStatus(ctx, b.ID, domain.BookingCheckedOut, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCheckedOut, out.Status)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t, room.ID))

	history, err := f.service.History(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, domain.AuditBookingCreated, history[0].Action)
	assert.Equal(t, "CHECKED_IN", history[3].Details["from"])
}

func TestCreateBooking_OpensPayment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := testutil.Room(t, f.db, "R101")
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)

	b, err := f.service.CreateBooking(ctx, CreateRequest{
		RoomID: room.ID, Guest: guest.Ref{ID: g.ID},
		Checkin: day(t, "2024-02-01"), Checkout: day(t, "2024-02-03"),
		BookingType: domain.BookingDaily, PaymentMethod: domain.MethodUPI,
	})
	require.NoError(t, err)

	p, err := f.store.Payments.GetByOrigin(ctx, domain.BookingOrigin{BookingID: b.ID})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, b.Price, p.Amount)
	assert.Equal(t, domain.MethodUPI, p.Method)
	assert.Equal(t, domain.ApprovalPending, p.ApprovalStatus)
	assert.Contains(t, f.pub.types(), notify.EventBookingCreated)

	free := 0.0
	fb, err := f.service.CreateBooking(ctx, CreateRequest{
		RoomID: room.ID, Guest: guest.Ref{ID: g.ID},
		Checkin: day(t, "2024-03-01"), Checkout: day(t, "2024-03-02"),
		BookingType: domain.BookingDaily, Price: &free,
	})
	require.NoError(t, err)
	p, err = f.store.Payments.GetByOrigin(ctx, domain.BookingOrigin{BookingID: fb.ID})
	require.NoError(t, err)
	assert.Nil(t, p, "free stays carry no payment")
}

func TestCreateBooking_MonthlyDefaults(t *testing.T) {
	f := setup(t)
	f.service.now = func() time.Time { return time.Date(2025, 3, 5, 18, 30, 0, 0, time.UTC) }
	room := testutil.Room(t, f.db, "R201")
	g := testutil.Guest(t, f.db, "m@example.com", domain.RoleGuest)

	b, err := f.service.CreateBooking(context.Background(), CreateRequest{
		RoomID: room.ID, Guest: guest.Ref{ID: g.ID}, BookingType: domain.BookingMonthly,
	})
	require.NoError(t, err)
	assert.True(t, b.Checkin.Equal(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, b.Checkout.Equal(time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, domain.MonthlyStayDays, b.DurationDays)
	assert.Equal(t, room.PricePerMonth, b.Price)
}

func TestCreateBooking_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := testutil.Room(t, f.db, "R101")
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)
	negative := -1.0

	cases := map[string]CreateRequest{
		"checkout before checkin": {RoomID: room.ID, Guest: guest.Ref{ID: g.ID}, Checkin: day(t, "2024-01-15"), Checkout: day(t, "2024-01-10"), BookingType: domain.BookingDaily},
		"empty range":             {RoomID: room.ID, Guest: guest.Ref{ID: g.ID}, Checkin: day(t, "2024-01-10"), Checkout: day(t, "2024-01-10"), BookingType: domain.BookingDaily},
		"daily without dates":     {RoomID: room.ID, Guest: guest.Ref{ID: g.ID}, BookingType: domain.BookingDaily},
		"no guest":                {RoomID: room.ID, Checkin: day(t, "2024-01-10"), Checkout: day(t, "2024-01-11"), BookingType: domain.BookingDaily},
		"unknown type":            {RoomID: room.ID, Guest: guest.Ref{ID: g.ID}, Checkin: day(t, "2024-01-10"), Checkout: day(t, "2024-01-11"), BookingType: "WEEKLY"},
		"negative price":          {RoomID: room.ID, Guest: guest.Ref{ID: g.ID}, Checkin: day(t, "2024-01-10"), Checkout: day(t, "2024-01-11"), BookingType: domain.BookingDaily, Price: &negative},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.CreateBooking(ctx, req)
			assert.True(t, errors.Is(err, apperror.ErrValidation), "got %v", err)
		})
	}

	_, err := f.service.CreateBooking(ctx, CreateRequest{RoomID: 999, Guest: guest.Ref{ID: g.ID}, Checkin: day(t, "2024-01-10"), Checkout: day(t, "2024-01-11"), BookingType: domain.BookingDaily})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = f.service.CreateBooking(ctx, CreateRequest{RoomID: room.ID, Guest: guest.Ref{ID: 999}, Checkin: day(t, "2024-01-10"), Checkout: day(t, "2024-01-11"), BookingType: domain.BookingDaily})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestCreateBooking_RejectsBlockedRoomAndOverlap(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := testutil.Room(t, f.db, "R101")
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)
	testutil.Booking(t, f.db, room.ID, g.ID, "2024-05-10", "2024-05-15", domain.BookingConfirmed)

	_, err := f.service.CreateBooking(ctx, CreateRequest{
		RoomID: room.ID, Guest: guest.Ref{ID: g.ID},
		Checkin: day(t, "2024-05-14"), Checkout: day(t, "2024-05-16"), BookingType: domain.BookingDaily,
	})
	require.True(t, errors.Is(err, apperror.ErrConflict))
	assert.Contains(t, apperror.Message(err), availability.ReasonOverlap)

	_, err = f.service.CreateBooking(ctx, CreateRequest{
		RoomID: room.ID, Guest: guest.Ref{ID: g.ID},
		Checkin: day(t, "2024-05-15"), Checkout: day(t, "2024-05-16"), BookingType: domain.BookingDaily,
	})
	require.NoError(t, err, "checkout day is free for the next checkin")

	require.NoError(t, f.store.Rooms.SetStatus(ctx, room.ID, domain.RoomMaintenance))
	_, err = f.service.CreateBooking(ctx, CreateRequest{
		RoomID: room.ID, Guest: guest.Ref{ID: g.ID},
		Checkin: day(t, "2024-07-01"), Checkout: day(t, "2024-07-02"), BookingType: domain.BookingDaily,
	})
	require.True(t, errors.Is(err, apperror.ErrConflict))
	assert.Contains(t, apperror.Message(err), availability.ReasonRoomBlocked)
}

func TestCreateBooking_PendingBookingsDoNotBlock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := testutil.Room(t, f.db, "R101")
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)

	req := CreateRequest{
		RoomID: room.ID, Guest: guest.Ref{ID: g.ID},
		Checkin: day(t, "2024-06-01"), Checkout: day(t, "2024-06-05"), BookingType: domain.BookingDaily,
	}
	first, err := f.service.CreateBooking(ctx, req)
	require.NoError(t, err)
	second, err := f.service.CreateBooking(ctx, req)
	require.NoError(t, err)

	_, err = f.service.TransitionStatus(ctx, first.ID, domain.BookingConfirmed, 1)
	require.NoError(t, err)
	_, err = f.service.TransitionStatus(ctx, second.ID, domain.BookingConfirmed, 1)
	require.True(t, errors.Is(err, apperror.ErrConflict))

	got, err := f.service.GetBooking(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status)
}

func TestCreateBooking_ProvisionsNewGuest(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := testutil.Room(t, f.db, "R101")
	ng := &domain.NewGuest{Name: "Asha Rao", Email: "Asha@Example.com", Phone: "8123456789"}

	b, err := f.service.CreateBooking(ctx, CreateRequest{
		RoomID: room.ID, Guest: guest.Ref{New: ng},
		Checkin: day(t, "2024-01-10"), Checkout: day(t, "2024-01-12"), BookingType: domain.BookingDaily,
	})
	require.NoError(t, err)

	created, err := f.store.Guests.FindByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, created.ID, b.GuestID)
	assert.True(t, created.MustResetPassword)

	again, err := f.service.CreateBooking(ctx, CreateRequest{
		RoomID: room.ID, Guest: guest.Ref{New: ng},
		Checkin: day(t, "2024-02-10"), Checkout: day(t, "2024-02-12"), BookingType: domain.BookingDaily,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.GuestID, "existing email is reused")
}

func TestCreateBooking_ConflictRollsBackProvisionedGuest(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := testutil.Room(t, f.db, "R101")
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)
	testutil.Booking(t, f.db, room.ID, g.ID, "2024-05-10", "2024-05-15", domain.BookingCheckedIn)

	_, err := f.service.CreateBooking(ctx, CreateRequest{
		RoomID:      room.ID,
		Guest:       guest.Ref{New: &domain.NewGuest{Name: "Late Comer", Email: "late@example.com", Phone: "8123456789"}},
		Checkin:     day(t, "2024-05-12"),
		Checkout:    day(t, "2024-05-13"),
		BookingType: domain.BookingDaily,
	})
	require.True(t, errors.Is(err, apperror.ErrConflict))

	found, err := f.store.Guests.FindByEmail(ctx, "late@example.com")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestTransitionStatus_FollowsStateMachine(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)
	all := []domain.BookingStatus{
		domain.BookingPending, domain.BookingConfirmed, domain.BookingCheckedIn,
		domain.BookingCheckedOut, domain.BookingCancelled,
	}

	for i, from := range all {
		for j, to := range all {
			room := testutil.Room(t, f.db, fmt.Sprintf("S%d%d", i, j))
			b := testutil.Booking(t, f.db, room.ID, g.ID, "2024-01-10", "2024-01-12", from)

			got, err := f.service.TransitionStatus(ctx, b.ID, to, 1)
			if from.CanTransitionTo(to) {
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, got.Status)
				continue
			}
			assert.True(t, errors.Is(err, apperror.ErrInvalidTransition), "%s -> %s: %v", from, to, err)
			stored, err := f.service.GetBooking(ctx, b.ID)
			require.NoError(t, err)
			assert.Equal(t, from, stored.Status)
		}
	}
}

func TestTransitionStatus_CheckinRefusedOnBlockedRoom(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)

	for _, blocked := range []domain.RoomStatus{domain.RoomMaintenance, domain.RoomOutOfOrder} {
		room := testutil.Room(t, f.db, "B-"+string(blocked))
		b := testutil.Booking(t, f.db, room.ID, g.ID, "2024-03-01", "2024-03-04", domain.BookingConfirmed)
		require.NoError(t, f.store.Rooms.SetStatus(ctx, room.ID, blocked))

		_, err := f.service.TransitionStatus(ctx, b.ID, domain.BookingCheckedIn, 1)
		require.True(t, errors.Is(err, apperror.ErrConflict), "%s: %v", blocked, err)

		stored, err := f.service.GetBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingConfirmed, stored.Status)
		assert.Equal(t, blocked, f.roomStatus(t, room.ID), "override survives")

		_, err = f.service.TransitionStatus(ctx, b.ID, domain.BookingCancelled, 1)
		require.NoError(t, err, "cancelling is still allowed")
		assert.Equal(t, blocked, f.roomStatus(t, room.ID))
	}
}

func TestTransitionStatus_UnknownBooking(t *testing.T) {
	f := setup(t)
	_, err := f.service.TransitionStatus(context.Background(), 404, domain.BookingConfirmed, 1)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = f.service.TransitionStatus(context.Background(), 1, "ARCHIVED", 1)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestCancelCheckedInBookingFreesRoom(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := testutil.Room(t, f.db, "R101")
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)
	b := testutil.Booking(t, f.db, room.ID, g.ID, "2024-01-10", "2024-01-12", domain.BookingConfirmed)

	_, err := f.service.TransitionStatus(ctx, b.ID, domain.BookingCheckedIn, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomOccupied, f.roomStatus(t, room.ID))

	_, err = f.service.TransitionStatus(ctx, b.ID, domain.BookingCancelled, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t, room.ID))
}

func TestConcurrentConfirmedCreatesOnlyOneWins(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := testutil.Room(t, f.db, "R101")
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)

	const callers = 6
	start := testutil.Date(t, "2024-08-10")
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			in := start.AddDate(0, 0, offset%2)
			out := in.AddDate(0, 0, 3)
			_, err := f.service.CreateBooking(ctx, CreateRequest{
				RoomID: room.ID, Guest: guest.Ref{ID: g.ID},
				Checkin: &in, Checkout: &out, BookingType: domain.BookingDaily, Confirm: true,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperror.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, conflicts)

	active, err := f.service.ListRoomBookings(ctx, room.ID, domain.ActiveBookingStatuses)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestConcurrentConfirmOfOverlappingPendingBookings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := testutil.Room(t, f.db, "R101")
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)

	var ids []int64
	for i := 0; i < 4; i++ {
		b := testutil.Booking(t, f.db, room.ID, g.ID, "2024-09-01", "2024-09-04", domain.BookingPending)
		ids = append(ids, b.ID)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.service.TransitionStatus(ctx, id, domain.BookingConfirmed, 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			assert.True(t, errors.Is(err, apperror.ErrConflict), "got %v", err)
		}(id)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestDeleteBooking_RemovesPaymentAndResyncsRoom(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := testutil.Room(t, f.db, "R101")
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)

	b, err := f.service.CreateBooking(ctx, CreateRequest{
		RoomID: room.ID, Guest: guest.Ref{ID: g.ID},
		Checkin: day(t, "2024-01-10"), Checkout: day(t, "2024-01-12"),
		BookingType: domain.BookingDaily, Confirm: true,
	})
	require.NoError(t, err)
	_, err = f.service.TransitionStatus(ctx, b.ID, domain.BookingCheckedIn, 1)
	require.NoError(t, err)
	require.Equal(t, domain.RoomOccupied, f.roomStatus(t, room.ID))

	require.NoError(t, f.service.DeleteBooking(ctx, b.ID, 1))

	_, err = f.service.GetBooking(ctx, b.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	p, err := f.store.Payments.GetByOrigin(ctx, domain.BookingOrigin{BookingID: b.ID})
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t, room.ID))

	history, err := f.service.History(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AuditBookingDeleted, history[len(history)-1].Action)
	assert.Contains(t, f.pub.types(), notify.EventBookingDeleted)

	err = f.service.DeleteBooking(ctx, b.ID, 1)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListRoomBookings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := testutil.Room(t, f.db, "R101")
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)
	testutil.Booking(t, f.db, room.ID, g.ID, "2024-01-10", "2024-01-12", domain.BookingPending)
	testutil.Booking(t, f.db, room.ID, g.ID, "2024-02-10", "2024-02-12", domain.BookingConfirmed)

	all, err := f.service.ListRoomBookings(ctx, room.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := f.service.ListRoomBookings(ctx, room.ID, []domain.BookingStatus{domain.BookingPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.service.ListRoomBookings(ctx, 999, nil)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = f.service.History(ctx, 999)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func newRouter(f *fixture, role string) *gin.Engine {
	return newRouterAs(f, role, 42)
}

func newRouterAs(f *fixture, role string, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	})
	NewHandler(f.service, nil).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Success bool           `json:"success"`
	Data    domain.Booking `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func TestHandler_BookingFlow(t *testing.T) {
	f := setup(t)
	room := testutil.Room(t, f.db, "R101")
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)
	staff := newRouter(f, "STAFF")

	rr := doJSON(staff, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"room_id": room.ID, "guest_id": g.ID, "checkin": "2024-01-10", "checkout": "2024-01-15",
		"booking_type": "DAILY", "confirm": true,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode(t, rr).Data
	assert.Equal(t, domain.BookingConfirmed, created.Status)

	rr = doJSON(staff, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"room_id": room.ID, "guest_id": g.ID, "checkin": "2024-01-12", "checkout": "2024-01-14",
		"booking_type": "DAILY", "confirm": true,
	})
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "BOOKING_CONFLICT", decode(t, rr).Error.Code)

	path := fmt.Sprintf("/api/v1/bookings/%d/status", created.ID)
	rr = doJSON(newRouter(f, "GUEST"), http.MethodPut, path, map[string]interface{}{"status": "CHECKED_IN"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(staff, http.MethodPut, path, map[string]interface{}{"status": "CHECKED_IN"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, domain.BookingCheckedIn, decode(t, rr).Data.Status)

	rr = doJSON(staff, http.MethodPut, path, map[string]interface{}{"status": "PENDING"})
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode(t, rr).Error.Code)

	rr = doJSON(staff, http.MethodPut, path, map[string]interface{}{"status": "LOST"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(staff, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d/history", created.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), domain.AuditBookingTransition)

	rr = doJSON(staff, http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d/bookings?status=checked_in", room.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"CHECKED_IN"`)

	rr = doJSON(staff, http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d/bookings?status=SOMEDAY", room.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(staff, http.MethodDelete, fmt.Sprintf("/api/v1/bookings/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(staff, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_GuestLimitedToOwnBookings(t *testing.T) {
	f := setup(t)
	room := testutil.Room(t, f.db, "R101")
	g := testutil.Guest(t, f.db, "guest@example.com", domain.RoleGuest)
	other := testutil.Guest(t, f.db, "other@example.com", domain.RoleGuest)
	self := newRouterAs(f, "GUEST", g.ID)
	staff := newRouter(f, "STAFF")

	base := func(guestID int64) map[string]interface{} {
		return map[string]interface{}{
			"room_id": room.ID, "guest_id": guestID, "checkin": "2024-01-10", "checkout": "2024-01-15",
			"booking_type": "DAILY",
		}
	}

	confirmed := base(g.ID)
	confirmed["confirm"] = true
	priced := base(g.ID)
	priced["price"] = 1
	forbidden := []map[string]interface{}{
		base(other.ID),
		confirmed,
		priced,
		{
			"room_id": room.ID, "checkin": "2024-01-10", "checkout": "2024-01-15", "booking_type": "DAILY",
			"new_guest": map[string]interface{}{"name": "Friend", "email": "friend@example.com", "phone": "8123456789"},
		},
	}
	for i, body := range forbidden {
		rr := doJSON(self, http.MethodPost, "/api/v1/bookings", body)
		assert.Equal(t, http.StatusForbidden, rr.Code, "request %d", i)
		assert.Equal(t, "FORBIDDEN", decode(t, rr).Error.Code, "request %d", i)
	}
	all, err := f.store.Bookings.ListByRoom(context.Background(), room.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, all)

	rr := doJSON(self, http.MethodPost, "/api/v1/bookings", base(g.ID))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	own := decode(t, rr).Data
	assert.Equal(t, domain.BookingPending, own.Status)

	rr = doJSON(self, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", own.ID), nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(staff, http.MethodPost, "/api/v1/bookings", base(other.ID))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	theirs := decode(t, rr).Data

	for _, path := range []string{
		fmt.Sprintf("/api/v1/bookings/%d", theirs.ID),
		fmt.Sprintf("/api/v1/bookings/%d/history", own.ID),
		fmt.Sprintf("/api/v1/rooms/%d/bookings", room.ID),
	} {
		rr = doJSON(self, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code, path)
	}
}

func TestHandler_CreateBookingRejectsBadInput(t *testing.T) {
	f := setup(t)
	room := testutil.Room(t, f.db, "R101")
	r := newRouter(f, "STAFF")

	rr := doJSON(r, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"room_id": room.ID, "guest_id": 1, "checkin": "10/01/2024", "checkout": "2024-01-15", "booking_type": "DAILY",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(r, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"room_id": room.ID, "guest_id": 1, "checkin": "2024-01-10", "checkout": "2024-01-15", "booking_type": "HOURLY",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(r, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"room_id": room.ID, "checkin": "2024-01-10", "checkout": "2024-01-15", "booking_type": "DAILY",
		"new_guest": map[string]interface{}{"name": "No Mail", "phone": "8123456789"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(r, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"room_id": room.ID, "checkin": "2024-01-10", "checkout": "2024-01-15", "booking_type": "DAILY",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "guest_id or new_guest is required", decode(t, rr).Error.Message)
}

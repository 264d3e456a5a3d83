package domain

import (
	"fmt"
	"math"
	"time"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingCheckedIn  BookingStatus = "CHECKED_IN"
	BookingCheckedOut BookingStatus = "CHECKED_OUT"
	BookingCancelled  BookingStatus = "CANCELLED"
)

// bookingTransitions is the booking state machine. Terminal states map to no edges.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingCheckedIn, BookingCancelled},
	BookingCheckedIn:  {BookingCheckedOut, BookingCancelled},
	BookingCheckedOut: {},
	BookingCancelled:  {},
}

// ActiveBookingStatuses hold the room: their date ranges must not overlap.
var ActiveBookingStatuses = []BookingStatus{BookingConfirmed, BookingCheckedIn}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// IsActive reports whether a booking in this status reserves the room.
func (s BookingStatus) IsActive() bool {
	return s == BookingConfirmed || s == BookingCheckedIn
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

type BookingType string

const (
	BookingDaily   BookingType = "DAILY"
	BookingMonthly BookingType = "MONTHLY"
)

func (t BookingType) IsValid() bool {
	return t == BookingDaily || t == BookingMonthly
}

const (
	Day                = 24 * time.Hour
	MonthlyStayDays    = 30
	defaultMonthlyStay = MonthlyStayDays * Day
)

type Booking struct {
	ID           int64         `json:"id"`
	RoomID       int64         `json:"room_id"`
	GuestID      int64         `json:"guest_id"`
	Checkin      time.Time     `json:"checkin"`
	Checkout     time.Time     `json:"checkout"`
	Status       BookingStatus `json:"status"`
	Price        float64       `json:"price"`
	BookingType  BookingType   `json:"booking_type"`
	DurationDays int           `json:"duration_days"`
	Notes        string        `json:"notes,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Overlaps is the half-open interval test on [checkin, checkout).
func (b Booking) Overlaps(checkin, checkout time.Time) bool {
	return RangesOverlap(b.Checkin, b.Checkout, checkin, checkout)
}

func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StayDays is ceil((checkout-checkin)/1 day).
func StayDays(checkin, checkout time.Time) int {
	return int(math.Ceil(checkout.Sub(checkin).Hours() / 24))
}

// ResolveStay fills in defaulted dates and the duration for a booking request.
// Monthly stays without dates start today and run for MonthlyStayDays.
// Daily stays must carry both dates.
func ResolveStay(bt BookingType, checkin, checkout *time.Time, now time.Time) (time.Time, time.Time, int, error) {
	switch bt {
	case BookingDaily:
		if checkin == nil || checkout == nil {
			return time.Time{}, time.Time{}, 0, fmt.Errorf("daily bookings require checkin and checkout")
		}
		in, out := DateOnly(*checkin), DateOnly(*checkout)
		if !in.Before(out) {
			return time.Time{}, time.Time{}, 0, fmt.Errorf("checkin %s must be before checkout %s", in.Format(time.DateOnly), out.Format(time.DateOnly))
		}
		return in, out, StayDays(in, out), nil
	case BookingMonthly:
		if checkin == nil && checkout == nil {
			in := DateOnly(now)
			return in, in.Add(defaultMonthlyStay), MonthlyStayDays, nil
		}
		var in, out time.Time
		if checkin != nil {
			in = DateOnly(*checkin)
		} else {
			in = DateOnly(now)
		}
		if checkout != nil {
			out = DateOnly(*checkout)
		} else {
			out = in.Add(defaultMonthlyStay)
		}
		if !in.Before(out) {
			return time.Time{}, time.Time{}, 0, fmt.Errorf("checkin %s must be before checkout %s", in.Format(time.DateOnly), out.Format(time.DateOnly))
		}
		return in, out, StayDays(in, out), nil
	}
	return time.Time{}, time.Time{}, 0, fmt.Errorf("invalid booking type: %s", bt)
}

// StayPrice is the default price of a stay when the caller does not supply one.
func StayPrice(room Room, bt BookingType, days int) float64 {
	var total float64
	if bt == BookingMonthly {
		months := int(math.Ceil(float64(days) / MonthlyStayDays))
		total = float64(months) * room.PricePerMonth
	} else {
		total = float64(days) * room.PricePerNight
	}
	return math.Round(total*100) / 100
}

type BookingEventType string

const (
	BookingCreated       BookingEventType = "booking_created"
	BookingStatusChanged BookingEventType = "booking_status_changed"
	BookingDeleted       BookingEventType = "booking_deleted"
)

// BookingEvent is emitted by the booking lifecycle inside the transaction that caused it.
type BookingEvent struct {
	Type          BookingEventType
	Booking       Booking
	FromStatus    BookingStatus
	ActorID       int64
	PaymentMethod PaymentMethod // BookingCreated only
}


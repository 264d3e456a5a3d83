package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"hostelcore/internal/config"
	"hostelcore/internal/database"
	"hostelcore/internal/domain"
	"hostelcore/internal/modules/booking"
	"hostelcore/internal/modules/guest"
	"hostelcore/internal/modules/payment"
	"hostelcore/internal/modules/roomstatus"
	jwtsvc "hostelcore/internal/pkg/jwt"
	"hostelcore/internal/repository"
)

const hostelID = 1

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	defer database.Close(db)

	ctx := context.Background()
	log.Println("Running migrations...")
	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatal("migrate failed:", err)
	}

	// children first so foreign keys hold
	log.Println("Cleaning old data...")
	for _, table := range []string{"audit_log", "payments", "bookings", "salary_records", "expenses", "rooms", "guests"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("clean %s: %v", table, err)
		}
	}

	store := repository.NewStore(db)

	log.Println("Creating staff...")
	warden := mustStaff(ctx, store, "Meera Iyer", "warden@hostel.local", "+919812345601", domain.RoleWarden, "warden123")
	staff := []*domain.Guest{
		mustStaff(ctx, store, "Ravi Kumar", "ravi@hostel.local", "+919812345602", domain.RoleStaff, "staff123"),
		mustStaff(ctx, store, "Sana Sheikh", "sana@hostel.local", "+919812345603", domain.RoleStaff, "staff123"),
	}

	log.Println("Creating rooms...")
	var rooms []*domain.Room
	for i := 1; i <= 10; i++ {
		room := &domain.Room{
			HostelID:      hostelID,
			Number:        fmt.Sprintf("R1%02d", i),
			Capacity:      2 + i%3,
			PricePerNight: float64(400 + 50*(i%4)),
			PricePerMonth: float64(8000 + 500*(i%4)),
			Status:        domain.RoomAvailable,
		}
		if i == 10 {
			room.Status = domain.RoomMaintenance
		}
		if err := store.Rooms.Create(ctx, room); err != nil {
			log.Fatalf("create room %s: %v", room.Number, err)
		}
		rooms = append(rooms, room)
	}

	log.Println("Creating salary records and expenses...")
	period := time.Now().UTC().Format("2006-01")
	var salaries []*domain.SalaryRecord
	for _, s := range staff {
		rec := &domain.SalaryRecord{StaffID: s.ID, Period: period, Amount: 18000}
		if err := store.Salaries.Create(ctx, rec); err != nil {
			log.Fatalf("create salary for %s: %v", s.Email, err)
		}
		salaries = append(salaries, rec)
	}
	expenses := []*domain.Expense{
		{HostelID: hostelID, Category: "electricity", Description: "Monthly electricity bill", Amount: 7400},
		{HostelID: hostelID, Category: "laundry", Description: "Linen service", Amount: 2100},
		{HostelID: hostelID, Category: "repairs", Description: "R110 bathroom plumbing", Amount: 3500},
	}
	for _, e := range expenses {
		if err := store.Expenses.Create(ctx, e); err != nil {
			log.Fatalf("create expense %s: %v", e.Category, err)
		}
	}

	directory := guest.NewDirectory(db, cfg.PhoneRegion, cfg.OperationTimeout)
	synchronizer := roomstatus.NewSynchronizer(db, cfg.OperationTimeout, nil)
	ledger := payment.NewLedger(db, cfg.OperationTimeout, nil)
	bookings := booking.NewService(db, directory, nil, cfg.OperationTimeout, synchronizer, ledger)

	log.Println("Creating bookings...")
	today := domain.DateOnly(time.Now())
	daily := func(offset, nights int) (*time.Time, *time.Time) {
		in := today.AddDate(0, 0, offset)
		out := in.AddDate(0, 0, nights)
		return &in, &out
	}

	in, out := daily(-2, 4)
	current, err := bookings.CreateBooking(ctx, booking.CreateRequest{
		RoomID:      rooms[0].ID,
		Guest:       guest.Ref{New: &domain.NewGuest{Name: "Asha Rao", Email: "asha.rao@example.com", Phone: "9876543210"}},
		Checkin:     in,
		Checkout:    out,
		BookingType: domain.BookingDaily,
		Confirm:     true,
		ActorID:     warden.ID,
	})
	if err != nil {
		log.Fatalf("create current booking: %v", err)
	}
	if _, err := bookings.TransitionStatus(ctx, current.ID, domain.BookingCheckedIn, warden.ID); err != nil {
		log.Fatalf("check in: %v", err)
	}

	in, out = daily(3, 2)
	if _, err := bookings.CreateBooking(ctx, booking.CreateRequest{
		RoomID:        rooms[1].ID,
		Guest:         guest.Ref{New: &domain.NewGuest{Name: "Daniel Mathew", Email: "daniel@example.com", Phone: "9876501234"}},
		Checkin:       in,
		Checkout:      out,
		BookingType:   domain.BookingDaily,
		PaymentMethod: domain.MethodUPI,
		ActorID:       staff[0].ID,
	}); err != nil {
		log.Fatalf("create upcoming booking: %v", err)
	}

	if _, err := bookings.CreateBooking(ctx, booking.CreateRequest{
		RoomID:      rooms[2].ID,
		Guest:       guest.Ref{New: &domain.NewGuest{Name: "Priya Nair", Email: "priya@example.com", Phone: "9812300099"}},
		BookingType: domain.BookingMonthly,
		Confirm:     true,
		ActorID:     warden.ID,
	}); err != nil {
		log.Fatalf("create monthly booking: %v", err)
	}

	log.Println("Opening payments...")
	for _, s := range salaries {
		if _, err := ledger.OpenPayment(ctx, payment.OpenRequest{Origin: domain.SalaryOrigin{SalaryID: s.ID}, Method: domain.MethodBankTransfer, ActorID: warden.ID}); err != nil {
			log.Fatalf("open salary payment: %v", err)
		}
	}
	if _, err := ledger.OpenPayment(ctx, payment.OpenRequest{Origin: domain.ExpenseOrigin{ExpenseID: expenses[0].ID}, Method: domain.MethodCard, ActorID: staff[1].ID}); err != nil {
		log.Fatalf("open expense payment: %v", err)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	log.Println("Seed completed!")
	log.Println("Accounts:")
	for _, g := range append([]*domain.Guest{warden}, staff...) {
		token, err := j.GenerateToken(g.ID, string(g.Role))
		if err != nil {
			log.Fatalf("token for %s: %v", g.Email, err)
		}
		log.Printf("%s (%s): %s", g.Email, g.Role, token)
	}
}

func mustStaff(ctx context.Context, store *repository.Store, name, email, phone string, role domain.GuestRole, password string) *domain.Guest {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password for %s: %v", email, err)
	}
	g := &domain.Guest{Name: name, Email: email, Phone: phone, Role: role, PasswordHash: string(hash)}
	if err := store.Guests.Create(ctx, g); err != nil {
		log.Fatalf("create %s: %v", email, err)
	}
	return g
}

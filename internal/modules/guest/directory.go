package guest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hostelcore/internal/domain"
	"hostelcore/internal/pkg/apperror"
	"hostelcore/internal/pkg/validator"
	"hostelcore/internal/repository"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Ref points at the guest of a booking: an existing directory id or a payload
// for a guest to provision. Exactly one of the two is set.
type Ref struct {
	ID  int64
	New *domain.NewGuest
}

func (r Ref) Validate() error {
	switch {
	case r.ID > 0 && r.New != nil:
		return apperror.Validation("guest_id and new_guest are mutually exclusive")
	case r.ID <= 0 && r.New == nil:
		return apperror.Validation("guest_id or new_guest is required")
	}
	return nil
}

type Directory struct {
	store      *repository.Store
	region     string
	bcryptCost int
	timeout    time.Duration
}

func NewDirectory(db *gorm.DB, phoneRegion string, timeout time.Duration) *Directory {
	return &Directory{
		store:      repository.NewStore(db),
		region:     strings.ToUpper(phoneRegion),
		bcryptCost: bcrypt.DefaultCost,
		timeout:    timeout,
	}
}

// Prepare validates and normalizes a new-guest payload and hashes its initial
// credential. It does not touch the database.
func (d *Directory) Prepare(ng domain.NewGuest) (*domain.Guest, error) {
	ng.Name = strings.TrimSpace(ng.Name)
	ng.Email = strings.ToLower(strings.TrimSpace(ng.Email))
	ng.Phone = strings.TrimSpace(ng.Phone)
	if err := validator.Struct(ng); err != nil {
		return nil, err
	}

	phone, err := NormalizePhone(ng.Phone, d.region)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(InitialCredential(ng.Name, ng.Email, phone)), d.bcryptCost)
	if err != nil {
		return nil, apperror.ExternalService(err, "hash initial credential for %s", ng.Email)
	}

	return &domain.Guest{
		Name:              ng.Name,
		Email:             ng.Email,
		Phone:             phone,
		Role:              domain.RoleGuest,
		PasswordHash:      string(hash),
		MustResetPassword: true,
	}, nil
}

// ResolveTx returns the guest a booking is made for, inside the caller's transaction.
// A prepared guest whose email is already in the directory resolves to that entry.
func (d *Directory) ResolveTx(ctx context.Context, tx *repository.Store, id int64, prepared *domain.Guest) (*domain.Guest, error) {
	if prepared == nil {
		return tx.Guests.GetByID(ctx, id)
	}

	existing, err := tx.Guests.FindByEmail(ctx, prepared.Email)
	if err != nil {
		return nil, apperror.ExternalService(err, "look up guest %s", prepared.Email)
	}
	if existing != nil {
		return existing, nil
	}

	g := *prepared
	if err := tx.Guests.Create(ctx, &g); err != nil {
		return nil, apperror.ExternalService(err, "provision guest %s", prepared.Email)
	}
	return &g, nil
}

// ProvisionGuest prepares and stores a guest in its own transaction.
func (d *Directory) ProvisionGuest(ctx context.Context, ng domain.NewGuest) (*domain.Guest, error) {
	prepared, err := d.Prepare(ng)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var out *domain.Guest
	err = d.store.Transaction(ctx, func(tx *repository.Store) error {
		g, err := d.ResolveTx(ctx, tx, 0, prepared)
		out = g
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Directory) GetGuest(ctx context.Context, id int64) (*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.store.Guests.GetByID(ctx, id)
}

// NormalizePhone parses a phone number and formats it as E.164.
// Numbers without a country code are read in the default region.
func NormalizePhone(raw, region string) (string, error) {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", apperror.Validation("invalid phone %q: %v", raw, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", apperror.Validation("invalid phone %q", raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// InitialCredential is firstName_emailLocalPart_last4digits, lowercased.
// Only its bcrypt hash is stored and the guest must reset it on first login.
func InitialCredential(name, email, phone string) string {
	first := strings.ToLower(strings.Fields(name + " x")[0])
	local := strings.ToLower(email)
	if i := strings.IndexByte(local, '@'); i >= 0 {
		local = local[:i]
	}
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return fmt.Sprintf("%s_%s_%s", first, local, digits)
}

package guest

import (
	"context"
	"errors"
	"testing"
	"time"

	"hostelcore/internal/domain"
	"hostelcore/internal/pkg/apperror"
	"hostelcore/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	d := NewDirectory(testutil.NewDB(t), "IN", 5*time.Second)
	d.bcryptCost = bcrypt.MinCost
	return d
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("081234 56789", "IN")
	require.NoError(t, err)
	assert.Equal(t, "+918123456789", got)

	got, err = NormalizePhone("+1 650-253-0000", "IN")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)

	_, err = NormalizePhone("12", "IN")
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestInitialCredential(t *testing.T) {
	assert.Equal(t, "asha_asha.k_6789", InitialCredential("Asha Kumar", "Asha.K@example.com", "+918123456789"))
}

func TestProvisionGuest(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	g, err := d.ProvisionGuest(ctx, domain.NewGuest{Name: "Asha Kumar", Email: " Asha@Example.com ", Phone: "8123456789"})
	require.NoError(t, err)
	assert.NotZero(t, g.ID)
	assert.Equal(t, "asha@example.com", g.Email)
	assert.Equal(t, "+918123456789", g.Phone)
	assert.Equal(t, domain.RoleGuest, g.Role)
	assert.True(t, g.MustResetPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(g.PasswordHash), []byte("asha_asha_6789")))

	again, err := d.ProvisionGuest(ctx, domain.NewGuest{Name: "Asha K", Email: "asha@example.com", Phone: "8123456789"})
	require.NoError(t, err)
	assert.Equal(t, g.ID, again.ID, "same email resolves to the existing guest")
}

func TestProvisionGuest_Validation(t *testing.T) {
	d := newTestDirectory(t)

	_, err := d.ProvisionGuest(context.Background(), domain.NewGuest{Name: "A", Email: "not-an-email", Phone: "8123456789"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = d.ProvisionGuest(context.Background(), domain.NewGuest{Name: "A", Email: "a@example.com", Phone: "abc"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestRefValidate(t *testing.T) {
	assert.NoError(t, Ref{ID: 1}.Validate())
	assert.NoError(t, Ref{New: &domain.NewGuest{}}.Validate())

	err := Ref{}.Validate()
	require.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Equal(t, "guest_id or new_guest is required", apperror.Message(err))

	err = Ref{ID: 1, New: &domain.NewGuest{}}.Validate()
	require.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Equal(t, "guest_id and new_guest are mutually exclusive", apperror.Message(err))
}

func TestGetGuest_NotFound(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.GetGuest(context.Background(), 42)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

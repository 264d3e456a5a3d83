package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hostelcore/internal/domain"
	"hostelcore/internal/modules/guest"
	"hostelcore/internal/pkg/apperror"
	jwtsvc "hostelcore/internal/pkg/jwt"
	"hostelcore/internal/repository"
	"hostelcore/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockGuestStore struct {
	mock.Mock
}

func (m *mockGuestStore) FindByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Guest), args.Error(1)
}

func (m *mockGuestStore) GetByID(ctx context.Context, id int64) (*domain.Guest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Guest), args.Error(1)
}

func (m *mockGuestStore) UpdatePassword(ctx context.Context, id int64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestService(store GuestStore) *Service {
	s := NewService(store, jwtsvc.New("test-secret", time.Hour), time.Second)
	s.bcryptCost = bcrypt.MinCost
	return s
}

func TestLogin_Success(t *testing.T) {
	store := new(mockGuestStore)
	g := &domain.Guest{ID: 7, Email: "warden@hostel.local", Role: domain.RoleWarden, PasswordHash: hashed(t, "warden123")}
	store.On("FindByEmail", mock.Anything, "warden@hostel.local").Return(g, nil)

	res, err := newTestService(store).Login(context.Background(), LoginRequest{Email: "warden@hostel.local", Password: "warden123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.False(t, res.MustResetPassword)

	claims, err := jwtsvc.New("test-secret", time.Hour).ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "WARDEN", claims.Role)
	store.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	store := new(mockGuestStore)
	g := &domain.Guest{ID: 7, Email: "a@b.c", PasswordHash: hashed(t, "right-one")}
	store.On("FindByEmail", mock.Anything, "a@b.c").Return(g, nil)
	store.On("FindByEmail", mock.Anything, "nobody@b.c").Return(nil, nil)

	s := newTestService(store)
	_, err := s.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "wrong-one"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(context.Background(), LoginRequest{Email: "nobody@b.c", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	store := new(mockGuestStore)
	g := &domain.Guest{ID: 3, PasswordHash: hashed(t, "initial-pass")}
	store.On("GetByID", mock.Anything, int64(3)).Return(g, nil)
	store.On("UpdatePassword", mock.Anything, int64(3), mock.AnythingOfType("string")).Return(nil).Once()

	s := newTestService(store)
	assert.ErrorIs(t, s.ChangePassword(context.Background(), 3, "initial-pass", "short"), ErrWeakPassword)
	assert.ErrorIs(t, s.ChangePassword(context.Background(), 3, "not-it", "a-longer-pass"), ErrInvalidCredentials)
	require.NoError(t, s.ChangePassword(context.Background(), 3, "initial-pass", "a-longer-pass"))
	store.AssertExpectations(t)
}

func TestProvisionedGuestMustResetInitialCredential(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	ng := domain.NewGuest{Name: "Asha Rao", Email: "asha@example.com", Phone: "8123456789"}
	provisioned, err := guest.NewDirectory(db, "IN", 5*time.Second).ProvisionGuest(ctx, ng)
	require.NoError(t, err)

	s := newTestService(repository.NewGuestRepository(db))
	initial := guest.InitialCredential(ng.Name, ng.Email, provisioned.Phone)

	res, err := s.Login(ctx, LoginRequest{Email: ng.Email, Password: initial})
	require.NoError(t, err)
	assert.True(t, res.MustResetPassword)

	require.NoError(t, s.ChangePassword(ctx, provisioned.ID, initial, "my-own-secret"))

	res, err = s.Login(ctx, LoginRequest{Email: ng.Email, Password: "my-own-secret"})
	require.NoError(t, err)
	assert.False(t, res.MustResetPassword)

	_, err = s.Login(ctx, LoginRequest{Email: ng.Email, Password: initial})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Me(ctx, 999)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := new(mockGuestStore)
	g := &domain.Guest{ID: 9, Email: "ravi@hostel.local", Role: domain.RoleStaff, PasswordHash: hashed(t, "staff123")}
	store.On("FindByEmail", mock.Anything, "ravi@hostel.local").Return(g, nil)

	r := gin.New()
	NewHandler(newTestService(store)).RegisterPublicRoutes(r.Group("/api/v1"))

	post := func(body interface{}) *httptest.ResponseRecorder {
		b, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	rr := post(map[string]string{"email": "ravi@hostel.local", "password": "staff123"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"token"`)
	assert.NotContains(t, rr.Body.String(), "password_hash")

	rr = post(map[string]string{"email": "ravi@hostel.local", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_CREDENTIALS")

	rr = post(map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

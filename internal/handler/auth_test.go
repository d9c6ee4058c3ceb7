package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/car-rental-reservation/internal/config"
	"github.com/iliyamo/car-rental-reservation/internal/middleware"
	"github.com/iliyamo/car-rental-reservation/internal/model"
	"github.com/iliyamo/car-rental-reservation/internal/repository"
	"github.com/iliyamo/car-rental-reservation/internal/utils"
)

type stubUsers struct {
	users map[string]model.User
	err   error
}

func (s stubUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	u, ok := s.users[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s stubUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func newAuthServer(t *testing.T, users stubUsers) *echo.Echo {
	t.Helper()
	log, _ := test.NewNullLogger()
	h := NewAuthHandler(config.Config{JWTSecret: testSecret, AccessTTLMin: 15}, users, log)
	e := echo.New()
	e.POST("/v1/auth/login", h.Login)
	e.GET("/v1/me", h.Me, middleware.JWTAuth(testSecret))
	return e
}

func seededUsers(t *testing.T) stubUsers {
	t.Helper()
	hash, err := utils.HashPassword("pass123", bcrypt.MinCost)
	require.NoError(t, err)
	return stubUsers{users: map[string]model.User{
		"ana@example.com":  {ID: 7, Email: "ana@example.com", PasswordHash: hash, Role: model.RoleMember, FullName: "Ana", DrivingLicenseNumber: "DL-7", IsActive: true},
		"gone@example.com": {ID: 8, Email: "gone@example.com", PasswordHash: hash, Role: model.RoleMember, IsActive: false},
	}}
}

func TestLogin(t *testing.T) {
	e := newAuthServer(t, seededUsers(t))

	rec := do(e, http.MethodPost, "/v1/auth/login", "", `{"email":" Ana@Example.com ","password":"pass123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"role":"MEMBER"`)
	assert.Contains(t, rec.Body.String(), `"token":"`)
}

func TestLoginRejects(t *testing.T) {
	e := newAuthServer(t, seededUsers(t))

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/v1/auth/login", "", `{"email":"ana@example.com"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodPost, "/v1/auth/login", "", `{"email":"ana@example.com","password":"nope"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodPost, "/v1/auth/login", "", `{"email":"who@example.com","password":"pass123"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodPost, "/v1/auth/login", "", `{"email":"gone@example.com","password":"pass123"}`).Code)

	broken := newAuthServer(t, stubUsers{err: errors.New("connection refused")})
	assert.Equal(t, http.StatusInternalServerError, do(broken, http.MethodPost, "/v1/auth/login", "", `{"email":"ana@example.com","password":"pass123"}`).Code)
}

func TestMe(t *testing.T) {
	e := newAuthServer(t, seededUsers(t))

	rec := do(e, http.MethodGet, "/v1/me", token(t, 7, model.RoleMember), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"drivingLicenseNumber":"DL-7"`)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/me", token(t, 404, model.RoleMember), "").Code)
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealthAndReady(t *testing.T) {
	e := echo.New()
	e.GET("/healthz", Health)
	e.GET("/readyz", Ready(pinger{}))
	e.GET("/readyz-down", Ready(pinger{err: errors.New("down")}))

	rec := do(e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/readyz", "", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(e, http.MethodGet, "/readyz-down", "", "").Code)
}

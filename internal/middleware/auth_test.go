package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/pkg/access"
	"github.com/rodhonsys/saude-escolar-api/pkg/auth"
)

// stubAccountRepo only serves Get; Authenticate never touches the rest.
type stubAccountRepo struct {
	acct *model.UserAccount
	err  error
}

func (s *stubAccountRepo) Get(_ context.Context, _ uuid.UUID) (*model.UserAccount, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.acct, nil
}

func (s *stubAccountRepo) Create(_ context.Context, _ *model.UserAccount) error { return nil }
func (s *stubAccountRepo) GetByEmail(_ context.Context, _ string) (*model.UserAccount, error) {
	return nil, nil
}
func (s *stubAccountRepo) List(_ context.Context, _ *model.AccountFilters) ([]*model.UserAccount, error) {
	return nil, nil
}
func (s *stubAccountRepo) UpdateSession(_ context.Context, _ uuid.UUID, _ string, _ time.Time) error {
	return nil
}
func (s *stubAccountRepo) ClearSession(_ context.Context, _ uuid.UUID) error { return nil }
func (s *stubAccountRepo) SetPassword(_ context.Context, _ uuid.UUID, _ string, _ time.Time) error {
	return nil
}
func (s *stubAccountRepo) SetStatus(_ context.Context, _ uuid.UUID, _ string) error { return nil }
func (s *stubAccountRepo) RenewLicense(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}
func (s *stubAccountRepo) ExpireOverdue(_ context.Context, _ time.Time) ([]*model.UserAccount, error) {
	return nil, nil
}

func newAuthEngine(repo *stubAccountRepo, acct *model.UserAccount) (*gin.Engine, string) {
	gin.SetMode(gin.TestMode)
	jwtSvc := auth.NewJWTService("test-secret", 1)
	mw := NewAuthMiddleware(jwtSvc, repo, access.NewGuard("root@example.com"))

	engine := gin.New()
	engine.GET("/protected", mw.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": AccountFrom(c).UID.String()})
	})

	token, _ := jwtSvc.GenerateAccessToken(acct, auth.NewSessionID())
	return engine, token
}

func activeAccount() *model.UserAccount {
	changed := time.Now().Add(-48 * time.Hour)
	return &model.UserAccount{
		UID:                  uuid.New(),
		Email:                "enfermeira@example.com",
		Role:                 model.RoleNurse,
		TenantID:             "escola-x",
		Status:               model.AccountStatusActive,
		LicenseStatus:        model.LicenseStatusActive,
		LastPasswordChangeAt: &changed,
	}
}

func TestAuthenticateLoadsAccount(t *testing.T) {
	acct := activeAccount()
	engine, token := newAuthEngine(&stubAccountRepo{acct: acct}, acct)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), acct.UID.String())
}

func TestAuthenticateMissingTokenDenied(t *testing.T) {
	acct := activeAccount()
	engine, _ := newAuthEngine(&stubAccountRepo{acct: acct}, acct)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), access.ReasonNoSession)
}

// A session whose account state cannot be read is denied, never admitted
// on stale or absent data.
func TestAuthenticateStorageFailureFailsClosed(t *testing.T) {
	acct := activeAccount()
	engine, token := newAuthEngine(&stubAccountRepo{err: errors.New("connection refused")}, acct)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), access.ReasonStorageFailure)
}

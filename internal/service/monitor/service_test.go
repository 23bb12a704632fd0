package monitor

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/pkg/access"
)

func newTestService() *Service {
	return &Service{
		guard:  access.NewGuard("root@example.com"),
		logger: zerolog.Nop(),
	}
}

func activeEvent(sessionID string) *model.AccountChangedEvent {
	changed := time.Now().Add(-48 * time.Hour)
	return &model.AccountChangedEvent{
		UID:                  uuid.New(),
		Email:                "enf@escola-x.example.com",
		Role:                 model.RoleNurse,
		Status:               model.AccountStatusActive,
		LicenseStatus:        model.LicenseStatusActive,
		CurrentSessionID:     sessionID,
		LastPasswordChangeAt: &changed,
	}
}

func TestEvaluateQuietWhileHealthy(t *testing.T) {
	s := newTestService()

	_, fire := s.evaluate(activeEvent("sess_a"), "sess_a")
	assert.False(t, fire)
}

func TestEvaluateSessionReplaced(t *testing.T) {
	s := newTestService()

	sig, fire := s.evaluate(activeEvent("sess_b"), "sess_a")
	assert.True(t, fire)
	assert.True(t, sig.ForceSignOut)
	assert.Equal(t, access.ReasonSessionReplaced, sig.Reason)
}

func TestEvaluateBlockedAccount(t *testing.T) {
	s := newTestService()

	event := activeEvent("sess_a")
	event.Status = model.AccountStatusBlocked
	sig, fire := s.evaluate(event, "sess_a")
	assert.True(t, fire)
	assert.True(t, sig.ForceSignOut)
	assert.Equal(t, access.ReasonBlocked, sig.Reason)
}

func TestEvaluateLicenseExpired(t *testing.T) {
	s := newTestService()

	event := activeEvent("sess_a")
	event.LicenseStatus = model.LicenseStatusExpired
	sig, fire := s.evaluate(event, "sess_a")
	assert.True(t, fire)
	assert.True(t, sig.ForceSignOut)
	assert.Equal(t, access.ReasonLicenseExpired, sig.Reason)
}

func TestEvaluatePasswordChangePushed(t *testing.T) {
	s := newTestService()

	event := activeEvent("sess_a")
	event.MustChangePassword = true
	sig, fire := s.evaluate(event, "sess_a")
	assert.True(t, fire)
	assert.False(t, sig.ForceSignOut)
	assert.True(t, sig.RequirePasswordChange)
}

func TestEvaluateRootNeverSignedOut(t *testing.T) {
	s := newTestService()

	event := activeEvent("sess_b")
	event.Email = "root@example.com"
	event.Status = model.AccountStatusBlocked
	_, fire := s.evaluate(event, "sess_a")
	assert.False(t, fire)
}

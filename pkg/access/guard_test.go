package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
)

func activeAccount() *model.UserAccount {
	changed := time.Now().Add(-48 * time.Hour)
	return &model.UserAccount{
		Email:                "enf@escola-x.example.com",
		Role:                 model.RoleNurse,
		Status:               model.AccountStatusActive,
		LicenseStatus:        model.LicenseStatusActive,
		LastPasswordChangeAt: &changed,
	}
}

func TestEvaluateNoPrincipal(t *testing.T) {
	g := NewGuard("")
	d := g.Evaluate(nil, Route{Name: "clinical"})

	assert.False(t, d.Allowed)
	assert.Equal(t, StateUnauthenticated, d.State)
	assert.Equal(t, ReasonNoSession, d.Reason)
}

func TestEvaluateRootImmunity(t *testing.T) {
	g := NewGuard("root@example.com")

	// Root passes even blocked, license-expired and password-pending.
	expired := time.Now().Add(-24 * time.Hour)
	root := &model.UserAccount{
		Email:              "root@example.com",
		Role:               model.RoleRoot,
		Status:             model.AccountStatusBlocked,
		LicenseStatus:      model.LicenseStatusExpired,
		LicenseExpiry:      &expired,
		MustChangePassword: true,
	}
	d := g.Evaluate(root, Route{Name: "admin", AllowedRoles: []string{model.RoleRoot}})

	assert.True(t, d.Allowed)
	assert.Equal(t, StateRoot, d.State)
	assert.False(t, d.ForceSignOut)
}

func TestEvaluateRootByEmailOnly(t *testing.T) {
	// Recognized by configured email even with a corrupted role field.
	g := NewGuard("root@example.com")
	acct := activeAccount()
	acct.Email = "ROOT@example.com"
	acct.Role = "enfermeiro"

	d := g.Evaluate(acct, Route{Name: "admin", AllowedRoles: []string{model.RoleRoot}})
	assert.True(t, d.Allowed)
	assert.Equal(t, StateRoot, d.State)
}

func TestEvaluateBlockedAccount(t *testing.T) {
	g := NewGuard("")
	acct := activeAccount()
	acct.Status = model.AccountStatusBlocked

	d := g.Evaluate(acct, Route{Name: "clinical"})
	assert.False(t, d.Allowed)
	assert.True(t, d.ForceSignOut)
	assert.Equal(t, ReasonBlocked, d.Reason)
}

func TestEvaluateLicenseStates(t *testing.T) {
	g := NewGuard("")

	acct := activeAccount()
	acct.LicenseStatus = model.LicenseStatusBlocked
	d := g.Evaluate(acct, Route{Name: "clinical"})
	assert.Equal(t, ReasonLicenseBlocked, d.Reason)

	acct = activeAccount()
	acct.LicenseStatus = model.LicenseStatusExpired
	d = g.Evaluate(acct, Route{Name: "clinical"})
	assert.Equal(t, ReasonLicenseExpired, d.Reason)
}

func TestEvaluateOverdueExpiryDeniesBeforeSweep(t *testing.T) {
	// License still flagged active but the timestamp already passed.
	g := NewGuard("")
	expired := time.Now().Add(-time.Minute)
	acct := activeAccount()
	acct.LicenseExpiry = &expired

	d := g.Evaluate(acct, Route{Name: "clinical"})
	assert.False(t, d.Allowed)
	assert.True(t, d.ForceSignOut)
	assert.Equal(t, ReasonLicenseExpired, d.Reason)
}

func TestEvaluateBlockBeatsPasswordChange(t *testing.T) {
	g := NewGuard("")
	acct := activeAccount()
	acct.Status = model.AccountStatusBlocked
	acct.MustChangePassword = true

	d := g.Evaluate(acct, Route{Name: "session", PasswordChangeRoute: true})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonBlocked, d.Reason)
}

func TestEvaluatePasswordChangePending(t *testing.T) {
	g := NewGuard("")
	acct := activeAccount()
	acct.MustChangePassword = true

	d := g.Evaluate(acct, Route{Name: "clinical"})
	assert.False(t, d.Allowed)
	assert.True(t, d.RequirePasswordChange)
	assert.Equal(t, ReasonPasswordChange, d.Reason)

	// The password-change route itself stays reachable.
	d = g.Evaluate(acct, Route{Name: "session", PasswordChangeRoute: true})
	assert.True(t, d.Allowed)
	assert.True(t, d.RequirePasswordChange)
}

func TestEvaluateNoDefinitivePasswordEverSet(t *testing.T) {
	g := NewGuard("")
	acct := activeAccount()
	acct.LastPasswordChangeAt = nil

	d := g.Evaluate(acct, Route{Name: "clinical"})
	assert.False(t, d.Allowed)
	assert.True(t, d.RequirePasswordChange)
	assert.Equal(t, ReasonPasswordChange, d.Reason)
}

func TestEvaluateRoleAllowlist(t *testing.T) {
	g := NewGuard("")
	acct := activeAccount()

	d := g.Evaluate(acct, Route{Name: "admin", AllowedRoles: []string{model.RoleRoot}})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonRoleNotAllowed, d.Reason)

	d = g.Evaluate(acct, Route{Name: "clinical", AllowedRoles: []string{model.RoleNurse, model.RoleAssistant}})
	assert.True(t, d.Allowed)

	// Empty allowlist admits any authenticated role.
	d = g.Evaluate(acct, Route{Name: "open"})
	assert.True(t, d.Allowed)
}

func TestSessionSuperseded(t *testing.T) {
	g := NewGuard("root@example.com")

	acct := activeAccount()
	acct.CurrentSessionID = "sess_b"
	assert.True(t, g.SessionSuperseded(acct, "sess_a"))
	assert.False(t, g.SessionSuperseded(acct, "sess_b"))

	acct.CurrentSessionID = ""
	assert.False(t, g.SessionSuperseded(acct, "sess_a"))

	root := activeAccount()
	root.Role = model.RoleRoot
	root.CurrentSessionID = "sess_b"
	assert.False(t, g.SessionSuperseded(root, "sess_a"))
}

func TestDenyStorageFailsClosed(t *testing.T) {
	d := DenyStorage()
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonStorageFailure, d.Reason)
}

// Package access centralizes the session and license decisions that
// every protected route runs before its handler.
package access

import (
	"strings"
	"time"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
)

// State classifies a principal for routing purposes.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateRoot            State = "root"
	StateBlocked         State = "blocked"
	StatePasswordReset   State = "password_reset"
	StateActive          State = "active"
)

// Deny reasons surfaced to the client.
const (
	ReasonNoSession       = "sessao_inexistente"
	ReasonBlocked         = "conta_bloqueada"
	ReasonLicenseBlocked  = "licenca_bloqueada"
	ReasonLicenseExpired  = "licenca_expirada"
	ReasonPasswordChange  = "troca_de_senha_pendente"
	ReasonRoleNotAllowed  = "perfil_sem_acesso"
	ReasonStorageFailure  = "falha_de_verificacao"
	ReasonSessionReplaced = "sessao_substituida"
)

// Decision is the guard verdict for one request.
type Decision struct {
	State                 State
	Allowed               bool
	RequirePasswordChange bool
	ForceSignOut          bool
	Reason                string
}

// Route describes the protected resource being evaluated. An empty
// AllowedRoles list admits any authenticated role.
type Route struct {
	Name                string
	AllowedRoles        []string
	PasswordChangeRoute bool
}

// Guard evaluates accounts against routes. Rules apply in a fixed
// order; the first that fires decides.
type Guard struct {
	RootEmail string
	Now       func() time.Time
}

func NewGuard(rootEmail string) *Guard {
	return &Guard{RootEmail: rootEmail, Now: time.Now}
}

// IsRoot grants superuser standing by role or by the configured root
// email, so a root account survives a corrupted role field.
func (g *Guard) IsRoot(acct *model.UserAccount) bool {
	if acct == nil {
		return false
	}
	if acct.IsRoot() {
		return true
	}
	return g.RootEmail != "" && strings.EqualFold(acct.Email, g.RootEmail)
}

// Evaluate runs the access rules in order:
//
//  1. no principal: deny
//  2. root: allow, immune to every later rule
//  3. blocked account or blocked/expired license: deny and sign out
//  4. pending password change, or no definitive password ever set: only
//     the password-change route passes
//  5. role allowlist (case-insensitive)
func (g *Guard) Evaluate(acct *model.UserAccount, route Route) Decision {
	if acct == nil {
		return Decision{State: StateUnauthenticated, Reason: ReasonNoSession}
	}

	if g.IsRoot(acct) {
		return Decision{State: StateRoot, Allowed: true}
	}

	if reason := g.blockReason(acct); reason != "" {
		return Decision{State: StateBlocked, ForceSignOut: true, Reason: reason}
	}

	if acct.MustChangePassword || acct.LastPasswordChangeAt == nil {
		if route.PasswordChangeRoute {
			return Decision{State: StatePasswordReset, Allowed: true, RequirePasswordChange: true}
		}
		return Decision{State: StatePasswordReset, RequirePasswordChange: true, Reason: ReasonPasswordChange}
	}

	if len(route.AllowedRoles) > 0 && !contains(route.AllowedRoles, acct.Role) {
		return Decision{State: StateActive, Reason: ReasonRoleNotAllowed}
	}

	return Decision{State: StateActive, Allowed: true}
}

// blockReason checks the stored flags and additionally the expiry
// timestamp itself, so an overdue license denies access even before
// the sweep has flipped its status.
func (g *Guard) blockReason(acct *model.UserAccount) string {
	if acct.Status == model.AccountStatusBlocked {
		return ReasonBlocked
	}
	switch acct.LicenseStatus {
	case model.LicenseStatusBlocked:
		return ReasonLicenseBlocked
	case model.LicenseStatusExpired:
		return ReasonLicenseExpired
	}
	if acct.LicenseExpiry != nil && acct.LicenseExpiry.Before(g.Now()) {
		return ReasonLicenseExpired
	}
	return ""
}

// SessionSuperseded reports whether the presented session token has
// been replaced by a later login. Root is exempt.
func (g *Guard) SessionSuperseded(acct *model.UserAccount, sessionID string) bool {
	if g.IsRoot(acct) {
		return false
	}
	return acct.CurrentSessionID != "" && acct.CurrentSessionID != sessionID
}

// DenyStorage is the fail-closed verdict for guard checks that could
// not read account state.
func DenyStorage() Decision {
	return Decision{State: StateUnauthenticated, Reason: ReasonStorageFailure}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

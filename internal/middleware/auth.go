package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rodhonsys/saude-escolar-api/internal/handler"
	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	"github.com/rodhonsys/saude-escolar-api/pkg/access"
	"github.com/rodhonsys/saude-escolar-api/pkg/auth"
	apperr "github.com/rodhonsys/saude-escolar-api/pkg/errors"
)

// Context keys set by Authenticate.
const (
	CtxAccount   = "account"
	CtxClaims    = "claims"
	CtxSessionID = "session_id"
)

type AuthMiddleware struct {
	jwt      auth.JWTService
	accounts repository.AccountRepository
	guard    *access.Guard
}

func NewAuthMiddleware(jwt auth.JWTService, accounts repository.AccountRepository, guard *access.Guard) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, accounts: accounts, guard: guard}
}

// Authenticate verifies the bearer token and loads the live account.
// Storage failures deny: a session whose account state cannot be read
// is treated as no session at all.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(access.ReasonNoSession))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(access.ReasonNoSession))
			c.Abort()
			return
		}

		claims, err := m.jwt.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(access.ReasonNoSession))
			c.Abort()
			return
		}

		acct, err := m.accounts.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			// The logger middleware picks the storage error up from the
			// context; the client only sees the fail-closed denial.
			c.Error(apperr.Storage(err))
			decision := access.DenyStorage()
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(decision.Reason))
			c.Abort()
			return
		}

		c.Set(CtxAccount, acct)
		c.Set(CtxClaims, claims)
		c.Set(CtxSessionID, claims.SessionID)
		c.Next()
	}
}

// Guard evaluates the access rules for the route. AllowedRoles empty
// admits any authenticated role; root passes everything.
func (m *AuthMiddleware) Guard(route access.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		acct := AccountFrom(c)
		decision := m.guard.Evaluate(acct, route)
		if decision.Allowed {
			c.Next()
			return
		}

		status := http.StatusForbidden
		switch {
		case decision.State == access.StateUnauthenticated:
			status = http.StatusUnauthorized
		case decision.ForceSignOut:
			status = http.StatusUnauthorized
		}
		c.JSON(status, handler.NewErrorResponse(decision.Reason))
		c.Abort()
	}
}

// AccountFrom returns the authenticated account, or nil when the route
// runs without Authenticate.
func AccountFrom(c *gin.Context) *model.UserAccount {
	if v, ok := c.Get(CtxAccount); ok {
		if acct, ok := v.(*model.UserAccount); ok {
			return acct
		}
	}
	return nil
}

// ClaimsFrom returns the decoded token claims.
func ClaimsFrom(c *gin.Context) *model.TokenClaims {
	if v, ok := c.Get(CtxClaims); ok {
		if claims, ok := v.(*model.TokenClaims); ok {
			return claims
		}
	}
	return nil
}

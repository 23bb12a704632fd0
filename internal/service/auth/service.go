package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rodhonsys/saude-escolar-api/internal/config"
	"github.com/rodhonsys/saude-escolar-api/internal/email"
	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	"github.com/rodhonsys/saude-escolar-api/internal/service/audit"
	"github.com/rodhonsys/saude-escolar-api/pkg/access"
	"github.com/rodhonsys/saude-escolar-api/pkg/auth"
	apperr "github.com/rodhonsys/saude-escolar-api/pkg/errors"
	"github.com/rodhonsys/saude-escolar-api/pkg/security"
)

type AuthService interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
	Logout(ctx context.Context, uid uuid.UUID) error
	ChangePassword(ctx context.Context, uid uuid.UUID, req *model.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req *model.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error
}

type Service struct {
	accounts repository.AccountRepository
	tokens   repository.TokenRepository
	jwt      auth.JWTService
	hasher   security.PasswordHasher
	guard    *access.Guard
	mailer   email.Service
	auditor  *audit.Service
	cfg      config.AccessConfig
	logger   zerolog.Logger
}

func NewService(
	accounts repository.AccountRepository,
	tokens repository.TokenRepository,
	jwt auth.JWTService,
	hasher security.PasswordHasher,
	guard *access.Guard,
	mailer email.Service,
	auditor *audit.Service,
	cfg config.AccessConfig,
	logger zerolog.Logger,
) *Service {
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		jwt:      jwt,
		hasher:   hasher,
		guard:    guard,
		mailer:   mailer,
		auditor:  auditor,
		cfg:      cfg,
		logger:   logger,
	}
}

// Login authenticates and mints a session. Checks run in order:
// credentials, then block and license state, then the forced
// password-change flag. Each login overwrites the stored session id, so
// the newest device wins and earlier ones are signed out by the monitor.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	acct, err := s.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if apperr.CodeOf(err) == apperr.ErrNotFound {
			return nil, apperr.Auth("invalid credentials", nil)
		}
		return nil, err
	}

	if err := s.hasher.Compare(acct.PasswordHash, req.Password); err != nil {
		return nil, apperr.Auth("invalid credentials", nil)
	}

	if !s.guard.IsRoot(acct) {
		decision := s.guard.Evaluate(acct, access.Route{Name: "login"})
		if decision.State == access.StateBlocked {
			return nil, apperr.Forbidden(decision.Reason, nil)
		}
	}

	sessionID := auth.NewSessionID()
	if err := s.accounts.UpdateSession(ctx, acct.UID, sessionID, time.Now()); err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateAccessToken(acct, sessionID)
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}

	s.auditor.Log(ctx, acct.UID, acct.TenantID, "login", "account", acct.UID.String(), nil)
	needsDefinitive := acct.MustChangePassword || acct.LastPasswordChangeAt == nil
	return &model.TokenResponse{
		AccessToken:           token,
		SessionID:             sessionID,
		RequirePasswordChange: needsDefinitive && !s.guard.IsRoot(acct),
	}, nil
}

func (s *Service) Logout(ctx context.Context, uid uuid.UUID) error {
	if err := s.accounts.ClearSession(ctx, uid); err != nil {
		return err
	}
	s.auditor.Log(ctx, uid, "", "logout", "account", uid.String(), nil)
	return nil
}

// ChangePassword sets the definitive password and clears the forced
// change flag, releasing the account into the normal route set.
func (s *Service) ChangePassword(ctx context.Context, uid uuid.UUID, req *model.ChangePasswordRequest) error {
	if err := security.ValidatePolicy(req.NewPassword); err != nil {
		return apperr.Validation("password does not meet the policy", err)
	}

	acct, err := s.accounts.Get(ctx, uid)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperr.Validation("password does not meet the policy", err)
	}

	if err := s.accounts.SetPassword(ctx, uid, hash, time.Now()); err != nil {
		return err
	}

	s.auditor.Log(ctx, uid, acct.TenantID, "change_password", "account", uid.String(), nil)
	return nil
}

// ForgotPassword emails a time-bound reset link. Unknown emails succeed
// silently so the endpoint cannot be used to probe for accounts.
func (s *Service) ForgotPassword(ctx context.Context, req *model.ForgotPasswordRequest) error {
	acct, err := s.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if apperr.CodeOf(err) == apperr.ErrNotFound {
			return nil
		}
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return apperr.Internal("failed to generate reset token", err)
	}

	ttl := time.Duration(s.cfg.ResetTokenTTLMinutes) * time.Minute
	if err := s.tokens.StoreResetToken(ctx, acct.UID, token, time.Now().Add(ttl)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/redefinir-senha?token=%s", s.cfg.AppBaseURL, token)
	if err := s.mailer.SendPasswordReset(ctx, acct.Email, acct.Name, link); err != nil {
		s.logger.Error().Err(err).Str("email", acct.Email).Msg("failed to send reset email")
		return apperr.Internal("failed to send reset email", err)
	}

	s.auditor.Log(ctx, acct.UID, acct.TenantID, "forgot_password", "account", acct.UID.String(), nil)
	return nil
}

// ResetPassword redeems a reset token. The token is single-use and the
// new password must satisfy the definitive-password policy.
func (s *Service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	if err := security.ValidatePolicy(req.NewPassword); err != nil {
		return apperr.Validation("password does not meet the policy", err)
	}

	uid, err := s.tokens.ValidateResetToken(ctx, req.Token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperr.Validation("password does not meet the policy", err)
	}

	if err := s.accounts.SetPassword(ctx, uid, hash, time.Now()); err != nil {
		return err
	}
	if err := s.tokens.InvalidateResetToken(ctx, req.Token); err != nil {
		s.logger.Error().Err(err).Msg("failed to invalidate reset token")
	}

	s.auditor.Log(ctx, uid, "", "reset_password", "account", uid.String(), nil)
	return nil
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

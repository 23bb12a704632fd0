package account

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	"github.com/rodhonsys/saude-escolar-api/internal/service/audit"
	apperr "github.com/rodhonsys/saude-escolar-api/pkg/errors"
	"github.com/rodhonsys/saude-escolar-api/pkg/security"
)

type AccountService interface {
	Provision(ctx context.Context, actorID uuid.UUID, req *model.CreateAccountRequest) (*model.UserAccount, error)
	Get(ctx context.Context, uid uuid.UUID) (*model.UserAccount, error)
	List(ctx context.Context, filters *model.AccountFilters) ([]*model.UserAccount, error)
	Block(ctx context.Context, actorID, uid uuid.UUID) error
	Unblock(ctx context.Context, actorID, uid uuid.UUID) error
	RenewLicense(ctx context.Context, actorID, uid uuid.UUID, days int) (*model.UserAccount, error)
}

type Service struct {
	repo    repository.AccountRepository
	units   repository.UnitRepository
	hasher  security.PasswordHasher
	auditor *audit.Service
}

func NewService(repo repository.AccountRepository, units repository.UnitRepository, hasher security.PasswordHasher, auditor *audit.Service) *Service {
	return &Service{repo: repo, units: units, hasher: hasher, auditor: auditor}
}

// Provision creates a licensed account under a tenant unit. The initial
// password is provisional: must_change_password forces the definitive
// one on first login.
func (s *Service) Provision(ctx context.Context, actorID uuid.UUID, req *model.CreateAccountRequest) (*model.UserAccount, error) {
	if _, err := s.units.Get(ctx, req.TenantID); err != nil {
		return nil, apperr.Validation("unknown tenant unit", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperr.Validation("password does not meet the policy", err)
	}

	acct := &model.UserAccount{
		UID:                uuid.New(),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		Name:               strings.TrimSpace(req.Name),
		Role:               req.Role,
		Registry:           req.Registry,
		TenantID:           req.TenantID,
		PasswordHash:       hash,
		Status:             model.AccountStatusActive,
		LicenseStatus:      model.LicenseStatusActive,
		MustChangePassword: true,
		SidebarModules:     req.Sidebar,
	}
	if req.LicenseDays > 0 {
		expiry := time.Now().AddDate(0, 0, req.LicenseDays)
		acct.LicenseExpiry = &expiry
	}

	if err := s.repo.Create(ctx, acct); err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, actorID, req.TenantID, "create", "account", acct.UID.String(), model.JSONMap{
		"email": acct.Email,
		"role":  acct.Role,
	})
	return acct, nil
}

func (s *Service) Get(ctx context.Context, uid uuid.UUID) (*model.UserAccount, error) {
	return s.repo.Get(ctx, uid)
}

func (s *Service) List(ctx context.Context, filters *model.AccountFilters) ([]*model.UserAccount, error) {
	return s.repo.List(ctx, filters)
}

// Block suspends an account and its license. The session monitor picks
// up the emitted event and signs the holder out; root cannot be blocked.
func (s *Service) Block(ctx context.Context, actorID, uid uuid.UUID) error {
	acct, err := s.repo.Get(ctx, uid)
	if err != nil {
		return err
	}
	if acct.IsRoot() {
		return apperr.Forbidden("root account cannot be blocked", nil)
	}

	if err := s.repo.SetStatus(ctx, uid, model.AccountStatusBlocked); err != nil {
		return err
	}
	s.auditor.Log(ctx, actorID, acct.TenantID, "block", "account", uid.String(), nil)
	return nil
}

func (s *Service) Unblock(ctx context.Context, actorID, uid uuid.UUID) error {
	acct, err := s.repo.Get(ctx, uid)
	if err != nil {
		return err
	}

	if err := s.repo.SetStatus(ctx, uid, model.AccountStatusActive); err != nil {
		return err
	}
	s.auditor.Log(ctx, actorID, acct.TenantID, "unblock", "account", uid.String(), nil)
	return nil
}

// RenewLicense extends the license by a number of days counted from now
// when the license already lapsed, or from the current expiry when it is
// still running. Renewal also reactivates a blocked or expired account.
func (s *Service) RenewLicense(ctx context.Context, actorID, uid uuid.UUID, days int) (*model.UserAccount, error) {
	if days <= 0 {
		return nil, apperr.Validation("renewal days must be positive", nil)
	}

	acct, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	base := time.Now()
	if acct.LicenseExpiry != nil && acct.LicenseExpiry.After(base) {
		base = *acct.LicenseExpiry
	}
	expiry := base.AddDate(0, 0, days)

	if err := s.repo.RenewLicense(ctx, uid, expiry); err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, actorID, acct.TenantID, "renew_license", "account", uid.String(), model.JSONMap{
		"days":       days,
		"new_expiry": expiry.Format(time.RFC3339),
	})
	return s.repo.Get(ctx, uid)
}

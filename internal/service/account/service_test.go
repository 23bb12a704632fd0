package account

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/service/audit"
	apperr "github.com/rodhonsys/saude-escolar-api/pkg/errors"
	"github.com/rodhonsys/saude-escolar-api/pkg/security"
)

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*model.UserAccount
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*model.UserAccount)}
}

func (f *fakeAccountRepo) Create(_ context.Context, acct *model.UserAccount) error {
	for _, existing := range f.accounts {
		if existing.Email == acct.Email {
			return apperr.Conflict("email already registered", nil)
		}
	}
	clone := *acct
	f.accounts[acct.UID] = &clone
	return nil
}

func (f *fakeAccountRepo) Get(_ context.Context, uid uuid.UUID) (*model.UserAccount, error) {
	acct, ok := f.accounts[uid]
	if !ok {
		return nil, apperr.NotFound("account", nil)
	}
	clone := *acct
	return &clone, nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*model.UserAccount, error) {
	for _, acct := range f.accounts {
		if acct.Email == email {
			clone := *acct
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("account", nil)
}

func (f *fakeAccountRepo) List(_ context.Context, _ *model.AccountFilters) ([]*model.UserAccount, error) {
	var out []*model.UserAccount
	for _, acct := range f.accounts {
		out = append(out, acct)
	}
	return out, nil
}

func (f *fakeAccountRepo) UpdateSession(_ context.Context, uid uuid.UUID, sessionID string, loginAt time.Time) error {
	acct := f.accounts[uid]
	acct.CurrentSessionID = sessionID
	acct.LastLoginAt = &loginAt
	return nil
}

func (f *fakeAccountRepo) ClearSession(_ context.Context, uid uuid.UUID) error {
	f.accounts[uid].CurrentSessionID = ""
	return nil
}

func (f *fakeAccountRepo) SetPassword(_ context.Context, uid uuid.UUID, hash string, changedAt time.Time) error {
	acct := f.accounts[uid]
	acct.PasswordHash = hash
	acct.MustChangePassword = false
	acct.LastPasswordChangeAt = &changedAt
	return nil
}

func (f *fakeAccountRepo) SetStatus(_ context.Context, uid uuid.UUID, status string) error {
	acct, ok := f.accounts[uid]
	if !ok {
		return apperr.NotFound("account", nil)
	}
	acct.Status = status
	if status == model.AccountStatusBlocked {
		acct.LicenseStatus = model.LicenseStatusBlocked
	} else {
		acct.LicenseStatus = model.LicenseStatusActive
	}
	return nil
}

func (f *fakeAccountRepo) RenewLicense(_ context.Context, uid uuid.UUID, expiry time.Time) error {
	acct, ok := f.accounts[uid]
	if !ok {
		return apperr.NotFound("account", nil)
	}
	acct.LicenseExpiry = &expiry
	acct.LicenseStatus = model.LicenseStatusActive
	acct.Status = model.AccountStatusActive
	return nil
}

func (f *fakeAccountRepo) ExpireOverdue(_ context.Context, now time.Time) ([]*model.UserAccount, error) {
	var expired []*model.UserAccount
	for _, acct := range f.accounts {
		if acct.Role != model.RoleRoot && acct.LicenseStatus == model.LicenseStatusActive &&
			acct.LicenseExpiry != nil && acct.LicenseExpiry.Before(now) {
			acct.LicenseStatus = model.LicenseStatusExpired
			expired = append(expired, acct)
		}
	}
	return expired, nil
}

type fakeUnitRepo struct {
	units map[string]*model.TenantUnit
}

func (f *fakeUnitRepo) Create(_ context.Context, unit *model.TenantUnit) error {
	f.units[unit.UnitID] = unit
	return nil
}

func (f *fakeUnitRepo) Get(_ context.Context, unitID string) (*model.TenantUnit, error) {
	unit, ok := f.units[unitID]
	if !ok {
		return nil, apperr.NotFound("unit", nil)
	}
	return unit, nil
}

func (f *fakeUnitRepo) List(_ context.Context) ([]*model.TenantUnit, error) { return nil, nil }

func (f *fakeUnitRepo) SetStatus(_ context.Context, unitID, status string) error {
	f.units[unitID].Status = status
	return nil
}

type nullAuditRepo struct{}

func (nullAuditRepo) Create(context.Context, *model.AuditLog) error { return nil }
func (nullAuditRepo) List(context.Context, string, *model.AuditFilters) ([]*model.AuditLog, error) {
	return nil, nil
}
func (nullAuditRepo) DeleteBefore(context.Context, time.Time) (int64, error) { return 0, nil }

func newTestService() (*Service, *fakeAccountRepo) {
	repo := newFakeAccountRepo()
	units := &fakeUnitRepo{units: map[string]*model.TenantUnit{
		"escola-x": {UnitID: "escola-x", DisplayName: "Escola X", Status: model.UnitStatusActive},
	}}
	return NewService(repo, units, security.NewBcryptHasher(4), audit.NewService(nullAuditRepo{}, zerolog.Nop())), repo
}

func TestProvision(t *testing.T) {
	svc, repo := newTestService()

	acct, err := svc.Provision(context.Background(), uuid.New(), &model.CreateAccountRequest{
		Email:       " Enf@Escola-X.example.com ",
		Name:        "Carla Mendes",
		Password:    "Inicial@1",
		Role:        model.RoleNurse,
		TenantID:    "escola-x",
		LicenseDays: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, "enf@escola-x.example.com", acct.Email)
	assert.True(t, acct.MustChangePassword)
	assert.Equal(t, model.AccountStatusActive, acct.Status)
	require.NotNil(t, acct.LicenseExpiry)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), *acct.LicenseExpiry, time.Minute)

	stored, err := repo.Get(context.Background(), acct.UID)
	require.NoError(t, err)
	assert.NotEqual(t, "Inicial@1", stored.PasswordHash)
}

func TestProvisionUnknownUnit(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Provision(context.Background(), uuid.New(), &model.CreateAccountRequest{
		Email:    "enf@example.com",
		Name:     "Carla Mendes",
		Password: "Inicial@1",
		Role:     model.RoleNurse,
		TenantID: "escola-inexistente",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.ErrValidation, apperr.CodeOf(err))
}

func TestProvisionWeakPassword(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Provision(context.Background(), uuid.New(), &model.CreateAccountRequest{
		Email:    "enf@example.com",
		Name:     "Carla Mendes",
		Password: "fraca",
		Role:     model.RoleNurse,
		TenantID: "escola-x",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.ErrValidation, apperr.CodeOf(err))
}

func TestBlockAndUnblock(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	acct, err := svc.Provision(ctx, uuid.New(), &model.CreateAccountRequest{
		Email:    "enf@example.com",
		Name:     "Carla Mendes",
		Password: "Inicial@1",
		Role:     model.RoleNurse,
		TenantID: "escola-x",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Block(ctx, uuid.New(), acct.UID))
	blocked, _ := repo.Get(ctx, acct.UID)
	assert.Equal(t, model.AccountStatusBlocked, blocked.Status)
	assert.Equal(t, model.LicenseStatusBlocked, blocked.LicenseStatus)

	require.NoError(t, svc.Unblock(ctx, uuid.New(), acct.UID))
	active, _ := repo.Get(ctx, acct.UID)
	assert.Equal(t, model.AccountStatusActive, active.Status)
}

func TestBlockRootRefused(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	root := &model.UserAccount{UID: uuid.New(), Email: "root@example.com", Role: model.RoleRoot}
	require.NoError(t, repo.Create(ctx, root))

	err := svc.Block(ctx, uuid.New(), root.UID)
	require.Error(t, err)
	assert.Equal(t, apperr.ErrForbidden, apperr.CodeOf(err))
}

func TestRenewLicenseFromLapsedAndRunning(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	acct, err := svc.Provision(ctx, uuid.New(), &model.CreateAccountRequest{
		Email:    "enf@example.com",
		Name:     "Carla Mendes",
		Password: "Inicial@1",
		Role:     model.RoleNurse,
		TenantID: "escola-x",
	})
	require.NoError(t, err)

	// Lapsed license renews counting from now.
	past := time.Now().AddDate(0, 0, -10)
	repo.accounts[acct.UID].LicenseExpiry = &past
	repo.accounts[acct.UID].LicenseStatus = model.LicenseStatusExpired

	renewed, err := svc.RenewLicense(ctx, uuid.New(), acct.UID, 30)
	require.NoError(t, err)
	assert.Equal(t, model.LicenseStatusActive, renewed.LicenseStatus)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), *renewed.LicenseExpiry, time.Minute)

	// Running license extends from its current expiry.
	again, err := svc.RenewLicense(ctx, uuid.New(), acct.UID, 15)
	require.NoError(t, err)
	assert.WithinDuration(t, renewed.LicenseExpiry.AddDate(0, 0, 15), *again.LicenseExpiry, time.Second)

	_, err = svc.RenewLicense(ctx, uuid.New(), acct.UID, 0)
	require.Error(t, err)
	assert.Equal(t, apperr.ErrValidation, apperr.CodeOf(err))
}

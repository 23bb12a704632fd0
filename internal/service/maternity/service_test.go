package maternity

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
)

type fakeMaternityRepo struct {
	records map[uuid.UUID]*model.MaternityRecord
}

func newFakeMaternityRepo() *fakeMaternityRepo {
	return &fakeMaternityRepo{records: make(map[uuid.UUID]*model.MaternityRecord)}
}

func (f *fakeMaternityRepo) Create(_ context.Context, record *model.MaternityRecord) error {
	clone := *record
	f.records[record.ID] = &clone
	return nil
}

func (f *fakeMaternityRepo) Get(_ context.Context, id uuid.UUID) (*model.MaternityRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, apperr.NotFound("maternity record", nil)
	}
	clone := *record
	return &clone, nil
}

func (f *fakeMaternityRepo) List(_ context.Context, tenantID string, filters *model.MaternityFilters) ([]*model.MaternityRecord, error) {
	var out []*model.MaternityRecord
	for _, r := range f.records {
		if r.TenantID != tenantID {
			continue
		}
		if filters != nil && filters.Status != "" && r.Status != filters.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeMaternityRepo) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	record, ok := f.records[id]
	if !ok {
		return apperr.NotFound("maternity record", nil)
	}
	record.Status = status
	return nil
}

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (f *fakeAuditRepo) Create(_ context.Context, log *model.AuditLog) error {
	f.entries = append(f.entries, log)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, _ string, _ *model.AuditFilters) ([]*model.AuditLog, error) {
	return f.entries, nil
}

func (f *fakeAuditRepo) DeleteBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func newTestService() (*Service, *fakeMaternityRepo, *fakeAuditRepo) {
	repo := newFakeMaternityRepo()
	audits := &fakeAuditRepo{}
	return NewService(repo, audit.NewService(audits, zerolog.Nop())), repo, audits
}

func TestRegisterNormalizesAndDefaults(t *testing.T) {
	svc, _, audits := newTestService()

	record, err := svc.Register(context.Background(), uuid.New(), "escola-x", &model.CreateMaternityRequest{
		StudentName:    "  MARIA Clara LIMA ",
		SchoolClass:    "9º ANO B",
		GestationWeeks: 24,
		PrenatalSite:   "POSTO DE SAÚDE CENTRAL",
	})
	require.NoError(t, err)

	assert.Equal(t, "maria clara lima", record.StudentName)
	assert.Equal(t, "Maria Clara Lima", record.DisplayName)
	assert.Equal(t, "9º ano b", record.SchoolClass)
	assert.Equal(t, "posto de saúde central", record.PrenatalSite)
	assert.Equal(t, model.PrenatalUpToDate, record.PrenatalStatus)
	assert.Equal(t, model.MaternityStatusActive, record.Status)
	require.Len(t, audits.entries, 1)
	assert.Equal(t, "create", audits.entries[0].Action)
}

func TestRegisterRejectsShortName(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), uuid.New(), "escola-x", &model.CreateMaternityRequest{
		StudentName: "Maria",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.ErrValidation, apperr.CodeOf(err))
}

func TestCloseEndsFollowUp(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	actor := uuid.New()

	record, err := svc.Register(ctx, actor, "escola-x", &model.CreateMaternityRequest{
		StudentName:    "Maria Clara Lima",
		PrenatalStatus: model.PrenatalNotStarted,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Close(ctx, actor, record.ID))
	assert.Equal(t, model.MaternityStatusClosed, repo.records[record.ID].Status)

	// Closing again is an accepted no-op.
	require.NoError(t, svc.Close(ctx, actor, record.ID))
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	actor := uuid.New()

	open, err := svc.Register(ctx, actor, "escola-x", &model.CreateMaternityRequest{StudentName: "Maria Clara Lima"})
	require.NoError(t, err)
	closed, err := svc.Register(ctx, actor, "escola-x", &model.CreateMaternityRequest{StudentName: "Ana Beatriz Souza"})
	require.NoError(t, err)
	require.NoError(t, svc.Close(ctx, actor, closed.ID))

	records, err := svc.List(ctx, "escola-x", &model.MaternityFilters{Status: model.MaternityStatusActive})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, open.ID, records[0].ID)
	assert.Equal(t, "Maria Clara Lima", records[0].DisplayName)
}

package person

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/service/audit"
	apperr "github.com/rodhonsys/saude-escolar-api/pkg/errors"
)

// fakePersonRepo mimics the merge-upsert contract of the Postgres
// repository: non-empty incoming fields overwrite, empty ones keep the
// stored value.
type fakePersonRepo struct {
	records map[string]*model.PersonRecord
}

func newFakePersonRepo() *fakePersonRepo {
	return &fakePersonRepo{records: make(map[string]*model.PersonRecord)}
}

func (f *fakePersonRepo) Upsert(_ context.Context, person *model.PersonRecord) error {
	existing, ok := f.records[person.PersonKey]
	if !ok {
		clone := *person
		f.records[person.PersonKey] = &clone
		return nil
	}
	merged := *existing
	mergeField(&merged.FullName, person.FullName)
	mergeField(&merged.GuardianName, person.GuardianName)
	mergeField(&merged.BirthDate, person.BirthDate)
	mergeField(&merged.Sex, person.Sex)
	mergeField(&merged.Ethnicity, person.Ethnicity)
	mergeField(&merged.SchoolClass, person.SchoolClass)
	mergeField(&merged.JobTitle, person.JobTitle)
	mergeField(&merged.Weight, person.Weight)
	mergeField(&merged.Height, person.Height)
	mergeField(&merged.BMI, person.BMI)
	f.records[person.PersonKey] = &merged
	return nil
}

func mergeField(dst *string, incoming string) {
	if incoming != "" {
		*dst = incoming
	}
}

func (f *fakePersonRepo) UpsertTx(ctx context.Context, _ *sqlx.Tx, person *model.PersonRecord) error {
	return f.Upsert(ctx, person)
}

func (f *fakePersonRepo) Get(_ context.Context, personKey string) (*model.PersonRecord, error) {
	record, ok := f.records[personKey]
	if !ok {
		return nil, apperr.NotFound("person", nil)
	}
	clone := *record
	return &clone, nil
}

func (f *fakePersonRepo) List(_ context.Context, tenantID string, _ *model.PersonFilters) ([]*model.PersonRecord, error) {
	var out []*model.PersonRecord
	for _, r := range f.records {
		if r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePersonRepo) SearchByNamePrefix(_ context.Context, tenantID, profile, prefix string, _ int) ([]*model.PersonRecord, error) {
	var out []*model.PersonRecord
	for _, r := range f.records {
		if r.TenantID == tenantID && r.Profile == profile && len(r.FullName) >= len(prefix) && r.FullName[:len(prefix)] == prefix {
			out = append(out, r)
		}
	}
	return out, nil
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

func newTestService() (*Service, *fakePersonRepo, *fakeAuditRepo) {
	repo := newFakePersonRepo()
	audits := &fakeAuditRepo{}
	return NewService(repo, audit.NewService(audits, zerolog.Nop())), repo, audits
}

func TestRegisterComputesKeyAndNormalizes(t *testing.T) {
	svc, _, audits := newTestService()
	actor := uuid.New()

	record, err := svc.Register(context.Background(), actor, "escola-x", &model.UpsertPersonRequest{
		FullName:     "  ANA Maria SOUZA ",
		BirthDate:    "2012-05-01",
		GuardianName: "Joana Souza",
		Weight:       "30",
		Height:       "1,20",
	})
	require.NoError(t, err)

	assert.Equal(t, "ana-maria-souza_20120501_joana-souza_escola-x", record.PersonKey)
	assert.Equal(t, "ana maria souza", record.FullName)
	assert.Equal(t, "Ana Maria Souza", record.DisplayName)
	assert.Positive(t, record.Age)
	assert.Equal(t, model.PersonProfileStudent, record.Profile)
	assert.Equal(t, "20,8", record.BMI)
	require.Len(t, audits.entries, 1)
	assert.Equal(t, "upsert", audits.entries[0].Action)
}

func TestRegisterMergesOnResubmission(t *testing.T) {
	svc, _, _ := newTestService()
	actor := uuid.New()
	ctx := context.Background()

	first, err := svc.Register(ctx, actor, "escola-x", &model.UpsertPersonRequest{
		FullName:     "Ana Maria Souza",
		BirthDate:    "2012-05-01",
		GuardianName: "Joana Souza",
		SchoolClass:  "5º Ano B",
		Weight:       "30",
	})
	require.NoError(t, err)

	// Resubmission with different casing and an empty class field.
	second, err := svc.Register(ctx, actor, "escola-x", &model.UpsertPersonRequest{
		FullName:     "ANA MARIA SOUZA",
		BirthDate:    "2012-05-01",
		GuardianName: "JOANA SOUZA",
		Weight:       "32",
	})
	require.NoError(t, err)

	assert.Equal(t, first.PersonKey, second.PersonKey)
	assert.Equal(t, "5º ano b", second.SchoolClass)
	assert.Equal(t, "32", second.Weight)
}

func TestRegisterRejectsShortName(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), uuid.New(), "escola-x", &model.UpsertPersonRequest{
		FullName: "Ana",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.ErrValidation, apperr.CodeOf(err))
}

func TestFindReturningPatient(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, uuid.New(), "escola-x", &model.UpsertPersonRequest{
		FullName:     "Ana Maria Souza",
		BirthDate:    "2012-05-01",
		GuardianName: "Joana Souza",
	})
	require.NoError(t, err)

	found, err := svc.Find(ctx, "escola-x", &model.PersonSearchRequest{
		FullName:     "ana maria souza",
		BirthDate:    "2012-05-01",
		GuardianName: "joana souza",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana maria souza", found.FullName)
}

func TestSuggestRequiresPrefix(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Suggest(context.Background(), "escola-x", "", "   ", 10)
	require.Error(t, err)
	assert.Equal(t, apperr.ErrValidation, apperr.CodeOf(err))
}

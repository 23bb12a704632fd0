package person

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	"github.com/rodhonsys/saude-escolar-api/internal/service/audit"
	apperr "github.com/rodhonsys/saude-escolar-api/pkg/errors"
	"github.com/rodhonsys/saude-escolar-api/pkg/identity"
)

type PersonService interface {
	Register(ctx context.Context, actorID uuid.UUID, tenantID string, req *model.UpsertPersonRequest) (*model.PersonRecord, error)
	Get(ctx context.Context, actorID uuid.UUID, personKey string) (*model.PersonRecord, error)
	Find(ctx context.Context, tenantID string, req *model.PersonSearchRequest) (*model.PersonRecord, error)
	List(ctx context.Context, tenantID string, filters *model.PersonFilters) ([]*model.PersonRecord, error)
	Suggest(ctx context.Context, tenantID, profile, namePrefix string, limit int) ([]*model.PersonRecord, error)
	BuildRecord(tenantID string, req *model.UpsertPersonRequest) (*model.PersonRecord, error)
}

type Service struct {
	repo    repository.PersonRepository
	auditor *audit.Service
}

func NewService(repo repository.PersonRepository, auditor *audit.Service) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Register computes the person key from the intake fields and merges the
// form into the stored record. Registering the same person twice lands on
// the same row; previously filled fields survive an empty resubmission.
func (s *Service) Register(ctx context.Context, actorID uuid.UUID, tenantID string, req *model.UpsertPersonRequest) (*model.PersonRecord, error) {
	record, err := s.BuildRecord(tenantID, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, actorID, tenantID, "upsert", "person", record.PersonKey, nil)
	stored, err := s.repo.Get(ctx, record.PersonKey)
	if err != nil {
		return nil, err
	}
	return decorate(stored), nil
}

// BuildRecord normalizes the form into storage convention and derives
// the key. It does not touch the database; the visit batch reuses it to
// upsert the person inside its own transaction.
func (s *Service) BuildRecord(tenantID string, req *model.UpsertPersonRequest) (*model.PersonRecord, error) {
	key, err := identity.ComputePersonKey(req.FullName, req.BirthDate, req.GuardianName, tenantID)
	if err != nil {
		return nil, apperr.Validation("invalid identity fields", err)
	}

	profile := req.Profile
	if profile == "" {
		profile = model.PersonProfileStudent
	}

	record := &model.PersonRecord{
		PersonKey:    key,
		TenantID:     tenantID,
		Profile:      profile,
		FullName:     identity.NormalizeText(req.FullName),
		GuardianName: identity.NormalizeText(req.GuardianName),
		BirthDate:    req.BirthDate,
		Sex:          identity.NormalizeText(req.Sex),
		Ethnicity:    identity.NormalizeText(req.Ethnicity),
		SchoolClass:  identity.NormalizeText(req.SchoolClass),
		JobTitle:     identity.NormalizeText(req.JobTitle),
		Weight:       req.Weight,
		Height:       req.Height,
	}
	record.BMI = ComputeBMI(req.Weight, req.Height)

	if req.Health != nil {
		record.Health = *req.Health
	}
	if req.Contact != nil {
		record.Contact = *req.Contact
	}
	return record, nil
}

func (s *Service) Get(ctx context.Context, actorID uuid.UUID, personKey string) (*model.PersonRecord, error) {
	record, err := s.repo.Get(ctx, personKey)
	if err != nil {
		return nil, err
	}
	s.auditor.Log(ctx, actorID, record.TenantID, "read", "person", personKey, nil)
	return decorate(record), nil
}

// Find recomputes the key from raw intake input and fetches the record,
// backing the "returning patient" lookup on the visit form.
func (s *Service) Find(ctx context.Context, tenantID string, req *model.PersonSearchRequest) (*model.PersonRecord, error) {
	key, err := identity.ComputePersonKey(req.FullName, req.BirthDate, req.GuardianName, tenantID)
	if err != nil {
		return nil, apperr.Validation("invalid identity fields", err)
	}
	record, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return decorate(record), nil
}

func (s *Service) List(ctx context.Context, tenantID string, filters *model.PersonFilters) ([]*model.PersonRecord, error) {
	records, err := s.repo.List(ctx, tenantID, filters)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		decorate(r)
	}
	return records, nil
}

// Suggest returns prefix matches for the visit-form dropdown. The prefix
// is normalized to the lowercase storage convention before matching.
func (s *Service) Suggest(ctx context.Context, tenantID, profile, namePrefix string, limit int) ([]*model.PersonRecord, error) {
	if profile == "" {
		profile = model.PersonProfileStudent
	}
	prefix := identity.NormalizeText(namePrefix)
	if len([]rune(prefix)) < 3 {
		return nil, apperr.Validation("name prefix must have at least 3 characters", nil)
	}
	if limit <= 0 || limit > 20 {
		limit = 5
	}
	records, err := s.repo.SearchByNamePrefix(ctx, tenantID, profile, prefix, limit)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		decorate(r)
	}
	return records, nil
}

// decorate fills the derived presentation fields on a stored record.
func decorate(record *model.PersonRecord) *model.PersonRecord {
	record.DisplayName = identity.DisplayName(record.FullName)
	if age, ok := identity.Age(record.BirthDate, time.Now()); ok {
		record.Age = age
	}
	return record
}

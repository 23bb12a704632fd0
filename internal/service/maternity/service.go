package maternity

import (
	"context"

	"github.com/google/uuid"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	"github.com/rodhonsys/saude-escolar-api/internal/service/audit"
	apperr "github.com/rodhonsys/saude-escolar-api/pkg/errors"
	"github.com/rodhonsys/saude-escolar-api/pkg/identity"
)

type MaternityService interface {
	Register(ctx context.Context, actorID uuid.UUID, tenantID string, req *model.CreateMaternityRequest) (*model.MaternityRecord, error)
	Get(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*model.MaternityRecord, error)
	List(ctx context.Context, tenantID string, filters *model.MaternityFilters) ([]*model.MaternityRecord, error)
	Close(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error
}

type Service struct {
	repo    repository.MaternityRepository
	auditor *audit.Service
}

func NewService(repo repository.MaternityRepository, auditor *audit.Service) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Register opens a gestational follow-up for a student. Each submission
// is its own entry; the coordination closes superseded ones rather than
// editing them, keeping the follow-up history append-only.
func (s *Service) Register(ctx context.Context, actorID uuid.UUID, tenantID string, req *model.CreateMaternityRequest) (*model.MaternityRecord, error) {
	if err := identity.ValidateFullName(req.StudentName); err != nil {
		return nil, apperr.Validation("invalid student name", err)
	}

	prenatal := req.PrenatalStatus
	if prenatal == "" {
		prenatal = model.PrenatalUpToDate
	}

	record := &model.MaternityRecord{
		ID:             uuid.New(),
		TenantID:       tenantID,
		StudentName:    identity.NormalizeText(req.StudentName),
		SchoolClass:    identity.NormalizeText(req.SchoolClass),
		PrenatalStatus: prenatal,
		GestationWeeks: req.GestationWeeks,
		PrenatalSite:   identity.NormalizeText(req.PrenatalSite),
		Notes:          identity.NormalizeText(req.Notes),
		Status:         model.MaternityStatusActive,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, actorID, tenantID, "create", "maternity", record.ID.String(), model.JSONMap{
		"student_name": record.StudentName,
	})
	return decorate(record), nil
}

func (s *Service) Get(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*model.MaternityRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.auditor.Log(ctx, actorID, record.TenantID, "read", "maternity", id.String(), nil)
	return decorate(record), nil
}

func (s *Service) List(ctx context.Context, tenantID string, filters *model.MaternityFilters) ([]*model.MaternityRecord, error) {
	records, err := s.repo.List(ctx, tenantID, filters)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		decorate(r)
	}
	return records, nil
}

// Close ends the follow-up. Closing an already closed record is a no-op
// accepted for idempotent retries.
func (s *Service) Close(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if record.Status == model.MaternityStatusClosed {
		return nil
	}

	if err := s.repo.SetStatus(ctx, id, model.MaternityStatusClosed); err != nil {
		return err
	}
	s.auditor.Log(ctx, actorID, record.TenantID, "close", "maternity", id.String(), nil)
	return nil
}

func decorate(record *model.MaternityRecord) *model.MaternityRecord {
	record.DisplayName = identity.DisplayName(record.StudentName)
	return record
}

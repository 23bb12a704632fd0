package visit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	"github.com/rodhonsys/saude-escolar-api/internal/service/audit"
	"github.com/rodhonsys/saude-escolar-api/internal/service/person"
	"github.com/rodhonsys/saude-escolar-api/pkg/identity"
)

type VisitService interface {
	Create(ctx context.Context, actor *model.UserAccount, tenantID string, req *model.CreateVisitRequest) (*model.VisitRecord, error)
	Get(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*model.VisitRecord, error)
	ListByPerson(ctx context.Context, actorID uuid.UUID, personKey string) ([]*model.VisitRecord, error)
	List(ctx context.Context, tenantID string, filters *model.VisitFilters) ([]*model.VisitRecord, error)
	Folder(ctx context.Context, actorID uuid.UUID, personKey string) ([]*model.FolderEntry, error)
}

type Service struct {
	repo    repository.VisitRepository
	persons *person.Service
	auditor *audit.Service
}

func NewService(repo repository.VisitRepository, persons *person.Service, auditor *audit.Service) *Service {
	return &Service{repo: repo, persons: persons, auditor: auditor}
}

// Create registers a nursing encounter. The patient fields on the form
// feed the person key, so the visit lands on the existing record or
// creates it; visit row, person merge and folder entry commit together.
func (s *Service) Create(ctx context.Context, actor *model.UserAccount, tenantID string, req *model.CreateVisitRequest) (*model.VisitRecord, error) {
	record, err := s.persons.BuildRecord(tenantID, &model.UpsertPersonRequest{
		Profile:      req.Profile,
		FullName:     req.FullName,
		GuardianName: req.GuardianName,
		BirthDate:    req.BirthDate,
		Sex:          req.Sex,
		SchoolClass:  req.SchoolClass,
		JobTitle:     req.JobTitle,
		Weight:       req.Weight,
		Height:       req.Height,
		Health:       req.Health,
		Contact:      req.Contact,
	})
	if err != nil {
		return nil, err
	}

	visitType := req.VisitType
	if visitType == "" {
		visitType = model.VisitTypeLocal
	}
	status := model.VisitStatusConcluded
	if visitType == model.VisitTypeRemoval {
		status = model.VisitStatusRemoval
	}

	visitDate := req.VisitDate
	if visitDate == "" {
		visitDate = time.Now().Format("2006-01-02")
	}
	visitTime := req.VisitTime
	if visitTime == "" {
		visitTime = time.Now().Format("15:04")
	}

	visit := &model.VisitRecord{
		ID:        uuid.New(),
		Code:      newVisitCode(),
		PersonKey: record.PersonKey,
		TenantID:  tenantID,

		VisitType:   visitType,
		Status:      status,
		VisitDate:   visitDate,
		VisitTime:   visitTime,
		Temperature: req.Temperature,
		Weight:      req.Weight,
		Height:      req.Height,
		BMI:         person.ComputeBMI(req.Weight, req.Height),
		Reason:      identity.NormalizeText(req.Reason),
		Procedures:  identity.NormalizeText(req.Procedures),
		Medicated:   identity.NormalizeText(req.Medicated),
		Notes:       identity.NormalizeText(req.Notes),

		ProfessionalID:       actor.UID,
		ProfessionalName:     actor.Name,
		ProfessionalRegistry: actor.Registry,
	}

	entry := &model.FolderEntry{
		PersonKey: record.PersonKey,
		TenantID:  tenantID,
		DocType:   model.FolderDocTypeVisit,
		Title:     fmt.Sprintf("atendimento %s", visit.Code),
		DocDate:   visitDate,
		Author:    actor.Name,
	}

	if err := s.repo.CreateBatch(ctx, visit, record, entry); err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, actor.UID, tenantID, "create", "visit", visit.ID.String(), model.JSONMap{
		"person_key": record.PersonKey,
		"code":       visit.Code,
	})
	return visit, nil
}

func (s *Service) Get(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*model.VisitRecord, error) {
	visit, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.auditor.Log(ctx, actorID, visit.TenantID, "read", "visit", id.String(), nil)
	return visit, nil
}

func (s *Service) ListByPerson(ctx context.Context, actorID uuid.UUID, personKey string) ([]*model.VisitRecord, error) {
	visits, err := s.repo.ListByPerson(ctx, personKey)
	if err != nil {
		return nil, err
	}
	if len(visits) > 0 {
		s.auditor.Log(ctx, actorID, visits[0].TenantID, "read", "visit_history", personKey, nil)
	}
	return visits, nil
}

func (s *Service) List(ctx context.Context, tenantID string, filters *model.VisitFilters) ([]*model.VisitRecord, error) {
	return s.repo.List(ctx, tenantID, filters)
}

func (s *Service) Folder(ctx context.Context, actorID uuid.UUID, personKey string) ([]*model.FolderEntry, error) {
	entries, err := s.repo.ListFolder(ctx, personKey)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		s.auditor.Log(ctx, actorID, entries[0].TenantID, "read", "folder", personKey, nil)
	}
	return entries, nil
}

// newVisitCode mints the human-facing encounter code shown on the folder
// and on printouts, e.g. "baenf-20260831-1a2b3c4d".
func newVisitCode() string {
	short := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("baenf-%s-%s", time.Now().Format("20060102"), short)
}

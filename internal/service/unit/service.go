package unit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	"github.com/rodhonsys/saude-escolar-api/internal/service/audit"
	apperr "github.com/rodhonsys/saude-escolar-api/pkg/errors"
	"github.com/rodhonsys/saude-escolar-api/pkg/identity"
)

const unitListKey = "units:all"

type UnitService interface {
	Create(ctx context.Context, actorID uuid.UUID, req *model.CreateUnitRequest) (*model.TenantUnit, error)
	Get(ctx context.Context, unitID string) (*model.TenantUnit, error)
	List(ctx context.Context) ([]*model.TenantUnit, error)
	SetStatus(ctx context.Context, actorID uuid.UUID, unitID, status string) error
}

// Service manages tenant school units. The unit list backs every tenant
// dropdown, so reads go through a short-lived in-process cache.
type Service struct {
	repo    repository.UnitRepository
	auditor *audit.Service
	cache   *cache.Cache
}

func NewService(repo repository.UnitRepository, auditor *audit.Service) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		cache:   cache.New(5*time.Minute, 10*time.Minute),
	}
}

// Create registers a school. The unit id is the slug of the display name
// and becomes the tenant id on every person, visit and account row, so
// it is immutable after creation.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req *model.CreateUnitRequest) (*model.TenantUnit, error) {
	unitID := identity.Slugify(req.DisplayName)
	if unitID == "" {
		return nil, apperr.Validation("unit name is required", nil)
	}

	unit := &model.TenantUnit{
		UnitID:      unitID,
		DisplayName: identity.NormalizeText(req.DisplayName),
		Status:      model.UnitStatusActive,
	}
	if err := s.repo.Create(ctx, unit); err != nil {
		return nil, err
	}

	s.cache.Delete(unitListKey)
	s.auditor.Log(ctx, actorID, unitID, "create", "unit", unitID, nil)
	return unit, nil
}

func (s *Service) Get(ctx context.Context, unitID string) (*model.TenantUnit, error) {
	return s.repo.Get(ctx, unitID)
}

func (s *Service) List(ctx context.Context) ([]*model.TenantUnit, error) {
	if cached, found := s.cache.Get(unitListKey); found {
		return cached.([]*model.TenantUnit), nil
	}

	units, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(unitListKey, units, cache.DefaultExpiration)
	return units, nil
}

// SetStatus deactivates or reactivates a unit. Deactivation never
// cascades to the unit's records or accounts.
func (s *Service) SetStatus(ctx context.Context, actorID uuid.UUID, unitID, status string) error {
	if status != model.UnitStatusActive && status != model.UnitStatusInactive {
		return apperr.Validation("invalid unit status", nil)
	}
	if err := s.repo.SetStatus(ctx, unitID, status); err != nil {
		return err
	}

	s.cache.Delete(unitListKey)
	s.auditor.Log(ctx, actorID, unitID, "set_status", "unit", unitID, model.JSONMap{"status": status})
	return nil
}

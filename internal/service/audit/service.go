package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/repository"
)

// Service records who touched which clinical entity. Writes are
// best-effort: a failed audit insert is logged and swallowed so it
// never masks the outcome of the operation it describes.
type Service struct {
	repo   repository.AuditRepository
	logger zerolog.Logger
}

func NewService(repo repository.AuditRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Log(ctx context.Context, actorID uuid.UUID, tenantID, action, entityType, entityID string, metadata model.JSONMap) {
	entry := &model.AuditLog{
		ID:         uuid.New(),
		ActorID:    actorID,
		TenantID:   tenantID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("failed to write audit log")
	}
}

func (s *Service) List(ctx context.Context, tenantID string, filters *model.AuditFilters) ([]*model.AuditLog, error) {
	return s.repo.List(ctx, tenantID, filters)
}

func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteBefore(ctx, before)
}

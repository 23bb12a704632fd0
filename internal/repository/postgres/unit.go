package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	apperr "github.com/rodhonsys/saude-escolar-api/pkg/errors"
)

type unitRepository struct {
	BaseRepository
}

func NewUnitRepository(base BaseRepository) repository.UnitRepository {
	return &unitRepository{base}
}

func (r *unitRepository) Create(ctx context.Context, unit *model.TenantUnit) error {
	query := `
		INSERT INTO tenant_units (unit_id, display_name, status, created_at, updated_at)
		VALUES (:unit_id, :display_name, :status, :created_at, :updated_at)
	`
	unit.CreatedAt = time.Now()
	unit.UpdatedAt = unit.CreatedAt

	_, err := r.db.NamedExecContext(ctx, query, unit)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("unit already exists", err)
		}
		return fmt.Errorf("failed to create unit: %w", err)
	}
	return nil
}

func (r *unitRepository) Get(ctx context.Context, unitID string) (*model.TenantUnit, error) {
	query := `SELECT * FROM tenant_units WHERE unit_id = $1`
	var unit model.TenantUnit
	err := r.db.GetContext(ctx, &unit, query, unitID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("unit", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return &unit, nil
}

func (r *unitRepository) List(ctx context.Context) ([]*model.TenantUnit, error) {
	query := `SELECT * FROM tenant_units ORDER BY display_name ASC`
	var units []*model.TenantUnit
	if err := r.db.SelectContext(ctx, &units, query); err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

func (r *unitRepository) SetStatus(ctx context.Context, unitID, status string) error {
	query := `UPDATE tenant_units SET status = $2, updated_at = NOW() WHERE unit_id = $1`
	result, err := r.db.ExecContext(ctx, query, unitID, status)
	if err != nil {
		return fmt.Errorf("failed to update unit status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.NotFound("unit", nil)
	}
	return nil
}

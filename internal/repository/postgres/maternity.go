package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	apperr "github.com/rodhonsys/saude-escolar-api/pkg/errors"
)

type maternityRepository struct {
	BaseRepository
}

func NewMaternityRepository(base BaseRepository) repository.MaternityRepository {
	return &maternityRepository{base}
}

func (r *maternityRepository) Create(ctx context.Context, record *model.MaternityRecord) error {
	query := `
		INSERT INTO maternity_records (
			id, tenant_id, student_name, school_class, prenatal_status,
			gestation_weeks, prenatal_site, notes, status, created_at, updated_at
		) VALUES (
			:id, :tenant_id, :student_name, :school_class, :prenatal_status,
			:gestation_weeks, :prenatal_site, :notes, :status, :created_at, :updated_at
		)
	`
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to create maternity record: %w", err)
	}
	return nil
}

func (r *maternityRepository) Get(ctx context.Context, id uuid.UUID) (*model.MaternityRecord, error) {
	query := `SELECT * FROM maternity_records WHERE id = $1`
	var record model.MaternityRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("maternity record", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get maternity record: %w", err)
	}
	return &record, nil
}

func (r *maternityRepository) List(ctx context.Context, tenantID string, filters *model.MaternityFilters) ([]*model.MaternityRecord, error) {
	query := `SELECT * FROM maternity_records WHERE tenant_id = $1`
	args := []interface{}{tenantID}

	if filters != nil && filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, filters.Status)
	}
	query += " ORDER BY updated_at DESC"
	if filters != nil && filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filters.Limit)
	}

	var records []*model.MaternityRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list maternity records: %w", err)
	}
	return records, nil
}

func (r *maternityRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE maternity_records SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update maternity record status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.NotFound("maternity record", nil)
	}
	return nil
}

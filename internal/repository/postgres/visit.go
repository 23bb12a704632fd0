package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	apperr "github.com/rodhonsys/saude-escolar-api/pkg/errors"
)

type visitRepository struct {
	BaseRepository
	persons repository.PersonRepository
	outbox  repository.OutboxRepository
}

func NewVisitRepository(base BaseRepository, persons repository.PersonRepository, outbox repository.OutboxRepository) repository.VisitRepository {
	return &visitRepository{BaseRepository: base, persons: persons, outbox: outbox}
}

// CreateBatch writes the visit, the person upsert and the folder entry in
// one transaction. Either all three become visible or none does; a visit
// must never exist against a person profile that failed to persist.
func (r *visitRepository) CreateBatch(ctx context.Context, visit *model.VisitRecord, person *model.PersonRecord, entry *model.FolderEntry) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.persons.UpsertTx(ctx, tx, person); err != nil {
			return err
		}
		if err := r.insertVisit(ctx, tx, visit); err != nil {
			return err
		}
		if entry != nil {
			if err := r.insertFolderEntry(ctx, tx, entry); err != nil {
				return err
			}
		}
		return r.outbox.CreateTx(ctx, tx, &model.OutboxEvent{
			EventType:   model.EventVisitCreated,
			AggregateID: visit.ID.String(),
			Payload:     mustJSON(visit),
		})
	})
}

func (r *visitRepository) insertVisit(ctx context.Context, tx *sqlx.Tx, visit *model.VisitRecord) error {
	query := `
		INSERT INTO visit_records (
			id, code, person_key, tenant_id, visit_type, status,
			visit_date, visit_time, temperature, weight, height, bmi,
			reason, procedures, medicated, notes,
			professional_id, professional_name, professional_registry, created_at
		) VALUES (
			:id, :code, :person_key, :tenant_id, :visit_type, :status,
			:visit_date, :visit_time, :temperature, :weight, :height, :bmi,
			:reason, :procedures, :medicated, :notes,
			:professional_id, :professional_name, :professional_registry, :created_at
		)
	`
	visit.CreatedAt = time.Now()
	if _, err := tx.NamedExecContext(ctx, query, visit); err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

func (r *visitRepository) insertFolderEntry(ctx context.Context, tx *sqlx.Tx, entry *model.FolderEntry) error {
	query := `
		INSERT INTO folder_entries (
			id, person_key, tenant_id, doc_type, title, doc_date, author, created_at
		) VALUES (
			:id, :person_key, :tenant_id, :doc_type, :title, :doc_date, :author, :created_at
		)
	`
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to create folder entry: %w", err)
	}
	return nil
}

func (r *visitRepository) Get(ctx context.Context, id uuid.UUID) (*model.VisitRecord, error) {
	query := `SELECT * FROM visit_records WHERE id = $1`
	var visit model.VisitRecord
	err := r.db.GetContext(ctx, &visit, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("visit", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return &visit, nil
}

func (r *visitRepository) ListByPerson(ctx context.Context, personKey string) ([]*model.VisitRecord, error) {
	query := `SELECT * FROM visit_records WHERE person_key = $1 ORDER BY created_at DESC`
	var visits []*model.VisitRecord
	if err := r.db.SelectContext(ctx, &visits, query, personKey); err != nil {
		return nil, fmt.Errorf("failed to list visits for person: %w", err)
	}
	return visits, nil
}

func (r *visitRepository) List(ctx context.Context, tenantID string, filters *model.VisitFilters) ([]*model.VisitRecord, error) {
	query := `SELECT * FROM visit_records WHERE tenant_id = $1`
	args := []interface{}{tenantID}

	if filters != nil {
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", len(args)+1)
			args = append(args, filters.Status)
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND created_at >= $%d", len(args)+1)
			args = append(args, filters.StartDate)
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND created_at <= $%d", len(args)+1)
			args = append(args, filters.EndDate)
		}
	}
	query += " ORDER BY created_at DESC"
	if filters != nil && filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filters.Limit)
	}

	var visits []*model.VisitRecord
	if err := r.db.SelectContext(ctx, &visits, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

func (r *visitRepository) ListFolder(ctx context.Context, personKey string) ([]*model.FolderEntry, error) {
	query := `SELECT * FROM folder_entries WHERE person_key = $1 ORDER BY created_at DESC`
	var entries []*model.FolderEntry
	if err := r.db.SelectContext(ctx, &entries, query, personKey); err != nil {
		return nil, fmt.Errorf("failed to list folder entries: %w", err)
	}
	return entries, nil
}

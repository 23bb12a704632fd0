package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	apperr "github.com/rodhonsys/saude-escolar-api/pkg/errors"
)

type personRepository struct {
	BaseRepository
}

func NewPersonRepository(base BaseRepository) repository.PersonRepository {
	return &personRepository{base}
}

// upsertQuery merges instead of overwriting: NULLIF(..., '') keeps the
// stored value whenever the incoming field is empty. Concurrent writers
// computing the same key land on the same row; the upsert is idempotent
// so neither corrupts the other.
const upsertQuery = `
	INSERT INTO person_records (
		person_key, tenant_id, profile, full_name, guardian_name, birth_date,
		sex, ethnicity, school_class, job_title, weight, height, bmi,
		health, contact, created_at, updated_at
	) VALUES (
		:person_key, :tenant_id, :profile, :full_name, :guardian_name, :birth_date,
		:sex, :ethnicity, :school_class, :job_title, :weight, :height, :bmi,
		:health, :contact, :created_at, :updated_at
	)
	ON CONFLICT (person_key) DO UPDATE SET
		profile       = COALESCE(NULLIF(EXCLUDED.profile, ''), person_records.profile),
		full_name     = COALESCE(NULLIF(EXCLUDED.full_name, ''), person_records.full_name),
		guardian_name = COALESCE(NULLIF(EXCLUDED.guardian_name, ''), person_records.guardian_name),
		birth_date    = COALESCE(NULLIF(EXCLUDED.birth_date, ''), person_records.birth_date),
		sex           = COALESCE(NULLIF(EXCLUDED.sex, ''), person_records.sex),
		ethnicity     = COALESCE(NULLIF(EXCLUDED.ethnicity, ''), person_records.ethnicity),
		school_class  = COALESCE(NULLIF(EXCLUDED.school_class, ''), person_records.school_class),
		job_title     = COALESCE(NULLIF(EXCLUDED.job_title, ''), person_records.job_title),
		weight        = COALESCE(NULLIF(EXCLUDED.weight, ''), person_records.weight),
		height        = COALESCE(NULLIF(EXCLUDED.height, ''), person_records.height),
		bmi           = COALESCE(NULLIF(EXCLUDED.bmi, ''), person_records.bmi),
		health        = person_records.health || EXCLUDED.health,
		contact       = person_records.contact || EXCLUDED.contact,
		updated_at    = EXCLUDED.updated_at
`

func (r *personRepository) Upsert(ctx context.Context, person *model.PersonRecord) error {
	person.CreatedAt = time.Now()
	person.UpdatedAt = person.CreatedAt

	if _, err := r.db.NamedExecContext(ctx, upsertQuery, person); err != nil {
		return fmt.Errorf("failed to upsert person %s: %w", person.PersonKey, err)
	}
	return nil
}

func (r *personRepository) UpsertTx(ctx context.Context, tx *sqlx.Tx, person *model.PersonRecord) error {
	person.CreatedAt = time.Now()
	person.UpdatedAt = person.CreatedAt

	if _, err := tx.NamedExecContext(ctx, upsertQuery, person); err != nil {
		return fmt.Errorf("failed to upsert person %s: %w", person.PersonKey, err)
	}
	return nil
}

func (r *personRepository) Get(ctx context.Context, personKey string) (*model.PersonRecord, error) {
	query := `SELECT * FROM person_records WHERE person_key = $1`
	var person model.PersonRecord
	err := r.db.GetContext(ctx, &person, query, personKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("person", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return &person, nil
}

func (r *personRepository) List(ctx context.Context, tenantID string, filters *model.PersonFilters) ([]*model.PersonRecord, error) {
	query := `SELECT * FROM person_records WHERE tenant_id = $1`
	args := []interface{}{tenantID}

	if filters != nil && filters.Profile != "" {
		query += fmt.Sprintf(" AND profile = $%d", len(args)+1)
		args = append(args, filters.Profile)
	}
	query += " ORDER BY full_name ASC"
	if filters != nil && filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filters.Limit)
	}

	var persons []*model.PersonRecord
	if err := r.db.SelectContext(ctx, &persons, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	return persons, nil
}

// SearchByNamePrefix backs the suggestion dropdown on the visit form.
// Names are stored lowercase, so the prefix is matched as-is by the
// caller after normalization.
func (r *personRepository) SearchByNamePrefix(ctx context.Context, tenantID, profile, prefix string, limit int) ([]*model.PersonRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `
		SELECT * FROM person_records
		WHERE tenant_id = $1 AND profile = $2 AND full_name LIKE $3 || '%'
		ORDER BY full_name ASC
		LIMIT $4
	`
	var persons []*model.PersonRecord
	if err := r.db.SelectContext(ctx, &persons, query, tenantID, profile, prefix, limit); err != nil {
		return nil, fmt.Errorf("failed to search persons: %w", err)
	}
	return persons, nil
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
)

// All repository interfaces in one file
type (
	// PersonRepository stores person records keyed by the deterministic
	// person key. Upsert merges: incoming non-empty fields overwrite,
	// empty fields preserve the stored value.
	PersonRepository interface {
		Upsert(ctx context.Context, person *model.PersonRecord) error
		UpsertTx(ctx context.Context, tx *sqlx.Tx, person *model.PersonRecord) error
		Get(ctx context.Context, personKey string) (*model.PersonRecord, error)
		List(ctx context.Context, tenantID string, filters *model.PersonFilters) ([]*model.PersonRecord, error)
		SearchByNamePrefix(ctx context.Context, tenantID, profile, prefix string, limit int) ([]*model.PersonRecord, error)
	}

	// VisitRepository appends nursing encounters. CreateBatch commits the
	// visit, the person upsert and the folder entry as one transaction.
	VisitRepository interface {
		CreateBatch(ctx context.Context, visit *model.VisitRecord, person *model.PersonRecord, entry *model.FolderEntry) error
		Get(ctx context.Context, id uuid.UUID) (*model.VisitRecord, error)
		ListByPerson(ctx context.Context, personKey string) ([]*model.VisitRecord, error)
		List(ctx context.Context, tenantID string, filters *model.VisitFilters) ([]*model.VisitRecord, error)
		ListFolder(ctx context.Context, personKey string) ([]*model.FolderEntry, error)
	}

	// AccountRepository stores licensed users. Every mutating method that
	// affects guard-relevant state writes the matching outbox event in
	// the same transaction.
	AccountRepository interface {
		Create(ctx context.Context, acct *model.UserAccount) error
		Get(ctx context.Context, uid uuid.UUID) (*model.UserAccount, error)
		GetByEmail(ctx context.Context, email string) (*model.UserAccount, error)
		List(ctx context.Context, filters *model.AccountFilters) ([]*model.UserAccount, error)
		UpdateSession(ctx context.Context, uid uuid.UUID, sessionID string, loginAt time.Time) error
		ClearSession(ctx context.Context, uid uuid.UUID) error
		SetPassword(ctx context.Context, uid uuid.UUID, passwordHash string, changedAt time.Time) error
		SetStatus(ctx context.Context, uid uuid.UUID, status string) error
		RenewLicense(ctx context.Context, uid uuid.UUID, expiry time.Time) error
		ExpireOverdue(ctx context.Context, now time.Time) ([]*model.UserAccount, error)
	}

	// MaternityRepository stores gestational follow-up records.
	MaternityRepository interface {
		Create(ctx context.Context, record *model.MaternityRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.MaternityRecord, error)
		List(ctx context.Context, tenantID string, filters *model.MaternityFilters) ([]*model.MaternityRecord, error)
		SetStatus(ctx context.Context, id uuid.UUID, status string) error
	}

	// UnitRepository stores tenant school units.
	UnitRepository interface {
		Create(ctx context.Context, unit *model.TenantUnit) error
		Get(ctx context.Context, unitID string) (*model.TenantUnit, error)
		List(ctx context.Context) ([]*model.TenantUnit, error)
		SetStatus(ctx context.Context, unitID, status string) error
	}

	// OutboxRepository relays committed state changes to the broker.
	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		CreateTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	// TokenRepository stores password-reset tokens.
	TokenRepository interface {
		StoreResetToken(ctx context.Context, uid uuid.UUID, token string, expiry time.Time) error
		ValidateResetToken(ctx context.Context, token string) (uuid.UUID, error)
		InvalidateResetToken(ctx context.Context, token string) error
	}

	// AuditRepository records clinical-record access.
	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, tenantID string, filters *model.AuditFilters) ([]*model.AuditLog, error)
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}
)

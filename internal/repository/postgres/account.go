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

type accountRepository struct {
	BaseRepository
	outbox repository.OutboxRepository
}

func NewAccountRepository(base BaseRepository, outbox repository.OutboxRepository) repository.AccountRepository {
	return &accountRepository{BaseRepository: base, outbox: outbox}
}

func (r *accountRepository) Create(ctx context.Context, acct *model.UserAccount) error {
	query := `
		INSERT INTO user_accounts (
			uid, email, name, role, registry, tenant_id, password_hash,
			status, license_status, license_expiry, current_session_id,
			must_change_password, last_password_change_at, sidebar_modules,
			created_at, updated_at
		) VALUES (
			:uid, :email, :name, :role, :registry, :tenant_id, :password_hash,
			:status, :license_status, :license_expiry, :current_session_id,
			:must_change_password, :last_password_change_at, :sidebar_modules,
			:created_at, :updated_at
		)
	`
	acct.CreatedAt = time.Now()
	acct.UpdatedAt = acct.CreatedAt

	_, err := r.db.NamedExecContext(ctx, query, acct)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("email already registered", err)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, uid uuid.UUID) (*model.UserAccount, error) {
	query := `SELECT * FROM user_accounts WHERE uid = $1`
	var acct model.UserAccount
	err := r.db.GetContext(ctx, &acct, query, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("account", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &acct, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.UserAccount, error) {
	query := `SELECT * FROM user_accounts WHERE email = $1`
	var acct model.UserAccount
	err := r.db.GetContext(ctx, &acct, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("account", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &acct, nil
}

func (r *accountRepository) List(ctx context.Context, filters *model.AccountFilters) ([]*model.UserAccount, error) {
	query := `SELECT * FROM user_accounts WHERE 1=1`
	var args []interface{}

	if filters != nil {
		if filters.TenantID != "" {
			query += fmt.Sprintf(" AND tenant_id = $%d", len(args)+1)
			args = append(args, filters.TenantID)
		}
		if filters.Role != "" {
			query += fmt.Sprintf(" AND role = $%d", len(args)+1)
			args = append(args, filters.Role)
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", len(args)+1)
			args = append(args, filters.Status)
		}
	}
	query += " ORDER BY created_at DESC"

	var accts []*model.UserAccount
	if err := r.db.SelectContext(ctx, &accts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accts, nil
}

// UpdateSession overwrites the advisory single-login token. Last write
// wins; the outbox event in the same transaction is what notifies the
// superseded device.
func (r *accountRepository) UpdateSession(ctx context.Context, uid uuid.UUID, sessionID string, loginAt time.Time) error {
	return r.mutateWithEvent(ctx, uid, `
		UPDATE user_accounts
		SET current_session_id = $2, last_login_at = $3, updated_at = NOW()
		WHERE uid = $1
	`, uid, sessionID, loginAt)
}

func (r *accountRepository) ClearSession(ctx context.Context, uid uuid.UUID) error {
	return r.mutateWithEvent(ctx, uid, `
		UPDATE user_accounts
		SET current_session_id = '', updated_at = NOW()
		WHERE uid = $1
	`, uid)
}

func (r *accountRepository) SetPassword(ctx context.Context, uid uuid.UUID, passwordHash string, changedAt time.Time) error {
	return r.mutateWithEvent(ctx, uid, `
		UPDATE user_accounts
		SET password_hash = $2, must_change_password = FALSE,
		    last_password_change_at = $3, updated_at = NOW()
		WHERE uid = $1
	`, uid, passwordHash, changedAt)
}

func (r *accountRepository) SetStatus(ctx context.Context, uid uuid.UUID, status string) error {
	return r.mutateWithEvent(ctx, uid, `
		UPDATE user_accounts
		SET status = $2,
		    license_status = CASE WHEN $2 = 'bloqueado' THEN 'bloqueada' ELSE license_status END,
		    updated_at = NOW()
		WHERE uid = $1
	`, uid, status)
}

func (r *accountRepository) RenewLicense(ctx context.Context, uid uuid.UUID, expiry time.Time) error {
	return r.mutateWithEvent(ctx, uid, `
		UPDATE user_accounts
		SET license_status = 'ativa', status = 'ativo', license_expiry = $2, updated_at = NOW()
		WHERE uid = $1
	`, uid, expiry)
}

// ExpireOverdue flips every active license past its expiry and returns
// the affected accounts so the sweep can emit one event each.
func (r *accountRepository) ExpireOverdue(ctx context.Context, now time.Time) ([]*model.UserAccount, error) {
	var expired []*model.UserAccount
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE user_accounts
			SET license_status = 'expirada', updated_at = NOW()
			WHERE license_status = 'ativa'
			  AND license_expiry IS NOT NULL
			  AND license_expiry < $1
			  AND role <> 'root'
			RETURNING *
		`
		if err := tx.SelectContext(ctx, &expired, query, now); err != nil {
			return fmt.Errorf("failed to expire licenses: %w", err)
		}
		for _, acct := range expired {
			if err := r.outbox.CreateTx(ctx, tx, accountEvent(acct)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}

// mutateWithEvent runs the given account update and records the resulting
// account state as an outbox event in the same transaction.
func (r *accountRepository) mutateWithEvent(ctx context.Context, uid uuid.UUID, query string, args ...interface{}) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperr.NotFound("account", nil)
		}

		var acct model.UserAccount
		if err := tx.GetContext(ctx, &acct, `SELECT * FROM user_accounts WHERE uid = $1`, uid); err != nil {
			return fmt.Errorf("failed to reload account: %w", err)
		}
		return r.outbox.CreateTx(ctx, tx, accountEvent(&acct))
	})
}

func accountEvent(acct *model.UserAccount) *model.OutboxEvent {
	return &model.OutboxEvent{
		EventType:   model.EventAccountUpdated,
		AggregateID: acct.UID.String(),
		Payload: mustJSON(&model.AccountChangedEvent{
			UID:                  acct.UID,
			Email:                acct.Email,
			Role:                 acct.Role,
			Status:               acct.Status,
			LicenseStatus:        acct.LicenseStatus,
			LicenseExpiry:        acct.LicenseExpiry,
			CurrentSessionID:     acct.CurrentSessionID,
			MustChangePassword:   acct.MustChangePassword,
			LastPasswordChangeAt: acct.LastPasswordChangeAt,
		}),
	}
}

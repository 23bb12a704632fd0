package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	apperr "github.com/rodhonsys/saude-escolar-api/pkg/errors"
)

type tokenRepository struct {
	BaseRepository
}

func NewTokenRepository(base BaseRepository) repository.TokenRepository {
	return &tokenRepository{base}
}

func (r *tokenRepository) StoreResetToken(ctx context.Context, uid uuid.UUID, token string, expiry time.Time) error {
	query := `
		INSERT INTO reset_tokens (token, uid, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	if _, err := r.db.ExecContext(ctx, query, token, uid, expiry); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (r *tokenRepository) ValidateResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	query := `SELECT uid FROM reset_tokens WHERE token = $1 AND expires_at > NOW() AND used_at IS NULL`
	var uid uuid.UUID
	err := r.db.GetContext(ctx, &uid, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, apperr.Auth("invalid or expired reset token", err)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to validate reset token: %w", err)
	}
	return uid, nil
}

func (r *tokenRepository) InvalidateResetToken(ctx context.Context, token string) error {
	query := `UPDATE reset_tokens SET used_at = NOW() WHERE token = $1`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to invalidate reset token: %w", err)
	}
	return nil
}

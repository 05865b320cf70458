// Package onetimecodes provides a PostgreSQL-backed store for single-use
// verification and password-reset codes.
package onetimecodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trainerhub/portal/internal/common"
	"github.com/trainerhub/portal/internal/dbx"
	"github.com/trainerhub/portal/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by both
// *sql.DB and *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, code *models.OneTimeCode) error {
	query := `
		INSERT INTO one_time_codes (email, code, expires_at, used, user_id)
		VALUES ($1, $2, $3, FALSE, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET email = EXCLUDED.email,
		    code = EXCLUDED.code,
		    expires_at = EXCLUDED.expires_at,
		    used = FALSE
	`
	if _, err := r.db.ExecContext(ctx, query, code.Email, code.Code, code.ExpiresAt, code.UserID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Consume races are settled by the conditional UPDATE: of two concurrent
// callers exactly one matches the used = FALSE row, the other sees zero rows
// and reports ErrInvalidCode. An expired row is left unused so the probe can
// tell expiry apart from a wrong code.
func (r *PostgresRepository) Consume(ctx context.Context, email, code string, now time.Time) (uuid.UUID, error) {
	query := `
		UPDATE one_time_codes
		SET used = TRUE
		WHERE email = $1 AND code = $2 AND used = FALSE AND expires_at > $3
		RETURNING user_id
	`
	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx, query, email, code, now).Scan(&userID)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("db error: %w", err)
	}

	probe := `
		SELECT expires_at FROM one_time_codes
		WHERE email = $1 AND code = $2 AND used = FALSE
	`
	var expiresAt time.Time
	err = r.db.QueryRowContext(ctx, probe, email, code).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, common.ErrInvalidCode
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("db error: %w", err)
	}
	return uuid.Nil, common.ErrCodeExpired
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM one_time_codes WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

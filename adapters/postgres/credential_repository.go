package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"postureai/domain/core"
	"postureai/models"
	"postureai/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// credentialRepository implements ports.CredentialRepository
type credentialRepository struct {
	db *sqlx.DB
}

// NewCredentialRepository creates a credential repository
func NewCredentialRepository(db *sqlx.DB) ports.CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Insert(ctx context.Context, cred *models.Credential) error {
	query := `INSERT INTO openai_api_keys (
		id, label, encrypted_key, active, usage_count, error_count, created_at, created_by
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		cred.ID, cred.Label, cred.EncryptedKey, cred.Active,
		cred.UsageCount, cred.ErrorCount, cred.CreatedAt, cred.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}
	return nil
}

func (r *credentialRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Credential, error) {
	var cred models.Credential
	err := r.db.GetContext(ctx, &cred,
		`SELECT id, label, encrypted_key, active, usage_count, last_used_at,
		        cooldown_until, error_count, created_at, created_by
		 FROM openai_api_keys WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &cred, nil
}

func (r *credentialRepository) List(ctx context.Context) ([]models.Credential, error) {
	var creds []models.Credential
	err := r.db.SelectContext(ctx, &creds,
		`SELECT id, label, encrypted_key, active, usage_count, last_used_at,
		        cooldown_until, error_count, created_at, created_by
		 FROM openai_api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	return creds, nil
}

func (r *credentialRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	// Reactivation clears the failure state so the key is usable at once.
	query := `UPDATE openai_api_keys
	          SET active = $2,
	              error_count = CASE WHEN $2 THEN 0 ELSE error_count END,
	              cooldown_until = CASE WHEN $2 THEN NULL ELSE cooldown_until END
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrCredentialNotFound
	}
	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM openai_api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrCredentialNotFound
	}
	return nil
}

// AcquireNext selects and claims the least recently used eligible key in
// one transaction. SKIP LOCKED keeps concurrent acquirers from blocking on
// or double-claiming the same row.
func (r *credentialRepository) AcquireNext(ctx context.Context, now time.Time) (*models.Credential, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin acquire transaction: %w", err)
	}
	defer tx.Rollback()

	var cred models.Credential
	err = tx.GetContext(ctx, &cred,
		`SELECT id, label, encrypted_key, active, usage_count, last_used_at,
		        cooldown_until, error_count, created_at, created_by
		 FROM openai_api_keys
		 WHERE active = true
		   AND (cooldown_until IS NULL OR cooldown_until < $1)
		 ORDER BY cooldown_until ASC NULLS FIRST, last_used_at ASC NULLS FIRST, usage_count ASC, created_at ASC
		 LIMIT 1
		 FOR UPDATE SKIP LOCKED`, now)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNoCredentialAvailable
		}
		return nil, fmt.Errorf("failed to select credential: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE openai_api_keys SET usage_count = usage_count + 1, last_used_at = $2 WHERE id = $1`,
		cred.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to claim credential: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit acquire: %w", err)
	}

	cred.UsageCount++
	ts := now
	cred.LastUsedAt = &ts
	return &cred, nil
}

func (r *credentialRepository) RecordSuccess(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE openai_api_keys SET error_count = 0, cooldown_until = NULL WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to record success: %w", err)
	}
	return nil
}

func (r *credentialRepository) RecordFailure(ctx context.Context, id uuid.UUID, cooldownUntil *time.Time, deactivateAfter int) error {
	// Rate-limit failures carry a cooldown; other failures count toward
	// deactivation instead.
	query := `UPDATE openai_api_keys
	          SET error_count = error_count + 1,
	              cooldown_until = COALESCE($2, cooldown_until),
	              active = CASE
	                  WHEN $2 IS NULL AND error_count + 1 >= $3 THEN false
	                  ELSE active
	              END
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, cooldownUntil, deactivateAfter)
	if err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrCredentialNotFound
	}
	return nil
}

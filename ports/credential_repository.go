package ports

import (
	"context"
	"time"

	"postureai/models"

	"github.com/google/uuid"
)

// CredentialRepository defines persistence for the credential pool.
// AcquireNext must run its select-and-update in one transaction so two
// concurrent acquirers cannot both observe the same usage counters.
type CredentialRepository interface {
	Insert(ctx context.Context, cred *models.Credential) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Credential, error)
	List(ctx context.Context) ([]models.Credential, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AcquireNext selects the least recently used active credential whose
	// cooldown has elapsed, bumps usage_count and last_used_at, and returns
	// the updated row. Returns core.ErrNoCredentialAvailable when the pool
	// is exhausted.
	AcquireNext(ctx context.Context, now time.Time) (*models.Credential, error)

	// RecordSuccess resets the error count and clears any cooldown
	RecordSuccess(ctx context.Context, id uuid.UUID) error

	// RecordFailure increments error_count, optionally sets a cooldown, and
	// deactivates the credential when the error threshold is crossed.
	RecordFailure(ctx context.Context, id uuid.UUID, cooldownUntil *time.Time, deactivateAfter int) error
}

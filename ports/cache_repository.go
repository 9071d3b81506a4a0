package ports

import (
	"context"

	"postureai/models"
)

// CacheKey addresses one reusable section artifact
type CacheKey struct {
	SectionID     string
	AnswersHash   string
	PromptVersion string
	Model         string
}

// CacheRepository persists content-addressed section artifacts.
// Lookup must bump hit_count and last_used_at on the matched row; Store
// must tolerate losing an insert race on the unique key.
type CacheRepository interface {
	Lookup(ctx context.Context, key CacheKey) (*models.SectionCacheEntry, error)
	Store(ctx context.Context, entry *models.SectionCacheEntry) error

	// PruneByPromptVersion removes entries for retired prompt versions.
	// Administrative; never called from the request path.
	PruneByPromptVersion(ctx context.Context, promptVersion string) (int64, error)

	Stats(ctx context.Context) (*models.CacheStats, error)
}

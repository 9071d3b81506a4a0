package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"postureai/domain/core"
	"postureai/models"
	"postureai/ports"

	"github.com/jmoiron/sqlx"
)

// cacheRepository implements ports.CacheRepository
type cacheRepository struct {
	db *sqlx.DB
}

// NewCacheRepository creates a cache repository
func NewCacheRepository(db *sqlx.DB) ports.CacheRepository {
	return &cacheRepository{db: db}
}

// Lookup bumps hit accounting on the matched row in the same statement,
// so a hit is never recorded without returning the entry.
func (r *cacheRepository) Lookup(ctx context.Context, key ports.CacheKey) (*models.SectionCacheEntry, error) {
	query := `UPDATE ai_section_cache
	          SET hit_count = hit_count + 1, last_used_at = NOW()
	          WHERE section_id = $1 AND answers_hash = $2 AND prompt_version = $3 AND model = $4
	          RETURNING id, section_id, answers_hash, prompt_version, schema_version, model,
	                    artifact_json, tokens_prompt, tokens_completion, total_cost_usd,
	                    created_at, last_used_at, hit_count`

	var entry models.SectionCacheEntry
	err := r.db.GetContext(ctx, &entry, query, key.SectionID, key.AnswersHash, key.PromptVersion, key.Model)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to look up cache entry: %w", err)
	}
	return &entry, nil
}

// Store inserts one immutable entry. Losing a race on the unique key is
// fine; the winner's artifact is equivalent by construction.
func (r *cacheRepository) Store(ctx context.Context, entry *models.SectionCacheEntry) error {
	query := `INSERT INTO ai_section_cache (
		id, section_id, answers_hash, prompt_version, schema_version, model,
		artifact_json, tokens_prompt, tokens_completion, total_cost_usd,
		created_at, last_used_at, hit_count
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (section_id, answers_hash, prompt_version, model) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.SectionID, entry.AnswersHash, entry.PromptVersion, entry.SchemaVersion,
		entry.Model, entry.ArtifactJSON, entry.TokensPrompt, entry.TokensCompletion,
		entry.TotalCostUSD, entry.CreatedAt, entry.LastUsedAt, entry.HitCount,
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

func (r *cacheRepository) PruneByPromptVersion(ctx context.Context, promptVersion string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM ai_section_cache WHERE prompt_version <> $1`, promptVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	removed, _ := res.RowsAffected()
	return removed, nil
}

func (r *cacheRepository) Stats(ctx context.Context) (*models.CacheStats, error) {
	var stats models.CacheStats
	err := r.db.GetContext(ctx, &stats,
		`SELECT COUNT(*) AS total_entries,
		        COALESCE(SUM(hit_count), 0) AS total_hits,
		        COALESCE(SUM(total_cost_usd), 0) AS total_cost_usd
		 FROM ai_section_cache`)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache stats: %w", err)
	}
	return &stats, nil
}

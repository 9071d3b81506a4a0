// Package migration creates and evolves the database schema.
package migration

import (
	"context"

	"postureai/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.1.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createAPIKeysTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create openai_api_keys table")
	}

	if err := r.createSectionCacheTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create ai_section_cache table")
	}

	if err := r.createSectionArtifactsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create ai_section_artifacts table")
	}

	if err := r.createSynthesisArtifactsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create ai_synthesis_artifacts table")
	}

	if err := r.createGenerationMetadataTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create ai_generation_metadata table")
	}

	if err := r.createDailyMetricsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create ai_daily_metrics table")
	}

	if err := r.createIntakeSessionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create assessment_intake_sessions table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createAPIKeysTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS openai_api_keys (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			label VARCHAR(255) NOT NULL,
			encrypted_key TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			usage_count INTEGER NOT NULL DEFAULT 0,
			last_used_at TIMESTAMP WITH TIME ZONE,
			cooldown_until TIMESTAMP WITH TIME ZONE,
			error_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			created_by VARCHAR(255)
		)
	`)
	return err
}

func (r *MigrationRunner) createSectionCacheTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ai_section_cache (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			section_id VARCHAR(100) NOT NULL,
			answers_hash VARCHAR(64) NOT NULL,
			prompt_version VARCHAR(20) NOT NULL,
			schema_version VARCHAR(20) NOT NULL,
			model VARCHAR(100) NOT NULL,
			artifact_json JSONB NOT NULL,
			tokens_prompt INTEGER NOT NULL DEFAULT 0,
			tokens_completion INTEGER NOT NULL DEFAULT 0,
			total_cost_usd DECIMAL(10,6) NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			last_used_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			hit_count INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

func (r *MigrationRunner) createSectionArtifactsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ai_section_artifacts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			report_id UUID NOT NULL,
			section_id VARCHAR(100) NOT NULL,
			artifact_json JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createSynthesisArtifactsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ai_synthesis_artifacts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			report_id UUID NOT NULL,
			artifact_json JSONB NOT NULL,
			prompt_version VARCHAR(20) NOT NULL,
			schema_version VARCHAR(20) NOT NULL,
			model VARCHAR(100) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createGenerationMetadataTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ai_generation_metadata (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			report_id UUID NOT NULL,
			section_id VARCHAR(100),
			prompt_version VARCHAR(20) NOT NULL,
			schema_version VARCHAR(20) NOT NULL,
			model VARCHAR(100) NOT NULL,
			temperature DECIMAL(3,2) NOT NULL DEFAULT 0,
			max_tokens INTEGER NOT NULL DEFAULT 0,
			tokens_prompt INTEGER NOT NULL DEFAULT 0,
			tokens_completion INTEGER NOT NULL DEFAULT 0,
			total_cost_usd DECIMAL(10,6) NOT NULL DEFAULT 0,
			latency_ms BIGINT NOT NULL DEFAULT 0,
			finish_reason VARCHAR(50) NOT NULL DEFAULT '',
			attempt_count INTEGER NOT NULL DEFAULT 1,
			is_degraded BOOLEAN NOT NULL DEFAULT false,
			cache_hit BOOLEAN NOT NULL DEFAULT false,
			error_code VARCHAR(50),
			error_message TEXT,
			fallback_model VARCHAR(100),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createDailyMetricsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ai_daily_metrics (
			date DATE PRIMARY KEY,
			total_reports INTEGER NOT NULL DEFAULT 0,
			total_sections INTEGER NOT NULL DEFAULT 0,
			total_tokens_prompt INTEGER NOT NULL DEFAULT 0,
			total_tokens_completion INTEGER NOT NULL DEFAULT 0,
			total_cost_usd DECIMAL(12,6) NOT NULL DEFAULT 0,
			avg_latency_ms DECIMAL(12,2) NOT NULL DEFAULT 0,
			median_latency_ms DECIMAL(12,2) NOT NULL DEFAULT 0,
			p95_latency_ms DECIMAL(12,2) NOT NULL DEFAULT 0,
			cache_hit_rate DECIMAL(5,4) NOT NULL DEFAULT 0,
			success_rate DECIMAL(5,4) NOT NULL DEFAULT 1,
			degraded_rate DECIMAL(5,4) NOT NULL DEFAULT 0
		)
	`)
	return err
}

func (r *MigrationRunner) createIntakeSessionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS assessment_intake_sessions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID,
			user_profile_json JSONB NOT NULL,
			ai_raw_response_json JSONB,
			final_selected_section_ids TEXT[],
			time_preference VARCHAR(20) NOT NULL DEFAULT 'moderate',
			used_fallback BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	queries := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_section_cache_key
		 ON ai_section_cache (section_id, answers_hash, prompt_version, model)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_section_artifacts_report_section
		 ON ai_section_artifacts (report_id, section_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_synthesis_artifacts_report
		 ON ai_synthesis_artifacts (report_id)`,
		`CREATE INDEX IF NOT EXISTS idx_api_keys_acquire
		 ON openai_api_keys (active, cooldown_until, last_used_at)`,
		`CREATE INDEX IF NOT EXISTS idx_generation_metadata_report
		 ON ai_generation_metadata (report_id)`,
		`CREATE INDEX IF NOT EXISTS idx_generation_metadata_created
		 ON ai_generation_metadata (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_intake_sessions_created
		 ON assessment_intake_sessions (created_at DESC)`,
	}
	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

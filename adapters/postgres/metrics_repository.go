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

// metricsRepository implements ports.MetricsRepository
type metricsRepository struct {
	db *sqlx.DB
}

// NewMetricsRepository creates a metrics repository
func NewMetricsRepository(db *sqlx.DB) ports.MetricsRepository {
	return &metricsRepository{db: db}
}

func (r *metricsRepository) RecordGeneration(ctx context.Context, meta *models.GenerationMetadata) error {
	query := `INSERT INTO ai_generation_metadata (
		id, report_id, section_id, prompt_version, schema_version, model, temperature,
		max_tokens, tokens_prompt, tokens_completion, total_cost_usd, latency_ms,
		finish_reason, attempt_count, is_degraded, cache_hit, error_code, error_message,
		fallback_model, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err := r.db.ExecContext(ctx, query,
		meta.ID, meta.ReportID, meta.SectionID, meta.PromptVersion, meta.SchemaVersion,
		meta.Model, meta.Temperature, meta.MaxTokens, meta.TokensPrompt, meta.TokensCompletion,
		meta.TotalCostUSD, meta.LatencyMs, meta.FinishReason, meta.AttemptCount,
		meta.IsDegraded, meta.CacheHit, meta.ErrorCode, meta.ErrorMessage,
		meta.FallbackModel, meta.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record generation metadata: %w", err)
	}
	return nil
}

const generationColumns = `id, report_id, section_id, prompt_version, schema_version, model,
	temperature, max_tokens, tokens_prompt, tokens_completion, total_cost_usd, latency_ms,
	finish_reason, attempt_count, is_degraded, cache_hit, error_code, error_message,
	fallback_model, created_at`

func (r *metricsRepository) ListGenerationsByDate(ctx context.Context, date time.Time) ([]models.GenerationMetadata, error) {
	var rows []models.GenerationMetadata
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+generationColumns+`
		 FROM ai_generation_metadata
		 WHERE created_at >= $1 AND created_at < $1 + INTERVAL '1 day'
		 ORDER BY created_at`,
		date.UTC().Truncate(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to list generations by date: %w", err)
	}
	return rows, nil
}

func (r *metricsRepository) ListGenerationsByReport(ctx context.Context, reportID uuid.UUID) ([]models.GenerationMetadata, error) {
	var rows []models.GenerationMetadata
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+generationColumns+`
		 FROM ai_generation_metadata WHERE report_id = $1 ORDER BY created_at`,
		reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations by report: %w", err)
	}
	return rows, nil
}

func (r *metricsRepository) UpsertDaily(ctx context.Context, metrics *models.DailyMetrics) error {
	query := `INSERT INTO ai_daily_metrics (
		date, total_reports, total_sections, total_tokens_prompt, total_tokens_completion,
		total_cost_usd, avg_latency_ms, median_latency_ms, p95_latency_ms,
		cache_hit_rate, success_rate, degraded_rate
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (date) DO UPDATE SET
		total_reports = EXCLUDED.total_reports,
		total_sections = EXCLUDED.total_sections,
		total_tokens_prompt = EXCLUDED.total_tokens_prompt,
		total_tokens_completion = EXCLUDED.total_tokens_completion,
		total_cost_usd = EXCLUDED.total_cost_usd,
		avg_latency_ms = EXCLUDED.avg_latency_ms,
		median_latency_ms = EXCLUDED.median_latency_ms,
		p95_latency_ms = EXCLUDED.p95_latency_ms,
		cache_hit_rate = EXCLUDED.cache_hit_rate,
		success_rate = EXCLUDED.success_rate,
		degraded_rate = EXCLUDED.degraded_rate`

	_, err := r.db.ExecContext(ctx, query,
		metrics.Date, metrics.TotalReports, metrics.TotalSections,
		metrics.TotalTokensPrompt, metrics.TotalTokensCompletion, metrics.TotalCostUSD,
		metrics.AvgLatencyMs, metrics.MedianLatencyMs, metrics.P95LatencyMs,
		metrics.CacheHitRate, metrics.SuccessRate, metrics.DegradedRate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily metrics: %w", err)
	}
	return nil
}

func (r *metricsRepository) GetDaily(ctx context.Context, date time.Time) (*models.DailyMetrics, error) {
	var row models.DailyMetrics
	err := r.db.GetContext(ctx, &row,
		`SELECT date, total_reports, total_sections, total_tokens_prompt, total_tokens_completion,
		        total_cost_usd, avg_latency_ms, median_latency_ms, p95_latency_ms,
		        cache_hit_rate, success_rate, degraded_rate
		 FROM ai_daily_metrics WHERE date = $1`,
		date.UTC().Truncate(24*time.Hour))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get daily metrics: %w", err)
	}
	return &row, nil
}

func (r *metricsRepository) ListDailyRange(ctx context.Context, from, to time.Time) ([]models.DailyMetrics, error) {
	var rows []models.DailyMetrics
	err := r.db.SelectContext(ctx, &rows,
		`SELECT date, total_reports, total_sections, total_tokens_prompt, total_tokens_completion,
		        total_cost_usd, avg_latency_ms, median_latency_ms, p95_latency_ms,
		        cache_hit_rate, success_rate, degraded_rate
		 FROM ai_daily_metrics WHERE date >= $1 AND date <= $2 ORDER BY date`,
		from.UTC().Truncate(24*time.Hour), to.UTC().Truncate(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to list daily metrics: %w", err)
	}
	return rows, nil
}

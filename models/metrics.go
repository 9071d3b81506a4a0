package models

import (
	"time"

	"github.com/google/uuid"
)

// GenerationMetadata records one LLM call attempt chain for observability.
// One row per terminal outcome per (report, section); synthesis rows carry a
// nil SectionID.
type GenerationMetadata struct {
	ID               uuid.UUID `json:"id" db:"id"`
	ReportID         uuid.UUID `json:"report_id" db:"report_id"`
	SectionID        *string   `json:"section_id,omitempty" db:"section_id"`
	PromptVersion    string    `json:"prompt_version" db:"prompt_version"`
	SchemaVersion    string    `json:"schema_version" db:"schema_version"`
	Model            string    `json:"model" db:"model"`
	Temperature      float64   `json:"temperature" db:"temperature"`
	MaxTokens        int       `json:"max_tokens" db:"max_tokens"`
	TokensPrompt     int       `json:"tokens_prompt" db:"tokens_prompt"`
	TokensCompletion int       `json:"tokens_completion" db:"tokens_completion"`
	TotalCostUSD     float64   `json:"total_cost_usd" db:"total_cost_usd"`
	LatencyMs        int64     `json:"latency_ms" db:"latency_ms"`
	FinishReason     string    `json:"finish_reason" db:"finish_reason"`
	AttemptCount     int       `json:"attempt_count" db:"attempt_count"`
	IsDegraded       bool      `json:"is_degraded" db:"is_degraded"`
	CacheHit         bool      `json:"cache_hit" db:"cache_hit"`
	ErrorCode        *string   `json:"error_code,omitempty" db:"error_code"`
	ErrorMessage     *string   `json:"error_message,omitempty" db:"error_message"`
	FallbackModel    *string   `json:"fallback_model,omitempty" db:"fallback_model"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// DailyMetrics is one rolled-up row per calendar date
type DailyMetrics struct {
	Date                  time.Time `json:"date" db:"date"`
	TotalReports          int       `json:"total_reports" db:"total_reports"`
	TotalSections         int       `json:"total_sections" db:"total_sections"`
	TotalTokensPrompt     int       `json:"total_tokens_prompt" db:"total_tokens_prompt"`
	TotalTokensCompletion int       `json:"total_tokens_completion" db:"total_tokens_completion"`
	TotalCostUSD          float64   `json:"total_cost_usd" db:"total_cost_usd"`
	AvgLatencyMs          float64   `json:"avg_latency_ms" db:"avg_latency_ms"`
	MedianLatencyMs       float64   `json:"median_latency_ms" db:"median_latency_ms"`
	P95LatencyMs          float64   `json:"p95_latency_ms" db:"p95_latency_ms"`
	CacheHitRate          float64   `json:"cache_hit_rate" db:"cache_hit_rate"`
	SuccessRate           float64   `json:"success_rate" db:"success_rate"`
	DegradedRate          float64   `json:"degraded_rate" db:"degraded_rate"`
}

// ReportCostBreakdown summarizes spend for a single report
type ReportCostBreakdown struct {
	ReportID         uuid.UUID        `json:"report_id"`
	TotalCostUSD     float64          `json:"total_cost_usd"`
	TokensPrompt     int              `json:"tokens_prompt"`
	TokensCompletion int              `json:"tokens_completion"`
	CacheHits        int              `json:"cache_hits"`
	DegradedSections int              `json:"degraded_sections"`
	Sections         []SectionCostRow `json:"sections"`
}

// SectionCostRow is cost detail for one section of a report
type SectionCostRow struct {
	SectionID        string  `json:"section_id" db:"section_id"`
	Model            string  `json:"model" db:"model"`
	TokensPrompt     int     `json:"tokens_prompt" db:"tokens_prompt"`
	TokensCompletion int     `json:"tokens_completion" db:"tokens_completion"`
	CostUSD          float64 `json:"cost_usd" db:"total_cost_usd"`
	LatencyMs        int64   `json:"latency_ms" db:"latency_ms"`
	CacheHit         bool    `json:"cache_hit" db:"cache_hit"`
	IsDegraded       bool    `json:"is_degraded" db:"is_degraded"`
}

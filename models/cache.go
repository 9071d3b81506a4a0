package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SectionCacheEntry is one reusable section artifact, keyed by the content
// fingerprint of its inputs. artifact_json never mutates after insert.
type SectionCacheEntry struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	SectionID        string          `json:"section_id" db:"section_id"`
	AnswersHash      string          `json:"answers_hash" db:"answers_hash"`
	PromptVersion    string          `json:"prompt_version" db:"prompt_version"`
	SchemaVersion    string          `json:"schema_version" db:"schema_version"`
	Model            string          `json:"model" db:"model"`
	ArtifactJSON     json.RawMessage `json:"artifact_json" db:"artifact_json"`
	TokensPrompt     int             `json:"tokens_prompt" db:"tokens_prompt"`
	TokensCompletion int             `json:"tokens_completion" db:"tokens_completion"`
	TotalCostUSD     float64         `json:"total_cost_usd" db:"total_cost_usd"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	LastUsedAt       time.Time       `json:"last_used_at" db:"last_used_at"`
	HitCount         int             `json:"hit_count" db:"hit_count"`
}

// CacheStats summarizes the cache table for diagnostics
type CacheStats struct {
	TotalEntries int     `json:"total_entries" db:"total_entries"`
	TotalHits    int     `json:"total_hits" db:"total_hits"`
	TotalCostUSD float64 `json:"total_cost_usd" db:"total_cost_usd"`
}

// SectionArtifactRow is a persisted section artifact for one report
type SectionArtifactRow struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ReportID     uuid.UUID       `json:"report_id" db:"report_id"`
	SectionID    string          `json:"section_id" db:"section_id"`
	ArtifactJSON json.RawMessage `json:"artifact_json" db:"artifact_json"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// SynthesisArtifactRow is the persisted synthesis for one report
type SynthesisArtifactRow struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ReportID      uuid.UUID       `json:"report_id" db:"report_id"`
	ArtifactJSON  json.RawMessage `json:"artifact_json" db:"artifact_json"`
	PromptVersion string          `json:"prompt_version" db:"prompt_version"`
	SchemaVersion string          `json:"schema_version" db:"schema_version"`
	Model         string          `json:"model" db:"model"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/lib/pq"
)

// IntakeSession is one persisted discovery questionnaire run
type IntakeSession struct {
	ID                      uuid.UUID       `json:"id" db:"id"`
	UserID                  *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	UserProfileJSON         json.RawMessage `json:"user_profile_json" db:"user_profile_json"`
	AIRawResponseJSON       json.RawMessage `json:"ai_raw_response_json,omitempty" db:"ai_raw_response_json"`
	FinalSelectedSectionIDs pq.StringArray  `json:"final_selected_section_ids" db:"final_selected_section_ids"`
	TimePreference          string          `json:"time_preference" db:"time_preference"`
	UsedFallback            bool            `json:"used_fallback" db:"used_fallback"`
	CreatedAt               time.Time       `json:"created_at" db:"created_at"`
}

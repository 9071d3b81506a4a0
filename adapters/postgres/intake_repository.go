package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"postureai/domain/core"
	"postureai/models"
	"postureai/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// intakeRepository implements ports.IntakeRepository
type intakeRepository struct {
	db *sqlx.DB
}

// NewIntakeRepository creates an intake session repository
func NewIntakeRepository(db *sqlx.DB) ports.IntakeRepository {
	return &intakeRepository{db: db}
}

func (r *intakeRepository) Insert(ctx context.Context, session *models.IntakeSession) error {
	query := `INSERT INTO assessment_intake_sessions (
		id, user_id, user_profile_json, ai_raw_response_json,
		final_selected_section_ids, time_preference, used_fallback, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.UserProfileJSON, session.AIRawResponseJSON,
		session.FinalSelectedSectionIDs, session.TimePreference, session.UsedFallback,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert intake session: %w", err)
	}
	return nil
}

func (r *intakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.IntakeSession, error) {
	var session models.IntakeSession
	err := r.db.GetContext(ctx, &session,
		`SELECT id, user_id, user_profile_json, ai_raw_response_json,
		        final_selected_section_ids, time_preference, used_fallback, created_at
		 FROM assessment_intake_sessions WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get intake session: %w", err)
	}
	return &session, nil
}

func (r *intakeRepository) ListRecent(ctx context.Context, limit int) ([]models.IntakeSession, error) {
	if limit <= 0 {
		limit = 50
	}
	var sessions []models.IntakeSession
	err := r.db.SelectContext(ctx, &sessions,
		`SELECT id, user_id, user_profile_json, ai_raw_response_json,
		        final_selected_section_ids, time_preference, used_fallback, created_at
		 FROM assessment_intake_sessions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake sessions: %w", err)
	}
	return sessions, nil
}

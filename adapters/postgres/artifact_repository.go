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

// artifactRepository implements ports.ArtifactRepository
type artifactRepository struct {
	db *sqlx.DB
}

// NewArtifactRepository creates an artifact repository
func NewArtifactRepository(db *sqlx.DB) ports.ArtifactRepository {
	return &artifactRepository{db: db}
}

func (r *artifactRepository) UpsertSection(ctx context.Context, row *models.SectionArtifactRow) error {
	query := `INSERT INTO ai_section_artifacts (id, report_id, section_id, artifact_json, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (report_id, section_id)
	          DO UPDATE SET artifact_json = EXCLUDED.artifact_json, created_at = EXCLUDED.created_at`

	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.ReportID, row.SectionID, row.ArtifactJSON, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert section artifact: %w", err)
	}
	return nil
}

func (r *artifactRepository) GetSection(ctx context.Context, reportID uuid.UUID, sectionID string) (*models.SectionArtifactRow, error) {
	var row models.SectionArtifactRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, report_id, section_id, artifact_json, created_at
		 FROM ai_section_artifacts WHERE report_id = $1 AND section_id = $2`,
		reportID, sectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to get section artifact: %w", err)
	}
	return &row, nil
}

func (r *artifactRepository) ListSections(ctx context.Context, reportID uuid.UUID) ([]models.SectionArtifactRow, error) {
	var rows []models.SectionArtifactRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, report_id, section_id, artifact_json, created_at
		 FROM ai_section_artifacts WHERE report_id = $1 ORDER BY section_id`,
		reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list section artifacts: %w", err)
	}
	return rows, nil
}

func (r *artifactRepository) UpsertSynthesis(ctx context.Context, row *models.SynthesisArtifactRow) error {
	query := `INSERT INTO ai_synthesis_artifacts (
	              id, report_id, artifact_json, prompt_version, schema_version, model, created_at
	          ) VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (report_id)
	          DO UPDATE SET artifact_json = EXCLUDED.artifact_json,
	                        prompt_version = EXCLUDED.prompt_version,
	                        schema_version = EXCLUDED.schema_version,
	                        model = EXCLUDED.model,
	                        created_at = EXCLUDED.created_at`

	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.ReportID, row.ArtifactJSON, row.PromptVersion,
		row.SchemaVersion, row.Model, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert synthesis artifact: %w", err)
	}
	return nil
}

func (r *artifactRepository) GetSynthesis(ctx context.Context, reportID uuid.UUID) (*models.SynthesisArtifactRow, error) {
	var row models.SynthesisArtifactRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, report_id, artifact_json, prompt_version, schema_version, model, created_at
		 FROM ai_synthesis_artifacts WHERE report_id = $1`,
		reportID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get synthesis artifact: %w", err)
	}
	return &row, nil
}

package ports

import (
	"context"

	"postureai/models"

	"github.com/google/uuid"
)

// ArtifactRepository persists per-report artifacts. Section upserts are
// idempotent on (report_id, section_id); synthesis is unique per report.
type ArtifactRepository interface {
	UpsertSection(ctx context.Context, row *models.SectionArtifactRow) error
	GetSection(ctx context.Context, reportID uuid.UUID, sectionID string) (*models.SectionArtifactRow, error)
	ListSections(ctx context.Context, reportID uuid.UUID) ([]models.SectionArtifactRow, error)

	UpsertSynthesis(ctx context.Context, row *models.SynthesisArtifactRow) error
	GetSynthesis(ctx context.Context, reportID uuid.UUID) (*models.SynthesisArtifactRow, error)
}

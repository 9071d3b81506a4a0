package ports

import (
	"context"
	"time"

	"postureai/models"

	"github.com/google/uuid"
)

// MetricsRepository records per-call generation metadata and daily rollups
type MetricsRepository interface {
	RecordGeneration(ctx context.Context, meta *models.GenerationMetadata) error
	ListGenerationsByDate(ctx context.Context, date time.Time) ([]models.GenerationMetadata, error)
	ListGenerationsByReport(ctx context.Context, reportID uuid.UUID) ([]models.GenerationMetadata, error)

	UpsertDaily(ctx context.Context, metrics *models.DailyMetrics) error
	GetDaily(ctx context.Context, date time.Time) (*models.DailyMetrics, error)
	ListDailyRange(ctx context.Context, from, to time.Time) ([]models.DailyMetrics, error)
}

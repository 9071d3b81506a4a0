package ports

import (
	"context"

	"postureai/models"

	"github.com/google/uuid"
)

// IntakeRepository persists discovery questionnaire sessions
type IntakeRepository interface {
	Insert(ctx context.Context, session *models.IntakeSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.IntakeSession, error)
	ListRecent(ctx context.Context, limit int) ([]models.IntakeSession, error)
}

package presentations

import (
	"context"

	"github.com/dmitrijs2005/slidedeck/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Presentation) (*models.Presentation, error)
	GetDetail(ctx context.Context, id string) (*models.PresentationDetail, error)
	OwnerID(ctx context.Context, id string) (string, error)
	ListByUser(ctx context.Context, userID string) ([]models.PresentationSummary, error)
	Update(ctx context.Context, id string, patch models.PresentationPatch) (*models.Presentation, error)
	Delete(ctx context.Context, id string) error
}

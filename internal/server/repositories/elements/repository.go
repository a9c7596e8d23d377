package elements

import (
	"context"

	"github.com/dmitrijs2005/slidedeck/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e models.NewElement) (*models.Element, error)
	Get(ctx context.Context, id string, forUpdate bool) (*models.Element, error)
	ListBySlide(ctx context.Context, slideID string) ([]models.Element, error)
	Update(ctx context.Context, id string, kind models.ElementKind, patch models.ElementPatch) error
	Delete(ctx context.Context, id string) error
}

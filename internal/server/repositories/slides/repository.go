package slides

import (
	"context"

	"github.com/dmitrijs2005/slidedeck/internal/server/models"
)

// Repository holds the storage primitives the slide sequencer composes
// inside one transaction.
type Repository interface {
	LockPresentation(ctx context.Context, presentationID string) (ownerID string, err error)
	OwnerID(ctx context.Context, id string) (string, error)
	Get(ctx context.Context, id string) (*models.Slide, error)
	Count(ctx context.Context, presentationID string) (int, error)
	Append(ctx context.Context, presentationID string, s models.NewSlide) (*models.Slide, error)
	ShiftRange(ctx context.Context, presentationID string, from, to, delta int) error
	ShiftAfter(ctx context.Context, presentationID string, position, delta int) error
	Update(ctx context.Context, id string, patch models.SlidePatch) (*models.Slide, error)
	Delete(ctx context.Context, id string) error
}

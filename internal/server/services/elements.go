package services

import (
	"context"
	"database/sql"
	"math"

	"github.com/dmitrijs2005/slidedeck/internal/common"
	"github.com/dmitrijs2005/slidedeck/internal/dbx"
	"github.com/dmitrijs2005/slidedeck/internal/logging"
	"github.com/dmitrijs2005/slidedeck/internal/server/models"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/repomanager"
)

// AssetDeleter removes a stored asset by URL, reporting success.
type AssetDeleter interface {
	Delete(ctx context.Context, url string) bool
}

// ElementService composes the elements of a slide: a shared row (position,
// size, z-index) plus exactly one payload row of the element's kind. Both
// rows are written in one transaction. Ownership is checked through the
// slide's presentation.
type ElementService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	assets      AssetDeleter
	logger      logging.Logger
}

func NewElementService(db *sql.DB, m repomanager.RepositoryManager, assets AssetDeleter, logger logging.Logger) *ElementService {
	return &ElementService{db: db, repomanager: m, assets: assets, logger: logger}
}

// List returns the slide's elements bottom layer first.
func (s *ElementService) List(ctx context.Context, callerID, slideID string) ([]models.Element, error) {
	if err := s.checkSlideOwner(ctx, s.db, callerID, slideID); err != nil {
		return nil, err
	}
	return s.repomanager.Elements(s.db).ListBySlide(ctx, slideID)
}

// Create adds an element to a slide. ne.Data decides the kind and should
// come from models.DefaultPayload so omitted fields carry their defaults.
func (s *ElementService) Create(ctx context.Context, callerID string, ne models.NewElement) (*models.Element, error) {
	if ne.Data == nil {
		return nil, common.Validationf("element payload is required")
	}
	if _, err := models.LookupKind(ne.Data.Kind()); err != nil {
		return nil, err
	}
	if err := validateGeometry(&ne.X, &ne.Y, ne.Width, ne.Height); err != nil {
		return nil, err
	}
	if err := ne.Data.Validate(); err != nil {
		return nil, err
	}

	var e *models.Element
	err := dbx.WithTx(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkSlideOwner(ctx, tx, callerID, ne.SlideID); err != nil {
			return err
		}
		var err error
		e, err = s.repomanager.Elements(tx).Create(ctx, ne)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Update applies a sparse patch to the shared and payload fields and
// returns the complete element. patch.Kind, when set, must match the stored
// kind. If an image element gets a different image_url, the old asset is
// deleted once the update has committed; a failed delete is only logged.
func (s *ElementService) Update(ctx context.Context, callerID, id string, patch models.ElementPatch) (*models.Element, error) {
	if patch.Empty() {
		return nil, common.ErrorNoFieldsToUpdate
	}
	if patch.Kind != "" {
		if _, err := models.LookupKind(patch.Kind); err != nil {
			return nil, err
		}
	}
	if patch.Payload != nil && patch.Kind != "" && patch.Payload.Kind() != patch.Kind {
		return nil, common.ErrorKindMismatch
	}
	if err := validateGeometry(patch.X, patch.Y, patch.Width.Value, patch.Height.Value); err != nil {
		return nil, err
	}

	var (
		updated  *models.Element
		oldImage string
	)
	err := dbx.WithTx(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Elements(tx)

		cur, err := repo.Get(ctx, id, true)
		if err != nil {
			return err
		}
		if err := s.checkSlideOwner(ctx, tx, callerID, cur.SlideID); err != nil {
			return err
		}
		if patch.Kind != "" && patch.Kind != cur.Kind {
			return common.ErrorKindMismatch
		}

		if patch.Payload != nil && !patch.Payload.Empty() {
			merged, err := patch.Payload.Merge(cur.Data)
			if err != nil {
				return err
			}
			if err := merged.Validate(); err != nil {
				return err
			}
			oldImage = replacedImage(cur.Data, merged)
		}

		if err := repo.Update(ctx, id, cur.Kind, patch); err != nil {
			return err
		}
		updated, err = repo.Get(ctx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	if oldImage != "" && s.assets != nil {
		if !s.assets.Delete(ctx, oldImage) {
			s.logger.Warn(ctx, "old image asset not deleted", "element_id", id, "url", oldImage)
		}
	}
	return updated, nil
}

// Delete removes the element and, through the foreign key, its payload.
func (s *ElementService) Delete(ctx context.Context, callerID, id string) error {
	return dbx.WithTx(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Elements(tx)
		cur, err := repo.Get(ctx, id, true)
		if err != nil {
			return err
		}
		if err := s.checkSlideOwner(ctx, tx, callerID, cur.SlideID); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}

func (s *ElementService) checkSlideOwner(ctx context.Context, db dbx.DBTX, callerID, slideID string) error {
	ownerID, err := s.repomanager.Slides(db).OwnerID(ctx, slideID)
	if err != nil {
		return err
	}
	return owned(ownerID, callerID)
}

// replacedImage returns the previous image URL when merged points elsewhere.
func replacedImage(cur, merged models.Payload) string {
	before, ok := cur.(*models.ImagePayload)
	if !ok {
		return ""
	}
	after := merged.(*models.ImagePayload)
	if before.ImageURL == "" || before.ImageURL == after.ImageURL {
		return ""
	}
	return before.ImageURL
}

func validateGeometry(x, y, width, height *float64) error {
	for _, v := range []*float64{x, y, width, height} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return common.Validationf("coordinates must be finite numbers")
		}
	}
	if width != nil && *width < 0 {
		return common.Validationf("width must not be negative")
	}
	if height != nil && *height < 0 {
		return common.Validationf("height must not be negative")
	}
	return nil
}

package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/slidedeck/internal/common"
	"github.com/dmitrijs2005/slidedeck/internal/dbx"
	"github.com/dmitrijs2005/slidedeck/internal/logging"
	"github.com/dmitrijs2005/slidedeck/internal/server/models"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/slides"
)

const positionConstraint = "slides_presentation_id_position_key"

// SlideService keeps the positions of a presentation's slides equal to
// 1..N across inserts, moves and deletes. Slides of presentations the caller
// does not own are reported as not found.
//
// Every mutation runs in one transaction that first locks the presentation
// row, so two writers on the same presentation never compute shifts from
// the same stale positions. The slide is re-read after the lock.
type SlideService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewSlideService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *SlideService {
	return &SlideService{db: db, repomanager: m, logger: logger}
}

// Create appends a slide to the presentation at position max+1.
func (s *SlideService) Create(ctx context.Context, callerID, presentationID string, ns models.NewSlide) (*models.Slide, error) {
	if ns.BackgroundColor == "" {
		ns.BackgroundColor = models.DefaultBackgroundColor
	}

	var slide *models.Slide
	err := s.inTx(ctx, func(ctx context.Context, repo slides.Repository) error {
		ownerID, err := repo.LockPresentation(ctx, presentationID)
		if err != nil {
			return err
		}
		if err := owned(ownerID, callerID); err != nil {
			return err
		}
		slide, err = repo.Append(ctx, presentationID, ns)
		return err
	})
	if err != nil {
		return nil, err
	}
	return slide, nil
}

// Update applies patch to the slide. A Position moves the slide there,
// shifting the siblings in between by one; it must lie in [1, N].
// Moving a slide onto its own position changes nothing.
func (s *SlideService) Update(ctx context.Context, callerID, id string, patch models.SlidePatch) (*models.Slide, error) {
	if patch.Empty() {
		return nil, common.ErrorNoFieldsToUpdate
	}

	var slide *models.Slide
	err := s.inTx(ctx, func(ctx context.Context, repo slides.Repository) error {
		cur, err := lockSlide(ctx, repo, callerID, id)
		if err != nil {
			return err
		}

		if patch.Position != nil {
			target := *patch.Position
			if target == cur.Position {
				patch.Position = nil
				if patch.Empty() {
					slide = cur
					return nil
				}
			} else if err := s.move(ctx, repo, cur, target); err != nil {
				return err
			}
		}

		slide, err = repo.Update(ctx, id, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return slide, nil
}

// move shifts the siblings between the slide's current position and target.
// The slide itself is set to target by the caller's update.
func (s *SlideService) move(ctx context.Context, repo slides.Repository, cur *models.Slide, target int) error {
	n, err := repo.Count(ctx, cur.PresentationID)
	if err != nil {
		return err
	}
	if target < 1 || target > n {
		return fmt.Errorf("slide number %d not in [1, %d]: %w", target, n, common.ErrorPositionOutOfRange)
	}

	if cur.Position < target {
		err = repo.ShiftRange(ctx, cur.PresentationID, cur.Position+1, target, -1)
	} else {
		err = repo.ShiftRange(ctx, cur.PresentationID, target, cur.Position-1, 1)
	}
	if err != nil {
		return err
	}

	s.logger.Debug(ctx, "slide moved", "slide_id", cur.ID, "from", cur.Position, "to", target)
	return nil
}

// Delete removes the slide with its elements and closes the gap it leaves.
func (s *SlideService) Delete(ctx context.Context, callerID, id string) error {
	return s.inTx(ctx, func(ctx context.Context, repo slides.Repository) error {
		cur, err := lockSlide(ctx, repo, callerID, id)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return repo.ShiftAfter(ctx, cur.PresentationID, cur.Position, -1)
	})
}

// lockSlide locks the slide's presentation, checks that callerID owns it
// and returns the slide as seen after the lock.
func lockSlide(ctx context.Context, repo slides.Repository, callerID, id string) (*models.Slide, error) {
	cur, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ownerID, err := repo.LockPresentation(ctx, cur.PresentationID)
	if err != nil {
		return nil, err
	}
	if err := owned(ownerID, callerID); err != nil {
		return nil, err
	}
	return repo.Get(ctx, id)
}

// inTx runs fn with a slides repository bound to a read-committed
// transaction. A deferred position conflict surfaces at commit and is
// reported as common.ErrorPositionTaken.
func (s *SlideService) inTx(ctx context.Context, fn func(ctx context.Context, repo slides.Repository) error) error {
	err := dbx.WithTx(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, s.repomanager.Slides(tx))
	})
	if constraint, ok := dbx.UniqueViolation(err); ok && constraint == positionConstraint {
		return fmt.Errorf("%w: %w", common.ErrorPositionTaken, err)
	}
	return err
}

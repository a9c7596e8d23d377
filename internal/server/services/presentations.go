package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/slidedeck/internal/common"
	"github.com/dmitrijs2005/slidedeck/internal/server/models"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/presentations"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/repomanager"
)

// PresentationService covers presentation CRUD and the read-side aggregate
// of a presentation with its ordered slides. Every operation acts for a
// caller; presentations of other users are reported as not found.
type PresentationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPresentationService(db *sql.DB, m repomanager.RepositoryManager) *PresentationService {
	return &PresentationService{db: db, repomanager: m}
}

// Create adds a presentation owned by callerID.
func (s *PresentationService) Create(ctx context.Context, callerID, title string, description *string) (*models.Presentation, error) {
	if strings.TrimSpace(title) == "" {
		return nil, common.Validationf("title must not be empty")
	}
	p := &models.Presentation{UserID: callerID, Title: title, Description: description}
	return s.repomanager.Presentations(s.db).Create(ctx, p)
}

// Get returns the presentation with its slides ordered by position.
func (s *PresentationService) Get(ctx context.Context, callerID, id string) (*models.PresentationDetail, error) {
	d, err := s.repomanager.Presentations(s.db).GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := owned(d.UserID, callerID); err != nil {
		return nil, err
	}
	return d, nil
}

// ListByUser returns the user's presentations, most recently updated first.
// Only the user themselves may list them.
func (s *PresentationService) ListByUser(ctx context.Context, callerID, userID string) ([]models.PresentationSummary, error) {
	if err := owned(userID, callerID); err != nil {
		return nil, err
	}
	return s.repomanager.Presentations(s.db).ListByUser(ctx, userID)
}

func (s *PresentationService) Update(ctx context.Context, callerID, id string, patch models.PresentationPatch) (*models.Presentation, error) {
	if patch.Empty() {
		return nil, common.ErrorNoFieldsToUpdate
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, common.Validationf("title must not be empty")
	}
	repo := s.repomanager.Presentations(s.db)
	if err := checkPresentationOwner(ctx, repo, callerID, id); err != nil {
		return nil, err
	}
	return repo.Update(ctx, id, patch)
}

// Delete removes the presentation together with its slides and elements.
func (s *PresentationService) Delete(ctx context.Context, callerID, id string) error {
	repo := s.repomanager.Presentations(s.db)
	if err := checkPresentationOwner(ctx, repo, callerID, id); err != nil {
		return err
	}
	return repo.Delete(ctx, id)
}

func checkPresentationOwner(ctx context.Context, repo presentations.Repository, callerID, id string) error {
	ownerID, err := repo.OwnerID(ctx, id)
	if err != nil {
		return err
	}
	return owned(ownerID, callerID)
}

// owned returns common.ErrorNotFound unless callerID is ownerID, so that
// other users' data is indistinguishable from missing data.
func owned(ownerID, callerID string) error {
	if ownerID != callerID {
		return common.ErrorNotFound
	}
	return nil
}

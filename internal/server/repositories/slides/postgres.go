package slides

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/slidedeck/internal/common"
	"github.com/dmitrijs2005/slidedeck/internal/dbx"
	"github.com/dmitrijs2005/slidedeck/internal/server/models"
)

const columns = `id, presentation_id, position, background_color, background_image_url, title, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// LockPresentation takes a row lock on the presentation for the rest of the
// transaction and returns its owner. Every slide mutation of that
// presentation goes through it, so concurrent inserts, moves and deletes on
// one presentation run one at a time.
func (r *PostgresRepository) LockPresentation(ctx context.Context, presentationID string) (string, error) {
	var ownerID string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM presentations WHERE id = $1 FOR UPDATE`, presentationID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("presentation %s: %w", presentationID, common.ErrorNotFound)
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return ownerID, nil
}

// OwnerID returns the user owning the presentation the slide belongs to.
func (r *PostgresRepository) OwnerID(ctx context.Context, id string) (string, error) {
	var ownerID string
	err := r.db.QueryRowContext(ctx,
		`SELECT p.user_id FROM slides s JOIN presentations p ON p.id = s.presentation_id WHERE s.id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return ownerID, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Slide, error) {
	query := `SELECT ` + columns + ` FROM slides WHERE id = $1`
	return scanSlide(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Count(ctx context.Context, presentationID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM slides WHERE presentation_id = $1`, presentationID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Append inserts a slide at max(position)+1, or 1 for an empty presentation.
// The position is computed by the INSERT itself.
func (r *PostgresRepository) Append(ctx context.Context, presentationID string, s models.NewSlide) (*models.Slide, error) {
	query :=
		`INSERT INTO slides (presentation_id, position, background_color, background_image_url, title)
		 SELECT $1::uuid, COALESCE(MAX(position), 0) + 1, $2, $3, $4
		 FROM slides WHERE presentation_id = $1::uuid
		 RETURNING ` + columns

	slide, err := scanSlide(r.db.QueryRowContext(ctx, query,
		presentationID, s.BackgroundColor, s.BackgroundImageURL, s.Title))
	if err != nil && dbx.ForeignKeyViolation(err) {
		return nil, fmt.Errorf("presentation %s: %w", presentationID, common.ErrorNotFound)
	}
	return slide, err
}

// ShiftRange adds delta to the position of every slide in [from, to].
// Sibling updated_at is left alone: a shift is not an edit of the slide.
func (r *PostgresRepository) ShiftRange(ctx context.Context, presentationID string, from, to, delta int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE slides SET position = position + $1
		 WHERE presentation_id = $2 AND position BETWEEN $3 AND $4`,
		delta, presentationID, from, to)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ShiftAfter adds delta to the position of every slide past position.
func (r *PostgresRepository) ShiftAfter(ctx context.Context, presentationID string, position, delta int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE slides SET position = position + $1
		 WHERE presentation_id = $2 AND position > $3`,
		delta, presentationID, position)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update applies the non-nil fields of patch, position included, and bumps
// updated_at. Keeping positions contiguous is the caller's job.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.SlidePatch) (*models.Slide, error) {
	var sets dbx.Sets
	sets = dbx.Add(sets, "position", patch.Position)
	sets = dbx.Add(sets, "background_color", patch.BackgroundColor)
	sets = dbx.AddNull(sets, "background_image_url", patch.BackgroundImageURL.Set, patch.BackgroundImageURL.Value)
	sets = dbx.AddNull(sets, "title", patch.Title.Set, patch.Title.Value)
	if len(sets) == 0 {
		return nil, common.ErrorNoFieldsToUpdate
	}

	query, args := dbx.BuildUpdate("slides", sets, []string{"updated_at = NOW()"}, "id", id, columns)
	return scanSlide(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM slides WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func scanSlide(row *sql.Row) (*models.Slide, error) {
	s := &models.Slide{}
	err := row.Scan(&s.ID, &s.PresentationID, &s.Position, &s.BackgroundColor,
		&s.BackgroundImageURL, &s.Title, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

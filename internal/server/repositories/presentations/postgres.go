package presentations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/slidedeck/internal/common"
	"github.com/dmitrijs2005/slidedeck/internal/dbx"
	"github.com/dmitrijs2005/slidedeck/internal/server/models"
)

const columns = `id, user_id, title, description, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts p for an existing user; an unknown user id yields
// common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, p *models.Presentation) (*models.Presentation, error) {
	query :=
		`INSERT INTO presentations (user_id, title, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, p.UserID, p.Title, p.Description).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if dbx.ForeignKeyViolation(err) {
			return nil, fmt.Errorf("user %s: %w", p.UserID, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

// GetDetail loads a presentation and its slides in one round trip. The
// slides are aggregated to JSON ordered by position.
func (r *PostgresRepository) GetDetail(ctx context.Context, id string) (*models.PresentationDetail, error) {
	query :=
		`SELECT p.id, p.user_id, p.title, p.description, p.created_at, p.updated_at,
		        COALESCE(
		            json_agg(json_build_object(
		                'slide_id', s.id,
		                'presentation_id', s.presentation_id,
		                'slide_number', s.position,
		                'background_color', s.background_color,
		                'background_image_url', s.background_image_url,
		                'title', s.title,
		                'created_at', s.created_at,
		                'updated_at', s.updated_at
		            ) ORDER BY s.position) FILTER (WHERE s.id IS NOT NULL),
		            '[]'::json
		        ) AS slides
		 FROM presentations p
		 LEFT JOIN slides s ON s.presentation_id = p.id
		 WHERE p.id = $1
		 GROUP BY p.id
		 `

	d := &models.PresentationDetail{}
	var slides []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.UserID, &d.Title, &d.Description, &d.CreatedAt, &d.UpdatedAt, &slides)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	d.Slides = []models.Slide{}
	if err := json.Unmarshal(slides, &d.Slides); err != nil {
		return nil, fmt.Errorf("decode slides: %w", err)
	}

	return d, nil
}

// ListByUser returns the user's presentations, most recently updated first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.PresentationSummary, error) {
	query :=
		`SELECT p.id, p.user_id, p.title, p.description, p.created_at, p.updated_at,
		        COUNT(s.id) AS slide_count,
		        MAX(s.updated_at) AS last_updated
		 FROM presentations p
		 LEFT JOIN slides s ON s.presentation_id = p.id
		 WHERE p.user_id = $1
		 GROUP BY p.id
		 ORDER BY p.updated_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.PresentationSummary{}
	for rows.Next() {
		var s models.PresentationSummary
		var last sql.NullTime
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.CreatedAt, &s.UpdatedAt,
			&s.SlideCount, &last); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if last.Valid {
			t := last.Time
			s.LastUpdated = &t
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}

func (r *PostgresRepository) OwnerID(ctx context.Context, id string) (string, error) {
	var ownerID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM presentations WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return ownerID, nil
}

// Update applies the set fields of patch and bumps updated_at. A cleared
// description is written as NULL.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.PresentationPatch) (*models.Presentation, error) {
	var sets dbx.Sets
	sets = dbx.Add(sets, "title", patch.Title)
	sets = dbx.AddNull(sets, "description", patch.Description.Set, patch.Description.Value)
	if len(sets) == 0 {
		return nil, common.ErrorNoFieldsToUpdate
	}

	query, args := dbx.BuildUpdate("presentations", sets, []string{"updated_at = NOW()"}, "id", id, columns)

	p := &models.Presentation{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

// Delete removes the presentation; slides and elements go with it through
// ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM presentations WHERE id = $1`, id)
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

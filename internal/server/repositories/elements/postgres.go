package elements

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/slidedeck/internal/common"
	"github.com/dmitrijs2005/slidedeck/internal/dbx"
	"github.com/dmitrijs2005/slidedeck/internal/server/models"
)

const sharedColumns = `e.id, e.slide_id, e.element_type, e.x_position, e.y_position, e.width, e.height, e.z_index, e.created_at, e.updated_at`

// orderBy is the painter's order: bottom layer first.
const orderBy = ` ORDER BY e.z_index ASC, e.created_at ASC, e.id ASC`

// selectElements joins every payload table onto elements. Only the columns
// of the row's own kind are non-NULL.
var selectElements, joinedKinds = buildSelect()

func buildSelect() (string, []models.ElementKind) {
	cols := []string{sharedColumns}
	var joins []string
	var kinds []models.ElementKind
	for _, kind := range models.Kinds() {
		c, ok := codecs[kind]
		if !ok {
			continue
		}
		for _, col := range c.columns {
			cols = append(cols, c.table+"."+col)
		}
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s ON %s.element_id = e.id", c.table, c.table))
		kinds = append(kinds, kind)
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM elements e " + strings.Join(joins, " "), kinds
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the shared row and then the payload row keyed by the new
// element id. Run it inside a transaction: a failed payload insert must not
// leave the shared row behind.
func (r *PostgresRepository) Create(ctx context.Context, ne models.NewElement) (*models.Element, error) {
	if ne.Data == nil {
		return nil, common.Validationf("element payload is required")
	}
	kind := ne.Data.Kind()
	c, err := codecFor(kind)
	if err != nil {
		return nil, err
	}

	e := &models.Element{
		SlideID: ne.SlideID,
		Kind:    kind,
		X:       ne.X,
		Y:       ne.Y,
		Width:   ne.Width,
		Height:  ne.Height,
		ZIndex:  ne.ZIndex,
		Data:    ne.Data,
	}

	query :=
		`INSERT INTO elements (slide_id, element_type, x_position, y_position, width, height, z_index)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at
		 `
	err = r.db.QueryRowContext(ctx, query,
		e.SlideID, string(e.Kind), e.X, e.Y, e.Width, e.Height, e.ZIndex).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if dbx.ForeignKeyViolation(err) {
			return nil, fmt.Errorf("slide %s: %w", ne.SlideID, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	placeholders := make([]string, 0, len(c.columns)+1)
	for i := 0; i <= len(c.columns); i++ {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}
	payloadQuery := fmt.Sprintf("INSERT INTO %s (element_id, %s) VALUES (%s)",
		c.table, strings.Join(c.columns, ", "), strings.Join(placeholders, ", "))

	args := append([]any{e.ID}, c.values(ne.Data)...)
	if _, err := r.db.ExecContext(ctx, payloadQuery, args...); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return e, nil
}

// Get returns one element with its payload. forUpdate locks the shared row
// until the end of the surrounding transaction.
func (r *PostgresRepository) Get(ctx context.Context, id string, forUpdate bool) (*models.Element, error) {
	query := selectElements + ` WHERE e.id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF e`
	}

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	list, err := scanElements(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.ErrorNotFound
	}
	return &list[0], nil
}

// ListBySlide returns the slide's elements bottom layer first.
func (r *PostgresRepository) ListBySlide(ctx context.Context, slideID string) ([]models.Element, error) {
	rows, err := r.db.QueryContext(ctx, selectElements+` WHERE e.slide_id = $1`+orderBy, slideID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanElements(rows)
}

// Update writes the shared fields, always bumping updated_at, and then the
// payload fields of kind if the patch carries any.
func (r *PostgresRepository) Update(ctx context.Context, id string, kind models.ElementKind, patch models.ElementPatch) error {
	var sets dbx.Sets
	sets = dbx.Add(sets, "x_position", patch.X)
	sets = dbx.Add(sets, "y_position", patch.Y)
	sets = dbx.AddNull(sets, "width", patch.Width.Set, patch.Width.Value)
	sets = dbx.AddNull(sets, "height", patch.Height.Set, patch.Height.Value)
	sets = dbx.Add(sets, "z_index", patch.ZIndex)

	query, args := dbx.BuildUpdate("elements", sets, []string{"updated_at = NOW()"}, "id", id, "")
	res, err := r.db.ExecContext(ctx, query, args...)
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

	if patch.Payload == nil || patch.Payload.Empty() {
		return nil
	}
	c, err := codecFor(kind)
	if err != nil {
		return err
	}
	query, args = dbx.BuildUpdate(c.table, c.sets(patch.Payload), nil, "element_id", id, "")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the element; its payload row goes with it through
// ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM elements WHERE id = $1`, id)
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

func scanElements(rows *sql.Rows) ([]models.Element, error) {
	defer rows.Close()

	out := []models.Element{}
	for rows.Next() {
		var (
			e      models.Element
			kind   string
			width  sql.NullFloat64
			height sql.NullFloat64
		)
		dest := []any{&e.ID, &e.SlideID, &kind, &e.X, &e.Y, &width, &height, &e.ZIndex, &e.CreatedAt, &e.UpdatedAt}
		builders := make(map[models.ElementKind]func() models.Payload, len(joinedKinds))
		for _, k := range joinedKinds {
			targets, build := codecs[k].scan()
			dest = append(dest, targets...)
			builders[k] = build
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		e.Kind = models.ElementKind(kind)
		e.Width = nullFloat(width)
		e.Height = nullFloat(height)
		if build, ok := builders[e.Kind]; ok {
			e.Data = build()
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

package templates

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/badgeforge/backend/internal/layout"
	"github.com/badgeforge/backend/internal/models"
)

// Repository handles badge template persistence. Layout, theme and custom
// labels are JSONB documents; ownership gates every write.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a templates repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const templateColumns = `id, owner_id, name, icon, base_archetype, layout, theme, custom_labels, visibility, created_at, updated_at`

func scanTemplate(row pgx.Row) (*models.BadgeTemplate, error) {
	var t models.BadgeTemplate
	var layoutJSON, themeJSON, labelsJSON []byte
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Icon, &t.BaseArchetype, &layoutJSON, &themeJSON, &labelsJSON, &t.Visibility, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(layoutJSON, &t.Layout); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if len(themeJSON) > 0 {
		t.Theme = &models.Theme{}
		if err := json.Unmarshal(themeJSON, t.Theme); err != nil {
			return nil, fmt.Errorf("decode theme: %w", err)
		}
	}
	if len(labelsJSON) > 0 {
		if err := json.Unmarshal(labelsJSON, &t.CustomLabels); err != nil {
			return nil, fmt.Errorf("decode custom labels: %w", err)
		}
	}
	return &t, nil
}

func encodeTemplate(t *models.BadgeTemplate) (layoutJSON, themeJSON, labelsJSON []byte, err error) {
	layoutJSON, err = json.Marshal(t.Layout)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal layout: %w", err)
	}
	if t.Theme != nil {
		themeJSON, err = json.Marshal(t.Theme)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal theme: %w", err)
		}
	}
	if t.CustomLabels != nil {
		labelsJSON, err = json.Marshal(t.CustomLabels)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal custom labels: %w", err)
		}
	}
	return layoutJSON, themeJSON, labelsJSON, nil
}

// Create inserts a template.
func (r *Repository) Create(ctx context.Context, t *models.BadgeTemplate) error {
	layoutJSON, themeJSON, labelsJSON, err := encodeTemplate(t)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO badge_templates (owner_id, name, icon, base_archetype, layout, theme, custom_labels, visibility)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		t.OwnerID, t.Name, t.Icon, t.BaseArchetype, layoutJSON, themeJSON, labelsJSON, t.Visibility,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// List returns the user's own templates plus public ones, newest first.
func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]models.BadgeTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+templateColumns+` FROM badge_templates
		 WHERE owner_id = $1 OR visibility = $2
		 ORDER BY created_at DESC`,
		userID, models.VisibilityPublic)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.BadgeTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

// GetByID returns a template visible to userID (owned or public).
func (r *Repository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.BadgeTemplate, error) {
	return scanTemplate(r.pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM badge_templates
		 WHERE id = $1 AND (owner_id = $2 OR visibility = $3)`,
		id, userID, models.VisibilityPublic))
}

// Update overwrites a template. Owner-only: rows not owned by t.OwnerID are
// untouched and pgx.ErrNoRows is returned.
func (r *Repository) Update(ctx context.Context, t *models.BadgeTemplate) error {
	layoutJSON, themeJSON, labelsJSON, err := encodeTemplate(t)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE badge_templates
		 SET name = $1, icon = $2, base_archetype = $3, layout = $4, theme = $5, custom_labels = $6, visibility = $7, updated_at = NOW()
		 WHERE id = $8 AND owner_id = $9`,
		t.Name, t.Icon, t.BaseArchetype, layoutJSON, themeJSON, labelsJSON, t.Visibility, t.ID, t.OwnerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a template. Owner-only.
func (r *Repository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM badge_templates WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RemoveCustomField strips a deleted data field from every template the owner
// has: any custom element whose label matches is dropped from both the custom
// label map and the layout.
func (r *Repository) RemoveCustomField(ctx context.Context, ownerID uuid.UUID, label string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT `+templateColumns+` FROM badge_templates WHERE owner_id = $1`, ownerID)
	if err != nil {
		return err
	}
	var dirty []models.BadgeTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			rows.Close()
			return err
		}
		changed := false
		for key, l := range t.CustomLabels {
			if !layout.IsCustomKey(key) || l != label {
				continue
			}
			delete(t.CustomLabels, key)
			delete(t.Layout, key)
			changed = true
		}
		if changed {
			dirty = append(dirty, *t)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range dirty {
		t := &dirty[i]
		layoutJSON, _, labelsJSON, err := encodeTemplate(t)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE badge_templates SET layout = $1, custom_labels = $2, updated_at = NOW() WHERE id = $3`,
			layoutJSON, labelsJSON, t.ID); err != nil {
			return fmt.Errorf("update template %s: %w", t.ID, err)
		}
	}
	return tx.Commit(ctx)
}

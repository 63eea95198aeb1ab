package exports

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/badgeforge/backend/internal/models"
)

// Repository handles badge export job persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an exports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const exportColumns = `id, owner_id, template_id, archetype, filename_pattern, status, manifest_key, error, created_at, updated_at`

func scanExport(row pgx.Row) (*models.BadgeExport, error) {
	var e models.BadgeExport
	err := row.Scan(&e.ID, &e.OwnerID, &e.TemplateID, &e.Archetype, &e.FilenamePattern, &e.Status, &e.ManifestKey, &e.Error, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a queued export row.
func (r *Repository) Create(ctx context.Context, e *models.BadgeExport) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO badge_exports (owner_id, template_id, archetype, filename_pattern, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		e.OwnerID, e.TemplateID, e.Archetype, e.FilenamePattern, e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an export owned by ownerID.
func (r *Repository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.BadgeExport, error) {
	return scanExport(r.pool.QueryRow(ctx,
		`SELECT `+exportColumns+` FROM badge_exports WHERE owner_id = $1 AND id = $2`, ownerID, id))
}

// Get returns an export by id regardless of owner. Used by the worker, which
// receives the owner in the job payload.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.BadgeExport, error) {
	return scanExport(r.pool.QueryRow(ctx,
		`SELECT `+exportColumns+` FROM badge_exports WHERE id = $1`, id))
}

// List returns the owner's exports, newest first.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID) ([]models.BadgeExport, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+exportColumns+` FROM badge_exports WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.BadgeExport
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// SetProcessing marks the job as picked up.
func (r *Repository) SetProcessing(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE badge_exports SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.ExportProcessing, id)
	return err
}

// SetDone records the manifest location and marks the job finished.
func (r *Repository) SetDone(ctx context.Context, id uuid.UUID, manifestKey string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE badge_exports SET status = $1, manifest_key = $2, error = '', updated_at = NOW() WHERE id = $3`,
		models.ExportDone, manifestKey, id)
	return err
}

// SetFailed records the failure reason.
func (r *Repository) SetFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE badge_exports SET status = $1, error = $2, updated_at = NOW() WHERE id = $3`,
		models.ExportFailed, reason, id)
	return err
}

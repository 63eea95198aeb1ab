package attendees

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/badgeforge/backend/internal/models"
)

// Repository handles attendee persistence. Tracks and extras are stored as
// JSONB; list order follows row_index so replays preserve import order.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attendees repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const attendeeColumns = `id, owner_id, archetype, row_index, name, company, pass_type, registration_id, role,
	event_name, event_dates, sponsor, guardian_name, date_of_birth, class, school_id,
	job_title, valid_from, valid_until, tracks, extras, image, created_at, updated_at`

func scanAttendee(row pgx.Row) (*models.Attendee, error) {
	var a models.Attendee
	var tracksJSON, extrasJSON []byte
	err := row.Scan(&a.ID, &a.OwnerID, &a.Archetype, &a.RowIndex, &a.Name, &a.Company, &a.PassType, &a.RegistrationID, &a.Role,
		&a.EventName, &a.EventDates, &a.Sponsor, &a.GuardianName, &a.DateOfBirth, &a.Class, &a.SchoolID,
		&a.JobTitle, &a.ValidFrom, &a.ValidUntil, &tracksJSON, &extrasJSON, &a.Image, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(tracksJSON) > 0 {
		_ = json.Unmarshal(tracksJSON, &a.Tracks)
	}
	if len(extrasJSON) > 0 {
		_ = json.Unmarshal(extrasJSON, &a.Extras)
	}
	if a.Extras == nil {
		a.Extras = map[string]string{}
	}
	return &a, nil
}

func encodeJSON(a *models.Attendee) (tracks, extras []byte, err error) {
	t := a.Tracks
	if t == nil {
		t = []string{}
	}
	e := a.Extras
	if e == nil {
		e = map[string]string{}
	}
	tracks, err = json.Marshal(t)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal tracks: %w", err)
	}
	extras, err = json.Marshal(e)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal extras: %w", err)
	}
	return tracks, extras, nil
}

const insertQuery = `INSERT INTO attendees (owner_id, archetype, row_index, name, company, pass_type, registration_id, role,
		event_name, event_dates, sponsor, guardian_name, date_of_birth, class, school_id,
		job_title, valid_from, valid_until, tracks, extras, image)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	RETURNING id, created_at, updated_at`

func insertOne(ctx context.Context, tx pgx.Tx, a *models.Attendee) error {
	tracks, extras, err := encodeJSON(a)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx, insertQuery,
		a.OwnerID, a.Archetype, a.RowIndex, a.Name, a.Company, a.PassType, a.RegistrationID, a.Role,
		a.EventName, a.EventDates, a.Sponsor, a.GuardianName, a.DateOfBirth, a.Class, a.SchoolID,
		a.JobTitle, a.ValidFrom, a.ValidUntil, tracks, extras, a.Image,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// ReplaceAll deletes the owner's attendees and inserts the imported batch in
// row order, in one transaction.
func (r *Repository) ReplaceAll(ctx context.Context, ownerID uuid.UUID, list []models.Attendee) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM attendees WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("clear attendees: %w", err)
	}
	for i := range list {
		list[i].OwnerID = ownerID
		list[i].RowIndex = i
		if err := insertOne(ctx, tx, &list[i]); err != nil {
			return fmt.Errorf("insert attendee row %d: %w", i, err)
		}
	}
	return tx.Commit(ctx)
}

// MergeImport merges the imported batch into the existing set: rows whose
// registration id matches an existing attendee update it in place, the rest
// append after the current tail. New rows keep their relative order.
func (r *Repository) MergeImport(ctx context.Context, ownerID uuid.UUID, list []models.Attendee) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var nextIdx int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(row_index) + 1, 0) FROM attendees WHERE owner_id = $1`, ownerID).Scan(&nextIdx); err != nil {
		return fmt.Errorf("next row index: %w", err)
	}

	for i := range list {
		a := &list[i]
		a.OwnerID = ownerID

		var existingID uuid.UUID
		matched := false
		if a.RegistrationID != "" {
			err := tx.QueryRow(ctx, `SELECT id FROM attendees WHERE owner_id = $1 AND registration_id = $2`, ownerID, a.RegistrationID).Scan(&existingID)
			matched = err == nil
		}
		if matched {
			tracks, extras, err := encodeJSON(a)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `UPDATE attendees SET archetype = $1, name = $2, company = $3, pass_type = $4, role = $5,
				event_name = $6, event_dates = $7, sponsor = $8, guardian_name = $9, date_of_birth = $10, class = $11, school_id = $12,
				job_title = $13, valid_from = $14, valid_until = $15, tracks = $16, extras = $17, updated_at = NOW()
				WHERE id = $18`,
				a.Archetype, a.Name, a.Company, a.PassType, a.Role,
				a.EventName, a.EventDates, a.Sponsor, a.GuardianName, a.DateOfBirth, a.Class, a.SchoolID,
				a.JobTitle, a.ValidFrom, a.ValidUntil, tracks, extras, existingID)
			if err != nil {
				return fmt.Errorf("merge attendee %s: %w", a.RegistrationID, err)
			}
			continue
		}
		a.RowIndex = nextIdx
		nextIdx++
		if err := insertOne(ctx, tx, a); err != nil {
			return fmt.Errorf("insert attendee: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// List returns the owner's attendees in import row order.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID) ([]models.Attendee, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+attendeeColumns+` FROM attendees WHERE owner_id = $1 ORDER BY row_index`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Attendee
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// GetByID returns an attendee owned by ownerID.
func (r *Repository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Attendee, error) {
	return scanAttendee(r.pool.QueryRow(ctx, `SELECT `+attendeeColumns+` FROM attendees WHERE owner_id = $1 AND id = $2`, ownerID, id))
}

// Update overwrites an attendee's fields (image excluded; see UpdateImage).
func (r *Repository) Update(ctx context.Context, a *models.Attendee) error {
	tracks, extras, err := encodeJSON(a)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `UPDATE attendees SET archetype = $1, name = $2, company = $3, pass_type = $4, registration_id = $5, role = $6,
		event_name = $7, event_dates = $8, sponsor = $9, guardian_name = $10, date_of_birth = $11, class = $12, school_id = $13,
		job_title = $14, valid_from = $15, valid_until = $16, tracks = $17, extras = $18, updated_at = NOW()
		WHERE owner_id = $19 AND id = $20`,
		a.Archetype, a.Name, a.Company, a.PassType, a.RegistrationID, a.Role,
		a.EventName, a.EventDates, a.Sponsor, a.GuardianName, a.DateOfBirth, a.Class, a.SchoolID,
		a.JobTitle, a.ValidFrom, a.ValidUntil, tracks, extras, a.OwnerID, a.ID)
	return err
}

// UpdateImage replaces the attendee's image wholesale.
func (r *Repository) UpdateImage(ctx context.Context, ownerID, id uuid.UUID, image string) error {
	_, err := r.pool.Exec(ctx, `UPDATE attendees SET image = $1, updated_at = NOW() WHERE owner_id = $2 AND id = $3`, image, ownerID, id)
	return err
}

// Delete removes one attendee.
func (r *Repository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM attendees WHERE owner_id = $1 AND id = $2`, ownerID, id)
	return err
}

// Clear removes the owner's whole collection.
func (r *Repository) Clear(ctx context.Context, ownerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM attendees WHERE owner_id = $1`, ownerID)
	return err
}

// DeleteExtraField removes a label from every attendee's extras bag. Part of
// the field-deletion cascade; the caller removes the matching custom label
// and layout entry afterwards.
func (r *Repository) DeleteExtraField(ctx context.Context, ownerID uuid.UUID, label string) error {
	_, err := r.pool.Exec(ctx, `UPDATE attendees SET extras = extras - $2, updated_at = NOW() WHERE owner_id = $1 AND extras ? $2`, ownerID, label)
	return err
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportStatus is the lifecycle state of a badge export job.
type ExportStatus string

const (
	ExportQueued     ExportStatus = "queued"
	ExportProcessing ExportStatus = "processing"
	ExportDone       ExportStatus = "done"
	ExportFailed     ExportStatus = "failed"
)

// BadgeExport tracks one bulk export run: the template it renders with, the
// filename pattern for the output files, and where the render manifest landed.
type BadgeExport struct {
	ID              uuid.UUID    `json:"id"`
	OwnerID         uuid.UUID    `json:"owner_id"`
	TemplateID      *uuid.UUID   `json:"template_id,omitempty"`
	Archetype       Archetype    `json:"archetype"`
	FilenamePattern string       `json:"filename_pattern"`
	Status          ExportStatus `json:"status"`
	ManifestKey     string       `json:"manifest_key,omitempty"`
	Error           string       `json:"error,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/badgeforge/backend/internal/layout"
)

// Visibility controls who can see a saved template.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// Theme is the cosmetic part of a template: card background gradient and
// corner rounding. It rides along with the layout but has no effect on
// positioning or label binding.
type Theme struct {
	GradientFrom string `json:"gradient_from"`
	GradientTo   string `json:"gradient_to"`
	CornerRadius int    `json:"corner_radius"`
}

// BadgeTemplate is a saved layout + label + theme bundle. Visible to its
// owner, and to everyone when public. Updated and deleted by the owner only.
type BadgeTemplate struct {
	ID            uuid.UUID         `json:"id"`
	OwnerID       uuid.UUID         `json:"owner_id"`
	Name          string            `json:"name"`
	Icon          string            `json:"icon"`
	BaseArchetype Archetype         `json:"base_archetype"`
	Layout        layout.Layout     `json:"layout"`
	Theme         *Theme            `json:"theme,omitempty"`
	CustomLabels  map[string]string `json:"custom_labels,omitempty"`
	Visibility    Visibility        `json:"visibility"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Archetype is the card category. It selects the default layout and the
// known-field set an import maps onto.
type Archetype string

const (
	ArchetypeConference Archetype = "conference"
	ArchetypeSchool     Archetype = "school"
	ArchetypeCorporate  Archetype = "corporate"
)

// ParseArchetype returns the archetype for s, or ok=false if unknown.
func ParseArchetype(s string) (Archetype, bool) {
	switch Archetype(s) {
	case ArchetypeConference, ArchetypeSchool, ArchetypeCorporate:
		return Archetype(s), true
	}
	return "", false
}

// Attendee is one imported record: a conference attendee, a student or an
// employee, depending on the archetype. Known fields hold whatever the column
// mapping resolved; Extras keeps every non-empty source column keyed by its
// raw header text, even when that column was also mapped to a known field —
// label-based lookup depends on that redundancy.
type Attendee struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Archetype      Archetype `json:"archetype"`
	RowIndex       int       `json:"row_index"`
	Name           string    `json:"name"`
	Company        string    `json:"company"`
	PassType       string    `json:"pass_type"`
	RegistrationID string    `json:"registration_id"`
	Role           string    `json:"role"`

	// Conference.
	EventName  string `json:"event_name,omitempty"`
	EventDates string `json:"event_dates,omitempty"`
	Sponsor    string `json:"sponsor,omitempty"`

	// School.
	GuardianName string `json:"guardian_name,omitempty"`
	DateOfBirth  string `json:"date_of_birth,omitempty"`
	Class        string `json:"class,omitempty"`
	SchoolID     string `json:"school_id,omitempty"`

	// Corporate.
	JobTitle   string `json:"job_title,omitempty"`
	ValidFrom  string `json:"valid_from,omitempty"`
	ValidUntil string `json:"valid_until,omitempty"`

	Tracks []string          `json:"tracks"`
	Extras map[string]string `json:"extras"`

	// Image is the stored photo object key, replaced wholesale on upload.
	// API responses swap it for a presigned download URL.
	Image string `json:"image,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

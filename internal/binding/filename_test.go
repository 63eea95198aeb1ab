package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/badgeforge/backend/internal/models"
)

func TestExpandFilename(t *testing.T) {
	a := &models.Attendee{
		Name:           "Ada Lovelace",
		Company:        "ACME Corp",
		RegistrationID: "REG-042",
		PassType:       "VIP",
		Role:           "Speaker",
		SchoolID:       "S-17",
	}

	cases := []struct {
		pattern string
		want    string
	}{
		{"{name}_{registrationId}", "Ada_Lovelace_REG-042"},
		{"{NAME}-{Role}", "Ada_Lovelace-Speaker"},
		{"{company}/{passType}", "ACME_CorpVIP"}, // slash is illegal, stripped
		{"badge {schoolId}", "badge_S-17"},
		{"{name}", "Ada_Lovelace"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExpandFilename(tc.pattern, a), "pattern %q", tc.pattern)
	}
}

func TestExpandFilenameFallback(t *testing.T) {
	empty := &models.Attendee{}
	assert.Equal(t, DefaultFileStem, ExpandFilename("", empty))
	assert.Equal(t, DefaultFileStem, ExpandFilename("{name}", empty))
	assert.Equal(t, DefaultFileStem, ExpandFilename("{name} {company}", empty))
	assert.Equal(t, DefaultFileStem, ExpandFilename(`<>:"?*`, empty))
	assert.Equal(t, DefaultFileStem, ExpandFilename("{name}", nil))
}

func TestExpandFilenameCollapsesWhitespace(t *testing.T) {
	a := &models.Attendee{Name: "Ada   Byron\tLovelace"}
	assert.Equal(t, "Ada_Byron_Lovelace", ExpandFilename("{name}", a))
}

func TestExpandFilenameUnknownPlaceholderIsLiteral(t *testing.T) {
	a := &models.Attendee{Name: "Ada"}
	// {email} is not a placeholder; braces survive (they are legal characters).
	assert.Equal(t, "Ada_{email}", ExpandFilename("{name} {email}", a))
}

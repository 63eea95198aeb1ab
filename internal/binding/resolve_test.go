package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/badgeforge/backend/internal/layout"
	"github.com/badgeforge/backend/internal/models"
)

func testAttendee() *models.Attendee {
	return &models.Attendee{
		Name:    "Ada Lovelace",
		Company: "ACME",
		Extras: map[string]string{
			"Name":    "Ada Lovelace",
			"Org":     "ACME",
			"Role":    "Speaker",
			"Dietary": "vegetarian",
		},
	}
}

func TestResolveExactMatch(t *testing.T) {
	a := testAttendee()
	assert.Equal(t, "Ada Lovelace", Resolve(layout.KeyName, nil, a))
	assert.Equal(t, "Speaker", Resolve(layout.KeyRole, nil, a))
}

func TestResolveCustomLabelRedirects(t *testing.T) {
	a := testAttendee()
	// The company element is captioned "Org", so it pulls the Org column.
	labels := map[string]string{layout.KeyCompany: "Org"}
	assert.Equal(t, "ACME", Resolve(layout.KeyCompany, labels, a))
	// Without the relabel there is no "Company" column; the label shows through.
	assert.Equal(t, "Company", Resolve(layout.KeyCompany, nil, a))
}

func TestResolveCaseInsensitiveFallback(t *testing.T) {
	a := testAttendee()
	labels := map[string]string{"customText1": "dietary"}
	assert.Equal(t, "vegetarian", Resolve("customText1", labels, a))
}

func TestResolveCaseInsensitiveIsDeterministic(t *testing.T) {
	a := &models.Attendee{Extras: map[string]string{
		"ROLE": "b-value",
		"Role": "a-value",
		"role": "c-value",
	}}
	labels := map[string]string{"customText1": "rOlE"}
	want := Resolve("customText1", labels, a)
	for i := 0; i < 50; i++ {
		assert.Equal(t, want, Resolve("customText1", labels, a))
	}
	// Exact case wins when present.
	assert.Equal(t, "b-value", Resolve("customText1", map[string]string{"customText1": "ROLE"}, a))
}

func TestResolvePlaceholderWhenMissing(t *testing.T) {
	a := testAttendee()
	labels := map[string]string{"customText2": "T-Shirt Size"}
	assert.Equal(t, "T-Shirt Size", Resolve("customText2", labels, a))
	assert.Equal(t, "Pass Type", Resolve(layout.KeyPassType, nil, a))
}

func TestResolveMediaReturnsSentinel(t *testing.T) {
	a := testAttendee()
	assert.Empty(t, Resolve(layout.KeyImage, nil, a))
	assert.Empty(t, Resolve(layout.KeyQRCode, nil, a))
	assert.Empty(t, Resolve("customPhoto1", map[string]string{"customPhoto1": "Name"}, a))
}

func TestResolveNilRecord(t *testing.T) {
	assert.Equal(t, "Name", Resolve(layout.KeyName, nil, nil))
}

func TestResolveDoesNotMutate(t *testing.T) {
	a := testAttendee()
	labels := map[string]string{layout.KeyCompany: "Org"}
	Resolve(layout.KeyCompany, labels, a)
	Resolve("customText1", labels, a)
	assert.Len(t, a.Extras, 4)
	assert.Len(t, labels, 1)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Registration ID", Label(layout.KeyRegistrationID, nil))
	assert.Equal(t, "Attendee", Label(layout.KeyName, map[string]string{layout.KeyName: "Attendee"}))
	// Empty custom label falls back to the default.
	assert.Equal(t, "Name", Label(layout.KeyName, map[string]string{layout.KeyName: ""}))
	// Custom elements without a label caption as their key.
	assert.Equal(t, "customText4", Label("customText4", nil))
}

// Package binding resolves layout elements to display values for a record.
//
// The binding key is the element's label, not the element key: renaming the
// on-card caption from "Company" to "School" makes the element pull from
// whichever import column was headed "School". The data schema is unknowable
// at layout-design time, so labels are the only stable vocabulary.
package binding

import (
	"sort"
	"strings"

	"github.com/badgeforge/backend/internal/layout"
	"github.com/badgeforge/backend/internal/models"
)

// defaultLabels captions elements that have no custom label.
var defaultLabels = map[string]string{
	layout.KeyName:           "Name",
	layout.KeyCompany:        "Company",
	layout.KeyPassType:       "Pass Type",
	layout.KeyRegistrationID: "Registration ID",
	layout.KeyRole:           "Role",
	layout.KeyEventName:      "Event",
	layout.KeyGuardianName:   "Guardian Name",
	layout.KeyDateOfBirth:    "Date of Birth",
	layout.KeyClass:          "Class",
	layout.KeySchoolID:       "School ID",
	layout.KeyJobTitle:       "Job Title",
	layout.KeyValidUntil:     "Valid Until",
}

// DefaultLabel returns the static caption for an element key. Keys outside
// the table (custom elements without a saved label) caption as themselves.
func DefaultLabel(key string) string {
	if l, ok := defaultLabels[key]; ok {
		return l
	}
	return key
}

// Label returns the effective label for an element: the custom label when
// set, else the static default.
func Label(key string, customLabels map[string]string) string {
	if customLabels != nil {
		if l, ok := customLabels[key]; ok && l != "" {
			return l
		}
	}
	return DefaultLabel(key)
}

// Resolve returns the display value for one element of one record. Media
// elements (photo, QR) are painted rather than looked up and resolve to "";
// check layout.IsMediaKey before treating the result as text.
//
// Lookup order: exact match against the record's extras, then a
// case-insensitive scan, then the label itself as a visible placeholder. The
// placeholder is deliberate — an empty template still reads "Company" where
// the company goes. Resolve is pure: the same layout is replayed across every
// record in a collection, so it must never mutate its inputs.
func Resolve(elementKey string, customLabels map[string]string, a *models.Attendee) string {
	if layout.IsMediaKey(elementKey) {
		return ""
	}
	label := Label(elementKey, customLabels)
	if a == nil {
		return label
	}
	if v, ok := a.Extras[label]; ok {
		return v
	}
	// Case-insensitive pass over sorted keys: map order is random, and two
	// calls with identical inputs must return the same value.
	keys := make([]string, 0, len(a.Extras))
	for k := range a.Extras {
		if strings.EqualFold(k, label) {
			keys = append(keys, k)
		}
	}
	if len(keys) > 0 {
		sort.Strings(keys)
		return a.Extras[keys[0]]
	}
	return label
}

package binding

import (
	"regexp"
	"strings"

	"github.com/badgeforge/backend/internal/models"
)

// DefaultFileStem is used when a filename pattern expands to nothing usable.
const DefaultFileStem = "badge"

var (
	placeholderRe = regexp.MustCompile(`(?i)\{(name|company|registrationid|schoolid|passtype|role)\}`)
	illegalRe     = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// ExpandFilename expands a filename pattern against a record. Placeholders
// (case-insensitive): {name}, {company}, {registrationId}, {schoolId},
// {passType}, {role}. Illegal filesystem characters are stripped and
// whitespace runs collapse to single underscores. An empty result falls back
// to DefaultFileStem.
func ExpandFilename(pattern string, a *models.Attendee) string {
	out := placeholderRe.ReplaceAllStringFunc(pattern, func(m string) string {
		if a == nil {
			return ""
		}
		switch strings.ToLower(strings.Trim(m, "{}")) {
		case "name":
			return a.Name
		case "company":
			return a.Company
		case "registrationid":
			return a.RegistrationID
		case "schoolid":
			return a.SchoolID
		case "passtype":
			return a.PassType
		case "role":
			return a.Role
		}
		return ""
	})
	out = illegalRe.ReplaceAllString(out, "")
	out = whitespaceRe.ReplaceAllString(strings.TrimSpace(out), "_")
	if out == "" || strings.Trim(out, "_") == "" {
		return DefaultFileStem
	}
	return out
}

// Package schema turns raw tabular text into normalized attendee records.
//
// The column mapping comes from an external classifier (an LLM endpoint) with
// a deterministic fixed-column fallback, so an import never hard-fails on a
// third-party dependency.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AbsentColumn marks a known field with no source column.
const AbsentColumn = -1

// ExtraColumn binds a user-facing label to a source column index.
type ExtraColumn struct {
	Label string `json:"label"`
	Index int    `json:"index"`
}

// ColumnMapping maps known fields to zero-based column indices. AbsentColumn
// means the field has no source column. Indices out of range for a given data
// row are treated as absent, never as an error.
type ColumnMapping struct {
	Name           int `json:"name"`
	Company        int `json:"company"`
	PassType       int `json:"passType"`
	RegistrationID int `json:"registrationId"`
	Role           int `json:"role"`
	EventName      int `json:"eventName"`
	EventDates     int `json:"eventDates"`
	Sponsor        int `json:"sponsor"`
	GuardianName   int `json:"guardianName"`
	DateOfBirth    int `json:"dateOfBirth"`
	Class          int `json:"class"`
	SchoolID       int `json:"schoolId"`
	JobTitle       int `json:"jobTitle"`
	ValidFrom      int `json:"validFrom"`
	ValidUntil     int `json:"validUntil"`

	Tracks []int         `json:"tracks"`
	Extras []ExtraColumn `json:"extras"`
}

// NewColumnMapping returns a mapping with every known field absent.
func NewColumnMapping() ColumnMapping {
	return ColumnMapping{
		Name:           AbsentColumn,
		Company:        AbsentColumn,
		PassType:       AbsentColumn,
		RegistrationID: AbsentColumn,
		Role:           AbsentColumn,
		EventName:      AbsentColumn,
		EventDates:     AbsentColumn,
		Sponsor:        AbsentColumn,
		GuardianName:   AbsentColumn,
		DateOfBirth:    AbsentColumn,
		Class:          AbsentColumn,
		SchoolID:       AbsentColumn,
		JobTitle:       AbsentColumn,
		ValidFrom:      AbsentColumn,
		ValidUntil:     AbsentColumn,
	}
}

// ParseColumnMapping parses classifier output into a mapping. The body may be
// wrapped in prose or markdown code fences; the outermost {...} span is
// located before unmarshaling. Fields the response omits stay absent.
func ParseColumnMapping(body string) (ColumnMapping, error) {
	m := NewColumnMapping()
	raw, ok := extractJSON(body)
	if !ok {
		return m, fmt.Errorf("schema: no JSON object in classifier response")
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return m, fmt.Errorf("schema: decode column mapping: %w", err)
	}
	return m, nil
}

// extractJSON strips leading/trailing code-fence markers and returns the
// outermost brace-delimited span.
func extractJSON(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// fieldAt returns the row value at idx, or "" when the index is absent or out
// of range for this row.
func fieldAt(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return strings.TrimSpace(cols[idx])
}

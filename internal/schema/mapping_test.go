package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumnMappingPlain(t *testing.T) {
	m, err := ParseColumnMapping(`{"name": 0, "company": 2, "tracks": [4, 5]}`)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Name)
	assert.Equal(t, 2, m.Company)
	assert.Equal(t, []int{4, 5}, m.Tracks)
	// Omitted fields stay absent, not zero.
	assert.Equal(t, AbsentColumn, m.Role)
	assert.Equal(t, AbsentColumn, m.RegistrationID)
}

func TestParseColumnMappingFenced(t *testing.T) {
	body := "```json\n{\"name\": 1, \"role\": 3}\n```"
	m, err := ParseColumnMapping(body)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Name)
	assert.Equal(t, 3, m.Role)
}

func TestParseColumnMappingProseWrapped(t *testing.T) {
	body := "Here is the mapping you asked for:\n{\"name\": 0, \"extras\": [{\"label\": \"Diet\", \"index\": 4}]}\nLet me know if you need anything else."
	m, err := ParseColumnMapping(body)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Name)
	require.Len(t, m.Extras, 1)
	assert.Equal(t, ExtraColumn{Label: "Diet", Index: 4}, m.Extras[0])
}

func TestParseColumnMappingNoJSON(t *testing.T) {
	_, err := ParseColumnMapping("sorry, I can't help with that")
	assert.Error(t, err)
}

func TestParseColumnMappingInvalidJSON(t *testing.T) {
	_, err := ParseColumnMapping(`{"name": zero}`)
	assert.Error(t, err)
}

func TestFieldAt(t *testing.T) {
	cols := []string{" a ", "b", ""}
	assert.Equal(t, "a", fieldAt(cols, 0))
	assert.Equal(t, "", fieldAt(cols, 2))
	assert.Equal(t, "", fieldAt(cols, AbsentColumn))
	assert.Equal(t, "", fieldAt(cols, 7))
}

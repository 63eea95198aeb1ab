package schema

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badgeforge/backend/internal/models"
)

// stubClassifier returns a canned mapping or error.
type stubClassifier struct {
	mapping ColumnMapping
	err     error
	got     *MappingRequest
}

func (s *stubClassifier) MapColumns(_ context.Context, req MappingRequest) (ColumnMapping, error) {
	s.got = &req
	if s.err != nil {
		return ColumnMapping{}, s.err
	}
	return s.mapping, nil
}

func conferenceMapping() ColumnMapping {
	m := NewColumnMapping()
	m.Name = 0
	m.Company = 1
	m.Role = 2
	return m
}

func TestInferEndToEnd(t *testing.T) {
	stub := &stubClassifier{mapping: conferenceMapping()}
	imp := NewImporter(stub, nil)

	raw := "Name,Org,Role\nAda,ACME,Speaker\nBob,,Organizer"
	records, archetype, err := imp.Infer(context.Background(), raw, models.ArchetypeConference, nil)
	require.NoError(t, err)

	assert.Equal(t, models.ArchetypeConference, archetype)
	require.Len(t, records, 2)

	ada := records[0]
	assert.Equal(t, "Ada", ada.Name)
	assert.Equal(t, "ACME", ada.Company)
	assert.Equal(t, "Speaker", ada.Role)
	assert.Equal(t, 0, ada.RowIndex)
	assert.Equal(t, map[string]string{"Name": "Ada", "Org": "ACME", "Role": "Speaker"}, ada.Extras)

	bob := records[1]
	assert.Equal(t, "Bob", bob.Name)
	assert.Empty(t, bob.Company)
	assert.Equal(t, "Organizer", bob.Role)
	assert.Equal(t, 1, bob.RowIndex)
	// Empty source cells never enter the extras bag.
	assert.Equal(t, map[string]string{"Name": "Bob", "Role": "Organizer"}, bob.Extras)
}

func TestInferAutoRegistrationIDs(t *testing.T) {
	stub := &stubClassifier{mapping: conferenceMapping()}
	imp := NewImporter(stub, nil)

	raw := "Name,Org,Role\nAda,ACME,Speaker\nBob,,Organizer"
	records, _, err := imp.Infer(context.Background(), raw, "", nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "AUTO_1", records[0].RegistrationID)
	assert.Equal(t, "AUTO_2", records[1].RegistrationID)
}

func TestInferSkipsShortAndBlankRows(t *testing.T) {
	stub := &stubClassifier{mapping: conferenceMapping()}
	imp := NewImporter(stub, nil)

	raw := "Name,Org,Role\nAda,ACME,Speaker\n\nshort,row\nBob,,Organizer\n"
	records, _, err := imp.Infer(context.Background(), raw, models.ArchetypeConference, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Ada", records[0].Name)
	assert.Equal(t, "Bob", records[1].Name)
	// Row indexes stay dense after dropped lines.
	assert.Equal(t, 0, records[0].RowIndex)
	assert.Equal(t, 1, records[1].RowIndex)
}

func TestInferTabDelimited(t *testing.T) {
	stub := &stubClassifier{mapping: conferenceMapping()}
	imp := NewImporter(stub, nil)

	raw := "Name\tOrg, Inc\tRole\nAda\tACME, Inc\tSpeaker"
	records, _, err := imp.Infer(context.Background(), raw, models.ArchetypeConference, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	// Any tab anywhere selects tab as the delimiter; commas stay data.
	assert.Equal(t, "ACME, Inc", records[0].Company)
	require.NotNil(t, stub.got)
	assert.Equal(t, "\t", stub.got.Delimiter)
}

func TestInferCRLFAndLeadingBlankLines(t *testing.T) {
	stub := &stubClassifier{mapping: conferenceMapping()}
	imp := NewImporter(stub, nil)

	raw := "\r\n\r\nName,Org,Role\r\nAda,ACME,Speaker\r\n"
	records, _, err := imp.Infer(context.Background(), raw, models.ArchetypeConference, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ada", records[0].Name)
}

func TestInferEmptyInput(t *testing.T) {
	imp := NewImporter(nil, nil)
	records, archetype, err := imp.Infer(context.Background(), "  \n\n ", "", nil)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, models.ArchetypeConference, archetype)
}

func TestInferClassifierFailureFallsBack(t *testing.T) {
	stub := &stubClassifier{err: fmt.Errorf("provider down")}
	imp := NewImporter(stub, nil)

	// Fixed-column shape: serial, regId, name, company, pass columns.
	raw := "Badge Export v2\nSl,Reg ID,Name,Company,Pass\n1,R-001,Ada,ACME,Speaker Pass\n2,,Bob,Initech,Day Pass"
	records, _, err := imp.Infer(context.Background(), raw, models.ArchetypeConference, nil)
	require.NoError(t, err, "classifier failure must never surface as an import error")
	require.Len(t, records, 2)

	assert.Equal(t, "R-001", records[0].RegistrationID)
	assert.Equal(t, "Ada", records[0].Name)
	assert.Equal(t, "ACME", records[0].Company)
	assert.Equal(t, "Speaker", records[0].Role)

	assert.Equal(t, "AUTO_2", records[1].RegistrationID)
	assert.Equal(t, "Bob", records[1].Name)
	assert.Empty(t, records[1].Role)

	// Extras still keyed by the raw header text.
	assert.Equal(t, "ACME", records[0].Extras["Company"])
	assert.Equal(t, "Speaker Pass", records[0].Extras["Pass"])
}

func TestInferNilClassifierUsesFallback(t *testing.T) {
	imp := NewImporter(nil, nil)
	raw := "Sl,Reg ID,Name,Company\n1,R-9,Ada,ACME"
	records, _, err := imp.Infer(context.Background(), raw, models.ArchetypeConference, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ada", records[0].Name)
}

func TestFixedColumnFallbackNoHeaderMarker(t *testing.T) {
	records := parseFixedColumns([]string{"1,R-1,Ada", "2,R-2,Bob"}, ",")
	assert.Empty(t, records, "no row containing a name cell means no data")
}

func TestFixedColumnOrganizerRole(t *testing.T) {
	lines := []string{"Sl,Reg,Name,Company,Type", "1,R-1,Ada,ACME,Event Organizer"}
	records := parseFixedColumns(lines, ",")
	require.Len(t, records, 1)
	assert.Equal(t, "Organizer", records[0].Role)
}

func TestClassifyArchetype(t *testing.T) {
	base := NewColumnMapping()

	// Explicit hint always wins.
	assert.Equal(t, models.ArchetypeSchool,
		classifyArchetype(base, []models.Attendee{{Company: "ACME"}}, models.ArchetypeSchool))

	// Guardian/class/DOB columns signal school.
	m := NewColumnMapping()
	m.GuardianName = 3
	assert.Equal(t, models.ArchetypeSchool, classifyArchetype(m, nil, ""))

	// "student" in pass type or role signals school.
	assert.Equal(t, models.ArchetypeSchool,
		classifyArchetype(base, []models.Attendee{{PassType: "Student Pass"}}, ""))

	// A real company signals corporate; "self" does not.
	assert.Equal(t, models.ArchetypeCorporate,
		classifyArchetype(base, []models.Attendee{{Company: "Initech"}}, ""))
	assert.Equal(t, models.ArchetypeConference,
		classifyArchetype(base, []models.Attendee{{Company: "Self"}}, ""))

	assert.Equal(t, models.ArchetypeConference, classifyArchetype(base, nil, ""))
}

func TestInferAppliesArchetypeToRecords(t *testing.T) {
	stub := &stubClassifier{mapping: conferenceMapping()}
	imp := NewImporter(stub, nil)

	raw := "Name,Org,Role\nAda,ACME,Speaker"
	records, archetype, err := imp.Infer(context.Background(), raw, "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ArchetypeCorporate, archetype)
	require.Len(t, records, 1)
	assert.Equal(t, models.ArchetypeCorporate, records[0].Archetype)
}

func TestInferPassesHintsToClassifier(t *testing.T) {
	stub := &stubClassifier{mapping: conferenceMapping()}
	imp := NewImporter(stub, nil)

	hints := map[string]string{"Org": "company"}
	raw := "Name,Org,Role\nAda,ACME,Speaker\nBob,Initech,Organizer\nCarol,Hooli,Attendee"
	_, _, err := imp.Infer(context.Background(), raw, models.ArchetypeCorporate, hints)
	require.NoError(t, err)

	require.NotNil(t, stub.got)
	assert.Equal(t, "Name,Org,Role", stub.got.HeaderLine)
	assert.Len(t, stub.got.SampleLines, 2, "at most two sample rows go to the model")
	assert.Equal(t, models.ArchetypeCorporate, stub.got.ArchetypeHint)
	assert.Equal(t, hints, stub.got.LabelHints)
}

func TestInferMappedExtras(t *testing.T) {
	m := conferenceMapping()
	m.Extras = []ExtraColumn{{Label: "Dietary Preference", Index: 3}}
	stub := &stubClassifier{mapping: m}
	imp := NewImporter(stub, nil)

	raw := "Name,Org,Role,Diet\nAda,ACME,Speaker,vegan"
	records, _, err := imp.Infer(context.Background(), raw, models.ArchetypeConference, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	// Both the raw header key and the classifier's label land in extras.
	assert.Equal(t, "vegan", records[0].Extras["Diet"])
	assert.Equal(t, "vegan", records[0].Extras["Dietary Preference"])
}

func TestInferTracks(t *testing.T) {
	m := conferenceMapping()
	m.Tracks = []int{3, 4}
	stub := &stubClassifier{mapping: m}
	imp := NewImporter(stub, nil)

	raw := "Name,Org,Role,Track1,Track2\nAda,ACME,Speaker,AI,\nBob,Initech,Attendee,Name,Cloud"
	records, _, err := imp.Infer(context.Background(), raw, models.ArchetypeConference, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"AI"}, records[0].Tracks)
	// The literal header echo "Name" is dropped from tracks.
	assert.Equal(t, []string{"Cloud"}, records[1].Tracks)
}

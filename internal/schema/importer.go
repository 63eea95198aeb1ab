package schema

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/badgeforge/backend/internal/models"
)

// Rows with fewer columns than this are section separators or noise, not data.
const minDataColumns = 3

// Importer turns raw tabular text into attendee records using a classifier
// for the column mapping, with a fixed-column fallback when the classifier is
// unavailable or returns garbage. Import must not be blocked by a third-party
// dependency, so classifier failure is recovered locally and never surfaced
// as a hard error.
type Importer struct {
	classifier Classifier
	logger     *zap.Logger
}

// NewImporter creates an importer. classifier may be nil, in which case every
// import takes the fallback path.
func NewImporter(classifier Classifier, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{classifier: classifier, logger: logger}
}

// Infer parses rawText into attendee records. The first non-empty line is the
// header; the delimiter is tab if any line contains one, else comma. Output
// order matches source row order — bulk photo matching binds images by
// positional index. An explicit archetypeHint always wins over
// auto-classification.
func (i *Importer) Infer(ctx context.Context, rawText string, archetypeHint models.Archetype, labelHints map[string]string) ([]models.Attendee, models.Archetype, error) {
	lines := splitLines(rawText)
	headerIdx := firstNonEmpty(lines)
	if headerIdx < 0 {
		return nil, fallbackArchetype(archetypeHint), nil
	}
	delim := detectDelimiter(lines)
	header := lines[headerIdx]
	dataLines := lines[headerIdx+1:]

	mapping, err := i.mapColumns(ctx, header, dataLines, delim, archetypeHint, labelHints)
	if err != nil {
		i.logger.Info("column classifier unavailable, using fixed-column fallback", zap.Error(err))
		records := parseFixedColumns(lines, delim)
		return records, classifyArchetype(NewColumnMapping(), records, archetypeHint), nil
	}

	headerCols := strings.Split(header, delim)
	var out []models.Attendee
	rowNum := 0
	for _, line := range dataLines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rowNum++
		cols := strings.Split(line, delim)
		if len(cols) < minDataColumns {
			continue
		}
		a := buildRecord(cols, headerCols, mapping, rowNum)
		a.RowIndex = len(out)
		out = append(out, a)
	}

	archetype := classifyArchetype(mapping, out, archetypeHint)
	for idx := range out {
		out[idx].Archetype = archetype
	}
	return out, archetype, nil
}

func (i *Importer) mapColumns(ctx context.Context, header string, dataLines []string, delim string, hint models.Archetype, labelHints map[string]string) (ColumnMapping, error) {
	if i.classifier == nil {
		return ColumnMapping{}, fmt.Errorf("schema: no classifier configured")
	}
	var samples []string
	for _, l := range dataLines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		samples = append(samples, l)
		if len(samples) == 2 {
			break
		}
	}
	return i.classifier.MapColumns(ctx, MappingRequest{
		HeaderLine:    header,
		SampleLines:   samples,
		Delimiter:     delim,
		ArchetypeHint: hint,
		LabelHints:    labelHints,
	})
}

// buildRecord resolves every known field through the mapping, fabricates a
// registration id when the source had none, collects tracks, and writes every
// non-empty header column into extras keyed by its raw header text. The
// extras redundancy is intentional: label resolution must work even when an
// element is renamed to a column the classifier missed.
func buildRecord(cols, headerCols []string, m ColumnMapping, rowNum int) models.Attendee {
	a := models.Attendee{
		Name:           fieldAt(cols, m.Name),
		Company:        fieldAt(cols, m.Company),
		PassType:       fieldAt(cols, m.PassType),
		RegistrationID: fieldAt(cols, m.RegistrationID),
		Role:           fieldAt(cols, m.Role),
		EventName:      fieldAt(cols, m.EventName),
		EventDates:     fieldAt(cols, m.EventDates),
		Sponsor:        fieldAt(cols, m.Sponsor),
		GuardianName:   fieldAt(cols, m.GuardianName),
		DateOfBirth:    fieldAt(cols, m.DateOfBirth),
		Class:          fieldAt(cols, m.Class),
		SchoolID:       fieldAt(cols, m.SchoolID),
		JobTitle:       fieldAt(cols, m.JobTitle),
		ValidFrom:      fieldAt(cols, m.ValidFrom),
		ValidUntil:     fieldAt(cols, m.ValidUntil),
		Extras:         map[string]string{},
	}
	if a.RegistrationID == "" {
		a.RegistrationID = fmt.Sprintf("AUTO_%d", rowNum)
	}

	for _, idx := range m.Tracks {
		v := fieldAt(cols, idx)
		// A classifier occasionally feeds the header row back as data;
		// a track value equal to the literal header token is dropped.
		if v == "" || strings.EqualFold(v, "name") {
			continue
		}
		a.Tracks = append(a.Tracks, v)
	}

	for idx, h := range headerCols {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if v := fieldAt(cols, idx); v != "" {
			a.Extras[h] = v
		}
	}
	for _, ec := range m.Extras {
		if ec.Label == "" {
			continue
		}
		if v := fieldAt(cols, ec.Index); v != "" {
			a.Extras[ec.Label] = v
		}
	}
	return a
}

// parseFixedColumns is the no-classifier path: assume columns
// [serial, registrationId, name, company, ...passData], find the literal
// header row by its "name" marker cell, skip everything before it, and derive
// role by substring match on the trailing columns. Unparseable lines are
// dropped silently — this path never fails.
func parseFixedColumns(lines []string, delim string) []models.Attendee {
	headerIdx := -1
	var headerCols []string
	for idx, line := range lines {
		cols := strings.Split(line, delim)
		for _, c := range cols {
			if strings.EqualFold(strings.TrimSpace(c), "name") {
				headerIdx = idx
				headerCols = cols
				break
			}
		}
		if headerIdx >= 0 {
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	var out []models.Attendee
	rowNum := 0
	for _, line := range lines[headerIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rowNum++
		cols := strings.Split(line, delim)
		if len(cols) < minDataColumns {
			continue
		}
		a := models.Attendee{
			RegistrationID: fieldAt(cols, 1),
			Name:           fieldAt(cols, 2),
			Company:        fieldAt(cols, 3),
			Extras:         map[string]string{},
		}
		if a.RegistrationID == "" {
			a.RegistrationID = fmt.Sprintf("AUTO_%d", rowNum)
		}
		for idx := 4; idx < len(cols); idx++ {
			v := strings.ToLower(cols[idx])
			if strings.Contains(v, "speaker") {
				a.Role = "Speaker"
			} else if strings.Contains(v, "organizer") {
				a.Role = "Organizer"
			}
		}
		for idx, h := range headerCols {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}
			if v := fieldAt(cols, idx); v != "" {
				a.Extras[h] = v
			}
		}
		a.RowIndex = len(out)
		out = append(out, a)
	}
	return out
}

// classifyArchetype picks the archetype when the caller didn't. Student
// signals win over corporate signals; plain records default to conference.
func classifyArchetype(m ColumnMapping, records []models.Attendee, hint models.Archetype) models.Archetype {
	if hint != "" {
		return hint
	}
	if m.GuardianName != AbsentColumn || m.Class != AbsentColumn || m.DateOfBirth != AbsentColumn {
		return models.ArchetypeSchool
	}
	for _, a := range records {
		v := strings.ToLower(a.PassType + " " + a.Role)
		if strings.Contains(v, "student") {
			return models.ArchetypeSchool
		}
	}
	for _, a := range records {
		if a.Company != "" && !strings.EqualFold(a.Company, "self") {
			return models.ArchetypeCorporate
		}
	}
	return models.ArchetypeConference
}

func fallbackArchetype(hint models.Archetype) models.Archetype {
	if hint != "" {
		return hint
	}
	return models.ArchetypeConference
}

func splitLines(s string) []string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	return lines
}

func firstNonEmpty(lines []string) int {
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			return i
		}
	}
	return -1
}

func detectDelimiter(lines []string) string {
	for _, l := range lines {
		if strings.Contains(l, "\t") {
			return "\t"
		}
	}
	return ","
}

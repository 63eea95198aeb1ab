package attendees

import (
	"regexp"
	"strconv"
)

var digitRunRe = regexp.MustCompile(`\d+`)

// PhotoBinding pairs an uploaded file (by position in the upload batch) with
// the attendee row it resolved to.
type PhotoBinding struct {
	FileIndex int
	RowIndex  int
}

// MatchPhotos maps uploaded filenames onto attendee rows. The first run of
// decimal digits in a filename is read as a zero-based index into the current
// record list. Files with no digits, or with an index out of range, count as
// failures; callers report the total, not per-file errors.
func MatchPhotos(filenames []string, recordCount int) (bindings []PhotoBinding, failed int) {
	for i, name := range filenames {
		m := digitRunRe.FindString(name)
		if m == "" {
			failed++
			continue
		}
		idx, err := strconv.Atoi(m)
		if err != nil || idx >= recordCount {
			failed++
			continue
		}
		bindings = append(bindings, PhotoBinding{FileIndex: i, RowIndex: idx})
	}
	return bindings, failed
}

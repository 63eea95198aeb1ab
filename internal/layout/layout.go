// Package layout holds the badge layout model: per-element position,
// visibility and sizing state, plus the editing session that mutates it.
//
// A Layout maps element keys to positions. Absence of a key means the element
// was deleted and must never render; Visible=false means temporarily hidden
// and togglable back. Renderers must check both.
package layout

import (
	"fmt"
	"strings"
)

// Reserved element keys present in the built-in default layouts.
const (
	KeyName           = "name"
	KeyCompany        = "company"
	KeyPassType       = "passType"
	KeyRegistrationID = "registrationId"
	KeyRole           = "role"
	KeyEventName      = "eventName"
	KeyGuardianName   = "guardianName"
	KeyDateOfBirth    = "dateOfBirth"
	KeyClass          = "class"
	KeySchoolID       = "schoolId"
	KeyJobTitle       = "jobTitle"
	KeyValidUntil     = "validUntil"
	KeyImage          = "image"
	KeyQRCode         = "qrCode"
)

// Prefixes for user-added elements. Keys are generated from monotonic
// counters so a freed index is never reused within a session.
const (
	customTextPrefix  = "customText"
	customPhotoPrefix = "customPhoto"
)

// ElementPosition is the visual state of one element. X and Y are percentage
// coordinates (0–100) relative to the canvas top-left. Width applies to
// photo/QR elements, FontSize to text elements.
type ElementPosition struct {
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Visible   bool     `json:"visible"`
	Width     *float64 `json:"width,omitempty"`
	FontSize  *int     `json:"fontSize,omitempty"`
	TextAlign string   `json:"textAlign,omitempty"`
}

// Layout maps element key to position state.
type Layout map[string]ElementPosition

// Clone returns a deep copy. Pointer-valued fields are copied so editing the
// clone never writes through to the original.
func (l Layout) Clone() Layout {
	out := make(Layout, len(l))
	for k, p := range l {
		if p.Width != nil {
			w := *p.Width
			p.Width = &w
		}
		if p.FontSize != nil {
			fs := *p.FontSize
			p.FontSize = &fs
		}
		out[k] = p
	}
	return out
}

// IsMediaKey reports whether key denotes a photo or QR placeholder. These
// elements are painted, not resolved to text.
func IsMediaKey(key string) bool {
	return key == KeyImage || key == KeyQRCode || strings.HasPrefix(key, customPhotoPrefix)
}

// IsCustomKey reports whether key was user-added (customText{N}/customPhoto{N}).
func IsCustomKey(key string) bool {
	return strings.HasPrefix(key, customTextPrefix) || strings.HasPrefix(key, customPhotoPrefix)
}

var (
	// ErrUnknownElement is returned for operations on a key the layout has no entry for.
	ErrUnknownElement = fmt.Errorf("layout: unknown element")
	// ErrNotTextElement is returned when a text-only mutation targets a media element.
	ErrNotTextElement = fmt.Errorf("layout: not a text element")
	// ErrNotMediaElement is returned when a media-only mutation targets a text element.
	ErrNotMediaElement = fmt.Errorf("layout: not a media element")
)

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

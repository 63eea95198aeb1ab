package layout

import (
	"fmt"
	"math"
)

// Drag bounds and grid. Candidate positions are clamped to [MinPos, MaxPos]
// on both axes before snapping to the nearest even percentage point.
const (
	MinPos   = 5.0
	MaxPos   = 95.0
	SnapStep = 2.0
)

// ClampSnap clamps v to the printable band and snaps it to the nearest even
// integer percentage. Clamp is applied before snap.
func ClampSnap(v float64) float64 {
	if v < MinPos {
		v = MinPos
	}
	if v > MaxPos {
		v = MaxPos
	}
	return math.Round(v/SnapStep) * SnapStep
}

// Editor is one single-user editing session over a layout and its custom
// labels. Mutations are last-write-wins per element key. Custom-element keys
// come from monotonic per-kind counters stored on the session, never from
// scanning existing keys.
type Editor struct {
	Layout       Layout
	CustomLabels map[string]string

	textCount  int
	photoCount int

	dragKey string
	dragPos ElementPosition
}

// NewEditor starts a session over the given layout and labels. Nil inputs
// get empty maps.
func NewEditor(l Layout, labels map[string]string) *Editor {
	if l == nil {
		l = Layout{}
	}
	if labels == nil {
		labels = map[string]string{}
	}
	return &Editor{Layout: l, CustomLabels: labels}
}

// Dragging returns the key currently being dragged, or "" when idle.
func (e *Editor) Dragging() string { return e.dragKey }

// StartDrag transitions Idle → Dragging(key). The candidate position starts
// at the element's committed position.
func (e *Editor) StartDrag(key string) error {
	pos, ok := e.Layout[key]
	if !ok {
		return fmt.Errorf("start drag %q: %w", key, ErrUnknownElement)
	}
	e.dragKey = key
	e.dragPos = pos
	return nil
}

// DragTo recomputes the candidate position from the raw pointer coordinates.
// The candidate is clamped and snapped on every move so the preview matches
// what EndDrag will commit.
func (e *Editor) DragTo(x, y float64) {
	if e.dragKey == "" {
		return
	}
	e.dragPos.X = ClampSnap(x)
	e.dragPos.Y = ClampSnap(y)
}

// EndDrag commits the last candidate position and returns to Idle.
func (e *Editor) EndDrag() {
	if e.dragKey == "" {
		return
	}
	e.Layout[e.dragKey] = e.dragPos
	e.dragKey = ""
}

// SetVisible toggles an element without removing it from the layout. A hidden
// element keeps its map entry, which is what distinguishes it from a deleted one.
func (e *Editor) SetVisible(key string, visible bool) error {
	pos, ok := e.Layout[key]
	if !ok {
		return fmt.Errorf("set visible %q: %w", key, ErrUnknownElement)
	}
	pos.Visible = visible
	e.Layout[key] = pos
	return nil
}

// SetFontSize sets the font size of a text element.
func (e *Editor) SetFontSize(key string, px int) error {
	pos, ok := e.Layout[key]
	if !ok {
		return fmt.Errorf("set font size %q: %w", key, ErrUnknownElement)
	}
	if IsMediaKey(key) {
		return fmt.Errorf("set font size %q: %w", key, ErrNotTextElement)
	}
	pos.FontSize = ptrInt(px)
	e.Layout[key] = pos
	return nil
}

// SetWidth sets the width percentage of a photo or QR element.
func (e *Editor) SetWidth(key string, pct float64) error {
	pos, ok := e.Layout[key]
	if !ok {
		return fmt.Errorf("set width %q: %w", key, ErrUnknownElement)
	}
	if !IsMediaKey(key) {
		return fmt.Errorf("set width %q: %w", key, ErrNotMediaElement)
	}
	pos.Width = ptrFloat(pct)
	e.Layout[key] = pos
	return nil
}

// AddText appends a custom text element with sane defaults and returns its key.
func (e *Editor) AddText() string {
	e.textCount++
	key := fmt.Sprintf("%s%d", customTextPrefix, e.textCount)
	e.Layout[key] = ElementPosition{X: 50, Y: 50, Visible: true, FontSize: ptrInt(14), TextAlign: "center"}
	e.CustomLabels[key] = fmt.Sprintf("Custom Text %d", e.textCount)
	return key
}

// AddPhoto appends a custom photo element with sane defaults and returns its key.
func (e *Editor) AddPhoto() string {
	e.photoCount++
	key := fmt.Sprintf("%s%d", customPhotoPrefix, e.photoCount)
	e.Layout[key] = ElementPosition{X: 50, Y: 50, Visible: true, Width: ptrFloat(24)}
	return key
}

// RemoveElement deletes an element entirely. The label is cleaned up first
// and the layout entry removed last, so a crash mid-cascade still leaves the
// element unrenderable.
func (e *Editor) RemoveElement(key string) {
	if e.dragKey == key {
		e.dragKey = ""
	}
	delete(e.CustomLabels, key)
	delete(e.Layout, key)
}

// ResetToDefault replaces the layout with the archetype's built-in default
// and clears custom labels and element counters. Destructive; callers are
// expected to confirm first.
func (e *Editor) ResetToDefault(archetype string) {
	e.Layout = Default(archetype)
	e.CustomLabels = map[string]string{}
	e.textCount = 0
	e.photoCount = 0
	e.dragKey = ""
}

package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampSnap(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{50, 50},
		{51, 52},   // rounds to the nearest even point
		{49, 50},   // half-steps round away from zero
		{3, 6},     // clamped to 5, then snapped up
		{97, 96},   // clamped to 95, then snapped down
		{-10, 6},   // far out of range clamps to the minimum first
		{110, 96},  // far out of range clamps to the maximum first
		{5, 6},     // lower bound itself snaps to 6
		{95, 96},   // upper bound itself snaps to 96
		{50.9, 50}, // 50.9/2=25.45 -> 25 -> 50
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClampSnap(tc.in), "ClampSnap(%v)", tc.in)
	}
}

func TestClampSnapIdempotent(t *testing.T) {
	for v := -20.0; v <= 120; v += 0.7 {
		once := ClampSnap(v)
		assert.Equal(t, once, ClampSnap(once), "v=%v", v)
	}
}

func TestDragLifecycle(t *testing.T) {
	e := NewEditor(Default("conference"), nil)

	require.NoError(t, e.StartDrag(KeyName))
	assert.Equal(t, KeyName, e.Dragging())

	committed := e.Layout[KeyName]
	e.DragTo(3, 97)
	// Moves preview only; nothing committed yet.
	assert.Equal(t, committed, e.Layout[KeyName])

	e.DragTo(41.3, 88.8)
	e.EndDrag()
	assert.Empty(t, e.Dragging())

	got := e.Layout[KeyName]
	assert.Equal(t, 42.0, got.X)
	assert.Equal(t, 88.0, got.Y)
}

func TestDragClampsOutOfBounds(t *testing.T) {
	e := NewEditor(Default("conference"), nil)
	require.NoError(t, e.StartDrag(KeyName))
	e.DragTo(3, 97)
	e.EndDrag()

	got := e.Layout[KeyName]
	assert.Equal(t, 6.0, got.X)
	assert.Equal(t, 96.0, got.Y)
}

func TestStartDragUnknownKey(t *testing.T) {
	e := NewEditor(Default("conference"), nil)
	err := e.StartDrag("noSuchElement")
	assert.ErrorIs(t, err, ErrUnknownElement)
	assert.Empty(t, e.Dragging())
}

func TestDragToWhileIdleIsNoop(t *testing.T) {
	e := NewEditor(Default("conference"), nil)
	before := e.Layout.Clone()
	e.DragTo(10, 10)
	e.EndDrag()
	assert.Equal(t, before, e.Layout)
}

func TestHiddenIsNotDeleted(t *testing.T) {
	e := NewEditor(Default("conference"), nil)

	require.NoError(t, e.SetVisible(KeyCompany, false))
	pos, ok := e.Layout[KeyCompany]
	require.True(t, ok, "hidden element keeps its layout entry")
	assert.False(t, pos.Visible)

	require.NoError(t, e.SetVisible(KeyCompany, true))
	assert.True(t, e.Layout[KeyCompany].Visible)

	e.RemoveElement(KeyCompany)
	_, ok = e.Layout[KeyCompany]
	assert.False(t, ok, "deleted element has no layout entry")
}

func TestCustomCountersAreMonotonic(t *testing.T) {
	e := NewEditor(Default("conference"), nil)

	k1 := e.AddText()
	k2 := e.AddText()
	assert.Equal(t, "customText1", k1)
	assert.Equal(t, "customText2", k2)

	e.RemoveElement(k2)
	k3 := e.AddText()
	assert.Equal(t, "customText3", k3, "freed index is never reused")

	p1 := e.AddPhoto()
	e.RemoveElement(p1)
	p2 := e.AddPhoto()
	assert.Equal(t, "customPhoto1", p1)
	assert.Equal(t, "customPhoto2", p2)
}

func TestAddTextSetsDefaultLabel(t *testing.T) {
	e := NewEditor(Default("conference"), nil)
	key := e.AddText()
	assert.Equal(t, "Custom Text 1", e.CustomLabels[key])

	pos := e.Layout[key]
	assert.True(t, pos.Visible)
	require.NotNil(t, pos.FontSize)
	assert.Equal(t, 14, *pos.FontSize)
}

func TestRemoveElementCleansLabel(t *testing.T) {
	e := NewEditor(Default("conference"), nil)
	key := e.AddText()
	e.RemoveElement(key)
	_, ok := e.CustomLabels[key]
	assert.False(t, ok)
	_, ok = e.Layout[key]
	assert.False(t, ok)
}

func TestRemoveElementMidDrag(t *testing.T) {
	e := NewEditor(Default("conference"), nil)
	key := e.AddText()
	require.NoError(t, e.StartDrag(key))
	e.RemoveElement(key)
	assert.Empty(t, e.Dragging())

	// EndDrag after removal must not resurrect the entry.
	e.EndDrag()
	_, ok := e.Layout[key]
	assert.False(t, ok)
}

func TestSetFontSizeRejectsMedia(t *testing.T) {
	e := NewEditor(Default("conference"), nil)
	assert.ErrorIs(t, e.SetFontSize(KeyImage, 12), ErrNotTextElement)
	assert.ErrorIs(t, e.SetFontSize(KeyQRCode, 12), ErrNotTextElement)

	require.NoError(t, e.SetFontSize(KeyName, 22))
	require.NotNil(t, e.Layout[KeyName].FontSize)
	assert.Equal(t, 22, *e.Layout[KeyName].FontSize)
}

func TestSetWidthRejectsText(t *testing.T) {
	e := NewEditor(Default("conference"), nil)
	assert.ErrorIs(t, e.SetWidth(KeyName, 30), ErrNotMediaElement)

	require.NoError(t, e.SetWidth(KeyImage, 30))
	require.NotNil(t, e.Layout[KeyImage].Width)
	assert.Equal(t, 30.0, *e.Layout[KeyImage].Width)
}

func TestResetToDefault(t *testing.T) {
	e := NewEditor(Default("school"), nil)
	e.AddText()
	e.AddText()
	require.NoError(t, e.SetVisible(KeyGuardianName, false))

	e.ResetToDefault("school")
	assert.Equal(t, Default("school"), e.Layout)
	assert.Empty(t, e.CustomLabels)

	// Counters restart after reset.
	assert.Equal(t, "customText1", e.AddText())
}

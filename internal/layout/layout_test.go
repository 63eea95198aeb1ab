package layout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsDeep(t *testing.T) {
	orig := Layout{
		KeyName:  {X: 10, Y: 20, Visible: true, FontSize: ptrInt(18)},
		KeyImage: {X: 50, Y: 24, Visible: true, Width: ptrFloat(30)},
	}
	clone := orig.Clone()
	require.Equal(t, orig, clone)

	*clone[KeyName].FontSize = 99
	*clone[KeyImage].Width = 1
	assert.Equal(t, 18, *orig[KeyName].FontSize)
	assert.Equal(t, 30.0, *orig[KeyImage].Width)
}

func TestDefaultReturnsFreshCopies(t *testing.T) {
	a := Default("conference")
	b := Default("conference")
	pos := a[KeyName]
	pos.X = 1
	a[KeyName] = pos
	assert.NotEqual(t, a[KeyName], b[KeyName])

	assert.Equal(t, Default("school"), schoolDefault)
	assert.Equal(t, Default("corporate"), corporateDefault)
	// Unknown archetypes fall back to conference.
	assert.Equal(t, Default("conference"), Default("something-else"))
}

func TestLayoutJSONRoundTrip(t *testing.T) {
	l := Layout{
		"customText1": {X: 40, Y: 60, Visible: true, FontSize: ptrInt(18), TextAlign: "left"},
		KeyQRCode:     {X: 50, Y: 90, Visible: false, Width: ptrFloat(18)},
	}
	data, err := json.Marshal(l)
	require.NoError(t, err)

	var got Layout
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, l, got)

	// Wire names stay camelCase so saved templates remain readable by the UI.
	assert.Contains(t, string(data), `"fontSize":18`)
	assert.Contains(t, string(data), `"textAlign":"left"`)
	assert.Contains(t, string(data), `"visible":false`)
}

func TestIsMediaKey(t *testing.T) {
	assert.True(t, IsMediaKey(KeyImage))
	assert.True(t, IsMediaKey(KeyQRCode))
	assert.True(t, IsMediaKey("customPhoto3"))
	assert.False(t, IsMediaKey(KeyName))
	assert.False(t, IsMediaKey("customText3"))
}

func TestIsCustomKey(t *testing.T) {
	assert.True(t, IsCustomKey("customText1"))
	assert.True(t, IsCustomKey("customPhoto7"))
	assert.False(t, IsCustomKey(KeyName))
	assert.False(t, IsCustomKey(KeyImage))
}

package attendees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPhotos(t *testing.T) {
	files := []string{
		"photo_0.jpg",        // row 0
		"IMG-2.png",          // row 2
		"headshot.webp",      // no digits: failure
		"badge 7 final.jpeg", // out of range: failure
		"1_ada.png",          // row 1
	}
	bindings, failed := MatchPhotos(files, 3)
	assert.Equal(t, 2, failed)
	require.Len(t, bindings, 3)
	assert.Equal(t, PhotoBinding{FileIndex: 0, RowIndex: 0}, bindings[0])
	assert.Equal(t, PhotoBinding{FileIndex: 1, RowIndex: 2}, bindings[1])
	assert.Equal(t, PhotoBinding{FileIndex: 4, RowIndex: 1}, bindings[2])
}

func TestMatchPhotosFirstDigitRunWins(t *testing.T) {
	// Several digit runs; only the first counts.
	bindings, failed := MatchPhotos([]string{"IMG2_v10.jpg"}, 5)
	assert.Zero(t, failed)
	require.Len(t, bindings, 1)
	assert.Equal(t, 2, bindings[0].RowIndex)
}

func TestMatchPhotosStableAcrossReruns(t *testing.T) {
	files := []string{"a0.png", "b1.png", "c2.png"}
	first, _ := MatchPhotos(files, 3)
	second, _ := MatchPhotos(files, 3)
	assert.Equal(t, first, second)
}

func TestMatchPhotosEmptyCollection(t *testing.T) {
	bindings, failed := MatchPhotos([]string{"0.png"}, 0)
	assert.Empty(t, bindings)
	assert.Equal(t, 1, failed)
}

func TestMatchPhotosHugeNumber(t *testing.T) {
	bindings, failed := MatchPhotos([]string{"999999999999999999999999.png"}, 10)
	assert.Empty(t, bindings)
	assert.Equal(t, 1, failed)
}

package pdfscan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageRange(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []int
		wantErr bool
	}{
		{"empty selects all", "", nil, false},
		{"whitespace selects all", "  ", nil, false},
		{"single page", "3", []int{3}, false},
		{"simple range", "1-4", []int{1, 2, 3, 4}, false},
		{"mixed list", "1,3-5,9", []int{1, 3, 4, 5, 9}, false},
		{"spaces tolerated", " 2 , 4 - 5 ", []int{2, 4, 5}, false},
		{"reversed range", "5-2", nil, true},
		{"zero page", "0", nil, true},
		{"zero range start", "0-3", nil, true},
		{"garbage", "abc", nil, true},
		{"dangling comma", "1,", nil, true},
		{"double dash", "1-2-3", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePageRange(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseImageFilename(t *testing.T) {
	page, index, ok := parseImageFilename("page_3_image_2.png")
	require.True(t, ok)
	assert.Equal(t, 3, page)
	assert.Equal(t, 2, index)

	page, index, ok = parseImageFilename("page_12_image_1.jpg")
	require.True(t, ok)
	assert.Equal(t, 12, page)
	assert.Equal(t, 1, index)

	for _, bad := range []string{
		"page_x_image_1.png",
		"page_1_picture_1.png",
		"thumb.png",
		"page_1.png",
		"page_1_image_y.png",
	} {
		_, _, ok := parseImageFilename(bad)
		assert.False(t, ok, bad)
	}
}

func TestCollectImageFilesOrdersNumerically(t *testing.T) {
	dir := t.TempDir()
	// Lexical walk order would put page_10 before page_2.
	for _, name := range []string{
		"page_10_image_1.png",
		"page_2_image_2.png",
		"page_2_image_1.png",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	entries, err := collectImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, 2, entries[0].page)
	assert.Equal(t, 1, entries[0].index)
	assert.Equal(t, 2, entries[1].page)
	assert.Equal(t, 2, entries[1].index)
	assert.Equal(t, 10, entries[2].page)
}

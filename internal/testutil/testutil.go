// Package testutil provides deterministic image fixtures for tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// GrayBuffer returns a width*height grayscale buffer filled with a
// deterministic gradient.
func GrayBuffer(width, height int) []byte {
	buf := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf[y*width+x] = byte((x*7 + y*13) % 256)
		}
	}
	return buf
}

// GrayImage returns a gradient *image.Gray of the given size.
func GrayImage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, GrayBuffer(width, height))
	return img
}

// StripePattern returns a vertical black/white stripe image, the closest
// thing to barcode texture a synthetic fixture needs.
func StripePattern(width, height, stripe int) *image.Gray {
	if stripe < 1 {
		stripe = 1
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		v := color.Gray{Y: 255}
		if (x/stripe)%2 == 1 {
			v = color.Gray{Y: 0}
		}
		for y := 0; y < height; y++ {
			img.SetGray(x, y, v)
		}
	}
	return img
}

// EncodePNG encodes img to PNG bytes.
func EncodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// WritePNG writes img as PNG under dir and returns the file path.
func WritePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, EncodePNG(t, img), 0o600))
	return path
}

package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("scan.PNG"))
	assert.True(t, IsSupported("/tmp/label.jpeg"))
	assert.True(t, IsSupported("page.tiff"))
	assert.False(t, IsSupported("doc.pdf"))
	assert.False(t, IsSupported("noext"))
}

func TestLoadRoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 40), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, format, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())

	_, _, err = Load(bytes.NewReader([]byte("not an image")))
	require.Error(t, err)
}

func TestToGrayFromGrayImage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			g.SetGray(x, y, color.Gray{Y: uint8(10*y + x)})
		}
	}

	buf, w, h := ToGray(g)
	defer PutGray(buf)

	require.Equal(t, 4, w)
	require.Equal(t, 3, h)
	require.Len(t, buf, 12)
	assert.Equal(t, byte(0), buf[0])
	assert.Equal(t, byte(3), buf[3])
	assert.Equal(t, byte(22), buf[2*4+2])
}

func TestToGrayFromColorImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{A: 255})
	img.Set(0, 1, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	buf, w, h := ToGray(img)
	defer PutGray(buf)

	require.Equal(t, 2, w)
	require.Equal(t, 2, h)
	assert.Equal(t, byte(255), buf[0], "white stays white")
	assert.Equal(t, byte(0), buf[1], "black stays black")
	assert.Equal(t, byte(128), buf[2], "mid gray keeps its level")
	assert.Greater(t, buf[3], byte(0), "pure red lands between the extremes")
	assert.Less(t, buf[3], byte(255))
}

func TestToGrayRespectsSubImageStride(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			g.SetGray(x, y, color.Gray{Y: uint8(y*8 + x)})
		}
	}
	sub, ok := g.SubImage(image.Rect(2, 2, 6, 5)).(*image.Gray)
	require.True(t, ok)

	buf, w, h := ToGray(sub)
	defer PutGray(buf)

	require.Equal(t, 4, w)
	require.Equal(t, 3, h)
	assert.Equal(t, byte(2*8+2), buf[0])
	assert.Equal(t, byte(4*8+5), buf[2*4+3])
}

func TestFitWithin(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 100))

	same := FitWithin(img, 500)
	assert.Equal(t, 400, same.Bounds().Dx())

	disabled := FitWithin(img, 0)
	assert.Equal(t, 400, disabled.Bounds().Dx())

	small := FitWithin(img, 200)
	assert.Equal(t, 200, small.Bounds().Dx())
	assert.Equal(t, 50, small.Bounds().Dy(), "aspect ratio preserved")
}

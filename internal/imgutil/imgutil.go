// Package imgutil loads images and converts them to the single-channel
// grayscale buffers the decode engine consumes.
package imgutil

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/MeKo-Tech/barkit/internal/mempool"
)

// SupportedExtensions lists the file extensions accepted for loading.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".gif"}

// IsSupported reports whether the path has a supported image extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Load decodes an image from r. The format name is the registered decoder
// that matched ("png", "jpeg", "bmp", "tiff", "gif").
func Load(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// LoadFile opens and decodes an image file.
func LoadFile(path string) (image.Image, string, error) {
	if !IsSupported(path) {
		return nil, "", fmt.Errorf("unsupported image format: %s", filepath.Ext(path))
	}
	f, err := os.Open(path) //nolint:gosec // reading a user-provided image path is the point
	if err != nil {
		return nil, "", fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// ToGray converts img to a row-major single-channel buffer, one byte per
// pixel. The buffer comes from the pool; release it with PutGray once the
// decode call has returned.
func ToGray(img image.Image) (buf []byte, width, height int) {
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()
	buf = mempool.GetBytes(width * height)

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < height; y++ {
			src := g.Pix[y*g.Stride : y*g.Stride+width]
			copy(buf[y*width:(y+1)*width], src)
		}
		return buf, width, height
	}

	// imaging.Grayscale yields an NRGBA image with equal channels; take the
	// red channel as the luminance value.
	gray := imaging.Grayscale(img)
	for y := 0; y < height; y++ {
		rowOff := y * gray.Stride
		dstOff := y * width
		for x := 0; x < width; x++ {
			buf[dstOff+x] = gray.Pix[rowOff+x*4]
		}
	}
	return buf, width, height
}

// PutGray returns a ToGray buffer to the pool.
func PutGray(buf []byte) { mempool.PutBytes(buf) }

// FitWithin downscales img so neither side exceeds maxDim, preserving the
// aspect ratio. Images already within the bound are returned unchanged;
// maxDim <= 0 disables the bound.
func FitWithin(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

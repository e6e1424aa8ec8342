//go:build barkit_gozxing

package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"unicode/utf8"

	gozxing "github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/common"
	"github.com/makiuchi-d/gozxing/multi"

	"github.com/MeKo-Tech/barkit/internal/registry"
	"github.com/MeKo-Tech/barkit/internal/symbology"
)

// newDefaultEngine returns the gozxing-backed engine when the build tag is
// enabled. The backend covers the symbologies zxing knows; capabilities
// without a zxing counterpart (QR Micro, PDF 417 Micro, the postal codes,
// ID Document) simply never produce results here. Formatting and DPM
// settings have no effect in this backend.
func newDefaultEngine() Engine { return &gozxingEngine{} }

type gozxingEngine struct{}

func (e *gozxingEngine) Version() string { return "gozxing" }

func (e *gozxingEngine) Decode(_ context.Context, reg *registry.Registry, gray []byte, width, height int) ([]BaseResult, error) {
	lockOptions()

	img := &image.Gray{
		Pix:    gray[:width*height],
		Stride: width,
		Rect:   image.Rect(0, 0, width, height),
	}
	cropped := cropROI(img, reg.ROI())

	source := gozxing.NewLuminanceSourceFromImage(cropped)
	bitmap, err := gozxing.NewBinaryBitmap(common.NewHybridBinarizer(source))
	if err != nil {
		return nil, fmt.Errorf("binarize image: %w", err)
	}

	enabled := enabledConfigs(reg)
	hints := buildHints(reg, enabled)

	var raw []*gozxing.Result
	if reg.MaximumResults() > 1 {
		reader := multi.NewGenericMultipleBarcodeReader(gozxing.NewMultiFormatReader())
		raw, err = reader.DecodeMultiple(bitmap, hints)
	} else {
		var r *gozxing.Result
		r, err = gozxing.NewMultiFormatReader().Decode(bitmap, hints)
		if err == nil && r != nil {
			raw = []*gozxing.Result{r}
		}
	}
	if err != nil {
		var notFound gozxing.NotFoundException
		if errors.As(err, &notFound) {
			return []BaseResult{}, nil
		}
		return nil, err
	}

	out := make([]BaseResult, 0, len(raw))
	for _, r := range raw {
		bt, ok := typeFromFormat(r.GetBarcodeFormat())
		if !ok {
			continue
		}
		dt, _ := bt.DecoderType()
		cfg, ok := enabled[dt]
		if !ok || !lengthOK(cfg, r.GetText()) {
			continue
		}
		out = append(out, BaseResult{Type: bt, Text: r.GetText()})
	}
	return out, nil
}

func enabledConfigs(reg *registry.Registry) map[symbology.DecoderType]*symbology.Config {
	enabled := make(map[symbology.DecoderType]*symbology.Config)
	for _, cfg := range reg.Configs() {
		if cfg.Enabled {
			enabled[cfg.DecoderType()] = cfg
		}
	}
	return enabled
}

func buildHints(reg *registry.Registry, enabled map[symbology.DecoderType]*symbology.Config) map[gozxing.DecodeHintType]interface{} {
	hints := make(map[gozxing.DecodeHintType]interface{})

	var formats []gozxing.BarcodeFormat
	for dt := range enabled {
		if bf, ok := formatForDecoder(dt); ok {
			formats = append(formats, bf)
		}
	}
	if len(formats) > 0 {
		hints[gozxing.DecodeHintType_POSSIBLE_FORMATS] = formats
	}
	if s := reg.DecodingSpeed(); s == registry.SpeedSlow || s == registry.SpeedRigorous {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	return hints
}

func lengthOK(cfg *symbology.Config, text string) bool {
	n := utf8.RuneCountInString(text)
	if minLen := cfg.MinimumLength(); minLen > 0 && n < minLen {
		return false
	}
	if maxLen := cfg.MaximumLength(); maxLen > 0 && n > maxLen {
		return false
	}
	return true
}

func cropROI(img *image.Gray, roi registry.ROI) image.Image {
	if roi.IsFull() {
		return img
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	rect := image.Rect(
		int(float64(roi.Left)/100*w),
		int(float64(roi.Top)/100*h),
		int(math.Ceil(float64(roi.Left+roi.Width)/100*w)),
		int(math.Ceil(float64(roi.Top+roi.Height)/100*h)),
	).Intersect(b)
	if rect.Empty() {
		return img
	}
	return img.SubImage(rect)
}

func formatForDecoder(dt symbology.DecoderType) (gozxing.BarcodeFormat, bool) {
	switch dt {
	case symbology.Aztec:
		return gozxing.BarcodeFormat_AZTEC, true
	case symbology.QR:
		return gozxing.BarcodeFormat_QR_CODE, true
	case symbology.Code128:
		return gozxing.BarcodeFormat_CODE_128, true
	case symbology.Code93:
		return gozxing.BarcodeFormat_CODE_93, true
	case symbology.Code39:
		return gozxing.BarcodeFormat_CODE_39, true
	case symbology.Codabar:
		return gozxing.BarcodeFormat_CODABAR, true
	case symbology.UpcA:
		return gozxing.BarcodeFormat_UPC_A, true
	case symbology.UpcE:
		return gozxing.BarcodeFormat_UPC_E, true
	case symbology.Ean13:
		return gozxing.BarcodeFormat_EAN_13, true
	case symbology.Ean8:
		return gozxing.BarcodeFormat_EAN_8, true
	case symbology.PDF417:
		return gozxing.BarcodeFormat_PDF_417, true
	case symbology.Datamatrix:
		return gozxing.BarcodeFormat_DATA_MATRIX, true
	case symbology.Interleaved25:
		return gozxing.BarcodeFormat_ITF, true
	case symbology.Databar14:
		return gozxing.BarcodeFormat_RSS_14, true
	case symbology.DatabarExpanded:
		return gozxing.BarcodeFormat_RSS_EXPANDED, true
	case symbology.MaxiCode:
		return gozxing.BarcodeFormat_MAXICODE, true
	default:
		return 0, false
	}
}

func typeFromFormat(bf gozxing.BarcodeFormat) (symbology.BarcodeType, bool) {
	switch bf {
	case gozxing.BarcodeFormat_AZTEC:
		return symbology.TypeAztec, true
	case gozxing.BarcodeFormat_QR_CODE:
		return symbology.TypeQR, true
	case gozxing.BarcodeFormat_CODE_128:
		return symbology.TypeCode128, true
	case gozxing.BarcodeFormat_CODE_93:
		return symbology.TypeCode93, true
	case gozxing.BarcodeFormat_CODE_39:
		return symbology.TypeCode39, true
	case gozxing.BarcodeFormat_CODABAR:
		return symbology.TypeCodabar, true
	case gozxing.BarcodeFormat_UPC_A:
		return symbology.TypeUpcA, true
	case gozxing.BarcodeFormat_UPC_E:
		return symbology.TypeUpcE, true
	case gozxing.BarcodeFormat_EAN_13:
		return symbology.TypeEan13, true
	case gozxing.BarcodeFormat_EAN_8:
		return symbology.TypeEan8, true
	case gozxing.BarcodeFormat_PDF_417:
		return symbology.TypePDF417, true
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return symbology.TypeDatamatrix, true
	case gozxing.BarcodeFormat_ITF:
		return symbology.TypeInterleaved25, true
	case gozxing.BarcodeFormat_RSS_14:
		return symbology.TypeDatabar14, true
	case gozxing.BarcodeFormat_RSS_EXPANDED:
		return symbology.TypeDatabarExpanded, true
	case gozxing.BarcodeFormat_MAXICODE:
		return symbology.TypeMaxiCode, true
	default:
		return 0, false
	}
}

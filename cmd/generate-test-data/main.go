package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// sample describes one synthetic barcode image to render.
type sample struct {
	Name     string
	Dir      string
	TypeName string
	Format   gozxing.BarcodeFormat
	Content  string
	Width    int
	Height   int
}

// fixture pairs a generated image with the decode result it should produce.
type fixture struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputFile   string         `json:"input_file"`
	Expected    expectedResult `json:"expected"`
}

type expectedResult struct {
	BarcodeTypeName string `json:"barcodeTypeName"`
	TextualData     string `json:"textualData"`
}

var samples = []sample{
	{"qr", "matrix", "QR", gozxing.BarcodeFormat_QR_CODE, "https://example.com/barkit", 256, 256},
	{"aztec", "matrix", "Aztec", gozxing.BarcodeFormat_AZTEC, "barkit aztec sample", 256, 256},
	{"datamatrix", "matrix", "Data Matrix", gozxing.BarcodeFormat_DATA_MATRIX, "barkit-dm-01", 256, 256},
	{"code128", "linear", "Code 128", gozxing.BarcodeFormat_CODE_128, "BARKIT-128", 256, 96},
	{"code39", "linear", "Code 39", gozxing.BarcodeFormat_CODE_39, "CODE39 SAMPLE", 256, 96},
	{"codabar", "linear", "Codabar", gozxing.BarcodeFormat_CODABAR, "A40156B", 256, 96},
	{"ean13", "linear", "Ean-13", gozxing.BarcodeFormat_EAN_13, "4006381333931", 256, 96},
	{"ean8", "linear", "Ean-8", gozxing.BarcodeFormat_EAN_8, "96385074", 256, 96},
	{"upca", "linear", "Upc-A", gozxing.BarcodeFormat_UPC_A, "036000291452", 256, 96},
	{"itf", "linear", "Interleaved 2 of 5", gozxing.BarcodeFormat_ITF, "00012345678905", 256, 96},
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		generateImages   = flag.Bool("images", true, "Generate synthetic barcode images")
		generateFixtures = flag.Bool("fixtures", true, "Generate decode fixtures")
		outDir           = flag.String("dir", "testdata", "Output directory root")
		verbose          = flag.Bool("v", false, "Verbose output")
		help             = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate barcode test data for barkit testing.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                 # Generate all test data\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -images         # Generate only images\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -fixtures       # Generate only fixtures\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	slog.Info("Starting test data generation...")

	if *verbose {
		slog.Info("Options", "images", *generateImages, "fixtures", *generateFixtures, "dir", *outDir)
	}

	if *generateImages {
		slog.Info("Generating synthetic barcode images...")

		if err := generateBarcodeImages(*outDir); err != nil {
			slog.Error("Failed to generate barcode images", "error", err)
			os.Exit(1)
		}

		slog.Info("✓ Generated synthetic barcode images")
	}

	if *generateFixtures {
		slog.Info("Generating decode fixtures...")

		if err := generateDecodeFixtures(*outDir); err != nil {
			slog.Error("Failed to generate decode fixtures", "error", err)
			os.Exit(1)
		}

		slog.Info("✓ Generated decode fixtures")
	}

	slog.Info("Test data generation completed successfully!")
}

// generateBarcodeImages renders every sample to a PNG under root/images.
func generateBarcodeImages(root string) error {
	for _, s := range samples {
		dir := filepath.Join(root, "images", s.Dir)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create image directory: %w", err)
		}

		writer := writerFor(s.Format)
		if writer == nil {
			return fmt.Errorf("no writer for format %v", s.Format)
		}

		matrix, err := writer.Encode(s.Content, s.Format, s.Width, s.Height, nil)
		if err != nil {
			return fmt.Errorf("failed to encode %s sample: %w", s.Name, err)
		}

		path := filepath.Join(dir, s.Name+".png")
		if err := writePNG(path, matrix); err != nil {
			return fmt.Errorf("failed to save %s sample: %w", s.Name, err)
		}

		slog.Info("Wrote image", "path", path, "type", s.TypeName)
	}
	return nil
}

// generateDecodeFixtures writes expected decode results for the samples
// whose decoded text matches the encoded content byte for byte. Codabar
// and the retail codes can differ (start/stop stripping, check digits),
// so only the unambiguous samples get fixtures.
func generateDecodeFixtures(root string) error {
	fixturesDir := filepath.Join(root, "fixtures")
	if err := os.MkdirAll(fixturesDir, 0o750); err != nil {
		return fmt.Errorf("failed to create fixtures directory: %w", err)
	}

	fixtures := []fixture{
		{
			Name:        "qr_url",
			Description: "Single QR symbol holding a URL",
			InputFile:   "images/matrix/qr.png",
			Expected: expectedResult{
				BarcodeTypeName: "QR",
				TextualData:     "https://example.com/barkit",
			},
		},
		{
			Name:        "code128_label",
			Description: "Single Code 128 symbol holding an ASCII label",
			InputFile:   "images/linear/code128.png",
			Expected: expectedResult{
				BarcodeTypeName: "Code 128",
				TextualData:     "BARKIT-128",
			},
		},
		{
			Name:        "ean13_retail",
			Description: "Single EAN-13 symbol with a valid check digit",
			InputFile:   "images/linear/ean13.png",
			Expected: expectedResult{
				BarcodeTypeName: "Ean-13",
				TextualData:     "4006381333931",
			},
		},
	}

	for _, f := range fixtures {
		if err := saveFixture(f, fixturesDir); err != nil {
			return fmt.Errorf("failed to save fixture '%s': %w", f.Name, err)
		}
	}

	return nil
}

func writerFor(format gozxing.BarcodeFormat) gozxing.Writer {
	switch format {
	case gozxing.BarcodeFormat_QR_CODE:
		return qrcode.NewQRCodeWriter()
	case gozxing.BarcodeFormat_AZTEC:
		return aztec.NewAztecWriter()
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return datamatrix.NewDataMatrixWriter()
	case gozxing.BarcodeFormat_CODE_128:
		return oned.NewCode128Writer()
	case gozxing.BarcodeFormat_CODE_39:
		return oned.NewCode39Writer()
	case gozxing.BarcodeFormat_CODABAR:
		return oned.NewCodaBarWriter()
	case gozxing.BarcodeFormat_EAN_13:
		return oned.NewEAN13Writer()
	case gozxing.BarcodeFormat_EAN_8:
		return oned.NewEAN8Writer()
	case gozxing.BarcodeFormat_UPC_A:
		return oned.NewUPCAWriter()
	case gozxing.BarcodeFormat_ITF:
		return oned.NewITFWriter()
	default:
		return nil
	}
}

func writePNG(path string, matrix *gozxing.BitMatrix) error {
	file, err := os.Create(path) //nolint:gosec // G304: paths come from the sample table
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := png.Encode(file, matrix); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return file.Close()
}

func saveFixture(f fixture, dir string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	filename := filepath.Join(dir, f.Name+".json")
	return os.WriteFile(filename, data, 0o600)
}

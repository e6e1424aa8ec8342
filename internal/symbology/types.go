// Package symbology defines the barcode symbology enumerations and the
// per-symbology configuration record consumed by the decode engine.
package symbology

import "strings"

// DecoderType identifies an independently toggleable decode capability.
// Declaration order is fixed by the engine contract: the integer codes
// accepted on the caller-facing surfaces are these ordinals. Results are
// always rendered by name, never by ordinal.
type DecoderType int

const (
	Aztec DecoderType = iota
	AztecCompact
	QR
	QRMicro
	Code128
	Code93
	Code39
	Codabar
	Code11
	Msi
	UpcA
	UpcE
	UpcE1
	Ean13
	Ean8
	PDF417
	PDF417Micro
	Datamatrix
	Code25
	Interleaved25
	ITF14
	IATA25
	Matrix25
	Datalogic25
	COOP25
	Code32
	Telepen
	Dotcode
	IDDocument
	Databar14
	DatabarLimited
	DatabarExpanded
	PostalIMB
	Postnet
	Planet
	AustralianPost
	RoyalMail
	KIX
	JapanesePost
	MaxiCode

	numDecoderTypes // sentinel, keep last
)

// BarcodeType labels a decode result. It is a superset of DecoderType:
// MRZ, Picture and Signature are produced only as facets of an ID Document
// decode and cannot be enabled on their own.
type BarcodeType int

const (
	TypeAztec BarcodeType = iota
	TypeAztecCompact
	TypeQR
	TypeQRMicro
	TypeCode128
	TypeCode93
	TypeCode39
	TypeCodabar
	TypeCode11
	TypeMsi
	TypeUpcA
	TypeUpcE
	TypeUpcE1
	TypeEan13
	TypeEan8
	TypePDF417
	TypePDF417Micro
	TypeDatamatrix
	TypeCode25
	TypeInterleaved25
	TypeITF14
	TypeIATA25
	TypeMatrix25
	TypeDatalogic25
	TypeCOOP25
	TypeCode32
	TypeTelepen
	TypeDotcode
	TypeIDDocument
	TypeIDMRZ
	TypeIDPicture
	TypeIDSignature
	TypeDatabar14
	TypeDatabarLimited
	TypeDatabarExpanded
	TypePostalIMB
	TypePostnet
	TypePlanet
	TypeAustralianPost
	TypeRoyalMail
	TypeKIX
	TypeJapanesePost
	TypeMaxiCode

	numBarcodeTypes // sentinel, keep last
)

// barcodeTypeNames holds the display label for every BarcodeType. The labels
// match the engine's result vocabulary exactly and double as the TypeName of
// the corresponding configuration record.
var barcodeTypeNames = [numBarcodeTypes]string{
	TypeAztec:           "Aztec",
	TypeAztecCompact:    "Aztec Compact",
	TypeQR:              "QR",
	TypeQRMicro:         "QR Micro",
	TypeCode128:         "Code 128",
	TypeCode93:          "Code 93",
	TypeCode39:          "Code 39",
	TypeCodabar:         "Codabar",
	TypeCode11:          "Code 11",
	TypeMsi:             "MSI",
	TypeUpcA:            "Upc-A",
	TypeUpcE:            "Upc-E",
	TypeUpcE1:           "Upc-E1",
	TypeEan13:           "Ean-13",
	TypeEan8:            "Ean-8",
	TypePDF417:          "PDF 417",
	TypePDF417Micro:     "PDF 417 Micro",
	TypeDatamatrix:      "Data Matrix",
	TypeCode25:          "Code 25",
	TypeInterleaved25:   "Interleaved 2 of 5",
	TypeITF14:           "ITF 14",
	TypeIATA25:          "IATA 25",
	TypeMatrix25:        "Matrix 25",
	TypeDatalogic25:     "Datalogic 25",
	TypeCOOP25:          "COOP 25",
	TypeCode32:          "Code 32",
	TypeTelepen:         "Telepen",
	TypeDotcode:         "Dotcode",
	TypeIDDocument:      "ID Document",
	TypeIDMRZ:           "MRZ",
	TypeIDPicture:       "Picture",
	TypeIDSignature:     "Signature",
	TypeDatabar14:       "Databar 14",
	TypeDatabarLimited:  "Databar Limited",
	TypeDatabarExpanded: "Databar Expanded",
	TypePostalIMB:       "Intelligent Mail",
	TypePostnet:         "Postnet",
	TypePlanet:          "Planet",
	TypeAustralianPost:  "Australian Post",
	TypeRoyalMail:       "Royal Mail",
	TypeKIX:             "PostNL KIX",
	TypeJapanesePost:    "Japanese Post",
	TypeMaxiCode:        "MaxiCode",
}

// decoderToBarcode maps every decode capability to its result label. The
// mapping is total in this direction; the reverse is partial because the
// ID Document facets carry no DecoderType.
var decoderToBarcode = [numDecoderTypes]BarcodeType{
	Aztec:           TypeAztec,
	AztecCompact:    TypeAztecCompact,
	QR:              TypeQR,
	QRMicro:         TypeQRMicro,
	Code128:         TypeCode128,
	Code93:          TypeCode93,
	Code39:          TypeCode39,
	Codabar:         TypeCodabar,
	Code11:          TypeCode11,
	Msi:             TypeMsi,
	UpcA:            TypeUpcA,
	UpcE:            TypeUpcE,
	UpcE1:           TypeUpcE1,
	Ean13:           TypeEan13,
	Ean8:            TypeEan8,
	PDF417:          TypePDF417,
	PDF417Micro:     TypePDF417Micro,
	Datamatrix:      TypeDatamatrix,
	Code25:          TypeCode25,
	Interleaved25:   TypeInterleaved25,
	ITF14:           TypeITF14,
	IATA25:          TypeIATA25,
	Matrix25:        TypeMatrix25,
	Datalogic25:     TypeDatalogic25,
	COOP25:          TypeCOOP25,
	Code32:          TypeCode32,
	Telepen:         TypeTelepen,
	Dotcode:         TypeDotcode,
	IDDocument:      TypeIDDocument,
	Databar14:       TypeDatabar14,
	DatabarLimited:  TypeDatabarLimited,
	DatabarExpanded: TypeDatabarExpanded,
	PostalIMB:       TypePostalIMB,
	Postnet:         TypePostnet,
	Planet:          TypePlanet,
	AustralianPost:  TypeAustralianPost,
	RoyalMail:       TypeRoyalMail,
	KIX:             TypeKIX,
	JapanesePost:    TypeJapanesePost,
	MaxiCode:        TypeMaxiCode,
}

// Valid reports whether d is a known decode capability.
func (d DecoderType) Valid() bool { return d >= 0 && d < numDecoderTypes }

// BarcodeType returns the result label produced by this capability.
func (d DecoderType) BarcodeType() BarcodeType {
	if !d.Valid() {
		return -1
	}
	return decoderToBarcode[d]
}

// String returns the display name, e.g. "Interleaved 2 of 5".
func (d DecoderType) String() string {
	if !d.Valid() {
		return "Unknown"
	}
	return d.BarcodeType().String()
}

// Code returns the stable integer code used on the caller-facing surfaces.
func (d DecoderType) Code() int { return int(d) }

// Valid reports whether b is a known result label.
func (b BarcodeType) Valid() bool { return b >= 0 && b < numBarcodeTypes }

// String returns the display name, e.g. "ID Document".
func (b BarcodeType) String() string {
	if !b.Valid() {
		return "Unknown"
	}
	return barcodeTypeNames[b]
}

// DecoderType returns the capability that produces this label, if any.
// The ID Document facets (MRZ, Picture, Signature) have none.
func (b BarcodeType) DecoderType() (DecoderType, bool) {
	for d, bt := range decoderToBarcode {
		if bt == b {
			return DecoderType(d), true
		}
	}
	return -1, false
}

// DecoderTypeFromCode converts a caller-supplied integer code.
func DecoderTypeFromCode(code int) (DecoderType, bool) {
	d := DecoderType(code)
	return d, d.Valid()
}

// AllDecoderTypes returns every capability in declaration order.
func AllDecoderTypes() []DecoderType {
	out := make([]DecoderType, numDecoderTypes)
	for i := range out {
		out[i] = DecoderType(i)
	}
	return out
}

// Parse resolves a symbology name to its DecoderType. Matching ignores case,
// spaces, dashes and dots, so "Code 128", "code-128" and "code128" all
// resolve to Code128. A few common aliases are accepted alongside the
// display names.
func Parse(name string) (DecoderType, bool) {
	key := normalizeName(name)
	if key == "" {
		return -1, false
	}
	if d, ok := nameIndex[key]; ok {
		return d, true
	}
	return -1, false
}

var nameIndex = buildNameIndex()

func buildNameIndex() map[string]DecoderType {
	idx := make(map[string]DecoderType, 2*int(numDecoderTypes))
	for _, d := range AllDecoderTypes() {
		idx[normalizeName(d.String())] = d
	}
	for alias, d := range map[string]DecoderType{
		"qrcode":          QR,
		"microqr":         QRMicro,
		"datamatrix":      Datamatrix,
		"upca":            UpcA,
		"upce":            UpcE,
		"upce1":           UpcE1,
		"ean13":           Ean13,
		"ean8":            Ean8,
		"pdf417":          PDF417,
		"micropdf417":     PDF417Micro,
		"interleaved25":   Interleaved25,
		"i25":             Interleaved25,
		"itf":             Interleaved25,
		"imb":             PostalIMB,
		"intelligentmail": PostalIMB,
		"kix":             KIX,
		"iddocument":      IDDocument,
		"id":              IDDocument,
	} {
		idx[alias] = d
	}
	return idx
}

func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case ' ', '-', '_', '.', '/':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

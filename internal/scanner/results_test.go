package scanner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/barkit/internal/engine"
	"github.com/MeKo-Tech/barkit/internal/symbology"
)

func marshalToMap(t *testing.T, resp *Response) map[string]any {
	t.Helper()
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	return doc
}

func TestMarshalZeroResults(t *testing.T) {
	doc := marshalToMap(t, &Response{})

	assert.Equal(t, map[string]any{
		"resultsCount":    float64(0),
		"barcodeTypeName": "",
		"textualData":     "",
	}, doc)
}

func TestMarshalSingleResultPromotesExtras(t *testing.T) {
	resp := &Response{Items: []engine.BaseResult{{
		Type:  symbology.TypeQR,
		Text:  "ABC",
		Extra: map[string]string{"gs1": "01"},
	}}}
	doc := marshalToMap(t, resp)

	assert.Equal(t, map[string]any{
		"resultsCount":    float64(1),
		"barcodeTypeName": "QR",
		"textualData":     "ABC",
		"gs1":             "01",
	}, doc)
}

func TestMarshalMultipleResultsNestsExtras(t *testing.T) {
	resp := &Response{Items: []engine.BaseResult{
		{Type: symbology.TypeQR, Text: "ABC"},
		{Type: symbology.TypeCode128, Text: "XYZ", Extra: map[string]string{"ai01": "09501101"}},
	}}
	doc := marshalToMap(t, resp)

	assert.Equal(t, float64(2), doc["resultsCount"])
	_, hasFlatName := doc["barcodeTypeName"]
	assert.False(t, hasFlatName, "multi-result documents have no top-level name")

	results, ok := doc["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 2)

	first, ok := results[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"barcodeTypeName": "QR",
		"textualData":     "ABC",
	}, first)

	second, ok := results[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"barcodeTypeName": "Code 128",
		"textualData":     "XYZ",
		"ai01":            "09501101",
	}, second)
}

func TestMarshalReservedKeysWin(t *testing.T) {
	resp := &Response{Items: []engine.BaseResult{{
		Type: symbology.TypeQR,
		Text: "real-payload",
		Extra: map[string]string{
			"textualData":  "spoofed",
			"resultsCount": "999",
			"results":      "nope",
			"ok":           "kept",
		},
	}}}
	doc := marshalToMap(t, resp)

	assert.Equal(t, "real-payload", doc["textualData"])
	assert.Equal(t, float64(1), doc["resultsCount"])
	_, hasResults := doc["results"]
	assert.False(t, hasResults)
	assert.Equal(t, "kept", doc["ok"])
}

func TestMarshalReservedKeysWinInSubDocuments(t *testing.T) {
	resp := &Response{Items: []engine.BaseResult{
		{Type: symbology.TypeQR, Text: "one", Extra: map[string]string{"barcodeTypeName": "spoof"}},
		{Type: symbology.TypeAztec, Text: "two"},
	}}
	doc := marshalToMap(t, resp)

	results := doc["results"].([]any)
	first := results[0].(map[string]any)
	assert.Equal(t, "QR", first["barcodeTypeName"])
}

func TestResultsUniformAccessor(t *testing.T) {
	var nilResp *Response
	assert.Nil(t, nilResp.Results())
	assert.Zero(t, nilResp.Count())

	empty := &Response{}
	assert.Empty(t, empty.Results())

	resp := &Response{Items: []engine.BaseResult{
		{Type: symbology.TypeQR, Text: "ABC", Extra: map[string]string{"gs1": "01"}},
		{Type: symbology.TypeCode128, Text: "XYZ"},
	}}
	results := resp.Results()
	require.Len(t, results, 2)
	assert.Equal(t, Result{BarcodeTypeName: "QR", TextualData: "ABC", Extra: map[string]string{"gs1": "01"}}, results[0])
	assert.Equal(t, Result{BarcodeTypeName: "Code 128", TextualData: "XYZ"}, results[1])
}

func TestToJSONShapes(t *testing.T) {
	s, err := ToJSON(&Response{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"resultsCount":0,"barcodeTypeName":"","textualData":""}`, s)

	_, err = ToJSON(nil)
	require.Error(t, err)

	pretty, err := ToJSONIndent(&Response{Items: []engine.BaseResult{{Type: symbology.TypeEan8, Text: "12345670"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"resultsCount":1,"barcodeTypeName":"Ean-8","textualData":"12345670"}`, pretty)
}

func TestToPlainText(t *testing.T) {
	s, err := ToPlainText(&Response{})
	require.NoError(t, err)
	assert.Equal(t, "no barcodes found", s)

	s, err = ToPlainText(&Response{Items: []engine.BaseResult{
		{Type: symbology.TypeQR, Text: "ABC"},
		{Type: symbology.TypeInterleaved25, Text: "0042"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "QR: ABC\nInterleaved 2 of 5: 0042", s)
}

func TestToCSV(t *testing.T) {
	s, err := ToCSV(&Response{Items: []engine.BaseResult{
		{Type: symbology.TypeCode39, Text: "A,B"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "barcode_type,textual_data\nCode 39,\"A,B\"\n", s)
}

package scanner

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/MeKo-Tech/barkit/internal/engine"
)

// Response holds one decode call's results plus timing. Its JSON form is
// shaped by cardinality for compatibility with existing consumers: zero and
// one result render as a flat document, several results nest under a
// "results" array. New consumers should prefer the uniform Results accessor.
type Response struct {
	Items   []engine.BaseResult
	Elapsed time.Duration
}

// Reserved top-level keys of the response document. Engine extras never
// override them; a colliding extra key is dropped.
const (
	keyResultsCount    = "resultsCount"
	keyBarcodeTypeName = "barcodeTypeName"
	keyTextualData     = "textualData"
	keyResults         = "results"
)

// Count returns the number of decoded symbols.
func (r *Response) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

// Result is the uniform per-symbol view used by Results.
type Result struct {
	BarcodeTypeName string            `json:"barcodeTypeName"`
	TextualData     string            `json:"textualData"`
	Extra           map[string]string `json:"extra,omitempty"`
}

// Results returns every decoded symbol in engine order, shaped uniformly
// regardless of cardinality.
func (r *Response) Results() []Result {
	if r == nil {
		return nil
	}
	out := make([]Result, len(r.Items))
	for i, it := range r.Items {
		out[i] = Result{
			BarcodeTypeName: it.Type.String(),
			TextualData:     it.Text,
			Extra:           it.Extra,
		}
	}
	return out
}

// MarshalJSON renders the cardinality-shaped document:
//
//	0 results: {"resultsCount":0,"barcodeTypeName":"","textualData":""}
//	1 result:  flat document with the extras promoted to top level
//	N results: {"resultsCount":N,"results":[...]} with extras kept
//	           inside each sub-document
func (r *Response) MarshalJSON() ([]byte, error) {
	switch len(r.Items) {
	case 0:
		return json.Marshal(map[string]any{
			keyResultsCount:    0,
			keyBarcodeTypeName: "",
			keyTextualData:     "",
		})
	case 1:
		it := r.Items[0]
		doc := map[string]any{
			keyResultsCount:    1,
			keyBarcodeTypeName: it.Type.String(),
			keyTextualData:     it.Text,
		}
		for k, v := range it.Extra {
			if _, taken := doc[k]; taken || k == keyResults {
				continue
			}
			doc[k] = v
		}
		return json.Marshal(doc)
	default:
		subs := make([]map[string]any, len(r.Items))
		for i, it := range r.Items {
			sub := map[string]any{
				keyBarcodeTypeName: it.Type.String(),
				keyTextualData:     it.Text,
			}
			for k, v := range it.Extra {
				if _, taken := sub[k]; taken {
					continue
				}
				sub[k] = v
			}
			subs[i] = sub
		}
		return json.Marshal(map[string]any{
			keyResultsCount: len(r.Items),
			keyResults:      subs,
		})
	}
}

// ToJSON serializes the response document as a compact JSON string.
func ToJSON(resp *Response) (string, error) {
	if resp == nil {
		return "", errors.New("nil response")
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToJSONIndent serializes the response document as pretty JSON.
func ToJSONIndent(resp *Response) (string, error) {
	if resp == nil {
		return "", errors.New("nil response")
	}
	b, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToPlainText renders one "name: payload" line per symbol in engine order.
func ToPlainText(resp *Response) (string, error) {
	if resp == nil {
		return "", errors.New("nil response")
	}
	if len(resp.Items) == 0 {
		return "no barcodes found", nil
	}
	lines := make([]string, 0, len(resp.Items))
	for _, it := range resp.Items {
		lines = append(lines, it.Type.String()+": "+it.Text)
	}
	return strings.Join(lines, "\n"), nil
}

// ToCSV exports per-symbol data as CSV with a header row.
func ToCSV(resp *Response) (string, error) {
	if resp == nil {
		return "", errors.New("nil response")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"barcode_type", "textual_data"})
	for _, it := range resp.Items {
		_ = w.Write([]string{it.Type.String(), it.Text})
	}
	w.Flush()
	return buf.String(), w.Error()
}

package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/MeKo-Tech/barkit/internal/config"
	"github.com/MeKo-Tech/barkit/internal/engine"
	"github.com/MeKo-Tech/barkit/internal/registry"
	"github.com/MeKo-Tech/barkit/internal/scanner"
)

// fakeEngine is a canned-result engine implementation for testing.
type fakeEngine struct {
	results []engine.BaseResult
	err     error
	calls   int
}

func (f *fakeEngine) Decode(_ context.Context, _ *registry.Registry, _ []byte, _, _ int) ([]engine.BaseResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeEngine) Version() string { return "fake-engine 1.0" }

// newTestServer builds a server around a fresh registry and the given engine.
// mutate, when non-nil, adjusts the configuration before construction.
func newTestServer(eng engine.Engine, mutate func(*config.Config)) (*Server, error) {
	reg, _, err := registry.Initialize("test-license-key")
	if err != nil {
		return nil, err
	}
	sc, err := scanner.New(reg, eng)
	if err != nil {
		return nil, err
	}
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	return New(sc, cfg), nil
}

// createMultipartImageRequest builds a multipart upload request against the
// image decode endpoint.
func createMultipartImageRequest(
	imageData []byte,
	fieldName string,
	filename string,
	extraFields map[string]string,
) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		return nil, err
	}
	if _, err = part.Write(imageData); err != nil {
		return nil, err
	}

	for key, value := range extraFields {
		if err = writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}

	if err = writer.Close(); err != nil {
		return nil, err
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/decode/image", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// createMultipartPDFRequest builds a multipart upload request against the PDF
// decode endpoint.
func createMultipartPDFRequest(
	pdfData []byte,
	fieldName string,
	filename string,
	extraFields map[string]string,
) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		return nil, err
	}
	if _, err = part.Write(pdfData); err != nil {
		return nil, err
	}

	for key, value := range extraFields {
		if err = writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}

	if err = writer.Close(); err != nil {
		return nil, err
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/decode/pdf", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

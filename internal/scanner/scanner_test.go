package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/barkit/internal/engine"
	"github.com/MeKo-Tech/barkit/internal/errs"
	"github.com/MeKo-Tech/barkit/internal/registry"
	"github.com/MeKo-Tech/barkit/internal/symbology"
)

type fakeEngine struct {
	results []engine.BaseResult
	err     error
	calls   int
	lastW   int
	lastH   int
}

func (f *fakeEngine) Decode(_ context.Context, _ *registry.Registry, _ []byte, w, h int) ([]engine.BaseResult, error) {
	f.calls++
	f.lastW, f.lastH = w, h
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeEngine) Version() string { return "fake-1.0" }

func newTestScanner(t *testing.T, eng engine.Engine) *Scanner {
	t.Helper()
	reg, _, err := registry.Initialize("TEST-KEY-0001")
	require.NoError(t, err)
	s, err := New(reg, eng)
	require.NoError(t, err)
	return s
}

func TestNewValidation(t *testing.T) {
	reg, _, err := registry.Initialize("TEST-KEY-0001")
	require.NoError(t, err)

	_, err = New(nil, &fakeEngine{})
	assert.ErrorIs(t, err, errs.ErrNotInitialized)

	_, err = New(reg, nil)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	s, err := New(reg, &fakeEngine{})
	require.NoError(t, err)
	assert.Same(t, reg, s.Registry())
	assert.Equal(t, "fake-1.0", s.EngineVersion())
}

func TestDecodeImageDimensionValidation(t *testing.T) {
	tests := []struct {
		name   string
		buf    []byte
		w, h   int
		reason string
	}{
		{"zero width", make([]byte, 10), 0, 10, "image dimensions must be positive"},
		{"zero height", make([]byte, 10), 10, 0, "image dimensions must be positive"},
		{"negative width", make([]byte, 10), -3, 2, "image dimensions must be positive"},
		{"short buffer", make([]byte, 99), 10, 10, "Buffer too small for specified dimensions"},
		{"empty buffer", nil, 4, 4, "Buffer too small for specified dimensions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &fakeEngine{}
			s := newTestScanner(t, eng)
			_, err := s.DecodeImage(context.Background(), tt.buf, tt.w, tt.h)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))
			assert.Equal(t, tt.reason, err.Error())
			assert.Zero(t, eng.calls, "engine must not run on invalid input")
		})
	}
}

func TestDecodeImageBufferSizing(t *testing.T) {
	eng := &fakeEngine{}
	s := newTestScanner(t, eng)

	// Exactly width*height proceeds.
	_, err := s.DecodeImage(context.Background(), make([]byte, 100), 10, 10)
	require.NoError(t, err)

	// Excess bytes are ignored.
	_, err = s.DecodeImage(context.Background(), make([]byte, 150), 10, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, eng.calls)
	assert.Equal(t, 10, eng.lastW)
	assert.Equal(t, 10, eng.lastH)
}

func TestDecodeImageEngineFailure(t *testing.T) {
	eng := &fakeEngine{err: errors.New("symbol tracer fault 0x21")}
	s := newTestScanner(t, eng)

	resp, err := s.DecodeImage(context.Background(), make([]byte, 16), 4, 4)
	require.Error(t, err)
	assert.Nil(t, resp, "no partial results on failure")
	assert.True(t, errs.IsEngine(err))
	assert.Equal(t, "symbol tracer fault 0x21", err.Error(), "engine message passes through verbatim")
	assert.Equal(t, 1, eng.calls, "exactly one engine call per invocation")
}

func TestDecodeImageAppliesResultCap(t *testing.T) {
	eng := &fakeEngine{results: []engine.BaseResult{
		{Type: symbology.TypeQR, Text: "first"},
		{Type: symbology.TypeCode128, Text: "second"},
		{Type: symbology.TypeEan13, Text: "third"},
	}}
	s := newTestScanner(t, eng)

	// Default cap is 1.
	resp, err := s.DecodeImage(context.Background(), make([]byte, 16), 4, 4)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Count())
	assert.Equal(t, "first", resp.Items[0].Text)

	// Raising the cap keeps engine order without re-sorting.
	require.NoError(t, s.Registry().SetMaximumResults(2))
	resp, err = s.DecodeImage(context.Background(), make([]byte, 16), 4, 4)
	require.NoError(t, err)
	require.Equal(t, 2, resp.Count())
	assert.Equal(t, "first", resp.Items[0].Text)
	assert.Equal(t, "second", resp.Items[1].Text)

	require.NoError(t, s.Registry().SetMaximumResults(10))
	resp, err = s.DecodeImage(context.Background(), make([]byte, 16), 4, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Count())
}

func TestDecodeImageNormalizesText(t *testing.T) {
	// "e" plus combining acute accent normalizes to the precomposed form.
	eng := &fakeEngine{results: []engine.BaseResult{
		{Type: symbology.TypeQR, Text: "café"},
	}}
	s := newTestScanner(t, eng)

	resp, err := s.DecodeImage(context.Background(), make([]byte, 16), 4, 4)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Count())
	assert.Equal(t, "café", resp.Items[0].Text)
}

func TestDecodeImageRecordsElapsed(t *testing.T) {
	s := newTestScanner(t, &fakeEngine{})
	resp, err := s.DecodeImage(context.Background(), make([]byte, 16), 4, 4)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, resp.Elapsed.Nanoseconds(), int64(0))
}

package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/barkit/internal/imgutil"
	"github.com/MeKo-Tech/barkit/internal/scanner"
)

const formatText = "text"

// decode runs one image through the scanner under the decode lock.
func (s *Server) decode(ctx context.Context, gray []byte, width, height int) (*scanner.Response, error) {
	s.decodeMu.Lock()
	defer s.decodeMu.Unlock()
	return s.sc.DecodeImage(ctx, gray, width, height)
}

// decodeImageHandler processes image decode requests. Accepts either a
// multipart upload under the "image" field or a raw grayscale buffer as
// application/octet-stream with width/height query parameters.
func (s *Server) decodeImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/octet-stream") {
		s.decodeRawHandler(w, r)
		return
	}

	gray, width, height, err := s.parseImageUpload(w, r)
	if err != nil {
		decodeRequestsTotal.WithLabelValues("image", "error").Inc()
		return // error already written
	}
	defer imgutil.PutGray(gray)

	start := time.Now()
	res, err := s.decode(r.Context(), gray, width, height)
	duration := time.Since(start)

	if err != nil {
		decodeRequestsTotal.WithLabelValues("image", "error").Inc()
		s.writeError(w, err)
		return
	}

	decodeRequestsTotal.WithLabelValues("image", "success").Inc()
	decodeDuration.WithLabelValues("image").Observe(duration.Seconds())
	barcodesDecoded.WithLabelValues("image").Observe(float64(res.Count()))

	s.writeDocumentResponse(w, r.FormValue("format"), res)
}

// decodeRawHandler handles the raw grayscale fast path used by capture
// devices that already hold luminance buffers.
func (s *Server) decodeRawHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	width, err := strconv.Atoi(query.Get("width"))
	if err != nil {
		s.writeErrorMessage(w, "width query parameter must be an integer", http.StatusBadRequest)
		return
	}
	height, err := strconv.Atoi(query.Get("height"))
	if err != nil {
		s.writeErrorMessage(w, "height query parameter must be an integer", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxUploadMB)*1024*1024)
	gray, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeErrorMessage(w, "failed to read request body", http.StatusBadRequest)
		decodeRequestsTotal.WithLabelValues("raw", "error").Inc()
		return
	}
	uploadSizeBytes.Observe(float64(len(gray)))

	start := time.Now()
	res, err := s.decode(r.Context(), gray, width, height)
	duration := time.Since(start)

	if err != nil {
		decodeRequestsTotal.WithLabelValues("raw", "error").Inc()
		s.writeError(w, err)
		return
	}

	decodeRequestsTotal.WithLabelValues("raw", "success").Inc()
	decodeDuration.WithLabelValues("raw").Observe(duration.Seconds())
	barcodesDecoded.WithLabelValues("raw").Observe(float64(res.Count()))

	s.writeDocumentResponse(w, query.Get("format"), res)
}

// parseImageUpload extracts and converts the uploaded image. The returned
// buffer is pooled; callers hand it back via imgutil.PutGray.
func (s *Server) parseImageUpload(w http.ResponseWriter, r *http.Request) ([]byte, int, int, error) {
	limit := s.cfg.MaxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, int64(limit))

	if err := r.ParseMultipartForm(int64(limit)); err != nil {
		s.handleFormParseError(w, err)
		return nil, 0, 0, err
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorMessage(w, "No image file provided", http.StatusBadRequest)
		return nil, 0, 0, err
	}
	defer func() { _ = file.Close() }()

	uploadSizeBytes.Observe(float64(header.Size))

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorMessage(w, "Failed to read image data", http.StatusInternalServerError)
		return nil, 0, 0, err
	}

	img, _, err := imgutil.Load(bytes.NewReader(data))
	if err != nil {
		s.writeErrorMessage(w, "Invalid image format", http.StatusBadRequest)
		return nil, 0, 0, err
	}

	img = imgutil.FitWithin(img, s.maxImageSize)
	gray, width, height := imgutil.ToGray(img)
	return gray, width, height, nil
}

// writeDocumentResponse renders a decode document in the requested format,
// defaulting to the JSON document.
func (s *Server) writeDocumentResponse(w http.ResponseWriter, format string, res *scanner.Response) {
	switch format {
	case formatText:
		out, err := scanner.ToPlainText(res)
		if err != nil {
			s.writeErrorMessage(w, "formatting failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(out))
	case "csv":
		out, err := scanner.ToCSV(res)
		if err != nil {
			s.writeErrorMessage(w, "formatting failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(out))
	default:
		s.writeJSON(w, res)
	}
}

package server

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/MeKo-Tech/barkit/internal/pdfscan"
)

// decodePDFHandler processes PDF decode requests. The upload is staged to a
// temporary file because image extraction works on files, not streams.
func (s *Server) decodePDFHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tmpPath, clientName, pageRange, err := s.parsePDFUpload(w, r)
	if err != nil {
		decodeRequestsTotal.WithLabelValues("pdf", "error").Inc()
		return // error already written
	}
	defer func() { _ = os.Remove(tmpPath) }()

	start := time.Now()
	res, err := s.runPDFScan(r, tmpPath, pageRange)
	duration := time.Since(start)

	if err != nil {
		decodeRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeError(w, err)
		return
	}
	res.Filename = clientName

	decodeRequestsTotal.WithLabelValues("pdf", "success").Inc()
	decodeDuration.WithLabelValues("pdf").Observe(duration.Seconds())

	var total int
	for _, page := range res.Pages {
		total += page.Document.Count()
	}
	barcodesDecoded.WithLabelValues("pdf").Observe(float64(total))

	s.writeJSON(w, res)
}

// runPDFScan holds the decode lock for the whole file; the per-image decodes
// inside must not interleave with other requests.
func (s *Server) runPDFScan(r *http.Request, path, pageRange string) (*pdfscan.FileResult, error) {
	s.decodeMu.Lock()
	defer s.decodeMu.Unlock()
	return s.scanPDF(r.Context(), s.sc, path, pageRange, s.maxImageSize)
}

func (s *Server) parsePDFUpload(w http.ResponseWriter, r *http.Request) (tmpPath, clientName, pageRange string, err error) {
	limit := s.cfg.MaxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, int64(limit))

	if err := r.ParseMultipartForm(int64(limit)); err != nil {
		s.handleFormParseError(w, err)
		return "", "", "", err
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		s.writeErrorMessage(w, "No PDF file provided", http.StatusBadRequest)
		return "", "", "", err
	}
	defer func() { _ = file.Close() }()

	uploadSizeBytes.Observe(float64(header.Size))

	tmp, err := os.CreateTemp("", "barkit-upload-*.pdf")
	if err != nil {
		s.writeErrorMessage(w, "Failed to stage upload", http.StatusInternalServerError)
		return "", "", "", err
	}
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		s.writeErrorMessage(w, "Failed to stage upload", http.StatusInternalServerError)
		return "", "", "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		s.writeErrorMessage(w, "Failed to stage upload", http.StatusInternalServerError)
		return "", "", "", err
	}

	return tmp.Name(), header.Filename, r.FormValue("pages"), nil
}

func (s *Server) handleFormParseError(w http.ResponseWriter, err error) {
	// Distinguish body-too-large from generic parse error
	if strings.Contains(strings.ToLower(err.Error()), "too large") {
		s.writeErrorMessage(w, "File too large", http.StatusRequestEntityTooLarge)
	} else {
		s.writeErrorMessage(w, "Failed to parse form data", http.StatusBadRequest)
	}
}

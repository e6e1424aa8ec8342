package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MeKo-Tech/barkit/internal/registry"
	"github.com/MeKo-Tech/barkit/internal/symbology"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, HealthResponse{
		Status: "healthy",
		Engine: s.sc.EngineVersion(),
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// symbologiesHandler lists every decode capability with its current state.
func (s *Server) symbologiesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reg := s.sc.Registry()
	all := symbology.AllDecoderTypes()
	list := make([]SymbologyInfo, 0, len(all))
	for _, dt := range all {
		cfg, err := reg.Config(dt)
		if err != nil {
			s.writeError(w, err)
			return
		}
		list = append(list, SymbologyInfo{
			Code:         dt.Code(),
			Name:         dt.String(),
			Enabled:      cfg.Enabled,
			Capabilities: symbology.Capabilities(dt),
		})
	}

	s.writeJSON(w, SymbologiesResponse{Symbologies: list, Count: len(list)})
}

// configHandler reads or updates the scan settings.
func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getConfigHandler(w)
	case http.MethodPut:
		s.putConfigHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) getConfigHandler(w http.ResponseWriter) {
	reg := s.sc.Registry()

	speed := reg.DecodingSpeed().String()
	formatting := reg.Formatting().String()
	maxResults := reg.MaximumResults()
	roi := reg.ROI()

	enabled := reg.EnabledDecoders()
	names := make([]string, 0, len(enabled))
	for _, dt := range enabled {
		names = append(names, dt.String())
	}

	s.writeJSON(w, ConfigResponse{
		Speed:          &speed,
		Formatting:     &formatting,
		MaximumResults: &maxResults,
		ROI:            &roi,
		Symbologies:    names,
	})
}

// putConfigHandler applies a partial settings update. The request is
// validated in full before any setting is touched, so a bad field leaves the
// registry unchanged.
func (s *Server) putConfigHandler(w http.ResponseWriter, r *http.Request) {
	var req ConfigResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorMessage(w, "invalid config JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	var (
		speed      registry.DecodingSpeed
		formatting registry.Formatting
		decoders   []symbology.DecoderType
	)
	if req.Speed != nil {
		parsed, ok := registry.ParseSpeed(*req.Speed)
		if !ok {
			s.writeErrorMessage(w, "unknown speed "+*req.Speed, http.StatusBadRequest)
			return
		}
		speed = parsed
	}
	if req.Formatting != nil {
		parsed, ok := registry.ParseFormatting(*req.Formatting)
		if !ok {
			s.writeErrorMessage(w, "unknown formatting "+*req.Formatting, http.StatusBadRequest)
			return
		}
		formatting = parsed
	}
	if req.MaximumResults != nil && *req.MaximumResults < 1 {
		s.writeErrorMessage(w, "maximum results must be at least 1", http.StatusBadRequest)
		return
	}
	if req.ROI != nil {
		if err := req.ROI.Validate(); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.Symbologies != nil {
		decoders = make([]symbology.DecoderType, 0, len(req.Symbologies))
		for _, name := range req.Symbologies {
			dt, ok := symbology.Parse(name)
			if !ok {
				s.writeErrorMessage(w, "unknown symbology "+name, http.StatusBadRequest)
				return
			}
			decoders = append(decoders, dt)
		}
	}

	// Hold the decode lock so settings never change mid-decode.
	s.decodeMu.Lock()
	defer s.decodeMu.Unlock()

	reg := s.sc.Registry()
	if req.Speed != nil {
		if err := reg.SetDecodingSpeed(speed); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.Formatting != nil {
		if err := reg.SetFormatting(formatting); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.MaximumResults != nil {
		if err := reg.SetMaximumResults(*req.MaximumResults); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.ROI != nil {
		roi := *req.ROI
		if err := reg.SetRegionOfInterest(roi.Left, roi.Top, roi.Width, roi.Height); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.Symbologies != nil {
		if err := reg.SetEnabledDecoders(decoders); err != nil {
			s.writeError(w, err)
			return
		}
	}

	s.getConfigHandler(w)
}

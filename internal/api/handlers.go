package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/yourusername/overtake-analyser/internal/models"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
	"github.com/yourusername/overtake-analyser/internal/service"
)

const maxBodyBytes = 1 << 20

type analysisBody struct {
	Label  string            `json:"label"`
	Seed   int64             `json:"seed"`
	Params overtaking.Params `json:"params"`
}

type simulationBody struct {
	Seed   int64             `json:"seed"`
	Params overtaking.Params `json:"params"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var errBadRequest = errors.New("bad request")

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var body analysisBody
	if err := decodeBody(w, r, &body); err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.svc.CheckRequestSize(body.Params, 0); err != nil {
		s.respondError(w, err)
		return
	}

	outcome, err := s.svc.Analyse(r.Context(), service.AnalysisRequest{
		Label:  body.Label,
		Params: body.Params,
		Seed:   body.Seed,
		Mode:   models.ModeAnalyse,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.respondError(w, fmt.Errorf("%w: invalid limit %q", errBadRequest, raw))
			return
		}
		limit = parsed
	}

	runs, err := s.svc.List(r.Context(), limit)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, fmt.Errorf("%w: %v", models.ErrInvalidID, err))
		return
	}

	run, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, fmt.Errorf("%w: %v", models.ErrInvalidID, err))
		return
	}

	if err := s.svc.Delete(r.Context(), id, r.RemoteAddr); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var body simulationBody
	if err := decodeBody(w, r, &body); err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.svc.CheckRequestSize(body.Params, 0); err != nil {
		s.respondError(w, err)
		return
	}

	outcome, err := s.svc.Simulate(r.Context(), body.Params, body.Seed)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req service.SweepRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.svc.CheckRequestSize(req.Params, req.Steps); err != nil {
		s.respondError(w, err)
		return
	}

	points, err := s.svc.Sweep(r.Context(), req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var body simulationBody
	if err := decodeBody(w, r, &body); err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.svc.CheckRequestSize(body.Params, 0); err != nil {
		s.respondError(w, err)
		return
	}

	comparison, err := s.svc.CompareZones(r.Context(), body.Params, body.Seed)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

// respondError maps domain errors onto HTTP status codes
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("API request failed")
	}
	writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, models.ErrInvalidID),
		errors.Is(err, overtaking.ErrInvalidConfiguration),
		errors.Is(err, service.ErrInvalidSweep),
		errors.Is(err, service.ErrRequestTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// Package server exposes the screening service over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/emmi-lili/tx-whisperer/internal/domain/model"
	"github.com/emmi-lili/tx-whisperer/internal/metrics"
	"github.com/emmi-lili/tx-whisperer/internal/screening"
)

const (
	maxRequestBodyBytes = 64 << 10 // 64 KB; inputs are identifiers, not documents

	defaultMaxInputBytes = 4096

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Checker runs detections and contamination checks. In production this is
// satisfied by *screening.Service, but tests can provide a simple fake.
type Checker interface {
	Check(ctx context.Context, raw string) *screening.Report
	Detect(ctx context.Context, raw string) screening.Detection
	Dataset() model.DatasetMeta
}

// HistoryProvider serves past check records.
type HistoryProvider interface {
	Recent(ctx context.Context, limit int) []model.CheckRecord
	Find(ctx context.Context, value string) *model.CheckRecord
}

// Server provides the public HTTP API for detections, checks, and history.
type Server struct {
	checker       Checker
	history       HistoryProvider
	maxInputBytes int
	logger        *slog.Logger
}

// NewServer creates a new API server. History is optional; without it the
// history endpoint reports unavailable.
func NewServer(checker Checker, logger *slog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		checker:       checker,
		maxInputBytes: defaultMaxInputBytes,
		logger:        logger.With("component", "api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServerOption configures optional dependencies for the API server.
type ServerOption func(*Server)

// WithHistory sets the history provider on the API server.
func WithHistory(h HistoryProvider) ServerOption {
	return func(s *Server) { s.history = h }
}

// WithMaxInputBytes overrides the per-value input length cap.
func WithMaxInputBytes(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxInputBytes = n
		}
	}
}

// Handler returns the HTTP handler for the check API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/check", instrument("/v1/check", s.handleCheck))
	mux.HandleFunc("GET /v1/detect", instrument("/v1/detect", s.handleDetect))
	mux.HandleFunc("GET /v1/history", instrument("/v1/history", s.handleHistory))
	mux.HandleFunc("GET /v1/dataset", instrument("/v1/dataset", s.handleDataset))
	return mux
}

// instrument records request count and latency for a route.
func instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

		h(sw, r)

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.statusCode)).Inc()
		metrics.HTTPRequestLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSONBody reads and decodes a JSON request body into v.
// Returns false (and writes an error response) if decoding fails.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return false
	}
	return true
}

// requireValue pulls the value to classify out of the query string.
// Returns false (and writes an error response) if it is missing or oversized.
func (s *Server) requireValue(w http.ResponseWriter, r *http.Request) (string, bool) {
	value := r.URL.Query().Get("value")
	if value == "" {
		http.Error(w, `{"error":"value query param required"}`, http.StatusBadRequest)
		return "", false
	}
	if len(value) > s.maxInputBytes {
		http.Error(w, `{"error":"value too long"}`, http.StatusBadRequest)
		return "", false
	}
	return value, true
}

type checkRequest struct {
	Value string `json:"value"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Value == "" {
		http.Error(w, `{"error":"value is required"}`, http.StatusBadRequest)
		return
	}
	if len(req.Value) > s.maxInputBytes {
		http.Error(w, `{"error":"value too long"}`, http.StatusBadRequest)
		return
	}

	report := s.checker.Check(r.Context(), req.Value)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	value, ok := s.requireValue(w, r)
	if !ok {
		return
	}

	// Unclassifiable input is a result, not an error: always 200.
	writeJSON(w, http.StatusOK, s.checker.Detect(r.Context(), value))
}

type historyRecordResponse struct {
	ID             string    `json:"id"`
	Value          string    `json:"value"`
	RawInput       string    `json:"raw_input"`
	Chain          string    `json:"chain"`
	Kind           string    `json:"kind"`
	Status         string    `json:"status"`
	MatchCount     int       `json:"match_count"`
	CheckCount     int64     `json:"check_count"`
	FirstCheckedAt time.Time `json:"first_checked_at"`
	LastCheckedAt  time.Time `json:"last_checked_at"`
}

func historyResponse(rec model.CheckRecord) historyRecordResponse {
	return historyRecordResponse{
		ID:             rec.ID.String(),
		Value:          rec.Value,
		RawInput:       rec.RawInput,
		Chain:          string(rec.Chain),
		Kind:           string(rec.Kind),
		Status:         string(rec.Status),
		MatchCount:     rec.MatchCount,
		CheckCount:     rec.CheckCount,
		FirstCheckedAt: rec.FirstCheckedAt,
		LastCheckedAt:  rec.LastCheckedAt,
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, `{"error":"history not available"}`, http.StatusServiceUnavailable)
		return
	}

	// A value param narrows the request to a single record lookup.
	if value := r.URL.Query().Get("value"); value != "" {
		rec := s.history.Find(r.Context(), value)
		if rec == nil {
			http.Error(w, `{"error":"value never checked"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, historyResponse(*rec))
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, `{"error":"limit must be a positive integer"}`, http.StatusBadRequest)
			return
		}
		if n > maxHistoryLimit {
			n = maxHistoryLimit
		}
		limit = n
	}

	records := s.history.Recent(r.Context(), limit)
	resp := make([]historyRecordResponse, len(records))
	for i, rec := range records {
		resp[i] = historyResponse(rec)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.checker.Dataset())
}

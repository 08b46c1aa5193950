// Package api - Thin HTTP layer over the estimation service
// The API is ONLY responsible for: input decoding, calling the core, output
// serialization. It NEVER encodes features or touches the model.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"car-price/api/audit"
	"car-price/core/artifacts"
	"car-price/core/dataset"
	"car-price/core/estimator"
	cperrors "car-price/internal/errors"
	"car-price/internal/logging"
)

// Server is the API server
type Server struct {
	mux       *http.ServeMux
	version   string
	bundle    *artifacts.Bundle
	loadErr   error
	audit     audit.Logger
	pageLimit int
	logger    *zap.Logger
}

// Option configures a Server
type Option func(*Server)

// WithAudit records every prediction through l
func WithAudit(l audit.Logger) Option {
	return func(s *Server) {
		s.audit = l
	}
}

// WithDatasetPageLimit caps rows per dataset page
func WithDatasetPageLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.pageLimit = n
		}
	}
}

// NewServer creates an API server. bundle may be nil when the manifest
// could not be loaded; loadErr then explains why and every artifact backed
// route answers 503.
func NewServer(version string, bundle *artifacts.Bundle, loadErr error, opts ...Option) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		version:   version,
		bundle:    bundle,
		loadErr:   loadErr,
		pageLimit: 500,
		logger:    logging.Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Prediction
	s.mux.HandleFunc("POST /predict", s.handlePredict)
	s.mux.HandleFunc("GET /vocabularies", s.handleVocabularies)

	// Dataset and charts
	s.mux.HandleFunc("GET /dataset", s.handleDataset)
	s.mux.HandleFunc("GET /charts/production-years", s.handleYearChart)
	s.mux.HandleFunc("GET /charts/brand-prices", s.handleBrandChart)

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// estimator returns the prediction service or the reason it is unavailable
func (s *Server) estimator() (*estimator.Service, error) {
	if s.bundle == nil {
		return nil, s.unavailable()
	}
	return s.bundle.Estimator()
}

// dataset returns the dataset or the reason it is unavailable
func (s *Server) dataset() (*dataset.Dataset, error) {
	if s.bundle == nil {
		return nil, s.unavailable()
	}
	return s.bundle.Dataset()
}

func (s *Server) unavailable() error {
	if s.loadErr != nil {
		return s.loadErr
	}
	return cperrors.New(cperrors.TypeArtifactLoad, "artifacts not loaded")
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, estErr := s.estimator()
	_, dsErr := s.dataset()

	s.writeJSON(w, HealthResponse{
		Status:              "healthy",
		Version:             s.version,
		PredictionAvailable: estErr == nil,
		DatasetAvailable:    dsErr == nil,
		Time:                time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"service":     "car-price",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, requestID, code, message string, status int) {
	s.writeJSON(w, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

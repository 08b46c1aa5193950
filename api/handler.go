// Package api - HTTP handlers
// Handlers wrap the core - they contain NO encoding or prediction logic.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"car-price/api/audit"
	"car-price/core/dataset"
	"car-price/core/encoding"
	"car-price/core/types"
	cperrors "car-price/internal/errors"
)

// maxPredictBody caps POST /predict bodies
const maxPredictBody = 4 << 10

// handlePredict handles POST /predict
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	requestID := generateRequestID()

	var req PredictRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPredictBody)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, requestID, CodeRequestTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		s.writeError(w, requestID, CodeInvalidJSON, err.Error(), http.StatusBadRequest)
		return
	}

	entry := audit.NewEntry(requestID, req, clientIP(r), r.UserAgent())
	defer func() {
		entry.SetDuration(time.Since(start))
		s.recordAudit(r, entry)
	}()

	svc, err := s.estimator()
	if err != nil {
		entry.MarkFailed(CodeArtifactsUnavailable, err)
		s.writeError(w, requestID, CodeArtifactsUnavailable, "price prediction is unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	est, err := svc.Estimate(ctx, req)
	if err != nil {
		code, status, message := predictFailure(err)
		entry.MarkFailed(code, err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("prediction failed", zap.String("request_id", requestID), zap.String("code", code), zap.Error(err))
		}
		s.writeError(w, requestID, code, message, status)
		return
	}

	entry.SetResult(est.Record, est.Price)
	s.writeJSON(w, PredictResponse{
		RequestID:  requestID,
		Timestamp:  time.Now().UTC(),
		Record:     est.Record,
		Price:      est.Price,
		Formatted:  est.Formatted,
		DurationMs: time.Since(start).Milliseconds(),
	}, http.StatusOK)
}

// handleVocabularies handles GET /vocabularies
func (s *Server) handleVocabularies(w http.ResponseWriter, r *http.Request) {
	svc, err := s.estimator()
	if err != nil {
		s.writeError(w, "", CodeArtifactsUnavailable, err.Error(), http.StatusServiceUnavailable)
		return
	}

	vocabs := svc.Registry().Vocabularies()
	s.writeJSON(w, VocabulariesResponse{
		Model:        vocabs[encoding.FeatureModel],
		Region:       vocabs[encoding.FeatureRegion],
		Brand:        vocabs[encoding.FeatureBrand],
		Transmission: []string{string(types.TransmissionAutomatic), string(types.TransmissionManual)},
		Fuel:         []string{string(types.FuelGasoline), string(types.FuelDiesel)},
	}, http.StatusOK)
}

// handleDataset handles GET /dataset?offset=&limit=
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.writeError(w, "", CodeInvalidQuery, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit", s.pageLimit)
	if err != nil {
		s.writeError(w, "", CodeInvalidQuery, err.Error(), http.StatusBadRequest)
		return
	}
	if limit <= 0 || limit > s.pageLimit {
		limit = s.pageLimit
	}

	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}

	s.writeJSON(w, DatasetResponse{Page: ds.Page(offset, limit), Limit: limit}, http.StatusOK)
}

// handleYearChart handles GET /charts/production-years
func (s *Server) handleYearChart(w http.ResponseWriter, r *http.Request) {
	bins, err := queryInt(r, "bins", 0)
	if err != nil {
		s.writeError(w, "", CodeInvalidQuery, err.Error(), http.StatusBadRequest)
		return
	}

	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}
	s.writeJSON(w, ds.YearHistogram(bins), http.StatusOK)
}

// handleBrandChart handles GET /charts/brand-prices
func (s *Server) handleBrandChart(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}
	s.writeJSON(w, ds.AveragePriceByBrand(), http.StatusOK)
}

func (s *Server) requireDataset(w http.ResponseWriter) (*dataset.Dataset, bool) {
	ds, err := s.dataset()
	if err == nil {
		return ds, true
	}

	switch {
	case cperrors.IsType(err, cperrors.TypeNotFound):
		s.writeError(w, "", CodeDatasetNotFound, "dataset not found, make sure the dataset file is available", http.StatusNotFound)
	case cperrors.IsType(err, cperrors.TypeArtifactLoad):
		s.writeError(w, "", CodeArtifactsUnavailable, err.Error(), http.StatusServiceUnavailable)
	default:
		s.writeError(w, "", CodeDatasetUnavailable, err.Error(), http.StatusServiceUnavailable)
	}
	return nil, false
}

// predictFailure maps an estimation error to its response code, status and
// client message
func predictFailure(err error) (string, int, string) {
	switch {
	case cperrors.IsType(err, cperrors.TypeUnknownCategory):
		return CodeUnknownCategory, http.StatusBadRequest, categoryMessage(err)
	case cperrors.IsType(err, cperrors.TypePrediction):
		return CodePredictionError, http.StatusInternalServerError, "the price could not be predicted, please try again"
	default:
		return CodeInternal, http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) recordAudit(r *http.Request, entry audit.Entry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(r.Context(), entry); err != nil {
		s.logger.Warn("audit write failed", zap.String("request_id", entry.RequestID), zap.Error(err))
	}
}

func categoryMessage(err error) string {
	e, ok := cperrors.As(err)
	if !ok {
		return err.Error()
	}
	feature, _ := e.Context["feature"].(string)
	value, _ := e.Context["value"].(string)
	return fmt.Sprintf("%s %q is not a known choice, pick one from the list", feature, value)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func generateRequestID() string {
	return "pred-" + uuid.NewString()
}

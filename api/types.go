// Package api - Request and response types
package api

import (
	"time"

	"car-price/core/dataset"
	"car-price/core/types"
)

// PredictRequest is the body of POST /predict
type PredictRequest = types.RawInput

// PredictResponse is returned by POST /predict
type PredictResponse struct {
	RequestID  string              `json:"request_id"`
	Timestamp  time.Time           `json:"timestamp"`
	Record     types.FeatureRecord `json:"record"`
	Price      types.Price         `json:"price"`
	Formatted  string              `json:"formatted"`
	DurationMs int64               `json:"duration_ms"`
}

// VocabulariesResponse lists the valid form choices
type VocabulariesResponse struct {
	Model        []string `json:"model"`
	Region       []string `json:"region"`
	Brand        []string `json:"brand"`
	Transmission []string `json:"transmission"`
	Fuel         []string `json:"fuel"`
}

// DatasetResponse is returned by GET /dataset
type DatasetResponse struct {
	dataset.Page
	Limit int `json:"limit"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status              string `json:"status"`
	Version             string `json:"version"`
	PredictionAvailable bool   `json:"prediction_available"`
	DatasetAvailable    bool   `json:"dataset_available"`
	Time                string `json:"time"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse wraps an ErrorDetail
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// Error codes
const (
	CodeInvalidJSON          = "INVALID_JSON"
	CodeInvalidQuery         = "INVALID_QUERY"
	CodeRequestTooLarge      = "REQUEST_TOO_LARGE"
	CodeUnknownCategory      = "UNKNOWN_CATEGORY"
	CodePredictionError      = "PREDICTION_ERROR"
	CodeArtifactsUnavailable = "ARTIFACTS_UNAVAILABLE"
	CodeDatasetNotFound      = "DATASET_NOT_FOUND"
	CodeDatasetUnavailable   = "DATASET_UNAVAILABLE"
	CodeInternal             = "INTERNAL_ERROR"
)

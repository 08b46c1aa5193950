// Package audit - Prediction audit log
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"car-price/core/types"
)

// Entry is one audited prediction request
type Entry struct {
	Timestamp  time.Time      `json:"timestamp"`
	RequestID  string         `json:"request_id"`
	InputHash  string         `json:"input_hash"`
	Input      types.RawInput `json:"input"`
	Record     []float64      `json:"record,omitempty"`
	Price      string         `json:"price,omitempty"`
	Currency   string         `json:"currency,omitempty"`
	ClientIP   string         `json:"client_ip,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	DurationMs int64          `json:"duration_ms"`
	Success    bool           `json:"success"`
	ErrorType  string         `json:"error_type,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Logger records audit entries
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NewEntry starts an entry for input
func NewEntry(requestID string, input types.RawInput, clientIP, userAgent string) Entry {
	return Entry{
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
		InputHash: HashInput(input),
		Input:     input,
		ClientIP:  clientIP,
		UserAgent: userAgent,
		Success:   true,
	}
}

// HashInput returns a stable digest of a request
func HashInput(input types.RawInput) string {
	data, _ := json.Marshal(input)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// MarkFailed marks the entry as failed
func (e *Entry) MarkFailed(errType string, err error) {
	e.Success = false
	e.ErrorType = errType
	e.Error = err.Error()
}

// SetResult records a successful prediction
func (e *Entry) SetResult(record types.FeatureRecord, price types.Price) {
	e.Record = record.Slice()
	e.Price = price.Amount.String()
	e.Currency = price.Currency.Code
}

// SetDuration sets the duration
func (e *Entry) SetDuration(d time.Duration) {
	e.DurationMs = d.Milliseconds()
}

// ZapLogger writes entries to a zap logger
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger creates an audit logger on top of logger
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger}
}

// Log implements Logger
func (l *ZapLogger) Log(_ context.Context, entry Entry) error {
	fields := []zap.Field{
		zap.String("request_id", entry.RequestID),
		zap.String("input_hash", entry.InputHash),
		zap.Bool("success", entry.Success),
		zap.Int64("duration_ms", entry.DurationMs),
	}
	if entry.Success {
		fields = append(fields, zap.String("price", entry.Price), zap.String("currency", entry.Currency))
	} else {
		fields = append(fields, zap.String("error_type", entry.ErrorType), zap.String("error", entry.Error))
	}
	if entry.ClientIP != "" {
		fields = append(fields, zap.String("client_ip", entry.ClientIP))
	}

	l.logger.Info("prediction audit", fields...)
	return nil
}

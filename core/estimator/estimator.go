// Package estimator - Price estimation service
// Composes the encoder registry, the assembler and the oracle adapter for
// a single request. Holds no per-request state.
package estimator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"car-price/core/assembler"
	"car-price/core/encoding"
	"car-price/core/oracle"
	"car-price/core/types"
	cperrors "car-price/internal/errors"
	"car-price/internal/logging"
)

// Estimate is the outcome of one successful prediction
type Estimate struct {
	Record    types.FeatureRecord `json:"record"`
	Price     types.Price         `json:"price"`
	Formatted string              `json:"formatted"`
}

// Service produces price estimates
type Service struct {
	registry *encoding.Registry
	adapter  *oracle.Adapter
	currency types.Currency
	logger   *zap.Logger
}

// New creates a service. registry and adapter are shared read-only.
func New(registry *encoding.Registry, adapter *oracle.Adapter, currency types.Currency) *Service {
	return &Service{
		registry: registry,
		adapter:  adapter,
		currency: currency,
		logger:   logging.Named("estimator"),
	}
}

// Registry returns the encoder registry
func (s *Service) Registry() *encoding.Registry {
	return s.registry
}

// Currency returns the currency estimates are reported in
func (s *Service) Currency() types.Currency {
	return s.currency
}

// Estimate assembles input and asks the model for a price.
// UNKNOWN_CATEGORY and PREDICTION_ERROR failures are returned as is, anything
// else comes back as INTERNAL_ERROR.
func (s *Service) Estimate(ctx context.Context, input types.RawInput) (*Estimate, error) {
	start := time.Now()

	record, err := assembler.Assemble(input, s.registry)
	if err != nil {
		if !cperrors.IsType(err, cperrors.TypeUnknownCategory) {
			s.logger.Error("record assembly failed", zap.Error(err))
			return nil, cperrors.Internal("failed to assemble feature record", err)
		}
		s.logger.Debug("input rejected", zap.Error(err))
		return nil, err
	}

	amount, err := s.adapter.Predict(ctx, record)
	if err != nil {
		s.logger.Warn("prediction failed",
			zap.Float64s("record", record.Slice()),
			zap.Error(err),
		)
		return nil, err
	}

	price := types.NewPrice(amount, s.currency)
	s.logger.Info("price estimated",
		zap.String("model", input.Model),
		zap.String("brand", input.Brand),
		zap.String("price", price.Amount.String()),
		zap.Duration("took", time.Since(start)),
	)

	return &Estimate{
		Record:    record,
		Price:     price,
		Formatted: price.Format(),
	}, nil
}

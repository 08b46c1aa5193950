// Package oracle - Prediction oracle adapter
// The trained model is opaque. The adapter is the only caller, and it makes
// sure every failure leaves as a PREDICTION_ERROR.
package oracle

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"car-price/core/types"
	cperrors "car-price/internal/errors"
	"car-price/internal/logging"
)

// Oracle is a trained regression model
type Oracle interface {
	// Predict returns the price for one feature vector
	Predict(features []float64) (float64, error)
}

// ConcurrencyReporter is implemented by oracles that know whether they
// tolerate concurrent Predict calls. Oracles that don't implement it are
// assumed unsafe.
type ConcurrencyReporter interface {
	ConcurrencySafe() bool
}

// Adapter wraps an Oracle with error containment
type Adapter struct {
	oracle Oracle
	// sem admits one call at a time for oracles that are not concurrency
	// safe. nil otherwise. Waiting for it honors the caller's context.
	sem     chan struct{}
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures an Adapter
type Option func(*Adapter)

// WithTimeout bounds each prediction. Zero disables the guard.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		a.timeout = d
	}
}

// WithLogger sets the adapter logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// NewAdapter wraps o. A nil oracle yields an adapter in the unloaded state.
func NewAdapter(o Oracle, opts ...Option) *Adapter {
	a := &Adapter{
		oracle: o,
		logger: logging.Named("oracle"),
	}
	for _, opt := range opts {
		opt(a)
	}

	if o != nil {
		if r, ok := o.(ConcurrencyReporter); !ok || !r.ConcurrencySafe() {
			a.sem = make(chan struct{}, 1)
		}
	}
	return a
}

// Loaded reports whether a model is attached
func (a *Adapter) Loaded() bool {
	return a != nil && a.oracle != nil
}

// Serialized reports whether calls are funneled through a lock
func (a *Adapter) Serialized() bool {
	return a.sem != nil
}

type outcome struct {
	price float64
	err   error
}

// Predict returns the model's price for record. Failures of any kind come
// back as PREDICTION_ERROR and the adapter remains usable.
//
// With a timeout, a call that overruns is abandoned but its goroutine runs
// until the oracle returns. For a serialized oracle that goroutine keeps the
// slot, so later calls wait for it under their own deadline and fail without
// starting more work.
func (a *Adapter) Predict(ctx context.Context, record types.FeatureRecord) (float64, error) {
	if !a.Loaded() {
		return 0, cperrors.New(cperrors.TypePrediction, "model not loaded")
	}
	if err := ctx.Err(); err != nil {
		return 0, cperrors.Prediction("prediction cancelled", err)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	if err := a.acquire(ctx); err != nil {
		a.logger.Warn("model busy", zap.Duration("timeout", a.timeout), zap.Error(err))
		return 0, cperrors.Prediction("model is busy with an earlier prediction", err)
	}

	features := record.Slice()

	if a.timeout <= 0 {
		defer a.release()
		price, err := a.invoke(features)
		return a.finish(price, err)
	}

	done := make(chan outcome, 1)
	go func() {
		defer a.release()
		price, err := a.invoke(features)
		done <- outcome{price: price, err: err}
	}()

	select {
	case out := <-done:
		return a.finish(out.price, out.err)
	case <-ctx.Done():
		a.logger.Warn("prediction abandoned", zap.Duration("timeout", a.timeout), zap.Error(ctx.Err()))
		return 0, cperrors.Prediction("prediction did not complete in time", ctx.Err())
	}
}

func (a *Adapter) acquire(ctx context.Context) error {
	if a.sem == nil {
		return nil
	}
	select {
	case a.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Adapter) release() {
	if a.sem != nil {
		<-a.sem
	}
}

func (a *Adapter) invoke(features []float64) (price float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("model panicked", zap.Any("panic", r))
			price = 0
			err = fmt.Errorf("model panicked: %v", r)
		}
	}()

	return a.oracle.Predict(features)
}

func (a *Adapter) finish(price float64, err error) (float64, error) {
	if err != nil {
		if cperrors.IsType(err, cperrors.TypePrediction) {
			return 0, err
		}
		return 0, cperrors.Prediction("model failed to produce a price", err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, cperrors.Newf(cperrors.TypePrediction, "model returned a non-finite price: %v", price)
	}
	if price < 0 {
		return 0, cperrors.Newf(cperrors.TypePrediction, "model returned a negative price: %v", price)
	}
	return price, nil
}

// Func adapts a plain function to the Oracle interface
type Func func(features []float64) (float64, error)

// Predict calls f
func (f Func) Predict(features []float64) (float64, error) {
	return f(features)
}

package estimator

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-price/core/encoding"
	"car-price/core/oracle"
	"car-price/core/types"
	cperrors "car-price/internal/errors"
)

func newService(t *testing.T, o oracle.Oracle) *Service {
	t.Helper()
	reg, err := encoding.NewRegistry(map[encoding.Feature][]string{
		encoding.FeatureModel:  {"Avanza", "Xenia"},
		encoding.FeatureRegion: {"Jakarta"},
		encoding.FeatureBrand:  {"Toyota", "Daihatsu"},
	})
	require.NoError(t, err)
	return New(reg, oracle.NewAdapter(o), types.CurrencyIDR)
}

var validInput = types.RawInput{
	Model:          "Xenia",
	Region:         "Jakarta",
	Brand:          "Daihatsu",
	Transmission:   types.TransmissionManual,
	Fuel:           types.FuelGasoline,
	Mileage:        40,
	EngineCapacity: 1.3,
	ProductionYear: 2019,
}

func TestEstimate(t *testing.T) {
	var seen []float64
	s := newService(t, oracle.Func(func(x []float64) (float64, error) {
		seen = x
		return 135250000.499, nil
	}))

	est, err := s.Estimate(context.Background(), validInput)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 0, 1, 1, 0, 40, 1.3, 2019}, seen)
	assert.Equal(t, types.FeatureRecord{1, 0, 1, 1, 0, 40, 1.3, 2019}, est.Record)
	assert.True(t, est.Price.Amount.Equal(decimal.RequireFromString("135250000.5")))
	assert.Equal(t, "Rp 135,250,000.50", est.Formatted)
}

func TestEstimateUnknownCategoryNeverReachesModel(t *testing.T) {
	called := false
	s := newService(t, oracle.Func(func([]float64) (float64, error) {
		called = true
		return 1, nil
	}))

	in := validInput
	in.Model = "Innova"
	_, err := s.Estimate(context.Background(), in)

	require.Error(t, err)
	assert.True(t, cperrors.IsType(err, cperrors.TypeUnknownCategory))
	assert.False(t, called)
}

func TestEstimatePredictionError(t *testing.T) {
	s := newService(t, oracle.Func(func([]float64) (float64, error) {
		return 0, errors.New("boom")
	}))

	_, err := s.Estimate(context.Background(), validInput)
	require.Error(t, err)
	assert.True(t, cperrors.IsType(err, cperrors.TypePrediction))
}

func TestEstimateWithIncompleteRegistryIsInternal(t *testing.T) {
	s := New(&encoding.Registry{}, oracle.NewAdapter(oracle.Func(func([]float64) (float64, error) {
		return 1, nil
	})), types.CurrencyIDR)

	_, err := s.Estimate(context.Background(), validInput)
	require.Error(t, err)
	assert.True(t, cperrors.IsType(err, cperrors.TypeInternal))
	assert.False(t, cperrors.IsType(err, cperrors.TypeUnknownCategory))
}

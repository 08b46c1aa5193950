package oracle

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-price/core/types"
	cperrors "car-price/internal/errors"
)

var sampleRecord = types.FeatureRecord{0, 0, 0, 1, 1, 50.0, 1.5, 2018}

func TestPredictReturnsOraclePrice(t *testing.T) {
	a := NewAdapter(Func(func(x []float64) (float64, error) {
		return x[types.FieldProductionYear] * 1000, nil
	}))

	price, err := a.Predict(context.Background(), sampleRecord)
	require.NoError(t, err)
	assert.Equal(t, 2018000.0, price)
}

func TestPredictWrapsFailuresAndStaysUsable(t *testing.T) {
	var calls int32
	a := NewAdapter(Func(func(x []float64) (float64, error) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			panic("index out of range")
		case 2:
			return 0, errors.New("internal numeric error")
		}
		return 42, nil
	}))

	_, err := a.Predict(context.Background(), sampleRecord)
	require.Error(t, err)
	assert.True(t, cperrors.IsType(err, cperrors.TypePrediction))
	assert.Contains(t, err.Error(), "panicked")

	_, err = a.Predict(context.Background(), sampleRecord)
	require.Error(t, err)
	assert.True(t, cperrors.IsType(err, cperrors.TypePrediction))
	assert.Contains(t, err.Error(), "internal numeric error")

	price, err := a.Predict(context.Background(), sampleRecord)
	require.NoError(t, err)
	assert.Equal(t, 42.0, price)
}

func TestPredictRejectsInvalidOutputs(t *testing.T) {
	for name, value := range map[string]float64{
		"nan":      math.NaN(),
		"inf":      math.Inf(1),
		"negative": -1,
	} {
		t.Run(name, func(t *testing.T) {
			a := NewAdapter(Func(func([]float64) (float64, error) { return value, nil }))
			_, err := a.Predict(context.Background(), sampleRecord)
			assert.True(t, cperrors.IsType(err, cperrors.TypePrediction))
		})
	}
}

func TestPredictUnloaded(t *testing.T) {
	a := NewAdapter(nil)
	assert.False(t, a.Loaded())

	_, err := a.Predict(context.Background(), sampleRecord)
	require.Error(t, err)
	assert.True(t, cperrors.IsType(err, cperrors.TypePrediction))
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestPredictWrongShape(t *testing.T) {
	forest := &Forest{
		NFeatures: 3,
		Trees:     []Tree{{ChildrenLeft: []int{-1}, ChildrenRight: []int{-1}, Feature: []int{-2}, Threshold: []float64{-2}, Value: []float64{7}}},
	}
	a := NewAdapter(forest)

	_, err := a.Predict(context.Background(), sampleRecord)
	require.Error(t, err)
	assert.True(t, cperrors.IsType(err, cperrors.TypePrediction))
	assert.Contains(t, err.Error(), "expected 3 features, got 8")
}

func TestPredictTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	a := NewAdapter(Func(func([]float64) (float64, error) {
		<-release
		return 1, nil
	}), WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := a.Predict(context.Background(), sampleRecord)
	require.Error(t, err)
	assert.True(t, cperrors.IsType(err, cperrors.TypePrediction))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPredictCancelledContext(t *testing.T) {
	a := NewAdapter(Func(func([]float64) (float64, error) { return 1, nil }))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Predict(ctx, sampleRecord)
	assert.True(t, cperrors.IsType(err, cperrors.TypePrediction))
}

func TestUnsafeOracleIsSerialized(t *testing.T) {
	var inFlight, maxInFlight int32
	unsafe := Func(func(x []float64) (float64, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return x[types.FieldMileage], nil
	})

	a := NewAdapter(unsafe)
	require.True(t, a.Serialized())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			record := sampleRecord
			record[types.FieldMileage] = float64(i)
			price, err := a.Predict(context.Background(), record)
			assert.NoError(t, err)
			assert.Equal(t, float64(i), price)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestForestIsNotSerialized(t *testing.T) {
	a := NewAdapter(stumpForest())
	assert.False(t, a.Serialized())
}

func TestHungUnsafeOracleDoesNotQueueWork(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	a := NewAdapter(Func(func([]float64) (float64, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-release
		}
		return 1, nil
	}), WithTimeout(30*time.Millisecond))
	require.True(t, a.Serialized())

	_, err := a.Predict(context.Background(), sampleRecord)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// the first call still holds the model, so these give up without calling it
	for i := 0; i < 3; i++ {
		_, err = a.Predict(context.Background(), sampleRecord)
		require.Error(t, err)
		assert.True(t, cperrors.IsType(err, cperrors.TypePrediction))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	close(release)
	require.Eventually(t, func() bool {
		price, err := a.Predict(context.Background(), sampleRecord)
		return err == nil && price == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// Package artifacts - Loaded artifact bundle
package artifacts

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"car-price/core/dataset"
	"car-price/core/encoding"
	"car-price/core/estimator"
	"car-price/core/oracle"
	"car-price/core/types"
	cperrors "car-price/internal/errors"
	"car-price/internal/logging"
)

// Options tune how artifacts are turned into services
type Options struct {
	// PredictTimeout bounds each model call, zero disables it
	PredictTimeout time.Duration
}

// Bundle is the immutable handle produced at startup. Prediction and the
// dataset load independently: a broken model disables prediction only.
type Bundle struct {
	Manifest *Manifest

	estimator     *estimator.Service
	predictionErr error

	dataset    *dataset.Dataset
	datasetErr error
}

// Estimator returns the prediction service, or the ARTIFACT_LOAD_ERROR that
// kept it from loading
func (b *Bundle) Estimator() (*estimator.Service, error) {
	if b.predictionErr != nil {
		return nil, b.predictionErr
	}
	return b.estimator, nil
}

// Dataset returns the dataset, or the error that kept it from loading
func (b *Bundle) Dataset() (*dataset.Dataset, error) {
	if b.datasetErr != nil {
		return nil, b.datasetErr
	}
	return b.dataset, nil
}

// Load reads every artifact named by the manifest
func Load(ctx context.Context, m *Manifest, opts Options) *Bundle {
	logger := logging.Named("artifacts")
	b := &Bundle{Manifest: m}

	b.estimator, b.predictionErr = loadEstimator(m, opts)
	if b.predictionErr != nil {
		logger.Error("prediction disabled", zap.Error(b.predictionErr))
	} else {
		logger.Info("prediction artifacts loaded", zap.String("model", m.Resolve(m.Model.Path)))
	}

	if ctx.Err() != nil {
		b.datasetErr = ctx.Err()
		return b
	}

	b.dataset, b.datasetErr = loadDataset(m)
	if b.datasetErr != nil {
		logger.Warn("dataset unavailable", zap.Error(b.datasetErr))
	} else {
		logger.Info("dataset loaded", zap.Int("rows", b.dataset.Len()))
	}

	return b
}

// LoadFile reads the manifest at path and then its artifacts. A manifest
// that cannot be read disables everything.
func LoadFile(ctx context.Context, path string, opts Options) (*Bundle, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, cperrors.ArtifactLoad("manifest "+path, err)
	}
	return Load(ctx, m, opts), nil
}

func loadEstimator(m *Manifest, opts Options) (*estimator.Service, error) {
	vocabularies := make(map[encoding.Feature][]string, len(m.Vocabularies))
	for _, block := range m.Vocabularies {
		feature, err := encoding.ParseFeature(block.Feature)
		if err != nil {
			return nil, cperrors.ArtifactLoad(fmt.Sprintf("vocabulary %q", block.Feature), err)
		}
		values, err := readVocabulary(m, block)
		if err != nil {
			return nil, cperrors.ArtifactLoad(fmt.Sprintf("vocabulary %q", block.Feature), err)
		}
		vocabularies[feature] = values
	}

	registry, err := encoding.NewRegistry(vocabularies)
	if err != nil {
		return nil, cperrors.ArtifactLoad("vocabularies", err)
	}

	modelPath := m.Resolve(m.Model.Path)
	forest, err := oracle.LoadForest(modelPath)
	if err != nil {
		return nil, cperrors.ArtifactLoad("model "+modelPath, err)
	}
	if err := checkFeatureNames(forest); err != nil {
		return nil, cperrors.ArtifactLoad("model "+modelPath, err)
	}

	adapter := oracle.NewAdapter(forest, oracle.WithTimeout(opts.PredictTimeout))
	return estimator.New(registry, adapter, m.PriceCurrency()), nil
}

// checkFeatureNames makes sure the model was trained on the record layout
func checkFeatureNames(f *oracle.Forest) error {
	if f.NFeatures != types.FeatureCount {
		return fmt.Errorf("model expects %d features, records have %d", f.NFeatures, types.FeatureCount)
	}
	if len(f.FeatureNames) == 0 {
		return nil
	}
	for i, name := range f.FeatureNames {
		if name != types.FeatureNames[i] {
			return fmt.Errorf("model feature %d is %q, expected %q", i, name, types.FeatureNames[i])
		}
	}
	return nil
}

func readVocabulary(m *Manifest, block VocabularyBlock) ([]string, error) {
	if block.File == "" {
		return block.Values, nil
	}

	f, err := os.Open(m.Resolve(block.File))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var values []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		values = append(values, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func loadDataset(m *Manifest) (*dataset.Dataset, error) {
	if m.Dataset == nil {
		return nil, cperrors.NotFound("dataset", "no dataset block in manifest")
	}
	path := m.Resolve(m.Dataset.Path)
	d, err := dataset.Load(path, m.DatasetColumns())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cperrors.NotFound("dataset", path)
		}
		return nil, cperrors.Parsing("failed to read dataset "+path, err)
	}
	return d, nil
}

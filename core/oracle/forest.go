// Package oracle - Tree ensemble model
package oracle

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Tree is one regression tree in parallel-array form. Node i is a leaf when
// ChildrenLeft[i] is -1. Internal nodes send x to the left child when
// x[Feature[i]] <= Threshold[i].
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// Forest is a random forest regressor. Its prediction is the mean of its
// trees' predictions.
type Forest struct {
	NFeatures    int      `json:"n_features"`
	FeatureNames []string `json:"feature_names,omitempty"`
	Trees        []Tree   `json:"trees"`
}

// ParseForest decodes and validates a forest
func ParseForest(data []byte) (*Forest, error) {
	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode forest: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadForest reads a forest from a JSON file
func LoadForest(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseForest(data)
}

// Validate checks that every tree is well formed and terminates
func (f *Forest) Validate() error {
	if f.NFeatures <= 0 {
		return fmt.Errorf("n_features must be positive, got %d", f.NFeatures)
	}
	if len(f.FeatureNames) > 0 && len(f.FeatureNames) != f.NFeatures {
		return fmt.Errorf("feature_names has %d entries, n_features is %d", len(f.FeatureNames), f.NFeatures)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.NFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (t *Tree) validate(nFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays differ in length")
	}

	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == -1 || right == -1 {
			if left != right {
				return fmt.Errorf("node %d has exactly one child", i)
			}
			if math.IsNaN(t.Value[i]) || math.IsInf(t.Value[i], 0) {
				return fmt.Errorf("leaf %d has non-finite value", i)
			}
			continue
		}
		// children always come after their parent, which rules out cycles
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d has out of range children (%d, %d)", i, left, right)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d", i, t.Feature[i])
		}
	}
	return nil
}

func (t *Tree) predict(x []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// Predict implements Oracle
func (f *Forest) Predict(features []float64) (float64, error) {
	if len(features) != f.NFeatures {
		return 0, fmt.Errorf("expected %d features, got %d", f.NFeatures, len(features))
	}
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].predict(features)
	}
	return sum / float64(len(f.Trees)), nil
}

// ConcurrencySafe implements ConcurrencyReporter. A forest is never mutated
// after loading.
func (f *Forest) ConcurrencySafe() bool {
	return true
}

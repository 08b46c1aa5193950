// Package encoding - Categorical encoder registry
// Each categorical feature has a fixed vocabulary. Codes are assigned in the
// order the vocabulary was supplied and never change after Build.
package encoding

import (
	"fmt"
	"strings"

	cperrors "car-price/internal/errors"
)

// Feature names a categorical input
type Feature string

const (
	FeatureModel  Feature = "model"
	FeatureRegion Feature = "region"
	FeatureBrand  Feature = "brand"
)

// Features lists the categorical features in record order
var Features = []Feature{FeatureModel, FeatureRegion, FeatureBrand}

// ParseFeature resolves a feature name
func ParseFeature(name string) (Feature, error) {
	f := Feature(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Features {
		if f == known {
			return f, nil
		}
	}
	return "", cperrors.Input(fmt.Sprintf("unknown categorical feature: %q", name))
}

// EncodingMap maps vocabulary entries to integer codes
type EncodingMap struct {
	feature Feature
	values  []string
	codes   map[string]int
}

// Build creates an encoding map from an ordered vocabulary.
// The first entry gets code 0, the second 1, and so on.
func Build(feature Feature, vocabulary []string) (*EncodingMap, error) {
	m := &EncodingMap{
		feature: feature,
		values:  make([]string, len(vocabulary)),
		codes:   make(map[string]int, len(vocabulary)),
	}

	for i, v := range vocabulary {
		if v == "" {
			return nil, fmt.Errorf("%s vocabulary: empty entry at position %d", feature, i)
		}
		if prev, dup := m.codes[v]; dup {
			return nil, fmt.Errorf("%s vocabulary: %q appears at positions %d and %d", feature, v, prev, i)
		}
		m.codes[v] = i
		m.values[i] = v
	}

	return m, nil
}

// Feature returns the feature this map encodes
func (m *EncodingMap) Feature() Feature {
	return m.feature
}

// Encode returns the code for value, or an UNKNOWN_CATEGORY error
func (m *EncodingMap) Encode(value string) (int, error) {
	code, ok := m.codes[value]
	if !ok {
		return 0, cperrors.UnknownCategory(string(m.feature), value)
	}
	return code, nil
}

// Decode returns the vocabulary entry for code
func (m *EncodingMap) Decode(code int) (string, bool) {
	if code < 0 || code >= len(m.values) {
		return "", false
	}
	return m.values[code], true
}

// Contains reports whether value is in the vocabulary
func (m *EncodingMap) Contains(value string) bool {
	_, ok := m.codes[value]
	return ok
}

// Values returns a copy of the vocabulary in code order
func (m *EncodingMap) Values() []string {
	out := make([]string, len(m.values))
	copy(out, m.values)
	return out
}

// Len returns the vocabulary size
func (m *EncodingMap) Len() int {
	return len(m.values)
}

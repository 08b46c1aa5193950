// Package encoding - Registry of the three categorical encoders
package encoding

import (
	"fmt"

	cperrors "car-price/internal/errors"
)

// Registry holds one encoding map per categorical feature.
// It is immutable once built and safe for concurrent reads.
type Registry struct {
	maps map[Feature]*EncodingMap
}

// NewRegistry builds a registry from one vocabulary per feature.
// Every feature in Features must be present.
func NewRegistry(vocabularies map[Feature][]string) (*Registry, error) {
	r := &Registry{maps: make(map[Feature]*EncodingMap, len(Features))}

	for _, f := range Features {
		vocab, ok := vocabularies[f]
		if !ok {
			return nil, fmt.Errorf("missing vocabulary for %s", f)
		}
		m, err := Build(f, vocab)
		if err != nil {
			return nil, err
		}
		r.maps[f] = m
	}

	for f := range vocabularies {
		if _, ok := r.maps[f]; !ok {
			return nil, fmt.Errorf("vocabulary supplied for unknown feature %q", f)
		}
	}

	return r, nil
}

// Map returns the encoding map for a feature
func (r *Registry) Map(f Feature) (*EncodingMap, bool) {
	m, ok := r.maps[f]
	return m, ok
}

// Encode encodes value for feature f
func (r *Registry) Encode(f Feature, value string) (int, error) {
	m, ok := r.maps[f]
	if !ok {
		return 0, cperrors.Newf(cperrors.TypeInternal, "no vocabulary registered for %q", f)
	}
	return m.Encode(value)
}

// Vocabularies returns every vocabulary keyed by feature
func (r *Registry) Vocabularies() map[Feature][]string {
	out := make(map[Feature][]string, len(r.maps))
	for f, m := range r.maps {
		out[f] = m.Values()
	}
	return out
}

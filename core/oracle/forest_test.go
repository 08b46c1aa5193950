package oracle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stumpForest has two trees over 8 features:
// tree 0 splits on production year at 2015 (100 / 200),
// tree 1 splits on transmission at 0.5 (120 / 180).
func stumpForest() *Forest {
	return &Forest{
		NFeatures: 8,
		Trees: []Tree{
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{7, -2, -2},
				Threshold:     []float64{2015, -2, -2},
				Value:         []float64{150, 100, 200},
			},
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{3, -2, -2},
				Threshold:     []float64{0.5, -2, -2},
				Value:         []float64{150, 120, 180},
			},
		},
	}
}

func TestForestPredictAveragesTrees(t *testing.T) {
	f := stumpForest()
	require.NoError(t, f.Validate())

	tests := []struct {
		name     string
		year     float64
		manual   float64
		expected float64
	}{
		{"old automatic", 2010, 0, (100 + 120) / 2.0},
		{"old manual", 2010, 1, (100 + 180) / 2.0},
		{"threshold goes left", 2015, 0, (100 + 120) / 2.0},
		{"new manual", 2020, 1, (200 + 180) / 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := []float64{0, 0, 0, tt.manual, 0, 50, 1.5, tt.year}
			got, err := f.Predict(x)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseForestFromJSON(t *testing.T) {
	data := []byte(`{
		"n_features": 8,
		"feature_names": ["model_mobil","wilayah","merk_mobil","transmisi","bahan_bakar","jarak_tempuh","kapasitas_mesin","tahun_produksi"],
		"trees": [{
			"children_left":  [1, -1, -1],
			"children_right": [2, -1, -1],
			"feature":        [5, -2, -2],
			"threshold":      [100.0, -2, -2],
			"value":          [0, 90000000, 60000000]
		}]
	}`)

	f, err := ParseForest(data)
	require.NoError(t, err)
	assert.Len(t, f.FeatureNames, 8)

	got, err := f.Predict([]float64{0, 0, 0, 0, 0, 150, 1.5, 2018})
	require.NoError(t, err)
	assert.Equal(t, 60000000.0, got)
}

func TestLoadForest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"n_features":1,"trees":[{"children_left":[-1],"children_right":[-1],"feature":[-2],"threshold":[-2],"value":[5]}]}`), 0644))

	f, err := LoadForest(path)
	require.NoError(t, err)
	got, err := f.Predict([]float64{3})
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)

	_, err = LoadForest(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestForestValidateRejectsMalformedTrees(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Forest)
	}{
		{"no trees", func(f *Forest) { f.Trees = nil }},
		{"no features", func(f *Forest) { f.NFeatures = 0 }},
		{"feature names mismatch", func(f *Forest) { f.FeatureNames = []string{"a"} }},
		{"ragged arrays", func(f *Forest) { f.Trees[0].Value = f.Trees[0].Value[:2] }},
		{"cycle", func(f *Forest) { f.Trees[0].ChildrenLeft[0] = 0 }},
		{"child out of range", func(f *Forest) { f.Trees[1].ChildrenRight[0] = 9 }},
		{"single child", func(f *Forest) { f.Trees[0].ChildrenLeft[1] = 2 }},
		{"feature out of range", func(f *Forest) { f.Trees[0].Feature[0] = 8 }},
		{"empty tree", func(f *Forest) { f.Trees[0] = Tree{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := stumpForest()
			tt.mutate(f)
			assert.Error(t, f.Validate())
		})
	}
}

func TestParseForestRejectsBadJSON(t *testing.T) {
	_, err := ParseForest([]byte(`{"n_features": "eight"}`))
	assert.Error(t, err)
}

// Package artifacts - Startup artifact manifest
// The manifest is an HCL file naming the trained model, the categorical
// vocabularies, and the dataset. Relative paths resolve against the
// manifest's directory.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"car-price/core/dataset"
	"car-price/core/encoding"
	"car-price/core/types"
)

// FormatTreeEnsemble is the JSON random forest export
const FormatTreeEnsemble = "tree_ensemble"

// Manifest describes the artifacts to load
type Manifest struct {
	Model        ModelBlock        `hcl:"model,block"`
	Vocabularies []VocabularyBlock `hcl:"vocabulary,block"`
	Dataset      *DatasetBlock     `hcl:"dataset,block"`
	Currency     *CurrencyBlock    `hcl:"currency,block"`

	// Dir is the directory relative paths resolve against
	Dir string
}

// ModelBlock locates the trained model
type ModelBlock struct {
	Path   string `hcl:"path"`
	Format string `hcl:"format,optional"`
}

// VocabularyBlock holds the valid values of one categorical feature, either
// inline or in a file with one value per line
type VocabularyBlock struct {
	Feature string   `hcl:"feature,label"`
	File    string   `hcl:"file,optional"`
	Values  []string `hcl:"values,optional"`
}

// DatasetBlock locates the sale dataset
type DatasetBlock struct {
	Path        string `hcl:"path"`
	YearColumn  string `hcl:"year_column,optional"`
	BrandColumn string `hcl:"brand_column,optional"`
	PriceColumn string `hcl:"price_column,optional"`
}

// CurrencyBlock sets the currency predictions are reported in
type CurrencyBlock struct {
	Code   string `hcl:"code"`
	Symbol string `hcl:"symbol,optional"`
}

// LoadManifest reads and decodes a manifest file
func LoadManifest(path string) (*Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(src, path)
}

// ParseManifest decodes manifest source. filename is used for diagnostics
// and as the base for relative paths.
func ParseManifest(src []byte, filename string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, formatDiagnostics(diags)
	}

	var m Manifest
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &m); diags.HasErrors() {
		return nil, formatDiagnostics(diags)
	}
	m.Dir = filepath.Dir(filename)

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Model.Path == "" {
		return fmt.Errorf("model.path is required")
	}
	if m.Model.Format == "" {
		m.Model.Format = FormatTreeEnsemble
	}
	if m.Model.Format != FormatTreeEnsemble {
		return fmt.Errorf("unsupported model format %q", m.Model.Format)
	}

	seen := make(map[encoding.Feature]bool)
	for i, v := range m.Vocabularies {
		feature, err := encoding.ParseFeature(v.Feature)
		if err != nil {
			return err
		}
		if seen[feature] {
			return fmt.Errorf("vocabulary %q declared twice", feature)
		}
		seen[feature] = true
		m.Vocabularies[i].Feature = string(feature)
		if v.File != "" && len(v.Values) > 0 {
			return fmt.Errorf("vocabulary %q sets both file and values", v.Feature)
		}
	}
	return nil
}

// Resolve returns path relative to the manifest directory unless it is absolute
func (m *Manifest) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Dir, path)
}

// DatasetColumns returns the configured column names, defaulting unset ones
func (m *Manifest) DatasetColumns() dataset.Columns {
	cols := dataset.DefaultColumns()
	if m.Dataset == nil {
		return cols
	}
	if m.Dataset.YearColumn != "" {
		cols.Year = m.Dataset.YearColumn
	}
	if m.Dataset.BrandColumn != "" {
		cols.Brand = m.Dataset.BrandColumn
	}
	if m.Dataset.PriceColumn != "" {
		cols.Price = m.Dataset.PriceColumn
	}
	return cols
}

// PriceCurrency returns the configured currency, IDR when unset
func (m *Manifest) PriceCurrency() types.Currency {
	if m.Currency == nil {
		return types.CurrencyIDR
	}
	return types.Currency{Code: m.Currency.Code, Symbol: m.Currency.Symbol}
}

// evalContext exposes the process environment as env.NAME
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = cty.StringVal(value)
	}

	envVal := cty.EmptyObjectVal
	if len(env) > 0 {
		envVal = cty.ObjectVal(env)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envVal,
		},
	}
}

func formatDiagnostics(diags hcl.Diagnostics) error {
	var msgs []string
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		msg := diag.Summary
		if diag.Detail != "" {
			msg += ": " + diag.Detail
		}
		if diag.Subject != nil {
			msg = fmt.Sprintf("%s:%d: %s", diag.Subject.Filename, diag.Subject.Start.Line, msg)
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("invalid manifest: %s", strings.Join(msgs, "; "))
}

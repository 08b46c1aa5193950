// Package dataset - Chart series
package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultHistogramBins is the bin count of the production year chart
const DefaultHistogramBins = 20

// Bin is one histogram bucket covering [Lower, Upper). The last bucket also
// includes Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is the distribution of one numeric column
type Histogram struct {
	Column  string `json:"column"`
	Bins    []Bin  `json:"bins"`
	Skipped int    `json:"skipped"`
	Warning string `json:"warning,omitempty"`
}

// YearHistogram buckets production years into equal-width bins spanning
// the observed range. Cells that are not numbers are skipped.
func (d *Dataset) YearHistogram(bins int) Histogram {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	column := d.columns.Year
	h := Histogram{Column: column, Bins: []Bin{}}

	if !d.HasColumn(column) {
		h.Warning = missingColumn(column)
		return h
	}

	values := make([]float64, 0, len(d.rows))
	for _, row := range d.rows {
		cell, ok := d.cell(row, column)
		if !ok {
			h.Skipped++
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			h.Skipped++
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return h
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	h.Bins = make([]Bin, bins)
	for i := range h.Bins {
		h.Bins[i].Lower = lo + float64(i)*width
		h.Bins[i].Upper = lo + float64(i+1)*width
	}
	h.Bins[bins-1].Upper = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		h.Bins[i].Count++
	}

	return h
}

// BrandPrice is the mean sale price of one brand
type BrandPrice struct {
	Brand        string          `json:"brand"`
	AveragePrice decimal.Decimal `json:"average_price"`
	Count        int             `json:"count"`
}

// BrandPrices is the mean price per brand, cheapest first
type BrandPrices struct {
	Brands  []BrandPrice `json:"brands"`
	Skipped int          `json:"skipped"`
	Warning string       `json:"warning,omitempty"`
}

// AveragePriceByBrand groups rows by brand and averages their price.
// Rows with an empty brand or an unparseable price are skipped.
func (d *Dataset) AveragePriceByBrand() BrandPrices {
	out := BrandPrices{Brands: []BrandPrice{}}

	for _, column := range []string{d.columns.Brand, d.columns.Price} {
		if !d.HasColumn(column) {
			out.Warning = missingColumn(column)
			return out
		}
	}

	type acc struct {
		sum   decimal.Decimal
		count int
	}
	groups := make(map[string]*acc)

	for _, row := range d.rows {
		brand, ok := d.cell(row, d.columns.Brand)
		if !ok || brand == "" {
			out.Skipped++
			continue
		}
		raw, ok := d.cell(row, d.columns.Price)
		if !ok {
			out.Skipped++
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			out.Skipped++
			continue
		}

		g, ok := groups[brand]
		if !ok {
			g = &acc{}
			groups[brand] = g
		}
		g.sum = g.sum.Add(price)
		g.count++
	}

	for brand, g := range groups {
		out.Brands = append(out.Brands, BrandPrice{
			Brand:        brand,
			AveragePrice: g.sum.Div(decimal.NewFromInt(int64(g.count))).Round(2),
			Count:        g.count,
		})
	}

	sort.Slice(out.Brands, func(i, j int) bool {
		a, b := out.Brands[i], out.Brands[j]
		if c := a.AveragePrice.Cmp(b.AveragePrice); c != 0 {
			return c < 0
		}
		return a.Brand < b.Brand
	})

	return out
}

func missingColumn(column string) string {
	return fmt.Sprintf("column %q not found in dataset", column)
}

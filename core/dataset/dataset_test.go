package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `model_mobil,wilayah,merk_mobil,harga,tahun_produksi
Avanza,Jakarta,Toyota,150000000,2018
Xenia,Bandung,Daihatsu,120000000,2017
Brio,Jakarta,Honda,140000000,2020
Innova,Surabaya,Toyota,300000000,2019
Sigra,Jakarta,Daihatsu,100000000,2010
Jazz,Bandung,Honda,n/a,unknown
`

func readSample(t *testing.T) *Dataset {
	t.Helper()
	d, err := Read(strings.NewReader(sampleCSV), DefaultColumns())
	require.NoError(t, err)
	return d
}

func TestReadParsesHeaderAndRows(t *testing.T) {
	d := readSample(t)

	assert.Equal(t, 6, d.Len())
	assert.Equal(t, []string{"model_mobil", "wilayah", "merk_mobil", "harga", "tahun_produksi"}, d.Header())
	assert.True(t, d.HasColumn("harga"))
	assert.False(t, d.HasColumn("warna"))
}

func TestReadStripsByteOrderMark(t *testing.T) {
	d, err := Read(strings.NewReader("\ufeffmerk_mobil,harga\nToyota,1\n"), DefaultColumns())
	require.NoError(t, err)
	assert.True(t, d.HasColumn("merk_mobil"))
}

func TestReadEmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""), DefaultColumns())
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "dataset.csv"), DefaultColumns())
	assert.True(t, os.IsNotExist(err))
}

func TestPage(t *testing.T) {
	d := readSample(t)

	p := d.Page(1, 2)
	assert.Equal(t, 6, p.Total)
	assert.Equal(t, 1, p.Offset)
	require.Len(t, p.Rows, 2)
	assert.Equal(t, "Xenia", p.Rows[0][0])
	assert.Equal(t, "Brio", p.Rows[1][0])

	assert.Len(t, d.Page(0, 0).Rows, 6)
	assert.Len(t, d.Page(4, 100).Rows, 2)
	assert.Empty(t, d.Page(50, 10).Rows)
	assert.Equal(t, 0, d.Page(-3, 1).Offset)

	// rows handed out are copies
	p.Rows[0][0] = "changed"
	assert.Equal(t, "Xenia", d.Page(1, 1).Rows[0][0])
}

func TestYearHistogram(t *testing.T) {
	d := readSample(t)

	h := d.YearHistogram(5)
	assert.Empty(t, h.Warning)
	assert.Equal(t, 1, h.Skipped)
	require.Len(t, h.Bins, 5)

	// 2010..2020 in bins of width 2
	assert.Equal(t, 2010.0, h.Bins[0].Lower)
	assert.Equal(t, 2020.0, h.Bins[4].Upper)

	counts := make([]int, len(h.Bins))
	total := 0
	for i, b := range h.Bins {
		counts[i] = b.Count
		total += b.Count
	}
	assert.Equal(t, []int{1, 0, 0, 1, 3}, counts)
	assert.Equal(t, 5, total)
}

func TestYearHistogramDefaultsAndSingleValue(t *testing.T) {
	d, err := Read(strings.NewReader("tahun_produksi\n2018\n2018\n"), DefaultColumns())
	require.NoError(t, err)

	h := d.YearHistogram(0)
	require.Len(t, h.Bins, DefaultHistogramBins)
	assert.Equal(t, 2017.5, h.Bins[0].Lower)
	assert.Equal(t, 2018.5, h.Bins[DefaultHistogramBins-1].Upper)

	total := 0
	for _, b := range h.Bins {
		total += b.Count
	}
	assert.Equal(t, 2, total)
}

func TestYearHistogramMissingColumn(t *testing.T) {
	d, err := Read(strings.NewReader("merk_mobil,harga\nToyota,1\n"), DefaultColumns())
	require.NoError(t, err)

	h := d.YearHistogram(20)
	assert.Contains(t, h.Warning, "tahun_produksi")
	assert.Empty(t, h.Bins)
}

func TestAveragePriceByBrand(t *testing.T) {
	d := readSample(t)

	bp := d.AveragePriceByBrand()
	assert.Empty(t, bp.Warning)
	assert.Equal(t, 1, bp.Skipped)
	require.Len(t, bp.Brands, 3)

	assert.Equal(t, "Daihatsu", bp.Brands[0].Brand)
	assert.True(t, bp.Brands[0].AveragePrice.Equal(decimal.NewFromInt(110000000)))
	assert.Equal(t, 2, bp.Brands[0].Count)

	assert.Equal(t, "Honda", bp.Brands[1].Brand)
	assert.True(t, bp.Brands[1].AveragePrice.Equal(decimal.NewFromInt(140000000)))
	assert.Equal(t, 1, bp.Brands[1].Count)

	assert.Equal(t, "Toyota", bp.Brands[2].Brand)
	assert.True(t, bp.Brands[2].AveragePrice.Equal(decimal.NewFromInt(225000000)))
}

func TestAveragePriceByBrandTiesSortByName(t *testing.T) {
	d, err := Read(strings.NewReader("merk_mobil,harga\nSuzuki,10\nHonda,10\nMazda,10.005\n"), DefaultColumns())
	require.NoError(t, err)

	bp := d.AveragePriceByBrand()
	require.Len(t, bp.Brands, 3)
	assert.Equal(t, "Honda", bp.Brands[0].Brand)
	assert.Equal(t, "Suzuki", bp.Brands[1].Brand)
	assert.Equal(t, "Mazda", bp.Brands[2].Brand)
	assert.Equal(t, "10.01", bp.Brands[2].AveragePrice.StringFixed(2))
}

func TestAveragePriceByBrandMissingColumn(t *testing.T) {
	d, err := Read(strings.NewReader("merk_mobil,tahun_produksi\nToyota,2018\n"), DefaultColumns())
	require.NoError(t, err)

	bp := d.AveragePriceByBrand()
	assert.Contains(t, bp.Warning, "harga")
	assert.Empty(t, bp.Brands)
}

// Package types - Feature and price types shared by the prediction pipeline
package types

// Transmission is the gearbox type of a car
type Transmission string

const (
	TransmissionAutomatic Transmission = "automatic"
	TransmissionManual    Transmission = "manual"
)

// Fuel is the fuel type of a car
type Fuel string

const (
	FuelGasoline Fuel = "gasoline"
	FuelDiesel   Fuel = "diesel"
)

// RawInput is a prediction request as collected from a form
type RawInput struct {
	Model          string       `json:"model"`
	Region         string       `json:"region"`
	Brand          string       `json:"brand"`
	Transmission   Transmission `json:"transmission"`
	Fuel           Fuel         `json:"fuel"`
	Mileage        float64      `json:"mileage"`         // thousands of km
	EngineCapacity float64      `json:"engine_capacity"` // liters
	ProductionYear float64      `json:"production_year"`
}

// Feature positions inside a FeatureRecord. The model was trained on
// exactly this order.
const (
	FieldModel = iota
	FieldRegion
	FieldBrand
	FieldTransmission
	FieldFuel
	FieldMileage
	FieldEngineCapacity
	FieldProductionYear

	FeatureCount
)

// FeatureNames are the training column names, indexed by field position
var FeatureNames = [FeatureCount]string{
	"model_mobil",
	"wilayah",
	"merk_mobil",
	"transmisi",
	"bahan_bakar",
	"jarak_tempuh",
	"kapasitas_mesin",
	"tahun_produksi",
}

// FeatureRecord is the fixed-order numeric vector submitted to the model
type FeatureRecord [FeatureCount]float64

// Slice returns the record as a slice
func (r FeatureRecord) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, r[:])
	return out
}

// Named returns the record keyed by training column name
func (r FeatureRecord) Named() map[string]float64 {
	out := make(map[string]float64, FeatureCount)
	for i, name := range FeatureNames {
		out[name] = r[i]
	}
	return out
}

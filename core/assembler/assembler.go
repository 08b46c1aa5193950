// Package assembler - Feature vector assembly
// Turns a typed form submission into the fixed-order record the model was
// trained on. Numeric fields are passed through without range checks.
package assembler

import (
	"strings"

	"car-price/core/encoding"
	"car-price/core/types"
	cperrors "car-price/internal/errors"
)

// Binary codes used at training time. Changing these invalidates the model.
const (
	codeAutomatic = 0
	codeManual    = 1
	codeGasoline  = 0
	codeDiesel    = 1
)

// ParseTransmission maps a form value to a Transmission
func ParseTransmission(s string) (types.Transmission, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "automatic", "auto", "at":
		return types.TransmissionAutomatic, nil
	case "manual", "mt":
		return types.TransmissionManual, nil
	}
	return "", cperrors.UnknownCategory("transmission", s)
}

// ParseFuel maps a form value to a Fuel. "bensin" and "petrol" are
// accepted for gasoline.
func ParseFuel(s string) (types.Fuel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gasoline", "bensin", "petrol":
		return types.FuelGasoline, nil
	case "diesel", "solar":
		return types.FuelDiesel, nil
	}
	return "", cperrors.UnknownCategory("fuel", s)
}

func encodeTransmission(t types.Transmission) (float64, error) {
	parsed, err := ParseTransmission(string(t))
	if err != nil {
		return 0, err
	}
	if parsed == types.TransmissionManual {
		return codeManual, nil
	}
	return codeAutomatic, nil
}

func encodeFuel(f types.Fuel) (float64, error) {
	parsed, err := ParseFuel(string(f))
	if err != nil {
		return 0, err
	}
	if parsed == types.FuelDiesel {
		return codeDiesel, nil
	}
	return codeGasoline, nil
}

// Assemble builds a FeatureRecord from input. On any encoding failure the
// error is returned unchanged and no record is produced.
func Assemble(input types.RawInput, reg *encoding.Registry) (types.FeatureRecord, error) {
	var record types.FeatureRecord

	categorical := []struct {
		feature encoding.Feature
		value   string
		field   int
	}{
		{encoding.FeatureModel, input.Model, types.FieldModel},
		{encoding.FeatureRegion, input.Region, types.FieldRegion},
		{encoding.FeatureBrand, input.Brand, types.FieldBrand},
	}
	for _, c := range categorical {
		code, err := reg.Encode(c.feature, c.value)
		if err != nil {
			return types.FeatureRecord{}, err
		}
		record[c.field] = float64(code)
	}

	transmission, err := encodeTransmission(input.Transmission)
	if err != nil {
		return types.FeatureRecord{}, err
	}
	fuel, err := encodeFuel(input.Fuel)
	if err != nil {
		return types.FeatureRecord{}, err
	}

	record[types.FieldTransmission] = transmission
	record[types.FieldFuel] = fuel
	record[types.FieldMileage] = input.Mileage
	record[types.FieldEngineCapacity] = input.EngineCapacity
	record[types.FieldProductionYear] = input.ProductionYear

	return record, nil
}

// Package cmd - predict command
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"car-price/core/encoding"
	"car-price/core/estimator"
	"car-price/core/types"
	cperrors "car-price/internal/errors"
)

var (
	predictInput types.RawInput
	predictTrans string
	predictFuel  string
	predictJSON  bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the price of one car",
	Long: `Predict the sale price of one car with the configured artifacts.

Examples:
  car-price predict --model Avanza --region Jakarta --brand Toyota \
    --transmission manual --fuel diesel --mileage 50 --engine 1.5 --year 2018
  car-price predict --json ...`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictInput.Model, "model", "", "car model")
	f.StringVar(&predictInput.Region, "region", "", "sale region")
	f.StringVar(&predictInput.Brand, "brand", "", "car brand")
	f.StringVar(&predictTrans, "transmission", "automatic", "automatic or manual")
	f.StringVar(&predictFuel, "fuel", "gasoline", "gasoline or diesel")
	f.Float64Var(&predictInput.Mileage, "mileage", 0, "mileage in thousands of km")
	f.Float64Var(&predictInput.EngineCapacity, "engine", 0, "engine capacity in liters")
	f.Float64Var(&predictInput.ProductionYear, "year", 0, "production year")
	f.BoolVar(&predictJSON, "json", false, "print the full estimate as JSON")

	_ = predictCmd.MarkFlagRequired("model")
	_ = predictCmd.MarkFlagRequired("region")
	_ = predictCmd.MarkFlagRequired("brand")
}

func runPredict(cmd *cobra.Command, args []string) error {
	bundle, err := loadBundle(cmd.Context())
	if err != nil {
		return err
	}
	svc, err := bundle.Estimator()
	if err != nil {
		return err
	}

	input := predictInput
	input.Transmission = types.Transmission(predictTrans)
	input.Fuel = types.Fuel(predictFuel)

	est, err := svc.Estimate(cmd.Context(), input)
	if err != nil {
		if cperrors.IsType(err, cperrors.TypeUnknownCategory) {
			return fmt.Errorf("%w%s", err, choices(svc, err))
		}
		return err
	}

	return printEstimate(cmd, est)
}

func printEstimate(cmd *cobra.Command, est *estimator.Estimate) error {
	out := cmd.OutOrStdout()
	if !predictJSON {
		fmt.Fprintln(out, est.Formatted)
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(est)
}

// choices lists the known values for the feature an UNKNOWN_CATEGORY error
// names
func choices(svc *estimator.Service, err error) string {
	e, ok := cperrors.As(err)
	if !ok {
		return ""
	}
	name, _ := e.Context["feature"].(string)

	switch name {
	case "transmission":
		return " (choose automatic or manual)"
	case "fuel":
		return " (choose gasoline or diesel)"
	}

	feature, perr := encoding.ParseFeature(name)
	if perr != nil {
		return ""
	}
	m, ok := svc.Registry().Map(feature)
	if !ok {
		return ""
	}
	return fmt.Sprintf(" (choose one of: %s)", strings.Join(m.Values(), ", "))
}

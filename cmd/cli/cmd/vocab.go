// Package cmd - vocab command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"car-price/core/encoding"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab [feature]",
	Short: "List the known values of the categorical features",
	Long: `List the vocabulary of model, region or brand in code order.
Without an argument every feature is listed.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(encoding.FeatureModel), string(encoding.FeatureRegion), string(encoding.FeatureBrand)},
	RunE: func(cmd *cobra.Command, args []string) error {
		features := encoding.Features
		if len(args) == 1 {
			f, err := encoding.ParseFeature(args[0])
			if err != nil {
				return err
			}
			features = []encoding.Feature{f}
		}

		bundle, err := loadBundle(cmd.Context())
		if err != nil {
			return err
		}
		svc, err := bundle.Estimator()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, f := range features {
			m, ok := svc.Registry().Map(f)
			if !ok {
				continue
			}
			if len(features) > 1 {
				fmt.Fprintf(out, "%s:\n", f)
			}
			for code, value := range m.Values() {
				fmt.Fprintf(out, "  %3d  %s\n", code, value)
			}
		}
		return nil
	},
}

// Package main is the entry point for the car-price CLI.
package main

import (
	"os"

	"car-price/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

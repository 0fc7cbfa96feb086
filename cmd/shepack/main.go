// Package main provides the shepack CLI: packing VIS exposure FITS products
// into the chunked exposure store format and inspecting existing stores.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "shepack",
		Short: "Pack and inspect chunked exposure stores",
		Long: `Shepack converts VIS exposure FITS products (detector, background,
weight, and segmentation files) into a single chunked exposure store,
and inspects existing stores.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newInfoCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the CLI logger, at debug level when --verbose is set.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	return cfg.Build()
}

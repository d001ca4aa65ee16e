package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "3.0.0"

// NewRootCmd creates the root command for merit-extract.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merit-extract",
		Short: "Batch watershed delineation from the MERIT-Basins river network",
		Long: `merit-extract delineates the upstream watershed of each gauging station
in a station table: stations are snapped to their nearest river reach,
the upstream network is traced, and the corresponding unit catchments
are merged into a single polygon with gap and sliver repair.

Runs are resumable: stations already completed in a prior summary.csv
are skipped, rejected and failed stations are retried.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewRunCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

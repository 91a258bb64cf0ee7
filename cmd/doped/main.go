package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ============================================================================
// DOPED CLI — Degree of primary energy diversity from EIA statistics
// ============================================================================

const version = "0.3.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "doped",
		Short: "doped - degree of primary energy diversity",
		Long: `doped computes the degree of primary energy diversity (DoPED) from
monthly production, import and export statistics of coal, natural gas,
crude oil and biomass.

Examples:
  # Run with doped.toml and write CSV + JSON to ./out
  doped run --config doped.toml

  # Explicit inputs, custom range, spreadsheet output
  doped run --production prod.csv --imports imp.csv --exports exp.csv \
            --first-year 1990 --last-year 2020 --format xlsx,arrow

  # Inspect an input file
  doped discover --file prod.csv --format pretty`,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd(), newDiscoverCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "doped %s\n", version)
		},
	}
}

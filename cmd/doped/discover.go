package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/doped/schema"
)

func newDiscoverCmd() *cobra.Command {
	var (
		filePath string
		format   string
		sample   int
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Print the auto-detected layout and content of an input CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, "json", "pretty", "yaml"); err != nil {
				return err
			}

			data, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			opts := schema.DefaultDiscoverOptions()
			opts.SampleSize = sample
			opts.Name = filePath
			sch, err := schema.DiscoverFromCSV(data, opts)
			if err != nil {
				return fmt.Errorf("auto-detect failed: %w", err)
			}

			if !sch.HasAllSeries() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d recognised series not found: %s\n",
					len(sch.MissingSeries), strings.Join(sch.MissingSeries, ", "))
			}
			return writeDocument(cmd.OutOrStdout(), sch, format)
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Path to CSV data file (required)")
	cmd.Flags().StringVar(&format, "format", "pretty", "Output format: json, pretty, yaml")
	cmd.Flags().IntVar(&sample, "sample", 1000, "Rows inspected for column typing (0 = all)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

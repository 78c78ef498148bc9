package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tlfsplit/internal/manifest"
	"github.com/jackzampolin/tlfsplit/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <output-dir>",
	Short: "Validate a previously extracted output directory",
	Long: `Validate re-reads the manifest of a finished extraction and re-derives
its consistency guarantees from disk: files present and non-empty, page
counts matching, no page gaps or overlaps, all PDFs readable.

No source document is needed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := validate.Run(args[0], validate.Options{})
		switch {
		case errors.Is(err, manifest.ErrMissing):
			return fmt.Errorf("cannot validate: manifest.json not found in %s", args[0])
		case errors.Is(err, manifest.ErrCorrupt):
			return fmt.Errorf("cannot validate: invalid manifest.json format: %w", err)
		case err != nil:
			return err
		}

		fmt.Print(report.Summary())
		if !report.Passed() {
			return fmt.Errorf("validation failed (%d/%d checks passed)", report.PassedCount(), report.TotalChecks())
		}
		return nil
	},
}

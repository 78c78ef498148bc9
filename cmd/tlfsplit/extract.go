package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tlfsplit/internal/extract"
	"github.com/jackzampolin/tlfsplit/internal/validate"
)

var (
	extractOut      string
	extractDryRun   bool
	extractNoText   bool
	extractValidate bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <source.pdf>",
	Short: "Extract the narrative body and Section 14 TLFs from a CSR PDF",
	Long: `Extract splits a CSR PDF into its narrative body (pages 1-42) and one
sub-document per Table/Figure of Section 14 (pages 43 onward, bounded by the
References/Appendices headings), and writes a manifest describing the result.

Examples:
  tlfsplit extract csr.pdf --out ./extracted
  tlfsplit extract csr.pdf --out ./extracted --dry-run
  tlfsplit extract csr.pdf --out ./extracted --validate --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		res, err := extract.Run(cmd.Context(), extract.Request{
			SourcePath:        args[0],
			OutputDir:         extractOut,
			DryRun:            extractDryRun,
			NoText:            extractNoText || cfg.Extract.NoText,
			FallbackPdftotext: cfg.Extract.FallbackPdftotext,
			Logger:            log,
		})
		if err != nil {
			return err
		}

		fmt.Print(res.Summary())

		// Validation needs the files on disk, so a dry run skips it.
		if extractValidate && !extractDryRun {
			report, err := validate.Run(extractOut, validate.Options{})
			if err != nil {
				return fmt.Errorf("validation failed to start: %w", err)
			}
			fmt.Print(report.Summary())
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractOut, "out", "", "directory to save the extracted outputs")
	extractCmd.Flags().BoolVar(&extractDryRun, "dry-run", false, "detect TLFs without creating files")
	extractCmd.Flags().BoolVar(&extractNoText, "no-text", false, "skip plain-text extraction")
	extractCmd.Flags().BoolVar(&extractValidate, "validate", false, "validate the output directory after extraction")
	_ = extractCmd.MarkFlagRequired("out")
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tlfsplit/internal/config"
	"github.com/jackzampolin/tlfsplit/version"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tlfsplit",
	Short: "Split ICH E3 clinical study reports into narrative and TLF sub-documents",
	Long: `tlfsplit segments a clinical study report (ICH E3 format) into its
narrative body and the discrete Tables/Figures/Listings of Section 14.

Each TLF is identified by its heading ("Table 14.x.x" / "Figure 14.x.x"),
extracted as a standalone PDF (plus plain text), and recorded in a manifest
that a later validation run can independently re-check.`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.yaml to the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat("config.yaml"); err == nil {
			return fmt.Errorf("config.yaml already exists")
		}
		if err := config.WriteDefault("config.yaml"); err != nil {
			return err
		}
		fmt.Println("Wrote config.yaml")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.tlfsplit/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "print verbose progress steps",
	)

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	return cm.Get(), nil
}

// newLogger builds the run logger. --verbose lowers the level to info
// regardless of the configured level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose && level > slog.LevelInfo {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

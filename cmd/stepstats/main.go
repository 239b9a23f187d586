package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lucasjlepore/stepcadence/internal/config"
	"github.com/lucasjlepore/stepcadence/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "stepstats",
	Short: "Per-user daily step and cadence statistics",
	Long: `stepstats reduces daily step-cadence tables to per-user activity summaries.

For every user it reports, for the All, Walking and Active categories, the
number of valid days and the median and mean daily steps over those days.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging.Level, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	addRunFlags(analyzeCmd)
	analyzeCmd.Flags().StringP("input", "i", "", "Input .xlsx or .csv table")
	analyzeCmd.Flags().String("sheet", "", "Workbook sheet (default: first sheet)")
	_ = analyzeCmd.MarkFlagRequired("input")

	addRunFlags(fitCmd)
	fitCmd.Flags().String("user", "", "User ID for the FIT files")
	fitCmd.Flags().String("county", "", "countyCode of the user")
	fitCmd.Flags().String("census-area", "", "censusArea of the user")
	fitCmd.Flags().Bool("stride-cadence", false, "FIT cadence is strides/min; double it")
	_ = fitCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(analyzeCmd, fitCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "stepstats failed: %v\n", err)
		os.Exit(1)
	}
}

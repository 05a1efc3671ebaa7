package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github.com/ledgerline/txnetl/pkg/cleaner"
	"github.com/ledgerline/txnetl/pkg/config"
	"github.com/ledgerline/txnetl/pkg/pipeline"
	"github.com/ledgerline/txnetl/pkg/reader"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "txnetl",
	Short: "Customer transaction ETL pipeline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var runCmd = &cobra.Command{
	Use:   "run [flags] <input_csv>",
	Short: "Run the full pipeline: extract, clean, transform, load, report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		logger.Info("starting pipeline", "input", args[0], "db", cfg.DBPath)
		stats, err := pipeline.New(cfg, logger).Run(args[0])
		if err != nil {
			return err
		}

		logger.Info("done",
			"read", stats.Read,
			"cleaned", stats.Cleaned,
			"rejected", stats.Rejected,
			"flagged", stats.Flagged,
			"loaded", stats.Loaded)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <input_csv>",
	Short: "Parse and clean a file, pretty-printing the result without loading",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		raw, skipped, err := reader.New(logger).ReadFile(args[0])
		if err != nil {
			return err
		}
		result := cleaner.New(logger).Clean(raw)

		limit, _ := cmd.Flags().GetInt("limit")
		if limit > 0 && len(result.Accepted) > limit {
			result.Accepted = result.Accepted[:limit]
		}
		for _, t := range result.Accepted {
			pp.Println(t)
		}
		for _, reason := range result.Reasons {
			fmt.Println("rejected:", reason)
		}
		logger.Info("inspect complete", "accepted", len(result.Accepted), "rejected", result.Rejected, "skipped_rows", skipped)
		return nil
	},
}

func newLogger() *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "txnetl",
		Level:           level,
	})
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	runCmd.Flags().String("db", "data/transactions.db", "Output SQLite database path")
	runCmd.Flags().String("report-dir", ".", "Directory for report files")
	runCmd.Flags().String("reference-currency", "USD", "Currency all amounts are normalized to")
	runCmd.Flags().Int("batch-size", 100, "Rows per load commit")
	runCmd.Flags().String("rates-file", "", "YAML file with exchange rates and high-risk countries")

	inspectCmd.Flags().Int("limit", 0, "Print at most this many accepted records (0 = all)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(inspectCmd)
}

func main() {
	_ = gotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

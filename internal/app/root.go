// Package app contains the Cobra command tree for mlanalytics.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor   bool
	flagJSON      bool
	flagVerbose   bool
	flagConfig    string
	flagNoCharts  bool
	flagSQLite    bool
	flagOutputDir string
)

var rootCmd = &cobra.Command{
	Use:   "mlanalytics",
	Short: "Failure and break analysis for LLM evaluation exports",
	Long: `mlanalytics reads JSON exports of language-model evaluations and
computes failure, break and error-type probability tables. Tables are written
as CSV and JSON next to the input file, with optional PNG charts.

Every analysis takes the input file as its argument; when omitted, the path
is asked for interactively.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "mlanalytics", appVersion)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Use a subcommand:")
		fmt.Fprintln(out, "  benchmark     Failure rates by model, subject and complexity")
		fmt.Fprintln(out, "  breaks        Model-break tables for flat record maps")
		fmt.Fprintln(out, "  distribution  Value distributions per group, with charts")
		fmt.Fprintln(out, "  pairwise      Two-model break comparison")
		fmt.Fprintln(out, "  filter        Drop conversations with CJK model responses")
		fmt.Fprintln(out, "  chart         Render charts from exported tables")
		fmt.Fprintln(out, "  runs          List or inspect tables stored with --sqlite")
		fmt.Fprintln(out, "  doctor        Check whether the setup is healthy")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/mlanalytics/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print results as JSON instead of a summary")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoCharts, "no-charts", false, "Skip chart rendering")
	rootCmd.PersistentFlags().BoolVar(&flagSQLite, "sqlite", false, "Also store every table in a SQLite database")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", "", "Write outputs here instead of next to the input")
}

package app

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamaal505/MLAnalytics/internal/analyzer"
	"github.com/kamaal505/MLAnalytics/internal/chart"
	"github.com/kamaal505/MLAnalytics/internal/output"
	"github.com/kamaal505/MLAnalytics/internal/records"
	"github.com/kamaal505/MLAnalytics/internal/report"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark [input.json]",
	Short: "Failure rates by model, subject and complexity",
	Long: `Analyze a conversation export: the failure rate of every configured
model, per-subject and per-complexity failure rates, and the distribution of
complexity given that a model failed.

Outputs go to a benchmarking_data directory next to the input file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBenchmark,
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)
}

// Benchmark output names.
const (
	fileFailurePercentages  = "failure_percentages.json"
	fileFailureDistribution = "model_failure_distribution.json"
	tableBySubject          = "model_failure_distribution_by_subject"
	tableByComplexity       = "model_failure_distribution_by_complexity"
	tableConditional        = "conditional_failure_distribution"
	fileConditionalChart    = "conditional_failure_distribution_chart.png"
)

// benchmarkResult is every table the benchmark command produces.
type benchmarkResult struct {
	FailureRates map[string]float64               `json:"failure_percentages"`
	Distribution map[string]analyzer.OutcomeSplit `json:"model_failure_distribution"`
	BySubject    report.Table                     `json:"by_subject"`
	ByComplexity report.Table                     `json:"by_complexity"`
	Conditional  report.Table                     `json:"conditional_failure_distribution"`
}

func analyzeBenchmark(convs []records.Conversation) benchmarkResult {
	bySubject := analyzer.FailureDistribution(convs, analyzer.BySubject)
	byComplexity := analyzer.FailureDistribution(convs, analyzer.ByComplexity)

	return benchmarkResult{
		FailureRates: analyzer.FailureRates(convs),
		Distribution: analyzer.SplitByOutcome(bySubject),
		BySubject:    analyzer.RatesByCategory(bySubject).Table(tableBySubject, "Subject", true),
		ByComplexity: analyzer.RatesByCategory(byComplexity).Table(tableByComplexity, "Complexity", false),
		Conditional: report.FromNested(tableConditional, "ModelID", nil,
			analyzer.ConditionalRates(byComplexity)),
	}
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}

	convs, err := records.LoadConversations(s.input)
	if err != nil {
		return fmt.Errorf("loading %s: %w", filepath.Base(s.input), err)
	}
	slog.Debug("loaded conversations", "count", len(convs))

	result := analyzeBenchmark(convs)

	if err := s.open(s.cfg.BenchmarkDir); err != nil {
		return err
	}
	defer s.close()

	if err := s.dir.JSON(fileFailurePercentages, result.FailureRates); err != nil {
		return err
	}
	if err := s.dir.JSON(fileFailureDistribution, result.Distribution); err != nil {
		return err
	}
	for _, t := range []report.Table{result.BySubject, result.ByComplexity, result.Conditional} {
		if err := s.dir.Table(t); err != nil {
			return err
		}
	}
	err = s.chart(fileConditionalChart, func(path string, opts chart.Options) error {
		bars := chart.Bars(result.Conditional, result.Conditional.Columns())
		return chart.StackedBar(path, "Conditional Failure Probability by Complexity", bars, opts)
	})
	if err != nil {
		return err
	}

	if s.summary() {
		fmt.Fprintln(s.out, output.Section(fmt.Sprintf("Failure rates (%s conversations)", output.Count(len(convs)))))
		for _, model := range report.SortedKeys(result.FailureRates) {
			fmt.Fprintln(s.out, output.KeyValue(model, output.RateBar(result.FailureRates[model], s.cfg.Output.Width/4)))
		}
		s.table("By subject", result.BySubject)
		s.table("Complexity given failure", result.Conditional)
	}
	return s.finish(result)
}

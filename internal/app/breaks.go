package app

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/kamaal505/MLAnalytics/internal/analyzer"
	"github.com/kamaal505/MLAnalytics/internal/chart"
	"github.com/kamaal505/MLAnalytics/internal/output"
	"github.com/kamaal505/MLAnalytics/internal/records"
	"github.com/kamaal505/MLAnalytics/internal/report"
)

var breaksCmd = &cobra.Command{
	Use:   "breaks [input.json]",
	Short: "Model-break tables for flat record maps",
	Long: `Analyze a flat record map (ID → record with prompt_type, complexity,
topic, error_type and model_break_scenario): the break rate per prompt type
and per complexity, error types per prompt type, topics per break outcome and
the overall break distribution.

Only "yes"/"no" break scenarios are counted. Outputs go next to the input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBreaks,
}

func init() {
	rootCmd.AddCommand(breaksCmd)
}

// Breaks output names.
const (
	tableBreaksByPromptType = "model_break_scenario_by_prompt_type"
	tableErrorVsPromptType  = "probability_error_type_vs_prompt_type"
	tableComplexityBreaks   = "probability_complexity_vs_model_break"
	tableTopicBreaks        = "probability_topic_vs_model_break"
	fileOverallBreaks       = "overall_model_break_distribution.json"
	columnProbability       = "probability (%)"
)

// breaksResult is every table the breaks command produces.
type breaksResult struct {
	ByPromptType analyzer.BreakRateTable       `json:"by_prompt_type"`
	ErrorTypes   map[string]map[string]float64 `json:"error_type_vs_prompt_type"`
	ByComplexity analyzer.BreakRateTable       `json:"-"`
	Complexity   map[string]map[string]float64 `json:"complexity_vs_model_break"`
	Topics       map[string]map[string]float64 `json:"topic_vs_model_break"`
	Overall      *analyzer.OverallBreaks       `json:"overall"`
}

func analyzeBreaks(recs []records.FlatRecord) breaksResult {
	byComplexity := analyzer.BreaksBy(recs, records.FieldComplexity)
	res := breaksResult{
		ByPromptType: analyzer.BreaksBy(recs, records.FieldPromptType),
		ErrorTypes:   analyzer.ErrorTypeByPromptType(recs),
		ByComplexity: byComplexity,
		Complexity:   byComplexity.RatesOnly(),
		Topics:       analyzer.TopicBreaks(recs),
	}
	if overall, ok := analyzer.OverallBreakDistribution(recs); ok {
		res.Overall = &overall
	}
	return res
}

// overallJSON is the overall distribution, or {} when nothing qualified.
func (r breaksResult) overallJSON() any {
	if r.Overall == nil {
		return struct{}{}
	}
	return r.Overall
}

var outcomeColors = map[string]drawing.Color{
	analyzer.OutcomeFailure + " (%)": chart.FailureColor,
	analyzer.OutcomeSuccess + " (%)": chart.SuccessColor,
}

func runBreaks(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}

	recs, err := records.LoadFlatRecords(s.input)
	if err != nil {
		return fmt.Errorf("loading %s: %w", filepath.Base(s.input), err)
	}
	slog.Debug("loaded flat records", "count", len(recs))

	result := analyzeBreaks(recs)
	byPromptType := result.ByPromptType.Table(tableBreaksByPromptType, records.FieldPromptType, true)
	byComplexity := result.ByComplexity.Table(tableComplexityBreaks, records.FieldComplexity, false)
	errorTypes := analyzer.LongTable(tableErrorVsPromptType,
		[]string{records.FieldPromptType, records.FieldErrorType, columnProbability}, result.ErrorTypes)
	topics := analyzer.LongTable(tableTopicBreaks,
		[]string{"model_break", records.FieldTopic, columnProbability}, result.Topics)

	if err := s.open(""); err != nil {
		return err
	}
	defer s.close()

	outputs := []struct {
		table  report.Table
		nested any
	}{
		{byPromptType, result.ByPromptType},
		{errorTypes, result.ErrorTypes},
		{byComplexity, result.Complexity},
		{topics, result.Topics},
	}
	for _, o := range outputs {
		if err := s.dir.JSON(o.table.Name+".json", o.nested); err != nil {
			return err
		}
		if err := s.dir.CSV(o.table); err != nil {
			return err
		}
	}
	if err := s.dir.JSON(fileOverallBreaks, result.overallJSON()); err != nil {
		return err
	}

	charts := []struct {
		table report.Table
		title string
	}{
		{byPromptType, "Model Success and Failure by Prompt Type"},
		{byComplexity, "Model Success and Failure by Difficulty Level"},
	}
	for _, c := range charts {
		err := s.chart(c.table.Name+".png", func(path string, opts chart.Options) error {
			bars := chart.Bars(c.table, []string{analyzer.OutcomeFailure + " (%)", analyzer.OutcomeSuccess + " (%)"})
			return chart.StackedBar(path, c.title, chart.WithColors(bars, outcomeColors), opts)
		})
		if err != nil {
			return err
		}
	}

	if s.summary() {
		fmt.Fprintln(s.out, output.Section(fmt.Sprintf("Model breaks (%s records)", output.Count(len(recs)))))
		if o := result.Overall; o != nil {
			fmt.Fprintln(s.out, output.KeyValue("Counted", output.Count(o.TotalCount)))
			fmt.Fprintln(s.out, output.KeyValue("Break rate", output.RateBar(o.Failure.Percentage, s.cfg.Output.Width/4)))
		} else {
			fmt.Fprintln(s.out, output.StyleMuted.Render(" no record has a yes/no break scenario"))
		}
		s.table("By prompt type", byPromptType)
		s.table("By complexity", byComplexity)
	}
	return s.finish(result)
}

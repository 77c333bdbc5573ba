package app

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamaal505/MLAnalytics/internal/analyzer"
	"github.com/kamaal505/MLAnalytics/internal/chart"
	"github.com/kamaal505/MLAnalytics/internal/export"
	"github.com/kamaal505/MLAnalytics/internal/records"
)

var distributionCmd = &cobra.Command{
	Use:   "distribution [input.json]",
	Short: "Value distributions per group, with charts",
	Long: `Compute, for a flat record map, the share of each model_break_scenario
value per complexity and per prompt type, and of each error_type per prompt
type. Each table gets a stacked bar chart; every prompt type also gets an
error-type pie chart.

Blank values are reported in the "Model Success" column. Outputs go next to
the input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDistribution,
}

func init() {
	rootCmd.AddCommand(distributionCmd)
}

func runDistribution(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}

	recs, err := records.LoadFlatRecords(s.input)
	if err != nil {
		return fmt.Errorf("loading %s: %w", filepath.Base(s.input), err)
	}
	slog.Debug("loaded flat records", "count", len(recs))

	dists := make([]analyzer.Distribution, 0, len(analyzer.DefaultDistributions))
	for _, pair := range analyzer.DefaultDistributions {
		dists = append(dists, analyzer.ValueDistribution(recs, pair))
	}

	if err := s.open(""); err != nil {
		return err
	}
	defer s.close()

	result := make(map[string]map[string]map[string]float64, len(dists))
	var errorTypes analyzer.Distribution
	for _, d := range dists {
		t := d.Table()
		if err := s.dir.Table(t); err != nil {
			return err
		}
		title := fmt.Sprintf("%s Probability Distribution by %s", d.Pair.Variable, d.Pair.GroupBy)
		err := s.chart(t.Name+".png", func(path string, opts chart.Options) error {
			return chart.StackedBar(path, title, chart.Bars(t, d.Columns), opts)
		})
		if err != nil {
			return err
		}
		result[d.Pair.Name()] = d.Shares
		if d.Pair == analyzer.ErrorTypesByPromptType {
			errorTypes = d
		}
	}

	for _, group := range errorTypes.Groups {
		labels, values := errorTypes.Positive(group)
		segments := make([]chart.Segment, len(labels))
		for i := range labels {
			segments[i] = chart.Segment{Label: labels[i], Value: values[i]}
		}
		name := fmt.Sprintf("error_type_pie_%s.png", export.SanitizeFilename(group))
		err := s.chart(name, func(path string, opts chart.Options) error {
			return chart.Pie(path, "Error Type Distribution for "+group, segments, opts)
		})
		if err != nil {
			return err
		}
	}

	if s.summary() {
		for _, d := range dists {
			s.table(d.Pair.Name(), d.Table())
		}
	}
	return s.finish(result)
}

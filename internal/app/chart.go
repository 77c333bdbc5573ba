package app

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/kamaal505/MLAnalytics/internal/analyzer"
	"github.com/kamaal505/MLAnalytics/internal/chart"
	"github.com/kamaal505/MLAnalytics/internal/export"
	"github.com/kamaal505/MLAnalytics/internal/records"
	"github.com/kamaal505/MLAnalytics/internal/report"
)

var (
	chartTitle string
	chartOut   string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render charts from exported tables",
	Long: `Render PNG charts from a JSON table written by another command.

  chart bar   one stacked success/failure bar per category
  chart pie   one pie chart per category`,
}

var chartBarCmd = &cobra.Command{
	Use:   "bar [table.json]",
	Short: "Stacked success/failure bar chart",
	Long: `Render a table shaped {category: {model_failure, model_success}} as a
stacked bar chart with failures at the bottom. The chart is written next to
the table with the same name and a .png extension unless --out is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChartBar,
}

var chartPieCmd = &cobra.Command{
	Use:   "pie [table.json]",
	Short: "One pie chart per category",
	Long: `Render a table shaped {category: {label: value}} as one pie chart per
category, written next to the table as <category>_pie.png. Zero and negative
values are left out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChartPie,
}

func init() {
	chartBarCmd.Flags().StringVar(&chartTitle, "title", "Model Success and Failure", "Chart title")
	chartBarCmd.Flags().StringVar(&chartOut, "out", "", "Output file (default: next to the table)")
	chartCmd.AddCommand(chartBarCmd, chartPieCmd)
	rootCmd.AddCommand(chartCmd)
}

// loadJSONTable reads a nested {row: {column: value}} table. Non-numeric
// cells are dropped.
func loadJSONTable(path string) (report.Table, error) {
	data, err := records.ReadInput(path)
	if err != nil {
		return report.Table{}, err
	}
	var nested map[string]map[string]any
	if err := json.Unmarshal(data, &nested); err != nil {
		return report.Table{}, fmt.Errorf("%s: %w", path, records.ErrUnexpectedShape)
	}

	numeric := make(map[string]map[string]float64, len(nested))
	for row, cols := range nested {
		numeric[row] = make(map[string]float64, len(cols))
		for col, v := range cols {
			if f, ok := v.(float64); ok {
				numeric[row][col] = f
			}
		}
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return report.FromNested(stem, "category", nil, numeric), nil
}

// chartSession prepares a session whose only outputs are charts, written
// next to the table.
func chartSession(cmd *cobra.Command, args []string) (*session, report.Table, error) {
	s, err := newSession(cmd, args)
	if err != nil {
		return nil, report.Table{}, err
	}
	s.cfg.Output.Charts = true
	s.cfg.Output.SQLite = false

	t, err := loadJSONTable(s.input)
	if err != nil {
		return nil, report.Table{}, fmt.Errorf("loading %s: %w", filepath.Base(s.input), err)
	}
	if err := s.open(""); err != nil {
		return nil, report.Table{}, err
	}
	return s, t, nil
}

func runChartBar(cmd *cobra.Command, args []string) error {
	s, t, err := chartSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.close()

	path := s.dir.File(t.Name + ".png")
	if chartOut != "" {
		path = chartOut
	}

	bars := chart.Bars(t, []string{analyzer.OutcomeFailure, analyzer.OutcomeSuccess})
	bars = chart.WithColors(bars, map[string]drawing.Color{
		analyzer.OutcomeFailure: chart.FailureColor,
		analyzer.OutcomeSuccess: chart.SuccessColor,
	})
	err = s.chartAt(path, func(path string, opts chart.Options) error {
		return chart.StackedBar(path, chartTitle, bars, opts)
	})
	if err != nil {
		return err
	}
	return s.finish(t)
}

func runChartPie(cmd *cobra.Command, args []string) error {
	s, t, err := chartSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.close()

	for i, row := range t.Rows {
		category := report.FormatCell(row[0])
		var segments []chart.Segment
		for _, col := range t.Columns() {
			if v, ok := t.Float(i, col); ok {
				segments = append(segments, chart.Segment{Label: col, Value: v})
			}
		}
		name := export.SanitizeFilename(category) + "_pie.png"
		err := s.chart(name, func(path string, opts chart.Options) error {
			return chart.Pie(path, category+" - Error Breakdown", segments, opts)
		})
		if err != nil {
			return err
		}
	}
	return s.finish(t)
}

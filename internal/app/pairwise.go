package app

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamaal505/MLAnalytics/internal/analyzer"
	"github.com/kamaal505/MLAnalytics/internal/output"
	"github.com/kamaal505/MLAnalytics/internal/records"
	"github.com/kamaal505/MLAnalytics/internal/report"
)

var pairwiseCmd = &cobra.Command{
	Use:   "pairwise [input.json]",
	Short: "Two-model break comparison",
	Long: `Compare the first two model evaluations (A and B) of every conversation:
break and success rates per model, each model's share of the breaks per prompt
type, and error types per model.

A break whose error type is "n/a" is not counted; its conversation is listed
in faulty_conversation_ids.json instead. Outputs go to a falcon_analysis
directory next to the input file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPairwise,
}

func init() {
	rootCmd.AddCommand(pairwiseCmd)
}

// Pairwise output names.
const (
	fileFaultyIDs            = "faulty_conversation_ids.json"
	tableProbModel           = "prob_model"
	tableProbPromptType      = "prob_prompt_type"
	tableProbErrorType       = "prob_error_type"
	filePromptTypeWithCounts = "prob_prompt_type_with_counts.json"
)

// pairwiseResult is every table the pairwise command produces.
type pairwiseResult struct {
	Faulty           []string                      `json:"faulty_conversation_ids"`
	Model            map[string]map[string]float64 `json:"prob_model"`
	PromptType       map[string]map[string]float64 `json:"prob_prompt_type"`
	ErrorType        map[string]map[string]float64 `json:"prob_error_type"`
	PromptTypeCounts map[string]map[string]any     `json:"prob_prompt_type_with_counts"`
}

func analyzePairwise(convs []records.Conversation) pairwiseResult {
	res := analyzer.AnalyzePairwise(convs)
	return pairwiseResult{
		Faulty:           res.Faulty,
		Model:            res.ModelProbabilities(),
		PromptType:       res.PromptTypeProbabilities(),
		ErrorType:        res.ErrorTypeProbabilities(),
		PromptTypeCounts: res.PromptTypeWithCounts(),
	}
}

func runPairwise(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}

	convs, err := records.LoadConversations(s.input)
	if err != nil {
		return fmt.Errorf("loading %s: %w", filepath.Base(s.input), err)
	}
	slog.Debug("loaded conversations", "count", len(convs))

	result := analyzePairwise(convs)
	tables := []struct {
		nested map[string]map[string]float64
		table  report.Table
	}{
		{result.Model, report.FromNested(tableProbModel, "model", nil, result.Model)},
		{result.PromptType, report.FromNested(tableProbPromptType, "prompt_type", nil, result.PromptType)},
		{result.ErrorType, report.FromNested(tableProbErrorType, "model", nil, result.ErrorType)},
	}

	if err := s.open(s.cfg.PairwiseDir); err != nil {
		return err
	}
	defer s.close()

	if err := s.dir.JSON(fileFaultyIDs, result.Faulty); err != nil {
		return err
	}
	for _, t := range tables {
		if err := s.dir.JSON(t.table.Name+".json", t.nested); err != nil {
			return err
		}
		if err := s.dir.CSV(t.table); err != nil {
			return err
		}
	}
	if err := s.dir.JSON(filePromptTypeWithCounts, result.PromptTypeCounts); err != nil {
		return err
	}

	if s.summary() {
		fmt.Fprintln(s.out, output.Section(fmt.Sprintf("Pairwise breaks (%s conversations)", output.Count(len(convs)))))
		for _, m := range analyzer.PairModels {
			rate, ok := result.Model[m][analyzer.KeyFailure]
			if !ok {
				fmt.Fprintln(s.out, output.KeyValue("Model "+m, output.StyleMuted.Render("no evaluations")))
				continue
			}
			fmt.Fprintln(s.out, output.KeyValue("Model "+m, output.RateBar(rate, s.cfg.Output.Width/4)))
		}
		fmt.Fprintln(s.out, output.KeyValue("Faulty conversations", output.Count(len(result.Faulty))))
		s.table("Break share by prompt type", tables[1].table)
	}
	return s.finish(result)
}

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamaal505/MLAnalytics/internal/output"
	"github.com/kamaal505/MLAnalytics/internal/records"
)

var filterCmd = &cobra.Command{
	Use:   "filter [input.json]",
	Short: "Drop conversations with CJK model responses",
	Long: `Remove every conversation in which a model response contains a CJK
unified ideograph. The remaining conversations are written unchanged to
filtered_batch.json; each model break of a removed conversation is listed in
model_break_prompts.csv for review.

Outputs go next to the input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)
}

// Filter output names.
const (
	fileFilteredBatch     = "filtered_batch.json"
	fileModelBreakPrompts = "model_break_prompts.csv"
)

var breakPromptHeader = []string{"Conversation ID", "User Prompt", "Final Answer"}

// errNotJSONPath rejects inputs without a .json extension.
var errNotJSONPath = errors.New("input must be a .json file")

// filterResult summarizes one filter run.
type filterResult struct {
	InputCount     int `json:"input_conversations"`
	OutputCount    int `json:"output_conversations"`
	InputBreaks    int `json:"input_breaks"`
	FilteredBreaks int `json:"filtered_breaks"`
	RemovedBreaks  int `json:"removed_breaks"`
	ExportedBreaks int `json:"exported_breaks"`
}

func runFilter(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(s.input, ".json") {
		return fmt.Errorf("%s: %w", s.input, errNotJSONPath)
	}

	convs, err := records.LoadConversations(s.input)
	if err != nil {
		return fmt.Errorf("loading %s: %w", filepath.Base(s.input), err)
	}

	split := records.SplitByLanguage(convs)
	prompts := records.BreakPrompts(split.Removed)
	slog.Debug("filtered conversations", "kept", len(split.Kept), "removed", len(split.Removed))

	kept := make([]json.RawMessage, 0, len(split.Kept))
	for _, c := range split.Kept {
		kept = append(kept, c.Raw)
	}
	rows := make([][]string, 0, len(prompts))
	for _, p := range prompts {
		rows = append(rows, []string{p.ConversationID, p.UserPrompt, p.FinalAnswer})
	}

	result := filterResult{
		InputCount:     len(convs),
		OutputCount:    len(split.Kept),
		InputBreaks:    records.CountBreaks(convs),
		FilteredBreaks: records.CountBreaks(split.Kept),
		RemovedBreaks:  records.CountBreaks(split.Removed),
		ExportedBreaks: len(prompts),
	}

	if err := s.open(""); err != nil {
		return err
	}
	defer s.close()

	if err := s.dir.JSON(fileFilteredBatch, kept); err != nil {
		return err
	}
	if err := s.dir.Rows(fileModelBreakPrompts, breakPromptHeader, rows); err != nil {
		return err
	}

	if s.summary() {
		fmt.Fprintln(s.out, output.Section("Language filter"))
		fmt.Fprintln(s.out, output.KeyValue("Conversations in input", output.Count(result.InputCount)))
		fmt.Fprintln(s.out, output.KeyValue("Conversations kept", output.Count(result.OutputCount)))
		fmt.Fprintln(s.out, output.KeyValue("Breaks in input", output.Count(result.InputBreaks)))
		fmt.Fprintln(s.out, output.KeyValue("Breaks kept", output.Count(result.FilteredBreaks)))
		fmt.Fprintln(s.out, output.KeyValue("Breaks removed", output.Count(result.RemovedBreaks)))
		fmt.Fprintln(s.out, output.KeyValue("Break prompts exported", output.Count(result.ExportedBreaks)))
	}
	return s.finish(result)
}

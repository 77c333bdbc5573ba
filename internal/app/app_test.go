package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamaal505/MLAnalytics/internal/records"
	"github.com/kamaal505/MLAnalytics/internal/store"
)

func resetFlags() {
	flagNoColor = false
	flagJSON = false
	flagVerbose = false
	flagConfig = ""
	flagNoCharts = false
	flagSQLite = false
	flagOutputDir = ""
	chartTitle = "Model Success and Failure"
	chartOut = ""
	runsFlagRun = 0
}

// execute runs the root command with args and a config path that does not
// exist, so only defaults apply.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--no-color", "--config", filepath.Join(t.TempDir(), "none.yaml")))
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

const conversationsFixture = `[
	{"conversationId": "c1", "modelConfigs": [{"modelId": "A"}, {"modelId": "B"}],
	 "modelEvaluations": [{"modelId": "A", "model failure": "Yes"}, {"modelId": "B", "model failure": "No"}],
	 "promptEvaluations": [{"subject": "Math", "complexity": "Hard"}]},
	{"conversationId": "c2", "modelConfigs": [{"modelId": "A"}, {"modelId": "B"}],
	 "modelEvaluations": [{"modelId": "A", "model failure": "Yes"}, {"modelId": "B", "model failure": "No"}],
	 "promptEvaluations": [{"subject": "Math", "complexity": "Hard"}]},
	{"conversationId": "c3", "modelConfigs": [{"modelId": "A"}, {"modelId": "B"}],
	 "modelEvaluations": [{"modelId": "A", "model failure": "Yes"}, {"modelId": "B", "model failure": "No"}],
	 "promptEvaluations": [{"subject": "Math", "complexity": "Easy"}]},
	{"conversationId": "c4", "modelConfigs": [{"modelId": "A"}, {"modelId": "B"}],
	 "modelEvaluations": [{"modelId": "A", "model failure": "No"}, {"modelId": "B", "model failure": "No"}],
	 "promptEvaluations": {"subject": "Math", "complexity": "Easy"}}
]`

func TestCommands_Registered(t *testing.T) {
	want := map[string]bool{"benchmark": false, "breaks": false, "distribution": false, "pairwise": false, "filter": false, "chart": false, "doctor": false, "runs": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		assert.True(t, found, "%s subcommand not registered on rootCmd", name)
	}
}

func TestBenchmark_WritesTables(t *testing.T) {
	input := writeInput(t, "batch.json", conversationsFixture)
	out, err := execute(t, "", "benchmark", input, "--no-charts")
	require.NoError(t, err)

	dir := filepath.Join(filepath.Dir(input), "benchmarking_data")
	assert.Contains(t, out, "By subject")

	var rates map[string]float64
	readJSON(t, filepath.Join(dir, "failure_percentages.json"), &rates)
	assert.Equal(t, map[string]float64{"A": 75, "B": 0}, rates)

	assert.Equal(t,
		"Subject,Count,Probability of Model Failure,A,B\nmath,4,37.5,75.0,0.0\n",
		readFile(t, filepath.Join(dir, "model_failure_distribution_by_subject.csv")))
	assert.Equal(t,
		"Complexity,Count,A,B\neasy,2,50.0,0.0\nhard,2,100.0,0.0\n",
		readFile(t, filepath.Join(dir, "model_failure_distribution_by_complexity.csv")))

	var cond map[string]map[string]float64
	readJSON(t, filepath.Join(dir, "conditional_failure_distribution.json"), &cond)
	assert.Equal(t, map[string]float64{"easy": 33.33, "hard": 66.67}, cond["A"])
	assert.Equal(t, map[string]float64{"easy": 0, "hard": 0}, cond["B"])

	var split map[string]map[string]map[string]int
	readJSON(t, filepath.Join(dir, "model_failure_distribution.json"), &split)
	assert.Equal(t, 3, split["A"]["model failure"]["math"])
	assert.Equal(t, 4, split["B"]["model success"]["math"])

	assert.NoFileExists(t, filepath.Join(dir, "conditional_failure_distribution_chart.png"))
}

func TestBenchmark_Chart(t *testing.T) {
	input := writeInput(t, "batch.json", conversationsFixture)
	_, err := execute(t, "", "benchmark", input)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(filepath.Dir(input), "benchmarking_data", "conditional_failure_distribution_chart.png"))
}

func TestBenchmark_Idempotent(t *testing.T) {
	input := writeInput(t, "batch.json", conversationsFixture)
	path := filepath.Join(filepath.Dir(input), "benchmarking_data", "model_failure_distribution_by_subject.json")

	_, err := execute(t, "", "benchmark", input, "--no-charts")
	require.NoError(t, err)
	first := readFile(t, path)
	_, err = execute(t, "", "benchmark", input, "--no-charts")
	require.NoError(t, err)
	assert.Equal(t, first, readFile(t, path))
}

func TestBenchmark_InputErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "", "benchmark", filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, records.ErrInputNotFound)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"modelConfigs": `), 0o644))
	_, err = execute(t, "", "benchmark", bad)
	require.ErrorIs(t, err, records.ErrNotJSON)

	wrong := filepath.Join(dir, "wrong.json")
	require.NoError(t, os.WriteFile(wrong, []byte(`{"a": 1}`), 0o644))
	_, err = execute(t, "", "benchmark", wrong)
	require.ErrorIs(t, err, records.ErrUnexpectedShape)

	assert.NoDirExists(t, filepath.Join(dir, "benchmarking_data"))
}

func TestBenchmark_JSONOutput(t *testing.T) {
	input := writeInput(t, "batch.json", conversationsFixture)
	out, err := execute(t, "", "benchmark", input, "--no-charts", "--json")
	require.NoError(t, err)

	var got struct {
		FailureRates map[string]float64            `json:"failure_percentages"`
		BySubject    map[string]map[string]float64 `json:"by_subject"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 75.0, got.FailureRates["A"])
	assert.Equal(t, 37.5, got.BySubject["math"]["Probability of Model Failure"])
}

func TestBenchmark_SQLite(t *testing.T) {
	input := writeInput(t, "batch.json", conversationsFixture)
	_, err := execute(t, "", "benchmark", input, "--no-charts", "--sqlite")
	require.NoError(t, err)

	db, err := store.Open(filepath.Join(filepath.Dir(input), "benchmarking_data", "analysis.db"))
	require.NoError(t, err)
	defer db.Close()

	runs, err := db.GetRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "benchmark", runs[0].Command)

	tbl, err := db.LoadTable(runs[0].ID, "model_failure_distribution_by_subject")
	require.NoError(t, err)
	v, ok := tbl.Float(0, "Probability of Model Failure")
	require.True(t, ok)
	assert.Equal(t, 37.5, v)
}

func TestBenchmark_OutputDir(t *testing.T) {
	input := writeInput(t, "batch.json", conversationsFixture)
	outDir := filepath.Join(t.TempDir(), "elsewhere")
	_, err := execute(t, "", "benchmark", input, "--no-charts", "--output-dir", outDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "failure_percentages.json"))
}

func TestBenchmark_PromptsForInput(t *testing.T) {
	input := writeInput(t, "batch.json", conversationsFixture)
	_, err := execute(t, input+"\n", "benchmark", "--no-charts")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(filepath.Dir(input), "benchmarking_data", "failure_percentages.json"))
}

const flatFixture = `{
	"r1": {"prompt_type": "Reasoning", "complexity": "Hard", "topic": "Math", "error_type": "logic", "model_break_scenario": "Yes"},
	"r2": {"prompt_type": "Reasoning", "complexity": "Easy", "topic": "Math", "error_type": "", "model_break_scenario": "No"},
	"r3": {"prompt_type": "Coding / Web", "complexity": "Hard", "topic": "Art", "error_type": "syntax", "model_break_scenario": "yes"},
	"r4": {"prompt_type": "", "model_break_scenario": "Yes"},
	"r5": {"prompt_type": "Coding / Web", "complexity": null, "model_break_scenario": "unsure"}
}`

func TestBreaks_WritesTables(t *testing.T) {
	input := writeInput(t, "records.json", flatFixture)
	_, err := execute(t, "", "breaks", input, "--no-charts")
	require.NoError(t, err)
	dir := filepath.Dir(input)

	assert.Equal(t,
		"prompt_type,count,model_failure (%),model_success (%)\nCoding / Web,1,100.0,0.0\nReasoning,2,50.0,50.0\n",
		readFile(t, filepath.Join(dir, "model_break_scenario_by_prompt_type.csv")))

	var byPrompt map[string]map[string]float64
	readJSON(t, filepath.Join(dir, "model_break_scenario_by_prompt_type.json"), &byPrompt)
	assert.Equal(t, map[string]float64{"count": 2, "model_failure": 50, "model_success": 50}, byPrompt["Reasoning"])

	assert.Equal(t,
		"prompt_type,error_type,probability (%)\nCoding / Web,syntax,100.0\nReasoning,logic,100.0\n",
		readFile(t, filepath.Join(dir, "probability_error_type_vs_prompt_type.csv")))
	assert.Equal(t,
		"complexity,model_failure (%),model_success (%)\nEasy,0.0,100.0\nHard,100.0,0.0\n",
		readFile(t, filepath.Join(dir, "probability_complexity_vs_model_break.csv")))
	assert.Equal(t,
		"model_break,topic,probability (%)\nmodel_failure,Art,50.0\nmodel_failure,Math,50.0\nmodel_success,Math,100.0\n",
		readFile(t, filepath.Join(dir, "probability_topic_vs_model_break.csv")))

	var overall struct {
		TotalCount int `json:"total_count"`
		Failure    struct {
			Count      int     `json:"count"`
			Percentage float64 `json:"percentage"`
		} `json:"model_failure"`
	}
	readJSON(t, filepath.Join(dir, "overall_model_break_distribution.json"), &overall)
	assert.Equal(t, 4, overall.TotalCount)
	assert.Equal(t, 3, overall.Failure.Count)
	assert.Equal(t, 75.0, overall.Failure.Percentage)
}

func TestBreaks_EmptyOverall(t *testing.T) {
	input := writeInput(t, "records.json", `{"r1": {"model_break_scenario": "maybe"}}`)
	_, err := execute(t, "", "breaks", input)
	require.NoError(t, err)

	dir := filepath.Dir(input)
	assert.Equal(t, "{}\n", readFile(t, filepath.Join(dir, "overall_model_break_distribution.json")))
	assert.NoFileExists(t, filepath.Join(dir, "model_break_scenario_by_prompt_type.png"))
}

func TestBreaks_Charts(t *testing.T) {
	input := writeInput(t, "records.json", flatFixture)
	_, err := execute(t, "", "breaks", input)
	require.NoError(t, err)

	dir := filepath.Dir(input)
	assert.FileExists(t, filepath.Join(dir, "model_break_scenario_by_prompt_type.png"))
	assert.FileExists(t, filepath.Join(dir, "probability_complexity_vs_model_break.png"))
}

func TestDistribution_WritesTablesAndPies(t *testing.T) {
	input := writeInput(t, "records.json", flatFixture)
	_, err := execute(t, "", "distribution", input)
	require.NoError(t, err)
	dir := filepath.Dir(input)

	assert.Equal(t,
		"prompt_type,Model Success,logic,syntax\nCoding / Web,0.0,0.0,100.0\nReasoning,50.0,50.0,0.0\n",
		readFile(t, filepath.Join(dir, "error_type_by_prompt_type.csv")))

	var byComplexity map[string]map[string]float64
	readJSON(t, filepath.Join(dir, "model_break_scenario_by_complexity.json"), &byComplexity)
	assert.Equal(t, map[string]float64{"No": 0, "Yes": 50, "yes": 50}, byComplexity["Hard"])
	assert.Equal(t, map[string]float64{"No": 100, "Yes": 0, "yes": 0}, byComplexity["Easy"])

	for _, name := range []string{
		"model_break_scenario_by_complexity.png",
		"model_break_scenario_by_prompt_type.png",
		"error_type_by_prompt_type.png",
		"error_type_pie_Coding___Web.png",
		"error_type_pie_Reasoning.png",
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

const pairwiseFixture = `[
	{"conversationId": "c1", "promptEvaluations": [{"prompt type": "Reasoning"}],
	 "modelEvaluations": [{"model break": "True", "error type": "logic"}, {"model break": "False"}]},
	{"conversationId": "c2", "promptEvaluations": {"prompt type": "Reasoning"},
	 "modelEvaluations": [{"model break": "True", "error type": "n/a"}, {"model break": "True", "error type": "math"}]},
	{"conversationId": "c0", "promptEvaluations": [{"prompt type": "Coding"}],
	 "modelEvaluations": [{"model break": "False"}]}
]`

func TestPairwise_WritesTables(t *testing.T) {
	input := writeInput(t, "batch.json", pairwiseFixture)
	_, err := execute(t, "", "pairwise", input)
	require.NoError(t, err)
	dir := filepath.Join(filepath.Dir(input), "falcon_analysis")

	var faulty []string
	readJSON(t, filepath.Join(dir, "faulty_conversation_ids.json"), &faulty)
	assert.Equal(t, []string{"c2"}, faulty)

	var model map[string]map[string]float64
	readJSON(t, filepath.Join(dir, "prob_model.json"), &model)
	assert.Equal(t, map[string]float64{"failure": 100, "success": 0}, model["A"])
	assert.Equal(t, map[string]float64{"failure": 50, "success": 50}, model["B"])

	assert.Equal(t,
		"prompt_type,A,B\nReasoning,50.0,50.0\n",
		readFile(t, filepath.Join(dir, "prob_prompt_type.csv")))

	var withCounts map[string]map[string]float64
	readJSON(t, filepath.Join(dir, "prob_prompt_type_with_counts.json"), &withCounts)
	assert.Equal(t, map[string]float64{"A": 50, "B": 50, "total_count": 2, "failure_count": 2}, withCounts["Reasoning"])
	assert.NotContains(t, withCounts, "Coding")
}

const filterFixture = `[
	{"conversationId": "keep", "userPrompt": "q1", "finalAnswer": "a1",
	 "modelResponses": [{"modelResponse": "plain answer"}],
	 "modelEvaluations": [{"model break": "True"}]},
	{"conversationId": "drop", "userPrompt": "q2, with comma", "finalAnswer": "a2",
	 "modelResponses": [{"modelResponse": "ok"}, {"modelResponse": "答案"}],
	 "modelEvaluations": [{"model break": "True"}, {"model break": "False"}, {"model break": "True"}]}
]`

func TestFilter_RemovesCJKConversations(t *testing.T) {
	input := writeInput(t, "batch.json", filterFixture)
	out, err := execute(t, "", "filter", input)
	require.NoError(t, err)
	dir := filepath.Dir(input)

	var kept []map[string]any
	readJSON(t, filepath.Join(dir, "filtered_batch.json"), &kept)
	require.Len(t, kept, 1)
	assert.Equal(t, "keep", kept[0]["conversationId"])
	assert.True(t, strings.HasPrefix(readFile(t, filepath.Join(dir, "filtered_batch.json")),
		"[\n    {\n        \"conversationId\": \"keep\",\n        \"userPrompt\": \"q1\","))

	assert.Equal(t,
		"Conversation ID,User Prompt,Final Answer\ndrop,\"q2, with comma\",a2\ndrop,\"q2, with comma\",a2\n",
		readFile(t, filepath.Join(dir, "model_break_prompts.csv")))

	assert.Contains(t, out, "Breaks in input")
}

func TestFilter_RequiresJSONExtension(t *testing.T) {
	input := writeInput(t, "batch.txt", filterFixture)
	_, err := execute(t, "", "filter", input)
	require.ErrorIs(t, err, errNotJSONPath)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(input), "filtered_batch.json"))
}

func TestChartBar(t *testing.T) {
	input := writeInput(t, "model_break_scenario_by_prompt_type.json",
		`{"Coding": {"count": 3, "model_failure": 33.33, "model_success": 66.67}, "Reasoning": {"model_failure": 100, "model_success": 0}}`)
	_, err := execute(t, "", "chart", "bar", input)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(filepath.Dir(input), "model_break_scenario_by_prompt_type.png"))

	out := filepath.Join(t.TempDir(), "custom.png")
	_, err = execute(t, "", "chart", "bar", input, "--out", out, "--title", "Custom")
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestChartPie(t *testing.T) {
	input := writeInput(t, "probability_error_type_vs_prompt_type.json",
		`{"Code Gen": {"logic": 60, "syntax": 40}, "Empty": {"logic": 0}}`)
	_, err := execute(t, "", "chart", "pie", input)
	require.NoError(t, err)

	dir := filepath.Dir(input)
	assert.FileExists(t, filepath.Join(dir, "Code_Gen_pie.png"))
	assert.NoFileExists(t, filepath.Join(dir, "Empty_pie.png"))
}

func TestDoctor_JSON(t *testing.T) {
	input := writeInput(t, "records.json", flatFixture)
	out, err := execute(t, "", "doctor", input, "--json")
	require.NoError(t, err)

	var got doctorOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Checks, 5)
	assert.Equal(t, 5, got.TotalCount)
	assert.Equal(t, 5, got.PassedCount)
	assert.Equal(t, "Input file", got.Checks[3].Name)
	assert.Contains(t, got.Checks[3].Message, "5 flat records")
}

func TestDoctor_BadInput(t *testing.T) {
	input := writeInput(t, "bad.json", `[1, 2`)
	out, err := execute(t, "", "doctor", input)
	require.NoError(t, err)
	assert.Contains(t, out, "4/5 checks passed")
}

func TestCheckInput_Conversations(t *testing.T) {
	input := writeInput(t, "batch.json", conversationsFixture)
	c := checkInput(input)
	assert.True(t, c.Passed)
	assert.Contains(t, c.Message, "4 conversations")
}

func TestRuns_ListAndShow(t *testing.T) {
	input := writeInput(t, "batch.json", pairwiseFixture)
	_, err := execute(t, "", "pairwise", input, "--sqlite")
	require.NoError(t, err)
	dbPath := filepath.Join(filepath.Dir(input), "falcon_analysis", "analysis.db")

	out, err := execute(t, "", "runs", dbPath, "--json")
	require.NoError(t, err)
	var listed []storedRun
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "pairwise", listed[0].Command)
	names := make([]string, 0, len(listed[0].Tables))
	for _, st := range listed[0].Tables {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"prob_model", "prob_prompt_type", "prob_error_type"}, names)

	out, err = execute(t, "", "runs", dbPath, "prob_model", "--json")
	require.NoError(t, err)
	var model map[string]map[string]float64
	require.NoError(t, json.Unmarshal([]byte(out), &model))
	assert.Equal(t, 50.0, model["B"]["failure"])

	out, err = execute(t, "", "runs", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Run 1: pairwise")
}

func TestRuns_MissingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.db")
	_, err := execute(t, "", "runs", path)
	require.ErrorIs(t, err, records.ErrInputNotFound)
	assert.NoFileExists(t, path)
}

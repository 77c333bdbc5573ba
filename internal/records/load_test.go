package records

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadInput_Missing(t *testing.T) {
	_, err := ReadInput(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, ErrInputNotFound)
}

func TestReadInput_Directory(t *testing.T) {
	_, err := ReadInput(t.TempDir())
	require.ErrorIs(t, err, ErrInputNotFound)
}

func TestReadInput_Malformed(t *testing.T) {
	path := writeFile(t, "bad.json", `[{"modelConfigs": [}`)
	_, err := ReadInput(path)
	require.ErrorIs(t, err, ErrNotJSON)
}

func TestParseConversations_WrongRoot(t *testing.T) {
	_, err := ParseConversations([]byte(`{"a": {}}`))
	require.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestParseConversations_SyntaxError(t *testing.T) {
	_, err := ParseConversations([]byte(`[{`))
	require.ErrorIs(t, err, ErrNotJSON)
}

func TestParseConversations_Shapes(t *testing.T) {
	data := `[
		{
			"conversationId": "c1",
			"modelConfigs": [{"modelId": "A"}, "junk", {"modelId": "B"}],
			"modelEvaluations": [
				{"modelId": "A", "model failure": "Yes", "error type": "hallucination", "model break": true},
				{"model failure": "No"}
			],
			"promptEvaluations": {"subject": "Data Science", "complexity": 3, "prompt type": "Reasoning"}
		},
		42,
		{
			"promptEvaluations": [
				{"subject": "Math", "promptEvaluations.complexity": "Hard"},
				"junk"
			]
		}
	]`

	convs, err := ParseConversations([]byte(data))
	require.NoError(t, err)
	require.Len(t, convs, 2)

	c := convs[0]
	assert.Equal(t, "c1", c.ID)
	require.Len(t, c.ModelConfigs, 2)
	assert.Equal(t, "B", c.ModelConfigs[1].ModelID)

	require.Len(t, c.ModelEvaluations, 2)
	first := c.ModelEvaluations[0]
	assert.True(t, first.Failed())
	assert.True(t, first.Broke(), "boolean model break should decode as a break")
	assert.Equal(t, "A", first.Model())
	assert.True(t, first.HasErrorType)
	assert.Equal(t, "hallucination", first.ErrorType)
	assert.Equal(t, UnknownModel, c.ModelEvaluations[1].Model())
	assert.False(t, c.ModelEvaluations[1].HasErrorType)

	require.Len(t, c.PromptEvaluations, 1, "single prompt evaluation object is wrapped")
	p := c.PromptEvaluations[0]
	assert.Equal(t, "Data Science", p.Subject)
	assert.Equal(t, "3", p.ComplexityLabel())
	assert.True(t, p.HasPromptType)
	assert.JSONEq(t, `{"conversationId":"c1","modelConfigs":[{"modelId":"A"},"junk",{"modelId":"B"}],"modelEvaluations":[{"modelId":"A","model failure":"Yes","error type":"hallucination","model break":true},{"model failure":"No"}],"promptEvaluations":{"subject":"Data Science","complexity":3,"prompt type":"Reasoning"}}`, string(c.Raw))

	second := convs[1]
	require.Len(t, second.PromptEvaluations, 1)
	assert.Equal(t, "Hard", second.PromptEvaluations[0].ComplexityLabel())
	assert.False(t, second.PromptEvaluations[0].HasPromptType)
}

func TestParseConversations_ObjectHeaderStillDecodesLists(t *testing.T) {
	data := `[{"conversationId": {"nested": true}, "modelConfigs": [{"modelId": "A"}]}]`
	convs, err := ParseConversations([]byte(data))
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Empty(t, convs[0].ID)
	require.Len(t, convs[0].ModelConfigs, 1)
}

func TestLoadConversations_File(t *testing.T) {
	path := writeFile(t, "convs.json", `[{"modelConfigs": [{"modelId": "m"}]}]`)
	convs, err := LoadConversations(path)
	require.NoError(t, err)
	require.Len(t, convs, 1)
}

func TestParseFlatRecords(t *testing.T) {
	data := `{
		"r2": {"prompt_type": "Coding", "complexity": null, "topic": ["x"], "error_type": "", "model_break_scenario": "No"},
		"r1": {"prompt_type": "Math", "complexity": 2, "model_break_scenario": true},
		"r3": "not a record"
	}`
	recs, err := ParseFlatRecords([]byte(data))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "r1", recs[0].ID)
	assert.Equal(t, "2", recs[0].Value(FieldComplexity))
	assert.Equal(t, "true", recs[0].Value(FieldModelBreak))

	r2 := recs[1]
	_, ok := r2.Get(FieldComplexity)
	assert.False(t, ok, "null is absent")
	_, ok = r2.Get(FieldTopic)
	assert.False(t, ok, "arrays are absent")
	v, ok := r2.Get(FieldErrorType)
	assert.True(t, ok, "empty string is present")
	assert.Equal(t, "", v)
}

func TestParseFlatRecords_WrongRoot(t *testing.T) {
	_, err := ParseFlatRecords([]byte(`[]`))
	require.ErrorIs(t, err, ErrUnexpectedShape)
}

// Package records provides types and decoders for evaluation record files.
package records

import (
	"encoding/json"
	"strings"
)

// Conversation is one entry of a conversation-shaped input file.
type Conversation struct {
	ID                string             `mapstructure:"conversationId"`
	UserPrompt        string             `mapstructure:"userPrompt"`
	FinalAnswer       string             `mapstructure:"finalAnswer"`
	ModelConfigs      []ModelConfig      `mapstructure:"-"`
	ModelEvaluations  []ModelEvaluation  `mapstructure:"-"`
	PromptEvaluations []PromptEvaluation `mapstructure:"-"`
	ModelResponses    []ModelResponse    `mapstructure:"-"`

	// Raw is the conversation exactly as it appeared in the input.
	Raw json.RawMessage `mapstructure:"-"`
}

// ModelConfig names a model taking part in a conversation.
type ModelConfig struct {
	ModelID string `mapstructure:"modelId"`
}

// ModelEvaluation is the verdict on one model's response.
type ModelEvaluation struct {
	ModelID   string `mapstructure:"modelId"`
	Failure   string `mapstructure:"model failure"`
	ErrorType string `mapstructure:"error type"`
	Break     string `mapstructure:"model break"`

	// HasErrorType reports whether the "error type" key was present.
	HasErrorType bool `mapstructure:"-"`
}

// Model returns the evaluated model's ID, or UnknownModel when blank.
func (e ModelEvaluation) Model() string {
	if strings.TrimSpace(e.ModelID) == "" {
		return UnknownModel
	}
	return e.ModelID
}

// Failed reports whether the evaluation marks the response as a model failure.
func (e ModelEvaluation) Failed() bool {
	return ParseOutcome(e.Failure)
}

// Broke reports whether the evaluation flags a model break.
func (e ModelEvaluation) Broke() bool {
	return ParseOutcome(e.Break)
}

// PromptEvaluation holds the categorical labels attached to a prompt.
type PromptEvaluation struct {
	Subject          string `mapstructure:"subject"`
	Complexity       string `mapstructure:"complexity"`
	LegacyComplexity string `mapstructure:"promptEvaluations.complexity"`
	PromptType       string `mapstructure:"prompt type"`

	HasPromptType       bool `mapstructure:"-"`
	HasComplexity       bool `mapstructure:"-"`
	HasLegacyComplexity bool `mapstructure:"-"`
}

// ComplexityLabel returns the complexity, falling back to the legacy
// dotted key used by older exports.
func (p PromptEvaluation) ComplexityLabel() string {
	if p.HasComplexity {
		return p.Complexity
	}
	if p.HasLegacyComplexity {
		return p.LegacyComplexity
	}
	return ""
}

// ModelResponse is the text a model produced for a conversation.
type ModelResponse struct {
	ModelID  string `mapstructure:"modelId"`
	Response string `mapstructure:"modelResponse"`
}

// Flat record field names.
const (
	FieldPromptType = "prompt_type"
	FieldComplexity = "complexity"
	FieldTopic      = "topic"
	FieldErrorType  = "error_type"
	FieldModelBreak = "model_break_scenario"
)

// FlatRecord is one value of a flat record map, keyed by record ID.
// Fields holds every scalar field that was present and non-null,
// stringified.
type FlatRecord struct {
	ID     string
	Fields map[string]string
}

// Get returns a field value and whether it was present.
func (r FlatRecord) Get(field string) (string, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Value returns a field value, or "" when absent.
func (r FlatRecord) Value(field string) string {
	return r.Fields[field]
}

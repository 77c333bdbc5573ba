package records

import "strings"

// UnknownLabel is the category used for blank or missing labels in the
// conversation pipelines.
const UnknownLabel = "unknown"

// Placeholders for missing identifiers. These are not normalized.
const (
	UnknownModel        = "Unknown"
	UnknownConversation = "Unknown"
	UnknownPromptType   = "Unknown"
	UnknownErrorType    = "Unknown"
)

// NormalizeLabel lower-cases and trims a label and replaces spaces with
// underscores, so "Data Science" and "data science " share a key.
func NormalizeLabel(label string) string {
	norm := strings.TrimSpace(strings.ToLower(label))
	return strings.ReplaceAll(norm, " ", "_")
}

// LabelOrUnknown normalizes label, mapping blank input to UnknownLabel.
func LabelOrUnknown(label string) string {
	if strings.TrimSpace(label) == "" {
		return UnknownLabel
	}
	return NormalizeLabel(label)
}

// ParseOutcome reports whether v marks a failure: "yes", "true" or
// "failure" in any case. Everything else, including "", is a success.
func ParseOutcome(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "failure":
		return true
	}
	return false
}

// ParseBreakScenario reads a flat record's model_break_scenario value.
// ok is false for anything other than yes/no.
func ParseBreakScenario(v string) (failure, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes":
		return true, true
	case "no":
		return false, true
	}
	return false, false
}

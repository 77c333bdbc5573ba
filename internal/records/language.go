package records

// cjkFirst and cjkLast bound the CJK Unified Ideographs block.
const (
	cjkFirst = '一'
	cjkLast  = '鿿'
)

// ContainsCJK reports whether s contains a CJK unified ideograph.
func ContainsCJK(s string) bool {
	for _, r := range s {
		if r >= cjkFirst && r <= cjkLast {
			return true
		}
	}
	return false
}

// HasCJKResponse reports whether any model response in c contains CJK text.
func (c Conversation) HasCJKResponse() bool {
	for _, resp := range c.ModelResponses {
		if ContainsCJK(resp.Response) {
			return true
		}
	}
	return false
}

// LanguageSplit is the result of separating conversations by response
// language.
type LanguageSplit struct {
	Kept    []Conversation
	Removed []Conversation
}

// SplitByLanguage removes conversations whose model responses contain CJK
// text, preserving input order in both halves.
func SplitByLanguage(convs []Conversation) LanguageSplit {
	var split LanguageSplit
	for _, c := range convs {
		if c.HasCJKResponse() {
			split.Removed = append(split.Removed, c)
		} else {
			split.Kept = append(split.Kept, c)
		}
	}
	return split
}

// CountBreaks returns the number of model-break evaluations across convs.
func CountBreaks(convs []Conversation) int {
	n := 0
	for _, c := range convs {
		for _, e := range c.ModelEvaluations {
			if e.Broke() {
				n++
			}
		}
	}
	return n
}

// BreakPrompt is one model-break evaluation's prompt context.
type BreakPrompt struct {
	ConversationID string
	UserPrompt     string
	FinalAnswer    string
}

// BreakPrompts returns one entry per model-break evaluation in convs.
func BreakPrompts(convs []Conversation) []BreakPrompt {
	var out []BreakPrompt
	for _, c := range convs {
		id := c.ID
		if id == "" {
			id = UnknownConversation
		}
		for _, e := range c.ModelEvaluations {
			if !e.Broke() {
				continue
			}
			out = append(out, BreakPrompt{
				ConversationID: id,
				UserPrompt:     c.UserPrompt,
				FinalAnswer:    c.FinalAnswer,
			})
		}
	}
	return out
}

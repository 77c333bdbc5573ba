package analyzer

import (
	"sort"
	"strings"

	"github.com/kamaal505/MLAnalytics/internal/records"
)

// Pair slots. The first two evaluations of a conversation are A and B.
const (
	ModelA = "A"
	ModelB = "B"
)

// PairModels lists the slots in evaluation order.
var PairModels = []string{ModelA, ModelB}

// Keys of the pairwise probability tables.
const (
	KeySuccess      = "success"
	KeyFailure      = "failure"
	KeyTotalCount   = "total_count"
	KeyFailureCount = "failure_count"
)

// invalidErrorType marks a break verdict that has no usable error type.
const invalidErrorType = "n/a"

// PairwiseResult holds the raw counts of a two-model comparison.
type PairwiseResult struct {
	// Outcomes counts breaks (Yes) and clean answers (No) per slot.
	Outcomes map[string]*Counts
	// PromptTypeFailures maps prompt type → slot → break count.
	PromptTypeFailures map[string]map[string]int
	// PromptTypeCounts counts every conversation per prompt type, including
	// ones skipped for having fewer than two evaluations.
	PromptTypeCounts map[string]int
	// ErrorTypes maps slot → error type → break count.
	ErrorTypes map[string]map[string]int
	// Faulty lists, sorted, the conversations holding a break whose error
	// type is "n/a".
	Faulty []string
}

// AnalyzePairwise compares the first two evaluations of every
// conversation. A break with error type "n/a" flags the conversation as
// faulty and that evaluation is left out of every count.
func AnalyzePairwise(convs []records.Conversation) PairwiseResult {
	res := PairwiseResult{
		Outcomes:           make(map[string]*Counts, len(PairModels)),
		PromptTypeFailures: make(map[string]map[string]int),
		PromptTypeCounts:   make(map[string]int),
		ErrorTypes:         make(map[string]map[string]int, len(PairModels)),
	}
	for _, m := range PairModels {
		res.Outcomes[m] = &Counts{}
		res.ErrorTypes[m] = make(map[string]int)
	}
	faulty := make(map[string]bool)

	for _, c := range convs {
		ptype := pairPromptType(c)
		res.PromptTypeCounts[ptype]++

		if len(c.ModelEvaluations) < len(PairModels) {
			continue
		}
		for i, slot := range PairModels {
			e := c.ModelEvaluations[i]
			if !e.Broke() {
				res.Outcomes[slot].Add(false)
				continue
			}
			errType := records.UnknownErrorType
			if e.HasErrorType {
				errType = e.ErrorType
			}
			if strings.EqualFold(strings.TrimSpace(errType), invalidErrorType) {
				id := c.ID
				if id == "" {
					id = records.UnknownConversation
				}
				faulty[id] = true
				continue
			}
			res.Outcomes[slot].Add(true)
			if res.PromptTypeFailures[ptype] == nil {
				res.PromptTypeFailures[ptype] = map[string]int{ModelA: 0, ModelB: 0}
			}
			res.PromptTypeFailures[ptype][slot]++
			res.ErrorTypes[slot][errType]++
		}
	}

	res.Faulty = make([]string, 0, len(faulty))
	for id := range faulty {
		res.Faulty = append(res.Faulty, id)
	}
	sort.Strings(res.Faulty)
	return res
}

// pairPromptType returns the first prompt evaluation's prompt type,
// verbatim, or records.UnknownPromptType when there is none.
func pairPromptType(c records.Conversation) string {
	if len(c.PromptEvaluations) == 0 || !c.PromptEvaluations[0].HasPromptType {
		return records.UnknownPromptType
	}
	return c.PromptEvaluations[0].PromptType
}

// ModelProbabilities returns slot → success/failure percentages. A slot
// with no counted evaluation maps to an empty table.
func (r PairwiseResult) ModelProbabilities() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(PairModels))
	for _, m := range PairModels {
		c := r.Outcomes[m]
		probs := make(map[string]float64, 2)
		if c != nil && c.Total() > 0 {
			probs[KeySuccess] = Percent(c.No, c.Total())
			probs[KeyFailure] = Percent(c.Yes, c.Total())
		}
		out[m] = probs
	}
	return out
}

// PromptTypeProbabilities returns, for each prompt type with at least one
// break, each slot's share of those breaks.
func (r PairwiseResult) PromptTypeProbabilities() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(r.PromptTypeFailures))
	for ptype, bySlot := range r.PromptTypeFailures {
		total := 0
		for _, n := range bySlot {
			total += n
		}
		probs := make(map[string]float64, len(bySlot))
		for slot, n := range bySlot {
			probs[slot] = Percent(n, total)
		}
		out[ptype] = probs
	}
	return out
}

// ErrorTypeProbabilities returns slot → error type → share of the slot's
// breaks.
func (r PairwiseResult) ErrorTypeProbabilities() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(PairModels))
	for _, m := range PairModels {
		byErr := r.ErrorTypes[m]
		total := 0
		for _, n := range byErr {
			total += n
		}
		probs := make(map[string]float64, len(byErr))
		for errType, n := range byErr {
			probs[errType] = Percent(n, total)
		}
		out[m] = probs
	}
	return out
}

// PromptTypeWithCounts extends PromptTypeProbabilities with the number of
// conversations and of counted breaks per prompt type.
func (r PairwiseResult) PromptTypeWithCounts() map[string]map[string]any {
	probs := r.PromptTypeProbabilities()
	out := make(map[string]map[string]any, len(probs))
	for ptype, bySlot := range probs {
		rec := make(map[string]any, len(bySlot)+2)
		for slot, p := range bySlot {
			rec[slot] = p
		}
		failures := 0
		for _, n := range r.PromptTypeFailures[ptype] {
			failures += n
		}
		rec[KeyTotalCount] = r.PromptTypeCounts[ptype]
		rec[KeyFailureCount] = failures
		out[ptype] = rec
	}
	return out
}

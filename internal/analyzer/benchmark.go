package analyzer

import (
	"github.com/kamaal505/MLAnalytics/internal/records"
	"github.com/kamaal505/MLAnalytics/internal/report"
)

// Column names shared by the by-subject and by-complexity exports.
const (
	ColumnCount              = "Count"
	ColumnFailureProbability = "Probability of Model Failure"
)

// Dimension selects the prompt label a failure distribution groups by.
type Dimension int

const (
	BySubject Dimension = iota
	ByComplexity
)

// Label extracts the normalized category for p. Blank labels become
// records.UnknownLabel.
func (d Dimension) Label(p records.PromptEvaluation) string {
	if d == ByComplexity {
		return records.LabelOrUnknown(p.ComplexityLabel())
	}
	return records.LabelOrUnknown(p.Subject)
}

// FailureRates returns the marginal failure rate of every model listed in
// a conversation's modelConfigs. Evaluations are matched to each config
// entry by exact model ID; a model with no matching evaluation gets 0.
func FailureRates(convs []records.Conversation) map[string]float64 {
	totals := make(map[string]int)
	failures := make(map[string]int)

	for _, c := range convs {
		for _, mc := range c.ModelConfigs {
			id := mc.ModelID
			if id == "" {
				continue
			}
			if _, ok := totals[id]; !ok {
				totals[id] = 0
			}
			for _, e := range c.ModelEvaluations {
				if e.ModelID != id {
					continue
				}
				totals[id]++
				if e.Failed() {
					failures[id]++
				}
			}
		}
	}

	rates := make(map[string]float64, len(totals))
	for id, n := range totals {
		rates[id] = Percent(failures[id], n)
	}
	return rates
}

// FailureDistribution counts outcomes per (model, category). Every
// evaluation is crossed with every prompt evaluation of its conversation,
// so one evaluation lands in several buckets when a conversation carries
// several prompt evaluations.
func FailureDistribution(convs []records.Conversation, dim Dimension) *CountTable {
	table := NewCountTable()
	for _, c := range convs {
		for _, e := range c.ModelEvaluations {
			model := e.Model()
			failed := e.Failed()
			for _, p := range c.PromptEvaluations {
				table.Accumulate(model, dim.Label(p), failed)
			}
		}
	}
	return table
}

// OutcomeSplit is one model's per-category failure and success counts.
type OutcomeSplit struct {
	Failure map[string]int `json:"model failure"`
	Success map[string]int `json:"model success"`
}

// SplitByOutcome reshapes a distribution into model → failure/success
// counts per category. Only categories the model was seen in appear.
func SplitByOutcome(table *CountTable) map[string]OutcomeSplit {
	out := make(map[string]OutcomeSplit)
	for _, model := range table.Models() {
		split := OutcomeSplit{
			Failure: make(map[string]int),
			Success: make(map[string]int),
		}
		for _, cat := range table.CategoriesOf(model) {
			c := table.Get(model, cat)
			split.Failure[cat] = c.Yes
			split.Success[cat] = c.No
		}
		out[model] = split
	}
	return out
}

// CategoryRow is one category's failure rates across models.
type CategoryRow struct {
	Category string
	// Count is the category's total evaluations divided by the number of
	// models, truncated.
	Count int
	// FailureRate pools every model: Σyes / Σ(yes+no).
	FailureRate float64
	// ModelRates holds yes/(yes+no) per model.
	ModelRates map[string]float64
}

// CategoryRates is the per-category view of a failure distribution.
type CategoryRates struct {
	Models []string
	Rows   []CategoryRow
}

// RatesByCategory computes per-category failure rates for every model in
// the table.
func RatesByCategory(table *CountTable) CategoryRates {
	models := table.Models()
	result := CategoryRates{Models: models}

	for _, cat := range table.Categories() {
		row := CategoryRow{
			Category:   cat,
			ModelRates: make(map[string]float64, len(models)),
		}
		var aggYes, aggTotal int
		for _, m := range models {
			c := table.Get(m, cat)
			aggYes += c.Yes
			aggTotal += c.Total()
			row.ModelRates[m] = Percent(c.Yes, c.Total())
		}
		if len(models) > 0 {
			row.Count = aggTotal / len(models)
		}
		row.FailureRate = Percent(aggYes, aggTotal)
		result.Rows = append(result.Rows, row)
	}
	return result
}

// Nested returns category → column → value. withAggregate adds the pooled
// failure probability column.
func (r CategoryRates) Nested(withAggregate bool) map[string]map[string]any {
	out := make(map[string]map[string]any, len(r.Rows))
	for _, row := range r.Rows {
		rec := make(map[string]any, len(row.ModelRates)+2)
		for m, rate := range row.ModelRates {
			rec[m] = rate
		}
		rec[ColumnCount] = row.Count
		if withAggregate {
			rec[ColumnFailureProbability] = row.FailureRate
		}
		out[row.Category] = rec
	}
	return out
}

// Table lays the rates out with Count (and the pooled probability when
// withAggregate) ahead of the sorted model columns.
func (r CategoryRates) Table(name, index string, withAggregate bool) report.Table {
	lead := []string{ColumnCount}
	if withAggregate {
		lead = append(lead, ColumnFailureProbability)
	}
	return report.FromNested(name, index, lead, r.Nested(withAggregate))
}

// ConditionalRates returns P(category | failure) per model as
// percentages. Every model gets every category of the table. A model with
// no failures maps every category to 0.
func ConditionalRates(table *CountTable) map[string]map[string]float64 {
	cats := table.Categories()
	out := make(map[string]map[string]float64)
	for _, m := range table.Models() {
		totalYes := 0
		for _, cat := range cats {
			totalYes += table.Get(m, cat).Yes
		}
		rates := make(map[string]float64, len(cats))
		for _, cat := range cats {
			rates[cat] = Percent(table.Get(m, cat).Yes, totalYes)
		}
		out[m] = rates
	}
	return out
}

package analyzer

import (
	"strings"

	"github.com/kamaal505/MLAnalytics/internal/records"
	"github.com/kamaal505/MLAnalytics/internal/report"
)

// Outcome keys used by the flat-record break tables.
const (
	OutcomeFailure = "model_failure"
	OutcomeSuccess = "model_success"
)

// BreakRates is the model-break split for one category.
type BreakRates struct {
	Count   int     `json:"count"`
	Failure float64 `json:"model_failure"`
	Success float64 `json:"model_success"`
}

// BreakRateTable maps category → BreakRates.
type BreakRateTable map[string]BreakRates

// breakOutcome reads a record's break scenario; ok is false when the
// record has none or it is neither yes nor no.
func breakOutcome(r records.FlatRecord) (failure, ok bool) {
	v, present := r.Get(records.FieldModelBreak)
	if !present {
		return false, false
	}
	return records.ParseBreakScenario(v)
}

// trimmedField returns the trimmed value of field; ok is false when the
// field is absent or blank.
func trimmedField(r records.FlatRecord, field string) (string, bool) {
	v := strings.TrimSpace(r.Value(field))
	return v, v != ""
}

// BreaksBy groups records by the trimmed value of field and computes the
// failure/success split per group. Records with a blank field or without a
// yes/no break scenario are skipped.
func BreaksBy(recs []records.FlatRecord, field string) BreakRateTable {
	counts := make(map[string]*Counts)
	for _, r := range recs {
		key, ok := trimmedField(r, field)
		if !ok {
			continue
		}
		failed, ok := breakOutcome(r)
		if !ok {
			continue
		}
		c, exists := counts[key]
		if !exists {
			c = &Counts{}
			counts[key] = c
		}
		c.Add(failed)
	}

	out := make(BreakRateTable, len(counts))
	for key, c := range counts {
		out[key] = BreakRates{
			Count:   c.Total(),
			Failure: Percent(c.Yes, c.Total()),
			Success: Percent(c.No, c.Total()),
		}
	}
	return out
}

// RatesOnly drops the count, matching the complexity export's shape.
func (t BreakRateTable) RatesOnly() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(t))
	for k, r := range t {
		out[k] = map[string]float64{OutcomeFailure: r.Failure, OutcomeSuccess: r.Success}
	}
	return out
}

// Table renders the split with the given index header. withCount adds the
// group size column.
func (t BreakRateTable) Table(name, index string, withCount bool) report.Table {
	header := []string{index}
	if withCount {
		header = append(header, "count")
	}
	header = append(header, OutcomeFailure+" (%)", OutcomeSuccess+" (%)")

	tbl := report.Table{Name: name, Header: header}
	for _, key := range report.SortedKeys(t) {
		r := t[key]
		cells := []any{key}
		if withCount {
			cells = append(cells, r.Count)
		}
		cells = append(cells, r.Failure, r.Success)
		tbl.AddRow(cells...)
	}
	return tbl
}

// ErrorTypeByPromptType returns, per prompt type, the share of each error
// type among that prompt type's records. Records without a prompt type or
// with a blank error type are skipped. The prompt type is used untrimmed.
func ErrorTypeByPromptType(recs []records.FlatRecord) map[string]map[string]float64 {
	counts := make(map[string]map[string]int)
	totals := make(map[string]int)
	for _, r := range recs {
		ptype := r.Value(records.FieldPromptType)
		if ptype == "" {
			continue
		}
		errType, ok := trimmedField(r, records.FieldErrorType)
		if !ok {
			continue
		}
		if counts[ptype] == nil {
			counts[ptype] = make(map[string]int)
		}
		counts[ptype][errType]++
		totals[ptype]++
	}

	out := make(map[string]map[string]float64, len(counts))
	for ptype, byErr := range counts {
		rates := make(map[string]float64, len(byErr))
		for errType, n := range byErr {
			rates[errType] = Percent(n, totals[ptype])
		}
		out[ptype] = rates
	}
	return out
}

// LongTable flattens outer → inner → value into rows of (outer, inner,
// value), sorted by both keys.
func LongTable(name string, header []string, nested map[string]map[string]float64) report.Table {
	tbl := report.Table{Name: name, Header: header}
	for _, outer := range report.SortedKeys(nested) {
		for _, inner := range report.SortedKeys(nested[outer]) {
			tbl.AddRow(outer, inner, nested[outer][inner])
		}
	}
	return tbl
}

// TopicBreaks returns, for each break outcome, the share of each topic
// among records with that outcome. Both outcome keys are always present.
func TopicBreaks(recs []records.FlatRecord) map[string]map[string]float64 {
	counts := map[string]map[string]int{
		OutcomeFailure: {},
		OutcomeSuccess: {},
	}
	totals := map[string]int{}
	for _, r := range recs {
		topic, ok := trimmedField(r, records.FieldTopic)
		if !ok {
			continue
		}
		failed, ok := breakOutcome(r)
		if !ok {
			continue
		}
		key := OutcomeSuccess
		if failed {
			key = OutcomeFailure
		}
		counts[key][topic]++
		totals[key]++
	}

	out := make(map[string]map[string]float64, 2)
	for key, byTopic := range counts {
		rates := make(map[string]float64, len(byTopic))
		for topic, n := range byTopic {
			rates[topic] = Percent(n, totals[key])
		}
		out[key] = rates
	}
	return out
}

// OutcomeShare is a count and its percentage of the total.
type OutcomeShare struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// OverallBreaks is the model-break split across every record.
type OverallBreaks struct {
	TotalCount int          `json:"total_count"`
	Failure    OutcomeShare `json:"model_failure"`
	Success    OutcomeShare `json:"model_success"`
}

// OverallBreakDistribution counts every record with a yes/no break
// scenario, regardless of its other fields. ok is false when no record
// qualifies.
func OverallBreakDistribution(recs []records.FlatRecord) (OverallBreaks, bool) {
	var c Counts
	for _, r := range recs {
		failed, ok := breakOutcome(r)
		if !ok {
			continue
		}
		c.Add(failed)
	}
	if c.Total() == 0 {
		return OverallBreaks{}, false
	}
	return OverallBreaks{
		TotalCount: c.Total(),
		Failure:    OutcomeShare{Count: c.Yes, Percentage: Percent(c.Yes, c.Total())},
		Success:    OutcomeShare{Count: c.No, Percentage: Percent(c.No, c.Total())},
	}, true
}

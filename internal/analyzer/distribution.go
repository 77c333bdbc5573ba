package analyzer

import (
	"fmt"
	"sort"

	"github.com/kamaal505/MLAnalytics/internal/records"
	"github.com/kamaal505/MLAnalytics/internal/report"
)

// ColumnBlankValue replaces the empty-string column of a value
// distribution. A blank error type or break scenario means the model did
// not fail.
const ColumnBlankValue = "Model Success"

// DistributionPair names one (variable, group) distribution to compute.
type DistributionPair struct {
	Variable string
	GroupBy  string
}

// Name returns the output file stem, "<variable>_by_<group>".
func (p DistributionPair) Name() string {
	return fmt.Sprintf("%s_by_%s", p.Variable, p.GroupBy)
}

// ErrorTypesByPromptType is the distribution broken down further into one
// pie chart per prompt type.
var ErrorTypesByPromptType = DistributionPair{Variable: records.FieldErrorType, GroupBy: records.FieldPromptType}

// DefaultDistributions are the pairs the distribution command computes.
var DefaultDistributions = []DistributionPair{
	{Variable: records.FieldModelBreak, GroupBy: records.FieldComplexity},
	{Variable: records.FieldModelBreak, GroupBy: records.FieldPromptType},
	ErrorTypesByPromptType,
}

// Distribution is the share of each variable value within each group.
type Distribution struct {
	Pair    DistributionPair
	Groups  []string
	Columns []string
	// Shares maps group → column → percentage. Every group carries every
	// column; absent combinations are 0.
	Shares map[string]map[string]float64
}

// ValueDistribution computes, per value of pair.GroupBy, the percentage of
// records holding each value of pair.Variable. Records with a missing or
// empty group value are dropped, as are records without the variable. A
// group with no remaining record does not appear. Group and variable
// values are used verbatim.
func ValueDistribution(recs []records.FlatRecord, pair DistributionPair) Distribution {
	counts := make(map[string]map[string]int)
	totals := make(map[string]int)
	valueSet := make(map[string]bool)

	for _, r := range recs {
		group := r.Value(pair.GroupBy)
		if group == "" {
			continue
		}
		value, ok := r.Get(pair.Variable)
		if !ok {
			continue
		}
		if counts[group] == nil {
			counts[group] = make(map[string]int)
		}
		counts[group][value]++
		totals[group]++
		valueSet[value] = true
	}

	values := make([]string, 0, len(valueSet))
	for v := range valueSet {
		values = append(values, v)
	}
	sort.Strings(values)

	d := Distribution{
		Pair:   pair,
		Groups: report.SortedKeys(counts),
		Shares: make(map[string]map[string]float64, len(counts)),
	}
	for _, v := range values {
		d.Columns = append(d.Columns, columnName(v))
	}
	for _, g := range d.Groups {
		row := make(map[string]float64, len(values))
		for _, v := range values {
			row[columnName(v)] = Percent(counts[g][v], totals[g])
		}
		d.Shares[g] = row
	}
	return d
}

func columnName(value string) string {
	if value == "" {
		return ColumnBlankValue
	}
	return value
}

// Table lays the distribution out with one row per group. Columns keep
// the order of the sorted variable values.
func (d Distribution) Table() report.Table {
	header := append([]string{d.Pair.GroupBy}, d.Columns...)
	tbl := report.Table{Name: d.Pair.Name(), Header: header}
	for _, g := range d.Groups {
		cells := []any{g}
		for _, col := range d.Columns {
			cells = append(cells, d.Shares[g][col])
		}
		tbl.AddRow(cells...)
	}
	return tbl
}

// Positive returns the non-zero shares of one group, in column order.
func (d Distribution) Positive(group string) (labels []string, values []float64) {
	for _, col := range d.Columns {
		if v := d.Shares[group][col]; v > 0 {
			labels = append(labels, col)
			values = append(values, v)
		}
	}
	return labels, values
}

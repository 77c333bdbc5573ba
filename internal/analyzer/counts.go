// Package analyzer computes failure, break and distribution tables from
// evaluation records.
package analyzer

import (
	"math"
	"sort"
)

// Counts tallies failure (Yes) and non-failure (No) outcomes.
type Counts struct {
	Yes int `json:"yes"`
	No  int `json:"no"`
}

// Total returns Yes+No.
func (c Counts) Total() int {
	return c.Yes + c.No
}

// Add records one outcome.
func (c *Counts) Add(failure bool) {
	if failure {
		c.Yes++
	} else {
		c.No++
	}
}

// CountTable maps model → category → Counts. Entries are created lazily on
// first Accumulate; a table never outlives the aggregation that built it.
type CountTable struct {
	cells map[string]map[string]*Counts
}

// NewCountTable returns an empty table.
func NewCountTable() *CountTable {
	return &CountTable{cells: make(map[string]map[string]*Counts)}
}

// Accumulate adds one outcome to the (model, category) cell.
func (t *CountTable) Accumulate(model, category string, failure bool) {
	byCat, ok := t.cells[model]
	if !ok {
		byCat = make(map[string]*Counts)
		t.cells[model] = byCat
	}
	c, ok := byCat[category]
	if !ok {
		c = &Counts{}
		byCat[category] = c
	}
	c.Add(failure)
}

// Get returns the counts for (model, category); zero when never touched.
func (t *CountTable) Get(model, category string) Counts {
	if c, ok := t.cells[model][category]; ok {
		return *c
	}
	return Counts{}
}

// Has reports whether (model, category) was ever accumulated.
func (t *CountTable) Has(model, category string) bool {
	_, ok := t.cells[model][category]
	return ok
}

// Models returns every model in the table, sorted.
func (t *CountTable) Models() []string {
	models := make([]string, 0, len(t.cells))
	for m := range t.cells {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}

// Categories returns the union of categories across models, sorted.
func (t *CountTable) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, byCat := range t.cells {
		for c := range byCat {
			if !seen[c] {
				seen[c] = true
				cats = append(cats, c)
			}
		}
	}
	sort.Strings(cats)
	return cats
}

// CategoriesOf returns the categories touched for one model, sorted.
func (t *CountTable) CategoriesOf(model string) []string {
	cats := make([]string, 0, len(t.cells[model]))
	for c := range t.cells[model] {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// Round2 rounds to two decimal places, halves away from zero. Every
// percentage in the package goes through it.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Percent returns 100*num/den rounded to two places, or 0 when den is 0.
func Percent(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return Round2(float64(num) / float64(den) * 100)
}

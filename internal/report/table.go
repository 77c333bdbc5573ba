// Package report holds finished tables: computed values laid out in rows
// and columns, ready for the CSV, JSON, SQLite, chart and console sinks.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Table is a named header plus rows of cells. The first column holds each
// row's key; a nil cell is a missing value.
type Table struct {
	// Name is the file stem used by sinks, e.g. "prob_model".
	Name   string
	Header []string
	Rows   [][]any
}

// AddRow appends a row. Short rows are padded with nil cells.
func (t *Table) AddRow(cells ...any) {
	row := make([]any, len(t.Header))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Columns returns the header without the leading key column.
func (t Table) Columns() []string {
	if len(t.Header) == 0 {
		return nil
	}
	return t.Header[1:]
}

// Records returns the table as key → column → value, the nested form
// written to JSON. Nil cells are omitted.
func (t Table) Records() map[string]map[string]any {
	out := make(map[string]map[string]any, len(t.Rows))
	cols := t.Columns()
	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			if v := row[i+1]; v != nil {
				rec[col] = v
			}
		}
		out[FormatCell(row[0])] = rec
	}
	return out
}

// MarshalJSON encodes the table in its nested Records form, without HTML
// escaping.
func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t.Records()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Float returns the numeric value at (row, column name), and whether it
// exists and is numeric.
func (t Table) Float(row int, column string) (float64, bool) {
	if row < 0 || row >= len(t.Rows) {
		return 0, false
	}
	for i, h := range t.Header {
		if h == column && i < len(t.Rows[row]) {
			return toFloat(t.Rows[row][i])
		}
	}
	return 0, false
}

// FromNested builds a table with one row per outer key, sorted. The lead
// columns come first in the order given; every other inner key follows in
// sorted order.
func FromNested[V any](name, index string, lead []string, rows map[string]map[string]V) Table {
	seen := make(map[string]bool)
	for _, c := range lead {
		seen[c] = true
	}
	var rest []string
	for _, inner := range rows {
		for col := range inner {
			if !seen[col] {
				seen[col] = true
				rest = append(rest, col)
			}
		}
	}
	sort.Strings(rest)

	header := append([]string{index}, lead...)
	header = append(header, rest...)
	t := Table{Name: name, Header: header}

	for _, key := range SortedKeys(rows) {
		inner := rows[key]
		cells := make([]any, 0, len(header))
		cells = append(cells, key)
		for _, col := range header[1:] {
			if v, ok := inner[col]; ok {
				cells = append(cells, v)
			} else {
				cells = append(cells, nil)
			}
		}
		t.AddRow(cells...)
	}
	return t
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatCell renders a cell for text output. Floats use the shortest
// representation and keep a trailing ".0" when integral, so 75 prints as
// "75.0" and 33.33 as "33.33".
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

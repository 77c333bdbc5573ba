package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/kamaal505/MLAnalytics/internal/report"
)

// MarshalCSV renders a table as CSV: the header row, then one line per
// row with cells formatted by report.FormatCell.
func MarshalCSV(t report.Table) ([]byte, error) {
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		line := make([]string, len(t.Header))
		for i := range line {
			if i < len(row) {
				line[i] = report.FormatCell(row[i])
			}
		}
		rows = append(rows, line)
	}
	return marshalRows(t.Header, rows)
}

func marshalRows(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV replaces path with the CSV rendering of t.
func WriteCSV(path string, t report.Table) error {
	data, err := MarshalCSV(t)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return writeFile(path, data)
}

// WriteRows replaces path with a CSV of plain string rows.
func WriteRows(path string, header []string, rows [][]string) error {
	data, err := marshalRows(header, rows)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

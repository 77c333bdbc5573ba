package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kamaal505/MLAnalytics/internal/report"
)

// Sink receives every table written as CSV, e.g. a database.
type Sink interface {
	WriteTable(t report.Table) error
}

// Dir writes a run's outputs into one directory and remembers what it
// wrote.
type Dir struct {
	Path    string
	sinks   []Sink
	written []string
}

// NewDir creates path if needed and returns a Dir writing into it.
func NewDir(path string, sinks ...Sink) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Dir{Path: path, sinks: sinks}, nil
}

// File returns the path of name inside the directory.
func (d *Dir) File(name string) string {
	return filepath.Join(d.Path, name)
}

// JSON writes v to name.
func (d *Dir) JSON(name string, v any) error {
	path := d.File(name)
	if err := WriteJSON(path, v); err != nil {
		return err
	}
	d.Track(path)
	return nil
}

// CSV writes t to "<t.Name>.csv" and hands it to every sink.
func (d *Dir) CSV(t report.Table) error {
	path := d.File(t.Name + ".csv")
	if err := WriteCSV(path, t); err != nil {
		return err
	}
	d.Track(path)
	for _, s := range d.sinks {
		if err := s.WriteTable(t); err != nil {
			return fmt.Errorf("storing %s: %w", t.Name, err)
		}
	}
	return nil
}

// Table writes t as "<t.Name>.csv" and, in nested key → record form, as
// "<t.Name>.json".
func (d *Dir) Table(t report.Table) error {
	if err := d.CSV(t); err != nil {
		return err
	}
	return d.JSON(t.Name+".json", t.Records())
}

// Rows writes plain string rows to name.
func (d *Dir) Rows(name string, header []string, rows [][]string) error {
	path := d.File(name)
	if err := WriteRows(path, header, rows); err != nil {
		return err
	}
	d.Track(path)
	return nil
}

// Track records a file written by someone else, such as a chart.
func (d *Dir) Track(path string) {
	d.written = append(d.written, path)
}

// Written returns every file written so far, in order.
func (d *Dir) Written() []string {
	return d.written
}

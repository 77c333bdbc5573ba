package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/kamaal505/MLAnalytics/internal/report"
)

// columnSep joins a table's column names in result_tables.columns.
const columnSep = "\x1f"

// RunWriter stores the tables of one run. It satisfies export.Sink.
type RunWriter struct {
	db  *DB
	Run Run
}

// BeginRun records a command invocation and returns a writer for its
// tables.
func (db *DB) BeginRun(command, input string) (*RunWriter, error) {
	result, err := db.conn.Exec("INSERT INTO runs (command, input) VALUES (?, ?)", command, input)
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &RunWriter{db: db, Run: Run{ID: id, Command: command, Input: input}}, nil
}

// WriteTable stores every non-missing cell of t in one transaction.
func (w *RunWriter) WriteTable(t report.Table) error {
	if len(t.Header) == 0 {
		return fmt.Errorf("table %q has no header", t.Name)
	}

	tx, err := w.db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"INSERT INTO result_tables (run_id, name, index_column, columns) VALUES (?, ?, ?, ?)",
		w.Run.ID, t.Name, t.Header[0], strings.Join(t.Columns(), columnSep),
	)
	if err != nil {
		return fmt.Errorf("inserting table: %w", err)
	}
	tableID, err := result.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO cells
		(table_id, row_num, row_key, column_name, value_real, value_text)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		key := report.FormatCell(row[0])
		for j, col := range t.Columns() {
			v := row[j+1]
			if v == nil {
				continue
			}
			var num sql.NullFloat64
			var txt sql.NullString
			if f, ok := t.Float(i, col); ok {
				num = sql.NullFloat64{Float64: f, Valid: true}
			} else {
				txt = sql.NullString{String: report.FormatCell(v), Valid: true}
			}
			if _, err := stmt.Exec(tableID, i, key, col, num, txt); err != nil {
				return fmt.Errorf("inserting cell %s/%s: %w", key, col, err)
			}
		}
	}

	return tx.Commit()
}

// GetRuns returns every stored run in insertion order.
func (db *DB) GetRuns() ([]Run, error) {
	rows, err := db.conn.Query("SELECT id, command, input FROM runs ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Command, &r.Input); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetTables returns the tables stored for a run.
func (db *DB) GetTables(runID int64) ([]StoredTable, error) {
	rows, err := db.conn.Query(`
		SELECT t.id, t.run_id, t.name, t.columns,
		       (SELECT COUNT(DISTINCT row_num) FROM cells c WHERE c.table_id = t.id)
		FROM result_tables t
		WHERE t.run_id = ?
		ORDER BY t.id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []StoredTable
	for rows.Next() {
		var st StoredTable
		var cols string
		if err := rows.Scan(&st.ID, &st.RunID, &st.Name, &cols, &st.Rows); err != nil {
			return nil, err
		}
		st.Columns = splitColumns(cols)
		tables = append(tables, st)
	}
	return tables, rows.Err()
}

// LoadTable rebuilds a stored table of a run. Numeric cells come back as
// float64.
func (db *DB) LoadTable(runID int64, name string) (report.Table, error) {
	var tableID int64
	var index, cols string
	err := db.conn.QueryRow(
		"SELECT id, index_column, columns FROM result_tables WHERE run_id = ? AND name = ?",
		runID, name,
	).Scan(&tableID, &index, &cols)
	if err != nil {
		return report.Table{}, fmt.Errorf("loading table %s: %w", name, err)
	}

	columns := splitColumns(cols)
	t := report.Table{Name: name, Header: append([]string{index}, columns...)}
	position := make(map[string]int, len(columns))
	for i, c := range columns {
		position[c] = i + 1
	}

	rows, err := db.conn.Query(`
		SELECT row_num, row_key, column_name, value_real, value_text
		FROM cells WHERE table_id = ? ORDER BY row_num`, tableID)
	if err != nil {
		return report.Table{}, err
	}
	defer rows.Close()

	last := -1
	for rows.Next() {
		var rowNum int
		var key, col string
		var num sql.NullFloat64
		var txt sql.NullString
		if err := rows.Scan(&rowNum, &key, &col, &num, &txt); err != nil {
			return report.Table{}, err
		}
		if rowNum != last {
			t.AddRow(key)
			last = rowNum
		}
		row := t.Rows[len(t.Rows)-1]
		pos, ok := position[col]
		if !ok {
			continue
		}
		if num.Valid {
			row[pos] = num.Float64
		} else if txt.Valid {
			row[pos] = txt.String
		}
	}
	return t, rows.Err()
}

func splitColumns(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, columnSep)
}

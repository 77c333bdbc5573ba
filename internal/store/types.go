// Package store provides the optional SQLite sink for exported tables.
package store

// Run is one command invocation whose tables were stored.
type Run struct {
	ID      int64  `json:"id"`
	Command string `json:"command"`
	Input   string `json:"input"`
}

// StoredTable describes one table written during a run.
type StoredTable struct {
	ID      int64    `json:"id"`
	RunID   int64    `json:"run_id"`
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

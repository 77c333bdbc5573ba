package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means a fresh database.
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the run, table and cell tables.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			command TEXT NOT NULL,
			input   TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS result_tables (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       INTEGER NOT NULL REFERENCES runs(id),
			name         TEXT NOT NULL,
			index_column TEXT NOT NULL,
			columns      TEXT NOT NULL
		)`,

		// One row per non-missing cell. Numbers go to value_real, anything
		// else to value_text.
		`CREATE TABLE IF NOT EXISTS cells (
			table_id    INTEGER NOT NULL REFERENCES result_tables(id),
			row_num     INTEGER NOT NULL,
			row_key     TEXT NOT NULL,
			column_name TEXT NOT NULL,
			value_real  REAL,
			value_text  TEXT,
			PRIMARY KEY (table_id, row_num, column_name)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_result_tables_run ON result_tables(run_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_result_tables_name ON result_tables(run_id, name)`,
		`CREATE INDEX IF NOT EXISTS idx_cells_column ON cells(column_name)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}

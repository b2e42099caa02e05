// Package store tracks dataset loads in SQLite: which extracts were
// ingested, how far each run got, and what went wrong. The analytics state
// itself stays in memory; this store records runs, not records.
package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-delivery-analytics/internal/model"
)

// Store wraps the tracking database. Constructed once by the top-level
// wiring and passed by reference; no package-level state.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite file (":memory:" works for tests) and creates
// the schema if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			name TEXT,
			spec TEXT,
			status TEXT,
			rows_read INTEGER DEFAULT 0,
			records INTEGER DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS load_errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset_id TEXT,
			error_message TEXT,
			missing_columns TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS load_progress (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset_id TEXT,
			stage TEXT,
			status TEXT,
			started_at DATETIME,
			ended_at DATETIME,
			records INTEGER DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS load_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset_id TEXT,
			stage TEXT,
			level TEXT,
			message TEXT,
			fields TEXT,
			created_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// CreateDataset stores a new dataset load in "pending" state.
func (s *Store) CreateDataset(id string, spec model.DatasetSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = s.db.Exec(
		`INSERT INTO datasets (id, name, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, spec.FileName, string(specJSON), "pending", now, now)
	return err
}

// UpdateStatus moves a dataset load through its lifecycle
// (pending → loading → completed/failed).
func (s *Store) UpdateStatus(id, status string) error {
	_, err := s.db.Exec(`UPDATE datasets SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
	return err
}

// SetCounts records how many source rows were decoded and how many records
// the run produced.
func (s *Store) SetCounts(id string, rowsRead, records int) error {
	_, err := s.db.Exec(`UPDATE datasets SET rows_read = ?, records = ?, updated_at = ? WHERE id = ?`,
		rowsRead, records, time.Now().UTC(), id)
	return err
}

// SaveError records a load failure. Missing-column failures keep their
// column list queryable.
func (s *Store) SaveError(id string, loadErr error) error {
	if loadErr == nil {
		return nil
	}
	var missing string
	if mc, ok := model.AsMissingColumns(loadErr); ok {
		b, _ := json.Marshal(mc.Columns)
		missing = string(b)
	}
	_, err := s.db.Exec(
		`INSERT INTO load_errors (dataset_id, error_message, missing_columns, created_at) VALUES (?, ?, ?, ?)`,
		id, loadErr.Error(), missing, time.Now().UTC())
	return err
}

// SaveProgress records a stage transition of a load run.
func (s *Store) SaveProgress(id, stage, status string, startedAt time.Time, endedAt *time.Time, records int) error {
	_, err := s.db.Exec(
		`INSERT INTO load_progress (dataset_id, stage, status, started_at, ended_at, records) VALUES (?, ?, ?, ?, ?, ?)`,
		id, stage, status, startedAt, endedAt, records)
	return err
}

// SaveLog records one structured log line for a load run.
func (s *Store) SaveLog(id, stage, level, message string, fields map[string]any) error {
	var fieldsJSON string
	if fields != nil {
		b, _ := json.Marshal(fields)
		fieldsJSON = string(b)
	}
	_, err := s.db.Exec(
		`INSERT INTO load_logs (dataset_id, stage, level, message, fields, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, stage, level, message, fieldsJSON, time.Now().UTC())
	return err
}

// DatasetInfo is the stored view of one dataset load.
type DatasetInfo struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Spec      model.DatasetSpec `json:"spec"`
	Status    string            `json:"status"`
	RowsRead  int               `json:"rowsRead"`
	Records   int               `json:"records"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ListDatasets returns all dataset loads, newest first.
func (s *Store) ListDatasets() ([]DatasetInfo, error) {
	rows, err := s.db.Query(
		`SELECT id, name, spec, status, rows_read, records, created_at, updated_at
		 FROM datasets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DatasetInfo
	for rows.Next() {
		var info DatasetInfo
		var specJSON string
		if err := rows.Scan(&info.ID, &info.Name, &specJSON, &info.Status,
			&info.RowsRead, &info.Records, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(specJSON), &info.Spec); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// GetDataset fetches one dataset load by id.
func (s *Store) GetDataset(id string) (*DatasetInfo, error) {
	var info DatasetInfo
	var specJSON string
	err := s.db.QueryRow(
		`SELECT id, name, spec, status, rows_read, records, created_at, updated_at
		 FROM datasets WHERE id = ?`, id).
		Scan(&info.ID, &info.Name, &specJSON, &info.Status,
			&info.RowsRead, &info.Records, &info.CreatedAt, &info.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(specJSON), &info.Spec); err != nil {
		return nil, err
	}
	return &info, nil
}

// LoadError is one stored load failure.
type LoadError struct {
	Message        string    `json:"message"`
	MissingColumns []string  `json:"missingColumns,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// GetErrors returns the failures recorded for one dataset load.
func (s *Store) GetErrors(id string) ([]LoadError, error) {
	rows, err := s.db.Query(
		`SELECT error_message, missing_columns, created_at FROM load_errors
		 WHERE dataset_id = ? ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoadError
	for rows.Next() {
		var le LoadError
		var missing string
		if err := rows.Scan(&le.Message, &missing, &le.CreatedAt); err != nil {
			return nil, err
		}
		if missing != "" {
			if err := json.Unmarshal([]byte(missing), &le.MissingColumns); err != nil {
				return nil, err
			}
		}
		out = append(out, le)
	}
	return out, rows.Err()
}

// LogEntry is one stored log line.
type LogEntry struct {
	Stage     string         `json:"stage"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// GetLogs returns the log lines recorded for one dataset load.
func (s *Store) GetLogs(id string) ([]LogEntry, error) {
	rows, err := s.db.Query(
		`SELECT stage, level, message, fields, created_at FROM load_logs
		 WHERE dataset_id = ? ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LogEntry
	for rows.Next() {
		var entry LogEntry
		var fields string
		if err := rows.Scan(&entry.Stage, &entry.Level, &entry.Message, &fields, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if fields != "" {
			if err := json.Unmarshal([]byte(fields), &entry.Fields); err != nil {
				return nil, err
			}
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

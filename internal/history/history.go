// Package history records every dashboard load in a SQL database.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// loadRunsTable is the table that holds one row per load.
const loadRunsTable = "reviewdash_load_runs"

// Store implements contract.HistoryStore on SQLite, MySQL or PostgreSQL.
// With the none backend every write is a no-op.
type Store struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &Store{} // Compile-time check

// driverName returns the database/sql driver registered for backend.
func driverName(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// openDB opens and pings the database of backend. An empty SQLite
// connection string means the default file in the home directory.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	driver, err := driverName(backend)
	if err != nil {
		return nil, err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// A single connection avoids "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var detail string
		switch backend {
		case schema.MySQLBackend:
			detail = "Check that MySQL is running and the connection string is correct (user:password@tcp(host:port)/dbname?parseTime=true)."
		case schema.PostgreSQLBackend:
			detail = "Check that PostgreSQL is running and the connection string is correct (host=... dbname=...)."
		default:
			detail = "Check that the directory is writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, detail)
	}
	return db, nil
}

// NewStore opens the history store for backend and creates its table.
func NewStore(backend schema.DatabaseBackend, connStr string) (*Store, error) {
	if backend == schema.NoneBackend {
		return &Store{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createLoadRunsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", loadRunsTable, err)
	}
	return &Store{db: db, backend: backend}, nil
}

// createLoadRunsQuery returns the CREATE TABLE statement for backend. It
// matches the first embedded migration.
func createLoadRunsQuery(backend schema.DatabaseBackend) string {
	table := quoteTableName(loadRunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(26) PRIMARY KEY,
				operation VARCHAR(32) NOT NULL,
				review_kind VARCHAR(16) NOT NULL,
				query_string TEXT NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				record_count BIGINT,
				average_score DOUBLE,
				status VARCHAR(16),
				error_message TEXT
			);
		`, table)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				operation TEXT NOT NULL,
				review_kind TEXT NOT NULL,
				query_string TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				record_count BIGINT,
				average_score DOUBLE PRECISION,
				status TEXT,
				error_message TEXT
			);
		`, table)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				operation TEXT NOT NULL,
				review_kind TEXT NOT NULL,
				query_string TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				record_count INTEGER,
				average_score REAL,
				status TEXT,
				error_message TEXT
			);
		`, table)
	}
}

// BeginLoad inserts a row for a load that just started.
func (s *Store) BeginLoad(run schema.LoadRun) error {
	if s.db == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, operation, review_kind, query_string, start_time) VALUES (%s)`,
		quoteTableName(loadRunsTable, s.backend), placeholders(s.backend, 5))
	_, err := s.db.Exec(query, run.RunID, string(run.Operation), string(run.Kind), run.Query, formatTime(run.StartTime, s.backend))
	if err != nil {
		return fmt.Errorf("failed to insert load run: %w", err)
	}
	return nil
}

// EndLoad completes the row of runID with its outcome and duration.
func (s *Store) EndLoad(runID string, outcome schema.LoadOutcome) error {
	if s.db == nil {
		return nil
	}

	table := quoteTableName(loadRunsTable, s.backend)
	row := s.db.QueryRow(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, table, placeholder(s.backend, 1)), runID)
	startTime, err := scanTime(row)
	if err != nil {
		return fmt.Errorf("failed to get start_time for load %s: %w", runID, err)
	}

	var errMsg *string
	if outcome.ErrorMessage != "" {
		errMsg = &outcome.ErrorMessage
	}

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, record_count = %s, average_score = %s, status = %s, error_message = %s WHERE run_id = %s`,
		table,
		placeholder(s.backend, 1), placeholder(s.backend, 2), placeholder(s.backend, 3),
		placeholder(s.backend, 4), placeholder(s.backend, 5), placeholder(s.backend, 6),
		placeholder(s.backend, 7))
	_, err = s.db.Exec(update,
		formatTime(outcome.EndTime, s.backend),
		outcome.EndTime.Sub(startTime).Milliseconds(),
		outcome.RecordCount,
		outcome.AverageScore,
		string(outcome.Status),
		errMsg,
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update load run: %w", err)
	}
	return nil
}

// GetStatus returns status information about the history store.
func (s *Store) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}
	if s.db == nil {
		return status, nil
	}

	table := quoteTableName(loadRunsTable, s.backend)
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	status.TableSizes[loadRunsTable] = int64(status.TotalRuns)
	if status.TotalRuns == 0 {
		return status, nil
	}

	failedQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status = %s", table, placeholder(s.backend, 1))
	if err := s.db.QueryRow(failedQuery, string(schema.LoadFailed)).Scan(&status.FailedRuns); err != nil {
		return status, fmt.Errorf("failed to get failed runs: %w", err)
	}

	recordsQuery := fmt.Sprintf("SELECT COALESCE(SUM(record_count), 0) FROM %s WHERE operation = %s", table, placeholder(s.backend, 1))
	if err := s.db.QueryRow(recordsQuery, string(schema.LogsOperation)).Scan(&status.TotalRecords); err != nil {
		return status, fmt.Errorf("failed to get total records: %w", err)
	}

	// ULIDs sort by creation time
	row := s.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", table))
	var lastID string
	var lastStart any
	if err := row.Scan(&lastID, &lastStart); err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}
	lastTime, err := toTime(lastStart)
	if err != nil {
		return status, fmt.Errorf("failed to parse last run time: %w", err)
	}
	status.LastRunID = lastID
	status.LastRunTime = lastTime

	oldest, err := scanTime(s.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", table)))
	if err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	status.OldestRunTime = oldest
	return status, nil
}

// GetAllLoadRuns retrieves every load run, oldest first.
func (s *Store) GetAllLoadRuns() ([]schema.LoadRunRecord, error) {
	if s.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, operation, review_kind, query_string, start_time, end_time,
		run_duration_ms, record_count, average_score, status, error_message
		FROM %s ORDER BY run_id`, quoteTableName(loadRunsTable, s.backend))
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query load runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.LoadRunRecord
	for rows.Next() {
		var record schema.LoadRunRecord
		var start, end any
		if err := rows.Scan(&record.RunID, &record.Operation, &record.ReviewKind, &record.Query, &start, &end,
			&record.RunDurationMs, &record.RecordCount, &record.AverageScore, &record.Status, &record.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan load run: %w", err)
		}
		if record.StartTime, err = toTime(start); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if end != nil {
			endTime, err := toTime(end)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &endTime
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating load runs: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanTime reads a single start_time column.
func scanTime(row *sql.Row) (time.Time, error) {
	var v any
	if err := row.Scan(&v); err != nil {
		return time.Time{}, err
	}
	return toTime(v)
}

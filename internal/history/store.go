package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/schema"
)

// Store implements the HistoryStore interface.
type Store struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &Store{} // Compile-time check

// NewStore creates a new history store with the specified backend.
// NoneBackend yields a store whose operations are no-ops.
func NewStore(backend schema.DatabaseBackend, connStr string) (*Store, error) {
	if backend == schema.NoneBackend || backend == "" {
		return &Store{backend: schema.NoneBackend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := createTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &Store{db: db, backend: backend}, nil
}

// createTables applies the initial schema idempotently.
func createTables(db *sql.DB, backend schema.DatabaseBackend) error {
	path := fmt.Sprintf("migrations/%s/000001_create_history.up.sql", migrationDir(backend))
	data, err := fs.ReadFile(migrationsFS, path)
	if err != nil {
		return fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	for _, stmt := range strings.Split(string(data), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Backend returns the configured backend.
func (s *Store) Backend() schema.DatabaseBackend { return s.backend }

func (s *Store) disabled() bool {
	return s.backend == schema.NoneBackend || s.db == nil
}

// BeginQuery creates a new query run and returns its unique ID.
func (s *Store) BeginQuery(sessionID string, startTime time.Time, params schema.RankingParams) (int64, error) {
	if s.disabled() {
		return 0, nil
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal query params: %w", err)
	}

	quotedTableName := quoteTableName(queryRunsTable, s.backend)
	args := []any{sessionID, formatTime(startTime, s.backend), string(schema.QueryPending), string(paramsJSON)}

	var runID int64
	switch s.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (session_id, start_time, status, params) VALUES (%s) RETURNING run_id`,
			quotedTableName, placeholders(s.backend, len(args)))
		err = s.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (session_id, start_time, status, params) VALUES (%s)`,
			quotedTableName, placeholders(s.backend, len(args)))
		var result sql.Result
		result, err = s.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert query run: %w", err)
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert query run: %w", err)
	}
	return runID, nil
}

// EndQuery updates the query run with its outcome.
func (s *Store) EndQuery(runID int64, endTime time.Time, status schema.QueryStatus, rowCount int, errText string) error {
	if s.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(queryRunsTable, s.backend)

	// First, get the start_time to calculate duration
	var selectQuery string
	switch s.backend {
	case schema.PostgreSQLBackend:
		selectQuery = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = $1`, quotedTableName)
	default:
		selectQuery = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName)
	}

	start := timeScanner{backend: s.backend}
	if err := s.db.QueryRow(selectQuery, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	var errValue any
	if errText != "" {
		errValue = errText
	}

	var updateQuery string
	switch s.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, status = $3, row_count = $4, error_text = $5 WHERE run_id = $6`, quotedTableName)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, status = ?, row_count = ?, error_text = ? WHERE run_id = ?`, quotedTableName)
	}

	if _, err := s.db.Exec(updateQuery, formatTime(endTime, s.backend), durationMs, string(status), rowCount, errValue, runID); err != nil {
		return fmt.Errorf("failed to update query run: %w", err)
	}
	return nil
}

// RecordRows stores the ranked rows of a run. Rank follows server order, starting at 1.
func (s *Store) RecordRows(runID int64, rows []schema.RankingRow) error {
	if s.disabled() || len(rows) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (run_id, row_rank, country, change_value, damage) VALUES (%s)`,
		quoteTableName(queryRowsTable, s.backend), placeholders(s.backend, 5))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range rows {
		if _, err := stmt.Exec(runID, i+1, row.Country, row.Change, row.Damage); err != nil {
			return fmt.Errorf("failed to insert row %d of run %d: %w", i+1, runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rows: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
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
	if s.disabled() {
		return status, nil
	}

	runsTable := quoteTableName(queryRunsTable, s.backend)

	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: s.backend}
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		if err := s.db.QueryRow(lastQuery).Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, err := last.value()
		if err != nil {
			return status, err
		}
		if lastTime != nil {
			status.LastRunTime = *lastTime
		}

		oldest := timeScanner{backend: s.backend}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable)
		if err := s.db.QueryRow(oldestQuery).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, err := oldest.value()
		if err != nil {
			return status, err
		}
		if oldestTime != nil {
			status.OldestRunTime = *oldestTime
		}

		var failedQuery string
		switch s.backend {
		case schema.PostgreSQLBackend:
			failedQuery = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status = $1", runsTable)
		default:
			failedQuery = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status = ?", runsTable)
		}
		if err := s.db.QueryRow(failedQuery, string(schema.QueryFailed)).Scan(&status.FailedRuns); err != nil {
			return status, fmt.Errorf("failed to get failed runs: %w", err)
		}
	}

	for _, table := range Tables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, s.backend))
		if err := s.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all query runs ordered by ID.
func (s *Store) GetAllRuns() ([]schema.QueryRunRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, session_id, start_time, end_time, run_duration_ms, status, row_count, params, error_text
    FROM %s ORDER BY run_id`, quoteTableName(queryRunsTable, s.backend))

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.QueryRunRecord
	for rows.Next() {
		var (
			record     schema.QueryRunRecord
			status     string
			duration   sql.NullInt32
			params     sql.NullString
			errText    sql.NullString
			start, end = timeScanner{backend: s.backend}, timeScanner{backend: s.backend}
		)
		if err := rows.Scan(&record.RunID, &record.SessionID, start.dest(), end.dest(), &duration,
			&status, &record.RowCount, &params, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan query run: %w", err)
		}

		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		record.Status = schema.QueryStatus(status)
		if duration.Valid {
			record.DurationMs = &duration.Int32
		}
		if params.Valid {
			record.Params = &params.String
		}
		if errText.Valid {
			record.ErrorText = &errText.String
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating query runs: %w", err)
	}
	return results, nil
}

// GetAllRows retrieves all ranked rows ordered by run and rank.
func (s *Store) GetAllRows() ([]schema.QueryRowRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, row_rank, country, change_value, damage FROM %s ORDER BY run_id, row_rank`,
		quoteTableName(queryRowsTable, s.backend))

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.QueryRowRecord
	for rows.Next() {
		var record schema.QueryRowRecord
		if err := rows.Scan(&record.RunID, &record.Rank, &record.Country, &record.Change, &record.Damage); err != nil {
			return nil, fmt.Errorf("failed to scan query row: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating query rows: %w", err)
	}
	return results, nil
}

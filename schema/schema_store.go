package schema

import "time"

// QueryRunRecord represents a row from the globeplay_query_runs table.
type QueryRunRecord struct {
	RunID      int64
	SessionID  string
	StartTime  time.Time
	EndTime    *time.Time
	DurationMs *int32
	Status     QueryStatus
	RowCount   int32
	Params     *string
	ErrorText  *string
}

// QueryRowRecord represents a row from the globeplay_query_rows table.
type QueryRowRecord struct {
	RunID   int64
	Rank    int32
	Country string
	Change  float64
	Damage  float64
}

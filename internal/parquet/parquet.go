// Package parquet provides data structures and functions for exporting ranking
// results and query history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/globeplay/schema"
	"github.com/parquet-go/parquet-go"
)

// QueryRun represents a single ranking query run with metadata.
// This struct maps to the globeplay_query_runs database table.
type QueryRun struct {
	// RunID is the unique identifier for this query run
	RunID int64 `parquet:"run_id,snappy"`

	// SessionID identifies the controller session that issued the query
	SessionID string `parquet:"session_id,snappy"`

	// StartTime is when the query was issued (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the query settled (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// DurationMs is the duration of the query in milliseconds (nullable)
	DurationMs *int32 `parquet:"duration_ms,optional,snappy"`

	// Status is pending, ok or failed
	Status string `parquet:"status,snappy"`

	// RowCount is the number of ranked rows returned
	RowCount int32 `parquet:"row_count,snappy"`

	// Params contains the JSON-encoded query parameters (nullable)
	Params *string `parquet:"params,optional,snappy"`

	// ErrorText is the failure reason of a failed run (nullable)
	ErrorText *string `parquet:"error_text,optional,snappy"`
}

// QueryRow is one ranked row of a query run, in server order.
// This struct maps to the globeplay_query_rows database table.
type QueryRow struct {
	RunID   int64   `parquet:"run_id,snappy"`
	Rank    int32   `parquet:"rank,snappy"`
	Country string  `parquet:"country,snappy"`
	Change  float64 `parquet:"change,snappy"`
	Damage  float64 `parquet:"damage,snappy"`
}

// RankingEntry is one row of a ranking result exported straight from a query.
type RankingEntry struct {
	Rank          int32   `parquet:"rank,snappy"`
	Country       string  `parquet:"country,snappy"`
	Change        float64 `parquet:"change,snappy"`
	Damage        float64 `parquet:"damage,snappy"`
	DamagePercent float64 `parquet:"damage_percent,snappy"`
	Metric        string  `parquet:"metric,snappy"`
	Model         string  `parquet:"model,snappy"`
	Scenario      string  `parquet:"scenario,snappy"`
	StartDate     string  `parquet:"start_date,snappy"`
	EndDate       string  `parquet:"end_date,snappy"`
}

// WriteQueryRunsParquet writes query runs to a Parquet file.
func WriteQueryRunsParquet(data []QueryRun, outputPath string) error {
	return writeParquetFile(data, outputPath)
}

// WriteQueryRowsParquet writes ranked rows to a Parquet file.
func WriteQueryRowsParquet(data []QueryRow, outputPath string) error {
	return writeParquetFile(data, outputPath)
}

// WriteRankingParquet writes a ranking result to a Parquet file.
func WriteRankingParquet(data []RankingEntry, outputPath string) error {
	return writeParquetFile(data, outputPath)
}

// writeParquetFile creates outputPath and writes data with a schema inferred from T's tags.
func writeParquetFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := WriteParquet(file, data); err != nil {
		return err
	}
	return file.Close()
}

// WriteParquet writes data to w and flushes the footer.
func WriteParquet[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ReadParquetFile reads every row of a Parquet file written with T's schema.
func ReadParquetFile[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return rows[:n], nil
}

// ConvertQueryRunRecords converts history run records for Parquet export.
func ConvertQueryRunRecords(records []schema.QueryRunRecord) []QueryRun {
	result := make([]QueryRun, len(records))
	for i, record := range records {
		result[i] = QueryRun{
			RunID:      record.RunID,
			SessionID:  record.SessionID,
			StartTime:  record.StartTime,
			EndTime:    record.EndTime,
			DurationMs: record.DurationMs,
			Status:     string(record.Status),
			RowCount:   record.RowCount,
			Params:     record.Params,
			ErrorText:  record.ErrorText,
		}
	}
	return result
}

// ConvertQueryRowRecords converts history row records for Parquet export.
func ConvertQueryRowRecords(records []schema.QueryRowRecord) []QueryRow {
	result := make([]QueryRow, len(records))
	for i, record := range records {
		result[i] = QueryRow{
			RunID:   record.RunID,
			Rank:    record.Rank,
			Country: record.Country,
			Change:  record.Change,
			Damage:  record.Damage,
		}
	}
	return result
}

// ConvertRankingTable flattens a ranking result with its query parameters.
func ConvertRankingTable(table schema.RankingTable, params schema.RankingParams) []RankingEntry {
	result := make([]RankingEntry, len(table.Source))
	for i, row := range table.Source {
		result[i] = RankingEntry{
			Rank:          int32(i + 1),
			Country:       row.Country,
			Change:        row.Change,
			Damage:        row.Damage,
			DamagePercent: row.Damage * 100,
			Metric:        params.Metric,
			Model:         params.Model,
			Scenario:      params.Scenario,
			StartDate:     params.StartDate,
			EndDate:       params.EndDate,
		}
	}
	return result
}

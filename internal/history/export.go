package history

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/parquet"
)

// Export writes every recorded run and row to Parquet files derived from outputFile.
func Export(store contract.HistoryStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no query history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total query runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total ranked rows: %d\n", status.TableSizes[queryRowsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve query runs: %w", err)
	}
	rows, err := store.GetAllRows()
	if err != nil {
		return fmt.Errorf("failed to retrieve query rows: %w", err)
	}

	parquetRuns := parquet.ConvertQueryRunRecords(runs)
	runsFile := outputFile + ".query_runs.parquet"
	if err := parquet.WriteQueryRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write query runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d query runs to: %s\n", len(parquetRuns), runsFile)

	parquetRows := parquet.ConvertQueryRowRecords(rows)
	rowsFile := outputFile + ".query_rows.parquet"
	if err := parquet.WriteQueryRowsParquet(parquetRows, rowsFile); err != nil {
		return fmt.Errorf("failed to write query rows: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d ranked rows to: %s\n", len(parquetRows), rowsFile)

	return nil
}

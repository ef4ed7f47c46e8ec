package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/parquet"
	"github.com/huangsam/globeplay/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRankingResults outputs a ranking result, dispatching based on the output format configured.
func WriteRankingResults(table schema.RankingTable, params schema.RankingParams, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingJSON(w, table, params)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingCSV(w, table)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteRankingParquet(parquet.ConvertRankingTable(table, params), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingTable(w, table, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeRankingTable renders the human-readable ranking table.
func writeRankingTable(w io.Writer, table schema.RankingTable, cfg *contract.Config, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "🌍 %s\n", table.Title); err != nil {
		return err
	}

	tbl := tablewriter.NewWriter(w)
	tbl.Header(append([]string{"Rank"}, table.Header...))
	tbl.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	data := make([][]string, 0, len(table.Rows))
	for i, row := range table.Rows {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			truncateName(row[0], nameWidth),
			row[1],
			row[2],
		})
	}
	if err := tbl.Bulk(data); err != nil {
		return err
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing top %d regions. Query completed in %v\n", len(table.Rows), duration.Round(time.Millisecond))
	return err
}

// writeRankingCSV writes the materialized rows, keeping the display formatting.
func writeRankingCSV(w io.Writer, table schema.RankingTable) error {
	header := []string{"rank", "country", "change", "damage_percent"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, row := range table.Rows {
			if err := cw.Write([]string{strconv.Itoa(i + 1), row[0], row[1], row[2]}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeRankingJSON writes the raw rows with their rank and query parameters.
func writeRankingJSON(w io.Writer, table schema.RankingTable, params schema.RankingParams) error {
	type jsonRankingRow struct {
		Rank          int     `json:"rank"`
		DamagePercent float64 `json:"damage_percent"`
		schema.RankingRow
	}
	type jsonRanking struct {
		Title  string               `json:"title"`
		Params schema.RankingParams `json:"params"`
		Rows   []jsonRankingRow     `json:"rows"`
	}

	out := jsonRanking{Title: table.Title, Params: params, Rows: make([]jsonRankingRow, len(table.Source))}
	for i, row := range table.Source {
		out.Rows[i] = jsonRankingRow{Rank: i + 1, DamagePercent: row.Damage * 100, RankingRow: row}
	}
	return writeJSON(w, out)
}

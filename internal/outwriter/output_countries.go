package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/geo"
	"github.com/huangsam/globeplay/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// countryRow is the flattened output shape of one feature.
type countryRow struct {
	Index int      `json:"index"`
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Lat   *float64 `json:"lat,omitempty"`
	Lng   *float64 `json:"lng,omitempty"`
}

func buildCountryRows(features []schema.Feature) []countryRow {
	rows := make([]countryRow, len(features))
	for i, f := range features {
		rows[i] = countryRow{Index: f.Index, ID: f.ID, Name: f.Label()}
		if c, ok := geo.RepresentativeCoordinate(f); ok {
			lat, lng := c.Lat, c.Lng
			rows[i].Lat, rows[i].Lng = &lat, &lng
		}
	}
	return rows
}

// WriteCountryResults outputs the feature set, dispatching based on the output format configured.
func WriteCountryResults(features []schema.Feature, cfg *contract.Config) error {
	rows := buildCountryRows(features)
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCountryCSV(w, rows)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for countries")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCountryTable(w, rows, cfg)
		}, "Wrote table")
	}
}

func writeCountryTable(w io.Writer, rows []countryRow, cfg *contract.Config) error {
	tbl := tablewriter.NewWriter(w)
	tbl.Header([]string{"#", "ID", "Name", "Lat", "Lng"})
	tbl.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			strconv.Itoa(r.Index),
			r.ID,
			truncateName(r.Name, nameWidth),
			formatCoord(r.Lat),
			formatCoord(r.Lng),
		})
	}
	if err := tbl.Bulk(data); err != nil {
		return err
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Loaded %d features\n", len(rows))
	return err
}

func writeCountryCSV(w io.Writer, rows []countryRow) error {
	return writeCSVWithHeader(w, []string{"index", "id", "name", "lat", "lng"}, func(cw *csv.Writer) error {
		for _, r := range rows {
			rec := []string{strconv.Itoa(r.Index), r.ID, r.Name, formatCoord(r.Lat), formatCoord(r.Lng)}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

package cmd

import (
	"time"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/outwriter"
	"github.com/spf13/cobra"
)

// topCmd ranks countries by climate change over an interval.
var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the countries with the largest change between two dates.",
	Long: `Query the data service for the top hotspots between --start and --end.

Rows keep the server's order. Columns are the country, the change of the selected
variable and the projected damage as a percentage of GDP.

Examples:
  # Rank mid-century warming under SSP5-8.5
  globeplay top --variable tas --scenario ssp585 --start 2020-01-01 --end 2050-01-01

  # Export the ranking for a spreadsheet
  globeplay top --output csv --output-file top.csv

  # Record every query for later export
  globeplay top --history-backend sqlite`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runTop(); err != nil {
			contract.LogFatal("Cannot compute ranking", err)
		}
	},
}

func runTop() error {
	s, err := newSession(nil, nil)
	if err != nil {
		return err
	}
	defer func() { _ = s.ctrl.Close() }()

	params := cfg.RankingParams()
	start := time.Now()
	table, err := s.ctrl.ComputeTop(rootCtx, params.StartDate, params.EndDate)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRanking(table, params, cfg, time.Since(start))
}

package cmd

import (
	"context"

	"github.com/huangsam/globeplay/internal/apiclient"
	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/outwriter"
	"github.com/spf13/cobra"
)

// countriesCmd lists the polygon features served by the data service.
var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the countries available for hover and click.",
	Long: `Fetch the country geometry and list each feature with its camera coordinate.

The data service answers 503 until its geometry is loaded; retry shortly after it starts.

Examples:
  globeplay countries
  globeplay countries --output json --output-file countries.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, cancel := context.WithTimeout(rootCtx, cfg.Timeout)
		defer cancel()

		features, err := apiclient.New(cfg.BaseURL, cfg.Timeout).FetchCountries(ctx)
		if err != nil {
			contract.LogFatal("Cannot load countries", err)
		}
		if err := outwriter.NewOutWriter().WriteCountries(features, cfg); err != nil {
			contract.LogFatal("Cannot write countries", err)
		}
	},
}

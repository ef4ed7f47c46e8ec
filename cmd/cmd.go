// Package cmd defines the command-line interface for globeplay.
package cmd

import (
	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(countriesCmd)
	rootCmd.AddCommand(frameCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("base-url", contract.DefaultBaseURL, "Base URL of the climate data service")
	rootCmd.PersistentFlags().String("date", schema.DefaultDate, "Initial cursor date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("min-date", schema.DefaultMinDate, "Earliest selectable date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("max-date", schema.DefaultMaxDate, "Latest selectable date; playback stops here (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("variable", schema.DefaultVariable, "Climate variable, e.g. wetbulb or tas")
	rootCmd.PersistentFlags().String("model", schema.DefaultModel, "CMIP6 model, e.g. ACCESS-CM2")
	rootCmd.PersistentFlags().String("scenario", schema.DefaultScenario, "Emission scenario: historical or ssp585 or ssp370 or ssp245")
	rootCmd.PersistentFlags().String("start", schema.DefaultStartDate, "Ranking interval start (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("end", schema.DefaultEndDate, "Ranking interval end (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("unit", string(schema.YearStep), "Playback unit: year or day")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Timeout for each request to the data service")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Query history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname?parseTime=true)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListen, "Address for the HTTP control surface")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}

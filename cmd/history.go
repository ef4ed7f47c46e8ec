package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/history"
	"github.com/huangsam/globeplay/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyConfig reads the history backend settings without the full shared setup.
func historyConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backendStr := viper.GetString("history-backend")
	connStr := viper.GetString("history-db-connect")

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history-backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup opens the history store for status and export.
func historySetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyConfig()
	if err != nil {
		return err
	}
	store, err := history.NewStore(backend, connStr)
	if err != nil {
		return fmt.Errorf("failed to initialize query history: %w", err)
	}
	historyStore = store

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historyConfigSetup loads settings only. Clear and migrate must not create tables first.
func historyConfigSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyConfig()
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on query history management.
//
// Note: History subcommands use minimal initialization instead of the full
// sharedSetup. This avoids validating playback settings for simple store operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded ranking queries and exports",
	Long: `Manage the history of ranking queries.

When --history-backend is set, every ranking query is recorded with:
- Run metadata (session, timestamp, parameters, duration, outcome)
- The ranked rows in server order

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all recorded history
  migrate - Run database schema migrations

Examples:
  # Check history status
  globeplay history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  globeplay history export --history-backend sqlite --output-file history`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display query history statistics and connection details",
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := historyStore.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		history.PrintStatus(os.Stdout, status)
	},
}

// historyClearCmd clears the history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded ranking queries",
	Long: `Delete all recorded query runs and ranked rows.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: historyConfigSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.Clear(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("Query history cleared successfully.")
	},
}

// historyExportCmd exports history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export query history to Parquet files",
	Long: `Write <output-file>.query_runs.parquet and <output-file>.query_rows.parquet.

The files can be read with Spark, Arrow, pandas (via pyarrow) or DuckDB.`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.Export(historyStore, cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs schema migrations.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run query history schema migrations",
	Long: `Migrate the history database schema.

  --target-version -1  migrate to the latest version (default)
  --target-version 0   roll back every migration
  --target-version N   migrate to version N`,
	PreRunE: historyConfigSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.Migrate(cfg.HistoryBackend, cfg.HistoryDBConnect, viper.GetInt("target-version"), os.Stdout); err != nil {
			contract.LogFatal("Failed to migrate history", err)
		}
	},
}

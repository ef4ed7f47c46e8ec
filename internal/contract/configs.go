package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/huangsam/globeplay/schema"
)

// Default values for configuration.
const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultTimeout = 30 * time.Second
	DefaultListen  = ":8080"
	MaxTimeout     = 10 * time.Minute
)

// Config holds the runtime configuration of a globeplay session.
// This struct is the "final, validated" config.
type Config struct {
	BaseURL string

	Date    time.Time
	MinDate time.Time
	MaxDate time.Time
	Unit    schema.StepUnit

	Selection schema.Selection

	StartDate time.Time
	EndDate   time.Time

	Timeout    time.Duration
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	Listen string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	BaseURL          string `mapstructure:"base-url"`
	Date             string `mapstructure:"date"`
	MinDate          string `mapstructure:"min-date"`
	MaxDate          string `mapstructure:"max-date"`
	Unit             string `mapstructure:"unit"`
	Variable         string `mapstructure:"variable"`
	Model            string `mapstructure:"model"`
	Scenario         string `mapstructure:"scenario"`
	Start            string `mapstructure:"start"`
	End              string `mapstructure:"end"`
	Timeout          string `mapstructure:"timeout"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Listen           string `mapstructure:"listen"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// RankingParams returns the ranking query parameters for the configured interval.
func (c *Config) RankingParams() schema.RankingParams {
	return schema.RankingParams{
		Metric:    c.Selection.Variable,
		Model:     c.Selection.Model,
		Scenario:  c.Selection.Scenario,
		StartDate: c.StartDate.Format(schema.DateLayout),
		EndDate:   c.EndDate.Format(schema.DateLayout),
		Quality:   schema.RankingQuality,
		TopN:      schema.RankingTopN,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDates(cfg, input); err != nil {
		return err
	}
	if err := processSelection(cfg, input); err != nil {
		return err
	}
	return validateBackendConfig(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseDateInput parses a YYYY-MM-DD control value, falling back to def when empty.
func ParseDateInput(name, value, def string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		value = def
	}
	t, err := time.Parse(schema.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s '%s'. Expected YYYY-MM-DD", name, value)
	}
	return t, nil
}

// validateSimpleInputs processes and validates all non-date related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	// --- 1. Base URL ---
	base := strings.TrimSpace(input.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base-url '%s'. must be an absolute http(s) URL", input.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base-url scheme '%s'. must be http or https", u.Scheme)
	}
	cfg.BaseURL = strings.TrimRight(base, "/")

	// --- 2. Colors ---
	colors, err := ParseBoolString(defaultString(input.Color, "yes"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 3. Unit ---
	unit, ok := schema.ParseStepUnit(defaultString(input.Unit, string(schema.YearStep)))
	if !ok {
		return fmt.Errorf("invalid unit '%s'. must be year or day", input.Unit)
	}
	cfg.Unit = unit

	// --- 4. Output ---
	cfg.Output = schema.OutputMode(strings.ToLower(defaultString(input.Output, string(schema.TextOut))))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	// --- 5. Timeout ---
	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
		}
		if d <= 0 || d > MaxTimeout {
			return fmt.Errorf("timeout must be greater than 0 and cannot exceed %s (received %s)", MaxTimeout, d)
		}
		cfg.Timeout = d
	}

	// --- 6. Listen address ---
	cfg.Listen = defaultString(input.Listen, DefaultListen)
	return nil
}

// processDates handles the cursor range and ranking interval.
func processDates(cfg *Config, input *ConfigRawInput) error {
	var err error
	if cfg.MinDate, err = ParseDateInput("min-date", input.MinDate, schema.DefaultMinDate); err != nil {
		return err
	}
	if cfg.MaxDate, err = ParseDateInput("max-date", input.MaxDate, schema.DefaultMaxDate); err != nil {
		return err
	}
	if cfg.MinDate.After(cfg.MaxDate) {
		return fmt.Errorf("min-date (%s) cannot be after max-date (%s)", cfg.MinDate.Format(schema.DateLayout), cfg.MaxDate.Format(schema.DateLayout))
	}
	if cfg.Date, err = ParseDateInput("date", input.Date, schema.DefaultDate); err != nil {
		return err
	}
	if cfg.Date.Before(cfg.MinDate) || cfg.Date.After(cfg.MaxDate) {
		return fmt.Errorf("date %s must be within %s and %s", cfg.Date.Format(schema.DateLayout), cfg.MinDate.Format(schema.DateLayout), cfg.MaxDate.Format(schema.DateLayout))
	}

	if cfg.StartDate, err = ParseDateInput("start", input.Start, schema.DefaultStartDate); err != nil {
		return err
	}
	if cfg.EndDate, err = ParseDateInput("end", input.End, schema.DefaultEndDate); err != nil {
		return err
	}
	if cfg.StartDate.After(cfg.EndDate) {
		return fmt.Errorf("start date (%s) cannot be after end date (%s)", cfg.StartDate.Format(schema.DateLayout), cfg.EndDate.Format(schema.DateLayout))
	}
	return nil
}

// processSelection validates variable, model and scenario against the served lists.
func processSelection(cfg *Config, input *ConfigRawInput) error {
	sel := schema.Selection{
		Variable: strings.TrimSpace(input.Variable),
		Model:    strings.TrimSpace(input.Model),
		Scenario: strings.TrimSpace(input.Scenario),
	}.WithDefaults()

	if !schema.IsKnownVariable(sel.Variable) {
		return fmt.Errorf("invalid variable '%s'. must be one of %s", sel.Variable, strings.Join(schema.Variables, ", "))
	}
	if !schema.IsKnownModel(sel.Model) {
		return fmt.Errorf("invalid model '%s'. must be one of %s", sel.Model, strings.Join(schema.Models, ", "))
	}
	if !schema.IsKnownScenario(sel.Scenario) {
		return fmt.Errorf("invalid scenario '%s'. must be one of %s", sel.Scenario, strings.Join(schema.Scenarios, ", "))
	}
	cfg.Selection = sel
	return nil
}

// validateBackendConfig validates the history backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(defaultString(input.HistoryBackend, string(schema.NoneBackend))))
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// defaultString returns def when s is blank.
func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRanking prints a ranking result using the configured output format.
func (ow *OutWriter) WriteRanking(table schema.RankingTable, params schema.RankingParams, cfg *contract.Config, duration time.Duration) error {
	return WriteRankingResults(table, params, cfg, duration)
}

// WriteCountries prints the loaded feature set using the configured output format.
func (ow *OutWriter) WriteCountries(features []schema.Feature, cfg *contract.Config) error {
	return WriteCountryResults(features, cfg)
}

// WriteSession prints a session snapshot using the configured output format.
func (ow *OutWriter) WriteSession(state schema.SessionState, cfg *contract.Config) error {
	return WriteSessionState(state, cfg)
}

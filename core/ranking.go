package core

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/schema"
)

// RankingRenderer issues ranking queries and shows their materialized result.
// Every call issues exactly one request; there is no caching or de-duplication.
type RankingRenderer struct {
	source    contract.RankingSource
	controls  contract.ControlSurface
	history   contract.HistoryStore // optional
	sessionID string

	mu      sync.Mutex
	current *schema.RankingTable
}

// NewRankingRenderer creates a renderer. history may be nil.
func NewRankingRenderer(source contract.RankingSource, controls contract.ControlSurface, history contract.HistoryStore, sessionID string) *RankingRenderer {
	return &RankingRenderer{source: source, controls: controls, history: history, sessionID: sessionID}
}

// ComputeTop runs one ranking query. On success the displayed table is replaced in full;
// on failure the previous table stays and the error wraps ErrQueryFailure.
func (r *RankingRenderer) ComputeTop(ctx context.Context, params schema.RankingParams) (schema.RankingTable, error) {
	params.Quality = schema.RankingQuality
	params.TopN = schema.RankingTopN

	runID := r.beginRun(params)
	rows, err := r.source.FetchTopChanges(ctx, params)
	if err == nil {
		err = validateRows(rows)
	}
	if err != nil {
		r.endRun(runID, schema.QueryFailed, 0, err)
		return schema.RankingTable{}, fmt.Errorf("%w: %w", ErrQueryFailure, err)
	}
	r.recordRows(runID, rows)
	r.endRun(runID, schema.QueryOK, len(rows), nil)

	table := Materialize(params, rows)
	r.mu.Lock()
	r.current = &table
	r.mu.Unlock()
	r.controls.ShowRanking(table)
	return table, nil
}

// Current returns the displayed table, or nil before the first successful query.
func (r *RankingRenderer) Current() *schema.RankingTable {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	t := *r.current
	return &t
}

// Materialize renders rows in server order with the fixed column order.
// Change is shown with two decimals; damage is a fraction shown as a percentage.
func Materialize(params schema.RankingParams, rows []schema.RankingRow) schema.RankingTable {
	table := schema.RankingTable{
		Title:  fmt.Sprintf("Climate Change Hotspots %s – %s", params.StartDate, params.EndDate),
		Header: append([]string(nil), schema.RankingHeader...),
		Rows:   make([][]string, 0, len(rows)),
		Source: append([]schema.RankingRow(nil), rows...),
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.Country,
			fmt.Sprintf("%.2f", row.Change),
			fmt.Sprintf("%.2f", row.Damage*100),
		})
	}
	return table
}

// validateRows rejects results that cannot be rendered.
func validateRows(rows []schema.RankingRow) error {
	for i, row := range rows {
		if math.IsNaN(row.Change) || math.IsInf(row.Change, 0) || math.IsNaN(row.Damage) || math.IsInf(row.Damage, 0) {
			return fmt.Errorf("row %d (%s) has a non-finite value", i, row.Country)
		}
	}
	return nil
}

func (r *RankingRenderer) beginRun(params schema.RankingParams) int64 {
	if r.history == nil {
		return 0
	}
	runID, err := r.history.BeginQuery(r.sessionID, time.Now(), params)
	if err != nil {
		contract.LogWarn("Query history initialization failed", err)
		return 0
	}
	return runID
}

func (r *RankingRenderer) recordRows(runID int64, rows []schema.RankingRow) {
	if r.history == nil || runID == 0 {
		return
	}
	if err := r.history.RecordRows(runID, rows); err != nil {
		contract.LogWarn("Failed to record query rows", err)
	}
}

func (r *RankingRenderer) endRun(runID int64, status schema.QueryStatus, rowCount int, queryErr error) {
	if r.history == nil || runID == 0 {
		return
	}
	var errText string
	if queryErr != nil {
		errText = queryErr.Error()
	}
	if err := r.history.EndQuery(runID, time.Now(), status, rowCount, errText); err != nil {
		contract.LogWarn("Failed to finalize query history", err)
	}
}

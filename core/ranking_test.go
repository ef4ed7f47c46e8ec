package core

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/huangsam/globeplay/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fiveRows() []schema.RankingRow {
	return []schema.RankingRow{
		{Country: "Qatar", Change: 3.456, Damage: 0.0234},
		{Country: "Chad", Change: 3.1, Damage: 0.05},
		{Country: "Niger", Change: 2.999, Damage: 0.1},
		{Country: "Mali", Change: 2.5, Damage: 0},
		{Country: "Oman", Change: 2.7, Damage: 0.015},
	}
}

func TestMaterialize(t *testing.T) {
	params := schema.RankingParams{StartDate: "2000-01-01", EndDate: "2050-01-01"}
	table := Materialize(params, fiveRows())

	assert.Equal(t, "Climate Change Hotspots 2000-01-01 – 2050-01-01", table.Title)
	assert.Equal(t, []string{"Country", "Δ T (°C)", "Damage (% GDP)"}, table.Header)
	require.Len(t, table.Rows, 5)
	assert.Equal(t, []string{"Qatar", "3.46", "2.34"}, table.Rows[0])
	assert.Equal(t, []string{"Niger", "3.00", "10.00"}, table.Rows[2])
	assert.Equal(t, []string{"Mali", "2.50", "0.00"}, table.Rows[3])

	// Server order is preserved even when it is not sorted by change.
	assert.Equal(t, "Oman", table.Rows[4][0])
}

func TestMaterializeEmpty(t *testing.T) {
	table := Materialize(schema.RankingParams{}, nil)
	assert.Empty(t, table.Rows)
	assert.Len(t, table.Header, 3)
}

func TestRankingRendererReplacesInFull(t *testing.T) {
	source := &mockRankingSource{}
	controls := newFakeControls()
	r := NewRankingRenderer(source, controls, nil, "session")
	ctx := context.Background()

	first := schema.RankingParams{Metric: "tas", StartDate: "2000-01-01", EndDate: "2050-01-01"}
	second := schema.RankingParams{Metric: "tas", StartDate: "2010-01-01", EndDate: "2020-01-01"}
	fixed := func(p schema.RankingParams) schema.RankingParams {
		p.Quality, p.TopN = 0, 5
		return p
	}
	source.On("FetchTopChanges", ctx, fixed(first)).Return(fiveRows(), nil).Once()
	source.On("FetchTopChanges", ctx, fixed(second)).Return(fiveRows()[:2], nil).Once()

	_, err := r.ComputeTop(ctx, first)
	require.NoError(t, err)
	table, err := r.ComputeTop(ctx, second)
	require.NoError(t, err)

	assert.Len(t, table.Rows, 2)
	assert.Len(t, r.Current().Rows, 2)
	require.Len(t, controls.Rankings(), 2)
	source.AssertExpectations(t)
}

func TestRankingRendererFailureKeepsPrevious(t *testing.T) {
	source := &mockRankingSource{}
	controls := newFakeControls()
	r := NewRankingRenderer(source, controls, nil, "session")
	ctx := context.Background()

	ok := schema.RankingParams{StartDate: "2000-01-01", EndDate: "2050-01-01"}
	bad := schema.RankingParams{StartDate: "2001-01-01", EndDate: "2050-01-01"}
	source.On("FetchTopChanges", ctx, mock.MatchedBy(func(p schema.RankingParams) bool { return p.StartDate == ok.StartDate })).Return(fiveRows(), nil)
	source.On("FetchTopChanges", ctx, mock.MatchedBy(func(p schema.RankingParams) bool { return p.StartDate == bad.StartDate })).Return(nil, errors.New("boom"))

	_, err := r.ComputeTop(ctx, ok)
	require.NoError(t, err)

	_, err = r.ComputeTop(ctx, bad)
	assert.ErrorIs(t, err, ErrQueryFailure)
	assert.Contains(t, err.Error(), "boom")
	assert.Len(t, r.Current().Rows, 5)
	assert.Len(t, controls.Rankings(), 1)
}

func TestRankingRendererRejectsNonFinite(t *testing.T) {
	source := &mockRankingSource{}
	r := NewRankingRenderer(source, newFakeControls(), nil, "session")
	ctx := context.Background()

	rows := []schema.RankingRow{{Country: "Nowhere", Change: 1, Damage: nanValue()}}
	source.On("FetchTopChanges", ctx, mock.Anything).Return(rows, nil)

	_, err := r.ComputeTop(ctx, schema.RankingParams{})
	assert.ErrorIs(t, err, ErrQueryFailure)
	assert.Nil(t, r.Current())
}

func TestRankingRendererRecordsHistory(t *testing.T) {
	source := &mockRankingSource{}
	history := &mockHistoryStore{}
	r := NewRankingRenderer(source, newFakeControls(), history, "session-1")
	ctx := context.Background()
	rows := fiveRows()

	source.On("FetchTopChanges", ctx, mock.Anything).Return(rows, nil).Once()
	history.On("BeginQuery", "session-1", mock.Anything, mock.Anything).Return(int64(7), nil).Once()
	history.On("RecordRows", int64(7), rows).Return(nil).Once()
	history.On("EndQuery", int64(7), mock.Anything, schema.QueryOK, 5, "").Return(nil).Once()

	_, err := r.ComputeTop(ctx, schema.RankingParams{})
	require.NoError(t, err)

	source.On("FetchTopChanges", ctx, mock.Anything).Return(nil, errors.New("503")).Once()
	history.On("BeginQuery", "session-1", mock.Anything, mock.Anything).Return(int64(8), nil).Once()
	history.On("EndQuery", int64(8), mock.Anything, schema.QueryFailed, 0, "503").Return(nil).Once()

	_, err = r.ComputeTop(ctx, schema.RankingParams{})
	assert.ErrorIs(t, err, ErrQueryFailure)

	history.AssertExpectations(t)
}

func TestRankingRendererIgnoresHistoryErrors(t *testing.T) {
	source := &mockRankingSource{}
	history := &mockHistoryStore{}
	r := NewRankingRenderer(source, newFakeControls(), history, "s")
	ctx := context.Background()

	source.On("FetchTopChanges", ctx, mock.Anything).Return(fiveRows(), nil)
	history.On("BeginQuery", "s", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	table, err := r.ComputeTop(ctx, schema.RankingParams{})
	require.NoError(t, err)
	assert.Len(t, table.Rows, 5)
	history.AssertNotCalled(t, "RecordRows", mock.Anything, mock.Anything)
}

func nanValue() float64 { return math.NaN() }

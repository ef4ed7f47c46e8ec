// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/globeplay/schema"
)

// AltitudeFunc derives the altitude of a feature at draw time.
type AltitudeFunc func(f schema.Feature) float64

// ColorFunc derives a fill or stroke color of a feature at draw time.
type ColorFunc func(f schema.Feature) string

// FeatureHandler receives pointer events from the renderer. A nil feature means
// no feature is under the pointer.
type FeatureHandler func(f *schema.Feature)

// Renderer is the globe rendering collaborator.
// The controller only supplies state to it; it never draws anything itself.
type Renderer interface {
	// SetFrameImage makes the frame at url the visible globe texture.
	SetFrameImage(url string)

	// SetPolygonSet installs the polygon set together with the derivation functions.
	// Calling it again with the same features acts as a redraw request.
	SetPolygonSet(features []schema.Feature, altitude AltitudeFunc, fill ColorFunc, stroke ColorFunc)

	// OnPolygonHover registers the hover callback.
	OnPolygonHover(cb FeatureHandler)

	// OnPolygonClick registers the click callback.
	OnPolygonClick(cb FeatureHandler)

	// CenterCameraOn requests a camera-center transition.
	CenterCameraOn(lat, lng, altitude float64, durationMs int)

	// Resize updates the viewport size.
	Resize(width, height int)
}

// ControlSurface is the UI control collaborator. The controller reads the current
// selection from it and writes labels and tooltips back.
type ControlSurface interface {
	// Selection returns the current variable, model and scenario.
	Selection() schema.Selection

	// SetPlaybackLabel updates the play/pause affordance of a unit.
	SetPlaybackLabel(unit schema.StepUnit, label string)

	// ShowTooltip shows text next to the pointer; HideTooltip hides it.
	ShowTooltip(text string)
	HideTooltip()

	// ShowRanking replaces the displayed ranking in full.
	ShowRanking(table schema.RankingTable)
}

// FrameGate confirms a frame resource loads before it is made visible.
// Preload always settles: network failure, decode failure and timeouts all yield false.
type FrameGate interface {
	Preload(ctx context.Context, url string) bool
}

// GeometrySource provides the feature set.
type GeometrySource interface {
	FetchCountries(ctx context.Context) ([]schema.Feature, error)
}

// RankingSource provides ranked query results, pre-sorted by the server.
type RankingSource interface {
	FetchTopChanges(ctx context.Context, params schema.RankingParams) ([]schema.RankingRow, error)
}

// FrameURLBuilder builds frame resource locators.
type FrameURLBuilder interface {
	FrameURL(date string, sel schema.Selection) string
}

// HistoryStore defines the interface for tracking ranking query runs.
type HistoryStore interface {
	// BeginQuery records a new query run and returns its unique ID.
	BeginQuery(sessionID string, startTime time.Time, params schema.RankingParams) (int64, error)

	// EndQuery updates the run with its outcome.
	EndQuery(runID int64, endTime time.Time, status schema.QueryStatus, rowCount int, errText string) error

	// RecordRows stores the ranked rows of a run in server order.
	RecordRows(runID int64, rows []schema.RankingRow) error

	// GetStatus returns status information about the history store.
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run ordered by ID.
	GetAllRuns() ([]schema.QueryRunRecord, error)

	// GetAllRows returns every recorded row ordered by run and rank.
	GetAllRows() ([]schema.QueryRowRecord, error)

	// Close closes the underlying connection.
	Close() error
}

// SelectionSetter is implemented by control surfaces whose selection can be
// changed programmatically (HTTP, CLI and MCP surfaces).
type SelectionSetter interface {
	SetSelection(sel schema.Selection)
}

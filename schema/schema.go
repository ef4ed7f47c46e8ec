// Package schema has configs, models and shared value types for all parts of globeplay.
package schema

import (
	"time"

	"github.com/twpayne/go-geom"
)

// Feature is one polygon region (e.g. a country) loaded from the geometry source.
// Features are immutable once loaded; Index is the feature's slot in the loaded table.
type Feature struct {
	ID         string         `json:"id"`
	Index      int            `json:"index"`
	Properties map[string]any `json:"properties"`
	Geometry   geom.T         `json:"-"`
}

// Label returns the display name of the feature used by tooltips and tables.
func (f Feature) Label() string {
	for _, key := range []string{PropAdmin, PropName} {
		if v, ok := f.Properties[key].(string); ok && v != "" {
			return v
		}
	}
	return UnknownLabel
}

// PolygonAttributes are the derived visual attributes of a single feature.
type PolygonAttributes struct {
	Altitude float64 `json:"altitude"`
	Fill     string  `json:"fill"`
	Stroke   string  `json:"stroke"`
}

// Palette holds the attribute values for the hovered and default states.
type Palette struct {
	Default PolygonAttributes `json:"default"`
	Hovered PolygonAttributes `json:"hovered"`
	Side    string            `json:"side"`
}

// Selection is the non-date part of the frame query read from the controls.
type Selection struct {
	Variable string `json:"variable"`
	Model    string `json:"model"`
	Scenario string `json:"scenario"`
}

// WithDefaults fills empty fields with the control defaults.
func (s Selection) WithDefaults() Selection {
	if s.Variable == "" {
		s.Variable = DefaultVariable
	}
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if s.Scenario == "" {
		s.Scenario = DefaultScenario
	}
	return s
}

// Coordinate is a geographic position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CameraTarget is a requested camera-center transition.
type CameraTarget struct {
	Coordinate
	Altitude   float64 `json:"altitude"`
	DurationMs int     `json:"duration_ms"`
}

// SessionState is a point-in-time view of a controller session.
type SessionState struct {
	SessionID string                     `json:"session_id"`
	Date      string                     `json:"date"`
	MinDate   string                     `json:"min_date"`
	MaxDate   string                     `json:"max_date"`
	Owner     StepUnit                   `json:"owner,omitempty"`
	Playback  map[StepUnit]PlaybackState `json:"playback"`
	Selection Selection                  `json:"selection"`
	FrameURL  string                     `json:"frame_url"`
	Hovered   string                     `json:"hovered,omitempty"`
	Features  int                        `json:"features"`
	Ranking   *RankingTable              `json:"ranking,omitempty"`
	StartedAt time.Time                  `json:"started_at"`
}

// FrameCommit describes one frame made visible on the renderer.
// Unit is empty for commits caused by control changes rather than playback.
type FrameCommit struct {
	Unit   StepUnit `json:"unit,omitempty"`
	Date   string   `json:"date"`
	URL    string   `json:"url"`
	Loaded bool     `json:"loaded"`
}

package termview

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/globeplay/core"
	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticGate struct{}

func (staticGate) Preload(context.Context, string) bool { return true }

type staticURLs struct{}

func (staticURLs) FrameURL(date string, sel schema.Selection) string {
	return "frame/" + date + "/" + sel.Variable
}

type staticGeometry struct{ features []schema.Feature }

func (g staticGeometry) FetchCountries(context.Context) ([]schema.Feature, error) {
	return g.features, nil
}

func TestNewView(t *testing.T) {
	v := New(schema.Selection{Model: "CESM2"}, nil)

	assert.Equal(t, schema.Selection{Variable: "wetbulb", Model: "CESM2", Scenario: "historical"}, v.Selection())
	assert.Equal(t, "▶ Play Years", v.Label(schema.YearStep))
	assert.Equal(t, "▶ Play Days", v.Label(schema.DayStep))
	w, h := v.Size()
	assert.Equal(t, DefaultWidth, w)
	assert.Equal(t, DefaultHeight, h)
	assert.Nil(t, v.Ranking())
	assert.Nil(t, v.Camera())
	assert.Empty(t, v.Polygons())
}

func TestViewEcho(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	v := New(schema.Selection{}, &buf)

	v.SetPlaybackLabel(schema.YearStep, "⏸ Pause Years")
	v.SetPlaybackLabel(schema.YearStep, "⏸ Pause Years")
	v.CenterCameraOn(46, 2, 1.5, 1000)

	assert.Equal(t, "⏸ Pause Years\n🎥 Camera → lat 46.00, lng 2.00 (alt 1.5, 1000ms)\n", buf.String())
}

func TestTerminalSize(t *testing.T) {
	w, h := TerminalSize(132)
	assert.Equal(t, 132, w)
	assert.Positive(t, h)

	w, _ = TerminalSize(0)
	assert.Positive(t, w)
}

func TestViewDrivesController(t *testing.T) {
	v := New(schema.Selection{}, nil)
	ctrl, err := core.NewController(core.Options{
		Renderer: v,
		Controls: v,
		Gate:     staticGate{},
		URLs:     staticURLs{},
		Geometry: staticGeometry{features: []schema.Feature{
			{ID: "FRA", Properties: map[string]any{"ADMIN": "France", "centroid": []any{2.0, 46.0}}},
			{ID: "CHL", Properties: map[string]any{"ADMIN": "Chile"}},
		}},
		Date:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		MinDate: time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxDate: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	defer func() { _ = ctrl.Close() }()

	require.NoError(t, ctrl.LoadFeatures(context.Background()))
	assert.Equal(t, 1, v.Redraws())

	// Pointer events flow from the view back into the controller.
	assert.True(t, pointerMove(v, "FRA"))
	assert.Equal(t, "France", v.Tooltip())
	assert.Equal(t, 2, v.Redraws())
	polys := v.Polygons()
	assert.Equal(t, schema.DefaultPalette.Hovered, polys["FRA"])
	assert.Equal(t, schema.DefaultPalette.Default, polys["CHL"])

	assert.True(t, pointerMove(v, "FRA"))
	assert.Equal(t, 2, v.Redraws())

	assert.True(t, pointerMove(v, ""))
	assert.Empty(t, v.Tooltip())
	assert.False(t, pointerMove(v, "NOPE"))

	assert.True(t, pointerClick(v, ""))
	assert.Nil(t, v.Camera())
	assert.True(t, pointerClick(v, "FRA"))
	require.NotNil(t, v.Camera())
	assert.Equal(t, 46.0, v.Camera().Lat)

	require.NoError(t, ctrl.Toggle(schema.YearStep))
	ctrl.Wait(schema.YearStep)
	url, frames := v.FrameURL()
	assert.Equal(t, "frame/2022-01-01/wetbulb", url)
	assert.Equal(t, 2, frames)
	assert.Equal(t, "▶ Play Years", v.Label(schema.YearStep))

	ctrl.Resize(100, 30)
	w, h := v.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 30, h)
}

// pointerMove delivers a hover event for the feature with id the way a globe widget
// does; "" leaves all features. It reports whether an event was delivered.
func pointerMove(v *View, id string) bool {
	f, cb := pointerTarget(v, id, false)
	if cb == nil {
		return false
	}
	cb(f)
	return true
}

// pointerClick delivers a click on the feature with id; "" clicks empty space.
func pointerClick(v *View, id string) bool {
	f, cb := pointerTarget(v, id, true)
	if cb == nil {
		return false
	}
	cb(f)
	return true
}

func pointerTarget(v *View, id string, click bool) (*schema.Feature, contract.FeatureHandler) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	cb := v.onHover
	if click {
		cb = v.onClick
	}
	if id == "" {
		return nil, cb
	}
	for i := range v.features {
		if v.features[i].ID == id {
			f := v.features[i]
			return &f, cb
		}
	}
	return nil, nil
}

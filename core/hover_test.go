package core

import (
	"context"
	"testing"

	"github.com/huangsam/globeplay/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func sampleFeatures() []schema.Feature {
	return []schema.Feature{
		{ID: "FRA", Properties: map[string]any{"ADMIN": "France", "centroid": []any{2.0, 46.0}}},
		{ID: "CHL", Properties: map[string]any{"name": "Chile"},
			Geometry: geom.NewPolygonFlat(geom.XY, []float64{-71, -31, -69, -31, -69, -29, -71, -29, -71, -31}, []int{10})},
		{ID: "XXX", Properties: map[string]any{}},
	}
}

func newTracker() (*HoverTracker, *fakeRenderer, *fakeControls) {
	r := &fakeRenderer{}
	c := newFakeControls()
	tr := NewHoverTracker(r, c, schema.DefaultPalette)
	tr.Install(sampleFeatures())
	return tr, r, c
}

func TestHoverTrackerInstall(t *testing.T) {
	tr, r, _ := newTracker()

	assert.Equal(t, 1, r.PolygonSets())
	assert.Equal(t, 3, tr.Len())
	for i, f := range tr.Features() {
		assert.Equal(t, i, f.Index)
		assert.Equal(t, schema.DefaultPalette.Default, tr.Attributes(f))
	}
	assert.Nil(t, tr.Hovered())
}

func TestHoverTrackerDerivesAttributes(t *testing.T) {
	tr, r, c := newTracker()
	fra, _ := tr.Lookup("FRA")

	assert.True(t, tr.OnHover(fra))
	assert.Equal(t, 2, r.PolygonSets())

	features := tr.Features()
	assert.Equal(t, 0.03, r.altitude(features[0]))
	assert.Equal(t, "rgba(255, 200, 0, 0.4)", r.fill(features[0]))
	assert.Equal(t, "#ff6600", r.stroke(features[0]))
	for _, f := range features[1:] {
		assert.Equal(t, 0.015, r.altitude(f))
		assert.Equal(t, "rgba(0, 0, 0, 0.1)", r.fill(f))
		assert.Equal(t, "rgba(255, 204, 0, 0.6)", r.stroke(f))
	}

	text, visible := c.Tooltip()
	assert.True(t, visible)
	assert.Equal(t, "France", text)
}

func TestHoverTrackerIdempotent(t *testing.T) {
	tr, r, _ := newTracker()
	chl, _ := tr.Lookup("CHL")

	require.True(t, tr.OnHover(chl))
	once := make([]schema.PolygonAttributes, 0, 3)
	for _, f := range tr.Features() {
		once = append(once, tr.Attributes(f))
	}

	assert.False(t, tr.OnHover(chl))
	assert.Equal(t, 2, r.PolygonSets())
	for i, f := range tr.Features() {
		assert.Equal(t, once[i], tr.Attributes(f))
	}
}

func TestHoverTrackerLeave(t *testing.T) {
	tr, r, c := newTracker()
	xxx, _ := tr.Lookup("XXX")

	require.True(t, tr.OnHover(xxx))
	text, _ := c.Tooltip()
	assert.Equal(t, "Unknown", text)

	assert.True(t, tr.OnHover(nil))
	assert.False(t, tr.OnHover(nil))
	assert.Equal(t, 3, r.PolygonSets())
	_, visible := c.Tooltip()
	assert.False(t, visible)
	assert.Nil(t, tr.Hovered())
}

func TestHoverTrackerMatchesByIdentity(t *testing.T) {
	tr, _, _ := newTracker()

	// A copy with a stale index still resolves through its ID.
	copyOfChile := schema.Feature{ID: "CHL", Index: 99}
	require.True(t, tr.OnHover(&copyOfChile))
	assert.Equal(t, "CHL", tr.Hovered().ID)

	// A feature foreign to the table clears the hover.
	assert.True(t, tr.OnHover(&schema.Feature{ID: "ZZZ"}))
	assert.Nil(t, tr.Hovered())
}

func TestHoverTrackerClick(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		wantCall bool
		lat, lng float64
	}{
		{name: "centroid property", id: "FRA", wantCall: true, lat: 46, lng: 2},
		{name: "geometry fallback", id: "CHL", wantCall: true, lat: -30, lng: -70},
		{name: "no coordinate", id: "XXX", wantCall: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, r, _ := newTracker()
			f, _ := tr.Lookup(tt.id)

			target := tr.OnClick(f)
			if !tt.wantCall {
				assert.Nil(t, target)
				assert.Empty(t, r.Cameras())
				return
			}
			require.NotNil(t, target)
			calls := r.Cameras()
			require.Len(t, calls, 1)
			assert.InDelta(t, tt.lat, calls[0].Lat, 0.05)
			assert.InDelta(t, tt.lng, calls[0].Lng, 0.05)
			assert.Equal(t, 1.5, calls[0].Altitude)
			assert.Equal(t, 1000, calls[0].DurationMs)
		})
	}
}

func TestClickNothingIsNoop(t *testing.T) {
	tr, r, _ := newTracker()
	assert.Nil(t, tr.OnClick(nil))
	assert.Empty(t, r.Cameras())
}

func TestRendererCallbacksReachTracker(t *testing.T) {
	h := newHarness(t, &fakeGate{result: true}, "2000-01-01", "1950-01-01", "2100-01-01")
	geometry := &fakeGeometry{features: sampleFeatures()}
	h.ctrl.geometry = geometry
	require.NoError(t, h.ctrl.LoadFeatures(context.Background()))

	fra := h.ctrl.Features()[0]
	h.renderer.onHover(&fra)
	assert.Equal(t, "FRA", h.ctrl.Snapshot().Hovered)

	h.renderer.onClick(&fra)
	assert.Len(t, h.renderer.Cameras(), 1)

	h.renderer.onClick(nil)
	assert.Len(t, h.renderer.Cameras(), 1)
}

package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "FRA", "properties": {"ADMIN": "France"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,40],[10,40],[10,50],[0,50],[0,40]]]}},
    {"type": "Feature", "id": 7, "properties": {"name": "Seven"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[20,0],[21,0],[21,1],[20,1],[20,0]]]]}},
    {"type": "Feature", "properties": {"ISO_A3": "CHL", "ADMIN": "Chile"}, "geometry": null},
    {"type": "Feature", "properties": {}, "geometry": null},
    {"type": "Feature", "properties": {"ISO_A3": "CHL"}, "geometry": null}
  ]
}`

func TestDecodeFeatureCollection(t *testing.T) {
	features, err := DecodeFeatureCollection([]byte(sampleCollection))
	require.NoError(t, err)
	require.Len(t, features, 5)

	assert.Equal(t, "FRA", features[0].ID)
	assert.Equal(t, "7", features[1].ID)
	assert.Equal(t, "CHL", features[2].ID)
	assert.Equal(t, "3", features[3].ID)
	assert.Equal(t, "CHL#4", features[4].ID)

	for i, f := range features {
		assert.Equal(t, i, f.Index)
		assert.NotNil(t, f.Properties)
	}

	_, ok := features[0].Geometry.(*geom.Polygon)
	assert.True(t, ok)
	_, ok = features[1].Geometry.(*geom.MultiPolygon)
	assert.True(t, ok)
	assert.Nil(t, features[2].Geometry)
	assert.Equal(t, "France", features[0].Label())
	assert.Equal(t, "Unknown", features[3].Label())
}

func TestDecodeFeatureCollectionErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "<html>"},
		{"wrong type", `{"type": "Feature"}`},
		{"bad geometry", `{"type": "FeatureCollection", "features": [{"geometry": {"type": "Polygon", "coordinates": "x"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFeatureCollection([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestCentroidPolygon(t *testing.T) {
	poly := geom.NewPolygonFlat(geom.XY, []float64{9, 19, 11, 19, 11, 21, 9, 21, 9, 19}, []int{10})

	c, ok := Centroid(poly)
	require.True(t, ok)
	assert.InDelta(t, 20.0, c.Lat, 0.05)
	assert.InDelta(t, 10.0, c.Lng, 0.05)
}

func TestCentroidOrientationIndependent(t *testing.T) {
	ccw := geom.NewPolygonFlat(geom.XY, []float64{9, 19, 11, 19, 11, 21, 9, 21, 9, 19}, []int{10})
	cw := geom.NewPolygonFlat(geom.XY, []float64{9, 19, 9, 21, 11, 21, 11, 19, 9, 19}, []int{10})

	a, ok := Centroid(ccw)
	require.True(t, ok)
	b, ok := Centroid(cw)
	require.True(t, ok)
	assert.InDelta(t, a.Lat, b.Lat, 1e-9)
	assert.InDelta(t, a.Lng, b.Lng, 1e-9)
}

func TestCentroidMultiPolygon(t *testing.T) {
	mp := geom.NewMultiPolygonFlat(geom.XY,
		[]float64{
			-1, -1, 1, -1, 1, 1, -1, 1, -1, -1,
			-1, 9, 1, 9, 1, 11, -1, 11, -1, 9,
		},
		[][]int{{10}, {20}},
	)

	c, ok := Centroid(mp)
	require.True(t, ok)
	assert.InDelta(t, 5.0, c.Lat, 0.1)
	assert.InDelta(t, 0.0, c.Lng, 0.1)
}

func TestCentroidFallbacks(t *testing.T) {
	_, ok := Centroid(nil)
	assert.False(t, ok)

	pt := geom.NewPointFlat(geom.XY, []float64{30, -10})
	c, ok := Centroid(pt)
	require.True(t, ok)
	assert.InDelta(t, -10.0, c.Lat, 1e-9)
	assert.InDelta(t, 30.0, c.Lng, 1e-9)
}

func TestCentroidProperty(t *testing.T) {
	tests := []struct {
		name   string
		props  map[string]any
		want   [2]float64
		wantOK bool
	}{
		{"decoded json", map[string]any{"centroid": []any{2.35, 48.85}}, [2]float64{48.85, 2.35}, true},
		{"float slice", map[string]any{"centroid": []float64{-70.6, -33.4}}, [2]float64{-33.4, -70.6}, true},
		{"too short", map[string]any{"centroid": []any{1.0}}, [2]float64{}, false},
		{"non-numeric", map[string]any{"centroid": []any{"a", "b"}}, [2]float64{}, false},
		{"out of range", map[string]any{"centroid": []any{0.0, 120.0}}, [2]float64{}, false},
		{"missing", map[string]any{}, [2]float64{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := CentroidProperty(tt.props)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want[0], c.Lat)
				assert.Equal(t, tt.want[1], c.Lng)
			}
		})
	}
}

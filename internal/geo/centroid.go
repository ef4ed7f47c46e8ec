package geo

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/huangsam/globeplay/schema"
	"github.com/twpayne/go-geom"
)

// epsilon below which a centroid vector is treated as degenerate.
const epsilon = 1e-12

// RepresentativeCoordinate returns the coordinate a camera should center on for f.
// A supplied centroid property ([lng, lat]) wins; otherwise the spherical centroid
// of the geometry is used. ok is false when neither is available.
func RepresentativeCoordinate(f schema.Feature) (schema.Coordinate, bool) {
	if c, ok := CentroidProperty(f.Properties); ok {
		return c, true
	}
	return Centroid(f.Geometry)
}

// CentroidProperty reads a [lng, lat] centroid from feature properties.
func CentroidProperty(props map[string]any) (schema.Coordinate, bool) {
	switch v := props[schema.PropCentroid].(type) {
	case []any:
		if len(v) < 2 {
			return schema.Coordinate{}, false
		}
		lng, ok1 := toFloat(v[0])
		lat, ok2 := toFloat(v[1])
		if !ok1 || !ok2 {
			return schema.Coordinate{}, false
		}
		return validCoordinate(lat, lng)
	case []float64:
		if len(v) < 2 {
			return schema.Coordinate{}, false
		}
		return validCoordinate(v[1], v[0])
	}
	return schema.Coordinate{}, false
}

// Centroid computes the spherical centroid of the exterior rings of a Polygon or
// MultiPolygon. Other geometry types fall back to the mean of their vertices.
func Centroid(g geom.T) (schema.Coordinate, bool) {
	if g == nil {
		return schema.Coordinate{}, false
	}

	var rings [][]geom.Coord
	switch t := g.(type) {
	case *geom.Polygon:
		if t.NumLinearRings() > 0 {
			rings = append(rings, t.LinearRing(0).Coords())
		}
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			p := t.Polygon(i)
			if p.NumLinearRings() > 0 {
				rings = append(rings, p.LinearRing(0).Coords())
			}
		}
	default:
		return vertexMean(g.FlatCoords(), g.Stride())
	}

	var sum, mean r3.Vector
	for _, ring := range rings {
		contribution, ringMean := ringCentroid(ring)
		mean = mean.Add(ringMean)
		sum = sum.Add(contribution)
	}
	if sum.Norm() < epsilon {
		if mean.Norm() < epsilon {
			return schema.Coordinate{}, false
		}
		return fromVector(mean)
	}
	return fromVector(sum)
}

// ringCentroid returns the area-weighted centroid vector of a ring, oriented
// toward the ring's vertices, together with the unweighted vertex sum.
func ringCentroid(ring []geom.Coord) (r3.Vector, r3.Vector) {
	var mean r3.Vector
	points := make([]s2.Point, 0, len(ring))
	for _, c := range ring {
		if len(c) < 2 {
			continue
		}
		p := s2.PointFromLatLng(s2.LatLngFromDegrees(c.Y(), c.X()))
		points = append(points, p)
		mean = mean.Add(p.Vector)
	}
	if len(points) < 3 {
		return r3.Vector{}, mean
	}

	var sum r3.Vector
	origin := points[0]
	for i := 1; i < len(points)-1; i++ {
		sum = sum.Add(s2.TrueCentroid(origin, points[i], points[i+1]).Vector)
	}
	if sum.Dot(mean) < 0 {
		sum = sum.Mul(-1)
	}
	return sum, mean
}

func vertexMean(flat []float64, stride int) (schema.Coordinate, bool) {
	if stride < 2 || len(flat) < stride {
		return schema.Coordinate{}, false
	}
	var mean r3.Vector
	for i := 0; i+1 < len(flat); i += stride {
		mean = mean.Add(s2.PointFromLatLng(s2.LatLngFromDegrees(flat[i+1], flat[i])).Vector)
	}
	if mean.Norm() < epsilon {
		return schema.Coordinate{}, false
	}
	return fromVector(mean)
}

func fromVector(v r3.Vector) (schema.Coordinate, bool) {
	ll := s2.LatLngFromPoint(s2.Point{Vector: v.Normalize()})
	return validCoordinate(ll.Lat.Degrees(), ll.Lng.Degrees())
}

func validCoordinate(lat, lng float64) (schema.Coordinate, bool) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.Abs(lat) > 90 || math.Abs(lng) > 180 {
		return schema.Coordinate{}, false
	}
	return schema.Coordinate{Lat: lat, Lng: lng}, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

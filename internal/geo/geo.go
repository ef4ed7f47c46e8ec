// Package geo decodes the country geometry collection and derives representative coordinates.
package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/globeplay/schema"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// ErrNotFeatureCollection is returned when the payload is not a GeoJSON FeatureCollection.
var ErrNotFeatureCollection = errors.New("payload is not a GeoJSON FeatureCollection")

// idProperties are consulted, in order, when a feature carries no top-level id.
var idProperties = []string{"ISO_A3", "ADM0_A3", schema.PropAdmin, schema.PropName}

type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	ID         json.RawMessage `json:"id"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// DecodeFeatureCollection decodes a GeoJSON FeatureCollection into an index-ordered
// feature table. Feature IDs are unique within the table.
func DecodeFeatureCollection(data []byte) ([]schema.Feature, error) {
	var raw rawCollection
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode feature collection: %w", err)
	}
	if raw.Type != "FeatureCollection" {
		return nil, ErrNotFeatureCollection
	}

	features := make([]schema.Feature, 0, len(raw.Features))
	seen := make(map[string]struct{}, len(raw.Features))
	for i, rf := range raw.Features {
		var g geom.T
		if len(rf.Geometry) > 0 && !bytes.Equal(bytes.TrimSpace(rf.Geometry), []byte("null")) {
			if err := geojson.Unmarshal(rf.Geometry, &g); err != nil {
				return nil, fmt.Errorf("failed to decode geometry of feature %d: %w", i, err)
			}
		}
		props := rf.Properties
		if props == nil {
			props = map[string]any{}
		}
		id := featureID(rf.ID, props, i)
		if _, dup := seen[id]; dup {
			id = id + "#" + strconv.Itoa(i)
		}
		seen[id] = struct{}{}
		features = append(features, schema.Feature{
			ID:         id,
			Index:      i,
			Properties: props,
			Geometry:   g,
		})
	}
	return features, nil
}

// featureID resolves a stable identifier: the GeoJSON id, then a well-known
// property, then the feature's position.
func featureID(raw json.RawMessage, props map[string]any, index int) string {
	if len(raw) > 0 {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil && n != "" {
			return n.String()
		}
	}
	for _, key := range idProperties {
		if v, ok := props[key].(string); ok && strings.TrimSpace(v) != "" && v != "-99" {
			return v
		}
	}
	return strconv.Itoa(index)
}

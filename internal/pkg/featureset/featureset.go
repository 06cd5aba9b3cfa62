// Package featureset handles the interchange geometry format: parsing,
// structural validation, fan-out merging, and geometry normalization.
package featureset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Parse decodes a GeoJSON FeatureCollection, rejecting payloads whose
// top-level type marker is wrong. This is the structural validity check the
// fallback chain relies on.
func Parse(data []byte) (*geojson.FeatureCollection, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if probe.Type != "FeatureCollection" {
		return nil, fmt.Errorf("unexpected top-level type %q, want FeatureCollection", probe.Type)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	return fc, nil
}

// Merge combines several collections into one logical dataset, in input order.
func Merge(collections ...*geojson.FeatureCollection) *geojson.FeatureCollection {
	merged := geojson.NewFeatureCollection()
	for _, fc := range collections {
		if fc == nil {
			continue
		}
		merged.Features = append(merged.Features, fc.Features...)
	}
	return merged
}

// MultiPolygon returns the feature geometry normalized to a MultiPolygon.
// Single polygons are wrapped; other geometry types are rejected.
func MultiPolygon(f *geojson.Feature) (orb.MultiPolygon, bool) {
	if f == nil || f.Geometry == nil {
		return nil, false
	}
	switch g := f.Geometry.(type) {
	case orb.MultiPolygon:
		return g, len(g) > 0
	case orb.Polygon:
		if len(g) == 0 {
			return nil, false
		}
		return orb.MultiPolygon{g}, true
	default:
		return nil, false
	}
}

// GeometryJSON encodes a MultiPolygon as a GeoJSON geometry document, the
// form ST_GeomFromGeoJSON accepts.
func GeometryJSON(mp orb.MultiPolygon) (json.RawMessage, error) {
	data, err := geojson.NewGeometry(mp).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode geometry: %w", err)
	}
	return data, nil
}

// StringProp returns the first non-empty string property among keys,
// matching case-insensitively. Natural Earth marks absent codes with "-99",
// which is treated as missing.
func StringProp(f *geojson.Feature, keys ...string) string {
	if f == nil || f.Properties == nil {
		return ""
	}
	for _, key := range keys {
		for name, val := range f.Properties {
			if !strings.EqualFold(name, key) {
				continue
			}
			s, ok := val.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" || s == "-99" {
				continue
			}
			return s
		}
	}
	return ""
}

// Package geo holds the GeoJSON-shaped payload exchanged between the anomaly
// service and the dashboard. The dashboard treats a collection as an opaque
// blob: it is decoded, never validated or transformed, and only its identity
// (a generation counter kept by the caller) drives re-rendering.
package geo

import (
	"encoding/json"
	"fmt"
)

// FeatureCollection is a feature-collection-style geographic payload.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one geographic feature with free-form properties.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Geometry keeps coordinates raw so non-point shapes pass through untouched.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
}

// NewCollection builds an empty FeatureCollection.
func NewCollection() *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// NewPointFeature builds a Point feature carrying a z_score property, the
// shape the anomaly endpoint emits.
func NewPointFeature(lon, lat, zScore float64) Feature {
	coords, _ := json.Marshal([2]float64{lon, lat})
	return Feature{
		Type:     "Feature",
		Geometry: Geometry{Type: "Point", Coordinates: coords},
		Properties: map[string]interface{}{
			"z_score": zScore,
		},
	}
}

// Decode parses a JSON body into a FeatureCollection.
func Decode(data []byte) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	return &fc, nil
}

// Point returns the lon/lat of a Point feature. ok is false for non-point
// geometries or malformed coordinates.
func (f Feature) Point() (lon, lat float64, ok bool) {
	if f.Geometry.Type != "Point" || len(f.Geometry.Coordinates) == 0 {
		return 0, 0, false
	}
	var coords []float64
	if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil || len(coords) < 2 {
		return 0, 0, false
	}
	return coords[0], coords[1], true
}

// ZScore returns the z_score property. ok is false when absent or non-numeric.
func (f Feature) ZScore() (float64, bool) {
	v, present := f.Properties["z_score"]
	if !present {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f64, err := n.Float64()
		return f64, err == nil
	default:
		return 0, false
	}
}

// BBox is a lon/lat bounding box.
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
	set                            bool
}

// Extend grows the box to include the point.
func (b *BBox) Extend(lon, lat float64) {
	if !b.set {
		b.MinLon, b.MaxLon = lon, lon
		b.MinLat, b.MaxLat = lat, lat
		b.set = true
		return
	}
	if lon < b.MinLon {
		b.MinLon = lon
	}
	if lon > b.MaxLon {
		b.MaxLon = lon
	}
	if lat < b.MinLat {
		b.MinLat = lat
	}
	if lat > b.MaxLat {
		b.MaxLat = lat
	}
}

// Valid reports whether the box spans a non-degenerate area.
func (b BBox) Valid() bool {
	return b.set && b.MaxLon > b.MinLon && b.MaxLat > b.MinLat
}

// Bounds computes the bounding box of all point features in the collection.
func (fc *FeatureCollection) Bounds() BBox {
	var box BBox
	for _, f := range fc.Features {
		if lon, lat, ok := f.Point(); ok {
			box.Extend(lon, lat)
		}
	}
	return box
}

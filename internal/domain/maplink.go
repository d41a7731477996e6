package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// MapViewerBaseURL is the geojson.io prefix that accepts an inline data URL.
const MapViewerBaseURL = "https://geojson.io/#data=data:application/json,"

// FeatureCollection is the GeoJSON document embedded in a map link.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single GeoJSON point with the earthquake properties.
type Feature struct {
	Type       string            `json:"type"`
	Properties FeatureProperties `json:"properties"`
	Geometry   PointGeometry     `json:"geometry"`
}

// FeatureProperties mirrors the catalog property names (mag, place, time).
type FeatureProperties struct {
	Mag   float64 `json:"mag"`
	Place string  `json:"place"`
	Time  int64   `json:"time"`
}

// PointGeometry is a GeoJSON Point. Coordinates are [lon, lat].
type PointGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// NewFeatureCollection converts records into GeoJSON, keeping input order.
// An empty input yields an empty (non-null) features array.
func NewFeatureCollection(records []EarthquakeRecord) FeatureCollection {
	features := make([]Feature, 0, len(records))
	for _, r := range records {
		features = append(features, Feature{
			Type: "Feature",
			Properties: FeatureProperties{
				Mag:   r.Magnitude,
				Place: r.Place,
				Time:  r.OccurredAtEpochMillis,
			},
			Geometry: PointGeometry{
				Type:        "Point",
				Coordinates: []float64{r.Longitude, r.Latitude},
			},
		})
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// BuildMapLink returns a geojson.io URL displaying the given records. The
// output is deterministic for a given input. No length limit is applied, so
// very large result sets can exceed what a browser accepts.
func BuildMapLink(records []EarthquakeRecord) string {
	// Marshalling fixed struct types with finite floats cannot fail.
	data, _ := json.Marshal(NewFeatureCollection(records))
	return MapViewerBaseURL + encodeURIComponent(string(data))
}

// DecodeMapLink extracts the FeatureCollection from a link built by BuildMapLink.
func DecodeMapLink(link string) (FeatureCollection, error) {
	payload, ok := strings.CutPrefix(link, MapViewerBaseURL)
	if !ok {
		return FeatureCollection{}, errors.New("not a geojson.io data link")
	}
	raw, err := url.PathUnescape(payload)
	if err != nil {
		return FeatureCollection{}, fmt.Errorf("unescape map link: %w", err)
	}
	var fc FeatureCollection
	if err := json.Unmarshal([]byte(raw), &fc); err != nil {
		return FeatureCollection{}, fmt.Errorf("decode map link payload: %w", err)
	}
	return fc, nil
}

// encodeURIComponent percent-encodes everything outside the unreserved set.
// QueryEscape already turns a literal '+' into %2B, so the only '+' left in
// its output stands for a space.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

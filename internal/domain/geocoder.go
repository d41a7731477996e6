package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Found            bool
	Lat              float64
	Lon              float64
	PlaceName        string
	FormattedAddress string
	Country          string
}

// Geocoder resolves free text to coordinates and coordinates to place names.
// A query without a match returns Found=false and a nil error.
type Geocoder interface {
	// ForwardGeocode resolves a free-text location to its first match.
	ForwardGeocode(ctx context.Context, text string) (GeocodingResult, error)

	// ReverseGeocode resolves coordinates to place and country names.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

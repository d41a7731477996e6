package domain

import "time"

// EarthquakeRecord is a single catalog entry as received from the query
// collaborator. Records are treated as immutable once decoded.
type EarthquakeRecord struct {
	ID                    string  `json:"id,omitempty"`
	Magnitude             float64 `json:"magnitude"`
	Place                 string  `json:"place"`
	OccurredAtEpochMillis int64   `json:"occurred_at_epoch_millis"`
	Longitude             float64 `json:"longitude"`
	Latitude              float64 `json:"latitude"`
	DepthKm               float64 `json:"depth_km,omitempty"`
}

// OccurredAt returns the event time in UTC.
func (r EarthquakeRecord) OccurredAt() time.Time {
	return time.UnixMilli(r.OccurredAtEpochMillis).UTC()
}

// SearchForm holds the raw text of a search as typed by the user.
type SearchForm struct {
	Location     string `json:"location"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	MinMagnitude string `json:"min_magnitude"`
	RadiusKm     string `json:"radius_km"`
}

// SearchCriteria is a validated search. Build it with ParseCriteria.
type SearchCriteria struct {
	Location     string
	Start        time.Time
	End          time.Time
	MinMagnitude float64
	RadiusKm     float64
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

package domain

import (
	"context"
	"time"
)

// CatalogQuery is a radius search around a point over a date range.
// Start and End are calendar days; End is inclusive.
type CatalogQuery struct {
	Start        time.Time
	End          time.Time
	MinMagnitude float64
	Center       Coordinates
	RadiusKm     float64
}

// Catalog is the earthquake query collaborator.
type Catalog interface {
	// Query returns every record matching q, in catalog order.
	Query(ctx context.Context, q CatalogQuery) ([]EarthquakeRecord, error)

	// Latest returns the most recent record. ok is false when the catalog is empty.
	Latest(ctx context.Context) (record EarthquakeRecord, ok bool, err error)
}

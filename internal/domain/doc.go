// Package domain models earthquake catalog data and the pure rules applied to
// user search input before any network call is made.
//
// # Data Source
//
// Earthquake records come from the USGS FDSN event web service
// (https://earthquake.usgs.gov/fdsnws/event/1/) queried with format=geojson.
// Each feature in the response carries:
//
//	properties.mag    magnitude, may be null for unreviewed events
//	properties.place  free text, e.g. "10 km SSW of Idyllwild, CA"
//	properties.time   epoch milliseconds, UTC
//	geometry.coordinates  [longitude, latitude, depth_km]
//
// Only the first two coordinate components are used for positioning. Depth is
// kept on the record for display but never written into map links.
//
// # Date Input
//
// Dates are typed as DD-MM-YYYY and parsed strictly: two-digit day and month,
// four-digit year, no trailing text and no calendar rollover. "31-04-2024"
// is rejected rather than normalized to 1 May. A blank field is reported as
// required, anything else unparsable as a format error.
//
// # Numeric Input
//
// Minimum magnitude and search radius must be finite numbers >= 0. Magnitude
// is additionally capped at 10, the top of the moment magnitude range seen in
// practice.
//
// # Map Links
//
// Results are shared as a geojson.io link. The FeatureCollection is encoded
// as compact JSON, percent-encoded as a URI component and appended to a
// data: URL fragment. See [BuildMapLink].
package domain

package search

import "github.com/couchcryptid/earthquake-locator/internal/domain"

// Kind classifies how a search action ended.
type Kind string

const (
	KindOK        Kind = "ok"
	KindInvalid   Kind = "invalid"
	KindNotFound  Kind = "not_found"
	KindNoResults Kind = "no_results"
	KindError     Kind = "error"
)

// User-facing messages for the non-field outcomes.
const (
	msgInvalid   = "please correct the highlighted fields"
	msgNotFound  = "location not found"
	msgNoResults = "no earthquakes match the given criteria"
)

// Outcome is the complete, immutable result of one search action. The
// presentation layer renders it; nothing else is mutated.
type Outcome struct {
	Kind        Kind                      `json:"kind"`
	Message     string                    `json:"message,omitempty"`
	FieldErrors []domain.FieldError       `json:"field_errors,omitempty"`
	Location    *domain.Coordinates       `json:"location,omitempty"`
	Records     []domain.EarthquakeRecord `json:"records,omitempty"`
	MapURL      string                    `json:"map_url,omitempty"`
}

// Failed reports whether the outcome should be treated as an error by
// callers that map outcomes onto exit codes or status codes. An empty result
// is not a failure.
func (o Outcome) Failed() bool {
	return o.Kind != KindOK && o.Kind != KindNoResults
}

// LatestSummary describes the newest catalog event for display.
type LatestSummary struct {
	Record   domain.EarthquakeRecord `json:"record"`
	Place    string                  `json:"place"`
	Country  string                  `json:"country"`
	Occurred string                  `json:"occurred"`
}

// Summary renders the one-line banner text.
func (s LatestSummary) Summary() string {
	return "Latest quake: " + formatMagnitude(s.Record.Magnitude) + " M - " + s.Place + ", " + s.Country + " - " + s.Occurred
}

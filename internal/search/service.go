// Package search orchestrates a user action: validate input, geocode the
// location, query the catalog and turn the result into an Outcome.
package search

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/earthquake-locator/internal/domain"
	"github.com/couchcryptid/earthquake-locator/internal/observability"
)

// Quick search defaults.
const (
	QuickSearchMonths       = 6
	QuickSearchMinMagnitude = 1.0
	QuickSearchRadiusKm     = 500.0
)

const unknownRegion = "unknown region"

// ErrNoEvents is returned by Latest when the catalog has nothing to report.
var ErrNoEvents = errors.New("catalog returned no events")

// Service runs search actions against injected collaborators.
type Service struct {
	geocoder domain.Geocoder
	catalog  domain.Catalog
	location *time.Location
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewService creates a Service. displayLoc is used for formatted event times;
// nil means UTC.
func NewService(geocoder domain.Geocoder, catalog domain.Catalog, displayLoc *time.Location, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if displayLoc == nil {
		displayLoc = time.UTC
	}
	return &Service{
		geocoder: geocoder,
		catalog:  catalog,
		location: displayLoc,
		logger:   logger,
		metrics:  metrics,
	}
}

// Search validates the form, then geocodes and queries the catalog. Invalid
// input returns before any I/O.
func (s *Service) Search(ctx context.Context, form domain.SearchForm) Outcome {
	start := time.Now()
	out := s.search(ctx, form)
	s.record("search", out, start)
	return out
}

func (s *Service) search(ctx context.Context, form domain.SearchForm) Outcome {
	criteria, fieldErrs := domain.ParseCriteria(form)
	if len(fieldErrs) > 0 {
		return Outcome{Kind: KindInvalid, Message: msgInvalid, FieldErrors: fieldErrs}
	}

	return s.run(ctx, criteria.Location, func(center domain.Coordinates) domain.CatalogQuery {
		return domain.CatalogQuery{
			Start:        criteria.Start,
			End:          criteria.End,
			MinMagnitude: criteria.MinMagnitude,
			Center:       center,
			RadiusKm:     criteria.RadiusKm,
		}
	})
}

// QuickSearch looks for events of magnitude >= 1 within 500 km of location
// over the last six months.
func (s *Service) QuickSearch(ctx context.Context, location string) Outcome {
	start := time.Now()
	var out Outcome
	if strings.TrimSpace(location) == "" {
		out = Outcome{
			Kind:        KindInvalid,
			Message:     msgInvalid,
			FieldErrors: []domain.FieldError{{Field: domain.FieldLocation, Message: "location is required"}},
		}
	} else {
		from, to := domain.RecentWindow(QuickSearchMonths)
		out = s.run(ctx, strings.TrimSpace(location), func(center domain.Coordinates) domain.CatalogQuery {
			return domain.CatalogQuery{
				Start:        from,
				End:          to,
				MinMagnitude: QuickSearchMinMagnitude,
				Center:       center,
				RadiusKm:     QuickSearchRadiusKm,
			}
		})
	}
	s.record("quick", out, start)
	return out
}

func (s *Service) run(ctx context.Context, location string, buildQuery func(domain.Coordinates) domain.CatalogQuery) Outcome {
	geo, err := s.geocoder.ForwardGeocode(ctx, location)
	if err != nil {
		s.logger.Error("geocoding failed", "location", location, "error", err)
		return networkError(err)
	}
	if !geo.Found {
		s.logger.Info("location not found", "location", location)
		return Outcome{Kind: KindNotFound, Message: msgNotFound}
	}

	center := domain.Coordinates{Lat: geo.Lat, Lon: geo.Lon}
	records, err := s.catalog.Query(ctx, buildQuery(center))
	if err != nil {
		s.logger.Error("catalog query failed", "location", location, "error", err)
		return networkError(err)
	}
	if len(records) == 0 {
		return Outcome{Kind: KindNoResults, Message: msgNoResults, Location: &center}
	}

	link := domain.BuildMapLink(records)
	s.metrics.MapLinkBytes.Observe(float64(len(link)))
	s.logger.Info("search complete", "location", location, "records", len(records), "link_bytes", len(link))

	return Outcome{Kind: KindOK, Location: &center, Records: records, MapURL: link}
}

// Latest fetches the newest event and resolves its country. A failed reverse
// lookup degrades to "unknown region" rather than failing the action.
func (s *Service) Latest(ctx context.Context) (LatestSummary, error) {
	start := time.Now()
	summary, err := s.latest(ctx)

	outcome := KindOK
	if err != nil {
		outcome = KindError
	}
	s.metrics.Searches.WithLabelValues("latest", string(outcome)).Inc()
	s.metrics.SearchDuration.WithLabelValues("latest").Observe(time.Since(start).Seconds())
	return summary, err
}

func (s *Service) latest(ctx context.Context) (LatestSummary, error) {
	rec, ok, err := s.catalog.Latest(ctx)
	if err != nil {
		return LatestSummary{}, err
	}
	if !ok {
		return LatestSummary{}, ErrNoEvents
	}

	country := unknownRegion
	geo, err := s.geocoder.ReverseGeocode(ctx, rec.Latitude, rec.Longitude)
	switch {
	case err != nil:
		s.logger.Warn("reverse geocoding failed", "id", rec.ID, "error", err)
	case geo.Found && geo.Country != "":
		country = geo.Country
	}

	return LatestSummary{
		Record:   rec,
		Place:    domain.CleanPlace(rec.Place),
		Country:  country,
		Occurred: domain.FormatOccurredAt(rec.OccurredAtEpochMillis, s.location),
	}, nil
}

// CheckReadiness probes the catalog. It is used by the HTTP readiness endpoint.
func (s *Service) CheckReadiness(ctx context.Context) error {
	_, _, err := s.catalog.Latest(ctx)
	return err
}

func (s *Service) record(kind string, out Outcome, start time.Time) {
	s.metrics.Searches.WithLabelValues(kind, string(out.Kind)).Inc()
	s.metrics.SearchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func networkError(err error) Outcome {
	return Outcome{Kind: KindError, Message: "network error: " + err.Error()}
}

func formatMagnitude(m float64) string {
	return strconv.FormatFloat(m, 'f', 1, 64)
}

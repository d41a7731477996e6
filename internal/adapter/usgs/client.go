package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/earthquake-locator/internal/domain"
	"github.com/couchcryptid/earthquake-locator/internal/observability"
)

// isoDate is the day format the FDSN event service accepts for starttime/endtime.
const isoDate = "2006-01-02"

// Client implements domain.Catalog against the USGS FDSN event web service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a USGS catalog client. baseURL is the service root, e.g.
// https://earthquake.usgs.gov/fdsnws/event/1.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// Query runs a radius search. The end day is made inclusive by asking the
// service for everything before the following midnight.
func (c *Client) Query(ctx context.Context, q domain.CatalogQuery) ([]domain.EarthquakeRecord, error) {
	params := url.Values{
		"format":       {"geojson"},
		"starttime":    {q.Start.Format(isoDate)},
		"endtime":      {q.End.AddDate(0, 0, 1).Format(isoDate)},
		"minmagnitude": {formatFloat(q.MinMagnitude)},
		"latitude":     {formatFloat(q.Center.Lat)},
		"longitude":    {formatFloat(q.Center.Lon)},
		"maxradiuskm":  {formatFloat(q.RadiusKm)},
	}
	return c.doRequest(ctx, params, "search")
}

// Latest returns the most recent event in the catalog.
func (c *Client) Latest(ctx context.Context) (domain.EarthquakeRecord, bool, error) {
	params := url.Values{
		"format":  {"geojson"},
		"orderby": {"time"},
		"limit":   {"1"},
	}
	records, err := c.doRequest(ctx, params, "latest")
	if err != nil {
		return domain.EarthquakeRecord{}, false, err
	}
	if len(records) == 0 {
		return domain.EarthquakeRecord{}, false, nil
	}
	return records[0], true, nil
}

func (c *Client) doRequest(ctx context.Context, params url.Values, query string) ([]domain.EarthquakeRecord, error) {
	fullURL := c.baseURL + "/query?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	start := time.Now()
	records, err := c.do(req)
	c.metrics.CatalogDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.CatalogRequests.WithLabelValues(query, "error").Inc()
		c.logger.Warn("catalog request failed", "query", query, "error", err)
		return nil, err
	}

	c.metrics.CatalogRequests.WithLabelValues(query, "success").Inc()
	c.logger.Debug("catalog request complete", "query", query, "records", len(records))
	return records, nil
}

func (c *Client) do(req *http.Request) ([]domain.EarthquakeRecord, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	// The service answers 204 No Content when nothing matches.
	if resp.StatusCode == http.StatusNoContent {
		return []domain.EarthquakeRecord{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("usgs API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return DecodeRecords(resp.Body, c.logger)
}

// DecodeRecords reads a catalog GeoJSON document, such as a saved query
// response, into records.
func DecodeRecords(r io.Reader, logger *slog.Logger) ([]domain.EarthquakeRecord, error) {
	var payload response
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return toRecords(payload.Features, logger), nil
}

// toRecords reads only the fields the client needs. Features without at
// least [lon, lat] cannot be placed on a map and are skipped.
func toRecords(features []feature, logger *slog.Logger) []domain.EarthquakeRecord {
	records := make([]domain.EarthquakeRecord, 0, len(features))
	for _, f := range features {
		coords := f.Geometry.Coordinates
		if len(coords) < 2 {
			logger.Warn("skipping feature without coordinates", "id", f.ID)
			continue
		}
		r := domain.EarthquakeRecord{
			ID:                    f.ID,
			Place:                 f.Properties.Place,
			OccurredAtEpochMillis: f.Properties.Time,
			Longitude:             coords[0],
			Latitude:              coords[1],
		}
		if f.Properties.Mag != nil {
			r.Magnitude = *f.Properties.Mag
		}
		if len(coords) > 2 {
			r.DepthKm = coords[2]
		}
		records = append(records, r)
	}
	return records
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// USGS GeoJSON response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string     `json:"id"`
	Properties properties `json:"properties"`
	Geometry   geometry   `json:"geometry"`
}

type properties struct {
	Mag   *float64 `json:"mag"`
	Place string   `json:"place"`
	Time  int64    `json:"time"`
}

type geometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

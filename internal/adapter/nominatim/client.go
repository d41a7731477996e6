// Package nominatim implements a keyless geocoder on top of the
// OpenStreetMap Nominatim API. It is used when no Mapbox token is configured.
package nominatim

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

const provider = "nominatim"

// Client implements domain.Geocoder. Nominatim's usage policy requires an
// identifying User-Agent on every request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim client rooted at baseURL.
func NewClient(baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		metrics:    metrics,
		logger:     logger,
	}
}

// ForwardGeocode resolves free text to the first search match.
func (c *Client) ForwardGeocode(ctx context.Context, text string) (domain.GeocodingResult, error) {
	params := url.Values{}
	params.Set("q", strings.TrimSpace(text))
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")

	return c.observe("forward", func() (domain.GeocodingResult, error) {
		var places []place
		if err := c.get(ctx, "/search?"+params.Encode(), &places); err != nil {
			return domain.GeocodingResult{}, err
		}
		if len(places) == 0 {
			return domain.GeocodingResult{}, nil
		}
		return places[0].toResult()
	})
}

// ReverseGeocode resolves coordinates to the enclosing place and country.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	params.Set("format", "jsonv2")
	params.Set("zoom", "10")

	return c.observe("reverse", func() (domain.GeocodingResult, error) {
		var p place
		if err := c.get(ctx, "/reverse?"+params.Encode(), &p); err != nil {
			return domain.GeocodingResult{}, err
		}
		// Points over open ocean come back as {"error": "Unable to geocode"}.
		if p.Error != "" {
			return domain.GeocodingResult{}, nil
		}
		return p.toResult()
	})
}

func (c *Client) observe(method string, fn func() (domain.GeocodingResult, error)) (domain.GeocodingResult, error) {
	start := time.Now()
	result, err := fn()
	c.metrics.GeocodeAPIDuration.WithLabelValues(provider, method).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues(provider, method, "error").Inc()
		c.logger.Warn("nominatim geocode failed", "method", method, "error", err)
	case !result.Found:
		c.metrics.GeocodeRequests.WithLabelValues(provider, method, "empty").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues(provider, method, "success").Inc()
	}
	return result, err
}

func (c *Client) get(ctx context.Context, pathAndQuery string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nominatim request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// place mirrors the relevant parts of the jsonv2 search and reverse payloads.
// Nominatim encodes coordinates as strings.
type place struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
	Error       string  `json:"error"`
}

type address struct {
	Country string `json:"country"`
}

func (p place) toResult() (domain.GeocodingResult, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("parse latitude %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("parse longitude %q: %w", p.Lon, err)
	}
	name := p.Name
	if name == "" {
		name, _, _ = strings.Cut(p.DisplayName, ",")
	}
	return domain.GeocodingResult{
		Found:            true,
		Lat:              lat,
		Lon:              lon,
		PlaceName:        name,
		FormattedAddress: p.DisplayName,
		Country:          p.Address.Country,
	}, nil
}

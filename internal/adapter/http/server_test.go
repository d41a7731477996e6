package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/earthquake-locator/internal/adapter/http"
	"github.com/couchcryptid/earthquake-locator/internal/domain"
	"github.com/couchcryptid/earthquake-locator/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockService struct {
	outcome    search.Outcome
	latest     search.LatestSummary
	latestErr  error
	lastForm   domain.SearchForm
	lastQuick  string
	quickCalls int
}

func (m *mockService) Search(_ context.Context, form domain.SearchForm) search.Outcome {
	m.lastForm = form
	return m.outcome
}

func (m *mockService) QuickSearch(_ context.Context, location string) search.Outcome {
	m.quickCalls++
	m.lastQuick = location
	return m.outcome
}

func (m *mockService) Latest(_ context.Context) (search.LatestSummary, error) {
	return m.latest, m.latestErr
}

func newTestServer(svc *mockService, readyErr error) *httpadapter.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", svc, &mockReadiness{err: readyErr}, logger)
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&mockService{}, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(&mockService{}, nil), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(&mockService{}, fmt.Errorf("usgs unreachable")), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "usgs unreachable", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockService{}, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSearchPassesQueryAsForm(t *testing.T) {
	svc := &mockService{outcome: search.Outcome{Kind: search.KindOK, MapURL: domain.MapViewerBaseURL + "x"}}
	srv := newTestServer(svc, nil)

	rec := get(t, srv, "/api/v1/earthquakes/search?location=Los+Angeles&start=01-01-2024&end=31-01-2024&minmag=2.5&radius=100")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.SearchForm{
		Location:     "Los Angeles",
		StartDate:    "01-01-2024",
		EndDate:      "31-01-2024",
		MinMagnitude: "2.5",
		RadiusKm:     "100",
	}, svc.lastForm)

	var body search.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, search.KindOK, body.Kind)
	assert.True(t, strings.HasPrefix(body.MapURL, domain.MapViewerBaseURL))
}

func TestSearchStatusMapping(t *testing.T) {
	tests := []struct {
		kind search.Kind
		want int
	}{
		{search.KindOK, http.StatusOK},
		{search.KindNoResults, http.StatusOK},
		{search.KindInvalid, http.StatusUnprocessableEntity},
		{search.KindNotFound, http.StatusNotFound},
		{search.KindError, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			srv := newTestServer(&mockService{outcome: search.Outcome{Kind: tt.kind}}, nil)
			rec := get(t, srv, "/api/v1/earthquakes/search")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestQuickRequiresLocation(t *testing.T) {
	svc := &mockService{}
	rec := get(t, newTestServer(svc, nil), "/api/v1/earthquakes/quick")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, svc.quickCalls)

	var body struct {
		Kind        string              `json:"kind"`
		FieldErrors []domain.FieldError `json:"field_errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid", body.Kind)
	require.Len(t, body.FieldErrors, 1)
	assert.Equal(t, domain.FieldLocation, body.FieldErrors[0].Field)
}

func TestQuickRejectsOverlongLocation(t *testing.T) {
	svc := &mockService{}
	rec := get(t, newTestServer(svc, nil), "/api/v1/earthquakes/quick?location="+strings.Repeat("a", 201))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "at most 200")
}

func TestQuickDelegates(t *testing.T) {
	svc := &mockService{outcome: search.Outcome{Kind: search.KindNotFound, Message: "location not found"}}
	rec := get(t, newTestServer(svc, nil), "/api/v1/earthquakes/quick?location=Atlantis")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Atlantis", svc.lastQuick)
	assert.Contains(t, rec.Body.String(), "location not found")
}

func TestLatest(t *testing.T) {
	summary := search.LatestSummary{
		Record:   domain.EarthquakeRecord{ID: "us1", Magnitude: 5.0},
		Place:    "Tokyo",
		Country:  "Japan",
		Occurred: "10:00 01-01-2024",
	}
	rec := get(t, newTestServer(&mockService{latest: summary}, nil), "/api/v1/earthquakes/latest")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Japan", body["country"])
	assert.Equal(t, summary.Summary(), body["summary"])
}

func TestLatestErrors(t *testing.T) {
	rec := get(t, newTestServer(&mockService{latestErr: search.ErrNoEvents}, nil), "/api/v1/earthquakes/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, newTestServer(&mockService{latestErr: errors.New("timeout")}, nil), "/api/v1/earthquakes/latest")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "network error: timeout")
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(&mockService{}, nil)

	rec := get(t, srv, "/healthz")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

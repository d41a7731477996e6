package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/earthquake-locator/internal/domain"
	"github.com/couchcryptid/earthquake-locator/internal/search"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// SearchService is the part of search.Service the API depends on.
type SearchService interface {
	Search(ctx context.Context, form domain.SearchForm) search.Outcome
	QuickSearch(ctx context.Context, location string) search.Outcome
	Latest(ctx context.Context) (search.LatestSummary, error)
}

type quickQuery struct {
	Location string `validate:"required,max=200"`
}

type errorBody struct {
	Kind        search.Kind         `json:"kind"`
	Message     string              `json:"message"`
	FieldErrors []domain.FieldError `json:"field_errors,omitempty"`
}

type api struct {
	svc      SearchService
	validate *validator.Validate
	logger   *slog.Logger
}

func newAPI(svc SearchService, logger *slog.Logger) *api {
	return &api{svc: svc, validate: validator.New(), logger: logger}
}

func (a *api) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	form := domain.SearchForm{
		Location:     q.Get("location"),
		StartDate:    q.Get("start"),
		EndDate:      q.Get("end"),
		MinMagnitude: q.Get("minmag"),
		RadiusKm:     q.Get("radius"),
	}
	writeOutcome(w, a.svc.Search(r.Context(), form))
}

func (a *api) handleQuick(w http.ResponseWriter, r *http.Request) {
	query := quickQuery{Location: r.URL.Query().Get("location")}
	if err := a.validate.Struct(query); err != nil {
		var verrs validator.ValidationErrors
		msg := "location is required"
		if errors.As(err, &verrs) && verrs[0].Tag() == "max" {
			msg = "location must be at most 200 characters"
		}
		sharedobs.WriteJSON(w, http.StatusUnprocessableEntity, errorBody{
			Kind:        search.KindInvalid,
			Message:     msg,
			FieldErrors: []domain.FieldError{{Field: domain.FieldLocation, Message: msg}},
		})
		return
	}
	writeOutcome(w, a.svc.QuickSearch(r.Context(), query.Location))
}

func (a *api) handleLatest(w http.ResponseWriter, r *http.Request) {
	summary, err := a.svc.Latest(r.Context())
	switch {
	case errors.Is(err, search.ErrNoEvents):
		sharedobs.WriteJSON(w, http.StatusNotFound, errorBody{Kind: search.KindNoResults, Message: err.Error()})
	case err != nil:
		a.logger.Error("latest failed", "request_id", r.Header.Get(requestIDHeader), "error", err)
		sharedobs.WriteJSON(w, http.StatusBadGateway, errorBody{Kind: search.KindError, Message: "network error: " + err.Error()})
	default:
		sharedobs.WriteJSON(w, http.StatusOK, struct {
			search.LatestSummary
			Summary string `json:"summary"`
		}{summary, summary.Summary()})
	}
}

func writeOutcome(w http.ResponseWriter, out search.Outcome) {
	sharedobs.WriteJSON(w, statusFor(out.Kind), out)
}

// statusFor maps an outcome kind onto an HTTP status. An empty result is a
// successful response.
func statusFor(k search.Kind) int {
	switch k {
	case search.KindOK, search.KindNoResults:
		return http.StatusOK
	case search.KindInvalid:
		return http.StatusUnprocessableEntity
	case search.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// withRequestID tags each request with an ID, reusing one supplied by the
// caller, and echoes it in the response.
func withRequestID(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		logger.Debug("http request", "request_id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/core/service"
)

const tracerName = "github.com/rl1809/beer-stock/internal/adapter/handler"

type HTTPHandler struct {
	beerService *service.BeerService
	logger      *zap.Logger
}

func NewHTTPHandler(beerService *service.BeerService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		beerService: beerService,
		logger:      logger,
	}
}

// Routes returns the router serving the beer API and the health check.
func (h *HTTPHandler) Routes() http.Handler {
	// names may contain an escaped '/'
	r := mux.NewRouter().UseEncodedPath()
	r.Use(tracingMiddleware)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	beers := r.PathPrefix("/api/v1/beers").Subrouter()
	beers.HandleFunc("", h.Create).Methods(http.MethodPost)
	beers.HandleFunc("", h.List).Methods(http.MethodGet)
	beers.HandleFunc("/{name}", h.ReadByName).Methods(http.MethodGet)
	beers.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)
	beers.HandleFunc("/{id}/stock", h.AdjustQuantity).Methods(http.MethodPatch)

	return r
}

func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req beerDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorDTO{Message: "invalid request body"})
		return
	}

	beer, err := fromBeerDTO(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorDTO{Message: err.Error()})
		return
	}

	id, err := h.beerService.Create(r.Context(), beer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createdDTO{ID: id})
}

func (h *HTTPHandler) ReadByName(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(mux.Vars(r)["name"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorDTO{Message: "invalid name encoding"})
		return
	}

	beer, err := h.beerService.ReadByName(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBeerDTO(beer))
}

func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	beers, err := h.beerService.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]beerDTO, 0, len(beers))
	for _, b := range beers {
		resp = append(resp, toBeerDTO(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.beerService.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorDTO{Message: "invalid request body"})
		return
	}

	beer, err := h.beerService.AdjustQuantity(r.Context(), mux.Vars(r)["id"], req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBeerDTO(beer))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		message = "internal error"
	}

	writeJSON(w, status, errorDTO{Message: message})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrExceedsCapacity),
		errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		ctx, span := otel.Tracer(tracerName).Start(ctx, r.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.response.status_code", rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	})
}

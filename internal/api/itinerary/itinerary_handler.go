package itinerary

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/capstone-2025-fall/trib-go/internal/api"
	"github.com/capstone-2025-fall/trib-go/internal/types"
)

// Handler handles HTTP requests for itinerary generation.
type Handler struct {
	itineraryService Service
	logger           *slog.Logger
}

func NewHandler(itineraryService Service, logger *slog.Logger) *Handler {
	if logger == nil {
		panic("PANIC: Attempting to create itinerary Handler with nil logger!")
	}
	return &Handler{
		itineraryService: itineraryService,
		logger:           logger,
	}
}

// GenerateItinerary builds a complete itinerary from the posted place ids and
// user request. A result that failed validation after all retries is still a
// 200; the embedded report carries the remaining problems.
func (h *Handler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GenerateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itinerary/generate"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GenerateItinerary"))

	var req types.GenerateItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.PlaceIDs) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "places must not be empty")
		return
	}
	if req.UserRequest.Days <= 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "days must be positive")
		return
	}
	span.SetAttributes(
		attribute.Int("request.places", len(req.PlaceIDs)),
		attribute.Int("request.days", req.UserRequest.Days),
	)

	result, err := h.itineraryService.GenerateItinerary(ctx, req)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, types.ErrNotFound):
			l.WarnContext(ctx, "No matching places", slog.Any("error", err))
			span.SetStatus(codes.Error, "Places not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "no matching places found")
		default:
			l.ErrorContext(ctx, "Failed to generate itinerary", slog.Any("error", err))
			span.SetStatus(codes.Error, "Failed to generate itinerary")
			api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to generate itinerary")
		}
		return
	}

	span.SetStatus(codes.Ok, "Itinerary generated")
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

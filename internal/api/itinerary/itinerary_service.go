package itinerary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/capstone-2025-fall/trib-go/app/observability/metrics"
	"github.com/capstone-2025-fall/trib-go/internal/api/cluster"
	generativeAI "github.com/capstone-2025-fall/trib-go/internal/api/generative_ai"
	"github.com/capstone-2025-fall/trib-go/internal/api/place"
	"github.com/capstone-2025-fall/trib-go/internal/api/routes"
	"github.com/capstone-2025-fall/trib-go/internal/types"
)

// DefaultMaxRetries is the number of regeneration rounds after the first
// attempt when validation keeps failing.
const DefaultMaxRetries = 2

var _ Service = (*ServiceImpl)(nil)

// Service builds complete multi-day itineraries from stored places and a
// free-form user request.
type Service interface {
	GenerateItinerary(ctx context.Context, req types.GenerateItineraryRequest) (*types.GenerateItineraryResult, error)
}

// Config carries the generation knobs resolved from the application config.
type Config struct {
	MaxRetries     int
	MinStayMinutes int
	Temperature    float32
}

type ServiceImpl struct {
	logger     *slog.Logger
	placeRepo  place.Repository
	clusterSvc cluster.Service
	routesSvc  routes.Provider
	ai         generativeAI.Generator
	cfg        Config
}

func NewServiceImpl(
	placeRepo place.Repository,
	clusterSvc cluster.Service,
	routesSvc routes.Provider,
	ai generativeAI.Generator,
	cfg Config,
	logger *slog.Logger,
) *ServiceImpl {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MinStayMinutes <= 0 {
		cfg.MinStayMinutes = DefaultMinStayMinutes
	}
	return &ServiceImpl{
		logger:     logger,
		placeRepo:  placeRepo,
		clusterSvc: clusterSvc,
		routesSvc:  routesSvc,
		ai:         ai,
		cfg:        cfg,
	}
}

// GenerateItinerary runs the full pipeline: load places, cluster them,
// precompute travel-time matrices, generate a schedule with bounded
// validation-driven retries, then reconcile the timeline against measured leg
// times. Exhausting retries is not an error; the best attempt is returned
// together with its validation report.
func (s *ServiceImpl) GenerateItinerary(ctx context.Context, req types.GenerateItineraryRequest) (*types.GenerateItineraryResult, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GenerateItinerary")
	defer span.End()

	requestID := uuid.New()
	l := s.logger.With(slog.String("method", "GenerateItinerary"), slog.String("requestID", requestID.String()))
	span.SetAttributes(
		attribute.String("request.id", requestID.String()),
		attribute.Int("request.days", req.UserRequest.Days),
		attribute.Int("request.places", len(req.PlaceIDs)),
	)

	places, err := s.placeRepo.GetPlacesByIDs(ctx, req.PlaceIDs)
	if err != nil {
		l.ErrorContext(ctx, "failed to load places", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "place lookup failed")
		return nil, fmt.Errorf("loading places: %w", err)
	}

	mode, err := types.ParseTravelMode(string(req.UserRequest.Preferences.TravelMode))
	if err != nil {
		return nil, err
	}
	req.UserRequest.Preferences.TravelMode = mode

	clusters, err := s.clusterSvc.ClusterPlaces(ctx, places)
	if err != nil {
		l.ErrorContext(ctx, "clustering failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "clustering failed")
		return nil, fmt.Errorf("clustering places: %w", err)
	}

	clusterMatrices := s.routesSvc.ComputeClusterMatrices(ctx, clusters, places, mode)
	medoids := s.clusterSvc.FindClusterMedoids(clusters, places, clusterMatrices)
	medoidIDs := routes.SortedMedoidIDs(medoids)
	medoidMatrix := s.routesSvc.ComputeMedoidMatrix(ctx, medoidIDs, places, mode)

	scores := scorePlaces(places)
	basePrompt := buildPrompt(places, scores, clusters, medoids, clusterMatrices, medoidIDs, medoidMatrix, req.UserRequest)

	best, report, attempts, err := s.generateWithRetries(ctx, basePrompt, req.UserRequest)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, err
	}
	best.TravelMode = string(mode)
	best = s.finishItinerary(ctx, best, places, mode)

	span.SetAttributes(
		attribute.Int("generation.attempts", attempts),
		attribute.Bool("generation.valid", report.AllValid),
	)
	l.InfoContext(ctx, "itinerary generated",
		slog.Int("attempts", attempts),
		slog.Bool("allValid", report.AllValid),
		slog.Int("days", len(best.Days)))

	return &types.GenerateItineraryResult{
		RequestID: requestID,
		Itinerary: best,
		Report:    report,
		Attempts:  attempts,
	}, nil
}

// generateWithRetries runs up to MaxRetries+1 generation attempts, feeding
// validation failures back into the prompt. Parse failures consume an attempt
// with a format reminder instead of a violation list. The best attempt so far
// is the one kept when every attempt fails validation.
func (s *ServiceImpl) generateWithRetries(ctx context.Context, basePrompt string, userReq types.UserRequest) (*types.Itinerary, types.ValidationReport, int, error) {
	l := s.logger.With(slog.String("method", "generateWithRetries"))
	genConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(s.cfg.Temperature),
		ResponseMIMEType: "application/json",
	}

	var (
		best       *types.Itinerary
		bestReport types.ValidationReport
		feedback   string
	)
	maxAttempts := s.cfg.MaxRetries + 1

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		metrics.Get().GenerationAttemptsTotal.Add(ctx, 1)

		raw, err := s.ai.GenerateContent(ctx, basePrompt+feedback, genConfig)
		if err != nil {
			if ctx.Err() != nil {
				return nil, types.ValidationReport{}, attempt, ctx.Err()
			}
			return nil, types.ValidationReport{}, attempt, err
		}

		it, err := parseItineraryResponse(raw)
		if err != nil {
			l.WarnContext(ctx, "unparseable generation response",
				slog.Int("attempt", attempt), slog.Any("error", err))
			if attempt == maxAttempts {
				if best != nil {
					return best, bestReport, attempt, nil
				}
				return nil, types.ValidationReport{}, attempt, err
			}
			metrics.Get().GenerationRetriesTotal.Add(ctx, 1)
			feedback = parseRetryFeedback
			continue
		}

		report, err := ValidateAll(it, userReq.Preferences.MustVisit, userReq.Days)
		if err != nil {
			return nil, types.ValidationReport{}, attempt, fmt.Errorf("%w: %s", types.ErrInvalidResponse, err)
		}
		if report.AllValid {
			return it, report, attempt, nil
		}

		violations := violationsFromReport(report)
		l.InfoContext(ctx, "validation failed",
			slog.Int("attempt", attempt), slog.Int("violations", len(violations)))
		if best == nil {
			best, bestReport = it, report
		}
		if attempt < maxAttempts {
			metrics.Get().GenerationRetriesTotal.Add(ctx, 1)
			feedback = feedbackPrompt(violations)
		}
	}
	return best, bestReport, maxAttempts, nil
}

// finishItinerary splices measured leg times into the schedule and reconciles
// the timeline. A reconciliation error keeps the spliced itinerary instead of
// discarding it.
func (s *ServiceImpl) finishItinerary(ctx context.Context, it *types.Itinerary, places []types.Place, mode types.TravelMode) *types.Itinerary {
	legTimes := s.fetchLegTimes(ctx, it, places, mode)
	it = SpliceTravelTimes(it, legTimes)
	reconciled, err := ReconcileTimes(it, s.cfg.MinStayMinutes)
	if err != nil {
		s.logger.WarnContext(ctx, "time reconciliation skipped", slog.Any("error", err))
		return it
	}
	return reconciled
}

// fetchLegTimes measures the travel time of every consecutive same-day pair
// whose coordinates are present, to replace the generated estimates before
// reconciliation. Each day's pairs are batched into a single matrix call; the
// diagonal carries the consecutive legs. Failures degrade to keeping the
// generated values.
func (s *ServiceImpl) fetchLegTimes(ctx context.Context, it *types.Itinerary, places []types.Place, mode types.TravelMode) map[types.TravelLegKey]int {
	byName := make(map[string]types.Place, len(places))
	for _, p := range places {
		byName[p.DisplayName] = p
	}
	legTimes := make(map[types.TravelLegKey]int)
	for _, day := range it.Days {
		var origins, destinations []types.Place
		var fromOrders []int
		for i := 0; i+1 < len(day.Visits); i++ {
			from, to := day.Visits[i], day.Visits[i+1]
			fromPlace, ok := resolveVisitPlace(from, byName)
			if !ok {
				continue
			}
			toPlace, ok := resolveVisitPlace(to, byName)
			if !ok {
				continue
			}
			origins = append(origins, fromPlace)
			destinations = append(destinations, toPlace)
			fromOrders = append(fromOrders, from.Order)
		}
		if len(origins) == 0 {
			continue
		}
		matrix, err := s.routesSvc.ComputeRouteMatrix(ctx, origins, destinations, mode)
		if err != nil || len(matrix) != len(origins) {
			continue
		}
		for k, order := range fromOrders {
			if len(matrix[k]) != len(destinations) {
				continue
			}
			legTimes[types.TravelLegKey{Day: day.Day, FromOrder: order}] = int(matrix[k][k] + 0.5)
		}
	}
	return legTimes
}

// resolveVisitPlace builds the route endpoint for a visit, preferring the
// visit's own coordinates and falling back to the stored place.
func resolveVisitPlace(v types.Visit, byName map[string]types.Place) (types.Place, bool) {
	if v.Latitude != nil && v.Longitude != nil {
		return types.Place{ID: v.DisplayName, DisplayName: v.DisplayName, Latitude: *v.Latitude, Longitude: *v.Longitude}, true
	}
	if p, ok := byName[v.DisplayName]; ok {
		return p, true
	}
	return types.Place{}, false
}

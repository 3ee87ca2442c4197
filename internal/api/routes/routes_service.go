package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/capstone-2025-fall/trib-go/app/observability/metrics"
	"github.com/capstone-2025-fall/trib-go/internal/types"
)

const defaultAPIURL = "https://routes.googleapis.com/distanceMatrix/v2:computeRouteMatrix"

var _ Provider = (*ServiceImpl)(nil)

// Provider computes travel-time matrices in minutes. Batch calls are bounded
// by cluster.MaxClusterSize origins/destinations; the clustering service
// enforces that bound upstream.
type Provider interface {
	// ComputeRouteMatrix returns a len(origins) x len(destinations) matrix.
	// Fails with types.ErrMatrixComputation on transport failure or an
	// invalid mode; pairs missing duration data in an otherwise usable
	// response are filled entry-wise with the geometric estimate.
	ComputeRouteMatrix(ctx context.Context, origins, destinations []types.Place, mode types.TravelMode) (types.DistanceMatrix, error)
	// ComputeClusterMatrices computes one square matrix per cluster,
	// degrading to the geometric fallback per cluster instead of failing the
	// batch.
	ComputeClusterMatrices(ctx context.Context, clusters []types.Cluster, places []types.Place, mode types.TravelMode) map[int]types.DistanceMatrix
	// ComputeMedoidMatrix computes the matrix between the given medoid place
	// ids, in order.
	ComputeMedoidMatrix(ctx context.Context, medoidIDs []string, places []types.Place, mode types.TravelMode) types.DistanceMatrix
	// FallbackMatrix builds the whole-matrix geometric estimate.
	FallbackMatrix(places []types.Place) types.DistanceMatrix
}

type ServiceImpl struct {
	logger     *slog.Logger
	httpClient *http.Client
	apiURL     string
	apiKey     string
	cache      *cache.Cache
}

func NewServiceImpl(apiKey string, timeout time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     defaultAPIURL,
		apiKey:     apiKey,
		cache:      cache.New(10*time.Minute, 30*time.Minute),
	}
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type waypoint struct {
	Location struct {
		LatLng latLng `json:"latLng"`
	} `json:"location"`
}

type matrixEndpoint struct {
	Waypoint waypoint `json:"waypoint"`
}

type matrixRequest struct {
	Origins           []matrixEndpoint `json:"origins"`
	Destinations      []matrixEndpoint `json:"destinations"`
	TravelMode        string           `json:"travelMode"`
	RoutingPreference string           `json:"routingPreference"`
}

type matrixElement struct {
	OriginIndex      int    `json:"originIndex"`
	DestinationIndex int    `json:"destinationIndex"`
	Duration         string `json:"duration"`
	DistanceMeters   int    `json:"distanceMeters"`
}

func toEndpoints(places []types.Place) []matrixEndpoint {
	endpoints := make([]matrixEndpoint, len(places))
	for i, p := range places {
		endpoints[i].Waypoint.Location.LatLng = latLng{Latitude: p.Latitude, Longitude: p.Longitude}
	}
	return endpoints
}

func (s *ServiceImpl) ComputeRouteMatrix(ctx context.Context, origins, destinations []types.Place, mode types.TravelMode) (types.DistanceMatrix, error) {
	if _, err := types.ParseTravelMode(string(mode)); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMatrixComputation, err)
	}

	cacheKey := matrixCacheKey(origins, destinations, mode)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(types.DistanceMatrix), nil
	}

	reqBody := matrixRequest{
		Origins:           toEndpoints(origins),
		Destinations:      toEndpoints(destinations),
		TravelMode:        string(mode),
		RoutingPreference: "TRAFFIC_AWARE_OPTIMAL",
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", types.ErrMatrixComputation, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", types.ErrMatrixComputation, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", s.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", "originIndex,destinationIndex,duration,distanceMeters,status")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMatrixComputation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", types.ErrMatrixComputation, err)
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Routes matrix API failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, fmt.Errorf("%w: status %d", types.ErrMatrixComputation, resp.StatusCode)
	}

	var elements []matrixElement
	if err := json.Unmarshal(body, &elements); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", types.ErrMatrixComputation, err)
	}

	matrix := types.NewZeroMatrix(len(origins), len(destinations))
	seen := make([][]bool, len(origins))
	for i := range seen {
		seen[i] = make([]bool, len(destinations))
	}
	for _, el := range elements {
		if el.OriginIndex < 0 || el.OriginIndex >= len(origins) ||
			el.DestinationIndex < 0 || el.DestinationIndex >= len(destinations) {
			continue
		}
		minutes, ok := parseDurationMinutes(el.Duration)
		if !ok {
			continue
		}
		matrix[el.OriginIndex][el.DestinationIndex] = minutes
		seen[el.OriginIndex][el.DestinationIndex] = true
	}

	// Entry-wise fallback: only the pairs the API left blank get the
	// geometric estimate. Self-distances stay 0.
	degraded := 0
	for i := range origins {
		for j := range destinations {
			if seen[i][j] || origins[i].ID == destinations[j].ID {
				continue
			}
			matrix[i][j] = estimatePairMinutes(origins[i], destinations[j])
			degraded++
		}
	}
	if degraded > 0 {
		s.logger.Warn("Filled missing matrix entries with geometric estimate",
			slog.Int("entries", degraded),
			slog.Int("origins", len(origins)),
			slog.Int("destinations", len(destinations)),
		)
	}

	s.cache.Set(cacheKey, matrix, cache.DefaultExpiration)
	s.logger.Info("Computed route matrix",
		slog.Int("origins", len(origins)),
		slog.Int("destinations", len(destinations)),
		slog.String("mode", string(mode)),
	)
	return matrix, nil
}

// parseDurationMinutes converts the API's "300s" duration strings to minutes.
func parseDurationMinutes(duration string) (float64, bool) {
	trimmed := strings.TrimSuffix(duration, "s")
	if trimmed == "" || trimmed == duration {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return seconds / 60.0, true
}

func matrixCacheKey(origins, destinations []types.Place, mode types.TravelMode) string {
	var b strings.Builder
	b.WriteString(string(mode))
	b.WriteByte(':')
	for _, p := range origins {
		b.WriteString(p.ID)
		b.WriteByte(',')
	}
	b.WriteByte('|')
	for _, p := range destinations {
		b.WriteString(p.ID)
		b.WriteByte(',')
	}
	return b.String()
}

// ComputeClusterMatrices computes intra-cluster matrices concurrently. Each
// cluster degrades independently to the geometric fallback, so a single API
// failure never aborts the batch.
func (s *ServiceImpl) ComputeClusterMatrices(ctx context.Context, clusters []types.Cluster, places []types.Place, mode types.TravelMode) map[int]types.DistanceMatrix {
	placeByID := make(map[string]types.Place, len(places))
	for _, p := range places {
		placeByID[p.ID] = p
	}

	results := make([]types.DistanceMatrix, len(clusters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, c := range clusters {
		g.Go(func() error {
			if len(c.PlaceIDs) == 1 {
				results[i] = types.DistanceMatrix{{0}}
				return nil
			}
			clusterPlaces := make([]types.Place, 0, len(c.PlaceIDs))
			for _, id := range c.PlaceIDs {
				if p, ok := placeByID[id]; ok {
					clusterPlaces = append(clusterPlaces, p)
				}
			}

			matrix, err := s.ComputeRouteMatrix(gctx, clusterPlaces, clusterPlaces, mode)
			if err != nil {
				s.logger.Warn("Cluster matrix degraded to geometric fallback",
					slog.Int("cluster_id", c.ID),
					slog.Any("error", err),
				)
				metrics.Get().RouteFallbacksTotal.Add(gctx, 1)
				matrix = s.FallbackMatrix(clusterPlaces)
			}
			results[i] = matrix
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; degradation is per cluster

	matrices := make(map[int]types.DistanceMatrix, len(clusters))
	for i, c := range clusters {
		matrices[c.ID] = results[i]
	}
	return matrices
}

// ComputeMedoidMatrix computes the inter-cluster matrix over the medoids, in
// the given order. Degrades to the geometric fallback on failure.
func (s *ServiceImpl) ComputeMedoidMatrix(ctx context.Context, medoidIDs []string, places []types.Place, mode types.TravelMode) types.DistanceMatrix {
	placeByID := make(map[string]types.Place, len(places))
	for _, p := range places {
		placeByID[p.ID] = p
	}
	medoidPlaces := make([]types.Place, 0, len(medoidIDs))
	for _, id := range medoidIDs {
		if p, ok := placeByID[id]; ok {
			medoidPlaces = append(medoidPlaces, p)
		}
	}

	if len(medoidPlaces) <= 1 {
		return types.DistanceMatrix{{0}}
	}

	matrix, err := s.ComputeRouteMatrix(ctx, medoidPlaces, medoidPlaces, mode)
	if err != nil {
		s.logger.Warn("Medoid matrix degraded to geometric fallback", slog.Any("error", err))
		metrics.Get().RouteFallbacksTotal.Add(ctx, 1)
		return s.FallbackMatrix(medoidPlaces)
	}
	return matrix
}

// SortedMedoidIDs flattens a cluster-id -> medoid-id map into a deterministic
// order (ascending cluster id) so matrix rows line up with the id list handed
// to the prompt.
func SortedMedoidIDs(medoids map[int]string) []string {
	clusterIDs := make([]int, 0, len(medoids))
	for id := range medoids {
		clusterIDs = append(clusterIDs, id)
	}
	sort.Ints(clusterIDs)

	ids := make([]string, len(clusterIDs))
	for i, id := range clusterIDs {
		ids[i] = medoids[id]
	}
	return ids
}

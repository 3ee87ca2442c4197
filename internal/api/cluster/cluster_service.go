package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/capstone-2025-fall/trib-go/internal/types"
)

// MaxClusterSize is the upper bound on cluster membership. The routes matrix
// API cannot reliably handle more origins/destinations per call, so every
// cluster leaving this package respects the same bound.
const MaxClusterSize = 10

const (
	labelUnclassified = -2
	labelNoise        = -1
)

var _ Service = (*ServiceImpl)(nil)

// Service groups places into routable clusters and picks per-cluster medoids.
type Service interface {
	ClusterPlaces(ctx context.Context, places []types.Place) ([]types.Cluster, error)
	FindMedoid(places []types.Place, matrix types.DistanceMatrix) string
	FindClusterMedoids(clusters []types.Cluster, places []types.Place, matrices map[int]types.DistanceMatrix) map[int]string
}

type ServiceImpl struct {
	logger     *slog.Logger
	epsKm      float64
	minSamples int
	rng        *rand.Rand
}

func NewServiceImpl(epsKm float64, minSamples int, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		epsKm:      epsKm,
		minSamples: minSamples,
		rng:        rand.New(rand.NewSource(1)),
	}
}

// planarPoint is a place projected into a local planar frame, in kilometres.
type planarPoint struct {
	x, y float64
}

// projectToKm maps lat/lon onto a planar approximation centred on
// (centerLat, centerLon). One latitude degree is ~111 km; longitude degrees
// shrink with cos(latitude). Valid for regions up to a few hundred kilometres
// across; not valid near the poles or across the antimeridian.
func projectToKm(lat, lon, centerLat, centerLon float64) planarPoint {
	latKmPerDegree := 111.0
	lonKmPerDegree := 111.0 * math.Cos(centerLat*math.Pi/180)
	return planarPoint{
		x: (lon - centerLon) * lonKmPerDegree,
		y: (lat - centerLat) * latKmPerDegree,
	}
}

func (p planarPoint) distanceTo(q planarPoint) float64 {
	dx := p.x - q.x
	dy := p.y - q.y
	return math.Sqrt(dx*dx + dy*dy)
}

// ClusterPlaces partitions places into spatially coherent groups of at most
// MaxClusterSize members. A density pass (DBSCAN) finds coherent groups and
// leaves outliers as singletons; oversized groups are then recursively bisected
// and all leaves are renumbered with fresh sequential ids.
func (s *ServiceImpl) ClusterPlaces(ctx context.Context, places []types.Place) ([]types.Cluster, error) {
	_, span := otel.Tracer("ClusterService").Start(ctx, "ClusterPlaces")
	defer span.End()

	if len(places) == 0 {
		return []types.Cluster{}, nil
	}

	for _, p := range places {
		if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) ||
			math.IsInf(p.Latitude, 0) || math.IsInf(p.Longitude, 0) {
			return nil, fmt.Errorf("place %s has non-finite coordinates", p.ID)
		}
	}

	points := projectAll(places)
	labels := s.densityCluster(points)

	// Group dense clusters together; every noise point becomes its own
	// singleton group.
	groups := make(map[int][]int)
	noiseID := -1
	for i, label := range labels {
		if label == labelNoise {
			groups[noiseID] = []int{i}
			noiseID--
			continue
		}
		groups[label] = append(groups[label], i)
	}

	var leaves [][]int
	for _, members := range groups {
		leaves = append(leaves, s.splitOversized(members, places)...)
	}

	clusters := make([]types.Cluster, 0, len(leaves))
	for id, members := range leaves {
		placeIDs := make([]string, len(members))
		for i, idx := range members {
			placeIDs[i] = places[idx].ID
		}
		clusters = append(clusters, types.Cluster{ID: id, PlaceIDs: placeIDs})
	}

	span.SetAttributes(
		attribute.Int("places.count", len(places)),
		attribute.Int("clusters.count", len(clusters)),
	)
	s.logger.Info("Clustered places",
		slog.Int("places", len(places)),
		slog.Int("clusters", len(clusters)),
	)
	return clusters, nil
}

func projectAll(places []types.Place) []planarPoint {
	var centerLat, centerLon float64
	for _, p := range places {
		centerLat += p.Latitude
		centerLon += p.Longitude
	}
	centerLat /= float64(len(places))
	centerLon /= float64(len(places))

	points := make([]planarPoint, len(places))
	for i, p := range places {
		points[i] = projectToKm(p.Latitude, p.Longitude, centerLat, centerLon)
	}
	return points
}

// densityCluster runs DBSCAN over the planar points. A point is a core point
// when its eps-neighbourhood (itself included) holds at least minSamples
// points. Returns a label per point: a non-negative cluster id or labelNoise.
func (s *ServiceImpl) densityCluster(points []planarPoint) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = labelUnclassified
	}

	nextCluster := 0
	for i := range points {
		if labels[i] != labelUnclassified {
			continue
		}
		neighbors := s.regionQuery(points, i)
		if len(neighbors) < s.minSamples {
			labels[i] = labelNoise
			continue
		}

		labels[i] = nextCluster
		queue := append([]int(nil), neighbors...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]
			if labels[j] == labelNoise {
				labels[j] = nextCluster // border point
			}
			if labels[j] != labelUnclassified {
				continue
			}
			labels[j] = nextCluster
			jNeighbors := s.regionQuery(points, j)
			if len(jNeighbors) >= s.minSamples {
				queue = append(queue, jNeighbors...)
			}
		}
		nextCluster++
	}
	return labels
}

func (s *ServiceImpl) regionQuery(points []planarPoint, i int) []int {
	var neighbors []int
	for j := range points {
		if points[i].distanceTo(points[j]) <= s.epsKm {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// splitOversized recursively bisects a member set until every leaf holds at
// most MaxClusterSize members. Pure: returns leaf index sets, no accumulator
// threading.
func (s *ServiceImpl) splitOversized(members []int, places []types.Place) [][]int {
	if len(members) <= MaxClusterSize {
		return [][]int{members}
	}

	left, right := s.bisect(members, places)
	return append(s.splitOversized(left, places), s.splitOversized(right, places)...)
}

// bisect partitions members into two non-empty halves with a 2-means pass over
// a locally re-centred projection. Several random initialisations reduce seed
// sensitivity. If every attempt degenerates to an empty side, an even
// index-based split guarantees both halves are non-empty and strictly smaller,
// so the recursion always terminates.
func (s *ServiceImpl) bisect(members []int, places []types.Place) ([]int, []int) {
	subset := make([]types.Place, len(members))
	for i, idx := range members {
		subset[i] = places[idx]
	}
	points := projectAll(subset)

	const initAttempts = 4
	var bestLeft, bestRight []int
	bestInertia := math.Inf(1)

	for attempt := 0; attempt < initAttempts; attempt++ {
		left, right, inertia := s.twoMeans(points)
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		if inertia < bestInertia {
			bestInertia = inertia
			bestLeft, bestRight = left, right
		}
	}

	if bestLeft == nil {
		mid := len(members) / 2
		return members[:mid], members[mid:]
	}

	toMembers := func(local []int) []int {
		out := make([]int, len(local))
		for i, idx := range local {
			out[i] = members[idx]
		}
		return out
	}
	return toMembers(bestLeft), toMembers(bestRight)
}

// twoMeans runs one k=2 Lloyd iteration loop and returns the two local index
// groups plus the final inertia.
func (s *ServiceImpl) twoMeans(points []planarPoint) (left, right []int, inertia float64) {
	n := len(points)
	ci := s.rng.Intn(n)
	cj := s.rng.Intn(n)
	for cj == ci {
		cj = s.rng.Intn(n)
	}
	centroids := [2]planarPoint{points[ci], points[cj]}
	assignment := make([]int, n)

	const maxIterations = 50
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, p := range points {
			c := 0
			if p.distanceTo(centroids[1]) < p.distanceTo(centroids[0]) {
				c = 1
			}
			if assignment[i] != c {
				assignment[i] = c
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		var sums [2]planarPoint
		var counts [2]int
		for i, p := range points {
			sums[assignment[i]].x += p.x
			sums[assignment[i]].y += p.y
			counts[assignment[i]]++
		}
		for c := 0; c < 2; c++ {
			if counts[c] > 0 {
				centroids[c] = planarPoint{x: sums[c].x / float64(counts[c]), y: sums[c].y / float64(counts[c])}
			}
		}
	}

	for i, p := range points {
		d := p.distanceTo(centroids[assignment[i]])
		inertia += d * d
		if assignment[i] == 0 {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right, inertia
}

package cluster

import (
	"log/slog"

	"github.com/capstone-2025-fall/trib-go/internal/types"
)

// FindMedoid returns the member of places minimising the mean travel time to
// all members (the zero self-distance shifts every row equally, so it does not
// affect the argmin). Ties break on first occurrence. Medoid selection is a
// routing-quality heuristic, not a correctness-critical step: a malformed
// matrix degrades to the first place instead of aborting the pipeline.
func (s *ServiceImpl) FindMedoid(places []types.Place, matrix types.DistanceMatrix) string {
	if len(places) == 0 {
		return ""
	}
	if len(places) == 1 {
		return places[0].ID
	}
	if !matrix.IsSquare(len(places)) {
		s.logger.Warn("Medoid selection degraded to first place: malformed matrix",
			slog.Int("places", len(places)),
			slog.Int("matrix_rows", len(matrix)),
		)
		return places[0].ID
	}

	bestIdx := 0
	bestAvg := rowMean(matrix[0])
	for i := 1; i < len(places); i++ {
		if avg := rowMean(matrix[i]); avg < bestAvg {
			bestAvg = avg
			bestIdx = i
		}
	}

	s.logger.Debug("Found medoid",
		slog.String("place_id", places[bestIdx].ID),
		slog.Float64("avg_minutes", bestAvg),
	)
	return places[bestIdx].ID
}

func rowMean(row []float64) float64 {
	var sum float64
	for _, v := range row {
		sum += v
	}
	return sum / float64(len(row))
}

// FindClusterMedoids picks one medoid per cluster. Clusters whose matrix failed
// upstream degrade to their first member instead of failing the whole batch.
func (s *ServiceImpl) FindClusterMedoids(clusters []types.Cluster, places []types.Place, matrices map[int]types.DistanceMatrix) map[int]string {
	placeByID := make(map[string]types.Place, len(places))
	for _, p := range places {
		placeByID[p.ID] = p
	}

	medoids := make(map[int]string, len(clusters))
	for _, c := range clusters {
		matrix, ok := matrices[c.ID]
		if !ok {
			s.logger.Warn("Medoid selection degraded to first place: missing matrix",
				slog.Int("cluster_id", c.ID),
			)
			medoids[c.ID] = c.PlaceIDs[0]
			continue
		}

		clusterPlaces := make([]types.Place, 0, len(c.PlaceIDs))
		for _, id := range c.PlaceIDs {
			if p, found := placeByID[id]; found {
				clusterPlaces = append(clusterPlaces, p)
			}
		}
		if len(clusterPlaces) != len(c.PlaceIDs) {
			medoids[c.ID] = c.PlaceIDs[0]
			continue
		}
		medoids[c.ID] = s.FindMedoid(clusterPlaces, matrix)
	}
	return medoids
}

package routes

import (
	"math"

	"github.com/capstone-2025-fall/trib-go/internal/types"
)

// fallbackSpeedKmh is the assumed average speed when the routes API is
// unavailable and travel times have to be estimated from geometry alone.
const fallbackSpeedKmh = 30.0

// estimatePairMinutes approximates the travel time between two places: planar
// great-circle distance in kilometres divided by the assumed average speed,
// converted to minutes.
func estimatePairMinutes(from, to types.Place) float64 {
	latDiffKm := (from.Latitude - to.Latitude) * 111.0
	lonDiffKm := (from.Longitude - to.Longitude) * 111.0 * math.Cos(from.Latitude*math.Pi/180)
	distanceKm := math.Sqrt(latDiffKm*latDiffKm + lonDiffKm*lonDiffKm)
	return distanceKm / fallbackSpeedKmh * 60.0
}

// FallbackMatrix builds a square geometric-estimate matrix over places.
// Self-distances remain 0.
func (s *ServiceImpl) FallbackMatrix(places []types.Place) types.DistanceMatrix {
	n := len(places)
	matrix := types.NewZeroMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			matrix[i][j] = estimatePairMinutes(places[i], places[j])
		}
	}
	s.logger.Warn("Using fallback distance matrix", "places", n)
	return matrix
}

package types

// Cluster is a geographically coherent group of place ids. Ids assigned by the
// clustering service are sequential and non-negative after splitting; only the
// intermediate density pass uses negative ids for noise singletons.
type Cluster struct {
	ID       int      `json:"cluster_id"`
	PlaceIDs []string `json:"places"`
}

// DistanceMatrix holds travel times in minutes. Row/column order matches the
// order of the place list the matrix was computed for. Diagonal entries of a
// square matrix are always 0.
type DistanceMatrix [][]float64

// NewZeroMatrix allocates a rows x cols matrix of zeros.
func NewZeroMatrix(rows, cols int) DistanceMatrix {
	m := make(DistanceMatrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// IsSquare reports whether the matrix is square with the given dimension and
// every row fully populated. Used to guard medoid selection against malformed
// input.
func (m DistanceMatrix) IsSquare(n int) bool {
	if len(m) != n {
		return false
	}
	for _, row := range m {
		if len(row) != n {
			return false
		}
	}
	return true
}

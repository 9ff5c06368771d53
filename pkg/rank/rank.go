package rank

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SpatialRank computes the spatial rank of the query point relative to the reference
// cloud: the average over reference rows of the unit vector pointing from the row to the
// query.  Both the query and the reference must already be in the same whitened
// coordinate system.  Rows coincident with the query are excluded from both the sum and
// the averaging denominator, so a query point equal to every reference row yields the
// zero vector.  The Euclidean norm of the result is always <= 1.
func SpatialRank(query []float64, reference mat.Matrix) []float64 {
	n, p := reference.Dims()
	r := make([]float64, p)
	d := make([]float64, p)
	eff := 0
	for j := 0; j < n; j++ {
		ss := 0.0
		for k := 0; k < p; k++ {
			d[k] = query[k] - reference.At(j, k)
			ss += d[k] * d[k]
		}
		// coincident reference point, excluded by convention
		if ss == 0 {
			continue
		}
		norm := math.Sqrt(ss)
		for k := 0; k < p; k++ {
			r[k] += d[k] / norm
		}
		eff++
	}
	if eff == 0 {
		return r
	}
	for k := range r {
		r[k] /= float64(eff)
	}
	return r
}

// SquaredNorm returns the squared Euclidean norm of a rank vector
func SquaredNorm(v []float64) float64 {
	ss := 0.0
	for _, x := range v {
		ss += x * x
	}
	return ss
}

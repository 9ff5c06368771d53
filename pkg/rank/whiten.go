// Package rank implements the whitening and spatial rank estimators behind a
// nonparametric multivariate control chart.  Both estimators are pure functions: the
// sequencing and state that tie them into a chart live in pkg/chart.
package rank

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// maxCondition is the largest acceptable condition number for the sample covariance
// before it is treated as singular to working precision
const maxCondition = 1e12

// Whiten computes a whitening transform from the sample covariance of the reference
// observations (rows of reference) and applies it to every row.  The transform A is the
// inverse of the upper Cholesky factor of the covariance, so A·Aᵀ = Σ⁻¹ and rows
// right-multiplied by A have approximately identity covariance.  The reference must have
// at least p+1 rows for a p-dimensional sample.  Returns SingularCovariance when the
// covariance cannot be inverted to acceptable tolerance.
func Whiten(reference mat.Matrix) (*mat.TriDense, *mat.Dense, error) {
	n, p := reference.Dims()
	if n <= p {
		return nil, nil, fmt.Errorf("whitening requires more observations than dimensions: have %d observations of dimension %d", n, p)
	}

	sigma := mat.NewSymDense(p, nil)
	stat.CovarianceMatrix(sigma, reference, nil)

	var chol mat.Cholesky
	if ok := chol.Factorize(sigma); !ok {
		return nil, nil, SingularCovariance{}
	}
	if cond := chol.Cond(); cond > maxCondition {
		return nil, nil, SingularCovariance{Cond: cond}
	}

	var u mat.TriDense
	chol.UTo(&u)
	transform := mat.NewTriDense(p, mat.Upper, nil)
	if err := transform.InverseTri(&u); err != nil {
		return nil, nil, SingularCovariance{Cond: chol.Cond()}
	}

	whitened := mat.NewDense(n, p, nil)
	whitened.Mul(reference, transform)
	return transform, whitened, nil
}

// WhitenPoint applies a whitening transform produced by Whiten to a single observation,
// placing it in the same coordinate system as the whitened reference
func WhitenPoint(transform *mat.TriDense, point []float64) []float64 {
	p := len(point)
	x := mat.NewVecDense(p, point)
	var y mat.VecDense
	y.MulVec(transform.T(), x)
	out := make([]float64, p)
	for i := 0; i < p; i++ {
		out[i] = y.AtVec(i)
	}
	return out
}

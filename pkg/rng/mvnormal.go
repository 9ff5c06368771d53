package rng

import (
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"
)

var _ VectorRNG = &MVNormalRNG{}

// MVNormalRNG generates multivariate normal vectors with the given mean and covariance
// using the Cholesky factor of the covariance applied to iid standard normal draws
type MVNormalRNG struct {
	mean []float64
	u    *mat.TriDense
	r    *rand.Rand
}

// NewMVNormalRNG returns a generator seeded from the wall clock.  Use
// NewMVNormalRNGSeeded when reproducible draws are needed.
func NewMVNormalRNG(mean []float64, cov *mat.SymDense) (*MVNormalRNG, error) {
	return NewMVNormalRNGSeeded(mean, cov, time.Now().UnixNano())
}

// NewMVNormalRNGSeeded returns a generator with a fixed seed for reproducible draws
func NewMVNormalRNGSeeded(mean []float64, cov *mat.SymDense, seed int64) (*MVNormalRNG, error) {
	if cov.SymmetricDim() != len(mean) {
		return nil, fmt.Errorf("mean has dimension %d, covariance is %dx%d", len(mean), cov.SymmetricDim(), cov.SymmetricDim())
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return nil, fmt.Errorf("covariance matrix is not positive definite")
	}
	var u mat.TriDense
	chol.UTo(&u)

	m := make([]float64, len(mean))
	copy(m, mean)
	return &MVNormalRNG{
		mean: m,
		u:    &u,
		r:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Rand draws one vector, x = mean + Uᵀz where z is iid standard normal and UᵀU is the
// target covariance
func (r *MVNormalRNG) Rand() []float64 {
	p := len(r.mean)
	z := make([]float64, p)
	for i := range z {
		z[i] = r.r.NormFloat64()
	}
	x := make([]float64, p)
	for i := 0; i < p; i++ {
		s := 0.0
		for j := 0; j <= i; j++ {
			s += r.u.At(j, i) * z[j]
		}
		x[i] = r.mean[i] + s
	}
	return x
}

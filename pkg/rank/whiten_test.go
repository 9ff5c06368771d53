package rank

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// correlated test data with a fixed seed
func testSample(n, p int, seed int64) *mat.Dense {
	r := rand.New(rand.NewSource(seed))
	x := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		base := r.NormFloat64()
		for j := 0; j < p; j++ {
			x.Set(i, j, 0.5*base+r.NormFloat64()*float64(j+1))
		}
	}
	return x
}

func TestWhitenIdentityCovariance(t *testing.T) {
	x := testSample(200, 3, 42)
	transform, whitened, err := Whiten(x)
	require.NoError(t, err)

	n, p := whitened.Dims()
	assert.Equal(t, 200, n)
	assert.Equal(t, 3, p)

	cov := mat.NewSymDense(p, nil)
	stat.CovarianceMatrix(cov, whitened, nil)
	eye := mat.NewSymDense(p, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	assert.True(t, mat.EqualApprox(cov, eye, 1e-8), "whitened sample should have identity covariance")

	// transform·transformᵀ should equal the inverse covariance of the input
	sigma := mat.NewSymDense(p, nil)
	stat.CovarianceMatrix(sigma, x, nil)
	var sigmaInv mat.Dense
	require.NoError(t, sigmaInv.Inverse(sigma))
	var aat mat.Dense
	aat.Mul(transform, transform.T())
	assert.True(t, mat.EqualApprox(&aat, &sigmaInv, 1e-6))
}

func TestWhitenSingular(t *testing.T) {
	// collinear rows: second coordinate is exactly twice the first
	n := 50
	x := mat.NewDense(n, 2, nil)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < n; i++ {
		v := r.NormFloat64()
		x.Set(i, 0, v)
		x.Set(i, 1, 2*v)
	}
	_, _, err := Whiten(x)
	require.Error(t, err)
	assert.IsType(t, SingularCovariance{}, err)
}

func TestWhitenTooFewObservations(t *testing.T) {
	x := testSample(3, 3, 1)
	_, _, err := Whiten(x)
	assert.Error(t, err)
}

func TestWhitenBoundarySize(t *testing.T) {
	// n = p+1 is the smallest reference for which the covariance can be non-singular
	x := testSample(4, 3, 99)
	_, whitened, err := Whiten(x)
	require.NoError(t, err)
	n, p := whitened.Dims()
	assert.Equal(t, 4, n)
	assert.Equal(t, 3, p)
}

func TestWhitenPoint(t *testing.T) {
	x := testSample(100, 3, 5)
	transform, whitened, err := Whiten(x)
	require.NoError(t, err)

	// whitening a reference row individually must agree with the whitened matrix row
	row := mat.Row(nil, 10, x)
	point := WhitenPoint(transform, row)
	for j := 0; j < 3; j++ {
		assert.InDelta(t, whitened.At(10, j), point[j], 1e-12)
	}
}

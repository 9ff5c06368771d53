package rank

import (
	"fmt"
)

// SingularCovariance is an error type indicating that the sample covariance of the
// reference set could not be inverted within numerical tolerance, typically because the
// data is collinear or contains too few distinct points.  The monitoring statistic is
// undefined without an invertible covariance, so this is never recovered silently.
type SingularCovariance struct {
	// Cond is the estimated condition number of the covariance matrix, or 0 when the
	// factorization failed before an estimate was available
	Cond float64
}

func (e SingularCovariance) Error() string {
	if e.Cond == 0 {
		return "sample covariance matrix is not positive definite"
	}
	return fmt.Sprintf("sample covariance matrix is singular to working precision (condition number %.3g)", e.Cond)
}

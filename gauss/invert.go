package gauss

import (
	"errors"
	"fmt"
	"math"

	"github.com/Lepecin/dlm-dissertation/utils"
	"gonum.org/v1/gonum/mat"
)

// invert returns the inverse of the symmetrised matrix m through its
// Cholesky factor. With jitter > 0 a failed factorisation is retried once
// with jitter added to the diagonal.
func invert(m mat.Matrix, jitter float64) (*mat.SymDense, error) {
	sym := utils.Symmetrize(m)
	if sym.IsEmpty() {
		return nil, fmt.Errorf("%w: empty covariance", ErrDimensionMismatch)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		if jitter <= 0 {
			return nil, ErrSingularCovariance
		}
		n := sym.SymmetricDim()
		for i := 0; i < n; i++ {
			sym.SetSym(i, i, sym.At(i, i)+jitter)
		}
		if ok := chol.Factorize(sym); !ok {
			return nil, fmt.Errorf("%w: even with jitter %g", ErrSingularCovariance, jitter)
		}
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		// Ill-conditioned but finite results are kept.
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 0) {
			return nil, fmt.Errorf("%w: %v", ErrSingularCovariance, err)
		}
	}
	return &inv, nil
}

package score

import (
	"fmt"
	"math"

	"github.com/Lepecin/dlm-dissertation/gauss"
	"github.com/Lepecin/dlm-dissertation/obs"
	"github.com/Lepecin/dlm-dissertation/series"
	"github.com/Lepecin/dlm-dissertation/utils"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// LogLikelihood sums the gaussian log-density of every observed column under
// the evolved space of its time, over times 1..s.
func LogLikelihood(spaces *series.Container[*gauss.State], observations obs.Sequence, s int) (float64, error) {
	if len(observations) < s {
		return 0, fmt.Errorf("%d observations for %d steps", len(observations), s)
	}
	ll := 0.0
	for time := 1; time <= s; time++ {
		space, err := spaces.At(time)
		if err != nil {
			return 0, err
		}
		contrib, err := logDensity(space, observations[time-1])
		if err != nil {
			return 0, fmt.Errorf("time %d: %w", time, err)
		}
		ll += contrib
	}
	return ll, nil
}

func logDensity(space *gauss.State, y mat.Matrix) (float64, error) {
	n, k := space.Dims()
	if yr, yc := y.Dims(); yr != n || yc != k {
		return 0, fmt.Errorf("%w: observation is %dx%d, space is %dx%d", gauss.ErrDimensionMismatch, yr, yc, n, k)
	}
	// Cholesky factor U of the covariance, cov = U^T U.
	u, ok := lapack64.Potrf(utils.Symmetrize(space.Covariance()).RawSymmetric())
	if !ok {
		return 0, gauss.ErrSingularCovariance
	}
	logdet := 0.0
	for i := 0; i < n; i++ {
		logdet += 2 * math.Log(u.Data[i*u.Stride+i])
	}

	ll := 0.0
	z := blas64.Vector{N: n, Inc: 1, Data: make([]float64, n)}
	for j := 0; j < k; j++ {
		// z = U^-T (y - mean)
		for i := 0; i < n; i++ {
			z.Data[i] = y.At(i, j) - space.Mean().At(i, j)
		}
		blas64.Trsv(blas.Trans, u, z)
		ll -= 0.5 * (float64(n)*math.Log(2*math.Pi) + logdet + blas64.Dot(z, z))
	}
	return ll, nil
}

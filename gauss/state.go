package gauss

import (
	"fmt"
	"sync"

	"github.com/Lepecin/dlm-dissertation/utils"
	"gonum.org/v1/gonum/mat"
)

// State is a matrix normal density with a (N by K) mean whose K columns
// share one (N by N) row covariance. A State never changes after
// construction, which is what makes the memoised precision valid.
type State struct {
	mean       *mat.Dense
	covariance *mat.Dense
	jitter     float64

	once      sync.Once
	precision *mat.SymDense
	err       error
}

// NewState copies mean and covariance into a new State.
func NewState(mean, covariance mat.Matrix) (*State, error) {
	n, k := utils.Dims(mean)
	r, c := utils.Dims(covariance)
	if n == 0 || k == 0 {
		return nil, fmt.Errorf("%w: empty mean", ErrDimensionMismatch)
	}
	if r != c || r != n {
		return nil, fmt.Errorf("%w: mean is %dx%d but covariance is %dx%d",
			ErrDimensionMismatch, n, k, r, c)
	}
	return newState(mat.DenseCopyOf(mean), mat.DenseCopyOf(covariance), 0), nil
}

func newState(mean, covariance *mat.Dense, jitter float64) *State {
	return &State{
		mean:       mean,
		covariance: covariance,
		jitter:     jitter,
	}
}

// Mean returns the (N by K) mean. It must not be modified.
func (s *State) Mean() mat.Matrix {
	return s.mean
}

// Covariance returns the (N by N) row covariance. It must not be modified.
func (s *State) Covariance() mat.Matrix {
	return s.covariance
}

// Dims returns the number of rows N and subjects K of the mean.
func (s *State) Dims() (n, k int) {
	return s.mean.Dims()
}

// Precision returns the inverse of the symmetrised covariance. It is
// computed on first use and cached for the lifetime of the State.
func (s *State) Precision() (*mat.SymDense, error) {
	s.once.Do(func() {
		s.precision, s.err = invert(s.covariance, s.jitter)
	})
	return s.precision, s.err
}

// Transform returns the density of m·X for X distributed as s.
func (s *State) Transform(m mat.Matrix) (*State, error) {
	_, c := m.Dims()
	if n, _ := s.Dims(); c != n {
		return nil, fmt.Errorf("%w: cannot apply %d columns to %d rows", ErrDimensionMismatch, c, n)
	}
	var mean, covariance mat.Dense
	mean.Mul(m, s.mean)
	covariance.Product(m, s.covariance, m.T())
	return newState(&mean, &covariance, s.jitter), nil
}

// RowCovarianceEstimate returns the single step expectation-maximisation
// estimate of the row covariance given the reference density truth and its
// noise model truthError.
//
// truth.covariance + (shape/K) (truth.mean - s.mean) scale^-1 (truth.mean - s.mean)^T
func (s *State) RowCovarianceEstimate(truth *State, truthError *InvWishart) (*mat.Dense, error) {
	n, k := s.Dims()
	if tn, tk := truth.Dims(); tn != n || tk != k || truthError.Dim() != k {
		return nil, fmt.Errorf("%w: estimate reference does not match state", ErrDimensionMismatch)
	}
	invScale, err := truthError.ScaleInverse()
	if err != nil {
		return nil, err
	}
	var diff, estimate mat.Dense
	diff.Sub(truth.mean, s.mean)
	estimate.Product(&diff, invScale, diff.T())
	estimate.Scale(float64(truthError.Shape())/float64(k), &estimate)
	estimate.Add(truth.covariance, &estimate)
	return &estimate, nil
}

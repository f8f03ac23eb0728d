package gauss

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Joint composes a State with a Transition. Every evolution, observation,
// filtering, smoothing and forecasting step of a dynamic linear model is an
// application of Compose or Derive.
//
// Jitter selects the inversion policy. Zero is strict: a covariance whose
// symmetrised form has no Cholesky factor fails with ErrSingularCovariance.
// A positive value retries such a factorisation once with Jitter added to
// the diagonal.
type Joint struct {
	Jitter float64
}

// Derive returns the marginal of the transition output
//
//	mean       = B + A M
//	covariance = V + A S A^T
func (j Joint) Derive(s *State, t *Transition) (*State, error) {
	n, k := s.Dims()
	m, in := t.Dims()
	if in != n {
		return nil, fmt.Errorf("%w: transition takes %d inputs, state has %d rows", ErrDimensionMismatch, in, n)
	}
	if _, bk := t.bias.Dims(); bk != k {
		return nil, fmt.Errorf("%w: transition bias has %d columns, state has %d", ErrDimensionMismatch, bk, k)
	}
	mean := mat.NewDense(m, k, nil)
	mean.Mul(t.weights, s.mean)
	mean.Add(t.bias, mean)

	covariance := mat.NewDense(m, m, nil)
	covariance.Product(t.weights, s.covariance, t.weights.T())
	covariance.Add(t.covariance, covariance)

	return newState(mean, covariance, j.Jitter), nil
}

// Compose returns the marginal of the transition output together with the
// reversed conditional of the input given the output
//
//	W = S A^T inv(derived.covariance)
//	b = M - W derived.mean
//	U = S - W derived.covariance W^T
func (j Joint) Compose(s *State, t *Transition) (*State, *Transition, error) {
	derived, err := j.Derive(s, t)
	if err != nil {
		return nil, nil, err
	}
	precision, err := derived.Precision()
	if err != nil {
		return nil, nil, err
	}
	n, k := s.Dims()
	m, _ := t.Dims()

	weights := mat.NewDense(n, m, nil)
	weights.Product(s.covariance, t.weights.T(), precision)

	bias := mat.NewDense(n, k, nil)
	bias.Mul(weights, derived.mean)
	bias.Sub(s.mean, bias)

	covariance := mat.NewDense(n, n, nil)
	covariance.Product(weights, derived.covariance, weights.T())
	covariance.Sub(s.covariance, covariance)

	return derived, &Transition{bias: bias, weights: weights, covariance: covariance}, nil
}

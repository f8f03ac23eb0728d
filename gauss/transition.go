package gauss

import (
	"fmt"

	"github.com/Lepecin/dlm-dissertation/utils"
	"gonum.org/v1/gonum/mat"
)

// Transition is the linear gaussian conditional
//
//	output = bias + weights·input + noise,  noise ~ N(0, covariance)
//
// with a (M by K) bias, (M by N) weights and (M by M) covariance. It
// describes evolution and observation equations and, once reversed by
// Joint.Compose, smoothing and filtering updates.
type Transition struct {
	bias       *mat.Dense
	weights    *mat.Dense
	covariance *mat.Dense
}

// NewTransition copies bias, weights and covariance into a new Transition.
func NewTransition(bias, weights, covariance mat.Matrix) (*Transition, error) {
	m, k := utils.Dims(bias)
	wm, n := utils.Dims(weights)
	cm, cn := utils.Dims(covariance)
	if m == 0 || k == 0 || n == 0 {
		return nil, fmt.Errorf("%w: empty transition", ErrDimensionMismatch)
	}
	if wm != m || cm != m || cn != m {
		return nil, fmt.Errorf("%w: bias %dx%d, weights %dx%d, covariance %dx%d",
			ErrDimensionMismatch, m, k, wm, n, cm, cn)
	}
	return &Transition{
		bias:       mat.DenseCopyOf(bias),
		weights:    mat.DenseCopyOf(weights),
		covariance: mat.DenseCopyOf(covariance),
	}, nil
}

// NewLinear returns a Transition with zero bias for K subjects.
func NewLinear(weights, covariance mat.Matrix, subjects int) (*Transition, error) {
	m, _ := utils.Dims(weights)
	return NewTransition(utils.NewDense(m, subjects), weights, covariance)
}

func (t *Transition) Bias() mat.Matrix {
	return t.bias
}

func (t *Transition) Weights() mat.Matrix {
	return t.weights
}

func (t *Transition) Covariance() mat.Matrix {
	return t.covariance
}

// Dims returns the output and input dimensions of the transition.
func (t *Transition) Dims() (out, in int) {
	return t.weights.Dims()
}

// Observe conditions the transition on a realised input y and returns the
// density of the output: N(bias + weights·y, covariance).
func (t *Transition) Observe(y mat.Matrix) (*State, error) {
	m, k := t.bias.Dims()
	_, n := t.weights.Dims()
	if yr, yc := utils.Dims(y); yr != n || yc != k {
		return nil, fmt.Errorf("%w: observation is %dx%d, transition expects %dx%d",
			ErrDimensionMismatch, yr, yc, n, k)
	}
	mean := mat.NewDense(m, k, nil)
	mean.Mul(t.weights, y)
	mean.Add(t.bias, mean)
	return newState(mean, mat.DenseCopyOf(t.covariance), 0), nil
}

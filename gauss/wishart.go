package gauss

import (
	"fmt"
	"sync"

	"github.com/Lepecin/dlm-dissertation/utils"
	"gonum.org/v1/gonum/mat"
)

// InvWishart is an inverse Wishart density over an unknown (K by K) noise
// covariance, given by its scale matrix and degrees of freedom.
type InvWishart struct {
	scale *mat.Dense
	shape int

	once     sync.Once
	invScale *mat.SymDense
	err      error
}

// NewInvWishart copies scale into a new InvWishart.
func NewInvWishart(scale mat.Matrix, shape int) (*InvWishart, error) {
	r, c := utils.Dims(scale)
	if r == 0 || r != c {
		return nil, fmt.Errorf("%w: scale is %dx%d", ErrDimensionMismatch, r, c)
	}
	if shape < 0 {
		return nil, fmt.Errorf("negative degrees of freedom %d", shape)
	}
	return &InvWishart{scale: mat.DenseCopyOf(scale), shape: shape}, nil
}

func (w *InvWishart) Scale() mat.Matrix {
	return w.scale
}

func (w *InvWishart) Shape() int {
	return w.shape
}

// Dim returns K.
func (w *InvWishart) Dim() int {
	r, _ := w.scale.Dims()
	return r
}

// ScaleInverse returns the cached inverse of the symmetrised scale.
func (w *InvWishart) ScaleInverse() (*mat.SymDense, error) {
	w.once.Do(func() {
		w.invScale, w.err = invert(w.scale, 0)
	})
	return w.invScale, w.err
}

// ScaleEstimate returns the single step expectation-maximisation estimate
// (w.shape / truth.shape) truth.scale.
func (w *InvWishart) ScaleEstimate(truth *InvWishart) (*mat.Dense, error) {
	if truth.shape == 0 {
		return nil, fmt.Errorf("reference has zero degrees of freedom")
	}
	if truth.Dim() != w.Dim() {
		return nil, fmt.Errorf("%w: scale %d against %d", ErrDimensionMismatch, w.Dim(), truth.Dim())
	}
	var estimate mat.Dense
	estimate.Scale(float64(w.shape)/float64(truth.shape), truth.scale)
	return &estimate, nil
}

// UpdateError is the conjugate update of prior after observing y, where
// space is the evolved observation density at the time of y.
//
//	residual = space.mean - y
//	scale'   = prior.scale + residual^T inv(space.covariance) residual
//	shape'   = prior.shape + rows(space.mean)
func UpdateError(space *State, prior *InvWishart, y mat.Matrix) (*InvWishart, error) {
	p, k := space.Dims()
	if yr, yc := utils.Dims(y); yr != p || yc != k {
		return nil, fmt.Errorf("%w: observation is %dx%d, space is %dx%d", ErrDimensionMismatch, yr, yc, p, k)
	}
	if prior.Dim() != k {
		return nil, fmt.Errorf("%w: error model is %dx%d for %d subjects", ErrDimensionMismatch, prior.Dim(), prior.Dim(), k)
	}
	precision, err := space.Precision()
	if err != nil {
		return nil, err
	}
	var residual, scale mat.Dense
	residual.Sub(space.mean, y)
	scale.Product(residual.T(), precision, &residual)
	scale.Add(prior.scale, &scale)
	return &InvWishart{scale: &scale, shape: prior.shape + p}, nil
}

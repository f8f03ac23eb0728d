package component

import (
	"fmt"
	"math"

	"github.com/Lepecin/dlm-dissertation/utils"
	"gonum.org/v1/gonum/mat"
)

// BasicObservation selects the first coordinate.
func BasicObservation(dimension int) *mat.VecDense {
	out := utils.NewVecDense(dimension, nil)
	if dimension > 0 {
		out.SetVec(0, 1)
	}
	return out
}

// HarmonicsObservation repeats [1, 0] count times.
func HarmonicsObservation(count int) *mat.VecDense {
	parts := make([]*mat.VecDense, count)
	for i := range parts {
		parts[i] = BasicObservation(2)
	}
	return utils.ConcatVecs(2*count, parts...)
}

// FormFreeTransition is factor times the identity with its columns rotated
// left by one, so that entry (i, i-1 mod n) is factor.
func FormFreeTransition(dimension int, factor float64) *mat.Dense {
	out := utils.NewDense(dimension, dimension)
	for i := 0; i < dimension; i++ {
		out.Set(i, (i-1+dimension)%dimension, factor)
	}
	return out
}

// PolynomialTransition is factor times the identity plus ones on the
// super-diagonal.
func PolynomialTransition(dimension int, factor float64) *mat.Dense {
	out := utils.NewDense(dimension, dimension)
	for i := 0; i < dimension; i++ {
		out.Set(i, i, factor)
		if i+1 < dimension {
			out.Set(i, i+1, 1)
		}
	}
	return out
}

// HarmonicTransition is the rotation by 2π/period scaled by factor. It
// panics if period is not positive.
func HarmonicTransition(period int, factor float64) *mat.Dense {
	if period <= 0 {
		panic(fmt.Sprintf("component: harmonic period %d is not positive", period))
	}
	sin, cos := math.Sincos(2 * math.Pi / float64(period))
	return mat.NewDense(2, 2, []float64{
		factor * cos, factor * sin,
		-factor * sin, factor * cos,
	})
}

// HarmonicsTransition is the block diagonal of count harmonic rotations for
// periods start, start+1, ..., start+count-1.
func HarmonicsTransition(start, count int, factor float64) *mat.Dense {
	blocks := make([]mat.Matrix, count)
	for i := range blocks {
		blocks[i] = HarmonicTransition(start+i, factor)
	}
	return utils.BlockDiag(2*count, blocks...)
}

// AutoregressionTransition is the unit form-free transition with its first
// row replaced by coefficients.
func AutoregressionTransition(coefficients []float64) *mat.Dense {
	out := FormFreeTransition(len(coefficients), 1)
	if len(coefficients) > 0 {
		out.SetRow(0, coefficients)
	}
	return out
}

// Package obs holds observation sequences and reads them from tabular input.
package obs

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrMissingValue = errors.New("missing observation value")
	ErrNoColumns    = errors.New("no observation columns")
)

// Sequence is a run of (P by K) observations, one per time step. Entry i is
// the observation consumed when producing time i+1.
type Sequence []*mat.Dense

// FromRows returns a sequence of (len(row) by 1) observations.
func FromRows(rows [][]float64) Sequence {
	out := make(Sequence, len(rows))
	for i, row := range rows {
		out[i] = mat.NewDense(len(row), 1, append([]float64(nil), row...))
	}
	return out
}

// FromValues returns a sequence of scalar observations.
func FromValues(values []float64) Sequence {
	out := make(Sequence, len(values))
	for i, v := range values {
		out[i] = mat.NewDense(1, 1, []float64{v})
	}
	return out
}

// Dims returns the shape shared by the observations.
func (s Sequence) Dims() (r, c int) {
	if len(s) == 0 {
		return 0, 0
	}
	return s[0].Dims()
}

// Missing returns the indices of the observations holding a NaN.
func (s Sequence) Missing() []int {
	var out []int
	for i, o := range s {
		if hasNaN(o) {
			out = append(out, i)
		}
	}
	return out
}

// Validate checks that the first n observations share one shape and hold
// no missing values.
func (s Sequence) Validate(n int) error {
	if n > len(s) {
		n = len(s)
	}
	r, c := s.Dims()
	for i := 0; i < n; i++ {
		if or, oc := s[i].Dims(); or != r || oc != c {
			return fmt.Errorf("observation %d is %dx%d, expected %dx%d", i, or, oc, r, c)
		}
		if hasNaN(s[i]) {
			return fmt.Errorf("%w: observation %d", ErrMissingValue, i)
		}
	}
	return nil
}

// Column returns element (feature, subject) of every observation.
func (s Sequence) Column(feature, subject int) []float64 {
	out := make([]float64, len(s))
	for i, o := range s {
		out[i] = o.At(feature, subject)
	}
	return out
}

func hasNaN(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.IsNaN(m.At(i, j)) {
				return true
			}
		}
	}
	return false
}

// Package score extracts value series with Student-t confidence bands from
// a fitted model and scores its one-step predictions.
package score

import (
	"fmt"
	"math"

	"github.com/Lepecin/dlm-dissertation/gauss"
	"github.com/Lepecin/dlm-dissertation/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Band is a value series with a symmetric confidence interval.
type Band struct {
	Times     []int
	Values    []float64
	HalfWidth []float64
}

// Lower returns Values - HalfWidth.
func (b *Band) Lower() []float64 {
	out := make([]float64, len(b.Values))
	return floats.SubTo(out, b.Values, b.HalfWidth)
}

// Upper returns Values + HalfWidth.
func (b *Band) Upper() []float64 {
	out := make([]float64, len(b.Values))
	return floats.AddTo(out, b.Values, b.HalfWidth)
}

// TQuantile returns the 1 - alpha/2 quantile of a standard Student-t with
// shape degrees of freedom.
func TQuantile(shape int, alpha float64) float64 {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(shape)}
	return t.Quantile(1 - alpha/2)
}

func halfWidth(space *gauss.State, w *gauss.InvWishart, feature, subject int, alpha float64) (float64, error) {
	n, k := space.Dims()
	if feature < 0 || feature >= n || subject < 0 || subject >= k {
		return 0, fmt.Errorf("%w: element (%d, %d) of %dx%d", gauss.ErrDimensionMismatch, feature, subject, n, k)
	}
	if w.Shape() <= 0 {
		return 0, fmt.Errorf("error model has %d degrees of freedom", w.Shape())
	}
	variance := space.Covariance().At(feature, feature) * w.Scale().At(subject, subject) / float64(w.Shape())
	return TQuantile(w.Shape(), alpha) * math.Sqrt(variance), nil
}

func band(times []int, spaces *series.Container[*gauss.State], wishart func(int) (*gauss.InvWishart, error),
	feature, subject int, alpha float64) (*Band, error) {
	b := &Band{
		Times:     times,
		Values:    make([]float64, len(times)),
		HalfWidth: make([]float64, len(times)),
	}
	for i, time := range times {
		space, err := spaces.At(time)
		if err != nil {
			return nil, err
		}
		w, err := wishart(time)
		if err != nil {
			return nil, err
		}
		if b.HalfWidth[i], err = halfWidth(space, w, feature, subject, alpha); err != nil {
			return nil, fmt.Errorf("time %d: %w", time, err)
		}
		b.Values[i] = space.Mean().At(feature, subject)
	}
	return b, nil
}

func span(from, to int) []int {
	out := make([]int, 0, to-from)
	for time := from; time < to; time++ {
		out = append(out, time)
	}
	return out
}

// Observed returns the band of spaces over the observed times 1..s, each
// scaled by the error model of the same time.
func Observed(spaces *series.Container[*gauss.State], wisharts *series.Container[*gauss.InvWishart],
	s, feature, subject int, alpha float64) (*Band, error) {
	return band(span(1, s+1), spaces, wisharts.At, feature, subject, alpha)
}

// Predicted returns the band of spaces over the forecast times s..s+p,
// scaled by the last error model of the observed period.
func Predicted(spaces *series.Container[*gauss.State], wisharts *series.Container[*gauss.InvWishart],
	s, p, feature, subject int, alpha float64) (*Band, error) {
	last, err := wisharts.At(s)
	if err != nil {
		return nil, err
	}
	fixed := func(int) (*gauss.InvWishart, error) { return last, nil }
	return band(span(s, s+p+1), spaces, fixed, feature, subject, alpha)
}

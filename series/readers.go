package series

import (
	"fmt"

	"github.com/Lepecin/dlm-dissertation/gauss"
)

func entries[T any](c *Container[T], from, to int, at func(T) (float64, error)) ([]float64, error) {
	values, err := c.Range(from, to)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if out[i], err = at(v); err != nil {
			return nil, fmt.Errorf("time %d: %w", from+i, err)
		}
	}
	return out, nil
}

func element(r, c int, rows, cols int, get func(int, int) float64) (float64, error) {
	if r < 0 || r >= rows || c < 0 || c >= cols {
		return 0, fmt.Errorf("%w: element (%d, %d) of %dx%d", gauss.ErrDimensionMismatch, r, c, rows, cols)
	}
	return get(r, c), nil
}

// Means returns the mean of one feature for one subject over [from, to).
func Means(c *Container[*gauss.State], from, to, feature, subject int) ([]float64, error) {
	return entries(c, from, to, func(s *gauss.State) (float64, error) {
		n, k := s.Dims()
		return element(feature, subject, n, k, s.Mean().At)
	})
}

// Covariances returns element (i, j) of the row covariance over [from, to).
func Covariances(c *Container[*gauss.State], from, to, i, j int) ([]float64, error) {
	return entries(c, from, to, func(s *gauss.State) (float64, error) {
		n, _ := s.Dims()
		return element(i, j, n, n, s.Covariance().At)
	})
}

// Scales returns element (i, j) of the inverse Wishart scale over [from, to).
func Scales(c *Container[*gauss.InvWishart], from, to, i, j int) ([]float64, error) {
	return entries(c, from, to, func(w *gauss.InvWishart) (float64, error) {
		return element(i, j, w.Dim(), w.Dim(), w.Scale().At)
	})
}

// Shapes returns the degrees of freedom over [from, to).
func Shapes(c *Container[*gauss.InvWishart], from, to int) ([]float64, error) {
	return entries(c, from, to, func(w *gauss.InvWishart) (float64, error) {
		return float64(w.Shape()), nil
	})
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCleanIndices(t *testing.T) {
	cleaned := CleanIndices([]int{3, 1, 1, 5, -2, 9}, 0, 5)
	require.Equal(t, []int{1, 3}, cleaned)
	require.Equal(t, cleaned, CleanIndices(cleaned, 0, 5))
	require.Empty(t, CleanIndices(nil, 0, 5))
}

func TestSliceSeries(t *testing.T) {
	series := []float64{1, 2, 3}
	require.Equal(t, []float64{0, 0, 1, 2, 3}, SliceSeries(series, -2, 5))
	require.Equal(t, []float64{2, 3, 0}, SliceSeries(series, 1, 3))
	require.Equal(t, []float64{0, 0}, SliceSeries(series, 7, 2))
	require.Equal(t, []float64{1, 2, 3}, SliceSeries(series, 0, 3))
}

func TestBlockDiag(t *testing.T) {
	a := mat.NewDense(1, 1, []float64{2})
	b := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	out := BlockDiag(3, a, &mat.Dense{}, b)
	want := mat.NewDense(3, 3, []float64{
		2, 0, 0,
		0, 1, 2,
		0, 3, 4,
	})
	require.True(t, mat.Equal(want, out))
}

func TestConcatVecs(t *testing.T) {
	out := ConcatVecs(3, mat.NewVecDense(1, []float64{1}), &mat.VecDense{}, mat.NewVecDense(2, []float64{2, 3}))
	require.Equal(t, []float64{1, 2, 3}, out.RawVector().Data)
}

func TestEmptyShapes(t *testing.T) {
	require.True(t, Eye(0).IsEmpty())
	r, c := Dims(NewDense(0, 4))
	require.Equal(t, 0, r)
	require.Equal(t, 0, c)
	require.True(t, NewVecDense(0, nil).IsEmpty())
}

func TestSymmetrize(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 4, 3})
	sym := Symmetrize(m)
	require.Equal(t, 3.0, sym.At(0, 1))
	require.Equal(t, 3.0, sym.At(1, 0))
	require.Equal(t, 1.0, sym.At(0, 0))
}

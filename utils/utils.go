package utils

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// NewDense returns a zero-filled (r by c) matrix. Unlike mat.NewDense it
// accepts zero dimensions and returns an empty matrix for them.
func NewDense(r, c int) *mat.Dense {
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(r, c, nil)
}

// NewVecDense is the vector counterpart of NewDense.
func NewVecDense(n int, data []float64) *mat.VecDense {
	if n == 0 {
		return &mat.VecDense{}
	}
	return mat.NewVecDense(n, data)
}

// Dims reports the dimensions of m, treating nil as empty.
func Dims(m mat.Matrix) (r, c int) {
	if m == nil {
		return 0, 0
	}
	if e, ok := m.(interface{ IsEmpty() bool }); ok && e.IsEmpty() {
		return 0, 0
	}
	return m.Dims()
}

// Concatenate multiple vectors.
func ConcatVecs(size int, vecs ...*mat.VecDense) *mat.VecDense {
	out := NewVecDense(size, nil)
	offset := 0
	var slice *mat.VecDense
	for _, vec := range vecs {
		if vec.IsEmpty() {
			continue
		}
		slice = out.SliceVec(offset, size).(*mat.VecDense)
		slice.CopyVec(vec)
		offset += vec.Len()
	}
	return out
}

// Make a block diagonal matrix.
func BlockDiag(size int, mats ...mat.Matrix) *mat.Dense {
	out := NewDense(size, size)
	offset := 0
	for _, matrix := range mats {
		r, _ := Dims(matrix)
		SetBlock(out, offset, offset, matrix)
		offset += r
	}
	return out
}

// SetBlock copies src into dst with its top left corner at (i, j).
// Empty sources are ignored.
func SetBlock(dst *mat.Dense, i, j int, src mat.Matrix) {
	r, c := Dims(src)
	for row := 0; row < r; row++ {
		for col := 0; col < c; col++ {
			dst.Set(i+row, j+col, src.At(row, col))
		}
	}
}

// Identity Matrix.
func Eye(n int) *mat.Dense {
	out := NewDense(n, n)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}
	return out
}

// Symmetrize returns (m + m^T) / 2.
func Symmetrize(m mat.Matrix) *mat.SymDense {
	n, _ := Dims(m)
	if n == 0 {
		return &mat.SymDense{}
	}
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, (m.At(i, j)+m.At(j, i))/2)
		}
	}
	return out
}

// CleanIndices deduplicates and sorts indices, keeping those in [start, end).
func CleanIndices(indices []int, start, end int) []int {
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, len(indices))
	for _, index := range indices {
		if index < start || index >= end {
			continue
		}
		if _, ok := seen[index]; ok {
			continue
		}
		seen[index] = struct{}{}
		out = append(out, index)
	}
	sort.Ints(out)
	return out
}

// SliceSeries returns amount consecutive values of data starting at start.
// Positions falling outside data are zero.
func SliceSeries(data []float64, start, amount int) []float64 {
	out := make([]float64, amount)
	for i := range out {
		if index := start + i; index >= 0 && index < len(data) {
			out[i] = data[index]
		}
	}
	return out
}

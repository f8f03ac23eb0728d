package score

import (
	"math"
	"testing"

	"github.com/Lepecin/dlm-dissertation/gauss"
	"github.com/Lepecin/dlm-dissertation/obs"
	"github.com/Lepecin/dlm-dissertation/series"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestTQuantile(t *testing.T) {
	// Two-sided 95% quantile with ten degrees of freedom.
	require.InDelta(t, 2.228138851986, TQuantile(10, 0.05), 1e-6)
	require.InDelta(t, 1.959963984540, TQuantile(1_000_000, 0.05), 1e-4)
}

func fixtures(t *testing.T) (*series.Container[*gauss.State], *series.Container[*gauss.InvWishart]) {
	spaces := series.New[*gauss.State](1, 5)
	wisharts := series.New[*gauss.InvWishart](0, 4)
	for time := 0; time < 5; time++ {
		if time > 0 {
			s, err := gauss.NewState(
				mat.NewDense(1, 1, []float64{float64(time)}),
				mat.NewDense(1, 1, []float64{float64(time)}))
			require.NoError(t, err)
			require.NoError(t, spaces.Set(time, s))
		}
		if time < 4 {
			w, err := gauss.NewInvWishart(mat.NewDense(1, 1, []float64{2 * float64(time+1)}), time+1)
			require.NoError(t, err)
			require.NoError(t, wisharts.Set(time, w))
		}
	}
	return spaces, wisharts
}

func TestObserved(t *testing.T) {
	spaces, wisharts := fixtures(t)
	b, err := Observed(spaces, wisharts, 3, 0, 0, 0.05)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, b.Times)
	require.Equal(t, []float64{1, 2, 3}, b.Values)
	for i, time := range b.Times {
		// scale / shape is 2 at every time.
		want := TQuantile(time+1, 0.05) * math.Sqrt(float64(time)*2)
		require.InDelta(t, want, b.HalfWidth[i], 1e-12)
		require.InDelta(t, b.Values[i]-want, b.Lower()[i], 1e-12)
		require.InDelta(t, b.Values[i]+want, b.Upper()[i], 1e-12)
	}

	_, err = Observed(spaces, wisharts, 3, 1, 0, 0.05)
	require.ErrorIs(t, err, gauss.ErrDimensionMismatch)
	_, err = Observed(spaces, wisharts, 4, 0, 0, 0.05)
	require.ErrorIs(t, err, series.ErrRangeViolation)
}

func TestPredicted(t *testing.T) {
	spaces, wisharts := fixtures(t)
	b, err := Predicted(spaces, wisharts, 3, 1, 0, 0, 0.1)
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, b.Times)
	q := TQuantile(4, 0.1)
	require.InDelta(t, q*math.Sqrt(3*8.0/4), b.HalfWidth[0], 1e-12)
	require.InDelta(t, q*math.Sqrt(4*8.0/4), b.HalfWidth[1], 1e-12)
}

func TestLogLikelihood(t *testing.T) {
	spaces, _ := fixtures(t)
	ys := obs.FromValues([]float64{0.5, 2.5, 3, 10})
	got, err := LogLikelihood(spaces, ys, 4)
	require.NoError(t, err)

	want := 0.0
	for time := 1; time <= 4; time++ {
		n := distuv.Normal{Mu: float64(time), Sigma: math.Sqrt(float64(time))}
		want += n.LogProb(ys[time-1].At(0, 0))
	}
	require.InDelta(t, want, got, 1e-9)

	_, err = LogLikelihood(spaces, ys[:2], 3)
	require.Error(t, err)
}

func TestLogLikelihoodMultivariate(t *testing.T) {
	cov := mat.NewDense(2, 2, []float64{2, 0.5, 0.5, 1})
	space, err := gauss.NewState(mat.NewDense(2, 2, []float64{0, 1, 0, -1}), cov)
	require.NoError(t, err)
	y := mat.NewDense(2, 2, []float64{1, 1, -1, 0})

	got, err := logDensity(space, y)
	require.NoError(t, err)

	precision, err := space.Precision()
	require.NoError(t, err)
	var chol mat.Cholesky
	require.True(t, chol.Factorize(mat.NewSymDense(2, []float64{2, 0.5, 0.5, 1})))
	want := 0.0
	for j := 0; j < 2; j++ {
		r := mat.NewVecDense(2, []float64{y.At(0, j) - space.Mean().At(0, j), y.At(1, j) - space.Mean().At(1, j)})
		want -= 0.5 * (2*math.Log(2*math.Pi) + chol.LogDet() + mat.Inner(r, precision, r))
	}
	require.InDelta(t, want, got, 1e-9)
}

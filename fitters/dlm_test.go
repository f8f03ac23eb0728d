package fitters

import (
	"math"
	"testing"

	"github.com/Lepecin/dlm-dissertation/gauss"
	"github.com/Lepecin/dlm-dissertation/obs"
	"github.com/Lepecin/dlm-dissertation/series"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"
)

func scalar(v float64) *mat.Dense {
	return mat.NewDense(1, 1, []float64{v})
}

func linear(t *testing.T, weights, cov *mat.Dense) *gauss.Transition {
	t.Helper()
	tr, err := gauss.NewLinear(weights, cov, 1)
	require.NoError(t, err)
	return tr
}

func localLevel(t *testing.T, observed, horizon int) *Prime {
	t.Helper()
	state, err := gauss.NewState(scalar(0), scalar(10))
	require.NoError(t, err)
	w, err := gauss.NewInvWishart(scalar(1), 1)
	require.NoError(t, err)
	return &Prime{
		Observed:     observed,
		Horizon:      horizon,
		Observations: obs.FromValues([]float64{1.0, 1.2, 0.9, 1.1, 1.05}),
		State:        state,
		Error:        w,
		Evolver:      Constant{linear(t, scalar(1), scalar(0.1))},
		Observer:     Constant{linear(t, scalar(1), scalar(1.0))},
	}
}

func TestLocalLevel(t *testing.T) {
	d, err := NewDLM(localLevel(t, 5, 3), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.NoError(t, d.Forward())

	m := d.Memory()
	states, err := m.FilteredStates.All()
	require.NoError(t, err)
	require.Len(t, states, 6)
	for i := 1; i < len(states); i++ {
		require.LessOrEqual(t, states[i].Covariance().At(0, 0), states[i-1].Covariance().At(0, 0))
	}
	last := states[5].Mean().At(0, 0)
	require.GreaterOrEqual(t, last, 0.9)
	require.LessOrEqual(t, last, 1.2)
	require.InDelta(t, 1.0361597888939649, last, 1e-9)
	require.InDelta(t, 0.29700022288862327, states[5].Covariance().At(0, 0), 1e-9)

	w, err := m.Wisharts.At(5)
	require.NoError(t, err)
	require.Equal(t, 6, w.Shape())
}

func TestBeyondUncertaintyGrows(t *testing.T) {
	d, err := NewDLM(localLevel(t, 5, 4))
	require.NoError(t, err)
	require.NoError(t, d.Fit())

	m := d.Memory()
	predicted, err := m.PredictedSpaces.All()
	require.NoError(t, err)
	require.Len(t, predicted, 5)
	filtered, err := m.FilteredSpaces.At(5)
	require.NoError(t, err)
	require.Same(t, filtered, predicted[0])
	for i := 1; i < len(predicted); i++ {
		require.Greater(t, predicted[i].Covariance().At(0, 0), predicted[i-1].Covariance().At(0, 0))
		require.InDelta(t, predicted[0].Mean().At(0, 0), predicted[i].Mean().At(0, 0), 1e-12)
	}

	smoothed, err := m.SmoothedStates.All()
	require.NoError(t, err)
	require.Len(t, smoothed, 6)
	spaces, err := m.SmoothedSpaces.All()
	require.NoError(t, err)
	require.Len(t, spaces, 5)
	for time := 1; time < 5; time++ {
		f, err := m.FilteredStates.At(time)
		require.NoError(t, err)
		require.LessOrEqual(t, smoothed[time].Covariance().At(0, 0), f.Covariance().At(0, 0))
	}
}

// A noiseless trend observed through the identity is reproduced exactly by
// the filter, and smoothing leaves it unchanged.
func TestZeroNoiseRoundTrip(t *testing.T) {
	const steps = 6
	evolver := mat.NewDense(2, 2, []float64{1, 1, 0, 1})
	zero := mat.NewDense(2, 2, nil)
	eye := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

	truth := make([]*mat.Dense, steps+1)
	truth[0] = mat.NewDense(2, 1, []float64{0, 1})
	for i := 1; i <= steps; i++ {
		truth[i] = mat.NewDense(2, 1, nil)
		truth[i].Mul(evolver, truth[i-1])
	}

	// Prior covariance chosen so that the first evolved covariance is the identity.
	state, err := gauss.NewState(
		mat.NewDense(2, 1, []float64{5, -3}),
		mat.NewDense(2, 2, []float64{2, -1, -1, 1}))
	require.NoError(t, err)
	w, err := gauss.NewInvWishart(scalar(1), 1)
	require.NoError(t, err)
	prime := &Prime{
		Observed:     steps,
		Observations: obs.Sequence(truth[1:]),
		State:        state,
		Error:        w,
		Evolver:      Constant{linear(t, evolver, zero)},
		Observer:     Constant{linear(t, eye, zero)},
	}

	strict, err := NewDLM(prime)
	require.NoError(t, err)
	require.ErrorIs(t, strict.Forward(), gauss.ErrSingularCovariance)

	d, err := NewDLM(prime, WithJitter(1e-9))
	require.NoError(t, err)
	require.NoError(t, d.Fit())

	m := d.Memory()
	for time := 1; time <= steps; time++ {
		filtered, err := m.FilteredStates.At(time)
		require.NoError(t, err)
		require.True(t, mat.EqualApprox(filtered.Mean(), truth[time], 1e-9), "filtered at %d", time)

		smoothed, err := m.SmoothedStates.At(time)
		require.NoError(t, err)
		require.True(t, mat.EqualApprox(smoothed.Mean(), filtered.Mean(), 1e-9), "smoothed at %d", time)
		require.True(t, mat.EqualApprox(smoothed.Covariance(), filtered.Covariance(), 1e-9))
	}
	first, err := m.SmoothedStates.At(0)
	require.NoError(t, err)
	require.True(t, mat.EqualApprox(first.Mean(), truth[0], 1e-9))
}

func TestOutOfOrder(t *testing.T) {
	d, err := NewDLM(localLevel(t, 5, 2))
	require.NoError(t, err)
	require.ErrorIs(t, d.Backward(), ErrOutOfOrder)
	require.ErrorIs(t, d.Beyond(), ErrOutOfOrder)

	require.NoError(t, d.Forward())
	require.ErrorIs(t, d.Forward(), ErrOutOfOrder)
	require.NoError(t, d.Beyond())
	require.ErrorIs(t, d.Beyond(), ErrOutOfOrder)
	require.NoError(t, d.Backward())
	require.ErrorIs(t, d.Backward(), ErrOutOfOrder)
}

func TestPrimeValidation(t *testing.T) {
	prime := localLevel(t, 6, 0)
	_, err := NewDLM(prime)
	require.ErrorIs(t, err, ErrShortSequence)

	prime = localLevel(t, 5, 0)
	prime.Observations = obs.FromValues([]float64{1, 2, math.NaN(), 4, 5})
	_, err = NewDLM(prime)
	require.ErrorIs(t, err, obs.ErrMissingValue)

	// Missing values past the observed period are never read.
	prime.Observed = 2
	_, err = NewDLM(prime)
	require.NoError(t, err)
}

func TestTimeVaryingSchedule(t *testing.T) {
	prime := localLevel(t, 3, 2)
	evolvers := series.New[*gauss.Transition](1, 6)
	for time := 1; time < 6; time++ {
		require.NoError(t, evolvers.Set(time, linear(t, scalar(1), scalar(0.1*float64(time)))))
	}
	prime.Evolver = evolvers

	d, err := NewDLM(prime)
	require.NoError(t, err)
	require.NoError(t, d.Fit())

	// Each forecast step adds the noise scheduled for its time.
	m := d.Memory()
	for time := 4; time < 6; time++ {
		prev, err := m.PredictedStates.At(time - 1)
		require.NoError(t, err)
		next, err := m.PredictedStates.At(time)
		require.NoError(t, err)
		require.InDelta(t, 0.1*float64(time), next.Covariance().At(0, 0)-prev.Covariance().At(0, 0), 1e-12)
	}

	// A schedule that runs out fails the pass that needs it.
	short := localLevel(t, 3, 3)
	truncated := series.New[*gauss.Transition](1, 4)
	for time := 1; time < 4; time++ {
		require.NoError(t, truncated.Set(time, linear(t, scalar(1), scalar(0.1))))
	}
	short.Evolver = truncated
	d, err = NewDLM(short)
	require.NoError(t, err)
	require.NoError(t, d.Forward())
	require.ErrorIs(t, d.Beyond(), series.ErrRangeViolation)
}

func TestFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prime := localLevel(t, 2, 0)
	prime.Evolver = Constant{linear(t, scalar(1), scalar(0))}
	zeroState, err := gauss.NewState(scalar(0), scalar(0))
	require.NoError(t, err)
	prime.State = zeroState

	d, err := NewDLM(prime, WithLogger(zap.New(core)))
	require.NoError(t, err)
	err = d.Forward()
	require.ErrorIs(t, err, gauss.ErrSingularCovariance)

	// The failed forward pass leaves nothing to smooth or forecast from.
	require.ErrorIs(t, d.Backward(), ErrOutOfOrder)
	require.ErrorIs(t, d.Beyond(), ErrOutOfOrder)
	require.ErrorIs(t, d.Forward(), ErrOutOfOrder)

	failures := logs.FilterMessage("pass failed").All()
	require.Len(t, failures, 1)
	require.Equal(t, "forward", failures[0].ContextMap()["pass"])
	require.Equal(t, int64(0), failures[0].ContextMap()["time"])
}

func TestMemoryBounds(t *testing.T) {
	m := NewMemory(4, 3)
	for _, tc := range []struct {
		name       string
		start, end int
	}{
		{"filtered states", m.FilteredStates.Start(), m.FilteredStates.End()},
		{"predicted states", m.PredictedStates.Start(), m.PredictedStates.End()},
		{"smoothers", m.Smoothers.Start(), m.Smoothers.End()},
		{"wisharts", m.Wisharts.Start(), m.Wisharts.End()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Less(t, tc.start, tc.end)
		})
	}
	require.Equal(t, 5, m.FilteredStates.Len())
	require.Equal(t, 4, m.EvolvedStates.Len())
	require.Equal(t, 4, m.PredictedStates.Len())
	require.Equal(t, 4, m.PredictedSpaces.Start())
	require.Equal(t, 8, m.PredictedSpaces.End())
}

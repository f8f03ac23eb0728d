package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Lepecin/dlm-dissertation/fitters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const inline = `
name: level
horizon: 3
data:
  values: [1.0, 1.2, 0.9, 1.1, 1.05]
components:
  - kind: formfree
    dimension: 1
noise:
  evolution: 0.1
  observation: 1
prior:
  variance: 10
`

func TestParseAndBuild(t *testing.T) {
	cfg, err := Parse([]byte(inline))
	require.NoError(t, err)
	assert.Equal(t, "level", cfg.Name)
	assert.Equal(t, 1, cfg.Error.Shape)

	prime, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, 5, prime.Observed)
	assert.Equal(t, 3, prime.Horizon)

	evolver, err := prime.Evolver.At(1)
	require.NoError(t, err)
	assert.True(t, mat.Equal(evolver.Weights(), mat.NewDense(1, 1, []float64{1})))
	assert.InDelta(t, 0.1, evolver.Covariance().At(0, 0), 1e-12)

	d, err := fitters.NewDLM(prime, cfg.Options()...)
	require.NoError(t, err)
	require.NoError(t, d.Fit())
	last, err := d.Memory().FilteredStates.At(5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0361597888939649, last.Mean().At(0, 0), 1e-9)
}

const seasonal = `
horizon: 4
jitter: 1e-9
data:
  path: data.csv
  columns: [visits, sales]
components:
  - kind: polynomial
    dimension: 2
  - kind: harmonics
    start: 4
    count: 1
    factor: 0.9
  - kind: regression
    start: 0
    dimension: 2
    series: [3, 4]
  - kind: autoregression
    coefficients: [0.5, 0.25]
couplings:
  - source: 0
    target: -1
    indices: [0, 1]
  - source: 1
    target: -1
    indices: [1]
  - source: 2
    target: 0
    indices: [1]
noise:
  observation_matrix: [[1, 0.2], [0.2, 1]]
`

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"),
		[]byte("sales,visits\n1,10\n2,11\n3,12\n4,13\n5,15\n"), 0o644))
	path := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seasonal), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Options(), 1)

	prime, err := cfg.Build()
	require.NoError(t, err)
	rows, cols := prime.Observations.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 1, cols)
	assert.Equal(t, 10.0, prime.Observations[0].At(0, 0))

	observer, err := prime.Observer.At(1)
	require.NoError(t, err)
	out, in := observer.Dims()
	assert.Equal(t, 2, out)
	assert.Equal(t, 8, in)
	// Components without an observation coupling contribute nothing.
	assert.Equal(t, []float64{1, 0, 1, 0, 0, 0, 0, 0}, mat.Row(nil, 1, observer.Weights()))
	assert.Equal(t, []float64{1, 0, 0, 0, 0, 0, 0, 0}, mat.Row(nil, 0, observer.Weights()))
	assert.InDelta(t, 0.2, observer.Covariance().At(0, 1), 1e-12)

	evolver, err := prime.Evolver.At(1)
	require.NoError(t, err)
	// Regression observation grafted into the second row of the trend block.
	assert.Equal(t, []float64{0, 1, 0, 0, 3, 4, 0, 0}, mat.Row(nil, 1, evolver.Weights()))

	d, err := fitters.NewDLM(prime, cfg.Options()...)
	require.NoError(t, err)
	require.NoError(t, d.Fit())
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		yaml string
	}{
		{"no data", "components: [{kind: formfree, dimension: 1}]"},
		{"both data", "data: {path: a.csv, values: [1]}\ncomponents: [{kind: formfree, dimension: 1}]"},
		{"no components", "data: {values: [1]}"},
		{"unknown kind", "data: {values: [1]}\ncomponents: [{kind: spline}]"},
		{"bad dimension", "data: {values: [1]}\ncomponents: [{kind: polynomial}]"},
		{"self coupling", "data: {values: [1]}\ncomponents: [{kind: formfree, dimension: 1}]\ncouplings: [{source: 0, target: 0}]"},
		{"unknown source", "data: {values: [1]}\ncomponents: [{kind: formfree, dimension: 1}]\ncouplings: [{source: 2, target: -1}]"},
		{"unknown field", "data: {values: [1]}\ncomponents: [{kind: formfree, dimension: 1}]\nsmoothing: true"},
		{"negative horizon", "horizon: -1\ndata: {values: [1]}\ncomponents: [{kind: formfree, dimension: 1}]"},
		{"zero shape", "data: {values: [1]}\ncomponents: [{kind: formfree, dimension: 1}]\nerror: {shape: 0}"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	cfg, err := Parse([]byte("observed: 3\ndata: {values: [1, 2]}\ncomponents: [{kind: formfree, dimension: 1}]"))
	require.NoError(t, err)
	_, err = cfg.Build()
	require.ErrorIs(t, err, fitters.ErrShortSequence)

	cfg, err = Parse([]byte("data: {values: [1]}\ncomponents: [{kind: formfree, dimension: 2}]\nnoise: {evolution_matrix: [[1]]}"))
	require.NoError(t, err)
	_, err = cfg.Build()
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

package config

import (
	"fmt"
	"path/filepath"

	"github.com/Lepecin/dlm-dissertation/component"
	"github.com/Lepecin/dlm-dissertation/fitters"
	"github.com/Lepecin/dlm-dissertation/gauss"
	"github.com/Lepecin/dlm-dissertation/obs"
	"github.com/Lepecin/dlm-dissertation/utils"
	"gonum.org/v1/gonum/mat"
)

// Observations loads the configured data.
func (c *Config) Observations() (obs.Sequence, error) {
	if len(c.Data.Values) > 0 {
		return obs.FromValues(c.Data.Values), nil
	}
	path := c.Data.Path
	if !filepath.IsAbs(path) && c.dir != "" {
		path = filepath.Join(c.dir, path)
	}
	return obs.ReadCSVFile(path, c.Data.Columns)
}

// Compiler returns a compiler loaded with the configured components and
// couplings for rows observed series.
func (c *Config) Compiler(rows int) (*component.Compiler, error) {
	compiler := component.NewCompiler(rows)
	for _, cc := range c.Components {
		switch cc.Kind {
		case KindFormFree:
			compiler.Add(component.NewFormFree(cc.Dimension, cc.factor()))
		case KindPolynomial:
			compiler.Add(component.NewPolynomial(cc.Dimension, cc.factor()))
		case KindHarmonics:
			c, err := component.NewHarmonics(cc.Start, cc.Count, cc.factor())
			if err != nil {
				return nil, err
			}
			compiler.Add(c)
		case KindRegression:
			compiler.Add(component.NewRegression(cc.Start, cc.Dimension, cc.Series))
		case KindAutoregression:
			compiler.Add(component.NewAutoregression(cc.Coefficients))
		default:
			return nil, invalid("unknown kind %q", cc.Kind)
		}
	}
	observed := false
	for _, coupling := range c.Couplings {
		if err := compiler.SetCoupling(coupling.Target, coupling.Source, coupling.Indices); err != nil {
			return nil, err
		}
		observed = observed || coupling.Target == component.Observed
	}
	if !observed {
		all := make([]int, rows)
		for i := range all {
			all[i] = i
		}
		for y := range c.Components {
			if err := compiler.SetCoupling(component.Observed, y, all); err != nil {
				return nil, err
			}
		}
	}
	return compiler, nil
}

func noise(scale float64, full [][]float64, n int) (*mat.Dense, error) {
	if len(full) == 0 {
		out := utils.Eye(n)
		out.Scale(scale, out)
		return out, nil
	}
	if len(full) != n {
		return nil, invalid("noise matrix has %d rows, expected %d", len(full), n)
	}
	out := mat.NewDense(n, n, nil)
	for i, row := range full {
		if len(row) != n {
			return nil, invalid("noise matrix row %d has %d entries, expected %d", i, len(row), n)
		}
		out.SetRow(i, row)
	}
	return out, nil
}

// Build loads the data, compiles the model and returns the run input.
func (c *Config) Build() (*fitters.Prime, error) {
	observations, err := c.Observations()
	if err != nil {
		return nil, err
	}
	rows, _ := observations.Dims()
	if rows == 0 {
		return nil, invalid("no observations")
	}
	compiler, err := c.Compiler(rows)
	if err != nil {
		return nil, err
	}
	transition, observation, err := compiler.Compile()
	if err != nil {
		return nil, err
	}
	d := compiler.Dimension()

	evolutionNoise, err := noise(c.Noise.Evolution, c.Noise.EvolutionMatrix, d)
	if err != nil {
		return nil, err
	}
	observationNoise, err := noise(c.Noise.Observation, c.Noise.ObservationMatrix, rows)
	if err != nil {
		return nil, err
	}
	evolver, err := gauss.NewLinear(transition, evolutionNoise, 1)
	if err != nil {
		return nil, err
	}
	observer, err := gauss.NewLinear(observation, observationNoise, 1)
	if err != nil {
		return nil, err
	}

	mean := mat.NewDense(d, 1, nil)
	for i := 0; i < d; i++ {
		mean.Set(i, 0, c.Prior.Mean)
	}
	covariance := utils.Eye(d)
	covariance.Scale(c.Prior.Variance, covariance)
	state, err := gauss.NewState(mean, covariance)
	if err != nil {
		return nil, err
	}
	w, err := gauss.NewInvWishart(mat.NewDense(1, 1, []float64{c.Error.Scale}), c.Error.Shape)
	if err != nil {
		return nil, err
	}

	observed := c.Observed
	if observed == 0 {
		observed = len(observations)
	}
	if observed > len(observations) {
		return nil, fmt.Errorf("%w: %d observations for %d steps", fitters.ErrShortSequence, len(observations), observed)
	}
	return &fitters.Prime{
		Observed:     observed,
		Horizon:      c.Horizon,
		Observations: observations,
		State:        state,
		Error:        w,
		Evolver:      fitters.Constant{Transition: evolver},
		Observer:     fitters.Constant{Transition: observer},
	}, nil
}

// Options returns the fitter options implied by the configuration.
func (c *Config) Options() []fitters.Option {
	var opts []fitters.Option
	if c.Jitter > 0 {
		opts = append(opts, fitters.WithJitter(c.Jitter))
	}
	return opts
}

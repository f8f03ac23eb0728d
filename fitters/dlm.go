// Package fitters runs the filtering, smoothing and forecasting passes of a
// dynamic linear model.
package fitters

import (
	"fmt"

	"github.com/Lepecin/dlm-dissertation/gauss"
	"go.uber.org/zap"
)

type Option func(*DLM)

// WithLogger sets the logger used for pass boundaries and failures.
func WithLogger(logger *zap.Logger) Option {
	return func(d *DLM) {
		d.logger = logger
	}
}

// WithJitter enables the regularised inversion policy of gauss.Joint.
func WithJitter(jitter float64) Option {
	return func(d *DLM) {
		d.joint.Jitter = jitter
	}
}

// DLM owns the memory of one run. Forward must complete before Backward or
// Beyond, and each pass runs at most once. A failed Forward is not retried.
type DLM struct {
	prime  *Prime
	memory *Memory
	joint  gauss.Joint
	logger *zap.Logger

	forward  bool
	filtered bool
	backward bool
	beyond   bool
}

func NewDLM(prime *Prime, opts ...Option) (*DLM, error) {
	if err := prime.Validate(); err != nil {
		return nil, err
	}
	d := &DLM{
		prime:  prime,
		memory: NewMemory(prime.Observed, prime.Horizon),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.joint.Jitter > 0 {
		d.logger.Info("regularised inversion enabled", zap.Float64("jitter", d.joint.Jitter))
	}
	return d, nil
}

func (d *DLM) Prime() *Prime {
	return d.prime
}

func (d *DLM) Memory() *Memory {
	return d.memory
}

type step struct {
	name string
	run  func(int) error
}

func (d *DLM) run(pass string, steps int, sequence ...step) error {
	d.logger.Debug("pass started", zap.String("pass", pass), zap.Int("steps", steps))
	for time := 0; time < steps; time++ {
		for _, s := range sequence {
			if err := wrapStep(s.name, time, s.run(time)); err != nil {
				d.logger.Error("pass failed", zap.String("pass", pass), zap.Int("time", time), zap.Error(err))
				return fmt.Errorf("%s pass: %w", pass, err)
			}
		}
	}
	d.logger.Debug("pass finished", zap.String("pass", pass))
	return nil
}

// Forward filters the observed period.
func (d *DLM) Forward() error {
	if d.forward {
		return fmt.Errorf("%w: forward pass already ran", ErrOutOfOrder)
	}
	d.forward = true
	m := d.memory
	if err := m.FilteredStates.Set(0, d.prime.State); err != nil {
		return err
	}
	if err := m.Wisharts.Set(0, d.prime.Error); err != nil {
		return err
	}
	if err := d.run("forward", d.prime.Observed,
		step{"evolve", d.evolve},
		step{"observe evolved", d.observeEvolved},
		step{"filter", d.filter},
		step{"observe filtered", d.observeFiltered},
	); err != nil {
		return err
	}
	d.filtered = true
	return nil
}

// Backward smooths the observed period from its end.
func (d *DLM) Backward() error {
	if !d.filtered {
		return fmt.Errorf("%w: backward pass needs a completed forward pass", ErrOutOfOrder)
	}
	if d.backward {
		return fmt.Errorf("%w: backward pass already ran", ErrOutOfOrder)
	}
	d.backward = true
	m := d.memory
	s := d.prime.Observed
	last, err := m.FilteredStates.At(s)
	if err != nil {
		return err
	}
	if err := m.SmoothedStates.Set(s, last); err != nil {
		return err
	}
	return d.run("backward", s,
		step{"observe smoothed", d.observeSmoothed},
		step{"smoothen", d.smoothen},
	)
}

// Beyond forecasts the horizon from the last filtered state.
func (d *DLM) Beyond() error {
	if !d.filtered {
		return fmt.Errorf("%w: beyond pass needs a completed forward pass", ErrOutOfOrder)
	}
	if d.beyond {
		return fmt.Errorf("%w: beyond pass already ran", ErrOutOfOrder)
	}
	d.beyond = true
	m := d.memory
	s := d.prime.Observed
	last, err := m.FilteredStates.At(s)
	if err != nil {
		return err
	}
	if err := m.PredictedStates.Set(s, last); err != nil {
		return err
	}
	if s > 0 {
		space, err := m.FilteredSpaces.At(s)
		if err != nil {
			return err
		}
		if err := m.PredictedSpaces.Set(s, space); err != nil {
			return err
		}
	} else if err := d.derive(m.PredictedStates, s, d.prime.Observer, s, m.PredictedSpaces, s); err != nil {
		return fmt.Errorf("beyond pass: %w", err)
	}
	return d.run("beyond", d.prime.Horizon,
		step{"predict", d.predict},
		step{"observe predicted", d.observePredicted},
	)
}

// Fit runs the forward, backward and beyond passes in order.
func (d *DLM) Fit() error {
	if err := d.Forward(); err != nil {
		return err
	}
	if err := d.Backward(); err != nil {
		return err
	}
	return d.Beyond()
}

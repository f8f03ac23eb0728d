package fitters

import (
	"fmt"

	"github.com/Lepecin/dlm-dissertation/gauss"
	"github.com/Lepecin/dlm-dissertation/series"
)

// Each step reads the entries produced by earlier steps and writes the
// entries for one time index.

func (d *DLM) derive(from *series.Container[*gauss.State], time int, schedule Schedule, at int,
	to *series.Container[*gauss.State], target int) error {
	state, err := from.At(time)
	if err != nil {
		return err
	}
	transition, err := schedule.At(at)
	if err != nil {
		return err
	}
	derived, err := d.joint.Derive(state, transition)
	if err != nil {
		return err
	}
	return to.Set(target, derived)
}

func (d *DLM) compose(from *series.Container[*gauss.State], time int, schedule Schedule,
	to *series.Container[*gauss.State], reversed *series.Container[*gauss.Transition], target int) error {
	state, err := from.At(time)
	if err != nil {
		return err
	}
	transition, err := schedule.At(target)
	if err != nil {
		return err
	}
	derived, back, err := d.joint.Compose(state, transition)
	if err != nil {
		return err
	}
	if err := to.Set(target, derived); err != nil {
		return err
	}
	return reversed.Set(target, back)
}

func (d *DLM) evolve(time int) error {
	m := d.memory
	return d.compose(m.FilteredStates, time, d.prime.Evolver, m.EvolvedStates, m.Smoothers, time+1)
}

func (d *DLM) observeEvolved(time int) error {
	m := d.memory
	return d.compose(m.EvolvedStates, time+1, d.prime.Observer, m.EvolvedSpaces, m.Filterers, time+1)
}

func (d *DLM) filter(time int) error {
	m := d.memory
	y := d.prime.Observations[time]
	filterer, err := m.Filterers.At(time + 1)
	if err != nil {
		return err
	}
	filtered, err := filterer.Observe(y)
	if err != nil {
		return err
	}
	space, err := m.EvolvedSpaces.At(time + 1)
	if err != nil {
		return err
	}
	prior, err := m.Wisharts.At(time)
	if err != nil {
		return err
	}
	posterior, err := gauss.UpdateError(space, prior, y)
	if err != nil {
		return err
	}
	if err := m.FilteredStates.Set(time+1, filtered); err != nil {
		return err
	}
	return m.Wisharts.Set(time+1, posterior)
}

func (d *DLM) observeFiltered(time int) error {
	m := d.memory
	return d.derive(m.FilteredStates, time+1, d.prime.Observer, time+1, m.FilteredSpaces, time+1)
}

func (d *DLM) observeSmoothed(time int) error {
	m := d.memory
	s := d.prime.Observed
	return d.derive(m.SmoothedStates, s-time, d.prime.Observer, s-time, m.SmoothedSpaces, s-time)
}

func (d *DLM) smoothen(time int) error {
	m := d.memory
	s := d.prime.Observed
	return d.derive(m.SmoothedStates, s-time, m.Smoothers, s-time, m.SmoothedStates, s-time-1)
}

func (d *DLM) predict(time int) error {
	m := d.memory
	s := d.prime.Observed
	return d.derive(m.PredictedStates, s+time, d.prime.Evolver, s+time+1, m.PredictedStates, s+time+1)
}

func (d *DLM) observePredicted(time int) error {
	m := d.memory
	s := d.prime.Observed
	return d.derive(m.PredictedStates, s+time+1, d.prime.Observer, s+time+1, m.PredictedSpaces, s+time+1)
}

func wrapStep(step string, time int, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s at %d: %w", step, time, err)
}

package fitters

import (
	"errors"
	"fmt"

	"github.com/Lepecin/dlm-dissertation/gauss"
	"github.com/Lepecin/dlm-dissertation/obs"
	"github.com/Lepecin/dlm-dissertation/series"
)

var ErrOutOfOrder = errors.New("pass run out of order")
var ErrShortSequence = errors.New("observation sequence shorter than observed period")

// Prime is the input of a run: S observed steps followed by a forecast
// horizon of P steps.
type Prime struct {
	Observed     int
	Horizon      int
	Observations obs.Sequence
	State        *gauss.State
	Error        *gauss.InvWishart
	Evolver      Schedule
	Observer     Schedule
}

// Validate checks the parts of the run that can be checked before it starts.
func (p *Prime) Validate() error {
	if p.Observed < 0 || p.Horizon < 0 {
		return fmt.Errorf("negative period: observed %d, horizon %d", p.Observed, p.Horizon)
	}
	if len(p.Observations) < p.Observed {
		return fmt.Errorf("%w: %d observations for %d steps", ErrShortSequence, len(p.Observations), p.Observed)
	}
	if p.State == nil || p.Error == nil || p.Evolver == nil || p.Observer == nil {
		return errors.New("incomplete prime: state, error, evolver and observer are required")
	}
	if _, k := p.State.Dims(); k != p.Error.Dim() {
		return fmt.Errorf("%w: state has %d subjects, error model %d", gauss.ErrDimensionMismatch, k, p.Error.Dim())
	}
	return p.Observations.Validate(p.Observed)
}

// Memory holds every quantity produced by a run. States live in latent
// space, spaces are their images through the observer.
type Memory struct {
	FilteredStates  *series.Container[*gauss.State]
	EvolvedStates   *series.Container[*gauss.State]
	SmoothedStates  *series.Container[*gauss.State]
	PredictedStates *series.Container[*gauss.State]

	FilteredSpaces  *series.Container[*gauss.State]
	EvolvedSpaces   *series.Container[*gauss.State]
	SmoothedSpaces  *series.Container[*gauss.State]
	PredictedSpaces *series.Container[*gauss.State]

	Smoothers *series.Container[*gauss.Transition]
	Filterers *series.Container[*gauss.Transition]
	Wisharts  *series.Container[*gauss.InvWishart]
}

// NewMemory returns empty containers sized for s observed steps and p
// forecast steps.
func NewMemory(s, p int) *Memory {
	return &Memory{
		FilteredStates:  series.New[*gauss.State](0, s+1),
		EvolvedStates:   series.New[*gauss.State](1, s+1),
		SmoothedStates:  series.New[*gauss.State](0, s+1),
		PredictedStates: series.New[*gauss.State](s, s+p+1),

		FilteredSpaces:  series.New[*gauss.State](1, s+1),
		EvolvedSpaces:   series.New[*gauss.State](1, s+1),
		SmoothedSpaces:  series.New[*gauss.State](1, s+1),
		PredictedSpaces: series.New[*gauss.State](s, s+p+1),

		Smoothers: series.New[*gauss.Transition](1, s+1),
		Filterers: series.New[*gauss.Transition](1, s+1),
		Wisharts:  series.New[*gauss.InvWishart](0, s+1),
	}
}

package fitters

import (
	"github.com/Lepecin/dlm-dissertation/gauss"
	"github.com/Lepecin/dlm-dissertation/series"
)

// Schedule yields the transition in force at a time step.
type Schedule interface {
	At(time int) (*gauss.Transition, error)
}

var (
	_ Schedule = Constant{}
	_ Schedule = (*series.Container[*gauss.Transition])(nil)
)

// Constant is the schedule of a time-invariant system.
type Constant struct {
	Transition *gauss.Transition
}

func (c Constant) At(int) (*gauss.Transition, error) {
	return c.Transition, nil
}

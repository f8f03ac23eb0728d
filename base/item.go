package base

import (
	"fmt"

	"github.com/Lepecin/dlm-dissertation/fitters"
	"github.com/Lepecin/dlm-dissertation/score"
)

// Item is one independent series of a batch.
type Item struct {
	name  string
	prime *fitters.Prime
	opts  []fitters.Option
	model *fitters.DLM
	ll    float64
}

// NewItem returns an unfitted item. Its options apply after those passed
// to Fit.
func NewItem(name string, prime *fitters.Prime, opts ...fitters.Option) *Item {
	return &Item{name: name, prime: prime, opts: opts}
}

func (i *Item) Name() string {
	return i.name
}

// Model returns the fitted model, or nil before Fit succeeds.
func (i *Item) Model() *fitters.DLM {
	return i.model
}

// LogLikelihood of the observed period under the one-step predictions.
func (i *Item) LogLikelihood() float64 {
	return i.ll
}

// Fit runs every pass of the item's model.
func (i *Item) Fit(opts ...fitters.Option) error {
	model, err := fitters.NewDLM(i.prime, append(append([]fitters.Option(nil), opts...), i.opts...)...)
	if err != nil {
		return fmt.Errorf("item %q: %w", i.name, err)
	}
	if err := model.Fit(); err != nil {
		return fmt.Errorf("item %q: %w", i.name, err)
	}
	ll, err := score.LogLikelihood(model.Memory().EvolvedSpaces, i.prime.Observations, i.prime.Observed)
	if err != nil {
		return fmt.Errorf("item %q: %w", i.name, err)
	}
	i.model, i.ll = model, ll
	return nil
}

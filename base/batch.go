// Package base fits batches of independent dynamic linear models.
package base

import (
	"context"
	"fmt"

	"github.com/Lepecin/dlm-dissertation/fitters"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Batch struct {
	items  map[string]*Item
	order  []string
	opts   []fitters.Option
	logger *zap.Logger
}

// NewBatch returns an empty batch. The options apply to every item.
func NewBatch(logger *zap.Logger, opts ...fitters.Option) *Batch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batch{
		items:  make(map[string]*Item),
		order:  make([]string, 0, 10),
		opts:   opts,
		logger: logger,
	}
}

func (b *Batch) AddItem(name string, prime *fitters.Prime, opts ...fitters.Option) error {
	if _, ok := b.items[name]; ok {
		return fmt.Errorf("duplicate item %q", name)
	}
	b.items[name] = NewItem(name, prime, opts...)
	b.order = append(b.order, name)
	return nil
}

func (b *Batch) Item(name string) *Item {
	return b.items[name]
}

// Items returns the items in insertion order.
func (b *Batch) Items() []*Item {
	out := make([]*Item, len(b.order))
	for i, name := range b.order {
		out[i] = b.items[name]
	}
	return out
}

// Fit fits all items on at most nWorkers goroutines. The first failure
// cancels the items that have not started yet.
func (b *Batch) Fit(ctx context.Context, nWorkers int) error {
	g, ctx := errgroup.WithContext(ctx)
	if nWorkers > 0 {
		g.SetLimit(nWorkers)
	}
	for _, item := range b.Items() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			logger := b.logger.With(zap.String("item", item.Name()))
			opts := append([]fitters.Option{fitters.WithLogger(logger)}, b.opts...)
			if err := item.Fit(opts...); err != nil {
				return err
			}
			logger.Debug("item fitted", zap.Float64("loglikelihood", item.LogLikelihood()))
			return nil
		})
	}
	return g.Wait()
}

// LogLikelihood sums the log-likelihood of every item.
func (b *Batch) LogLikelihood() float64 {
	ll := 0.0
	for _, item := range b.items {
		ll += item.LogLikelihood()
	}
	return ll
}

// Package series holds time-indexed containers for the quantities produced
// by a dynamic linear model run.
package series

import (
	"errors"
	"fmt"
)

var (
	ErrRangeViolation      = errors.New("time outside container range")
	ErrIncompleteContainer = errors.New("container has missing entries")
	ErrOccupied            = errors.New("container entry already set")
)

// Container maps every integer time of the half-open interval [start, end)
// to at most one value. Entries are written once and never replaced.
type Container[T any] struct {
	start int
	end   int
	slots []T
	set   []bool
}

// New returns an empty container over [start, end).
func New[T any](start, end int) *Container[T] {
	if end < start {
		end = start
	}
	return &Container[T]{
		start: start,
		end:   end,
		slots: make([]T, end-start),
		set:   make([]bool, end-start),
	}
}

func (c *Container[T]) Start() int { return c.start }
func (c *Container[T]) End() int   { return c.end }
func (c *Container[T]) Len() int   { return c.end - c.start }

func (c *Container[T]) index(time int) (int, error) {
	if time < c.start || time >= c.end {
		return 0, fmt.Errorf("%w: %d not in [%d, %d)", ErrRangeViolation, time, c.start, c.end)
	}
	return time - c.start, nil
}

// At returns the value stored at time.
func (c *Container[T]) At(time int) (T, error) {
	var zero T
	i, err := c.index(time)
	if err != nil {
		return zero, err
	}
	if !c.set[i] {
		return zero, fmt.Errorf("%w: nothing at %d", ErrIncompleteContainer, time)
	}
	return c.slots[i], nil
}

// Has reports whether a value is stored at time.
func (c *Container[T]) Has(time int) bool {
	i, err := c.index(time)
	return err == nil && c.set[i]
}

// Set stores value at time.
func (c *Container[T]) Set(time int, value T) error {
	i, err := c.index(time)
	if err != nil {
		return err
	}
	if c.set[i] {
		return fmt.Errorf("%w: %d", ErrOccupied, time)
	}
	c.slots[i] = value
	c.set[i] = true
	return nil
}

// Range returns the values over [from, to). Every time in the range must be
// inside the container and populated.
func (c *Container[T]) Range(from, to int) ([]T, error) {
	if from > to {
		return nil, fmt.Errorf("%w: empty range [%d, %d)", ErrRangeViolation, from, to)
	}
	if from == to {
		return []T{}, nil
	}
	lo, err := c.index(from)
	if err != nil {
		return nil, err
	}
	if _, err := c.index(to - 1); err != nil {
		return nil, err
	}
	hi := to - c.start
	for i := lo; i < hi; i++ {
		if !c.set[i] {
			return nil, fmt.Errorf("%w: nothing at %d", ErrIncompleteContainer, i+c.start)
		}
	}
	out := make([]T, hi-lo)
	copy(out, c.slots[lo:hi])
	return out, nil
}

// All returns every value of the container in time order.
func (c *Container[T]) All() ([]T, error) {
	return c.Range(c.start, c.end)
}

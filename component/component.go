// Package component builds the structural blocks of a dynamic linear model
// and compiles them into one joint transition and observation system.
package component

import (
	"fmt"

	"github.com/Lepecin/dlm-dissertation/utils"
	"gonum.org/v1/gonum/mat"
)

type Component interface {
	// Number of latent coordinates contributed to the joint state.
	Dimension() int

	// Evolution matrix of the component's own coordinates.
	Transition() *mat.Dense

	// Row through which the component is seen by whatever it feeds.
	Observation() *mat.VecDense
}

// Covariate grafts the observation of c into the given rows of an otherwise
// zero (rows by c.Dimension()) block. Indices are deduplicated, sorted and
// restricted to [0, rows) first.
func Covariate(c Component, rows int, indices []int) *mat.Dense {
	out := utils.NewDense(rows, c.Dimension())
	observation := c.Observation()
	if observation.IsEmpty() {
		return out
	}
	row := mat.Col(nil, 0, observation)
	for _, i := range utils.CleanIndices(indices, 0, rows) {
		out.SetRow(i, row)
	}
	return out
}

var (
	root *Root
	_    Component = root // Check that Root respects the Component interface.
)

// Root is the empty placeholder component.
type Root struct{}

func (c *Root) Dimension() int             { return 0 }
func (c *Root) Transition() *mat.Dense     { return utils.NewDense(0, 0) }
func (c *Root) Observation() *mat.VecDense { return utils.NewVecDense(0, nil) }

var (
	formFree *FormFree
	_        Component = formFree // Check that FormFree respects the Component interface.
)

// FormFree is a local level of the given dimension whose coordinates shift
// down by one at every step, scaled by factor.
type FormFree struct {
	dimension int
	factor    float64
}

func NewFormFree(dimension int, factor float64) *FormFree {
	return &FormFree{dimension: max(dimension, 0), factor: factor}
}

func (c *FormFree) Dimension() int             { return c.dimension }
func (c *FormFree) Transition() *mat.Dense     { return FormFreeTransition(c.dimension, c.factor) }
func (c *FormFree) Observation() *mat.VecDense { return BasicObservation(c.dimension) }

var (
	polynomial *Polynomial
	_          Component = polynomial // Check that Polynomial respects the Component interface.
)

// Polynomial is a trend whose k-th coordinate drives the (k-1)-th, giving
// discrete derivatives of increasing order.
type Polynomial struct {
	dimension int
	factor    float64
}

func NewPolynomial(dimension int, factor float64) *Polynomial {
	return &Polynomial{dimension: max(dimension, 0), factor: factor}
}

func (c *Polynomial) Dimension() int             { return c.dimension }
func (c *Polynomial) Transition() *mat.Dense     { return PolynomialTransition(c.dimension, c.factor) }
func (c *Polynomial) Observation() *mat.VecDense { return BasicObservation(c.dimension) }

var (
	harmonics *Harmonics
	_         Component = harmonics // Check that Harmonics respects the Component interface.
)

// Harmonics is a seasonal component made of count rotations with periods
// start, start+1, ..., start+count-1.
type Harmonics struct {
	start  int
	count  int
	factor float64
}

// NewHarmonics rejects a non-positive start period, for which the rotation
// angle is undefined.
func NewHarmonics(start, count int, factor float64) (*Harmonics, error) {
	if start <= 0 {
		return nil, fmt.Errorf("%w: harmonic start period %d", ErrInvalidComponent, start)
	}
	return &Harmonics{start: start, count: max(count, 0), factor: factor}, nil
}

func (c *Harmonics) Dimension() int         { return 2 * c.count }
func (c *Harmonics) Transition() *mat.Dense { return HarmonicsTransition(c.start, c.count, c.factor) }
func (c *Harmonics) Observation() *mat.VecDense {
	return HarmonicsObservation(c.count)
}

var (
	regression *Regression
	_          Component = regression // Check that Regression respects the Component interface.
)

// Regression holds static coefficients on a window of an external series.
type Regression struct {
	start     int
	dimension int
	data      []float64
}

func NewRegression(start, dimension int, data []float64) *Regression {
	dimension = max(dimension, 0)
	return &Regression{
		start:     start,
		dimension: dimension,
		data:      utils.SliceSeries(data, start, dimension),
	}
}

func (c *Regression) Dimension() int         { return c.dimension }
func (c *Regression) Transition() *mat.Dense { return utils.Eye(c.dimension) }
func (c *Regression) Observation() *mat.VecDense {
	return utils.NewVecDense(c.dimension, append([]float64(nil), c.data...))
}

var (
	autoregression *Autoregression
	_              Component = autoregression // Check that Autoregression respects the Component interface.
)

// Autoregression is the companion form of an AR process with the given
// coefficients, most recent lag first.
type Autoregression struct {
	coefficients []float64
}

func NewAutoregression(coefficients []float64) *Autoregression {
	return &Autoregression{coefficients: append([]float64(nil), coefficients...)}
}

func (c *Autoregression) Dimension() int { return len(c.coefficients) }
func (c *Autoregression) Transition() *mat.Dense {
	return AutoregressionTransition(c.coefficients)
}
func (c *Autoregression) Observation() *mat.VecDense {
	return BasicObservation(len(c.coefficients))
}

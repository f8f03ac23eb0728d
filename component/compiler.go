package component

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Lepecin/dlm-dissertation/utils"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrInvalidCoupling  = errors.New("invalid coupling")
	ErrUnknownComponent = errors.New("coupling refers to unknown component")
	ErrEmptyModel       = errors.New("model has no latent coordinates")
	ErrInvalidComponent = errors.New("invalid component")
)

// Observed is the source index of couplings into the observation matrix.
const Observed = -1

// Coupling identifies the block fed by component Y. X is the receiving
// component, or Observed for the joint observation.
type Coupling struct {
	X, Y int
}

// Compiler assembles components into a joint transition whose diagonal
// blocks are the components' own transitions, and a joint observation with
// one row per observed series.
type Compiler struct {
	rows       int
	components []Component
	couplings  map[Coupling][]int
}

// NewCompiler returns a compiler for rows observed series.
func NewCompiler(rows int) *Compiler {
	return &Compiler{
		rows:      rows,
		couplings: make(map[Coupling][]int),
	}
}

// Add appends components. Their order fixes the layout of the joint state.
func (c *Compiler) Add(components ...Component) {
	c.components = append(c.components, components...)
}

// Dimension is the size of the joint state.
func (c *Compiler) Dimension() int {
	d := 0
	for _, component := range c.components {
		d += component.Dimension()
	}
	return d
}

// SetCoupling grafts the observation of component y into the given rows of
// block (x, y). A later call for the same pair replaces the earlier one.
func (c *Compiler) SetCoupling(x, y int, indices []int) error {
	if x == y {
		return fmt.Errorf("%w: component %d cannot feed itself", ErrInvalidCoupling, x)
	}
	if x < Observed || y < 0 {
		return fmt.Errorf("%w: (%d, %d)", ErrInvalidCoupling, x, y)
	}
	c.couplings[Coupling{x, y}] = append([]int(nil), indices...)
	return nil
}

func (c *Compiler) validate() error {
	keys := make([]Coupling, 0, len(c.couplings))
	for key := range c.couplings {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].X != keys[j].X {
			return keys[i].X < keys[j].X
		}
		return keys[i].Y < keys[j].Y
	})
	for _, key := range keys {
		if key.X >= len(c.components) || key.Y >= len(c.components) {
			return fmt.Errorf("%w: (%d, %d) with %d components",
				ErrUnknownComponent, key.X, key.Y, len(c.components))
		}
	}
	if c.Dimension() == 0 {
		return ErrEmptyModel
	}
	return nil
}

func (c *Compiler) offsets() []int {
	out := make([]int, len(c.components))
	offset := 0
	for i, component := range c.components {
		out[i] = offset
		offset += component.Dimension()
	}
	return out
}

// CompileTransition returns the (D by D) joint transition.
func (c *Compiler) CompileTransition() (*mat.Dense, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	d := c.Dimension()
	offsets := c.offsets()
	out := utils.NewDense(d, d)
	for x, receiver := range c.components {
		for y, source := range c.components {
			var block mat.Matrix
			if x == y {
				block = source.Transition()
			} else {
				block = Covariate(source, receiver.Dimension(), c.couplings[Coupling{x, y}])
			}
			utils.SetBlock(out, offsets[x], offsets[y], block)
		}
	}
	return out, nil
}

// CompileObservation returns the (rows by D) joint observation. A component
// without an Observed coupling contributes zeros.
func (c *Compiler) CompileObservation() (*mat.Dense, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.rows <= 0 {
		return nil, fmt.Errorf("%w: no observed series", ErrEmptyModel)
	}
	offsets := c.offsets()
	out := utils.NewDense(c.rows, c.Dimension())
	for y, source := range c.components {
		block := Covariate(source, c.rows, c.couplings[Coupling{Observed, y}])
		utils.SetBlock(out, 0, offsets[y], block)
	}
	return out, nil
}

// Compile returns both the joint transition and the joint observation.
func (c *Compiler) Compile() (transition, observation *mat.Dense, err error) {
	if transition, err = c.CompileTransition(); err != nil {
		return nil, nil, err
	}
	if observation, err = c.CompileObservation(); err != nil {
		return nil, nil, err
	}
	return transition, observation, nil
}

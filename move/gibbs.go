package move

import (
	"fmt"
	"io"

	"github.com/armanbilge/revgo/dag"
	"github.com/armanbilge/revgo/rng"
)

// GibbsSampler draws a new value for a stochastic node directly from its
// full conditional distribution, given the node's current parent values.
type GibbsSampler func(src rng.Source, parentValues []interface{}) interface{}

// GibbsMove wraps a GibbsSampler as a Move whose proposals are always
// accepted: PerformGibbs resamples the target from its full conditional and
// Accept commits it unconditionally, with no Metropolis–Hastings test in
// between.
type GibbsMove struct {
	base
	sample GibbsSampler
}

// NewGibbsMove returns a GibbsMove targeting the node named targetName,
// resampling it via sample.
func NewGibbsMove(targetName string, sample GibbsSampler, weight float64) *GibbsMove {
	return &GibbsMove{base: newBase(targetName, weight), sample: sample}
}

func (m *GibbsMove) IsGibbs() bool { return true }

func (m *GibbsMove) Perform(g *dag.Graph, src rng.Source) (lnHastingsRatio, lnPriorRatio float64, err error) {
	return 0, 0, fmt.Errorf("move: gibbs: %q is a Gibbs move, use PerformGibbs", m.targetName)
}

func (m *GibbsMove) PerformGibbs(g *dag.Graph, src rng.Source) error {
	if !m.bound {
		return ErrNotBound
	}

	parents := g.Parents(m.target)
	parentValues := make([]interface{}, len(parents))
	for i, p := range parents {
		parentValues[i] = g.Value(p)
	}

	m.affected = g.AffectedSet(m.target)
	newVal := m.sample(src, parentValues)
	_, err := g.SetValue(m.target, newVal)

	return err
}

// Accept commits the resampled value and increments tried and accepted
// equally, since a Gibbs step is never rejected.
func (m *GibbsMove) Accept(g *dag.Graph) { m.accept(g) }

// Reject is never called by the driver for a Gibbs move; provided only to
// satisfy the Move interface.
func (m *GibbsMove) Reject(g *dag.Graph) { m.reject(g) }

// AutoTune is a no-op: a Gibbs proposal has no tuning parameter.
func (m *GibbsMove) AutoTune() {}

func (m *GibbsMove) Clone() Move {
	return &GibbsMove{base: m.cloneBase(), sample: m.sample}
}

func (m *GibbsMove) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "%-20s %-12s w=%-6.2f tried=%-8d accepted=%-8d ratio=1.000 (gibbs)\n",
		"Gibbs", m.targetName, m.weight, m.tried, m.accepted)
}

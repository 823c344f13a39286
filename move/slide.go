package move

import (
	"fmt"
	"io"

	"github.com/armanbilge/revgo/dag"
	"github.com/armanbilge/revgo/rng"
)

// SlideMove proposes an additive perturbation of a single real-valued
// stochastic node: x' = x + lambda*(u - 0.5) for u ~ Uniform(0,1). The
// proposal is symmetric (a uniform sliding window), so its Hastings ratio
// is always zero.
//
// Grounded on the same sliding-window proposal family ScaleMove's log-scale
// kernel belongs to, with the Jacobian term dropped since an additive shift
// has none.
type SlideMove struct {
	base
	delta      float64
	targetRate float64
}

// NewSlideMove returns a SlideMove targeting the node named targetName, with
// initial window width delta and scheduling weight.
func NewSlideMove(targetName string, delta, weight float64) *SlideMove {
	return &SlideMove{
		base:       newBase(targetName, weight),
		delta:      delta,
		targetRate: 0.44,
	}
}

// Delta returns the move's current window-width tuning parameter.
func (m *SlideMove) Delta() float64 { return m.delta }

func (m *SlideMove) Perform(g *dag.Graph, src rng.Source) (lnHastingsRatio, lnPriorRatio float64, err error) {
	if !m.bound {
		return 0, 0, ErrNotBound
	}

	x, ok := g.Value(m.target).(float64)
	if !ok {
		return 0, 0, fmt.Errorf("move: slide: target %q is not a float64 value", m.targetName)
	}

	m.affected = g.AffectedSet(m.target)
	preSum := affectedDelta(g, m.affected)

	u := src.Float64()
	newVal := x + m.delta*(u-0.5)

	if _, err := g.SetValue(m.target, newVal); err != nil {
		return 0, 0, err
	}
	postSum := affectedDelta(g, m.affected)

	return 0, postSum - preSum, nil
}

func (m *SlideMove) PerformGibbs(g *dag.Graph, src rng.Source) error {
	return fmt.Errorf("move: slide: not a Gibbs move")
}

func (m *SlideMove) Accept(g *dag.Graph) { m.accept(g) }
func (m *SlideMove) Reject(g *dag.Graph) { m.reject(g) }

func (m *SlideMove) AutoTune() {
	m.delta = tuneTowards(m.delta, m.targetRate, m.tried, m.accepted)
}

func (m *SlideMove) Clone() Move {
	return &SlideMove{base: m.cloneBase(), delta: m.delta, targetRate: m.targetRate}
}

func (m *SlideMove) PrintSummary(w io.Writer) {
	rate := 0.0
	if m.tried > 0 {
		rate = float64(m.accepted) / float64(m.tried)
	}
	fmt.Fprintf(w, "%-20s %-12s w=%-6.2f tried=%-8d accepted=%-8d ratio=%-6.3f delta=%-8.4f\n",
		"Slide", m.targetName, m.weight, m.tried, m.accepted, rate, m.delta)
}

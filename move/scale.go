package move

import (
	"fmt"
	"io"
	"math"

	"github.com/armanbilge/revgo/dag"
	"github.com/armanbilge/revgo/rng"
)

// ScaleMove proposes a multiplicative perturbation of a single positive-real
// stochastic node: x' = x * exp(lambda * (u - 0.5)) for u ~ Uniform(0,1).
// The Jacobian of this log-scale transform gives the Hastings ratio
// ln(x'/x) directly.
//
// Grounded on Move_mscale's perform(): the same proposal kernel and the
// same Hastings-ratio derivation, generalized from a single hard-coded
// random-number-generator access to the package-wide rng.Source threading.
type ScaleMove struct {
	base
	lambda     float64
	targetRate float64 // 0.44 for scalar moves
}

// NewScaleMove returns a ScaleMove targeting the node named targetName, with
// initial tuning parameter lambda and scheduling weight.
func NewScaleMove(targetName string, lambda, weight float64) *ScaleMove {
	return &ScaleMove{
		base:       newBase(targetName, weight),
		lambda:     lambda,
		targetRate: 0.44,
	}
}

// Lambda returns the move's current scale-tuning parameter.
func (m *ScaleMove) Lambda() float64 { return m.lambda }

func (m *ScaleMove) Perform(g *dag.Graph, src rng.Source) (lnHastingsRatio, lnPriorRatio float64, err error) {
	if !m.bound {
		return 0, 0, ErrNotBound
	}

	x, ok := g.Value(m.target).(float64)
	if !ok {
		return 0, 0, fmt.Errorf("move: scale: target %q is not a float64 value", m.targetName)
	}
	if x <= 0 {
		return 0, 0, fmt.Errorf("move: scale: target %q current value %v not positive: %w", m.targetName, x, ErrInvalidProposal)
	}

	m.affected = g.AffectedSet(m.target)
	preSum := affectedDelta(g, m.affected)

	u := src.Float64()
	newVal := x * math.Exp(m.lambda*(u-0.5))
	if newVal <= 0 || math.IsInf(newVal, 0) || math.IsNaN(newVal) {
		return 0, 0, fmt.Errorf("move: scale: proposed value %v not positive: %w", newVal, ErrInvalidProposal)
	}

	if _, err := g.SetValue(m.target, newVal); err != nil {
		return 0, 0, err
	}
	postSum := affectedDelta(g, m.affected)

	return math.Log(newVal / x), postSum - preSum, nil
}

func (m *ScaleMove) PerformGibbs(g *dag.Graph, src rng.Source) error {
	return fmt.Errorf("move: scale: not a Gibbs move")
}

func (m *ScaleMove) Accept(g *dag.Graph) { m.accept(g) }
func (m *ScaleMove) Reject(g *dag.Graph) { m.reject(g) }

func (m *ScaleMove) AutoTune() {
	m.lambda = tuneTowards(m.lambda, m.targetRate, m.tried, m.accepted)
}

func (m *ScaleMove) Clone() Move {
	return &ScaleMove{base: m.cloneBase(), lambda: m.lambda, targetRate: m.targetRate}
}

func (m *ScaleMove) PrintSummary(w io.Writer) {
	rate := 0.0
	if m.tried > 0 {
		rate = float64(m.accepted) / float64(m.tried)
	}
	fmt.Fprintf(w, "%-20s %-12s w=%-6.2f tried=%-8d accepted=%-8d ratio=%-6.3f lambda=%-8.4f\n",
		"Scale", m.targetName, m.weight, m.tried, m.accepted, rate, m.lambda)
}

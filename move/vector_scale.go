package move

import (
	"fmt"
	"io"
	"math"

	"github.com/armanbilge/revgo/dag"
	"github.com/armanbilge/revgo/rng"
)

// VectorScaleMove proposes a single common multiplicative factor applied to
// every element of a positive-real vector-valued stochastic node:
// x'_i = x_i * f for all i, with f = exp(lambda * (u - 0.5)). Because every
// element is scaled by the same factor, the Jacobian accumulates once per
// dimension: lnHastingsRatio = len(x) * ln(f).
//
// Grounded on ScaleMove's scalar kernel, generalized to a vector target the
// way the original source's vector-scale move generalizes its scalar
// sibling: same proposal shape, Hastings ratio scaled by dimension.
type VectorScaleMove struct {
	base
	lambda     float64
	targetRate float64
}

// NewVectorScaleMove returns a VectorScaleMove targeting the []float64 node
// named targetName.
func NewVectorScaleMove(targetName string, lambda, weight float64) *VectorScaleMove {
	return &VectorScaleMove{
		base:       newBase(targetName, weight),
		lambda:     lambda,
		targetRate: 0.234, // target acceptance rate for high-dimensional moves
	}
}

// Lambda returns the move's current scale-tuning parameter.
func (m *VectorScaleMove) Lambda() float64 { return m.lambda }

func (m *VectorScaleMove) Perform(g *dag.Graph, src rng.Source) (lnHastingsRatio, lnPriorRatio float64, err error) {
	if !m.bound {
		return 0, 0, ErrNotBound
	}

	x, ok := g.Value(m.target).([]float64)
	if !ok {
		return 0, 0, fmt.Errorf("move: vectorScale: target %q is not a []float64 value", m.targetName)
	}

	m.affected = g.AffectedSet(m.target)
	preSum := affectedDelta(g, m.affected)

	u := src.Float64()
	factor := math.Exp(m.lambda * (u - 0.5))
	newVal := make([]float64, len(x))
	for i, xi := range x {
		if xi <= 0 {
			return 0, 0, fmt.Errorf("move: vectorScale: element %d of %q not positive: %w", i, m.targetName, ErrInvalidProposal)
		}
		newVal[i] = xi * factor
	}

	if _, err := g.SetValue(m.target, newVal); err != nil {
		return 0, 0, err
	}
	postSum := affectedDelta(g, m.affected)

	return float64(len(x)) * math.Log(factor), postSum - preSum, nil
}

func (m *VectorScaleMove) PerformGibbs(g *dag.Graph, src rng.Source) error {
	return fmt.Errorf("move: vectorScale: not a Gibbs move")
}

func (m *VectorScaleMove) Accept(g *dag.Graph) { m.accept(g) }
func (m *VectorScaleMove) Reject(g *dag.Graph) { m.reject(g) }

func (m *VectorScaleMove) AutoTune() {
	m.lambda = tuneTowards(m.lambda, m.targetRate, m.tried, m.accepted)
}

func (m *VectorScaleMove) Clone() Move {
	return &VectorScaleMove{base: m.cloneBase(), lambda: m.lambda, targetRate: m.targetRate}
}

func (m *VectorScaleMove) PrintSummary(w io.Writer) {
	rate := 0.0
	if m.tried > 0 {
		rate = float64(m.accepted) / float64(m.tried)
	}
	fmt.Fprintf(w, "%-20s %-12s w=%-6.2f tried=%-8d accepted=%-8d ratio=%-6.3f lambda=%-8.4f\n",
		"VectorScale", m.targetName, m.weight, m.tried, m.accepted, rate, m.lambda)
}

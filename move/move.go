package move

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/armanbilge/revgo/dag"
	"github.com/armanbilge/revgo/rng"
)

// ErrInvalidProposal indicates a move drew a candidate value outside its
// target's support (e.g. a scale move producing a non-positive value for a
// positive-real node). Perform returns it (wrapped), and the driver treats
// it as an immediate rejection of the proposal rather than a failure.
var ErrInvalidProposal = errors.New("move: proposed value outside support")

// ErrNotBound indicates an operation that requires a bound target
// (Perform, PerformGibbs) was called before the move was attached to a
// model.Model's graph via SwapNode (see model.Rebind).
var ErrNotBound = errors.New("move: target not bound to a graph")

// Move is the proposal-kernel contract the chain driver invokes once per
// scheduled proposal. Implementations hold their target nodes by name until
// SwapNode attaches them to a concrete dag.Graph, so a Move value can be
// constructed against an external model and later rebound to a model.Model
// clone the same way the driver rebinds itself (see model.Rebind).
type Move interface {
	// GetNodeNames reports the names of every node this move references,
	// satisfying model.Rebindable.
	GetNodeNames() []string
	// SwapNode rebinds the reference previously reported under name to id
	// in the graph this move will operate on, satisfying model.Rebindable.
	SwapNode(name string, id dag.NodeID) error

	// Perform executes a Metropolis–Hastings proposal against g: it
	// perturbs its target (touching it, which dirties its affected set),
	// and returns the log Hastings ratio together with lnPriorRatio, the
	// sum of the affected set's lnProbability after the proposal minus
	// the sum before. The driver forms the acceptance ratio from both.
	Perform(g *dag.Graph, src rng.Source) (lnHastingsRatio, lnPriorRatio float64, err error)
	// PerformGibbs executes an unconditionally-accepted step: no acceptance
	// test follows, and Accept is still called to update counters and
	// commit the change.
	PerformGibbs(g *dag.Graph, src rng.Source) error
	// Accept commits the most recent Perform/PerformGibbs: keeps the
	// affected set and increments tried and accepted.
	Accept(g *dag.Graph)
	// Reject rolls back the most recent Perform: restores the affected
	// set and increments tried only.
	Reject(g *dag.Graph)
	// AutoTune adapts the move's tuning parameter toward its target
	// acceptance rate using the cumulative tried/accepted counters.
	AutoTune()

	IsGibbs() bool
	Weight() float64
	Tried() int
	Accepted() int
	ResetCounters()
	// PrintSummary writes one operator-summary row to w: name, target,
	// weight, tried, accepted, acceptance ratio, tuning parameter.
	PrintSummary(w io.Writer)

	// Clone returns an independent copy of this move, unbound from any
	// graph, preserving its tuning parameter and counters. Used by the
	// chain driver to give each constructed Chain (and each replica of an
	// outer Metropolis-coupled driver) its own move instances before
	// rebinding them to its own model.Model clone.
	Clone() Move
}

// base holds the bookkeeping every concrete move shares: scheduling weight,
// acceptance counters, and the single target node a scalar move perturbs.
// Concrete moves embed base and add their own tuning parameter and proposal
// kernel.
type base struct {
	targetName string
	target     dag.NodeID
	bound      bool

	weight   float64
	tried    int
	accepted int

	affected []dag.NodeID // memoized by the most recent Perform, read by Accept/Reject
}

func newBase(targetName string, weight float64) base {
	return base{targetName: targetName, weight: weight}
}

// cloneBase copies b's identity, weight, and counters into a fresh base
// that is not yet bound to any graph.
func (b *base) cloneBase() base {
	return base{targetName: b.targetName, weight: b.weight, tried: b.tried, accepted: b.accepted}
}

// GetNodeNames reports the single node name this move targets.
func (b *base) GetNodeNames() []string { return []string{b.targetName} }

// SwapNode binds b's target to id once name matches the name this move was
// constructed with.
func (b *base) SwapNode(name string, id dag.NodeID) error {
	if name != b.targetName {
		return fmt.Errorf("move: swapNode: unknown name %q, want %q", name, b.targetName)
	}
	b.target = id
	b.bound = true

	return nil
}

func (b *base) IsGibbs() bool   { return false }
func (b *base) Weight() float64 { return b.weight }
func (b *base) Tried() int      { return b.tried }
func (b *base) Accepted() int   { return b.accepted }
func (b *base) ResetCounters()  { b.tried, b.accepted = 0, 0 }

// affectedDelta reads g's affected-set lnProbability sum, for use both
// before perturbing the target (the baseline) and after (the candidate).
func affectedDelta(g *dag.Graph, affected []dag.NodeID) float64 {
	sum := 0.0
	for _, id := range affected {
		sum += g.LnProbability(id)
	}

	return sum
}

// accept commits the move's affected set and increments counters. Shared by
// every concrete move's Accept.
func (b *base) accept(g *dag.Graph) {
	for _, id := range b.affected {
		g.Keep(id)
	}
	b.tried++
	b.accepted++
}

// reject restores the move's affected set and increments tried only. Shared
// by every concrete move's Reject.
func (b *base) reject(g *dag.Graph) {
	for _, id := range b.affected {
		g.Restore(id)
	}
	b.tried++
}

// tuneTowards applies a bounded multiplicative update to scale, nudging the
// move's empirical acceptance rate (computed from cumulative tried/accepted)
// toward targetRate. The update shrinks scale when the rate is too low
// (proposals too bold) and grows it when too high (proposals too timid),
// and is bounded by minScale/maxScale so a pathological run cannot tune the
// parameter to zero or to infinity.
func tuneTowards(scale, targetRate float64, tried, accepted int) float64 {
	const minScale = 1e-4
	const maxScale = 1e4
	if tried == 0 {
		return scale
	}
	rate := float64(accepted) / float64(tried)
	delta := rate - targetRate
	scale *= math.Exp(delta)
	if scale < minScale {
		scale = minScale
	}
	if scale > maxScale {
		scale = maxScale
	}

	return scale
}

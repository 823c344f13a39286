package monitor

import (
	"errors"
	"fmt"

	"github.com/armanbilge/revgo/dag"
)

// ErrNotOpen indicates Monitor was called before OpenStream succeeded.
var ErrNotOpen = errors.New("monitor: stream not open")

// ChainContext is the narrow slice of driver state a Monitor needs at fire
// time: whether to print a header (only active chains do), and the chain's
// current joint log-probability. Kept as an interface here, rather than an
// import of package mcmc, so mcmc can depend on monitor without a cycle.
type ChainContext interface {
	ChainActive() bool
	LnPosterior() float64
}

// Monitor observes a fixed set of nodes (by name, until bound) and the
// chain's joint log-probability, and emits a row whenever the driver calls
// Monitor with a generation that is a multiple of Period.
type Monitor interface {
	// GetNodeNames reports the names of every node this monitor watches,
	// satisfying model.Rebindable.
	GetNodeNames() []string
	// SwapNode rebinds the watched reference previously reported under
	// name to id, satisfying model.Rebindable.
	SwapNode(name string, id dag.NodeID) error

	// SetModel wires the monitor to the graph it will read node values
	// from. Called once at driver construction, after rebinding.
	SetModel(g *dag.Graph)
	// SetChain wires the monitor to the driver's ChainContext. Called once
	// at driver construction.
	SetChain(ctx ChainContext)

	// OpenStream acquires the monitor's output resource. Called by the
	// driver's Run, before PrintHeader and the generation-0 row.
	OpenStream() error
	// Close releases the monitor's output resource. Called once, at
	// driver destruction.
	Close() error

	// PrintHeader emits a column header if the chain is active, and
	// nothing otherwise.
	PrintHeader()
	// Monitor emits a row for generation if generation is a multiple of
	// Period; otherwise it is a no-op.
	Monitor(generation int) error

	Period() int

	// Clone returns an independent copy of this monitor, unbound from any
	// graph or chain and with its output stream closed, preserving its
	// period and output destination. Used by the chain driver to give
	// each constructed Chain its own monitor instances.
	Clone() Monitor
}

// base holds the bookkeeping every concrete monitor shares: the watched
// node names (until bound), the bound graph and chain context, and the
// sampling period.
type base struct {
	names  []string
	ids    map[string]dag.NodeID
	graph  *dag.Graph
	chain  ChainContext
	period int
}

func newBase(period int, names ...string) base {
	return base{names: append([]string(nil), names...), ids: make(map[string]dag.NodeID), period: period}
}

// cloneBase copies b's watched names and period into a fresh base that is
// not yet bound to any graph, chain, or open stream.
func (b *base) cloneBase() base {
	return newBase(b.period, b.names...)
}

func (b *base) GetNodeNames() []string { return append([]string(nil), b.names...) }

func (b *base) SwapNode(name string, id dag.NodeID) error {
	for _, n := range b.names {
		if n == name {
			b.ids[name] = id

			return nil
		}
	}

	return fmt.Errorf("monitor: swapNode: unknown name %q", name)
}

func (b *base) SetModel(g *dag.Graph)   { b.graph = g }
func (b *base) SetChain(c ChainContext) { b.chain = c }
func (b *base) Period() int             { return b.period }

// row builds this generation's observation row: generation, joint
// log-probability, then each watched node's current value in name order.
func (b *base) row(generation int) []interface{} {
	vals := make([]interface{}, 0, len(b.names)+2)
	vals = append(vals, generation, b.chain.LnPosterior())
	for _, name := range b.names {
		vals = append(vals, b.graph.Value(b.ids[name]))
	}

	return vals
}

// header builds this monitor's column header in the same order row builds
// values.
func (b *base) header() []string {
	cols := make([]string, 0, len(b.names)+2)
	cols = append(cols, "Generation", "LnPosterior")
	cols = append(cols, b.names...)

	return cols
}

func (b *base) shouldFire(generation int) bool {
	if b.period <= 0 {
		return false
	}

	return generation%b.period == 0
}

// Package model provides a detached, name-addressable clone of a dag.Graph.
// Constructing a Model performs a structural clone: each external node gets
// exactly one clone, edges are rewired among clones, and a name index is
// populated so external moves and monitors can be rebound to point at the
// clone instead of the user's original graph (see Rebind).
//
// Grounded on Mcmc::replaceDag in the original source this module's driver
// descends from, and on this package's teacher's Graph.Clone two-phase
// clone (CloneEmpty, then copy edges) in spirit: a Model clones a full
// dag.Graph in one pass, keyed by a map from the original NodeID to the
// clone's, since dag.Graph already enforces parents-before-children
// insertion order.
package model

import (
	"errors"
	"fmt"

	"github.com/armanbilge/revgo/dag"
)

// ErrRebinding indicates a cloned move or monitor references a node by name
// that either has no name (anonymous) or is not present in this Model.
var ErrRebinding = errors.New("model: rebinding failed")

// Model owns a detached clone of a dag.Graph.
type Model struct {
	graph *dag.Graph
	// origToClone maps the NodeID the Model was built from to the NodeID in
	// graph. Retained so repeated construction from the same external graph
	// is diagnosable; not required for steady-state operation.
	origToClone map[dag.NodeID]dag.NodeID
}

// New clones external into a new, detached Model. Nodes are copied in
// external's arena order (already parents-before-children), so every
// parent NodeID referenced by a later node has already been remapped.
func New(external *dag.Graph) *Model {
	g := dag.NewGraph()
	origToClone := make(map[dag.NodeID]dag.NodeID, external.Len())

	for _, orig := range external.NodeIDs() {
		parents := make([]dag.NodeID, len(external.Parents(orig)))
		for i, p := range external.Parents(orig) {
			parents[i] = origToClone[p]
		}

		var clone dag.NodeID
		switch external.NodeKind(orig) {
		case dag.KindConstant:
			clone, _ = g.AddConstant(external.Name(orig), external.Value(orig))
		case dag.KindDeterministic:
			clone, _ = g.AddDeterministic(external.Name(orig), external.Transform(orig), parents...)
		case dag.KindStochastic:
			clone, _ = g.AddStochastic(
				external.Name(orig),
				external.Distribution(orig),
				external.Value(orig),
				external.IsClamped(orig),
				parents...,
			)
		}
		origToClone[orig] = clone
	}

	return &Model{graph: g, origToClone: origToClone}
}

// Graph returns the Model's cloned dag.Graph.
func (m *Model) Graph() *dag.Graph { return m.graph }

// Lookup returns the cloned NodeID registered under name.
func (m *Model) Lookup(name string) (dag.NodeID, bool) {
	return m.graph.Lookup(name)
}

// Rebindable is implemented by anything (a move, a monitor) whose node
// references must be swapped to point into a cloned Model: GetNodeNames
// reports the names it currently references (in the original graph), and
// SwapNode is called once per name with the clone's NodeID once it's been
// located by name.
type Rebindable interface {
	// GetNodeNames returns the names of every node this value references.
	GetNodeNames() []string
	// SwapNode rebinds the reference previously reported under name to id,
	// a NodeID in the Model the rebinder is cloning into.
	SwapNode(name string, id dag.NodeID) error
}

// Rebind locates, by name, the clone of every node r references in m, and
// calls r.SwapNode for each. It is ErrRebinding (wrapped with the offending
// name) if r references a name not present in m — including the empty
// name, which marks an anonymous reference that can never be rebound.
func Rebind(m *Model, r Rebindable) error {
	for _, name := range r.GetNodeNames() {
		if name == "" {
			return fmt.Errorf("model: anonymous reference cannot be rebound: %w", ErrRebinding)
		}
		id, ok := m.Lookup(name)
		if !ok {
			return fmt.Errorf("model: no node named %q in model: %w", name, ErrRebinding)
		}
		if err := r.SwapNode(name, id); err != nil {
			return fmt.Errorf("model: swapNode(%q): %w", name, err)
		}
	}

	return nil
}

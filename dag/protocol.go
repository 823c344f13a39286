package dag

import "github.com/armanbilge/revgo/rng"

// Touch declares that id's value has changed. It marks id dirty, marks its
// cached log-probability stale if id is stochastic, and recurses into id's
// children: a deterministic child's value depends on id and must recompute,
// a stochastic child's density depends on id and must recompute, but a
// stochastic child's own value is untouched, so propagation does not
// continue past it into its own children. It is a no-op on an already-dirty
// node (touch followed by touch does not re-walk the subgraph).
//
// Every move-driven value change must be bracketed by Touch (SetValue calls
// it internally) before the candidate density is read, and exactly one of
// Keep or Restore after the acceptance decision.
func (g *Graph) Touch(id NodeID) {
	g.muNodes.Lock()
	defer g.muNodes.Unlock()
	g.touchLocked(id)
}

func (g *Graph) touchLocked(id NodeID) {
	g.touchFrom(id, true)
}

func (g *Graph) touchFrom(id NodeID, isRoot bool) {
	n := g.mustNode(id)
	if !isRoot && n.dirty {
		return
	}
	n.dirty = true
	if isRoot || n.kind == KindDeterministic {
		for c := range n.children {
			g.touchFrom(c, false)
		}
	}
}

// Keep commits id's current tentative state: clears dirty, and for a
// stochastic node, makes the current log-probability cache authoritative.
// It recurses the same way Touch did, committing each node it reaches. A
// no-op if id was already clean.
func (g *Graph) Keep(id NodeID) {
	g.muNodes.Lock()
	defer g.muNodes.Unlock()
	g.keepLocked(id)
}

func (g *Graph) keepLocked(id NodeID) {
	g.keepFrom(id, true)
}

func (g *Graph) keepFrom(id NodeID, isRoot bool) {
	n := g.mustNode(id)
	if !n.dirty {
		return
	}
	switch n.kind {
	case KindDeterministic:
		n.value = n.transform(g.parentValuesLocked(n.parents))
		n.committedValue = n.value
	case KindStochastic:
		n.lnProbability = g.lnProbabilityLocked(id)
		n.committedValue = n.value
		n.committedLnProbability = n.lnProbability
	}
	n.dirty = false
	if isRoot || n.kind == KindDeterministic {
		for c := range n.children {
			g.keepFrom(c, false)
		}
	}
}

// Restore rolls id and its affected descendants back to their pre-Touch
// values: deterministic descendants discard the tentative recomputation,
// stochastic descendants discard the tentative density and reinstate the
// prior cache. A no-op if id is already clean.
func (g *Graph) Restore(id NodeID) {
	g.muNodes.Lock()
	defer g.muNodes.Unlock()
	g.restoreLocked(id)
}

func (g *Graph) restoreLocked(id NodeID) {
	g.restoreFrom(id, true)
}

func (g *Graph) restoreFrom(id NodeID, isRoot bool) {
	n := g.mustNode(id)
	if !n.dirty {
		return
	}
	switch n.kind {
	case KindDeterministic:
		n.value = n.committedValue
	case KindStochastic:
		n.value = n.committedValue
		n.lnProbability = n.committedLnProbability
	}
	n.dirty = false
	if isRoot || n.kind == KindDeterministic {
		for c := range n.children {
			g.restoreFrom(c, false)
		}
	}
}

// Redraw samples a new value for the stochastic node id from its prior,
// conditioned on id's current parent values, and touches id. Used during
// chain initialization to find a starting state with finite probability,
// and (when this chain is a heated replica in an outer coupled driver) to
// initialize every unclamped stochastic node from its prior.
func (g *Graph) Redraw(id NodeID, src rng.Source) error {
	g.muNodes.Lock()
	defer g.muNodes.Unlock()
	n := g.mustNode(id)
	if n.kind != KindStochastic {
		return ErrNotStochastic
	}
	n.value = n.dist.Redraw(src, g.parentValuesLocked(n.parents))
	g.touchLocked(id)

	return nil
}

// ReInitialize re-marks a clamped stochastic node dirty so its density is
// recomputed at its observed value on the next read, without changing that
// value. It is used by chain initialization when a retry is needed after a
// non-finite joint probability.
func (g *Graph) ReInitialize(id NodeID) error {
	g.muNodes.Lock()
	defer g.muNodes.Unlock()
	n := g.mustNode(id)
	if n.kind != KindStochastic {
		return ErrNotStochastic
	}
	g.touchLocked(id)

	return nil
}

// AffectedSet returns the stochastic nodes whose log-probability depends on
// id through some (possibly deterministic) path, including id itself if it
// is stochastic. This is exactly the set Touch marks stochastic-dirty, and
// is what a move must re-read to form a Metropolis-Hastings ratio. The
// result is memoized per node since a model's topology is static once
// built; it is invalidated whenever an edge is added.
func (g *Graph) AffectedSet(id NodeID) []NodeID {
	g.muNodes.Lock()
	defer g.muNodes.Unlock()
	n := g.mustNode(id)
	if n.affectedValid {
		return append([]NodeID(nil), n.affected...)
	}

	visited := make(map[NodeID]bool)
	var affected []NodeID
	var walk func(cur NodeID, isRoot bool)
	walk = func(cur NodeID, isRoot bool) {
		if visited[cur] {
			return
		}
		visited[cur] = true
		c := g.nodes[cur]
		if c.kind == KindStochastic {
			affected = append(affected, cur)
		}
		if isRoot || c.kind == KindDeterministic {
			for child := range c.children {
				walk(child, false)
			}
		}
	}
	walk(id, true)

	n.affected = affected
	n.affectedValid = true

	return append([]NodeID(nil), affected...)
}

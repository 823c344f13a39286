package dag

// Value returns id's current value, recomputing a dirty deterministic node
// lazily from its parents' current values before returning. Constant and
// stochastic nodes never recompute here: a constant's value never changes,
// and a stochastic node's value only changes via SetValue/Redraw.
func (g *Graph) Value(id NodeID) interface{} {
	g.muNodes.Lock()
	defer g.muNodes.Unlock()
	n := g.mustNode(id)
	if n.kind == KindDeterministic && n.dirty {
		parentValues := g.parentValuesLocked(n.parents)
		n.value = n.transform(parentValues)
	}

	return n.value
}

// SetValue assigns a new value to the stochastic node id and touches it,
// propagating dirtiness to its deterministic and stochastic descendants.
// It returns the affected set: the stochastic nodes (including id itself)
// whose log-probability a move must re-read before deciding acceptance.
// SetValue on a non-stochastic node returns ErrNotStochastic.
func (g *Graph) SetValue(id NodeID, value interface{}) ([]NodeID, error) {
	g.muNodes.Lock()
	n := g.mustNode(id)
	if n.kind != KindStochastic {
		g.muNodes.Unlock()
		return nil, ErrNotStochastic
	}
	n.value = value
	g.touchLocked(id)
	g.muNodes.Unlock()

	return g.AffectedSet(id), nil
}

// LnProbability returns the stochastic node id's log-density, recomputing
// it from id's current value and current parent values if dirty, and
// caching the result. LnProbability on a non-stochastic node returns 0.
func (g *Graph) LnProbability(id NodeID) float64 {
	g.muNodes.Lock()
	defer g.muNodes.Unlock()

	return g.lnProbabilityLocked(id)
}

func (g *Graph) lnProbabilityLocked(id NodeID) float64 {
	n := g.mustNode(id)
	if n.kind != KindStochastic {
		return 0
	}
	if n.dirty {
		n.lnProbability = n.computeLnProbability(g.parentValuesLocked(n.parents))
	}

	return n.lnProbability
}

// LnProbabilitySum is the uncached re-sum of every stochastic node's
// log-probability: each density is recomputed from the node's current value
// and parent values, and a dirty node's cache is updated along the way.
// It is the Go equivalent of getModelLnProbability: an assertion tool, not
// something the driver's hot path should call every cycle.
func (g *Graph) LnProbabilitySum() float64 {
	g.muNodes.Lock()
	defer g.muNodes.Unlock()

	var sum float64
	for _, n := range g.nodes {
		if n.kind != KindStochastic {
			continue
		}
		fresh := n.computeLnProbability(g.parentValuesLocked(n.parents))
		if n.dirty {
			n.lnProbability = fresh
		}
		sum += fresh
	}

	return sum
}

package dag

import "math"

// StochasticTopologicalOrder returns every stochastic node reachable from
// entry, ordered so that every stochastic ancestor of a node precedes it
// (parents before children for stochastic nodes; ties broken by visitation
// order). It visits parents before a node and children after, so it finds
// every stochastic node in the connected component containing entry
// regardless of which node that component's construction started from.
//
// Adapted from the depth-first cycle-detection walk this package's
// design descends from: the same visited-guarded recursive descent, but
// collecting a stochastic node once its parents have been visited (and
// before its children) instead of detecting back-edges.
func (g *Graph) StochasticTopologicalOrder(entry NodeID) []NodeID {
	g.muNodes.RLock()
	defer g.muNodes.RUnlock()

	visited := make(map[NodeID]bool)
	var ordered []NodeID

	var visit func(id NodeID)
	visit = func(id NodeID) {
		if visited[id] {
			return
		}
		visited[id] = true
		n := g.nodes[id]

		for _, p := range n.parents {
			visit(p)
		}
		if n.kind == KindStochastic {
			ordered = append(ordered, id)
		}
		for c := range n.children {
			visit(c)
		}
	}
	visit(entry)

	return ordered
}

// Computable reports whether x is a usable log-probability: finite and not
// NaN. A non-computable value during chain initialization triggers a
// redraw-and-retry; one found during steady-state debug consistency
// checking is fatal (see package mcmc).
func Computable(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

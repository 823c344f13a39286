package dag

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	g.muNodes.RLock()
	defer g.muNodes.RUnlock()

	return len(g.nodes)
}

// NodeIDs returns every NodeID in the graph, in arena (construction) order,
// which is always a valid topological order since a node's parents must
// exist before it can be added.
func (g *Graph) NodeIDs() []NodeID {
	g.muNodes.RLock()
	defer g.muNodes.RUnlock()

	ids := make([]NodeID, len(g.nodes))
	for i := range g.nodes {
		ids[i] = NodeID(i)
	}

	return ids
}

// Lookup returns the NodeID registered under name, and whether it exists.
func (g *Graph) Lookup(name string) (NodeID, bool) {
	g.muNames.RLock()
	defer g.muNames.RUnlock()
	id, ok := g.byName[name]

	return id, ok
}

func (g *Graph) mustNode(id NodeID) *node {
	if int(id) < 0 || int(id) >= len(g.nodes) {
		panic(ErrNodeNotFound)
	}

	return g.nodes[id]
}

// Name returns id's name, or "" if it is anonymous.
func (g *Graph) Name(id NodeID) string {
	g.muNodes.RLock()
	defer g.muNodes.RUnlock()

	return g.mustNode(id).name
}

// NodeKind returns id's Kind.
func (g *Graph) NodeKind(id NodeID) Kind {
	g.muNodes.RLock()
	defer g.muNodes.RUnlock()

	return g.mustNode(id).kind
}

// IsConstant reports whether id is a constant node.
func (g *Graph) IsConstant(id NodeID) bool { return g.NodeKind(id) == KindConstant }

// IsDeterministic reports whether id is a deterministic node.
func (g *Graph) IsDeterministic(id NodeID) bool { return g.NodeKind(id) == KindDeterministic }

// IsStochastic reports whether id is a stochastic node.
func (g *Graph) IsStochastic(id NodeID) bool { return g.NodeKind(id) == KindStochastic }

// IsClamped reports whether id is an observed stochastic node.
func (g *Graph) IsClamped(id NodeID) bool {
	g.muNodes.RLock()
	defer g.muNodes.RUnlock()

	return g.mustNode(id).clamped
}

// Parents returns id's parents, in construction order.
func (g *Graph) Parents(id NodeID) []NodeID {
	g.muNodes.RLock()
	defer g.muNodes.RUnlock()
	n := g.mustNode(id)

	return append([]NodeID(nil), n.parents...)
}

// Children returns id's children, order unspecified.
func (g *Graph) Children(id NodeID) []NodeID {
	g.muNodes.RLock()
	defer g.muNodes.RUnlock()
	n := g.mustNode(id)
	out := make([]NodeID, 0, len(n.children))
	for c := range n.children {
		out = append(out, c)
	}

	return out
}

// Distribution returns id's Distribution, or nil if id is not stochastic.
func (g *Graph) Distribution(id NodeID) Distribution {
	g.muNodes.RLock()
	defer g.muNodes.RUnlock()

	return g.mustNode(id).dist
}

// Transform returns id's DeterministicFunc, or nil if id is not deterministic.
func (g *Graph) Transform(id NodeID) DeterministicFunc {
	g.muNodes.RLock()
	defer g.muNodes.RUnlock()

	return g.mustNode(id).transform
}

// IsDirty reports whether id's value or cached log-probability is stale.
func (g *Graph) IsDirty(id NodeID) bool {
	g.muNodes.RLock()
	defer g.muNodes.RUnlock()

	return g.mustNode(id).dirty
}

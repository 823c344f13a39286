package dag

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:  make([]*node, 0),
		byName: make(map[string]NodeID),
	}
}

// AddConstant registers a constant node holding value and returns its
// NodeID. name may be empty for an anonymous intermediate; a non-empty name
// must be unique in the graph (ErrDuplicateName otherwise).
func (g *Graph) AddConstant(name string, value interface{}) (NodeID, error) {
	return g.add(name, KindConstant, value, nil, nil, false, nil)
}

// AddDeterministic registers a deterministic node computed by fn over the
// given parents (evaluated in this order), and returns its NodeID. Every
// parent must already exist in g.
func (g *Graph) AddDeterministic(name string, fn DeterministicFunc, parents ...NodeID) (NodeID, error) {
	if fn == nil {
		panic("dag: AddDeterministic: fn is nil")
	}

	return g.add(name, KindDeterministic, nil, fn, parents, false, nil)
}

// AddStochastic registers a stochastic node with the given distribution,
// initial value, and parents (evaluated in this order), and returns its
// NodeID. clamped marks the node as observed: its value is fixed but its
// density still contributes to the joint log-probability.
func (g *Graph) AddStochastic(name string, d Distribution, initial interface{}, clamped bool, parents ...NodeID) (NodeID, error) {
	if d == nil {
		panic("dag: AddStochastic: distribution is nil")
	}

	return g.add(name, KindStochastic, initial, nil, parents, clamped, d)
}

func (g *Graph) add(name string, kind Kind, value interface{}, fn DeterministicFunc, parents []NodeID, clamped bool, d Distribution) (NodeID, error) {
	g.muNames.Lock()
	if name != "" {
		if _, exists := g.byName[name]; exists {
			g.muNames.Unlock()
			return 0, ErrDuplicateName
		}
	}

	g.muNodes.Lock()
	for _, p := range parents {
		if int(p) < 0 || int(p) >= len(g.nodes) {
			g.muNodes.Unlock()
			g.muNames.Unlock()
			return 0, ErrUnknownParent
		}
	}

	id := NodeID(len(g.nodes))
	n := &node{
		id:       id,
		name:     name,
		kind:     kind,
		parents:  append([]NodeID(nil), parents...),
		children: make(map[NodeID]struct{}),
		dist:     d,
		transform: fn,
		value:    value,
		clamped:  clamped,
	}
	switch kind {
	case KindDeterministic:
		n.value = n.transform(g.parentValuesLocked(parents))
	case KindStochastic:
		n.lnProbability = n.computeLnProbability(g.parentValuesLocked(parents))
		n.committedLnProbability = n.lnProbability
	}
	n.committedValue = n.value
	g.nodes = append(g.nodes, n)
	for _, p := range parents {
		g.nodes[p].children[id] = struct{}{}
	}
	g.invalidateAffectedLocked()
	g.muNodes.Unlock()

	if name != "" {
		g.byName[name] = id
	}
	g.muNames.Unlock()

	return id, nil
}

// parentValuesLocked reads the current values of the given parents,
// recomputing a dirty deterministic parent first. Caller must hold muNodes.
func (g *Graph) parentValuesLocked(parents []NodeID) []interface{} {
	if len(parents) == 0 {
		return nil
	}
	vals := make([]interface{}, len(parents))
	for i, p := range parents {
		pn := g.nodes[p]
		if pn.kind == KindDeterministic && pn.dirty {
			pn.value = pn.transform(g.parentValuesLocked(pn.parents))
		}
		vals[i] = pn.value
	}

	return vals
}

// invalidateAffectedLocked drops every node's memoized affected set. Called
// whenever an edge is added; cheap because it only happens during model
// construction, never once a chain is running. Caller must hold muNodes.
func (g *Graph) invalidateAffectedLocked() {
	for _, n := range g.nodes {
		n.affectedValid = false
	}
}

func (n *node) computeLnProbability(parentValues []interface{}) float64 {
	return n.dist.LnProbability(n.value, parentValues)
}

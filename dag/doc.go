// Package dag implements the directed acyclic graph substrate that backs
// every probabilistic model in revgo: a flat arena of nodes addressed by
// stable index, three node kinds (constant, deterministic, stochastic),
// and the touch/keep/restore change-tracking protocol moves rely on to
// localize log-probability recomputation under a proposal.
//
// A Graph owns its nodes. Parent/child relations are stored as index sets
// rather than pointers, so cloning a Graph (see package model) rewires
// O(1) per edge instead of walking a pointer graph.
//
// Node kinds:
//
//	Constant      — fixed value, never touched, contributes no density.
//	Deterministic — value is a pure function of its parents, recomputed
//	                lazily on read when dirty.
//	Stochastic    — has a density (LnProbability) over its value given its
//	                parents; may be clamped (observed) or free.
//
// Concurrency: a Graph's node table and name index are guarded by
// separate sync.RWMutex locks (muNodes, muNames), mirroring the split-lock
// discipline of the graph library this package descends from. A single
// chain drives its own Graph single-threaded; the locks exist so an outer
// coupler can read node values from another goroutine between cycles
// without racing the chain that owns the graph.
package dag

// Package monitor defines the periodic-observation contract the chain
// driver dispatches to after every committed cycle: a Monitor watches a set
// of named nodes (and the chain's joint log-probability) and emits a row
// when the generation counter is a multiple of its period.
//
// Like a Move, a Monitor holds its watched nodes by name until bound to a
// concrete model.Model, and can be rebound onto a cloned model the same
// way (see model.Rebind).
package monitor

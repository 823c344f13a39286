// Package move defines the proposal-kernel contract a chain drives: a Move
// perturbs one or more stochastic nodes inside a model.Model and reports a
// Hastings ratio, or performs an unconditionally-accepted Gibbs step.
//
// A Move never owns the nodes it targets — it holds them by name until
// bound to a concrete model.Model's dag.Graph, and by dag.NodeID afterward —
// so the same Move value can be cloned and rebound to a cloned Model
// (see model.Rebind) the way the driver rebinds moves onto its own clone.
//
// Schedule then wraps a set of Moves with a selection policy: RandomSchedule
// samples proportional to weight, SequentialSchedule cycles deterministically.
// The chain driver treats both through the Schedule interface and never
// assumes anything about how a schedule picks its next move beyond what it
// reports.
package move

// Package dist implements dag.Distribution for a handful of concrete
// densities, backing their log-density evaluation with gonum's distuv
// package and their sampling with the package-wide rng.Source rather than
// gonum's own *rand.Rand threading, so a single explicit source drives both
// the DAG's proposals and its priors.
//
// Grounded on the "Model holds stochastic/deterministic/observed nodes,
// each node's distribution computing its own log-probability and draw"
// shape this package's design descends from, narrowed here to the
// dag.Distribution contract: LnProbability and Redraw, nothing else.
package dist

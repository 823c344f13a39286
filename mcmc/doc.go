// Package mcmc implements the chain driver: construction from an external
// model/moves/monitors triple, chain initialization, the steady-state
// run loop, burn-in with auto-tuning, and the tempered Metropolis–Hastings
// acceptance rule.
//
// A Chain owns a detached model.Model clone and its own clones of every
// move and monitor, rebound onto that clone (see model.Rebind), so several
// Chains can be constructed from the same external model/moves/monitors
// without sharing mutable state — the arrangement an outer Metropolis-
// coupled driver needs to run several heated replicas side by side.
//
// Grounded line-for-line on Mcmc.cpp: initializeChain's retry loop,
// nextCycle's tempered acceptance test, run's monitor opening at generation
// 0, and burnin's cumulative-counter auto-tune cadence all follow
// that file's control flow, adapted from RevBayesCore's pointer-owning
// vectors to Go slices of the move.Move/monitor.Monitor interfaces.
package mcmc

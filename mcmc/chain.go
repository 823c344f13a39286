package mcmc

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/armanbilge/revgo/dag"
	"github.com/armanbilge/revgo/model"
	"github.com/armanbilge/revgo/monitor"
	"github.com/armanbilge/revgo/move"
)

// maxInitTries bounds the number of redraw-and-retry attempts
// initializeChain makes to find a starting state with finite joint
// log-probability, mirroring Mcmc.cpp's MAX_INIT_TRIES.
const maxInitTries = 100

// underflowGuard is the log-ratio floor below which an acceptance test
// rejects without drawing a uniform, avoiding a spurious exp underflow to
// zero being compared against a uniform draw that could itself round to
// zero. Mirrors Mcmc.cpp's -300 cutoff.
const underflowGuard = -300.0

// consistencyTolerance is the maximum allowed drift between the driver's
// incrementally cached joint log-probability and an uncached re-sum when
// WithDebugConsistencyCheck is enabled.
const consistencyTolerance = 1e-8

// ErrInitialization indicates initializeChain exhausted maxInitTries
// without finding a starting state with finite joint log-probability.
var ErrInitialization = errors.New("mcmc: failed to find a starting state with finite probability")

// ErrConsistency indicates the debug consistency check found the driver's
// cached joint log-probability had drifted from an uncached re-sum by more
// than consistencyTolerance.
var ErrConsistency = errors.New("mcmc: cached log-probability diverged from re-sum")

// Chain drives a single Markov chain over a cloned model.Model: it owns
// independent clones of every move and monitor supplied at construction,
// rebound onto its own model clone, and repeatedly proposes, accepts or
// rejects, and (outside burn-in) fires monitors.
//
// Grounded on Mcmc.cpp/Mcmc.h: Chain is the Go analogue of the Mcmc class,
// generalized from a single cold chain to one that an outer Metropolis-
// coupled driver can construct several independent, heated copies of via
// WithChainHeat/WithChainIndex/WithChainActive.
type Chain struct {
	cfg *config

	mdl      *model.Model
	schedule move.Schedule
	monitors []monitor.Monitor

	generation int
	lnPrior    float64 // sum over every stochastic node's lnProbability
}

// Construct clones external into an independent model.Model, clones and
// rebinds every move and monitor onto that clone, wires each monitor's
// model/chain context, and runs initializeChain to find a starting state
// with finite joint probability. Monitor streams are opened by Run.
func Construct(external *dag.Graph, moves []move.Move, monitors []monitor.Monitor, opts ...Option) (*Chain, error) {
	cfg := newConfig(opts...)
	mdl := model.New(external)

	clonedMoves := make([]move.Move, len(moves))
	for i, m := range moves {
		clone := m.Clone()
		if err := model.Rebind(mdl, clone); err != nil {
			return nil, fmt.Errorf("mcmc: construct: move %d: %w", i, err)
		}
		clonedMoves[i] = clone
	}

	clonedMonitors := make([]monitor.Monitor, len(monitors))
	for i, mon := range monitors {
		clone := mon.Clone()
		if err := model.Rebind(mdl, clone); err != nil {
			return nil, fmt.Errorf("mcmc: construct: monitor %d: %w", i, err)
		}
		clone.SetModel(mdl.Graph())
		clonedMonitors[i] = clone
	}

	c := &Chain{
		cfg:      cfg,
		mdl:      mdl,
		schedule: move.NewRandomSchedule(clonedMoves),
		monitors: clonedMonitors,
	}
	for _, mon := range c.monitors {
		mon.SetChain(c)
	}

	if err := c.initializeChain(); err != nil {
		return nil, err
	}

	return c, nil
}

// ChainActive reports whether this chain is the cold (unheated) chain
// driving monitor header emission, satisfying monitor.ChainContext.
func (c *Chain) ChainActive() bool { return c.cfg.chainActive }

// LnPosterior returns the chain's current joint log-probability, satisfying
// monitor.ChainContext.
func (c *Chain) LnPosterior() float64 { return c.lnPrior }

// ChainHeat returns the inverse-temperature multiplier applied to the log
// prior+likelihood ratio in the acceptance test.
func (c *Chain) ChainHeat() float64 { return c.cfg.chainHeat }

// ChainIndex returns the opaque index an outer coupled driver identifies
// this chain by.
func (c *Chain) ChainIndex() int { return c.cfg.chainIdx }

// Generation returns the number of cycles advanced since the most recent
// initializeChain.
func (c *Chain) Generation() int { return c.generation }

// Model returns the chain's own cloned, detached dag.Graph.
func (c *Chain) Model() *dag.Graph { return c.mdl.Graph() }

// initializeChain touches every node in the model so deterministic values
// and stochastic densities are computed at least once, and — only if this
// chain is inactive (heated) — redraws every unclamped stochastic node from
// its prior in a single pass. It then retries up to maxInitTries times:
// recomputing the joint log-probability, and, on every non-finite attempt
// regardless of chainActive, unconditionally redrawing unclamped stochastic
// nodes (and reinitializing clamped ones) before trying again. It gives up
// with ErrInitialization if no attempt lands on a finite joint probability,
// and otherwise finishes by building a fresh random schedule and resetting
// the generation counter to 0.
//
// Grounded on Mcmc::initializeChain: the touch-all pass, the one-time
// active-chain/heated-chain branch on whether nodes are redrawn from their
// prior (Mcmc.cpp:263-281), and the separate MAX_INIT_TRIES retry loop whose
// redraw-on-non-finite has no chainActive condition at all (Mcmc.cpp:314-329).
func (c *Chain) initializeChain() error {
	g := c.mdl.Graph()

	touchAndRecompute := func() float64 {
		for _, id := range g.NodeIDs() {
			g.Touch(id)
		}
		for _, id := range g.NodeIDs() {
			if !g.IsStochastic(id) {
				g.Value(id) // force deterministic recompute
			}
		}

		sum := g.LnProbabilitySum()
		for _, id := range g.NodeIDs() {
			if g.IsDirty(id) {
				g.Keep(id)
			}
		}

		return sum
	}

	redrawUnclamped := func() error {
		for _, id := range g.NodeIDs() {
			if !g.IsStochastic(id) {
				continue
			}
			if g.IsClamped(id) {
				if err := g.ReInitialize(id); err != nil {
					return fmt.Errorf("mcmc: initializeChain: %w", err)
				}
				continue
			}
			if err := g.Redraw(id, c.cfg.src); err != nil {
				return fmt.Errorf("mcmc: initializeChain: %w", err)
			}
		}

		return nil
	}

	if !c.cfg.chainActive {
		if err := redrawUnclamped(); err != nil {
			return err
		}
	}

	for attempt := 0; attempt < maxInitTries; attempt++ {
		sum := touchAndRecompute()

		if dag.Computable(sum) {
			c.lnPrior = sum
			c.schedule = move.NewRandomSchedule(c.schedule.Moves())
			c.generation = 0

			return nil
		}

		if err := redrawUnclamped(); err != nil {
			return err
		}
	}

	return ErrInitialization
}

// nextCycle draws NumberOfMovesPerIteration proposals from the schedule,
// accepting or rejecting each independently, and (if advanceGeneration)
// increments the generation counter at the end. It returns the number of
// proposals accepted.
//
// Grounded on Mcmc::nextCycle: the Gibbs/Metropolis-Hastings branch per
// move, the tempered acceptance test lnR = chainHeat*lnPriorRatio +
// lnHastingsRatio, the underflow guard rejecting without a uniform draw
// below -300, and accepting outright when lnR >= 0.
func (c *Chain) nextCycle(advanceGeneration bool) (int, error) {
	g := c.mdl.Graph()
	n := c.schedule.NumberOfMovesPerIteration()
	accepted := 0

	for i := 0; i < n; i++ {
		m := c.schedule.NextMove(c.generation, c.cfg.src)

		if m.IsGibbs() {
			if err := m.PerformGibbs(g, c.cfg.src); err != nil {
				return accepted, fmt.Errorf("mcmc: nextCycle: gibbs move: %w", err)
			}
			m.Accept(g)
			accepted++
			c.lnPrior = g.LnProbabilitySum()
			continue
		}

		lnHastingsRatio, lnPriorRatio, err := m.Perform(g, c.cfg.src)
		if err != nil {
			if errors.Is(err, move.ErrInvalidProposal) {
				m.Reject(g)
				continue
			}

			return accepted, fmt.Errorf("mcmc: nextCycle: %w", err)
		}

		lnR := c.cfg.chainHeat*lnPriorRatio + lnHastingsRatio
		if lnR >= 0 {
			m.Accept(g)
			accepted++
			c.lnPrior += lnPriorRatio
		} else if lnR < underflowGuard {
			m.Reject(g)
		} else if c.cfg.src.Float64() < math.Exp(lnR) {
			m.Accept(g)
			accepted++
			c.lnPrior += lnPriorRatio
		} else {
			m.Reject(g)
		}

		if c.cfg.debugConsistencyCheck {
			if err := c.checkConsistency(); err != nil {
				return accepted, err
			}
		}
	}

	if advanceGeneration {
		c.generation++
	}

	return accepted, nil
}

func (c *Chain) checkConsistency() error {
	resum := c.mdl.Graph().LnProbabilitySum()
	if math.Abs(resum-c.lnPrior) > consistencyTolerance {
		return fmt.Errorf("mcmc: checkConsistency: cached %v vs re-sum %v: %w", c.lnPrior, resum, ErrConsistency)
	}

	return nil
}

// Run re-initializes the chain and advances it k cycles, firing every
// monitor after each cycle. Since initializeChain resets the generation to
// 0, every call also opens each monitor's stream, prints its header, and
// fires it for generation 0 before the first cycle.
//
// Grounded on Mcmc::run: the unconditional re-initializeChain and
// reset-move-counters at entry, the generation==0 gate on startMonitors and
// an initial Monitor(0) call, and the post-cycle Monitor(generation) calls.
func (c *Chain) Run(k int) error {
	if err := c.initializeChain(); err != nil {
		return err
	}
	for _, m := range c.schedule.Moves() {
		m.ResetCounters()
	}

	if c.generation == 0 {
		for _, mon := range c.monitors {
			if err := mon.OpenStream(); err != nil {
				return fmt.Errorf("mcmc: run: %w", err)
			}
			mon.PrintHeader()
			if err := mon.Monitor(0); err != nil {
				return fmt.Errorf("mcmc: run: %w", err)
			}
		}
	}

	for i := 0; i < k; i++ {
		if _, err := c.nextCycle(true); err != nil {
			return err
		}
		for _, mon := range c.monitors {
			if err := mon.Monitor(c.generation); err != nil {
				return fmt.Errorf("mcmc: run: %w", err)
			}
		}
	}

	return nil
}

// Burnin re-initializes the chain and advances it k cycles without firing
// any monitor, auto-tuning every move every tuningInterval cycles, and
// printing a cosmetic 20-hash progress bar to the configured progress
// writer if this chain is active.
//
// Grounded on Mcmc::burnin: the re-initializeChain and reset-move-counters
// at entry, the tuningInterval-gated autoTune() call, the active-chain-only
// progress bar with a print interval of max(1, k/20.0), and the absence of
// any monitor firing during burn-in.
func (c *Chain) Burnin(k int, tuningInterval int) error {
	if err := c.initializeChain(); err != nil {
		return err
	}
	for _, m := range c.schedule.Moves() {
		m.ResetCounters()
	}

	printInterval := k / 20
	if printInterval < 1 {
		printInterval = 1
	}
	hashesPrinted := 0

	for i := 1; i <= k; i++ {
		if _, err := c.nextCycle(false); err != nil {
			return err
		}

		if tuningInterval > 0 && i%tuningInterval == 0 {
			for _, m := range c.schedule.Moves() {
				m.AutoTune()
			}
		}

		if c.cfg.chainActive && i%printInterval == 0 && hashesPrinted < 20 {
			hashesPrinted++
			fmt.Fprint(c.cfg.progressWriter, "#")
		}
	}
	if c.cfg.chainActive {
		fmt.Fprintln(c.cfg.progressWriter)
	}

	return nil
}

// Close closes every monitor this chain owns, flushing any buffered output
// (e.g. a monitor.FileMonitor's writer). It closes every monitor even if an
// earlier one errors, and returns the first error encountered, if any.
//
// Grounded on spec.md §4.6's "released at driver destruction": Construct
// clones each caller-supplied monitor into an internal, chain-owned
// instance that only Close can reach.
func (c *Chain) Close() error {
	var first error
	for _, mon := range c.monitors {
		if err := mon.Close(); err != nil && first == nil {
			first = fmt.Errorf("mcmc: close: %w", err)
		}
	}

	return first
}

// PrintOperatorSummary writes a header row followed by one row per move
// (name, target, weight, tried, accepted, acceptance ratio, tuning
// parameter), mirroring Mcmc::printOperatorSummary.
func (c *Chain) PrintOperatorSummary(w io.Writer) {
	fmt.Fprintln(w, "Move                 Target       Weight  Tried     Accepted  Ratio   Tuning")
	for _, m := range c.schedule.Moves() {
		m.PrintSummary(w)
	}
}

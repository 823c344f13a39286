package mcmc_test

import (
	"bufio"
	"bytes"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/armanbilge/revgo/dag"
	"github.com/armanbilge/revgo/mcmc"
	"github.com/armanbilge/revgo/monitor"
	"github.com/armanbilge/revgo/move"
	"github.com/armanbilge/revgo/rng"
)

// lastColumnSamples parses a ConsoleMonitor's tab-separated output (skipping
// the header row) and returns every numeric value in its final column, in
// emission order.
func lastColumnSamples(t *testing.T, buf *bytes.Buffer) []float64 {
	t.Helper()
	scanner := bufio.NewScanner(buf)
	var samples []float64
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			continue // header row
		}
		samples = append(samples, v)
	}

	return samples
}

func meanAndVariance(samples []float64) (mean, variance float64) {
	var sum, sumSq float64
	for _, v := range samples {
		sum += v
		sumSq += v * v
	}
	n := float64(len(samples))
	mean = sum / n
	variance = sumSq/n - mean*mean

	return mean, variance
}

// operatorStat reads one numeric field ("tried", "accepted", "lambda", ...)
// from the first move row of c's operator summary. Construct clones every
// move it is given, so the counters and tuning parameter the chain actually
// updates are only visible through the chain itself.
func operatorStat(t *testing.T, c *mcmc.Chain, field string) float64 {
	t.Helper()
	var buf bytes.Buffer
	c.PrintOperatorSummary(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	for _, tok := range strings.Fields(lines[1]) {
		if strings.HasPrefix(tok, field+"=") {
			v, err := strconv.ParseFloat(strings.TrimPrefix(tok, field+"="), 64)
			require.NoError(t, err)

			return v
		}
	}
	t.Fatalf("no %q field in operator summary row %q", field, lines[1])

	return 0
}

type uniformDist struct{ lo, hi float64 }

func (d uniformDist) LnProbability(value interface{}, parents []interface{}) float64 {
	v := value.(float64)
	if v < d.lo || v > d.hi {
		return math.Inf(-1)
	}

	return -math.Log(d.hi - d.lo)
}

func (d uniformDist) Redraw(src rng.Source, parents []interface{}) interface{} {
	return d.lo + src.Float64()*(d.hi-d.lo)
}

// alwaysInfiniteDist never has finite log-probability, forcing
// initializeChain to exhaust its retry budget.
type alwaysInfiniteDist struct{}

func (alwaysInfiniteDist) LnProbability(value interface{}, parents []interface{}) float64 {
	return math.Inf(-1)
}

func (alwaysInfiniteDist) Redraw(src rng.Source, parents []interface{}) interface{} {
	return 0.0
}

// normalDist is Normal(mu, sigma); a first parent value, when present,
// replaces mu as the mean.
type normalDist struct{ mu, sigma float64 }

func (d normalDist) mean(parents []interface{}) float64 {
	if len(parents) >= 1 {
		return parents[0].(float64)
	}

	return d.mu
}

func (d normalDist) LnProbability(value interface{}, parents []interface{}) float64 {
	v := value.(float64)
	z := (v - d.mean(parents)) / d.sigma

	return -0.5*z*z - math.Log(d.sigma) - 0.5*math.Log(2*math.Pi)
}

func (d normalDist) Redraw(src rng.Source, parents []interface{}) interface{} {
	return d.mean(parents) + d.sigma*src.NormFloat64()
}

func buildUniformModel(t *testing.T, initial float64) *dag.Graph {
	t.Helper()
	g := dag.NewGraph()
	_, err := g.AddStochastic("x", uniformDist{lo: 0, hi: 10}, initial, false)
	require.NoError(t, err)

	return g
}

func TestConstructFindsFiniteStartingState(t *testing.T) {
	g := buildUniformModel(t, 5.0)
	m := move.NewScaleMove("x", 1.0, 1.0)

	c, err := mcmc.Construct(g, []move.Move{m}, nil, mcmc.WithSeed(1))
	require.NoError(t, err)
	require.False(t, math.IsInf(c.LnPosterior(), -1))
	require.Equal(t, 0, c.Generation())
}

func TestConstructFailsWhenNoFiniteStateExists(t *testing.T) {
	g := dag.NewGraph()
	_, err := g.AddStochastic("x", alwaysInfiniteDist{}, 0.0, false)
	require.NoError(t, err)
	m := move.NewScaleMove("x", 1.0, 1.0)

	_, err = mcmc.Construct(g, []move.Move{m}, nil, mcmc.WithSeed(1))
	require.ErrorIs(t, err, mcmc.ErrInitialization)
}

func TestConstructRebindsMoveToClonedTarget(t *testing.T) {
	g := dag.NewGraph()
	_, err := g.AddStochastic("a", uniformDist{lo: 0, hi: 10}, 4.0, false)
	require.NoError(t, err)
	externalB, err := g.AddStochastic("b", uniformDist{lo: 0, hi: 10}, 6.0, false)
	require.NoError(t, err)
	m := move.NewScaleMove("b", 1.0, 1.0)

	c, err := mcmc.Construct(g, []move.Move{m}, nil, mcmc.WithSeed(1))
	require.NoError(t, err)

	_, ok := c.Model().Lookup("b")
	require.True(t, ok)

	externalBefore := g.Value(externalB)
	require.NoError(t, c.Run(20))
	require.Equal(t, externalBefore, g.Value(externalB)) // external graph untouched by the clone's run
}

func TestRunAdvancesGenerationAndFiresMonitorAtZero(t *testing.T) {
	g := buildUniformModel(t, 5.0)
	m := move.NewScaleMove("x", 1.0, 1.0)
	var buf bytes.Buffer
	mon := monitor.NewConsoleMonitor(&buf, 1, "x")

	c, err := mcmc.Construct(g, []move.Move{m}, []monitor.Monitor{mon}, mcmc.WithSeed(2))
	require.NoError(t, err)

	require.NoError(t, c.Run(5))
	require.Equal(t, 5, c.Generation())
	out := buf.String()
	require.Contains(t, out, "Generation")
	require.Contains(t, out, "0\t") // generation 0 fired before the first cycle
}

func TestBurninNeverFiresMonitors(t *testing.T) {
	g := buildUniformModel(t, 5.0)
	m := move.NewScaleMove("x", 1.0, 1.0)
	var monBuf, progressBuf bytes.Buffer
	mon := monitor.NewConsoleMonitor(&monBuf, 1, "x")

	c, err := mcmc.Construct(g, []move.Move{m}, []monitor.Monitor{mon}, mcmc.WithSeed(3), mcmc.WithProgressWriter(&progressBuf))
	require.NoError(t, err)

	require.NoError(t, c.Burnin(100, 10))
	require.Empty(t, monBuf.String())
	require.NotEmpty(t, progressBuf.String())
}

func TestBurninAutoTunesTowardTargetRate(t *testing.T) {
	g := buildUniformModel(t, 5.0)
	m := move.NewScaleMove("x", 10.0, 1.0)

	c, err := mcmc.Construct(g, []move.Move{m}, nil, mcmc.WithSeed(4))
	require.NoError(t, err)

	require.NoError(t, c.Burnin(1000, 20))
	require.NotEqual(t, 10.0, operatorStat(t, c, "lambda"))
}

// TestScaleMoveSamplesUniformPriorToWithinBounds is scenario A: a single
// stochastic node with a flat Uniform(0,10) prior, one ScaleMove, 10,000
// cycles, checked against the prior's known mean and variance.
func TestScaleMoveSamplesUniformPriorToWithinBounds(t *testing.T) {
	g := buildUniformModel(t, 5.0)
	m := move.NewScaleMove("x", 1.0, 1.0)
	var buf bytes.Buffer
	mon := monitor.NewConsoleMonitor(&buf, 1, "x")

	c, err := mcmc.Construct(g, []move.Move{m}, []monitor.Monitor{mon}, mcmc.WithSeed(42))
	require.NoError(t, err)

	const cycles = 10000
	require.NoError(t, c.Run(cycles))
	require.NoError(t, c.Close())

	mean, variance := meanAndVariance(lastColumnSamples(t, &buf))
	require.InDelta(t, 5.0, mean, 0.5)
	require.GreaterOrEqual(t, variance, 7.0)
	require.LessOrEqual(t, variance, 9.67)
}

// TestClampedNormalPosteriorMeanConvergesNearData is scenario B: a
// hierarchical Normal(mu, sigma) model with the child clamped to an
// observation, inferring mu's posterior mean after burn-in.
func TestClampedNormalPosteriorMeanConvergesNearData(t *testing.T) {
	g := dag.NewGraph()
	// ScaleMove's multiplicative kernel never changes a value's sign, so mu
	// must start positive for the move to stay valid across the whole run.
	_, err := g.AddStochastic("mu", normalDist{mu: 0, sigma: 10}, 1.0, false)
	require.NoError(t, err)
	muID, _ := g.Lookup("mu")
	_, err = g.AddStochastic("y", normalDist{mu: 0, sigma: 1}, 3.0, true, muID)
	require.NoError(t, err)

	m := move.NewScaleMove("mu", 1.0, 1.0)
	var buf bytes.Buffer
	mon := monitor.NewConsoleMonitor(&buf, 1, "mu")

	c, err := mcmc.Construct(g, []move.Move{m}, []monitor.Monitor{mon}, mcmc.WithSeed(7))
	require.NoError(t, err)

	require.NoError(t, c.Burnin(2000, 100))
	require.NoError(t, c.Run(20000))
	require.NoError(t, c.Close())

	mean, _ := meanAndVariance(lastColumnSamples(t, &buf))
	require.GreaterOrEqual(t, mean, 2.8)
	require.LessOrEqual(t, mean, 3.2)
}

// TestBurninAutoTuneConvergesNearTargetAcceptanceRate is scenario F: starting
// from an oversized lambda, 50 tuning intervals should pull ScaleMove's
// acceptance rate to within 0.1 of the 0.44 target.
func TestBurninAutoTuneConvergesNearTargetAcceptanceRate(t *testing.T) {
	g := buildUniformModel(t, 5.0)
	m := move.NewScaleMove("x", 10.0, 1.0)

	c, err := mcmc.Construct(g, []move.Move{m}, nil, mcmc.WithSeed(8))
	require.NoError(t, err)

	const tuningInterval = 20
	require.NoError(t, c.Burnin(tuningInterval*50, tuningInterval))

	rate := operatorStat(t, c, "accepted") / operatorStat(t, c, "tried")
	require.InDelta(t, 0.44, rate, 0.1)
}

func TestChainHeatZeroIgnoresPriorRatio(t *testing.T) {
	g := dag.NewGraph()
	_, err := g.AddStochastic("x", normalDist{mu: 0, sigma: 1}, 0.0, false)
	require.NoError(t, err)
	m := move.NewSlideMove("x", 0.1, 1.0)

	c, err := mcmc.Construct(g, []move.Move{m}, nil, mcmc.WithSeed(5), mcmc.WithChainHeat(0), mcmc.WithChainActive(false))
	require.NoError(t, err)
	require.Equal(t, 0.0, c.ChainHeat())

	require.NoError(t, c.Run(200))
	require.True(t, operatorStat(t, c, "accepted") > 0)
}

func TestGibbsMoveCountersIncrementEquallyOverManyCycles(t *testing.T) {
	g := dag.NewGraph()
	_, err := g.AddStochastic("x", uniformDist{lo: 0, hi: 10}, 1.0, false)
	require.NoError(t, err)
	sampler := func(src rng.Source, parents []interface{}) interface{} {
		return src.Float64() * 10
	}
	m := move.NewGibbsMove("x", sampler, 1.0)

	c, err := mcmc.Construct(g, []move.Move{m}, nil, mcmc.WithSeed(6))
	require.NoError(t, err)

	require.NoError(t, c.Run(50))
	require.Equal(t, operatorStat(t, c, "tried"), operatorStat(t, c, "accepted"))
	require.True(t, operatorStat(t, c, "tried") > 0)
}

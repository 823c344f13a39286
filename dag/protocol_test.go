package dag_test

import (
	"math"
	"testing"

	"github.com/armanbilge/revgo/dag"
	"github.com/armanbilge/revgo/rng"
)

// constDist is a minimal dag.Distribution used purely to exercise the
// change-tracking protocol: its log-density is a fixed function of value
// and parents so tests can assert exact numbers.
type constDist struct{}

func (constDist) LnProbability(value interface{}, parents []interface{}) float64 {
	v := value.(float64)
	sum := 0.0
	for _, p := range parents {
		sum += p.(float64)
	}

	return -0.5 * (v - sum) * (v - sum)
}

func (constDist) Redraw(src rng.Source, parents []interface{}) interface{} {
	return src.Float64()
}

// buildChain constructs mu (stochastic, no parents) -> twice (deterministic,
// doubles mu) -> y (stochastic, density depends on twice(mu)).
func buildChain(t *testing.T) (g *dag.Graph, mu, twice, y dag.NodeID) {
	t.Helper()
	g = dag.NewGraph()
	var err error
	mu, err = g.AddStochastic("mu", constDist{}, 1.0, false)
	if err != nil {
		t.Fatalf("AddStochastic(mu): %v", err)
	}
	twice, err = g.AddDeterministic("twice", func(parents []interface{}) interface{} {
		return parents[0].(float64) * 2
	}, mu)
	if err != nil {
		t.Fatalf("AddDeterministic(twice): %v", err)
	}
	y, err = g.AddStochastic("y", constDist{}, 2.0, false, twice)
	if err != nil {
		t.Fatalf("AddStochastic(y): %v", err)
	}

	return g, mu, twice, y
}

func TestTouchKeepIdempotent(t *testing.T) {
	g, mu, _, _ := buildChain(t)

	// Keep on a clean graph is a no-op: nothing is dirty right after
	// construction (AddStochastic pre-seeds the cache).
	if g.IsDirty(mu) {
		t.Fatalf("freshly constructed node should be clean")
	}
	g.Keep(mu) // should not panic or alter anything
	if g.IsDirty(mu) {
		t.Fatalf("Keep on clean node must remain clean")
	}
}

func TestTouchThenRestoreIsNoOp(t *testing.T) {
	g, mu, _, y := buildChain(t)
	before := g.Value(y)
	beforeLn := g.LnProbability(y)

	g.Touch(mu)
	g.Restore(mu)

	if g.IsDirty(mu) || g.IsDirty(y) {
		t.Fatalf("restore must leave the graph clean")
	}
	if g.Value(y) != before {
		t.Fatalf("restore changed y's value: got %v want %v", g.Value(y), before)
	}
	if g.LnProbability(y) != beforeLn {
		t.Fatalf("restore changed y's cached lnProbability: got %v want %v", g.LnProbability(y), beforeLn)
	}
}

func TestSetValuePropagatesThroughDeterministic(t *testing.T) {
	g, mu, twice, y := buildChain(t)

	affected, err := g.SetValue(mu, 3.0)
	if err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	// mu and y are both stochastic and both depend on the new mu value.
	if len(affected) != 2 {
		t.Fatalf("affected set = %v, want 2 entries (mu, y)", affected)
	}

	if got := g.Value(twice); got != 6.0 {
		t.Fatalf("twice = %v, want 6.0 (lazy recompute)", got)
	}
	// y's density should reflect the new parent value of 6.0.
	want := constDist{}.LnProbability(2.0, []interface{}{6.0})
	if got := g.LnProbability(y); got != want {
		t.Fatalf("y.LnProbability = %v, want %v", got, want)
	}
}

func TestRejectionRestoresExactState(t *testing.T) {
	g, mu, _, y := buildChain(t)
	g.Keep(mu)
	g.Keep(y)
	preValue := g.Value(mu)
	preY := g.LnProbability(y)

	if _, err := g.SetValue(mu, 42.0); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	g.Restore(mu)

	if g.Value(mu) != preValue {
		t.Fatalf("mu value after reject = %v, want %v", g.Value(mu), preValue)
	}
	if g.LnProbability(y) != preY {
		t.Fatalf("y lnProbability after reject = %v, want %v", g.LnProbability(y), preY)
	}
}

func TestAffectedSetStopsAtStochasticDescendant(t *testing.T) {
	// z depends on y (stochastic); changing mu must not force-touch z's
	// value, only y's density.
	g, mu, _, y := buildChain(t)
	z, err := g.AddDeterministic("z", func(parents []interface{}) interface{} {
		return parents[0].(float64) + 1
	}, y)
	if err != nil {
		t.Fatalf("AddDeterministic(z): %v", err)
	}
	g.Keep(mu)
	zBefore := g.Value(z)

	if _, err := g.SetValue(mu, 9.0); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	affected := g.AffectedSet(mu)
	for _, a := range affected {
		if a == z {
			t.Fatalf("z must not be in mu's affected set: %v", affected)
		}
	}
	if got := g.Value(z); got != zBefore {
		t.Fatalf("z's value must not change when only y's density is touched: got %v want %v", got, zBefore)
	}
}

func TestStochasticTopologicalOrder(t *testing.T) {
	g, mu, _, y := buildChain(t)
	order := g.StochasticTopologicalOrder(mu)
	if len(order) != 2 {
		t.Fatalf("order = %v, want 2 stochastic nodes", order)
	}
	muIdx, yIdx := -1, -1
	for i, id := range order {
		if id == mu {
			muIdx = i
		}
		if id == y {
			yIdx = i
		}
	}
	if muIdx == -1 || yIdx == -1 {
		t.Fatalf("order %v missing mu or y", order)
	}
	if muIdx > yIdx {
		t.Fatalf("mu (ancestor) must precede y (descendant): order=%v", order)
	}
}

func TestComputable(t *testing.T) {
	cases := []struct {
		x    float64
		want bool
	}{
		{0, true},
		{-1.5, true},
		{math.Inf(-1), false},
		{math.Inf(1), false},
		{math.NaN(), false},
	}
	for _, c := range cases {
		if got := dag.Computable(c.x); got != c.want {
			t.Errorf("Computable(%v) = %v, want %v", c.x, got, c.want)
		}
	}
}

func TestSetValueOnNonStochasticErrors(t *testing.T) {
	g, _, twice, _ := buildChain(t)
	if _, err := g.SetValue(twice, 1.0); err != dag.ErrNotStochastic {
		t.Fatalf("SetValue on deterministic node: got %v, want ErrNotStochastic", err)
	}
}

package dist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/armanbilge/revgo/rng"
)

// Uniform is a continuous Uniform(Lo, Hi) distribution over a scalar
// stochastic node.
type Uniform struct {
	Lo, Hi float64
}

func (d Uniform) LnProbability(value interface{}, parents []interface{}) float64 {
	return distuv.Uniform{Min: d.Lo, Max: d.Hi}.LogProb(value.(float64))
}

func (d Uniform) Redraw(src rng.Source, parents []interface{}) interface{} {
	return d.Lo + src.Float64()*(d.Hi-d.Lo)
}

// Normal is a Normal(Mu, Sigma) distribution over a scalar stochastic node.
// Mu and Sigma may themselves be the values of parent nodes: at
// LnProbability/Redraw time a first parent value overrides the struct's own
// Mu, and a second overrides its Sigma (this lets a Normal node's mean or variance depend on another node
// in the DAG, the common case of a hierarchical model).
type Normal struct {
	Mu, Sigma float64
}

func (d Normal) resolve(parents []interface{}) (mu, sigma float64) {
	mu, sigma = d.Mu, d.Sigma
	if len(parents) >= 1 {
		mu = parents[0].(float64)
	}
	if len(parents) >= 2 {
		sigma = parents[1].(float64)
	}

	return mu, sigma
}

func (d Normal) LnProbability(value interface{}, parents []interface{}) float64 {
	mu, sigma := d.resolve(parents)

	return distuv.Normal{Mu: mu, Sigma: sigma}.LogProb(value.(float64))
}

func (d Normal) Redraw(src rng.Source, parents []interface{}) interface{} {
	mu, sigma := d.resolve(parents)

	return mu + sigma*src.NormFloat64()
}

// Exponential is an Exponential(Rate) distribution over a positive-real
// stochastic node.
type Exponential struct {
	Rate float64
}

func (d Exponential) LnProbability(value interface{}, parents []interface{}) float64 {
	v := value.(float64)
	if v < 0 {
		return math.Inf(-1)
	}

	return distuv.Exponential{Rate: d.Rate}.LogProb(v)
}

func (d Exponential) Redraw(src rng.Source, parents []interface{}) interface{} {
	return src.ExpFloat64() / d.Rate
}

package dist

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/armanbilge/revgo/rng"
)

// ErrNotPositiveDefinite indicates NewMultivariateNormal was given a
// covariance matrix that is not symmetric positive-definite.
var ErrNotPositiveDefinite = errors.New("dist: covariance matrix is not symmetric positive-definite")

// MultivariateNormal is a MVN(Mu, Sigma) distribution over a []float64
// stochastic node. Sigma must be symmetric positive-definite; its Cholesky
// factor is cached at construction and reused by both LnProbability and
// Redraw.
type MultivariateNormal struct {
	Mu    []float64
	Sigma mat.Symmetric

	chol   mat.Cholesky
	logDet float64
}

// NewMultivariateNormal constructs a MultivariateNormal and eagerly
// Cholesky-factors sigma, returning an error if sigma is not symmetric
// positive-definite.
func NewMultivariateNormal(mu []float64, sigma mat.Symmetric) (*MultivariateNormal, error) {
	d := &MultivariateNormal{Mu: append([]float64(nil), mu...), Sigma: sigma}
	ok := d.chol.Factorize(sigma)
	if !ok {
		return nil, ErrNotPositiveDefinite
	}
	d.logDet = d.chol.LogDet()

	return d, nil
}

func (d *MultivariateNormal) LnProbability(value interface{}, parents []interface{}) float64 {
	x := value.([]float64)
	n := len(d.Mu)
	diff := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		diff.SetVec(i, x[i]-d.Mu[i])
	}

	var soln mat.VecDense
	if err := d.chol.SolveVecTo(&soln, diff); err != nil {
		return math.Inf(-1)
	}
	quad := mat.Dot(diff, &soln)

	return -0.5 * (float64(n)*math.Log(2*math.Pi) + d.logDet + quad)
}

func (d *MultivariateNormal) Redraw(src rng.Source, parents []interface{}) interface{} {
	n := len(d.Mu)
	z := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		z.SetVec(i, src.NormFloat64())
	}

	var lower mat.TriDense
	d.chol.LTo(&lower)

	var lz mat.VecDense
	lz.MulVec(&lower, z)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = d.Mu[i] + lz.AtVec(i)
	}

	return out
}

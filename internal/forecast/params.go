package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MinValidReturns is the smallest sample the GBM estimator accepts
const MinValidReturns = 10

// Params are daily GBM parameters in log space
type Params struct {
	Mu    float64 // mean of log(1+r)
	Sigma float64 // sample stdev of log(1+r)
	Drift float64 // Mu - Sigma²/2
	N     int     // valid returns used
}

// EstimateParams fits GBM parameters to daily simple returns.
// Returns <= -1 are data artifacts and are skipped. ok is false below MinValidReturns.
func EstimateParams(returns []float64) (Params, bool) {
	logs := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r <= -1 || math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		logs = append(logs, math.Log1p(r))
	}

	if len(logs) < MinValidReturns {
		return Params{N: len(logs)}, false
	}

	mu, variance := stat.MeanVariance(logs, nil)
	return Params{
		Mu:    mu,
		Sigma: math.Sqrt(variance),
		Drift: mu - variance/2,
		N:     len(logs),
	}, true
}

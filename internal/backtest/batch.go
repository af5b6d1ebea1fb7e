package backtest

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

// Outcome is the per-basket result of a batch run
type Outcome struct {
	BasketID   string                      `json:"basket_id"`
	BasketName string                      `json:"basket_name"`
	Result     *contracts.SimulationResult `json:"result,omitempty"`
	Err        error                       `json:"-"`
	Error      string                      `json:"error,omitempty"`
	Fallback   bool                        `json:"fallback"` // Result is the prior known-good run
	Duration   time.Duration               `json:"duration"`
}

// BatchSummary counts batch outcomes
type BatchSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	FellBack  int `json:"fell_back"`
}

// SimulateAll runs every basket independently with at most workers in flight.
// A failing basket never cancels its siblings; when prior holds a result for
// it, that result is substituted and Fallback is set.
func (e *Engine) SimulateAll(
	ctx context.Context,
	baskets []contracts.Basket,
	provider contracts.SeriesProvider,
	prior map[string]*contracts.SimulationResult,
	workers int,
	opts Options,
) []Outcome {
	if workers <= 0 {
		workers = 1
	}

	outcomes := make([]Outcome, len(baskets))

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range baskets {
		basket := &baskets[i]
		g.Go(func() error {
			started := time.Now()
			out := Outcome{BasketID: basket.ID, BasketName: basket.Name}
			defer func() {
				if r := recover(); r != nil {
					e.fail(&out, basket, prior, fmt.Errorf("panic: %v", r))
				}
				out.Duration = time.Since(started)
				outcomes[i] = out
			}()

			result, err := e.Simulate(ctx, basket, provider, opts)
			if err != nil {
				e.fail(&out, basket, prior, err)
				return nil
			}
			out.Result = result
			return nil
		})
	}
	_ = g.Wait()

	s := Summarize(outcomes)
	e.logger.WithFields(map[string]interface{}{
		"total":     s.Total,
		"succeeded": s.Succeeded,
		"failed":    s.Failed,
		"fell_back": s.FellBack,
	}).Info("Batch simulation completed")

	return outcomes
}

// fail records err on out and substitutes the prior result when one exists
func (e *Engine) fail(out *Outcome, basket *contracts.Basket, prior map[string]*contracts.SimulationResult, err error) {
	out.Err = err
	out.Error = err.Error()
	out.Result = nil
	if prev, ok := prior[basket.ID]; ok && prev != nil {
		out.Result = prev
		out.Fallback = true
	}

	e.logger.WithFields(map[string]interface{}{
		"basket_id": basket.ID,
		"basket":    basket.Name,
		"fallback":  out.Fallback,
	}).WithError(err).Warn("Basket simulation failed")
}

// Summarize counts successes, failures and fallbacks
func Summarize(outcomes []Outcome) BatchSummary {
	s := BatchSummary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Err != nil {
			s.Failed++
			if o.Fallback {
				s.FellBack++
			}
			continue
		}
		s.Succeeded++
	}
	return s
}

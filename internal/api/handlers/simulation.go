package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/LLeom997/AlphBasket-sub000/internal/backtest"
	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
	"github.com/LLeom997/AlphBasket-sub000/pkg/logger"
)

// BasketStore is the persistence the simulation endpoints read from.
// *data.BasketRepository satisfies it; nil disables stored-basket lookups.
type BasketStore interface {
	Get(ctx context.Context, id string) (*contracts.Basket, error)
	List(ctx context.Context) ([]contracts.Basket, error)
	LatestSnapshots(ctx context.Context) (map[string]*contracts.SimulationResult, error)
}

// SimulationHandler handles backtest and forecast endpoints
// ⭐ SSOT: simulation API handlers live in this struct only
type SimulationHandler struct {
	engine       *backtest.Engine
	provider     contracts.SeriesProvider
	store        BasketStore
	batchWorkers int
	logger       *logger.Logger
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(
	engine *backtest.Engine,
	provider contracts.SeriesProvider,
	store BasketStore,
	batchWorkers int,
	log *logger.Logger,
) *SimulationHandler {
	return &SimulationHandler{
		engine:       engine,
		provider:     provider,
		store:        store,
		batchWorkers: batchWorkers,
		logger:       log,
	}
}

// SimulationRequest carries either an inline basket or a stored basket id
type SimulationRequest struct {
	Basket       *contracts.Basket  `json:"basket,omitempty"`
	BasketID     string             `json:"basket_id,omitempty"`
	Strategy     contracts.Strategy `json:"strategy,omitempty"`
	SkipForecast bool               `json:"skip_forecast,omitempty"`
}

// BatchRequest lists inline baskets; an empty list runs every stored basket
type BatchRequest struct {
	Baskets      []contracts.Basket `json:"baskets,omitempty"`
	Strategy     contracts.Strategy `json:"strategy,omitempty"`
	SkipForecast bool               `json:"skip_forecast,omitempty"`
}

// BatchResponse is the body of a batch run
type BatchResponse struct {
	Summary  backtest.BatchSummary `json:"summary"`
	Outcomes []backtest.Outcome    `json:"outcomes"`
}

// Simulate runs one basket
// POST /api/simulations
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts, err := options(req.Strategy, req.SkipForecast)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	basket := req.Basket
	if basket == nil {
		if req.BasketID == "" {
			respondError(w, http.StatusBadRequest, "basket or basket_id is required")
			return
		}
		if h.store == nil {
			respondError(w, http.StatusNotFound, "stored baskets are not available")
			return
		}
		basket, err = h.store.Get(ctx, req.BasketID)
		if err != nil {
			h.logger.WithError(err).WithField("basket_id", req.BasketID).Warn("Failed to load basket")
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
	}

	result, err := h.engine.Simulate(ctx, basket, h.provider, opts)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithField("basket_id", basket.ID).Error("Simulation failed")
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// SimulateBatch runs many baskets, falling back to stored snapshots on failure
// POST /api/simulations/batch
func (h *SimulationHandler) SimulateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BatchRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	opts, err := options(req.Strategy, req.SkipForecast)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	baskets := req.Baskets
	var prior map[string]*contracts.SimulationResult
	if h.store != nil {
		if len(baskets) == 0 {
			if baskets, err = h.store.List(ctx); err != nil {
				h.logger.WithError(err).Error("Failed to list baskets")
				respondError(w, http.StatusInternalServerError, "failed to list baskets")
				return
			}
		}
		if prior, err = h.store.LatestSnapshots(ctx); err != nil {
			h.logger.WithError(err).Warn("Failed to load prior snapshots, running without fallback")
		}
	}
	if len(baskets) == 0 {
		respondError(w, http.StatusBadRequest, "no baskets to simulate")
		return
	}

	outcomes := h.engine.SimulateAll(ctx, baskets, h.provider, prior, h.batchWorkers, opts)
	summary := backtest.Summarize(outcomes)

	h.logger.WithFields(map[string]interface{}{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"fell_back": summary.FellBack,
	}).Info("Batch simulation completed")

	respondJSON(w, http.StatusOK, BatchResponse{Summary: summary, Outcomes: outcomes})
}

func options(strategy contracts.Strategy, skipForecast bool) (backtest.Options, error) {
	if strategy != "" {
		if _, ok := contracts.ParseStrategy(string(strategy)); !ok {
			return backtest.Options{}, fmt.Errorf("unknown strategy %q", strategy)
		}
	}
	return backtest.Options{Strategy: strategy, SkipForecast: skipForecast}, nil
}

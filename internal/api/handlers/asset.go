package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
	"github.com/LLeom997/AlphBasket-sub000/internal/indicators"
	"github.com/LLeom997/AlphBasket-sub000/internal/risk"
	"github.com/LLeom997/AlphBasket-sub000/pkg/logger"
)

const (
	defaultIndicatorDays = 60
	defaultSMAPeriod     = 20
)

// AssetHandler serves per-ticker statistics
type AssetHandler struct {
	provider contracts.SeriesProvider
	logger   *logger.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(provider contracts.SeriesProvider, log *logger.Logger) *AssetHandler {
	return &AssetHandler{provider: provider, logger: log}
}

// IndicatorPoint is one bar of the indicators response
type IndicatorPoint struct {
	Date      string  `json:"date"`
	Close     float64 `json:"close"`
	SMA       float64 `json:"sma"`
	RSI       float64 `json:"rsi"`
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
	ATR       float64 `json:"atr"`
	Bullish   bool    `json:"bullish"`
}

// GetMetrics returns trailing window CAGRs and annualized volatility
// GET /api/assets/{ticker}/metrics
func (h *AssetHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	series, ok := h.series(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, risk.CalculateAssetMetrics(series))
}

// GetIndicators returns the latest bars with SMA, RSI, MACD and ATR
// GET /api/assets/{ticker}/indicators?days=60&sma=20
func (h *AssetHandler) GetIndicators(w http.ResponseWriter, r *http.Request) {
	series, ok := h.series(w, r)
	if !ok {
		return
	}

	days := queryInt(r, "days", defaultIndicatorDays)
	smaPeriod := queryInt(r, "sma", defaultSMAPeriod)

	closes := series.Closes()
	sma := indicators.SMA(closes, smaPeriod)
	rsi := indicators.RSI(closes, indicators.DefaultRSIPeriod)
	macd := indicators.MACD(closes)
	atr := indicators.ATR(series.Prices, indicators.DefaultATRPeriod)

	start := len(closes) - days
	if start < 0 {
		start = 0
	}

	points := make([]IndicatorPoint, 0, len(closes)-start)
	for i := start; i < len(closes); i++ {
		points = append(points, IndicatorPoint{
			Date:      series.Prices[i].Date.Format("2006-01-02"),
			Close:     closes[i],
			SMA:       sma[i],
			RSI:       rsi[i],
			MACD:      macd.Line[i],
			Signal:    macd.Signal[i],
			Histogram: macd.Histogram[i],
			ATR:       atr[i],
			Bullish:   indicators.IsBullish(macd, rsi, i),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": series.Ticker,
		"data":   points,
	})
}

func (h *AssetHandler) series(w http.ResponseWriter, r *http.Request) (*contracts.AssetSeries, bool) {
	ticker := mux.Vars(r)["ticker"]
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return nil, false
	}

	series, err := h.provider.Series(r.Context(), ticker)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to load series")
		}
		respondError(w, status, err.Error())
		return nil, false
	}
	return series, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

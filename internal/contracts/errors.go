package contracts

import "errors"

// Fatal conditions stop the pipeline before any result is built.
// Non-fatal ones surface as SimulationResult.Warnings or Forecast.Degenerate.
var (
	ErrNoActiveAssets      = errors.New("basket has no active assets")
	ErrInsufficientHistory = errors.New("insufficient overlapping history")
	ErrInvalidBasket       = errors.New("invalid basket")
	ErrSeriesNotFound      = errors.New("price series not found")
)

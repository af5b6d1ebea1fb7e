package forecast

import (
	"math"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

const (
	// StopLossPct and TargetPct are fixed exits for target_sl
	StopLossPct = 0.02
	TargetPct   = 0.06
)

// tradeRecord is a trade in trading-day offsets; dates are attached later
type tradeRecord struct {
	entryDay   int
	entryPrice float64
	exitDay    int
	exitPrice  float64
	reason     contracts.ExitReason
}

// overlay observes a GBM walk day by day.
// step may replace the day's value; finish closes whatever is still open.
type overlay interface {
	step(t int, prev, value float64) float64
	finish(horizon int, last float64)
	trades() []tradeRecord
}

// newOverlay builds the per-path overlay. Only target_sl alters values,
// so the others are skipped on paths whose ledger is not recorded.
func newOverlay(strategy contracts.Strategy, start float64, record bool) overlay {
	switch strategy {
	case contracts.StrategyTargetSL:
		return &targetStopOverlay{record: record}
	case contracts.StrategyMomentum:
		if record {
			return &crossoverOverlay{}
		}
	default:
		if record {
			return &holdOverlay{start: start}
		}
	}
	return passthrough{}
}

// walkPath fills path[0..horizon] with V[t] = V[t-1]·exp(drift + σZ)
func walkPath(strategy contracts.Strategy, drift, sigma float64, src Source, path []float64, record bool) []tradeRecord {
	ov := newOverlay(strategy, path[0], record)
	for t := 1; t < len(path); t++ {
		prev := path[t-1]
		next := prev * math.Exp(drift+sigma*Normal(src))
		path[t] = ov.step(t, prev, next)
	}
	ov.finish(len(path)-1, path[len(path)-1])
	return ov.trades()
}

// =============================================================================
// hold
// =============================================================================

type passthrough struct{}

func (passthrough) step(_ int, _, value float64) float64 { return value }
func (passthrough) finish(int, float64) {}
func (passthrough) trades() []tradeRecord { return nil }

// holdOverlay records a single buy at day 0 held to the horizon
type holdOverlay struct {
	start  float64
	ledger []tradeRecord
}

func (o *holdOverlay) step(_ int, _, value float64) float64 { return value }

func (o *holdOverlay) finish(horizon int, last float64) {
	if horizon == 0 {
		return
	}
	o.ledger = append(o.ledger, tradeRecord{
		entryDay:   0,
		entryPrice: o.start,
		exitDay:    horizon,
		exitPrice:  last,
		reason:     contracts.ExitHold,
	})
}

func (o *holdOverlay) trades() []tradeRecord { return o.ledger }

// =============================================================================
// target_sl
// =============================================================================

type tradeState int

const (
	stateFlat tradeState = iota
	stateInTrade
)

// targetStopOverlay is a two-state machine: Flat, InTrade{entryPrice, entryDay}.
// From Flat it enters at the day's open (the previous close); in a trade it
// exits at exactly entry·(1-StopLossPct) or entry·(1+TargetPct).
// An exit returns to Flat and the next trade opens the following day.
type targetStopOverlay struct {
	state      tradeState
	entryPrice float64
	entryDay   int

	record bool
	ledger []tradeRecord
}

func (o *targetStopOverlay) step(t int, prev, value float64) float64 {
	if o.state == stateFlat {
		o.state = stateInTrade
		o.entryPrice = prev
		o.entryDay = t
	}

	ret := value/o.entryPrice - 1
	switch {
	case ret <= -StopLossPct:
		return o.exit(t, o.entryPrice*(1-StopLossPct), contracts.ExitStopLoss)
	case ret >= TargetPct:
		return o.exit(t, o.entryPrice*(1+TargetPct), contracts.ExitTarget)
	}
	return value
}

func (o *targetStopOverlay) exit(t int, price float64, reason contracts.ExitReason) float64 {
	if o.record {
		o.ledger = append(o.ledger, tradeRecord{
			entryDay:   o.entryDay,
			entryPrice: o.entryPrice,
			exitDay:    t,
			exitPrice:  price,
			reason:     reason,
		})
	}
	o.state = stateFlat
	return price
}

func (o *targetStopOverlay) finish(horizon int, last float64) {
	if o.state == stateInTrade {
		o.exit(horizon, last, contracts.ExitEndOfPeriod)
	}
}

func (o *targetStopOverlay) trades() []tradeRecord { return o.ledger }

// =============================================================================
// momentum
// =============================================================================

// crossoverOverlay approximates crossovers by the sign of each simulated day:
// enter on an up day while flat, exit on a down day while in a trade
type crossoverOverlay struct {
	state      tradeState
	entryPrice float64
	entryDay   int
	ledger     []tradeRecord
}

func (o *crossoverOverlay) step(t int, prev, value float64) float64 {
	r := value/prev - 1
	switch {
	case o.state == stateFlat && r > 0:
		o.state = stateInTrade
		o.entryPrice = value
		o.entryDay = t
	case o.state == stateInTrade && r < 0:
		o.close(t, value, contracts.ExitCrossover)
	}
	return value
}

func (o *crossoverOverlay) close(t int, price float64, reason contracts.ExitReason) {
	o.ledger = append(o.ledger, tradeRecord{
		entryDay:   o.entryDay,
		entryPrice: o.entryPrice,
		exitDay:    t,
		exitPrice:  price,
		reason:     reason,
	})
	o.state = stateFlat
}

func (o *crossoverOverlay) finish(horizon int, last float64) {
	if o.state == stateInTrade {
		o.close(horizon, last, contracts.ExitEndOfPeriod)
	}
}

func (o *crossoverOverlay) trades() []tradeRecord { return o.ledger }

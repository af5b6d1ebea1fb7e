package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

const (
	// MinCommonDates is the shortest overlapping history a backtest accepts
	MinCommonDates = 20

	// a later start within this tolerance (weekends, holidays) is not reported
	lateStartTolerance = 7 * 24 * time.Hour
)

// sanitizeSeries returns an ascending copy with one bar per calendar day
// and no non-positive closes
func sanitizeSeries(s *contracts.AssetSeries) (*contracts.AssetSeries, []string) {
	var warnings []string

	prices := make([]contracts.PricePoint, len(s.Prices))
	copy(prices, s.Prices)
	for i := range prices {
		prices[i].Date = contracts.DateOnly(prices[i].Date)
	}
	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].Date.Before(prices[j].Date)
	})

	out := make([]contracts.PricePoint, 0, len(prices))
	dupes, invalid := 0, 0
	for _, p := range prices {
		if p.Close <= 0 {
			invalid++
			continue
		}
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p // last write wins
			dupes++
			continue
		}
		out = append(out, p)
	}

	if dupes > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: dropped %d duplicate dates", s.Ticker, dupes))
	}
	if invalid > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: dropped %d bars with non-positive close", s.Ticker, invalid))
	}

	return &contracts.AssetSeries{Ticker: s.Ticker, Prices: out}, warnings
}

// CommonDates intersects the dates of every ticker, bounded above by today
// and below by inception when set. Warns when one asset's late start
// truncates the window. Fewer than MinCommonDates is ErrInsufficientHistory.
func CommonDates(
	series map[string]*contracts.AssetSeries,
	tickers []string,
	today time.Time,
	inception *time.Time,
) ([]time.Time, []string, error) {
	if len(tickers) == 0 {
		return nil, nil, contracts.ErrNoActiveAssets
	}

	today = contracts.DateOnly(today)
	var floor time.Time
	if inception != nil {
		floor = contracts.DateOnly(*inception)
	}

	counts := make(map[time.Time]int)
	var earliest, latest time.Time
	var limiting string
	for _, ticker := range tickers {
		s, ok := series[ticker]
		if !ok || s.Len() == 0 {
			return nil, nil, fmt.Errorf("%s: %w", ticker, contracts.ErrSeriesNotFound)
		}

		first := contracts.DateOnly(s.Prices[0].Date)
		if earliest.IsZero() || first.Before(earliest) {
			earliest = first
		}
		if first.After(latest) {
			latest = first
			limiting = ticker
		}

		for _, p := range s.Prices {
			d := contracts.DateOnly(p.Date)
			if d.After(today) || d.Before(floor) {
				continue
			}
			counts[d]++
		}
	}

	dates := make([]time.Time, 0, len(counts))
	for d, n := range counts {
		if n == len(tickers) {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	// Truncation is measured from the effective start: inception when it is
	// later than every series start, else the earliest series start
	effective := earliest
	if floor.After(effective) {
		effective = floor
	}
	start := latest
	if len(dates) > 0 {
		start = dates[0]
	}

	var warnings []string
	switch {
	case inception != nil && latest.Sub(floor) > lateStartTolerance:
		warnings = append(warnings, fmt.Sprintf(
			"backtest starts %s, after inception %s: %s has no earlier data",
			start.Format("2006-01-02"), floor.Format("2006-01-02"), limiting))
	case latest.Sub(effective) > lateStartTolerance:
		warnings = append(warnings, fmt.Sprintf(
			"backtest truncated to start %s: %s has no data before that date (earliest asset starts %s)",
			start.Format("2006-01-02"), limiting, earliest.Format("2006-01-02")))
	}

	if len(dates) < MinCommonDates {
		return nil, warnings, fmt.Errorf("%w: %d common dates, need %d",
			contracts.ErrInsufficientHistory, len(dates), MinCommonDates)
	}

	return dates, warnings, nil
}

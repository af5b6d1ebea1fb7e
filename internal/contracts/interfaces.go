package contracts

import "context"

// SeriesProvider supplies daily price history for a ticker
// ⭐ SSOT: the engine never fetches data itself; callers resolve series through this
type SeriesProvider interface {
	Series(ctx context.Context, ticker string) (*AssetSeries, error)
}

// LoadSeries resolves every ticker through p
func LoadSeries(ctx context.Context, p SeriesProvider, tickers []string) (map[string]*AssetSeries, error) {
	out := make(map[string]*AssetSeries, len(tickers))
	for _, ticker := range tickers {
		s, err := p.Series(ctx, ticker)
		if err != nil {
			return nil, err
		}
		out[ticker] = s
	}
	return out, nil
}

package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

const csvDateLayout = "2006-01-02"

// CSVProvider reads <dir>/<TICKER>.csv files with the header
// date,open,high,low,close[,volume]
type CSVProvider struct {
	dir string
}

// NewCSVProvider creates a provider rooted at dir
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

// Series implements contracts.SeriesProvider
func (p *CSVProvider) Series(_ context.Context, ticker string) (*contracts.AssetSeries, error) {
	path := filepath.Join(p.dir, ticker+".csv")
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrSeriesNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	prices, err := ReadPricesCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrSeriesNotFound)
	}

	return &contracts.AssetSeries{Ticker: ticker, Prices: prices}, nil
}

// Tickers lists the tickers that have a file in the directory
func (p *CSVProvider) Tickers() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(p.dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	tickers := make([]string, 0, len(matches))
	for _, m := range matches {
		tickers = append(tickers, strings.TrimSuffix(filepath.Base(m), ".csv"))
	}
	return tickers, nil
}

// ReadPricesCSV parses bars in file order; columns are located by header name
func ReadPricesCSV(r io.Reader) ([]contracts.PricePoint, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"date", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	var prices []contracts.PricePoint
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := time.Parse(csvDateLayout, strings.TrimSpace(record[cols["date"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date: %w", line, err)
		}

		p := contracts.PricePoint{Date: date}
		if p.Close, err = floatField(record, cols, "close"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		// missing OHLC columns fall back to close
		for name, dst := range map[string]*float64{"open": &p.Open, "high": &p.High, "low": &p.Low} {
			v, err := floatField(record, cols, name)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if v == 0 {
				v = p.Close
			}
			*dst = v
		}
		if idx, ok := cols["volume"]; ok && idx < len(record) && strings.TrimSpace(record[idx]) != "" {
			vol, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad volume: %w", line, err)
			}
			p.Volume = int64(vol)
		}

		prices = append(prices, p)
	}

	return prices, nil
}

func floatField(record []string, cols map[string]int, name string) (float64, error) {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return 0, nil
	}
	raw := strings.TrimSpace(record[idx])
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s: %w", name, err)
	}
	return v, nil
}

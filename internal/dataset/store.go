// Package dataset holds the historical OHLCV table the service answers
// from. The table is loaded once at startup, sorted and indexed, and is
// read-only afterwards, so concurrent readers need no locking.
package dataset

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/internal/domain/repository"
	applogger "github.com/zengarv/StockInsightAPI/pkg/logger"
	"github.com/zengarv/StockInsightAPI/pkg/util"
)

type span struct {
	lo, hi int // [lo, hi) row range for one symbol
}

// Store is the in-memory columnar OHLCV table, indexed by symbol and
// sorted by date within each symbol.
type Store struct {
	dates   []time.Time
	opens   []float64
	highs   []float64
	lows    []float64
	closes  []float64
	volumes []float64

	index   map[string]span
	symbols []string // sorted
	minDate time.Time
	maxDate time.Time
}

// NewStore loads the full dataset from src. Any failure is fatal: the
// service must not start with a partial table.
func NewStore(ctx context.Context, src repository.SeriesSource, l *applogger.Logger) (*Store, error) {
	start := time.Now()

	rows, err := src.Load(ctx)
	if err != nil {
		return nil, models.WrapDomainError(models.ErrCodeDataUnavailable, "dataset load failed", err)
	}
	if len(rows) == 0 {
		return nil, models.NewDomainError(models.ErrCodeDataUnavailable, "dataset is empty")
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Symbol != rows[j].Symbol {
			return rows[i].Symbol < rows[j].Symbol
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	s := &Store{
		dates:   make([]time.Time, len(rows)),
		opens:   make([]float64, len(rows)),
		highs:   make([]float64, len(rows)),
		lows:    make([]float64, len(rows)),
		closes:  make([]float64, len(rows)),
		volumes: make([]float64, len(rows)),
		index:   make(map[string]span),
	}

	for i, r := range rows {
		s.dates[i] = util.DateOnly(r.Date)
		s.opens[i] = r.Open
		s.highs[i] = r.High
		s.lows[i] = r.Low
		s.closes[i] = r.Close
		s.volumes[i] = r.Volume

		if i > 0 && rows[i-1].Symbol == r.Symbol && !s.dates[i-1].Before(s.dates[i]) {
			return nil, models.NewDomainErrorf(models.ErrCodeDataUnavailable,
				"dataset has duplicate or unordered date %s for symbol %s",
				util.FormatDate(s.dates[i]), r.Symbol)
		}

		sp, ok := s.index[r.Symbol]
		if !ok {
			sp = span{lo: i}
			s.symbols = append(s.symbols, r.Symbol)
		}
		sp.hi = i + 1
		s.index[r.Symbol] = sp

		if s.minDate.IsZero() || s.dates[i].Before(s.minDate) {
			s.minDate = s.dates[i]
		}
		if s.dates[i].After(s.maxDate) {
			s.maxDate = s.dates[i]
		}
	}
	sort.Strings(s.symbols)

	if l != nil {
		l.Info("dataset loaded",
			applogger.Int("records", len(rows)),
			applogger.Int("symbols", len(s.symbols)),
			applogger.String("min_date", util.FormatDate(s.minDate)),
			applogger.String("max_date", util.FormatDate(s.maxDate)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return s, nil
}

// GetSeries returns the close-price series of one symbol restricted to
// [start, end] inclusive. A zero start or end means no bound. A range with
// no overlap yields an empty series, not an error.
func (s *Store) GetSeries(symbol string, start, end time.Time) (models.Series, error) {
	sp, ok := s.index[symbol]
	if !ok {
		return models.Series{}, models.ErrUnknownSymbol(symbol)
	}

	lo, hi := sp.lo, sp.hi
	if !start.IsZero() {
		lo = sp.lo + sort.Search(sp.hi-sp.lo, func(i int) bool {
			return !s.dates[sp.lo+i].Before(start)
		})
	}
	if !end.IsZero() {
		hi = sp.lo + sort.Search(sp.hi-sp.lo, func(i int) bool {
			return s.dates[sp.lo+i].After(end)
		})
	}
	if lo > hi {
		lo = hi
	}

	return models.Series{
		Symbol:   symbol,
		Dates:    s.dates[lo:hi],
		Closes:   s.closes[lo:hi],
		HasClose: true,
	}, nil
}

// ClampRange narrows a requested date range to what the dataset holds and
// what the tier's lookback permits. lookbackDays 0 means unbounded. The
// clamp is silent; the only failure is a range that is empty afterwards.
func (s *Store) ClampRange(reqStart, reqEnd time.Time, lookbackDays int, now time.Time) (time.Time, time.Time, error) {
	effStart := s.minDate
	if lookbackDays > 0 {
		effStart = util.MaxDate(effStart, util.DaysAgo(now, lookbackDays))
	}
	if !reqStart.IsZero() {
		effStart = util.MaxDate(effStart, util.DateOnly(reqStart))
	}

	effEnd := s.maxDate
	if !reqEnd.IsZero() {
		effEnd = util.MinDate(effEnd, util.DateOnly(reqEnd))
	}

	if effStart.After(effEnd) {
		return time.Time{}, time.Time{}, models.ErrInvalidRange(effStart, effEnd)
	}
	return effStart, effEnd, nil
}

// Symbols returns the sorted distinct symbol list.
func (s *Store) Symbols() []string {
	return s.symbols
}

// HasSymbol reports whether the dataset holds rows for symbol.
func (s *Store) HasSymbol(symbol string) bool {
	_, ok := s.index[symbol]
	return ok
}

// Info describes the loaded dataset for health reporting.
func (s *Store) Info() models.DatasetInfo {
	return models.DatasetInfo{
		Records: len(s.dates),
		Symbols: len(s.symbols),
		MinDate: s.minDate,
		MaxDate: s.maxDate,
	}
}

func (s *Store) String() string {
	return fmt.Sprintf("dataset(%d records, %d symbols)", len(s.dates), len(s.symbols))
}

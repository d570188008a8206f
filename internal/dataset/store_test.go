package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
)

type sliceSource struct {
	rows []models.PriceRow
	err  error
}

func (s *sliceSource) Load(context.Context) ([]models.PriceRow, error) {
	return s.rows, s.err
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testStore(t *testing.T) *Store {
	t.Helper()
	rows := []models.PriceRow{
		{Symbol: "MSFT", Date: day(2024, 1, 2), Close: 370},
		{Symbol: "AAPL", Date: day(2024, 1, 3), Close: 184},
		{Symbol: "AAPL", Date: day(2024, 1, 2), Close: 185},
		{Symbol: "AAPL", Date: day(2024, 1, 4), Close: 182},
		{Symbol: "MSFT", Date: day(2024, 1, 3), Close: 371},
	}
	s, err := NewStore(context.Background(), &sliceSource{rows: rows}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestStoreSortsAndIndexes(t *testing.T) {
	s := testStore(t)

	syms := s.Symbols()
	if len(syms) != 2 || syms[0] != "AAPL" || syms[1] != "MSFT" {
		t.Fatalf("unexpected symbols %v", syms)
	}

	info := s.Info()
	if info.Records != 5 || info.Symbols != 2 {
		t.Fatalf("unexpected info %+v", info)
	}
	if !info.MinDate.Equal(day(2024, 1, 2)) || !info.MaxDate.Equal(day(2024, 1, 4)) {
		t.Fatalf("unexpected date range %v..%v", info.MinDate, info.MaxDate)
	}

	series, err := s.GetSeries("AAPL", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if series.Len() != 3 {
		t.Fatalf("series length %d, want 3", series.Len())
	}
	if series.Closes[0] != 185 || series.Closes[2] != 182 {
		t.Fatalf("series not sorted by date: %v", series.Closes)
	}
}

func TestStoreUnknownSymbol(t *testing.T) {
	s := testStore(t)
	_, err := s.GetSeries("TSLA", time.Time{}, time.Time{})
	var de *models.DomainError
	if !errors.As(err, &de) || de.Code != models.ErrCodeUnknownSymbol {
		t.Fatalf("expected UnknownSymbol, got %v", err)
	}
}

func TestStoreDateFilter(t *testing.T) {
	s := testStore(t)

	series, err := s.GetSeries("AAPL", day(2024, 1, 3), day(2024, 1, 3))
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if series.Len() != 1 || series.Closes[0] != 184 {
		t.Fatalf("unexpected filtered series %v", series.Closes)
	}

	// no overlap at all is an empty series, not an error
	series, err = s.GetSeries("AAPL", day(2030, 1, 1), day(2030, 1, 2))
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if series.Len() != 0 {
		t.Fatalf("expected empty series, got %d points", series.Len())
	}
}

func TestStoreRejectsDuplicateDates(t *testing.T) {
	rows := []models.PriceRow{
		{Symbol: "AAPL", Date: day(2024, 1, 2), Close: 185},
		{Symbol: "AAPL", Date: day(2024, 1, 2), Close: 186},
	}
	_, err := NewStore(context.Background(), &sliceSource{rows: rows}, nil)
	var de *models.DomainError
	if !errors.As(err, &de) || de.Code != models.ErrCodeDataUnavailable {
		t.Fatalf("expected DataUnavailable, got %v", err)
	}
}

func TestStoreLoadFailureIsFatal(t *testing.T) {
	_, err := NewStore(context.Background(), &sliceSource{err: errors.New("missing file")}, nil)
	var de *models.DomainError
	if !errors.As(err, &de) || de.Code != models.ErrCodeDataUnavailable {
		t.Fatalf("expected DataUnavailable, got %v", err)
	}
}

func TestClampRange(t *testing.T) {
	s := testStore(t)
	now := day(2024, 1, 10)

	// no request bounds, unbounded lookback: full dataset range
	start, end, err := s.ClampRange(time.Time{}, time.Time{}, 0, now)
	if err != nil {
		t.Fatalf("ClampRange: %v", err)
	}
	if !start.Equal(day(2024, 1, 2)) || !end.Equal(day(2024, 1, 4)) {
		t.Fatalf("unexpected range %v..%v", start, end)
	}

	// lookback limit narrows the start silently
	start, _, err = s.ClampRange(time.Time{}, time.Time{}, 7, now)
	if err != nil {
		t.Fatalf("ClampRange: %v", err)
	}
	if !start.Equal(day(2024, 1, 3)) {
		t.Fatalf("lookback clamp got start %v, want 2024-01-03", start)
	}

	// requested end beyond dataset clamps to dataset max
	_, end, err = s.ClampRange(time.Time{}, day(2030, 1, 1), 0, now)
	if err != nil {
		t.Fatalf("ClampRange: %v", err)
	}
	if !end.Equal(day(2024, 1, 4)) {
		t.Fatalf("end clamp got %v, want 2024-01-04", end)
	}

	// empty after clamping fails with InvalidRange
	_, _, err = s.ClampRange(day(2024, 1, 4), day(2024, 1, 2), 0, now)
	var de *models.DomainError
	if !errors.As(err, &de) || de.Code != models.ErrCodeInvalidRange {
		t.Fatalf("expected InvalidRange, got %v", err)
	}
}

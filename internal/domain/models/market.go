package models

import "time"

// PriceRow is one daily OHLCV record as delivered by a dataset source.
type PriceRow struct {
	Symbol string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is the per-symbol slice of the dataset handed to the indicator
// engine. Dates and Closes are index-aligned and sorted ascending by date.
// The backing arrays are shared with the dataset store and must not be
// mutated.
type Series struct {
	Symbol   string
	Dates    []time.Time
	Closes   []float64
	HasClose bool
}

// Len returns the number of rows in the series.
func (s Series) Len() int { return len(s.Dates) }

// DatasetInfo describes the loaded dataset for health reporting.
type DatasetInfo struct {
	Records int
	Symbols int
	MinDate time.Time
	MaxDate time.Time
}

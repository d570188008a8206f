package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/pkg/util"
)

// CSVSource reads the OHLCV table from a header-mapped CSV file.
// Required columns: symbol, date, close. Optional: open, high, low, volume.
type CSVSource struct {
	path string
}

// NewCSVSource creates a CSV dataset source.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Load(_ context.Context) ([]models.PriceRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"symbol", "date", "close"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("dataset file has no %s column", required)
		}
	}

	var rows []models.PriceRow
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		date, ok := util.ParseDate(rec[col["date"]])
		if !ok {
			return nil, fmt.Errorf("row %d: invalid date %q", line, rec[col["date"]])
		}
		closePrice, err := strconv.ParseFloat(rec[col["close"]], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid close %q", line, rec[col["close"]])
		}

		row := models.PriceRow{
			Symbol: rec[col["symbol"]],
			Date:   date,
			Close:  closePrice,
		}
		for name, dst := range map[string]*float64{
			"open": &row.Open, "high": &row.High, "low": &row.Low, "volume": &row.Volume,
		} {
			idx, ok := col[name]
			if !ok || rec[idx] == "" {
				continue
			}
			v, err := strconv.ParseFloat(rec[idx], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s %q", line, name, rec[idx])
			}
			*dst = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	pkgch "github.com/zengarv/StockInsightAPI/pkg/clickhouse"
)

// ClickHouseSource loads the OHLCV table from a ClickHouse warehouse with
// one ordered query. Deployments that keep daily history in ClickHouse use
// this instead of shipping a CSV file next to the binary.
type ClickHouseSource struct {
	db    *sql.DB
	table string
}

// NewClickHouseSource creates a warehouse-backed dataset source.
func NewClickHouseSource(client *pkgch.Client, table string) *ClickHouseSource {
	return &ClickHouseSource{db: client.DB(), table: table}
}

func (s *ClickHouseSource) Load(ctx context.Context) ([]models.PriceRow, error) {
	q := fmt.Sprintf(`
		SELECT symbol, date, open, high, low, close, volume
		FROM %s
		ORDER BY symbol, date
	`, s.table)

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query dataset: %w", err)
	}
	defer rows.Close()

	out := make([]models.PriceRow, 0, 4096)
	for rows.Next() {
		var r models.PriceRow
		var date time.Time
		if err := rows.Scan(&r.Symbol, &date, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Date = date
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

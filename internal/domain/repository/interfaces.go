package repository

import (
	"context"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
)

// SeriesSource loads the full OHLCV dataset at startup. Implementations
// read from a CSV file or a ClickHouse table; either way the load happens
// once and any failure is fatal.
type SeriesSource interface {
	Load(ctx context.Context) ([]models.PriceRow, error)
}

// UserStore persists users and API keys.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateAPIKey(ctx context.Context, k *models.APIKey) error
	GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	GetAPIKeysByUser(ctx context.Context, userID int64) ([]*models.APIKey, error)
	TouchAPIKey(ctx context.Context, id int64) error
	Close() error
}

type Metrics interface {
	RecordCacheOp(op, outcome string)
	RecordRateLimit(tier, outcome string)
	RecordCompute(indicator string, seconds float64)
	RecordDataset(records, symbols int)
	RecordError(kind string)
}

package api

import (
	"github.com/labstack/echo/v4"

	"github.com/zengarv/StockInsightAPI/internal/dataset"
	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/pkg/cache"
	xhttp "github.com/zengarv/StockInsightAPI/pkg/http"
	"github.com/zengarv/StockInsightAPI/pkg/util"
)

// Version is reported by the health endpoint. Overridden at build time with
// -ldflags "-X .../internal/handler/api.Version=v1.2.3".
var Version = "dev"

// SystemHandler serves the unauthenticated health endpoint.
type SystemHandler struct {
	environment string
	store       *dataset.Store
	cache       cache.Service
}

func NewSystemHandler(environment string, store *dataset.Store, cache cache.Service) *SystemHandler {
	return &SystemHandler{environment: environment, store: store, cache: cache}
}

func (h *SystemHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
}

func (h *SystemHandler) Health(c echo.Context) error {
	info := h.store.Info()
	res := &models.HealthResponse{
		Status:        "ok",
		Version:       Version,
		Environment:   h.environment,
		DatasetLoaded: info.Records > 0,
		Records:       info.Records,
		Symbols:       info.Symbols,
		CacheBackend:  h.cache.Name(),
		CacheHealthy:  h.cache.Healthy(c.Request().Context()),
	}
	if info.Records > 0 {
		res.MinDate = util.FormatDate(info.MinDate)
		res.MaxDate = util.FormatDate(info.MaxDate)
	}
	return xhttp.SuccessResponse(c, res)
}

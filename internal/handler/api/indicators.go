// Package api holds the Echo HTTP handlers for the public API.
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/internal/middleware"
	"github.com/zengarv/StockInsightAPI/internal/usecase"
	xhttp "github.com/zengarv/StockInsightAPI/pkg/http"
	xlogger "github.com/zengarv/StockInsightAPI/pkg/logger"
)

// IndicatorsHandler serves the indicator endpoints. Every route requires an
// authenticated identity.
type IndicatorsHandler struct {
	logger *xlogger.Logger
	uc     *usecase.IndicatorsUseCase
	auth   echo.MiddlewareFunc
}

func NewIndicatorsHandler(logger *xlogger.Logger, uc *usecase.IndicatorsUseCase, auth echo.MiddlewareFunc) *IndicatorsHandler {
	return &IndicatorsHandler{logger: logger, uc: uc, auth: auth}
}

func (h *IndicatorsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1", h.auth)
	g.GET("/stocks", h.Stocks)
	g.GET("/user/limits", h.Limits)
	g.GET("/indicators/sma", h.SMA)
	g.GET("/indicators/ema", h.EMA)
	g.GET("/indicators/rsi", h.RSI)
	g.GET("/indicators/macd", h.MACD)
	g.GET("/indicators/bollinger", h.Bollinger)
}

func (h *IndicatorsHandler) identity(c echo.Context) (models.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return models.Identity{}, models.NewDomainError(models.ErrCodeUnauthorized, "missing identity")
	}
	return id, nil
}

func (h *IndicatorsHandler) SMA(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	req := &models.SMARequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.SMA(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("sma usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *IndicatorsHandler) EMA(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	req := &models.EMARequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.EMA(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("ema usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *IndicatorsHandler) RSI(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	req := &models.RSIRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.RSI(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("rsi usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *IndicatorsHandler) MACD(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	req := &models.MACDRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.FastPeriod >= req.SlowPeriod {
		return xhttp.AppErrorResponse(c, models.NewDomainErrorf(models.ErrCodeInvalidParameter,
			"fast_period %d must be less than slow_period %d", req.FastPeriod, req.SlowPeriod))
	}

	res, err := h.uc.MACD(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("macd usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *IndicatorsHandler) Bollinger(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	req := &models.BollingerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Bollinger(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("bollinger usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *IndicatorsHandler) Stocks(c echo.Context) error {
	if _, err := h.identity(c); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, h.uc.Stocks(c.Request().Context()))
}

func (h *IndicatorsHandler) Limits(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	res, err := h.uc.Limits(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("limits usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

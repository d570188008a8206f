package api

import (
	"github.com/labstack/echo/v4"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/internal/middleware"
	"github.com/zengarv/StockInsightAPI/internal/usecase"
	xhttp "github.com/zengarv/StockInsightAPI/pkg/http"
	xlogger "github.com/zengarv/StockInsightAPI/pkg/logger"
)

// AuthHandler serves registration, login and API key management. Register
// and login are the only unauthenticated routes in the API.
type AuthHandler struct {
	logger *xlogger.Logger
	uc     *usecase.AuthUseCase
	auth   echo.MiddlewareFunc
}

func NewAuthHandler(logger *xlogger.Logger, uc *usecase.AuthUseCase, auth echo.MiddlewareFunc) *AuthHandler {
	return &AuthHandler{logger: logger, uc: uc, auth: auth}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/me", h.Me, h.auth)
	g.POST("/api-keys", h.CreateAPIKey, h.auth)
	g.GET("/api-keys", h.ListAPIKeys, h.auth)
}

func (h *AuthHandler) Register(c echo.Context) error {
	req := &models.RegisterRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Register(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("register usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, res)
}

func (h *AuthHandler) Login(c echo.Context) error {
	req := &models.LoginRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Login(c.Request().Context(), req)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return xhttp.AppErrorResponse(c, models.NewDomainError(models.ErrCodeUnauthorized, "missing identity"))
	}
	res, err := h.uc.Me(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("me usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AuthHandler) CreateAPIKey(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return xhttp.AppErrorResponse(c, models.NewDomainError(models.ErrCodeUnauthorized, "missing identity"))
	}
	req := &models.CreateAPIKeyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.CreateAPIKey(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("create api key usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, res)
}

func (h *AuthHandler) ListAPIKeys(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return xhttp.AppErrorResponse(c, models.NewDomainError(models.ErrCodeUnauthorized, "missing identity"))
	}
	res, err := h.uc.ListAPIKeys(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("list api keys usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

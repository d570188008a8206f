package api

import (
	"github.com/labstack/echo/v4"
)

// Router registers every API handler on one Echo instance.
type Router struct {
	auth       *AuthHandler
	indicators *IndicatorsHandler
	system     *SystemHandler
}

func NewRouter(auth *AuthHandler, indicators *IndicatorsHandler, system *SystemHandler) *Router {
	return &Router{auth: auth, indicators: indicators, system: system}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	r.auth.RegisterRoutes(e)
	r.indicators.RegisterRoutes(e)
	r.system.RegisterRoutes(e)
}

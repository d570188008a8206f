// Package middleware holds application middleware for the API server.
package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	xhttp "github.com/zengarv/StockInsightAPI/pkg/http"
	"github.com/zengarv/StockInsightAPI/pkg/logger"
)

const identityKey = "auth.identity"

// CredentialResolver verifies a presented credential and returns the
// identity behind it.
type CredentialResolver interface {
	ResolveToken(ctx context.Context, token string) (models.Identity, error)
	ResolveAPIKey(ctx context.Context, key string) (models.Identity, error)
}

// RequireAuth authenticates every request with either a bearer token or an
// X-API-Key header and stores the identity in the request context.
func RequireAuth(resolver CredentialResolver, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := resolve(c, resolver)
			if err != nil {
				log.Debug("authentication failed",
					logger.String("path", c.Path()),
					logger.Error(err))
				return xhttp.AppErrorResponse(c, err)
			}
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

func resolve(c echo.Context, resolver CredentialResolver) (models.Identity, error) {
	ctx := c.Request().Context()

	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return models.Identity{}, models.NewDomainError(models.ErrCodeUnauthorized,
				"authorization header must use the Bearer scheme")
		}
		return resolver.ResolveToken(ctx, token)
	}

	if key := c.Request().Header.Get("X-API-Key"); key != "" {
		return resolver.ResolveAPIKey(ctx, key)
	}

	return models.Identity{}, models.NewDomainError(models.ErrCodeUnauthorized,
		"missing credentials: provide a bearer token or an X-API-Key header")
}

// IdentityFrom returns the authenticated identity set by RequireAuth.
func IdentityFrom(c echo.Context) (models.Identity, bool) {
	id, ok := c.Get(identityKey).(models.Identity)
	return id, ok
}

package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
)

// DataResponse writes API response with status and data. The status code
// is both the HTTP status and part of the envelope, so clients that only
// look at the body still see it.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

// SuccessResponse writes success response.
func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// CreatedResponse writes created response.
func CreatedResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusCreated, data)
}

// NoContentResponse writes no content response.
func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// BadRequestResponse writes bad request error.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusBadRequest, data)
}

// UnauthorizedResponse writes unauthorized error.
func UnauthorizedResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusUnauthorized, data)
}

// ForbiddenResponse writes forbidden error.
func ForbiddenResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusForbidden, data)
}

// NotFoundResponse writes not found error.
func NotFoundResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusNotFound, data)
}

// InternalServerErrorResponse writes internal server error.
func InternalServerErrorResponse(c echo.Context) error {
	return DataResponse(c, http.StatusInternalServerError, "Something went wrong")
}

// AppErrorResponse writes application error response. Domain errors are
// mapped to their HTTP status first; quota rejections additionally carry
// the standard rate limit headers.
func AppErrorResponse(c echo.Context, err error) error {
	var rle *models.RateLimitExceededError
	if errors.As(err, &rle) {
		h := c.Response().Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(rle.Limit, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(rle.Remaining, 10))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(rle.ResetAt.Unix(), 10))
		h.Set("Retry-After", strconv.FormatInt(int64(time.Until(rle.ResetAt).Seconds())+1, 10))
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = FromDomainError(err)
	}
	return DataResponse(c, appErr.Status, []*AppError{appErr})
}

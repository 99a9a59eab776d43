package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "herstory/internal/errors"
	"herstory/pkg/logger"
)

// SuccessResponse acknowledges an operation with no other payload.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// respondError translates a service error into the error envelope. Internal
// faults are logged with the request id and reported opaquely.
func respondError(c echo.Context, op string, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if apperrors.IsInternal(err) {
		logger.Error(op,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func invalidBody() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: "invalid request body",
		Code:  "INVALID_REQUEST",
	})
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	apperrors "herstory/internal/errors"
	"herstory/internal/model"
	"herstory/pkg/logger"
)

// ContextKey is the echo context key holding the *Claims of an admitted request.
const ContextKey = "admin"

var errAdminLookup = errors.New("admin lookup failed")

// AdminFinder resolves a token subject to a stored admin.
type AdminFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Admin, error)
}

// Gate returns middleware that admits a request only when it carries a
// valid "Authorization: Bearer <token>" header whose subject is an existing
// admin. Everything else is rejected with 401 before the handler runs.
func Gate(tokens *TokenService, admins AdminFinder) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			claims, err := tokens.Validate(raw)
			if err != nil {
				return nil, err
			}
			adminID, err := claims.AdminID()
			if err != nil {
				return nil, ErrInvalidToken
			}
			if _, err := admins.FindByID(c.Request().Context(), adminID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrInvalidToken
				}
				return nil, fmt.Errorf("%w: %w", errAdminLookup, err)
			}
			return claims, nil
		},
		ErrorHandler: gateError,
	})
}

func gateError(c echo.Context, err error) error {
	var extractErr *echojwt.TokenExtractionError
	switch {
	case errors.Is(err, errAdminLookup):
		logger.Error("auth gate admin lookup",
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"error", err)
		httpErr := apperrors.Internal()
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	case errors.As(err, &extractErr), errors.Is(err, echojwt.ErrJWTMissing):
		httpErr := apperrors.MapErrorToHTTP(apperrors.ErrUnauthenticated)
		return echo.NewHTTPError(http.StatusUnauthorized, httpErr.ToErrorResponse())
	default:
		httpErr := apperrors.MapErrorToHTTP(apperrors.ErrInvalidToken)
		return echo.NewHTTPError(http.StatusUnauthorized, httpErr.ToErrorResponse())
	}
}

// ClaimsFromContext returns the claims the Gate attached to c.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKey).(*Claims)
	return claims, ok && claims != nil
}

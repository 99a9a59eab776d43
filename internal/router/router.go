package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"herstory/internal/config"
	apperrors "herstory/internal/errors"
	"herstory/internal/handler"
	"herstory/internal/model"
	"herstory/pkg/logger"
)

// Register wires routes and middleware. gate guards every mutating blog
// route and token verification; the read routes never see it.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	gate echo.MiddlewareFunc,
	authHandler *handler.AuthHandler,
	blogHandler *handler.BlogHandler,
	newsletterHandler *handler.NewsletterHandler,
) {
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = &CustomValidator{}

	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(corsConfig(cfg.CORSOrigins)))
	e.Use(middleware.BodyLimit("1M"))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	api.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "pong"})
	})

	// Auth
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/verify", authHandler.Verify, gate)

	// Blog: public reads
	api.GET("/blog", blogHandler.ListPosts)
	api.GET("/blog/:id", blogHandler.GetPost)

	// Blog: gated writes
	api.POST("/blog", blogHandler.CreatePost, gate)
	api.PUT("/blog/:id", blogHandler.UpdatePost, gate)
	api.DELETE("/blog/:id", blogHandler.DeletePost, gate)

	// Newsletter
	api.POST("/newsletter/subscribe", newsletterHandler.Subscribe)
}

func corsConfig(origins []string) middleware.CORSConfig {
	wildcard := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: !wildcard,
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
				"remote_ip", v.RemoteIP,
			)
			return nil
		},
	})
}

// ErrorHandler renders every error in the {"error","code"} envelope. 5xx
// responses never carry the underlying message.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		logger.Error("unhandled error",
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"path", c.Path(),
			"error", err)
		he = echo.NewHTTPError(http.StatusInternalServerError)
	}

	var body apperrors.ErrorResponse
	switch msg := he.Message.(type) {
	case apperrors.ErrorResponse:
		body = msg
	case string:
		body = apperrors.ErrorResponse{Error: msg}
	default:
		body = apperrors.ErrorResponse{Error: http.StatusText(he.Code)}
	}
	if he.Code >= http.StatusInternalServerError {
		body = apperrors.Internal().ToErrorResponse()
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(he.Code)
	} else {
		writeErr = c.JSON(he.Code, body)
	}
	if writeErr != nil {
		logger.Error("write error response", "error", writeErr)
	}
}

// CustomValidator reports the first invalid field of a request body.
type CustomValidator struct{}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return model.Validate(i)
}

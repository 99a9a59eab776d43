// Package app assembles the HTTP server from configuration and a database.
package app

import (
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"herstory/internal/auth"
	"herstory/internal/config"
	"herstory/internal/handler"
	"herstory/internal/repository"
	"herstory/internal/router"
	"herstory/internal/service"
)

// RequestTimeout bounds reading a request and writing its response.
const RequestTimeout = 10 * time.Second

// New builds the echo server with every repository, service and handler
// wired. Token options are forwarded to the token service.
func New(cfg *config.Config, gormDB *gorm.DB, tokenOpts ...auth.Option) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = RequestTimeout
	e.Server.WriteTimeout = RequestTimeout

	// Initialize repositories
	adminRepo := repository.NewAdminRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	subscriberRepo := repository.NewSubscriberRepository(gormDB)

	// Initialize auth components
	tokens := auth.NewTokenService(cfg.JWTSecret, tokenOpts...)
	gate := auth.Gate(tokens, adminRepo)

	// Initialize services
	authService := service.NewAuthService(adminRepo, tokens)
	postService := service.NewPostService(postRepo)
	newsletterService := service.NewNewsletterService(subscriberRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	blogHandler := handler.NewBlogHandler(postService)
	newsletterHandler := handler.NewNewsletterHandler(newsletterService)

	// Register routes
	router.Register(
		e,
		cfg,
		gate,
		authHandler,
		blogHandler,
		newsletterHandler,
	)

	return e
}

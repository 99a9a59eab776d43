package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"herstory/internal/auth"
	apperrors "herstory/internal/errors"
	"herstory/internal/model"
	"herstory/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Success bool               `json:"success"`
	Token   string             `json:"token"`
	User    model.AdminSummary `json:"user"`
}

// VerifyResponse represents a successful token verification.
type VerifyResponse struct {
	Success bool               `json:"success"`
	User    model.AdminSummary `json:"user"`
}

// Login godoc
// @Summary Login admin
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginInput true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req model.LoginInput
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	if err := c.Validate(&req); err != nil {
		return respondError(c, "login", err)
	}

	token, admin, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, "login", err)
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		User:    admin.Summary(),
	})
}

// Verify godoc
// @Summary Verify the bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} VerifyResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return respondError(c, "verify", apperrors.ErrUnauthenticated)
	}
	adminID, err := claims.AdminID()
	if err != nil {
		return respondError(c, "verify", apperrors.ErrInvalidToken)
	}

	admin, err := h.authService.Verify(c.Request().Context(), adminID)
	if err != nil {
		return respondError(c, "verify", err)
	}

	return c.JSON(http.StatusOK, VerifyResponse{
		Success: true,
		User:    admin.Summary(),
	})
}

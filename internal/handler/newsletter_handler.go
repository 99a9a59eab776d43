package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"herstory/internal/model"
	"herstory/internal/service"
)

// NewsletterHandler handles newsletter endpoints.
type NewsletterHandler struct {
	newsletterService service.NewsletterService
}

// NewNewsletterHandler creates a new newsletter handler.
func NewNewsletterHandler(newsletterService service.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{newsletterService: newsletterService}
}

// SubscribeResponse represents the subscription result.
type SubscribeResponse struct {
	Success           bool                        `json:"success"`
	Message           string                      `json:"message"`
	AlreadySubscribed bool                        `json:"alreadySubscribed,omitempty"`
	Subscriber        *model.NewsletterSubscriber `json:"subscriber,omitempty"`
}

// Subscribe godoc
// @Summary Subscribe to the newsletter
// @Tags newsletter
// @Accept json
// @Produce json
// @Param request body model.SubscribeInput true "Email address"
// @Success 200 {object} SubscribeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /newsletter/subscribe [post]
func (h *NewsletterHandler) Subscribe(c echo.Context) error {
	var req model.SubscribeInput
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	subscriber, already, err := h.newsletterService.Subscribe(c.Request().Context(), req.Email)
	if err != nil {
		return respondError(c, "subscribe", err)
	}

	if already {
		return c.JSON(http.StatusOK, SubscribeResponse{
			Success:           true,
			Message:           "You're already subscribed!",
			AlreadySubscribed: true,
		})
	}
	return c.JSON(http.StatusOK, SubscribeResponse{
		Success:    true,
		Message:    "Successfully subscribed to newsletter!",
		Subscriber: subscriber,
	})
}

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/funneltrack/pkg/api/errors"
	"github.com/jordanlanch/funneltrack/pkg/checkout"
	"github.com/jordanlanch/funneltrack/pkg/domain"
	"github.com/jordanlanch/funneltrack/pkg/middleware"
	"github.com/jordanlanch/funneltrack/pkg/models"
)

// CheckoutHandler handles the simulated checkout
type CheckoutHandler struct {
	service *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// Submit validates the payment form and starts processing. The result is
// recorded asynchronously; the caller only learns that processing began.
func (h *CheckoutHandler) Submit(c echo.Context) error {
	var form checkout.Form
	if err := c.Bind(&form); err != nil {
		return errors.ValidationError(c, err)
	}

	if err := h.service.Submit(c.Request().Context(), middleware.SessionFrom(c), form); err != nil {
		if domain.IsValidation(err) {
			return errors.DomainValidationError(c, err)
		}
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusAccepted, models.AcceptedResponse{Status: "processing"})
}

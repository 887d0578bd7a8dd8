package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/funneltrack/pkg/middleware"
	"github.com/jordanlanch/funneltrack/pkg/models"
)

// GetSession returns the caller's session id, creating the session cookie
// on first contact
func GetSession(c echo.Context) error {
	return c.JSON(http.StatusOK, models.SessionResponse{
		SessionID: middleware.SessionFrom(c).ID,
	})
}

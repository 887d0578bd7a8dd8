// Package handlers exposes the funnel tracking, checkout and analytics
// operations over HTTP.
package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/funneltrack/pkg/tracking"
)

// Scheduler runs tracking jobs off the request path
type Scheduler interface {
	Submit(job tracking.Job) bool
}

// bind decodes the request body into req and validates it
func bind(c echo.Context, v *validator.Validate, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return v.Struct(req)
}

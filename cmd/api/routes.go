package main

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jordanlanch/funneltrack/pkg/api/handlers"
	"github.com/jordanlanch/funneltrack/pkg/container"
	custommiddleware "github.com/jordanlanch/funneltrack/pkg/middleware"
)

// registerRoutes mounts the public API on e. Tracking, quiz and checkout
// routes resolve the session cookie; analytics routes do not.
func registerRoutes(e *echo.Echo, c *container.Container, limiter *custommiddleware.RateLimiter) {
	e.GET("/health", c.HealthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1", limiter.RateLimitMiddleware())

	session := custommiddleware.Session(c.Identity, c.CookieConfig())

	v1.GET("/session", handlers.GetSession, session)

	track := v1.Group("/track", session)
	{
		track.POST("/searches", c.TrackingHandler.CreateSearch)
		track.PATCH("/session", c.TrackingHandler.UpdateSession)
		track.POST("/session/complete", c.TrackingHandler.CompleteSession)
		track.POST("/answers", c.TrackingHandler.TrackAnswer)
		track.POST("/drop-offs", c.TrackingHandler.TrackDropOff)
		track.POST("/funnel", c.TrackingHandler.TrackFunnelStep)
		track.POST("/payments", c.TrackingHandler.TrackPayment)
		track.POST("/loading", c.TrackingHandler.TrackLoading)
		track.POST("/page-views", c.TrackingHandler.TrackPageView)
		track.POST("/interactions", c.TrackingHandler.TrackInteraction)
		track.POST("/device", c.TrackingHandler.TrackDevice)
	}

	v1.POST("/quiz/photo", c.QuizHandler.UploadPhoto, session)
	v1.POST("/checkout", c.CheckoutHandler.Submit, session)

	analyticsRoutes := v1.Group("/analytics")
	{
		analyticsRoutes.GET("/funnel", c.AnalyticsHandler.GetFunnel)
		analyticsRoutes.GET("/drop-offs", c.AnalyticsHandler.GetDropOffs)
		analyticsRoutes.GET("/sessions", c.AnalyticsHandler.GetSessions)
		analyticsRoutes.GET("/sessions/export", c.AnalyticsHandler.ExportSessions)
		analyticsRoutes.GET("/searches", c.AnalyticsHandler.GetSearches)
		analyticsRoutes.GET("/dashboard", c.AnalyticsHandler.GetDashboard)
	}
}

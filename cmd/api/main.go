package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jordanlanch/funneltrack/config"
	"github.com/jordanlanch/funneltrack/pkg/container"
	"github.com/jordanlanch/funneltrack/pkg/jobs"
	"github.com/jordanlanch/funneltrack/pkg/metrics"
	custommiddleware "github.com/jordanlanch/funneltrack/pkg/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 0.2,
			AttachStacktrace: true,
			BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
				// Request bodies may carry card data
				if event.Request != nil {
					event.Request.Data = ""
				}
				return event
			},
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	c, err := container.New(startCtx, cfg, prometheusMetrics)
	cancelStart()
	if err != nil {
		log.Fatalf("❌ Failed to initialize dependencies: %v", err)
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	rateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true, // let Recover answer the request
		}))
	}

	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.DefaultSecurityHeadersConfig()))
	e.Use(middleware.BodyLimit("12M"))

	registerRoutes(e, c, rateLimiter)

	// Idle session sweeper
	cronManager := jobs.NewCronManager(c.Sweeper, log.Default())
	if err := cronManager.SetupJobs(cfg.DropOffSweepSchedule); err != nil {
		log.Fatalf("❌ Failed to setup cron jobs: %v", err)
	}
	cronManager.Start()
	log.Printf("✅ Cron jobs started successfully")

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 Funnel tracking API starting on %s", address)
	log.Printf("📝 Log level: %s, Log format: %s", cfg.LogLevel, cfg.LogFormat)
	log.Printf("💾 Store: %s", cfg.StoreDriver)
	log.Printf("🌍 CORS: %s", strings.Join(cfg.CORSAllowedOrigins, ", "))
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("⏰ Drop-off sweep: %s (idle after %s)", cfg.DropOffSweepSchedule, cfg.DropOffIdleAfter)

	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop cron jobs and wait for a running sweep
	select {
	case <-cronManager.Stop().Done():
		log.Println("✅ Cron jobs stopped")
	case <-ctx.Done():
		log.Println("⚠️  Cron jobs still running at shutdown")
	}

	if err := e.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}
	rateLimiter.Stop()

	// Flush queued tracking writes before closing the store
	if err := c.Close(ctx); err != nil {
		log.Printf("⚠️  Shutdown incomplete: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}

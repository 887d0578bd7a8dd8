package container

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jordanlanch/funneltrack/config"
	"github.com/jordanlanch/funneltrack/pkg/analytics"
	"github.com/jordanlanch/funneltrack/pkg/api/handlers"
	"github.com/jordanlanch/funneltrack/pkg/cache"
	"github.com/jordanlanch/funneltrack/pkg/checkout"
	"github.com/jordanlanch/funneltrack/pkg/database"
	"github.com/jordanlanch/funneltrack/pkg/identity"
	"github.com/jordanlanch/funneltrack/pkg/jobs"
	"github.com/jordanlanch/funneltrack/pkg/logger"
	"github.com/jordanlanch/funneltrack/pkg/metrics"
	"github.com/jordanlanch/funneltrack/pkg/store"
	"github.com/jordanlanch/funneltrack/pkg/supabase"
	"github.com/jordanlanch/funneltrack/pkg/tracking"
	"github.com/jordanlanch/funneltrack/pkg/uploads"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Logger  logger.Logger
	Metrics *metrics.Metrics

	// Infrastructure
	Store store.Store
	SQL   *database.Client // nil for the REST store
	Cache *cache.Client    // nil when REDIS_URL is empty

	// Tracking
	Identity   *identity.Provider
	Dispatcher *tracking.Dispatcher
	Tracker    *tracking.Tracker

	// Services
	AnalyticsService *analytics.Service
	Dashboard        *analytics.Dashboard
	CheckoutService  *checkout.Service
	Photos           uploads.PhotoStore // nil when PHOTO_S3_BUCKET is empty
	Sweeper          *jobs.IdleSweeper

	// Handlers
	TrackingHandler  *handlers.TrackingHandler
	QuizHandler      *handlers.QuizHandler
	CheckoutHandler  *handlers.CheckoutHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	HealthHandler    *handlers.HealthHandler
}

// New creates and initializes all application dependencies. A nil m gets
// metrics on a private registry.
func New(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Container, error) {
	if m == nil {
		m = metrics.NewWithRegistry(prometheus.NewRegistry())
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout),
		Metrics: m,
	}

	if err := c.initInfrastructure(ctx); err != nil {
		c.closeInfrastructure()
		return nil, err
	}

	c.initServices()
	c.initHandlers()

	c.Logger.Info("Container initialized successfully",
		"environment", cfg.APIEnvironment,
		"store", cfg.StoreDriver,
		"cache", c.Cache != nil,
		"photo_storage", c.Photos != nil)

	return c, nil
}

// initInfrastructure connects the table store, cache and photo storage
func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config

	switch cfg.StoreDriver {
	case config.StoreDriverPostgres, config.StoreDriverSQLite:
		sslConfig := &database.SSLConfig{
			Mode:         cfg.DBSSLMode,
			CertPath:     cfg.DBSSLCert,
			KeyPath:      cfg.DBSSLKey,
			RootCertPath: cfg.DBSSLRootCert,
		}
		client, err := database.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL, database.Options{
			SSL:         sslConfig,
			AutoMigrate: cfg.DBAutoMigrate,
		})
		if err != nil {
			c.Logger.Error("Failed to connect to database", "driver", cfg.StoreDriver, "error", err)
			return err
		}
		c.SQL = client
		sqlStore := database.NewStore(client, c.Metrics.RecordStoreQuery)
		if len(cfg.DBReadReplicaURLs) > 0 {
			sqlStore.UseReplicas(database.OpenReplicas(ctx, cfg.StoreDriver, database.ReplicaConfig{
				URLs:                cfg.DBReadReplicaURLs,
				Strategy:            cfg.DBReplicaStrategy,
				HealthCheckInterval: cfg.DBReplicaHealthCheckEvery,
			}, database.Options{SSL: sslConfig}))
		}
		c.Store = sqlStore
	case config.StoreDriverSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_KEY are required for the supabase store")
		}
		c.Store = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
		if err := c.Store.Ping(ctx); err != nil {
			c.Logger.Warn("Supabase not reachable at startup", "error", err)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.RedisURL != "" {
		client, err := cache.NewClient(cfg.RedisURL)
		if err != nil {
			c.Logger.Error("Failed to connect to cache", "error", err)
			return err
		}
		c.Cache = client
	}

	if cfg.PhotoS3Bucket != "" {
		photos, err := uploads.NewS3Store(ctx, uploads.Config{
			AWSAccessKeyID:     cfg.AWSAccessKeyID,
			AWSSecretAccessKey: cfg.AWSSecretAccessKey,
			AWSRegion:          cfg.AWSRegion,
			Bucket:             cfg.PhotoS3Bucket,
		})
		if err != nil {
			c.Logger.Error("Failed to initialize photo storage", "bucket", cfg.PhotoS3Bucket, "error", err)
			return err
		}
		c.Photos = photos
	}

	c.Logger.Info("Infrastructure initialized",
		"store", cfg.StoreDriver,
		"cache", c.Cache != nil)

	return nil
}

// initServices initializes the tracking and analytics services
func (c *Container) initServices() {
	cfg := c.Config

	c.Identity = identity.NewProvider(cfg.SessionCookieName, c.Logger)
	c.Dispatcher = tracking.NewDispatcher(cfg.TrackingWorkers, cfg.TrackingQueueSize, c.Logger, c.Metrics)
	c.Tracker = tracking.New(c.Store, c.Logger,
		tracking.WithRecorder(c.Metrics),
		tracking.WithTotalSteps(cfg.QuizTotalSteps),
	)

	c.AnalyticsService = analytics.NewService(c.Store, c.Logger)

	// A typed nil *cache.Client must not reach the interface
	var dashboardCache analytics.Cache
	if c.Cache != nil {
		dashboardCache = c.Cache
	}
	c.Dashboard = analytics.NewDashboard(c.AnalyticsService, dashboardCache, cfg.DashboardCacheTTL, c.Metrics, c.Logger)

	c.CheckoutService = checkout.NewService(c.Tracker, c.Dispatcher, cfg.CheckoutProcessingDelay, c.Metrics, c.Logger)
	c.Sweeper = jobs.NewIdleSweeper(c.Store, c.Tracker, cfg.DropOffIdleAfter, c.Logger)

	c.Logger.Info("Services initialized",
		"tracking_workers", cfg.TrackingWorkers,
		"tracking_queue", cfg.TrackingQueueSize,
		"quiz_steps", c.Tracker.TotalSteps())
}

// initHandlers initializes all HTTP handlers
func (c *Container) initHandlers() {
	c.TrackingHandler = handlers.NewTrackingHandler(c.Tracker, c.Dispatcher)
	c.QuizHandler = handlers.NewQuizHandler(c.Tracker, c.Dispatcher, c.Photos, c.Logger)
	c.CheckoutHandler = handlers.NewCheckoutHandler(c.CheckoutService)
	c.AnalyticsHandler = handlers.NewAnalyticsHandler(c.AnalyticsService, c.Dashboard)

	if c.Cache != nil {
		c.HealthHandler = handlers.NewHealthHandler(c.Store, c.Cache)
	} else {
		c.HealthHandler = handlers.NewHealthHandler(c.Store, nil)
	}

	c.Logger.Info("Handlers initialized")
}

// CookieConfig returns the session cookie attributes
func (c *Container) CookieConfig() identity.CookieConfig {
	return identity.CookieConfig{
		Domain: c.Config.SessionCookieDomain,
		Secure: c.Config.SessionCookieSecure,
	}
}

// Close drains pending tracking jobs, then closes the cache and store
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.Dispatcher != nil {
		if err := c.Dispatcher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("dispatcher: %w", err))
		}
	}
	if err := c.closeInfrastructure(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Container) closeInfrastructure() error {
	var errs []error
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	return errors.Join(errs...)
}

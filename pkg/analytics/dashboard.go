package analytics

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jordanlanch/funneltrack/pkg/cache"
	"github.com/jordanlanch/funneltrack/pkg/logger"
)

const dashboardCacheType = "dashboard"

// Cache stores encoded dashboard summaries
type Cache interface {
	GetJSON(ctx context.Context, key string, v any) error
	SetJSON(ctx context.Context, key string, v any, expiration time.Duration) error
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

// CacheRecorder counts cache lookups
type CacheRecorder interface {
	RecordCacheHit(cacheType string)
	RecordCacheMiss(cacheType string)
}

// Dashboard builds the analytics dashboard summary
type Dashboard struct {
	service  *Service
	cache    Cache
	ttl      time.Duration
	recorder CacheRecorder
	logger   logger.Logger
}

// NewDashboard creates a dashboard over service. cache and recorder may be
// nil, in which case every request reads the store.
func NewDashboard(service *Service, c Cache, ttl time.Duration, recorder CacheRecorder, log logger.Logger) *Dashboard {
	if log == nil {
		log = logger.Nop()
	}
	return &Dashboard{
		service:  service,
		cache:    c,
		ttl:      ttl,
		recorder: recorder,
		logger:   log.With("component", "dashboard"),
	}
}

// CacheKey returns the cache key of the summary for r
func CacheKey(r DateRange) string {
	return "analytics:dashboard:" + r.Key()
}

// Summary runs the three aggregators concurrently and reduces their
// results. A failed read counts as an empty record set.
func (d *Dashboard) Summary(ctx context.Context, r DateRange) (Summary, error) {
	key := CacheKey(r)
	if d.cache != nil && d.ttl > 0 {
		var cached Summary
		err := d.cache.GetJSON(ctx, key, &cached)
		switch {
		case err == nil:
			d.hit()
			return cached, nil
		case errors.Is(err, cache.ErrMiss):
			d.miss()
		default:
			d.miss()
			d.logger.Warn("dashboard cache read failed", "key", key, "error", err)
		}
	}

	var (
		sessions []Search
		dropOffs []DropOff
		funnel   []FunnelEvent

		sessionsErr, dropOffsErr, funnelErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions, sessionsErr = d.service.GetSessionsWithProgress(gctx, r)
		return nil
	})
	g.Go(func() error {
		dropOffs, dropOffsErr = d.service.GetDropOffAnalysis(gctx, r)
		return nil
	})
	g.Go(func() error {
		funnel, funnelErr = d.service.GetFunnelAnalytics(gctx, r)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	sum := BuildSummary(r, sessions, dropOffs, funnel)

	// A summary built over a failed read is served but never cached
	if readErr := errors.Join(sessionsErr, dropOffsErr, funnelErr); readErr != nil {
		d.logger.Warn("dashboard built from partial data, not cached", "key", key, "error", readErr)
		return sum, nil
	}

	if d.cache != nil && d.ttl > 0 {
		if err := d.cache.SetJSON(ctx, key, sum, d.ttl); err != nil {
			d.logger.Warn("dashboard cache write failed", "key", key, "error", err)
		}
	}
	return sum, nil
}

// Invalidate drops every cached summary
func (d *Dashboard) Invalidate(ctx context.Context) error {
	if d.cache == nil {
		return nil
	}
	n, err := d.cache.DeletePattern(ctx, "analytics:dashboard:*")
	if err != nil {
		return err
	}
	d.logger.Info("dashboard cache invalidated", "keys", n)
	return nil
}

func (d *Dashboard) hit() {
	if d.recorder != nil {
		d.recorder.RecordCacheHit(dashboardCacheType)
	}
}

func (d *Dashboard) miss() {
	if d.recorder != nil {
		d.recorder.RecordCacheMiss(dashboardCacheType)
	}
}

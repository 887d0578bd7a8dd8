package database

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// Load balancing strategies for read replicas
const (
	StrategyRoundRobin = "round-robin"
	StrategyRandom     = "random"
)

// ReplicaConfig holds configuration for read replicas
type ReplicaConfig struct {
	// URLs is a list of read replica connection strings
	URLs []string

	// Strategy is StrategyRoundRobin (default) or StrategyRandom
	Strategy string

	// HealthCheckInterval is how often replicas are pinged. Zero disables
	// background checks.
	HealthCheckInterval time.Duration
}

// DefaultReplicaConfig returns default configuration for read replicas
func DefaultReplicaConfig() ReplicaConfig {
	return ReplicaConfig{
		Strategy:            StrategyRoundRobin,
		HealthCheckInterval: 30 * time.Second,
	}
}

// Replicas is a set of read-only connections that Store.Select can be
// routed to. Writes always go to the primary.
type Replicas struct {
	replicas []*replica
	rrIndex  uint64
	strategy string

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

type replica struct {
	client  *Client
	url     string
	healthy atomic.Bool
}

// OpenReplicas connects to every replica URL. Replicas that fail to
// connect are skipped; the returned set may be empty.
func OpenReplicas(ctx context.Context, driver string, cfg ReplicaConfig, opts Options) *Replicas {
	r := &Replicas{
		replicas: make([]*replica, 0, len(cfg.URLs)),
		strategy: cfg.Strategy,
		stop:     make(chan struct{}),
	}

	// Replicas get half the primary's connections and never migrate
	opts.AutoMigrate = false
	if opts.Pool.MaxOpenConns == 0 {
		opts.Pool = DefaultPoolConfig()
	}
	opts.Pool.MaxOpenConns /= 2
	if opts.Pool.MaxOpenConns < 5 {
		opts.Pool.MaxOpenConns = 5
	}

	for i, url := range cfg.URLs {
		client, err := Open(ctx, driver, url, opts)
		if err != nil {
			log.Printf("⚠️  Failed to connect to read replica #%d: %v", i+1, err)
			continue
		}
		rep := &replica{client: client, url: url}
		rep.healthy.Store(true)
		r.replicas = append(r.replicas, rep)
	}

	if len(r.replicas) == 0 {
		log.Printf("ℹ️  No read replicas available, all queries will use primary")
		return r
	}

	log.Printf("✅ Connected to %d read replica(s)", len(r.replicas))
	if cfg.HealthCheckInterval > 0 {
		r.startHealthChecking(cfg.HealthCheckInterval)
	}
	return r
}

// Len returns the number of connected replicas
func (r *Replicas) Len() int {
	if r == nil {
		return 0
	}
	return len(r.replicas)
}

// Next returns a healthy replica chosen by the configured strategy, or nil
// when none is healthy
func (r *Replicas) Next() *Client {
	n := r.Len()
	if n == 0 {
		return nil
	}

	var start int
	if r.strategy == StrategyRandom {
		start = rand.Intn(n)
	} else {
		start = int(atomic.AddUint64(&r.rrIndex, 1) % uint64(n))
	}

	for i := 0; i < n; i++ {
		rep := r.replicas[(start+i)%n]
		if rep.healthy.Load() {
			return rep.client
		}
	}
	return nil
}

// Healthy returns the number of replicas that passed their last check
func (r *Replicas) Healthy() int {
	count := 0
	for i := 0; i < r.Len(); i++ {
		if r.replicas[i].healthy.Load() {
			count++
		}
	}
	return count
}

func (r *Replicas) startHealthChecking(interval time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.CheckHealth(context.Background())
			case <-r.stop:
				return
			}
		}
	}()

	log.Printf("✅ Replica health checking started (interval: %s)", interval)
}

// CheckHealth pings every replica and updates its health
func (r *Replicas) CheckHealth(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < r.Len(); i++ {
		wg.Add(1)
		go func(idx int, rep *replica) {
			defer wg.Done()

			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			err := rep.client.Ping(pingCtx)
			wasHealthy := rep.healthy.Swap(err == nil)

			if wasHealthy && err != nil {
				log.Printf("⚠️  Read replica #%d became unhealthy: %v", idx+1, err)
			} else if !wasHealthy && err == nil {
				log.Printf("✅ Read replica #%d recovered", idx+1)
			}
		}(i, r.replicas[i])
	}
	wg.Wait()
}

// Close stops health checking and closes every replica connection
func (r *Replicas) Close() error {
	if r == nil {
		return nil
	}
	r.once.Do(func() { close(r.stop) })
	r.wg.Wait()

	var errs []error
	for _, rep := range r.replicas {
		if err := rep.client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

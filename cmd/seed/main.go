package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jordanlanch/funneltrack/config"
	"github.com/jordanlanch/funneltrack/pkg/container"
	"github.com/jordanlanch/funneltrack/pkg/testdata"
)

func main() {
	now := time.Now().UTC()
	defaults := testdata.DefaultJourneyGeneratorConfig(now)

	count := flag.Int("count", defaults.Count, "number of journeys to generate")
	days := flag.Int("days", 7, "spread journeys over the last N days")
	completion := flag.Float64("completion", defaults.CompletionChance, "probability a journey finishes the quiz")
	payment := flag.Float64("payment", defaults.PaymentChance, "probability a completed journey pays")
	seed := flag.Int64("seed", 0, "random seed (0 = random)")
	flag.Parse()

	if *days <= 0 {
		log.Fatalf("❌ -days must be positive, got %d", *days)
	}

	cfg := config.Load()
	if cfg.IsProduction() {
		log.Fatalf("❌ Refusing to seed synthetic journeys in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("❌ Failed to initialize dependencies: %v", err)
	}
	defer func() {
		if err := c.Close(context.Background()); err != nil {
			log.Printf("⚠️  Failed to close dependencies: %v", err)
		}
	}()

	spread := time.Duration(*days) * 24 * time.Hour
	log.Printf("🌱 Seeding %d journeys into %s store (last %d days)...", *count, cfg.StoreDriver, *days)

	stats, err := testdata.GenerateJourneys(ctx, c.Store, c.Logger, testdata.JourneyGeneratorConfig{
		Count:            *count,
		Start:            now.Add(-spread),
		Spread:           spread,
		CompletionChance: *completion,
		PaymentChance:    *payment,
		Seed:             *seed,
	})
	if err != nil {
		log.Printf("❌ Seeding stopped after %d journeys: %v", stats.Journeys, err)
		return
	}

	if err := c.Dashboard.Invalidate(ctx); err != nil {
		log.Printf("⚠️  Failed to invalidate dashboard cache: %v", err)
	}

	log.Printf("✅ Created %d journeys", stats.Journeys)
	log.Printf("   🏁 Completed: %d", stats.Completed)
	log.Printf("   🚪 Dropped off: %d", stats.DroppedOff)
	log.Printf("   💳 Paid: %d", stats.Payments)
	log.Println("🎉 Seeding complete!")
}

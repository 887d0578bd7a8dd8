// Package testdata generates synthetic funnel traffic for development
// dashboards and tests.
package testdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/jordanlanch/funneltrack/pkg/checkout"
	"github.com/jordanlanch/funneltrack/pkg/device"
	"github.com/jordanlanch/funneltrack/pkg/logger"
	"github.com/jordanlanch/funneltrack/pkg/quiz"
	"github.com/jordanlanch/funneltrack/pkg/store"
	"github.com/jordanlanch/funneltrack/pkg/tracking"
)

// JourneyGeneratorConfig configures journey generation
type JourneyGeneratorConfig struct {
	Count            int
	Start            time.Time     // first possible session start
	Spread           time.Duration // sessions start uniformly within [Start, Start+Spread)
	CompletionChance float64       // 0.0-1.0 probability of finishing the quiz
	PaymentChance    float64       // 0.0-1.0 probability a completed session pays
	Seed             int64         // 0 picks a random seed
}

// DefaultJourneyGeneratorConfig spreads 100 journeys over the last week
func DefaultJourneyGeneratorConfig(now time.Time) JourneyGeneratorConfig {
	return JourneyGeneratorConfig{
		Count:            100,
		Start:            now.Add(-7 * 24 * time.Hour),
		Spread:           7 * 24 * time.Hour,
		CompletionChance: 0.45,
		PaymentChance:    0.3,
	}
}

// JourneyStats counts what was generated
type JourneyStats struct {
	Journeys   int
	Completed  int
	DroppedOff int
	Payments   int
}

var (
	utmSources   = []string{"tiktok", "instagram", "google", "facebook", ""}
	utmMediums   = []string{"cpc", "social", "organic"}
	campaigns    = []string{"spring_launch", "retargeting", "lookalike"}
	dropReasons  = []string{"page_unload", "navigation", "inactive"}
	searchTypes  = []string{tracking.SearchPartner, tracking.SearchPartner, tracking.SearchFriend, tracking.SearchFamily}
	photoFormats = []string{"image/jpeg", "image/png", "image/webp"}
)

// journeyGenerator advances a fake clock while a journey is recorded so
// every record gets a plausible timestamp
type journeyGenerator struct {
	faker   *gofakeit.Faker
	tracker *tracking.Tracker
	clock   time.Time
}

func (g *journeyGenerator) now() time.Time {
	g.clock = g.clock.Add(time.Duration(g.faker.Number(2, 45)) * time.Second)
	return g.clock
}

// GenerateJourneys records cfg.Count synthetic sessions through a Tracker
// writing to s
func GenerateJourneys(ctx context.Context, s store.Store, log logger.Logger, cfg JourneyGeneratorConfig) (JourneyStats, error) {
	if cfg.Count <= 0 {
		return JourneyStats{}, fmt.Errorf("count must be positive, got %d", cfg.Count)
	}
	if cfg.Spread <= 0 {
		cfg.Spread = time.Hour
	}

	g := &journeyGenerator{faker: gofakeit.New(cfg.Seed)}
	g.tracker = tracking.New(s, log, tracking.WithClock(g.now))

	var stats JourneyStats
	for i := 0; i < cfg.Count; i++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		offset := time.Duration(g.faker.Float64Range(0, float64(cfg.Spread)))
		g.clock = cfg.Start.Add(offset).UTC()

		completed, paid := g.journey(ctx, cfg)
		stats.Journeys++
		if completed {
			stats.Completed++
		} else {
			stats.DroppedOff++
		}
		if paid {
			stats.Payments++
		}
	}
	return stats, nil
}

func (g *journeyGenerator) session() tracking.Session {
	q := url.Values{}
	if src := g.faker.RandomString(utmSources); src != "" {
		q.Set("utm_source", src)
		q.Set("utm_medium", g.faker.RandomString(utmMediums))
		q.Set("utm_campaign", g.faker.RandomString(campaigns))
	}
	page := url.URL{Scheme: "https", Host: "funnel.example.com", Path: "/", RawQuery: q.Encode()}

	return tracking.Session{
		ID:        fmt.Sprintf("session_%d_%s", g.clock.UnixMilli(), strings.ToLower(g.faker.LetterN(9))),
		UserAgent: g.faker.UserAgent(),
		IPAddress: g.faker.IPv4Address(),
		PageURL:   page.String(),
		Referrer:  g.faker.URL(),
	}
}

// journey records one session and reports whether it completed the quiz
// and paid
func (g *journeyGenerator) journey(ctx context.Context, cfg JourneyGeneratorConfig) (bool, bool) {
	t := g.tracker
	sess := g.session()

	t.TrackSearch(ctx, sess, tracking.SearchInput{
		Name:       g.faker.Name(),
		Email:      g.faker.Email(),
		SearchType: g.faker.RandomString(searchTypes),
	})
	t.TrackDeviceInfo(ctx, sess, device.Inspect(device.Environment{
		UserAgent:      sess.UserAgent,
		ScreenWidth:    g.faker.RandomInt([]int{390, 414, 1366, 1440, 1920}),
		ScreenHeight:   g.faker.RandomInt([]int{844, 896, 768, 900, 1080}),
		AcceptLanguage: g.faker.RandomString([]string{"en-US,en;q=0.9", "es-ES,es;q=0.8", "fr-FR"}),
		Timezone:       g.faker.TimeZoneRegion(),
	}))
	t.TrackPageView(ctx, sess, tracking.PageViewInput{PagePath: "/quiz", PageTitle: "Quiz"})
	t.TrackFunnelStep(ctx, sess, tracking.FunnelStepInput{Step: tracking.StepQuizStart})

	completes := g.faker.Float64Range(0, 1) < cfg.CompletionChance
	dropStep := 0
	if !completes {
		dropStep = g.faker.Number(1, t.TotalSteps())
	}

	for step := 1; step <= t.TotalSteps(); step++ {
		if step == dropStep {
			spent := g.faker.Number(5, 240)
			t.TrackDropOff(ctx, sess, tracking.DropOffInput{
				StepNumber:       step,
				StepName:         quiz.StepName(step),
				Reason:           g.faker.RandomString(dropReasons),
				TimeSpentSeconds: &spent,
			})
			return false, false
		}
		t.TrackAnswer(ctx, sess, tracking.AnswerInput{
			StepNumber:   step,
			QuestionType: quiz.StepName(step),
			AnswerData:   g.answer(step),
		})
	}

	t.CompleteSession(ctx, sess)
	t.TrackFunnelStep(ctx, sess, tracking.FunnelStepInput{Step: tracking.StepQuizComplete})
	g.loading(ctx, sess)
	t.TrackFunnelStep(ctx, sess, tracking.FunnelStepInput{Step: tracking.StepCheckoutView})

	if g.faker.Float64Range(0, 1) >= cfg.PaymentChance {
		return true, false
	}

	cardType := g.faker.RandomString([]string{"visa", "mastercard", "amex", "discover"})
	for _, status := range []string{tracking.PaymentAttempted, tracking.PaymentSuccessful} {
		in := tracking.PaymentInput{
			Method:      "card",
			Amount:      checkout.Price,
			Currency:    checkout.Currency,
			Status:      status,
			PaymentData: map[string]any{"card_type": cardType},
		}
		if status == tracking.PaymentSuccessful {
			done := g.now()
			in.CompletedAt = &done
		}
		t.TrackPaymentAttempt(ctx, sess, in)
	}
	t.TrackFunnelStep(ctx, sess, tracking.FunnelStepInput{Step: tracking.StepPaymentSuccess})
	t.TrackFunnelStep(ctx, sess, tracking.FunnelStepInput{Step: tracking.StepResultsView})
	return true, true
}

func (g *journeyGenerator) answer(step int) map[string]any {
	switch quiz.StepName(step) {
	case quiz.QuestionAge:
		return map[string]any{"age": fmt.Sprint(g.faker.Number(quiz.MinAge, quiz.MaxAge))}
	case quiz.QuestionLocation:
		return map[string]any{"location": g.faker.City() + ", " + g.faker.StateAbr()}
	case quiz.QuestionPhoto:
		contentType := g.faker.RandomString(photoFormats)
		return map[string]any{
			"file_name": g.faker.LetterN(8) + quiz.PhotoExtension(contentType),
			"file_size": g.faker.Number(50_000, quiz.MaxPhotoSize),
			"file_type": contentType,
		}
	default:
		return map[string]any{}
	}
}

func (g *journeyGenerator) loading(ctx context.Context, sess tracking.Session) {
	t := g.tracker
	t.TrackFunnelStep(ctx, sess, tracking.FunnelStepInput{Step: tracking.StepLoadingStart})
	t.TrackLoadingEvent(ctx, sess, tracking.LoadingInput{EventType: tracking.LoadingStarted})

	profiles := 0
	for pct := 25; pct < 100; pct += 25 {
		p := pct
		profiles += g.faker.Number(200, 900)
		analyzed := profiles
		t.TrackLoadingEvent(ctx, sess, tracking.LoadingInput{
			EventType:          tracking.LoadingProgressUpdate,
			ProgressPercentage: &p,
			ProfilesAnalyzed:   &analyzed,
		})
	}

	duration := g.faker.Number(8, 20)
	t.TrackLoadingEvent(ctx, sess, tracking.LoadingInput{EventType: tracking.LoadingCompleted, DurationSeconds: &duration})
	t.TrackFunnelStep(ctx, sess, tracking.FunnelStepInput{Step: tracking.StepLoadingComplete})
}

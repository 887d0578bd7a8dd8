package checkout

import (
	"context"
	"time"

	"github.com/jordanlanch/funneltrack/pkg/logger"
	"github.com/jordanlanch/funneltrack/pkg/tracking"
)

// Price is the report price charged at checkout
const (
	Price    = 17.9
	Currency = "USD"
)

// DefaultProcessingDelay is how long the simulated payment takes
const DefaultProcessingDelay = 2 * time.Second

// Scheduler runs tracking jobs off the request path
type Scheduler interface {
	Submit(job tracking.Job) bool
	SubmitAfter(delay time.Duration, job tracking.Job) bool
}

// PaymentRecorder counts payment attempts by status
type PaymentRecorder interface {
	RecordPaymentAttempt(status string)
}

// Service handles checkout submissions
type Service struct {
	tracker   *tracking.Tracker
	scheduler Scheduler
	delay     time.Duration
	recorder  PaymentRecorder
	logger    logger.Logger
}

// NewService creates a new checkout service. recorder may be nil.
func NewService(tracker *tracking.Tracker, scheduler Scheduler, delay time.Duration, recorder PaymentRecorder, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if delay < 0 {
		delay = DefaultProcessingDelay
	}
	return &Service{
		tracker:   tracker,
		scheduler: scheduler,
		delay:     delay,
		recorder:  recorder,
		logger:    log.With("component", "checkout"),
	}
}

// Submit normalizes and validates the form, records the attempt and
// schedules the simulated successful payment. Only the card type leaves
// this method.
func (s *Service) Submit(ctx context.Context, sess tracking.Session, form Form) error {
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return err
	}

	method := form.PaymentMethod
	if method == "" {
		method = "card"
	}
	cardType := DetectCardType(form.CardNumber)

	s.scheduler.Submit(func(ctx context.Context) {
		s.tracker.TrackPaymentAttempt(ctx, sess, tracking.PaymentInput{
			Method:   method,
			Amount:   Price,
			Currency: Currency,
			Status:   tracking.PaymentAttempted,
			PaymentData: map[string]any{
				"card_type":      cardType,
				"has_valid_form": true,
			},
		})
		s.tracker.TrackInteraction(ctx, sess, tracking.InteractionInput{
			Type:        tracking.InteractionFormSubmit,
			ElementID:   "payment-form",
			ElementText: "Pay $17.9",
		})
	})
	s.record(tracking.PaymentAttempted)

	s.scheduler.SubmitAfter(s.delay, func(ctx context.Context) {
		s.tracker.TrackPaymentAttempt(ctx, sess, tracking.PaymentInput{
			Method:   method,
			Amount:   Price,
			Currency: Currency,
			Status:   tracking.PaymentSuccessful,
			PaymentData: map[string]any{
				"card_type":       cardType,
				"processing_time": s.delay.Milliseconds(),
			},
		})
		s.tracker.TrackFunnelStep(ctx, sess, tracking.FunnelStepInput{Step: tracking.StepPaymentSuccess})
		s.record(tracking.PaymentSuccessful)
	})

	s.logger.Info("checkout submitted", "session_id", sess.ID, "card_type", cardType, "payment_method", method)
	return nil
}

func (s *Service) record(status string) {
	if s.recorder != nil {
		s.recorder.RecordPaymentAttempt(status)
	}
}

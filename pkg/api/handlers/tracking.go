package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/funneltrack/pkg/api/errors"
	"github.com/jordanlanch/funneltrack/pkg/device"
	"github.com/jordanlanch/funneltrack/pkg/domain"
	"github.com/jordanlanch/funneltrack/pkg/middleware"
	"github.com/jordanlanch/funneltrack/pkg/models"
	"github.com/jordanlanch/funneltrack/pkg/quiz"
	"github.com/jordanlanch/funneltrack/pkg/tracking"
)

var accepted = models.AcceptedResponse{Status: "accepted"}

// TrackingHandler handles the tracking ingest endpoints. Writes other than
// the search record run on the scheduler and always answer 202.
type TrackingHandler struct {
	tracker   *tracking.Tracker
	scheduler Scheduler
	validator *validator.Validate
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(tracker *tracking.Tracker, scheduler Scheduler) *TrackingHandler {
	return &TrackingHandler{
		tracker:   tracker,
		scheduler: scheduler,
		validator: validator.New(),
	}
}

// CreateSearch records the search that opens the session. It waits for the
// write so the id can be returned.
func (h *TrackingHandler) CreateSearch(c echo.Context) error {
	var req models.CreateSearchRequest
	if err := bind(c, h.validator, &req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id := h.tracker.TrackSearch(ctx, middleware.SessionFrom(c), tracking.SearchInput{
		Name:       req.Name,
		Email:      req.Email,
		SearchType: req.SearchType,
		SourcePage: req.SourcePage,
	})
	if id == "" {
		return c.JSON(http.StatusAccepted, models.IDResponse{})
	}
	return c.JSON(http.StatusCreated, models.IDResponse{ID: id})
}

// UpdateSession applies a partial update to the session
func (h *TrackingHandler) UpdateSession(c echo.Context) error {
	var req models.UpdateSessionRequest
	if err := bind(c, h.validator, &req); err != nil {
		return errors.ValidationError(c, err)
	}

	sess := middleware.SessionFrom(c)
	h.scheduler.Submit(func(ctx context.Context) {
		h.tracker.UpdateSession(ctx, sess, tracking.SessionUpdate{
			CurrentStep:   req.CurrentStep,
			CompletedAt:   req.CompletedAt,
			DroppedOffAt:  req.DroppedOffAt,
			DropOffStep:   req.DropOffStep,
			DropOffReason: req.DropOffReason,
			IsCompleted:   req.IsCompleted,
		})
	})
	return c.JSON(http.StatusAccepted, accepted)
}

// CompleteSession marks the session completed
func (h *TrackingHandler) CompleteSession(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	h.scheduler.Submit(func(ctx context.Context) {
		h.tracker.CompleteSession(ctx, sess)
	})
	return c.JSON(http.StatusAccepted, accepted)
}

// TrackAnswer records a quiz answer. Age answers are range-checked.
func (h *TrackingHandler) TrackAnswer(c echo.Context) error {
	var req models.TrackAnswerRequest
	if err := bind(c, h.validator, &req); err != nil {
		return errors.ValidationError(c, err)
	}
	if !quiz.ValidQuestionType(req.QuestionType) {
		return errors.DomainValidationError(c,
			domain.NewValidationError("question_type must be one of name, age, location or photo"))
	}
	if req.QuestionType == quiz.QuestionAge {
		if age, ok := req.AnswerData["age"]; ok && !validAge(age) {
			return errors.DomainValidationError(c,
				domain.NewValidationError("Please enter an age between 18 and 99"))
		}
	}

	sess := middleware.SessionFrom(c)
	h.scheduler.Submit(func(ctx context.Context) {
		h.tracker.TrackAnswer(ctx, sess, tracking.AnswerInput{
			StepNumber:   req.StepNumber,
			QuestionType: req.QuestionType,
			AnswerData:   req.AnswerData,
		})
	})
	return c.JSON(http.StatusAccepted, accepted)
}

// TrackDropOff records an abandoned step and marks the session dropped off
func (h *TrackingHandler) TrackDropOff(c echo.Context) error {
	var req models.TrackDropOffRequest
	if err := bind(c, h.validator, &req); err != nil {
		return errors.ValidationError(c, err)
	}

	sess := middleware.SessionFrom(c)
	h.scheduler.Submit(func(ctx context.Context) {
		h.tracker.TrackDropOff(ctx, sess, tracking.DropOffInput{
			StepNumber:       req.StepNumber,
			StepName:         req.StepName,
			Reason:           req.Reason,
			TimeSpentSeconds: req.TimeSpentSeconds,
		})
	})
	return c.JSON(http.StatusAccepted, accepted)
}

// TrackFunnelStep records a funnel stage transition
func (h *TrackingHandler) TrackFunnelStep(c echo.Context) error {
	var req models.TrackFunnelRequest
	if err := bind(c, h.validator, &req); err != nil {
		return errors.ValidationError(c, err)
	}
	if !tracking.FunnelStep(req.Step).Valid() {
		return errors.DomainValidationError(c,
			domain.NewValidationError("funnel_step is not a known funnel step"))
	}

	sess := middleware.SessionFrom(c)
	h.scheduler.Submit(func(ctx context.Context) {
		h.tracker.TrackFunnelStep(ctx, sess, tracking.FunnelStepInput{
			Step:             tracking.FunnelStep(req.Step),
			StepOrder:        req.StepOrder,
			TimeSpentSeconds: req.TimeSpentSeconds,
			IsCompleted:      req.IsCompleted,
		})
	})
	return c.JSON(http.StatusAccepted, accepted)
}

// TrackPayment records a payment attempt reported by the page
func (h *TrackingHandler) TrackPayment(c echo.Context) error {
	var req models.TrackPaymentRequest
	if err := bind(c, h.validator, &req); err != nil {
		return errors.ValidationError(c, err)
	}

	sess := middleware.SessionFrom(c)
	h.scheduler.Submit(func(ctx context.Context) {
		h.tracker.TrackPaymentAttempt(ctx, sess, tracking.PaymentInput{
			Method:       req.Method,
			Amount:       req.Amount,
			Currency:     req.Currency,
			Status:       req.Status,
			ErrorMessage: req.ErrorMessage,
			PaymentData:  req.PaymentData,
		})
	})
	return c.JSON(http.StatusAccepted, accepted)
}

// TrackLoading records loading screen progress
func (h *TrackingHandler) TrackLoading(c echo.Context) error {
	var req models.TrackLoadingRequest
	if err := bind(c, h.validator, &req); err != nil {
		return errors.ValidationError(c, err)
	}

	sess := middleware.SessionFrom(c)
	h.scheduler.Submit(func(ctx context.Context) {
		h.tracker.TrackLoadingEvent(ctx, sess, tracking.LoadingInput{
			EventType:          req.EventType,
			ProgressPercentage: req.ProgressPercentage,
			ProfilesAnalyzed:   req.ProfilesAnalyzed,
			Message:            req.Message,
			DurationSeconds:    req.DurationSeconds,
		})
	})
	return c.JSON(http.StatusAccepted, accepted)
}

// TrackPageView records a page view
func (h *TrackingHandler) TrackPageView(c echo.Context) error {
	var req models.TrackPageViewRequest
	if err := bind(c, h.validator, &req); err != nil {
		return errors.ValidationError(c, err)
	}

	sess := middleware.SessionFrom(c)
	h.scheduler.Submit(func(ctx context.Context) {
		h.tracker.TrackPageView(ctx, sess, tracking.PageViewInput{
			PagePath:         req.PagePath,
			PageTitle:        req.PageTitle,
			TimeSpentSeconds: req.TimeSpentSeconds,
		})
	})
	return c.JSON(http.StatusAccepted, accepted)
}

// TrackInteraction records a UI interaction
func (h *TrackingHandler) TrackInteraction(c echo.Context) error {
	var req models.TrackInteractionRequest
	if err := bind(c, h.validator, &req); err != nil {
		return errors.ValidationError(c, err)
	}

	sess := middleware.SessionFrom(c)
	h.scheduler.Submit(func(ctx context.Context) {
		h.tracker.TrackInteraction(ctx, sess, tracking.InteractionInput{
			Type:        req.Type,
			ElementID:   req.ElementID,
			ElementText: req.ElementText,
			PagePath:    req.PagePath,
			Data:        req.Data,
		})
	})
	return c.JSON(http.StatusAccepted, accepted)
}

// TrackDevice classifies the caller's device from its headers and the
// reported display, records it and returns the classification
func (h *TrackingHandler) TrackDevice(c echo.Context) error {
	var req models.TrackDeviceRequest
	if err := bind(c, h.validator, &req); err != nil {
		return errors.ValidationError(c, err)
	}

	r := c.Request()
	info := device.Inspect(device.Environment{
		UserAgent:      r.UserAgent(),
		ScreenWidth:    req.ScreenWidth,
		ScreenHeight:   req.ScreenHeight,
		ViewportWidth:  req.ViewportWidth,
		ViewportHeight: req.ViewportHeight,
		Language:       req.Language,
		AcceptLanguage: r.Header.Get("Accept-Language"),
		Timezone:       req.Timezone,
	})

	sess := middleware.SessionFrom(c)
	h.scheduler.Submit(func(ctx context.Context) {
		h.tracker.TrackDeviceInfo(ctx, sess, info)
	})
	return c.JSON(http.StatusAccepted, models.DeviceResponse{Device: info})
}

// validAge accepts the age as a JSON number or string
func validAge(v any) bool {
	switch age := v.(type) {
	case string:
		return quiz.ValidateAge(age)
	case float64:
		return age == float64(int(age)) && int(age) >= quiz.MinAge && int(age) <= quiz.MaxAge
	default:
		return false
	}
}

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/funneltrack/pkg/api/errors"
	"github.com/jordanlanch/funneltrack/pkg/logger"
	"github.com/jordanlanch/funneltrack/pkg/middleware"
	"github.com/jordanlanch/funneltrack/pkg/models"
	"github.com/jordanlanch/funneltrack/pkg/quiz"
	"github.com/jordanlanch/funneltrack/pkg/tracking"
	"github.com/jordanlanch/funneltrack/pkg/uploads"
)

// photoFormField is the multipart field carrying the quiz photo
const photoFormField = "photo"

// QuizHandler handles the quiz photo step
type QuizHandler struct {
	tracker   *tracking.Tracker
	scheduler Scheduler
	photos    uploads.PhotoStore
	logger    logger.Logger
}

// NewQuizHandler creates a new quiz handler. A nil photo store records the
// answer without keeping the file.
func NewQuizHandler(tracker *tracking.Tracker, scheduler Scheduler, photos uploads.PhotoStore, log logger.Logger) *QuizHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &QuizHandler{
		tracker:   tracker,
		scheduler: scheduler,
		photos:    photos,
		logger:    log.With("component", "quiz"),
	}
}

// UploadPhoto validates the photo, stores it when storage is configured
// and records the photo answer
func (h *QuizHandler) UploadPhoto(c echo.Context) error {
	file, err := c.FormFile(photoFormField)
	if err != nil {
		return errors.ValidationError(c, err)
	}

	contentType := file.Header.Get("Content-Type")
	if err := quiz.ValidatePhoto(contentType, file.Size); err != nil {
		return errors.DomainValidationError(c, err)
	}

	sess := middleware.SessionFrom(c)

	var key string
	if h.photos != nil {
		src, err := file.Open()
		if err != nil {
			return errors.InternalError(c, fmt.Errorf("open upload: %w", err))
		}
		defer src.Close()

		ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
		defer cancel()

		key, err = h.photos.PutPhoto(ctx, sess.ID, quiz.PhotoExtension(contentType), contentType, src, file.Size)
		if err != nil {
			return errors.InternalError(c, err)
		}
		h.logger.Info("quiz photo stored", "session_id", sess.ID, "key", key, "size", file.Size)
	}

	step, _ := quiz.StepNumber(quiz.QuestionPhoto)
	answer := map[string]any{
		"file_name": file.Filename,
		"file_size": file.Size,
		"file_type": contentType,
	}
	if key != "" {
		answer["storage_key"] = key
	}

	h.scheduler.Submit(func(ctx context.Context) {
		h.tracker.TrackAnswer(ctx, sess, tracking.AnswerInput{
			StepNumber:   step,
			QuestionType: quiz.QuestionPhoto,
			AnswerData:   answer,
		})
	})

	return c.JSON(http.StatusCreated, models.PhotoUploadResponse{
		Step:               step,
		ProgressPercentage: quiz.ProgressPercentage(step, h.tracker.TotalSteps()),
		StorageKey:         key,
	})
}

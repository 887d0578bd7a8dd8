// Package quiz holds the quiz step definitions and input validation.
package quiz

import (
	"math"
	"strconv"
	"strings"

	"github.com/jordanlanch/funneltrack/pkg/domain"
)

// TotalSteps is the number of answered quiz steps. The name is collected on
// the landing page before the quiz starts.
const TotalSteps = 3

// Question types
const (
	QuestionName     = "name"
	QuestionAge      = "age"
	QuestionLocation = "location"
	QuestionPhoto    = "photo"
)

// Age bounds, inclusive
const (
	MinAge = 18
	MaxAge = 99
)

// MaxPhotoSize is the largest accepted photo upload
const MaxPhotoSize = 10 * 1024 * 1024

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var steps = map[string]int{
	QuestionName:     0,
	QuestionAge:      1,
	QuestionLocation: 2,
	QuestionPhoto:    3,
}

var stepNames = map[int]string{
	0: QuestionName,
	1: QuestionAge,
	2: QuestionLocation,
	3: QuestionPhoto,
}

// StepNumber returns the step of a question type and whether it is known
func StepNumber(questionType string) (int, bool) {
	n, ok := steps[questionType]
	return n, ok
}

// StepName returns the question type asked at step, "unknown" past the end
func StepName(step int) string {
	if name, ok := stepNames[step]; ok {
		return name
	}
	return "unknown"
}

// ValidQuestionType reports whether questionType is one of the known types
func ValidQuestionType(questionType string) bool {
	_, ok := steps[questionType]
	return ok
}

// ValidateAge reports whether age is a whole number between MinAge and
// MaxAge
func ValidateAge(age string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(age))
	if err != nil {
		return false
	}
	return n >= MinAge && n <= MaxAge
}

// ValidatePhoto checks an upload's content type and size
func ValidatePhoto(contentType string, size int64) error {
	if _, ok := allowedPhotoTypes[normalizeContentType(contentType)]; !ok {
		return domain.NewValidationError("Please upload a valid image file (JPG, PNG, or WebP)")
	}
	if size > MaxPhotoSize {
		return domain.NewValidationError("File size must be less than 10MB")
	}
	return nil
}

// PhotoExtension returns the file extension stored for an accepted type
func PhotoExtension(contentType string) string {
	return allowedPhotoTypes[normalizeContentType(contentType)]
}

// ProgressPercentage returns how far through the quiz step is, rounded to
// a whole percent and capped at 100
func ProgressPercentage(step, total int) int {
	if total <= 0 || step <= 0 {
		return 0
	}
	if step >= total {
		return 100
	}
	return int(math.Round(float64(step) / float64(total) * 100))
}

func normalizeContentType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

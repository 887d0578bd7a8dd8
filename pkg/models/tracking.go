package models

import (
	"time"

	"github.com/jordanlanch/funneltrack/pkg/device"
)

// CreateSearchRequest starts the session's search record
type CreateSearchRequest struct {
	Name       string `json:"name" validate:"omitempty,max=200"`
	Email      string `json:"email" validate:"omitempty,email"`
	SearchType string `json:"search_type" validate:"omitempty,oneof=partner friend family"`
	SourcePage string `json:"source_page" validate:"omitempty,max=500"`
}

// UpdateSessionRequest lists the mutable session fields. Omitted fields
// are left untouched.
type UpdateSessionRequest struct {
	CurrentStep   *int       `json:"current_step" validate:"omitempty,min=0"`
	CompletedAt   *time.Time `json:"completed_at"`
	DroppedOffAt  *time.Time `json:"dropped_off_at"`
	DropOffStep   *int       `json:"drop_off_step" validate:"omitempty,min=0"`
	DropOffReason *string    `json:"drop_off_reason" validate:"omitempty,max=200"`
	IsCompleted   *bool      `json:"is_completed"`
}

// TrackAnswerRequest records one answered quiz step
type TrackAnswerRequest struct {
	StepNumber   int            `json:"step_number" validate:"min=0"`
	QuestionType string         `json:"question_type" validate:"required,max=50"`
	AnswerData   map[string]any `json:"answer_data"`
}

// TrackDropOffRequest records an abandoned step
type TrackDropOffRequest struct {
	StepNumber       int    `json:"step_number" validate:"min=0"`
	StepName         string `json:"step_name" validate:"required,max=100"`
	Reason           string `json:"drop_off_reason" validate:"omitempty,max=200"`
	TimeSpentSeconds *int   `json:"time_spent_seconds" validate:"omitempty,min=0"`
}

// TrackFunnelRequest records a funnel stage transition. StepOrder defaults
// to the step's position in the funnel.
type TrackFunnelRequest struct {
	Step             string `json:"funnel_step" validate:"required,max=100"`
	StepOrder        int    `json:"step_order" validate:"min=0"`
	TimeSpentSeconds *int   `json:"time_spent_seconds" validate:"omitempty,min=0"`
	IsCompleted      *bool  `json:"is_completed"`
}

// TrackPaymentRequest records a payment attempt
type TrackPaymentRequest struct {
	Method       string         `json:"payment_method" validate:"required,max=50"`
	Amount       float64        `json:"amount" validate:"min=0"`
	Currency     string         `json:"currency" validate:"omitempty,len=3"`
	Status       string         `json:"status" validate:"required,oneof=attempted successful failed abandoned"`
	ErrorMessage string         `json:"error_message" validate:"omitempty,max=500"`
	PaymentData  map[string]any `json:"payment_data"`
}

// TrackLoadingRequest records loading screen progress
type TrackLoadingRequest struct {
	EventType          string `json:"event_type" validate:"required,oneof=started progress_update completed error"`
	ProgressPercentage *int   `json:"progress_percentage" validate:"omitempty,min=0,max=100"`
	ProfilesAnalyzed   *int   `json:"profiles_analyzed" validate:"omitempty,min=0"`
	Message            string `json:"message" validate:"omitempty,max=500"`
	DurationSeconds    *int   `json:"duration_seconds" validate:"omitempty,min=0"`
}

// TrackPageViewRequest records a page view
type TrackPageViewRequest struct {
	PagePath         string `json:"page_path" validate:"required,max=500"`
	PageTitle        string `json:"page_title" validate:"omitempty,max=500"`
	TimeSpentSeconds *int   `json:"time_spent_seconds" validate:"omitempty,min=0"`
}

// TrackInteractionRequest records a UI interaction
type TrackInteractionRequest struct {
	Type        string         `json:"interaction_type" validate:"required,oneof=click form_submit button_press file_upload navigation"`
	ElementID   string         `json:"element_id" validate:"omitempty,max=200"`
	ElementText string         `json:"element_text" validate:"omitempty,max=500"`
	PagePath    string         `json:"page_path" validate:"omitempty,max=500"`
	Data        map[string]any `json:"interaction_data"`
}

// TrackDeviceRequest is what the browser reports about its display and
// locale. The user agent is read from the request headers.
type TrackDeviceRequest struct {
	ScreenWidth    int    `json:"screen_width" validate:"min=0"`
	ScreenHeight   int    `json:"screen_height" validate:"min=0"`
	ViewportWidth  int    `json:"viewport_width" validate:"min=0"`
	ViewportHeight int    `json:"viewport_height" validate:"min=0"`
	Language       string `json:"language" validate:"omitempty,max=35"`
	Timezone       string `json:"timezone" validate:"omitempty,max=64"`
}

// DeviceResponse returns the classified device
type DeviceResponse struct {
	Device device.Info `json:"device"`
}

// PhotoUploadResponse describes an accepted quiz photo
type PhotoUploadResponse struct {
	Step               int    `json:"step"`
	ProgressPercentage int    `json:"progress_percentage"`
	StorageKey         string `json:"storage_key,omitempty"`
}

// DateRangeQuery selects the analytics window. Dates use YYYY-MM-DD.
type DateRangeQuery struct {
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

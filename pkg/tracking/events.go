package tracking

import "time"

// FunnelStep is a named stage of the quiz, loading, checkout and results
// sequence
type FunnelStep string

const (
	StepQuizStart       FunnelStep = "quiz_start"
	StepQuizComplete    FunnelStep = "quiz_complete"
	StepLoadingStart    FunnelStep = "loading_start"
	StepLoadingComplete FunnelStep = "loading_complete"
	StepCheckoutView    FunnelStep = "checkout_view"
	StepPaymentAttempt  FunnelStep = "payment_attempt"
	StepPaymentSuccess  FunnelStep = "payment_success"
	StepResultsView     FunnelStep = "results_view"
)

var stepOrders = map[FunnelStep]int{
	StepQuizStart:       1,
	StepQuizComplete:    1,
	StepLoadingStart:    2,
	StepLoadingComplete: 3,
	StepCheckoutView:    4,
	StepPaymentAttempt:  4,
	StepPaymentSuccess:  5,
	StepResultsView:     6,
}

// FunnelSteps lists the steps in funnel order
var FunnelSteps = []FunnelStep{
	StepQuizStart,
	StepQuizComplete,
	StepLoadingStart,
	StepLoadingComplete,
	StepCheckoutView,
	StepPaymentAttempt,
	StepPaymentSuccess,
	StepResultsView,
}

// Order returns the default ordering index of the step, 0 if unknown
func (s FunnelStep) Order() int {
	return stepOrders[s]
}

// Valid reports whether s is a known step
func (s FunnelStep) Valid() bool {
	_, ok := stepOrders[s]
	return ok
}

// Payment statuses
const (
	PaymentAttempted  = "attempted"
	PaymentSuccessful = "successful"
	PaymentFailed     = "failed"
	PaymentAbandoned  = "abandoned"
)

// Loading screen event types
const (
	LoadingStarted        = "started"
	LoadingProgressUpdate = "progress_update"
	LoadingCompleted      = "completed"
	LoadingError          = "error"
)

// Interaction types
const (
	InteractionClick       = "click"
	InteractionFormSubmit  = "form_submit"
	InteractionButtonPress = "button_press"
	InteractionFileUpload  = "file_upload"
	InteractionNavigation  = "navigation"
)

// Search types
const (
	SearchPartner = "partner"
	SearchFriend  = "friend"
	SearchFamily  = "family"
)

// SearchInput creates the session's search record. Empty context fields
// are filled from the Session.
type SearchInput struct {
	Name        string
	Email       string
	SearchType  string
	SourcePage  string
	UserAgent   string
	Referrer    string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
}

// SessionUpdate lists the mutable session fields. Nil fields are left
// untouched.
type SessionUpdate struct {
	CurrentStep   *int       `json:"current_step,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	DroppedOffAt  *time.Time `json:"dropped_off_at,omitempty"`
	DropOffStep   *int       `json:"drop_off_step,omitempty"`
	DropOffReason *string    `json:"drop_off_reason,omitempty"`
	IsCompleted   *bool      `json:"is_completed,omitempty"`
}

// AnswerInput is one answered quiz step
type AnswerInput struct {
	StepNumber   int
	QuestionType string
	AnswerData   map[string]any
}

// DropOffInput is an abandoned step
type DropOffInput struct {
	StepNumber       int
	StepName         string
	Reason           string
	TimeSpentSeconds *int
}

// FunnelStepInput is a stage transition. StepOrder defaults to the
// step's Order.
type FunnelStepInput struct {
	Step             FunnelStep
	StepOrder        int
	TimeSpentSeconds *int
	IsCompleted      *bool
}

// PaymentInput is a payment attempt
type PaymentInput struct {
	Method       string
	Amount       float64
	Currency     string
	Status       string
	ErrorMessage string
	PaymentData  map[string]any
	CompletedAt  *time.Time
}

// LoadingInput is a loading screen progress event
type LoadingInput struct {
	EventType          string
	ProgressPercentage *int
	ProfilesAnalyzed   *int
	Message            string
	DurationSeconds    *int
}

// PageViewInput is a page view
type PageViewInput struct {
	PagePath         string
	PageTitle        string
	TimeSpentSeconds *int
}

// InteractionInput is a click, submit or other UI interaction
type InteractionInput struct {
	Type        string
	ElementID   string
	ElementText string
	PagePath    string
	Data        map[string]any
}

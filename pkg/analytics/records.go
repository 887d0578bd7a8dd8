package analytics

import (
	"time"

	"github.com/jordanlanch/funneltrack/pkg/store"
)

// Search is a session's search record with its progress fields
type Search struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"session_id"`
	Name           string     `json:"name,omitempty"`
	Email          string     `json:"email,omitempty"`
	SearchType     string     `json:"search_type"`
	SourcePage     string     `json:"source_page,omitempty"`
	UTMSource      string     `json:"utm_source,omitempty"`
	UTMMedium      string     `json:"utm_medium,omitempty"`
	UTMCampaign    string     `json:"utm_campaign,omitempty"`
	CurrentStep    int        `json:"current_step"`
	TotalSteps     int        `json:"total_steps"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	DroppedOffAt   *time.Time `json:"dropped_off_at,omitempty"`
	DropOffStep    *int       `json:"drop_off_step,omitempty"`
	DropOffReason  string     `json:"drop_off_reason,omitempty"`
	IsCompleted    bool       `json:"is_completed"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	Status         Status     `json:"status"`
	Answers        []Answer   `json:"answers,omitempty"`
}

// Answer is one recorded quiz answer
type Answer struct {
	ID           string         `json:"id"`
	SearchID     string         `json:"search_id,omitempty"`
	StepNumber   int            `json:"step_number"`
	QuestionType string         `json:"question_type"`
	AnswerData   map[string]any `json:"answer_data,omitempty"`
	CreatedAt    *time.Time     `json:"created_at,omitempty"`
}

// SearchRef is the parent search summary attached to a drop-off
type SearchRef struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// DropOff is a recorded abandonment
type DropOff struct {
	ID               string     `json:"id"`
	SearchID         string     `json:"search_id"`
	SessionID        string     `json:"session_id"`
	StepNumber       int        `json:"step_number"`
	StepName         string     `json:"step_name"`
	Reason           string     `json:"drop_off_reason,omitempty"`
	TimeSpentSeconds *int       `json:"time_spent_seconds,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	Search           SearchRef  `json:"search"`
}

// FunnelEvent is one stage transition
type FunnelEvent struct {
	ID               string     `json:"id"`
	SessionID        string     `json:"session_id"`
	Step             string     `json:"funnel_step"`
	StepOrder        int        `json:"step_order"`
	TimeSpentSeconds *int       `json:"time_spent_seconds,omitempty"`
	IsCompleted      bool       `json:"is_completed"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

func searchFromRow(r store.Row) Search {
	s := Search{
		ID:             r.String("id"),
		SessionID:      r.String("session_id"),
		Name:           r.String("name"),
		Email:          r.String("email"),
		SearchType:     r.String("search_type"),
		SourcePage:     r.String("source_page"),
		UTMSource:      r.String("utm_source"),
		UTMMedium:      r.String("utm_medium"),
		UTMCampaign:    r.String("utm_campaign"),
		CurrentStep:    r.Int("current_step"),
		TotalSteps:     r.Int("total_steps"),
		StartedAt:      r.Time("started_at"),
		LastActivityAt: r.Time("last_activity_at"),
		CompletedAt:    r.Time("completed_at"),
		DroppedOffAt:   r.Time("dropped_off_at"),
		DropOffStep:    r.IntPtr("drop_off_step"),
		DropOffReason:  r.String("drop_off_reason"),
		IsCompleted:    r.Bool("is_completed"),
		CreatedAt:      r.Time("created_at"),
	}
	s.Status = SessionStatus(s)
	return s
}

func answerFromRow(r store.Row) Answer {
	return Answer{
		ID:           r.String("id"),
		SearchID:     r.String("search_id"),
		StepNumber:   r.Int("step_number"),
		QuestionType: r.String("question_type"),
		AnswerData:   r.JSON("answer_data"),
		CreatedAt:    r.Time("created_at"),
	}
}

func dropOffFromRow(r store.Row) DropOff {
	return DropOff{
		ID:               r.String("id"),
		SearchID:         r.String("search_id"),
		SessionID:        r.String("session_id"),
		StepNumber:       r.Int("step_number"),
		StepName:         r.String("step_name"),
		Reason:           r.String("drop_off_reason"),
		TimeSpentSeconds: r.IntPtr("time_spent_seconds"),
		CreatedAt:        r.Time("created_at"),
	}
}

func funnelEventFromRow(r store.Row) FunnelEvent {
	return FunnelEvent{
		ID:               r.String("id"),
		SessionID:        r.String("session_id"),
		Step:             r.String("funnel_step"),
		StepOrder:        r.Int("step_order"),
		TimeSpentSeconds: r.IntPtr("time_spent_seconds"),
		IsCompleted:      r.Bool("is_completed"),
		CreatedAt:        r.Time("created_at"),
	}
}

// Package tracking records funnel events and session progress against the
// table store. Every write is best-effort: store failures are logged once
// and swallowed, and callers only see a boolean or an empty id.
package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jordanlanch/funneltrack/pkg/device"
	"github.com/jordanlanch/funneltrack/pkg/logger"
	"github.com/jordanlanch/funneltrack/pkg/store"
)

// DefaultTotalSteps is the number of quiz steps per session
const DefaultTotalSteps = 3

// Recorder counts tracking writes by table and outcome
type Recorder interface {
	RecordTrackingEvent(table string, ok bool)
}

// Tracker emits tracking records for a session
type Tracker struct {
	store      store.Store
	logger     logger.Logger
	recorder   Recorder
	now        func() time.Time
	newID      func() string
	totalSteps int
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDGenerator overrides record id generation
func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// WithRecorder counts every write
func WithRecorder(r Recorder) Option {
	return func(t *Tracker) { t.recorder = r }
}

// WithTotalSteps sets the number of quiz steps per session
func WithTotalSteps(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.totalSteps = n
		}
	}
}

// New creates a Tracker writing to s
func New(s store.Store, log logger.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = logger.Nop()
	}
	t := &Tracker{
		store:      s,
		logger:     log.With("component", "tracking"),
		now:        time.Now,
		newID:      uuid.NewString,
		totalSteps: DefaultTotalSteps,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TotalSteps returns the configured number of quiz steps
func (t *Tracker) TotalSteps() int {
	return t.totalSteps
}

// TrackSearch creates the search record that opens a session and returns
// its id, or "" when the write failed
func (t *Tracker) TrackSearch(ctx context.Context, sess Session, in SearchInput) string {
	now := t.timestamp()
	utm := sess.UTM()

	id := t.newID()
	row := store.Row{
		"id":               id,
		"session_id":       sess.ID,
		"name":             nullable(in.Name),
		"email":            nullable(in.Email),
		"search_type":      orDefault(in.SearchType, SearchPartner),
		"source_page":      orDefault(in.SourcePage, "home"),
		"user_agent":       nullable(orDefault(in.UserAgent, sess.UserAgent)),
		"ip_address":       nullable(sess.IPAddress),
		"referrer":         nullable(orDefault(in.Referrer, sess.Referrer)),
		"utm_source":       nullable(orDefault(in.UTMSource, utm.Source)),
		"utm_medium":       nullable(orDefault(in.UTMMedium, utm.Medium)),
		"utm_campaign":     nullable(orDefault(in.UTMCampaign, utm.Campaign)),
		"current_step":     1,
		"total_steps":      t.totalSteps,
		"started_at":       now,
		"last_activity_at": now,
		"is_completed":     false,
		"created_at":       now,
	}

	if !t.insert(ctx, store.TableSearches, sess, row) {
		return ""
	}
	return id
}

// UpdateSession applies the non-nil fields of u to the session's search
// record and bumps last_activity_at
func (t *Tracker) UpdateSession(ctx context.Context, sess Session, u SessionUpdate) bool {
	fields := store.Row{"last_activity_at": t.timestamp()}
	if u.CurrentStep != nil {
		fields["current_step"] = *u.CurrentStep
	}
	if u.CompletedAt != nil {
		fields["completed_at"] = u.CompletedAt.UTC()
	}
	if u.DroppedOffAt != nil {
		fields["dropped_off_at"] = u.DroppedOffAt.UTC()
	}
	if u.DropOffStep != nil {
		fields["drop_off_step"] = *u.DropOffStep
	}
	if u.DropOffReason != nil {
		fields["drop_off_reason"] = *u.DropOffReason
	}
	if u.IsCompleted != nil {
		fields["is_completed"] = *u.IsCompleted
	}
	return t.update(ctx, sess, fields)
}

// CompleteSession marks the session completed with its progress pointer at
// the last step
func (t *Tracker) CompleteSession(ctx context.Context, sess Session) bool {
	now := t.timestamp()
	return t.update(ctx, sess, store.Row{
		"is_completed":     true,
		"completed_at":     now,
		"current_step":     t.totalSteps,
		"last_activity_at": now,
	})
}

// TrackAnswer records a quiz answer and advances the progress pointer past
// its step. The pointer is not moved when the answer could not be written.
// The result reports the answer write only; a failed pointer update is logged.
func (t *Tracker) TrackAnswer(ctx context.Context, sess Session, in AnswerInput) bool {
	row := store.Row{
		"id":            t.newID(),
		"search_id":     t.searchID(ctx, sess),
		"session_id":    sess.ID,
		"step_number":   in.StepNumber,
		"question_type": in.QuestionType,
		"answer_data":   in.AnswerData,
		"created_at":    t.timestamp(),
	}
	if !t.insert(ctx, store.TableSearchAnswers, sess, row) {
		return false
	}

	next := in.StepNumber + 1
	if next > t.totalSteps {
		next = t.totalSteps
	}
	t.UpdateSession(ctx, sess, SessionUpdate{CurrentStep: &next})
	return true
}

// TrackDropOff records an abandoned step and marks the session dropped off
// at that step. Like TrackAnswer, the result reports the drop-off write only.
func (t *Tracker) TrackDropOff(ctx context.Context, sess Session, in DropOffInput) bool {
	now := t.timestamp()
	row := store.Row{
		"id":                 t.newID(),
		"search_id":          t.searchID(ctx, sess),
		"session_id":         sess.ID,
		"step_number":        in.StepNumber,
		"step_name":          in.StepName,
		"drop_off_reason":    nullable(in.Reason),
		"time_spent_seconds": in.TimeSpentSeconds,
		"user_agent":         nullable(sess.UserAgent),
		"ip_address":         nullable(sess.IPAddress),
		"created_at":         now,
	}
	if !t.insert(ctx, store.TableSearchDropOffs, sess, row) {
		return false
	}

	step := in.StepNumber
	u := SessionUpdate{DroppedOffAt: &now, DropOffStep: &step}
	if in.Reason != "" {
		reason := in.Reason
		u.DropOffReason = &reason
	}
	t.UpdateSession(ctx, sess, u)
	return true
}

// TrackFunnelStep records a stage transition
func (t *Tracker) TrackFunnelStep(ctx context.Context, sess Session, in FunnelStepInput) bool {
	order := in.StepOrder
	if order == 0 {
		order = in.Step.Order()
	}
	completed := true
	if in.IsCompleted != nil {
		completed = *in.IsCompleted
	}
	return t.insert(ctx, store.TableFunnel, sess, store.Row{
		"id":                 t.newID(),
		"session_id":         sess.ID,
		"funnel_step":        string(in.Step),
		"step_order":         order,
		"time_spent_seconds": in.TimeSpentSeconds,
		"is_completed":       completed,
		"created_at":         t.timestamp(),
	})
}

// TrackPaymentAttempt records a payment attempt. Successful attempts get a
// completion time when none is given.
func (t *Tracker) TrackPaymentAttempt(ctx context.Context, sess Session, in PaymentInput) bool {
	now := t.timestamp()
	status := orDefault(in.Status, PaymentAttempted)

	var completedAt any
	switch {
	case in.CompletedAt != nil:
		completedAt = in.CompletedAt.UTC()
	case status == PaymentSuccessful:
		completedAt = now
	}

	return t.insert(ctx, store.TablePayments, sess, store.Row{
		"id":             t.newID(),
		"session_id":     sess.ID,
		"payment_method": in.Method,
		"amount":         in.Amount,
		"currency":       orDefault(in.Currency, "USD"),
		"status":         status,
		"error_message":  nullable(in.ErrorMessage),
		"payment_data":   in.PaymentData,
		"created_at":     now,
		"completed_at":   completedAt,
	})
}

// TrackLoadingEvent records loading screen progress
func (t *Tracker) TrackLoadingEvent(ctx context.Context, sess Session, in LoadingInput) bool {
	return t.insert(ctx, store.TableLoadingEvents, sess, store.Row{
		"id":                  t.newID(),
		"session_id":          sess.ID,
		"event_type":          in.EventType,
		"progress_percentage": in.ProgressPercentage,
		"profiles_analyzed":   in.ProfilesAnalyzed,
		"loading_message":     nullable(in.Message),
		"duration_seconds":    in.DurationSeconds,
		"created_at":          t.timestamp(),
	})
}

// TrackPageView records a page view
func (t *Tracker) TrackPageView(ctx context.Context, sess Session, in PageViewInput) bool {
	return t.insert(ctx, store.TablePageViews, sess, store.Row{
		"id":                 t.newID(),
		"session_id":         sess.ID,
		"page_path":          orDefault(in.PagePath, sess.PagePath()),
		"page_title":         nullable(in.PageTitle),
		"time_spent_seconds": in.TimeSpentSeconds,
		"created_at":         t.timestamp(),
	})
}

// TrackInteraction records a UI interaction. The page path defaults to the
// session's current page.
func (t *Tracker) TrackInteraction(ctx context.Context, sess Session, in InteractionInput) bool {
	return t.insert(ctx, store.TableInteractions, sess, store.Row{
		"id":               t.newID(),
		"session_id":       sess.ID,
		"interaction_type": in.Type,
		"element_id":       nullable(in.ElementID),
		"element_text":     nullable(in.ElementText),
		"page_path":        nullable(orDefault(in.PagePath, sess.PagePath())),
		"interaction_data": in.Data,
		"created_at":       t.timestamp(),
	})
}

// TrackDeviceInfo records the classified device of the session
func (t *Tracker) TrackDeviceInfo(ctx context.Context, sess Session, info device.Info) bool {
	return t.insert(ctx, store.TableDeviceInfo, sess, store.Row{
		"id":                t.newID(),
		"session_id":        sess.ID,
		"browser":           info.Browser,
		"browser_version":   info.BrowserVersion,
		"operating_system":  info.OperatingSystem,
		"device_type":       info.DeviceType,
		"screen_resolution": nullable(info.ScreenResolution),
		"viewport_size":     nullable(info.ViewportSize),
		"language":          nullable(info.Language),
		"timezone":          nullable(info.Timezone),
		"created_at":        t.timestamp(),
	})
}

// searchID looks up the session's most recent search record. A missing or
// failed lookup leaves the child record unlinked.
func (t *Tracker) searchID(ctx context.Context, sess Session) any {
	rows, err := t.store.Select(ctx, store.Query{
		Table:      store.TableSearches,
		Columns:    []string{"id"},
		Filters:    []store.Filter{store.Eq("session_id", sess.ID)},
		OrderBy:    "created_at",
		Descending: true,
		Limit:      1,
	})
	if err != nil {
		t.logger.Debug("search lookup failed", "session_id", sess.ID, "error", err)
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	return nullable(rows[0].String("id"))
}

func (t *Tracker) insert(ctx context.Context, table string, sess Session, row store.Row) bool {
	err := t.store.Insert(ctx, table, row)
	t.record(table, err == nil)
	if err != nil {
		t.logger.Error("failed to record tracking event", "table", table, "session_id", sess.ID, "error", err)
		return false
	}
	return true
}

func (t *Tracker) update(ctx context.Context, sess Session, fields store.Row) bool {
	_, err := t.store.Update(ctx, store.TableSearches, fields, store.Eq("session_id", sess.ID))
	t.record(store.TableSearches, err == nil)
	if err != nil {
		t.logger.Error("failed to update session", "table", store.TableSearches, "session_id", sess.ID, "error", err)
		return false
	}
	return true
}

func (t *Tracker) record(table string, ok bool) {
	if t.recorder != nil {
		t.recorder.RecordTrackingEvent(table, ok)
	}
}

func (t *Tracker) timestamp() time.Time {
	return t.now().UTC()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

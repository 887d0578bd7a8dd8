package tracking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/funneltrack/pkg/device"
	"github.com/jordanlanch/funneltrack/pkg/store"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func newTestTracker(s store.Store) (*Tracker, *CapturingLogger, *MockRecorder) {
	log := NewCapturingLogger()
	rec := NewMockRecorder()
	n := 0
	tr := New(s, log,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id_%d", n) }),
		WithRecorder(rec),
	)
	return tr, log, rec
}

func testSession() Session {
	return Session{
		ID:        "session_1700000000000_abcdefghi",
		UserAgent: "Mozilla/5.0 Chrome/120",
		IPAddress: "203.0.113.7",
		PageURL:   "https://example.com/quiz?name=Sam&utm_source=tiktok&utm_medium=paid&utm_campaign=spring",
		Referrer:  "https://tiktok.com/",
	}
}

func TestSession_UTMAndPath(t *testing.T) {
	sess := testSession()

	assert.Equal(t, UTM{Source: "tiktok", Medium: "paid", Campaign: "spring"}, sess.UTM())
	assert.Equal(t, "/quiz", sess.PagePath())
	assert.Equal(t, UTM{}, Session{PageURL: "::bad"}.UTM())
	assert.Equal(t, "", Session{}.PagePath())
}

func TestTrackSearch_MergesSessionContext(t *testing.T) {
	s := NewMockStore()
	tr, _, _ := newTestTracker(s)

	id := tr.TrackSearch(context.Background(), testSession(), SearchInput{Name: "Sam", UTMSource: "google"})

	assert.Equal(t, "id_1", id)
	inserts := s.Inserts()
	require.Len(t, inserts, 1)
	row := inserts[0].Row
	assert.Equal(t, store.TableSearches, inserts[0].Table)
	assert.Equal(t, "Sam", row["name"])
	assert.Nil(t, row["email"])
	assert.Equal(t, SearchPartner, row["search_type"])
	assert.Equal(t, "home", row["source_page"])
	assert.Equal(t, "Mozilla/5.0 Chrome/120", row["user_agent"])
	assert.Equal(t, "https://tiktok.com/", row["referrer"])
	assert.Equal(t, "google", row["utm_source"], "caller value wins over URL")
	assert.Equal(t, "paid", row["utm_medium"])
	assert.Equal(t, "spring", row["utm_campaign"])
	assert.Equal(t, 1, row["current_step"])
	assert.Equal(t, DefaultTotalSteps, row["total_steps"])
	assert.Equal(t, fixedNow, row["started_at"])
	assert.Equal(t, false, row["is_completed"])
}

func TestTrackSearch_FailureReturnsEmptyID(t *testing.T) {
	s := NewMockStore()
	s.failInsert[store.TableSearches] = errors.New("connection refused")
	tr, log, rec := newTestTracker(s)

	id := tr.TrackSearch(context.Background(), testSession(), SearchInput{Name: "Sam"})

	assert.Empty(t, id)
	assert.Len(t, log.Errors(), 1)
	assert.Equal(t, 1, rec.failed[store.TableSearches])
}

func TestEmitters_WriteFailureLogsExactlyOneError(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	boom := errors.New("remote store unavailable")

	tests := []struct {
		name  string
		table string
		emit  func(tr *Tracker) bool
	}{
		{"answer", store.TableSearchAnswers, func(tr *Tracker) bool {
			return tr.TrackAnswer(ctx, sess, AnswerInput{StepNumber: 1, QuestionType: "age"})
		}},
		{"drop-off", store.TableSearchDropOffs, func(tr *Tracker) bool {
			return tr.TrackDropOff(ctx, sess, DropOffInput{StepNumber: 2, StepName: "location"})
		}},
		{"funnel", store.TableFunnel, func(tr *Tracker) bool {
			return tr.TrackFunnelStep(ctx, sess, FunnelStepInput{Step: StepQuizStart})
		}},
		{"payment", store.TablePayments, func(tr *Tracker) bool {
			return tr.TrackPaymentAttempt(ctx, sess, PaymentInput{Method: "card", Amount: 17.9})
		}},
		{"loading", store.TableLoadingEvents, func(tr *Tracker) bool {
			return tr.TrackLoadingEvent(ctx, sess, LoadingInput{EventType: LoadingStarted})
		}},
		{"page view", store.TablePageViews, func(tr *Tracker) bool {
			return tr.TrackPageView(ctx, sess, PageViewInput{PagePath: "/"})
		}},
		{"interaction", store.TableInteractions, func(tr *Tracker) bool {
			return tr.TrackInteraction(ctx, sess, InteractionInput{Type: InteractionClick})
		}},
		{"device", store.TableDeviceInfo, func(tr *Tracker) bool {
			return tr.TrackDeviceInfo(ctx, sess, device.Inspect(device.Environment{}))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMockStore()
			s.selectErr = boom
			s.failInsert[tt.table] = boom
			tr, log, _ := newTestTracker(s)

			var ok bool
			assert.NotPanics(t, func() { ok = tt.emit(tr) })
			assert.False(t, ok)
			assert.Len(t, log.Errors(), 1)
			assert.Empty(t, s.Updates(), "session must not move when the event was lost")
		})
	}
}

func TestUpdateSession_OnlySetsProvidedFields(t *testing.T) {
	s := NewMockStore()
	tr, _, _ := newTestTracker(s)
	step := 2

	ok := tr.UpdateSession(context.Background(), testSession(), SessionUpdate{CurrentStep: &step})

	require.True(t, ok)
	updates := s.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, store.Row{"current_step": 2, "last_activity_at": fixedNow}, updates[0].Fields)
	assert.Equal(t, []store.Filter{store.Eq("session_id", testSession().ID)}, updates[0].Filters)
}

func TestUpdateSession_FailureReturnsFalse(t *testing.T) {
	s := NewMockStore()
	s.failUpdate = errors.New("timeout")
	tr, log, _ := newTestTracker(s)

	assert.False(t, tr.UpdateSession(context.Background(), testSession(), SessionUpdate{}))
	assert.Len(t, log.Errors(), 1)
}

func TestTrackAnswer_AdvancesProgressPointer(t *testing.T) {
	s := NewMockStore()
	s.selectRows = []store.Row{{"id": "search_1"}}
	tr, _, _ := newTestTracker(s)

	ok := tr.TrackAnswer(context.Background(), testSession(), AnswerInput{
		StepNumber:   1,
		QuestionType: "age",
		AnswerData:   map[string]any{"age": "25"},
	})

	require.True(t, ok)
	inserts := s.Inserts()
	require.Len(t, inserts, 1)
	assert.Equal(t, "search_1", inserts[0].Row["search_id"])
	assert.Equal(t, map[string]any{"age": "25"}, inserts[0].Row["answer_data"])

	updates := s.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, 2, updates[0].Fields["current_step"])
}

func TestTrackAnswer_LastStepDoesNotOvershoot(t *testing.T) {
	s := NewMockStore()
	tr, _, _ := newTestTracker(s)

	require.True(t, tr.TrackAnswer(context.Background(), testSession(), AnswerInput{StepNumber: 3, QuestionType: "photo"}))

	updates := s.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, DefaultTotalSteps, updates[0].Fields["current_step"])
}

func TestTrackAnswer_SucceedsWhenProgressUpdateFails(t *testing.T) {
	s := NewMockStore()
	s.failUpdate = errors.New("timeout")
	tr, log, _ := newTestTracker(s)

	ok := tr.TrackAnswer(context.Background(), testSession(), AnswerInput{StepNumber: 1, QuestionType: "age"})

	assert.True(t, ok)
	require.Len(t, s.Inserts(), 1)
	assert.Equal(t, store.TableSearchAnswers, s.Inserts()[0].Table)
	assert.Empty(t, s.Updates())
	assert.Len(t, log.Errors(), 1)
}

func TestTrackDropOff_SucceedsWhenSessionUpdateFails(t *testing.T) {
	s := NewMockStore()
	s.failUpdate = errors.New("timeout")
	tr, log, _ := newTestTracker(s)

	ok := tr.TrackDropOff(context.Background(), testSession(), DropOffInput{StepNumber: 2, StepName: "age"})

	assert.True(t, ok)
	require.Len(t, s.Inserts(), 1)
	assert.Equal(t, store.TableSearchDropOffs, s.Inserts()[0].Table)
	assert.Len(t, log.Errors(), 1)
}

func TestTrackAnswer_FailedInsertSkipsProgressUpdate(t *testing.T) {
	s := NewMockStore()
	s.failInsert[store.TableSearchAnswers] = errors.New("timeout")
	tr, _, _ := newTestTracker(s)

	assert.False(t, tr.TrackAnswer(context.Background(), testSession(), AnswerInput{StepNumber: 1, QuestionType: "age"}))
	assert.Empty(t, s.Updates())
}

func TestTrackAnswer_MissingSearchLeavesAnswerUnlinked(t *testing.T) {
	s := NewMockStore()
	s.selectErr = errors.New("no rows")
	tr, log, _ := newTestTracker(s)

	require.True(t, tr.TrackAnswer(context.Background(), testSession(), AnswerInput{StepNumber: 1, QuestionType: "age"}))

	assert.Nil(t, s.Inserts()[0].Row["search_id"])
	assert.Empty(t, log.Errors())
}

func TestTrackDropOff_MarksSessionDroppedAtStep(t *testing.T) {
	s := NewMockStore()
	tr, _, _ := newTestTracker(s)
	spent := 42

	ok := tr.TrackDropOff(context.Background(), testSession(), DropOffInput{
		StepNumber:       2,
		StepName:         "location",
		Reason:           "page_exit",
		TimeSpentSeconds: &spent,
	})

	require.True(t, ok)
	inserts := s.Inserts()
	require.Len(t, inserts, 1)
	assert.Equal(t, store.TableSearchDropOffs, inserts[0].Table)
	assert.Equal(t, "203.0.113.7", inserts[0].Row["ip_address"])

	updates := s.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, fixedNow, updates[0].Fields["dropped_off_at"])
	assert.Equal(t, 2, updates[0].Fields["drop_off_step"])
	assert.Equal(t, "page_exit", updates[0].Fields["drop_off_reason"])
}

func TestTrackDropOff_WithoutReasonLeavesReasonUntouched(t *testing.T) {
	s := NewMockStore()
	tr, _, _ := newTestTracker(s)

	require.True(t, tr.TrackDropOff(context.Background(), testSession(), DropOffInput{StepNumber: 1, StepName: "age"}))

	assert.NotContains(t, s.Updates()[0].Fields, "drop_off_reason")
	assert.Nil(t, s.Inserts()[0].Row["drop_off_reason"])
}

func TestCompleteSession(t *testing.T) {
	s := NewMockStore()
	tr, _, _ := newTestTracker(s)

	require.True(t, tr.CompleteSession(context.Background(), testSession()))

	fields := s.Updates()[0].Fields
	assert.Equal(t, true, fields["is_completed"])
	assert.Equal(t, fixedNow, fields["completed_at"])
	assert.Equal(t, DefaultTotalSteps, fields["current_step"])
}

func TestTrackFunnelStep_DefaultsOrderFromStep(t *testing.T) {
	s := NewMockStore()
	tr, _, _ := newTestTracker(s)

	require.True(t, tr.TrackFunnelStep(context.Background(), testSession(), FunnelStepInput{Step: StepCheckoutView}))
	require.True(t, tr.TrackFunnelStep(context.Background(), testSession(), FunnelStepInput{Step: StepResultsView, StepOrder: 9}))

	inserts := s.Inserts()
	assert.Equal(t, "checkout_view", inserts[0].Row["funnel_step"])
	assert.Equal(t, 4, inserts[0].Row["step_order"])
	assert.Equal(t, true, inserts[0].Row["is_completed"])
	assert.Equal(t, 9, inserts[1].Row["step_order"])
}

func TestFunnelStep_Orders(t *testing.T) {
	assert.Equal(t, 1, StepQuizStart.Order())
	assert.Equal(t, 2, StepLoadingStart.Order())
	assert.Equal(t, 3, StepLoadingComplete.Order())
	assert.Equal(t, 4, StepCheckoutView.Order())
	assert.Equal(t, 5, StepPaymentSuccess.Order())
	assert.Equal(t, 6, StepResultsView.Order())
	assert.False(t, FunnelStep("bogus").Valid())
	assert.Len(t, FunnelSteps, len(stepOrders))
}

func TestTrackPaymentAttempt_SuccessGetsCompletionTime(t *testing.T) {
	s := NewMockStore()
	tr, _, _ := newTestTracker(s)
	ctx := context.Background()

	require.True(t, tr.TrackPaymentAttempt(ctx, testSession(), PaymentInput{Method: "card", Amount: 17.9}))
	require.True(t, tr.TrackPaymentAttempt(ctx, testSession(), PaymentInput{Method: "card", Amount: 17.9, Status: PaymentSuccessful}))

	inserts := s.Inserts()
	assert.Equal(t, PaymentAttempted, inserts[0].Row["status"])
	assert.Equal(t, "USD", inserts[0].Row["currency"])
	assert.Nil(t, inserts[0].Row["completed_at"])
	assert.Equal(t, fixedNow, inserts[1].Row["completed_at"])
}

func TestTrackInteraction_DefaultsPagePath(t *testing.T) {
	s := NewMockStore()
	tr, _, _ := newTestTracker(s)

	require.True(t, tr.TrackInteraction(context.Background(), testSession(), InteractionInput{
		Type:      InteractionButtonPress,
		ElementID: "continue",
	}))

	row := s.Inserts()[0].Row
	assert.Equal(t, "/quiz", row["page_path"])
	assert.Equal(t, "continue", row["element_id"])
	assert.Nil(t, row["element_text"])
}

func TestEmptySessionIDStillRecords(t *testing.T) {
	s := NewMockStore()
	tr, log, _ := newTestTracker(s)

	require.True(t, tr.TrackPageView(context.Background(), Session{}, PageViewInput{PagePath: "/"}))

	assert.Equal(t, "", s.Inserts()[0].Row["session_id"])
	assert.Empty(t, log.Errors())
}

func TestWithTotalSteps(t *testing.T) {
	tr := New(NewMockStore(), nil, WithTotalSteps(5), WithTotalSteps(0))
	assert.Equal(t, 5, tr.TotalSteps())
}

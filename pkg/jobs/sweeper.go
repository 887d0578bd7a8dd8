package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/funneltrack/pkg/logger"
	"github.com/jordanlanch/funneltrack/pkg/quiz"
	"github.com/jordanlanch/funneltrack/pkg/store"
	"github.com/jordanlanch/funneltrack/pkg/tracking"
)

// ReasonInactive is the drop-off reason recorded for idle sessions
const ReasonInactive = "inactive"

// DefaultSweepBatch caps how many sessions one sweep marks
const DefaultSweepBatch = 500

// IdleSweeper marks sessions that went quiet before completing as dropped
// off, through the same tracker path as a UI drop-off
type IdleSweeper struct {
	store     store.Store
	tracker   *tracking.Tracker
	idleAfter time.Duration
	batch     int
	now       func() time.Time
	logger    logger.Logger
}

// NewIdleSweeper creates a sweeper for sessions idle longer than idleAfter
func NewIdleSweeper(s store.Store, tracker *tracking.Tracker, idleAfter time.Duration, log logger.Logger) *IdleSweeper {
	if log == nil {
		log = logger.Nop()
	}
	return &IdleSweeper{
		store:     s,
		tracker:   tracker,
		idleAfter: idleAfter,
		batch:     DefaultSweepBatch,
		now:       time.Now,
		logger:    log.With("component", "idle_sweeper"),
	}
}

// Sweep records a drop-off for every idle session and returns how many
// were marked
func (s *IdleSweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now().UTC()
	cutoff := now.Add(-s.idleAfter)

	rows, err := s.store.Select(ctx, store.Query{
		Table:   store.TableSearches,
		Columns: []string{"session_id", "current_step", "last_activity_at"},
		Filters: []store.Filter{
			store.Eq("is_completed", false),
			store.IsNull("dropped_off_at"),
			store.Lt("last_activity_at", cutoff),
		},
		OrderBy: "last_activity_at",
		Limit:   s.batch,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to find idle sessions: %w", err)
	}

	marked := 0
	for _, row := range rows {
		sessionID := row.String("session_id")
		if sessionID == "" {
			continue
		}

		step := row.Int("current_step")
		in := tracking.DropOffInput{
			StepNumber: step,
			StepName:   quiz.StepName(step),
			Reason:     ReasonInactive,
		}
		if last := row.Time("last_activity_at"); last != nil {
			idle := int(now.Sub(*last).Seconds())
			in.TimeSpentSeconds = &idle
		}

		if s.tracker.TrackDropOff(ctx, tracking.Session{ID: sessionID}, in) {
			marked++
		}
	}

	if marked > 0 {
		s.logger.Info("marked idle sessions as dropped off", "count", marked, "idle_after", s.idleAfter.String())
	}
	return marked, nil
}

// Package analytics reads tracking records back out of the table store and
// reduces them into the funnel dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/funneltrack/pkg/logger"
	"github.com/jordanlanch/funneltrack/pkg/store"
)

// Service runs the read-side aggregator queries
type Service struct {
	store       store.Store
	logger      logger.Logger
	readTimeout time.Duration
}

// NewService creates a new analytics service
func NewService(s store.Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:       s,
		logger:      log.With("component", "analytics"),
		readTimeout: 10 * time.Second,
	}
}

// GetFunnelAnalytics returns the funnel step events in r, newest first
func (s *Service) GetFunnelAnalytics(ctx context.Context, r DateRange) ([]FunnelEvent, error) {
	rows, err := s.selectInRange(ctx, store.TableFunnel, r)
	if err != nil {
		return nil, s.fail("funnel analytics", err)
	}

	events := make([]FunnelEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, funnelEventFromRow(row))
	}
	return events, nil
}

// GetDropOffAnalysis returns the drop-offs in r, newest first, each with its
// parent search. Drop-offs whose search cannot be found are left out.
func (s *Service) GetDropOffAnalysis(ctx context.Context, r DateRange) ([]DropOff, error) {
	rows, err := s.selectInRange(ctx, store.TableSearchDropOffs, r)
	if err != nil {
		return nil, s.fail("drop-off analysis", err)
	}

	ids := uniqueValues(rows, "search_id")
	parents := map[string]SearchRef{}
	if len(ids) > 0 {
		searchRows, err := s.selectWithTimeout(ctx, store.Query{
			Table:   store.TableSearches,
			Columns: []string{"id", "session_id", "name", "email"},
			Filters: []store.Filter{store.In("id", ids...)},
		})
		if err != nil {
			return nil, s.fail("drop-off analysis", err)
		}
		for _, sr := range searchRows {
			parents[sr.String("id")] = SearchRef{
				SessionID: sr.String("session_id"),
				Name:      sr.String("name"),
				Email:     sr.String("email"),
			}
		}
	}

	dropOffs := make([]DropOff, 0, len(rows))
	for _, row := range rows {
		d := dropOffFromRow(row)
		parent, ok := parents[d.SearchID]
		if !ok {
			continue
		}
		d.Search = parent
		dropOffs = append(dropOffs, d)
	}
	return dropOffs, nil
}

// GetSessionsWithProgress returns the searches started in r, newest first,
// each with its answers in step order
func (s *Service) GetSessionsWithProgress(ctx context.Context, r DateRange) ([]Search, error) {
	rows, err := s.selectInRange(ctx, store.TableSearches, r)
	if err != nil {
		return nil, s.fail("sessions with progress", err)
	}

	searches := make([]Search, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		sr := searchFromRow(row)
		searches = append(searches, sr)
		ids = append(ids, sr.ID)
	}
	if len(ids) == 0 {
		return searches, nil
	}

	answerRows, err := s.selectWithTimeout(ctx, store.Query{
		Table:   store.TableSearchAnswers,
		Filters: []store.Filter{store.In("search_id", ids...)},
		OrderBy: "step_number",
	})
	if err != nil {
		return nil, s.fail("sessions with progress", err)
	}

	bySearch := make(map[string][]Answer, len(ids))
	for _, row := range answerRows {
		a := answerFromRow(row)
		bySearch[a.SearchID] = append(bySearch[a.SearchID], a)
	}
	for i := range searches {
		searches[i].Answers = bySearch[searches[i].ID]
	}
	return searches, nil
}

// GetAllSearches returns every search record, newest first
func (s *Service) GetAllSearches(ctx context.Context) ([]Search, error) {
	rows, err := s.selectWithTimeout(ctx, store.Query{
		Table:      store.TableSearches,
		OrderBy:    "created_at",
		Descending: true,
	})
	if err != nil {
		return nil, s.fail("all searches", err)
	}

	searches := make([]Search, 0, len(rows))
	for _, row := range rows {
		searches = append(searches, searchFromRow(row))
	}
	return searches, nil
}

func (s *Service) selectInRange(ctx context.Context, table string, r DateRange) ([]store.Row, error) {
	return s.selectWithTimeout(ctx, store.Query{
		Table: table,
		Filters: []store.Filter{
			store.Gte("created_at", r.Start),
			store.Lte("created_at", r.End),
		},
		OrderBy:    "created_at",
		Descending: true,
	})
}

func (s *Service) selectWithTimeout(ctx context.Context, q store.Query) ([]store.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()
	return s.store.Select(ctx, q)
}

func (s *Service) fail(query string, err error) error {
	s.logger.Error("analytics query failed", "query", query, "error", err)
	return fmt.Errorf("failed to get %s: %w", query, err)
}

func uniqueValues(rows []store.Row, col string) []string {
	seen := make(map[string]bool, len(rows))
	var out []string
	for _, row := range rows {
		v := row.String(col)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

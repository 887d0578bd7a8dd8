package analytics

import (
	"math"
	"sort"

	"github.com/jordanlanch/funneltrack/pkg/tracking"
)

// StepCount is the number of sessions that reached a funnel step
type StepCount struct {
	Step       string  `json:"step"`
	Order      int     `json:"order"`
	Sessions   int     `json:"sessions"`
	Percentage float64 `json:"percentage"`
}

// Summary holds the dashboard aggregates for a date range
type Summary struct {
	StartDate               string         `json:"start_date"`
	EndDate                 string         `json:"end_date"`
	TotalSessions           int            `json:"total_sessions"`
	CompletedSessions       int            `json:"completed_sessions"`
	DroppedSessions         int            `json:"dropped_sessions"`
	CompletionRate          float64        `json:"completion_rate"`
	DropOffRate             float64        `json:"drop_off_rate"`
	TotalDropOffs           int            `json:"total_drop_offs"`
	StepDropOffs            map[string]int `json:"step_drop_offs"`
	AverageTimeSpentSeconds float64        `json:"average_time_spent_seconds"`
	FunnelSteps             []StepCount    `json:"funnel_steps"`
	StatusCounts            map[Status]int `json:"status_counts"`
	SearchTypes             map[string]int `json:"search_types"`
}

// BuildSummary reduces the aggregator results into dashboard counts. Any of
// the inputs may be empty.
func BuildSummary(r DateRange, sessions []Search, dropOffs []DropOff, funnel []FunnelEvent) Summary {
	sum := Summary{
		StartDate:     r.Start.Format(DateLayout),
		EndDate:       r.End.Format(DateLayout),
		TotalSessions: len(sessions),
		TotalDropOffs: len(dropOffs),
		StepDropOffs:  map[string]int{},
		StatusCounts: map[Status]int{
			StatusStarted:    0,
			StatusInProgress: 0,
			StatusCompleted:  0,
			StatusDroppedOff: 0,
		},
		SearchTypes: map[string]int{},
	}

	for _, s := range sessions {
		status := SessionStatus(s)
		sum.StatusCounts[status]++
		if status == StatusCompleted {
			sum.CompletedSessions++
		}
		if status == StatusDroppedOff {
			sum.DroppedSessions++
		}

		searchType := s.SearchType
		if searchType == "" {
			searchType = tracking.SearchPartner
		}
		sum.SearchTypes[searchType]++
	}

	total := int64(sum.TotalSessions)
	sum.CompletionRate = calculateRate(int64(sum.CompletedSessions), total)
	sum.DropOffRate = calculateRate(total-int64(sum.CompletedSessions), total)

	var dwellTotal, dwellCount int
	for _, d := range dropOffs {
		sum.StepDropOffs[d.StepName]++
		if d.TimeSpentSeconds != nil {
			dwellTotal += *d.TimeSpentSeconds
			dwellCount++
		}
	}
	if dwellCount > 0 {
		sum.AverageTimeSpentSeconds = math.Round(float64(dwellTotal)/float64(dwellCount)*100) / 100
	}

	sum.FunnelSteps = funnelStepCounts(funnel)
	return sum
}

// funnelStepCounts counts distinct sessions per known step, as a percentage
// of the sessions that started the quiz
func funnelStepCounts(events []FunnelEvent) []StepCount {
	sessions := make(map[string]map[string]bool, len(tracking.FunnelSteps))
	for _, e := range events {
		if !e.IsCompleted {
			continue
		}
		if sessions[e.Step] == nil {
			sessions[e.Step] = map[string]bool{}
		}
		sessions[e.Step][e.SessionID] = true
	}

	starts := int64(len(sessions[string(tracking.StepQuizStart)]))
	counts := make([]StepCount, 0, len(tracking.FunnelSteps))
	for _, step := range tracking.FunnelSteps {
		n := len(sessions[string(step)])
		counts = append(counts, StepCount{
			Step:       string(step),
			Order:      step.Order(),
			Sessions:   n,
			Percentage: calculateRate(int64(n), starts),
		})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Order < counts[j].Order })
	return counts
}

// calculateRate calculates percentage rate, rounded to 2 decimal places
func calculateRate(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0
	}
	rate := (float64(numerator) / float64(denominator)) * 100
	return math.Round(rate*100) / 100
}

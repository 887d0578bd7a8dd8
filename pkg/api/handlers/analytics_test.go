package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jordanlanch/funneltrack/pkg/analytics"
	"github.com/jordanlanch/funneltrack/pkg/store"
	"github.com/jordanlanch/funneltrack/pkg/tracking"
)

var analyticsNow = time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

func newAnalyticsEnv(t *testing.T, s store.Store) *testEnv {
	t.Helper()
	env := newTestEnv(t, s)
	svc := analytics.NewService(env.store, nil)
	h := NewAnalyticsHandler(svc, analytics.NewDashboard(svc, nil, 0, nil, nil))
	h.now = func() time.Time { return analyticsNow }

	env.e.GET("/analytics/funnel", h.GetFunnel)
	env.e.GET("/analytics/drop-offs", h.GetDropOffs)
	env.e.GET("/analytics/sessions", h.GetSessions)
	env.e.GET("/analytics/searches", h.GetSearches)
	env.e.GET("/analytics/dashboard", h.GetDashboard)
	env.e.GET("/analytics/sessions/export", h.ExportSessions)
	return env
}

// seedFunnel records two sessions on 2024-06-03: one completed and one
// dropped at the location step
func seedFunnel(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	clock := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	tr := tracking.New(s, nil, tracking.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))

	done := tracking.Session{ID: "session_done"}
	require.NotEmpty(t, tr.TrackSearch(ctx, done, tracking.SearchInput{Name: "Ana"}))
	tr.TrackFunnelStep(ctx, done, tracking.FunnelStepInput{Step: tracking.StepQuizStart})
	require.True(t, tr.TrackAnswer(ctx, done, tracking.AnswerInput{StepNumber: 1, QuestionType: "age"}))
	require.True(t, tr.CompleteSession(ctx, done))

	left := tracking.Session{ID: "session_left"}
	require.NotEmpty(t, tr.TrackSearch(ctx, left, tracking.SearchInput{Name: "Ben"}))
	tr.TrackFunnelStep(ctx, left, tracking.FunnelStepInput{Step: tracking.StepQuizStart})
	require.True(t, tr.TrackDropOff(ctx, left, tracking.DropOffInput{StepNumber: 2, StepName: "location"}))
}

const juneRange = "?start_date=2024-06-01&end_date=2024-06-07"

func decodeData(t *testing.T, body []byte) []map[string]any {
	t.Helper()
	var resp struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Data
}

func TestAnalytics_Sessions(t *testing.T) {
	env := newAnalyticsEnv(t, nil)
	seedFunnel(t, env.store)

	rec := env.do(http.MethodGet, "/analytics/sessions"+juneRange, "")

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec.Body.Bytes())
	require.Len(t, data, 2)
	statuses := []any{data[0]["status"], data[1]["status"]}
	assert.ElementsMatch(t, []any{"completed", "dropped_off"}, statuses)
}

func TestAnalytics_DropOffsAndFunnel(t *testing.T) {
	env := newAnalyticsEnv(t, nil)
	seedFunnel(t, env.store)

	rec := env.do(http.MethodGet, "/analytics/drop-offs"+juneRange, "")
	require.Equal(t, http.StatusOK, rec.Code)
	dropOffs := decodeData(t, rec.Body.Bytes())
	require.Len(t, dropOffs, 1)
	assert.Equal(t, "location", dropOffs[0]["step_name"])
	assert.Equal(t, "Ben", dropOffs[0]["search"].(map[string]any)["name"])

	rec = env.do(http.MethodGet, "/analytics/funnel"+juneRange, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData(t, rec.Body.Bytes()), 2)
}

func TestAnalytics_DefaultRangeExcludesOldSessions(t *testing.T) {
	env := newAnalyticsEnv(t, nil)
	seedFunnel(t, env.store)
	analyticsNow = time.Date(2024, 7, 30, 0, 0, 0, 0, time.UTC)
	defer func() { analyticsNow = time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC) }()

	rec := env.do(http.MethodGet, "/analytics/sessions", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData(t, rec.Body.Bytes()))
}

func TestAnalytics_Searches(t *testing.T) {
	env := newAnalyticsEnv(t, nil)
	seedFunnel(t, env.store)

	rec := env.do(http.MethodGet, "/analytics/searches", "")

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec.Body.Bytes())
	require.Len(t, data, 2)
	assert.Equal(t, "session_left", data[0]["session_id"])
}

func TestAnalytics_Dashboard(t *testing.T) {
	env := newAnalyticsEnv(t, nil)
	seedFunnel(t, env.store)

	rec := env.do(http.MethodGet, "/analytics/dashboard"+juneRange, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var sum analytics.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 2, sum.TotalSessions)
	assert.Equal(t, 1, sum.CompletedSessions)
	assert.Equal(t, 1, sum.DroppedSessions)
	assert.Equal(t, 1, sum.StepDropOffs["location"])
}

func TestAnalytics_InvalidDateRange(t *testing.T) {
	env := newAnalyticsEnv(t, nil)

	for _, path := range []string{
		"/analytics/sessions?start_date=2024-06-07&end_date=2024-06-01",
		"/analytics/funnel?start_date=June",
		"/analytics/dashboard?end_date=2024-13-01",
		"/analytics/sessions/export?start_date=2024-06-07&end_date=2024-06-01",
	} {
		rec := env.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "invalid_date_range", path)
	}
}

func TestAnalytics_ReadFailuresReturnEmptyData(t *testing.T) {
	env := newAnalyticsEnv(t, failingStore{})

	for _, path := range []string{
		"/analytics/funnel" + juneRange,
		"/analytics/drop-offs" + juneRange,
		"/analytics/sessions" + juneRange,
		"/analytics/searches",
	} {
		rec := env.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Empty(t, decodeData(t, rec.Body.Bytes()), path)
	}

	rec := env.do(http.MethodGet, "/analytics/dashboard"+juneRange, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum analytics.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Zero(t, sum.TotalSessions)
}

func TestExportSessions_CSV(t *testing.T) {
	env := newAnalyticsEnv(t, nil)
	seedFunnel(t, env.store)

	rec := env.do(http.MethodGet, "/analytics/sessions/export"+juneRange+"&format=csv", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "sessions_2024-06-01_2024-06-07.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Session ID,"))
}

func TestExportSessions_Excel(t *testing.T) {
	env := newAnalyticsEnv(t, nil)
	seedFunnel(t, env.store)

	rec := env.do(http.MethodGet, "/analytics/sessions/export"+juneRange+"&format=excel", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sessions")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestExportSessions_UnknownFormat(t *testing.T) {
	env := newAnalyticsEnv(t, nil)

	rec := env.do(http.MethodGet, "/analytics/sessions/export?format=pdf", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

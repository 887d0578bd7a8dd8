package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/funneltrack/pkg/analytics"
	"github.com/jordanlanch/funneltrack/pkg/api/errors"
	"github.com/jordanlanch/funneltrack/pkg/models"
)

// AnalyticsHandler handles the analytics read endpoints. Failed reads
// answer 200 with an empty data set.
type AnalyticsHandler struct {
	service   *analytics.Service
	dashboard *analytics.Dashboard
	now       func() time.Time
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service *analytics.Service, dashboard *analytics.Dashboard) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:   service,
		dashboard: dashboard,
		now:       time.Now,
	}
}

// dateRange reads start_date and end_date, defaulting to the last
// DefaultRangeDays days
func (h *AnalyticsHandler) dateRange(c echo.Context) (analytics.DateRange, error) {
	var q models.DateRangeQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return analytics.DateRange{}, err
	}
	return analytics.ParseDateRange(q.StartDate, q.EndDate, h.now())
}

func dataResponse(r analytics.DateRange, data any) models.DataResponse {
	return models.DataResponse{
		Data:      data,
		StartDate: r.Start.Format(analytics.DateLayout),
		EndDate:   r.End.Format(analytics.DateLayout),
	}
}

// GetFunnel returns the funnel events in the range
func (h *AnalyticsHandler) GetFunnel(c echo.Context) error {
	r, err := h.dateRange(c)
	if err != nil {
		return errors.InvalidDateRange(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	events, err := h.service.GetFunnelAnalytics(ctx, r)
	if err != nil {
		events = []analytics.FunnelEvent{}
	}
	return c.JSON(http.StatusOK, dataResponse(r, events))
}

// GetDropOffs returns the drop-offs in the range with their parent search
func (h *AnalyticsHandler) GetDropOffs(c echo.Context) error {
	r, err := h.dateRange(c)
	if err != nil {
		return errors.InvalidDateRange(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	dropOffs, err := h.service.GetDropOffAnalysis(ctx, r)
	if err != nil {
		dropOffs = []analytics.DropOff{}
	}
	return c.JSON(http.StatusOK, dataResponse(r, dropOffs))
}

// GetSessions returns the sessions in the range with their answers
func (h *AnalyticsHandler) GetSessions(c echo.Context) error {
	r, err := h.dateRange(c)
	if err != nil {
		return errors.InvalidDateRange(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	sessions, err := h.service.GetSessionsWithProgress(ctx, r)
	if err != nil {
		sessions = []analytics.Search{}
	}
	return c.JSON(http.StatusOK, dataResponse(r, sessions))
}

// GetSearches returns every search, newest first
func (h *AnalyticsHandler) GetSearches(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	searches, err := h.service.GetAllSearches(ctx)
	if err != nil {
		searches = []analytics.Search{}
	}
	return c.JSON(http.StatusOK, models.DataResponse{Data: searches})
}

// GetDashboard returns the dashboard summary for the range
func (h *AnalyticsHandler) GetDashboard(c echo.Context) error {
	r, err := h.dateRange(c)
	if err != nil {
		return errors.InvalidDateRange(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	summary, err := h.dashboard.Summary(ctx, r)
	if err != nil {
		summary = analytics.BuildSummary(r, nil, nil, nil)
	}
	return c.JSON(http.StatusOK, summary)
}

// ExportSessions writes the sessions in the range as CSV or Excel
func (h *AnalyticsHandler) ExportSessions(c echo.Context) error {
	r, err := h.dateRange(c)
	if err != nil {
		return errors.InvalidDateRange(c, err)
	}

	format := c.QueryParam("format")
	if format == "" {
		format = analytics.FormatCSV
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	sessions, err := h.service.GetSessionsWithProgress(ctx, r)
	if err != nil {
		sessions = nil
	}

	var (
		buf         bytes.Buffer
		contentType string
		ext         string
	)
	switch format {
	case analytics.FormatCSV:
		err = analytics.WriteSessionsCSV(&buf, sessions)
		contentType, ext = "text/csv; charset=utf-8", "csv"
	case analytics.FormatExcel:
		err = analytics.WriteSessionsExcel(&buf, sessions)
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	default:
		return errors.ValidationError(c, fmt.Errorf("unsupported export format %q", format))
	}
	if err != nil {
		return errors.InternalError(c, err)
	}

	filename := fmt.Sprintf("sessions_%s_%s.%s",
		r.Start.Format(analytics.DateLayout), r.End.Format(analytics.DateLayout), ext)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

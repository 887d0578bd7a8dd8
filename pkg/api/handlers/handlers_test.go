package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/funneltrack/pkg/database/dbtest"
	"github.com/jordanlanch/funneltrack/pkg/identity"
	"github.com/jordanlanch/funneltrack/pkg/middleware"
	"github.com/jordanlanch/funneltrack/pkg/store"
	"github.com/jordanlanch/funneltrack/pkg/tracking"
)

const testSessionID = "session_1717408800000_abcdefghi"

var errStoreDown = errors.New("connection refused")

// failingStore rejects every call
type failingStore struct{}

func (failingStore) Insert(context.Context, string, store.Row) error {
	return errStoreDown
}

func (failingStore) Update(context.Context, string, store.Row, ...store.Filter) (int64, error) {
	return 0, errStoreDown
}

func (failingStore) Select(context.Context, store.Query) ([]store.Row, error) {
	return nil, errStoreDown
}

func (failingStore) Ping(context.Context) error {
	return errStoreDown
}

func (failingStore) Close() error {
	return nil
}

// testEnv wires handlers to an in-memory store with jobs running inline
type testEnv struct {
	store      store.Store
	tracker    *tracking.Tracker
	dispatcher *tracking.Dispatcher
	e          *echo.Echo
}

func newTestEnv(t *testing.T, s store.Store) *testEnv {
	t.Helper()
	if s == nil {
		s = dbtest.Open(t)
	}
	e := echo.New()
	e.Use(middleware.Session(identity.NewProvider(identity.DefaultKey, nil), identity.CookieConfig{}))

	return &testEnv{
		store:      s,
		tracker:    tracking.New(s, nil),
		dispatcher: tracking.NewDispatcher(0, 0, nil, nil),
		e:          e,
	}
}

// do sends a JSON request carrying the test session cookie
func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Referer", "https://funnel.example.com/quiz?utm_source=tiktok&utm_campaign=spring")
	req.AddCookie(&http.Cookie{Name: identity.DefaultKey, Value: testSessionID})
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) rows(t *testing.T, table string) []store.Row {
	t.Helper()
	rows, err := env.store.Select(context.Background(), store.Query{Table: table, OrderBy: "created_at"})
	require.NoError(t, err)
	return rows
}

func (env *testEnv) search(t *testing.T) store.Row {
	t.Helper()
	rows, err := env.store.Select(context.Background(), store.Query{
		Table:   store.TableSearches,
		Filters: []store.Filter{store.Eq("session_id", testSessionID)},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0]
}

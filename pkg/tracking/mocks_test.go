package tracking

import (
	"context"
	"fmt"
	"sync"

	"github.com/jordanlanch/funneltrack/pkg/logger"
	"github.com/jordanlanch/funneltrack/pkg/store"
)

type insertCall struct {
	Table string
	Row   store.Row
}

type updateCall struct {
	Table   string
	Fields  store.Row
	Filters []store.Filter
}

// MockStore records every call and fails tables listed in failInsert or
// failUpdate
type MockStore struct {
	mu         sync.Mutex
	inserts    []insertCall
	updates    []updateCall
	selects    []store.Query
	selectRows []store.Row
	selectErr  error
	failInsert map[string]error
	failUpdate error
}

func NewMockStore() *MockStore {
	return &MockStore{failInsert: make(map[string]error)}
}

func (m *MockStore) Insert(ctx context.Context, table string, row store.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failInsert[table]; err != nil {
		return err
	}
	m.inserts = append(m.inserts, insertCall{Table: table, Row: row})
	return nil
}

func (m *MockStore) Update(ctx context.Context, table string, fields store.Row, filters ...store.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate != nil {
		return 0, m.failUpdate
	}
	m.updates = append(m.updates, updateCall{Table: table, Fields: fields, Filters: filters})
	return 1, nil
}

func (m *MockStore) Select(ctx context.Context, q store.Query) ([]store.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selects = append(m.selects, q)
	return m.selectRows, m.selectErr
}

func (m *MockStore) Ping(ctx context.Context) error { return nil }
func (m *MockStore) Close() error                   { return nil }

func (m *MockStore) Inserts() []insertCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]insertCall(nil), m.inserts...)
}

func (m *MockStore) Updates() []updateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]updateCall(nil), m.updates...)
}

// CapturingLogger keeps every message by level
type CapturingLogger struct {
	mu     *sync.Mutex
	errors *[]string
	warns  *[]string
}

func NewCapturingLogger() *CapturingLogger {
	return &CapturingLogger{mu: &sync.Mutex{}, errors: &[]string{}, warns: &[]string{}}
}

func (l *CapturingLogger) Info(msg string, args ...any)  {}
func (l *CapturingLogger) Debug(msg string, args ...any) {}

func (l *CapturingLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.errors = append(*l.errors, fmt.Sprint(append([]any{msg}, args...)...))
}

func (l *CapturingLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.warns = append(*l.warns, msg)
}

func (l *CapturingLogger) With(args ...any) logger.Logger { return l }

func (l *CapturingLogger) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), *l.errors...)
}

func (l *CapturingLogger) Warns() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), *l.warns...)
}

// MockRecorder counts tracking writes
type MockRecorder struct {
	mu      sync.Mutex
	ok      map[string]int
	failed  map[string]int
	dropped int
}

func NewMockRecorder() *MockRecorder {
	return &MockRecorder{ok: map[string]int{}, failed: map[string]int{}}
}

func (r *MockRecorder) RecordTrackingEvent(table string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.ok[table]++
	} else {
		r.failed[table]++
	}
}

func (r *MockRecorder) RecordDispatchDropped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped++
}

func (r *MockRecorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

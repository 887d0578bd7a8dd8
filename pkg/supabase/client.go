// Package supabase implements the table store over a Supabase project's
// PostgREST endpoint.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"

	"github.com/jordanlanch/funneltrack/pkg/store"
)

const responseHeaderTimeout = 10 * time.Second

// Client talks to {baseURL}/rest/v1 with a service key
type Client struct {
	rest      *postgrest.Client
	transport http.RoundTripper
}

var _ store.Store = (*Client)(nil)

// NewClient creates a new PostgREST client. transport may be nil.
func NewClient(baseURL, apiKey string, transport http.RoundTripper) *Client {
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.ResponseHeaderTimeout = responseHeaderTimeout
		transport = t
	}

	rest := postgrest.NewClient(strings.TrimRight(baseURL, "/")+"/rest/v1", "public", map[string]string{
		"apikey":        apiKey,
		"Authorization": "Bearer " + apiKey,
	})
	if rest.Transport != nil {
		rest.Transport.Parent = transport
	}

	return &Client{rest: rest, transport: transport}
}

// Insert posts a single row
func (c *Client) Insert(ctx context.Context, table string, row store.Row) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("insert into %s: failed to marshal row: %w", table, err)
	}

	query := c.rest.From(table).Insert(json.RawMessage(payload), false, "", "minimal", "")
	if _, _, err := execute(ctx, query.Execute); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// Update patches every row matching filters and returns the exact count
// PostgREST reports in Content-Range
func (c *Client) Update(ctx context.Context, table string, fields store.Row, filters ...store.Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, store.ErrNoFilters
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("update %s: failed to marshal fields: %w", table, err)
	}

	query := c.rest.From(table).Update(json.RawMessage(payload), "minimal", "exact")
	if err := applyFilters(query, filters); err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}

	_, count, err := execute(ctx, query.Execute)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}
	return count, nil
}

// Select reads rows matching q
func (c *Client) Select(ctx context.Context, q store.Query) ([]store.Row, error) {
	query := c.rest.From(q.Table).Select(strings.Join(q.Columns, ","), "", false)
	if err := applyFilters(query, q.Filters); err != nil {
		return nil, fmt.Errorf("select from %s: %w", q.Table, err)
	}
	if q.OrderBy != "" {
		query.Order(q.OrderBy, &postgrest.OrderOpts{Ascending: !q.Descending})
	}
	if q.Limit > 0 {
		query.Limit(q.Limit, "")
	}

	body, _, err := execute(ctx, query.Execute)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", q.Table, err)
	}

	var rows []store.Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("select from %s: decoding response: %w", q.Table, err)
	}
	return rows, nil
}

// Ping reads a single id from the searches table
func (c *Client) Ping(ctx context.Context) error {
	query := c.rest.From(store.TableSearches).Select("id", "", false).Limit(1, "")
	if _, _, err := execute(ctx, query.Execute); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases idle connections
func (c *Client) Close() error {
	if t, ok := c.transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
	return nil
}

// execute runs a postgrest request, which has no context of its own, and
// returns early once ctx is done. The abandoned request is bounded by the
// transport's response header timeout.
func execute(ctx context.Context, exec func() ([]byte, int64, error)) ([]byte, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	type result struct {
		body  []byte
		count int64
		err   error
	}
	done := make(chan result, 1)
	go func() {
		body, count, err := exec()
		done <- result{body: body, count: count, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case r := <-done:
		return r.body, r.count, r.err
	}
}

// applyFilters adds filters to the query. postgrest-go keys filters by
// column, so a column filtered more than once goes into one and=(...) group.
func applyFilters(query *postgrest.FilterBuilder, filters []store.Filter) error {
	perColumn := make(map[string]int, len(filters))
	for _, f := range filters {
		perColumn[f.Column]++
	}

	var grouped []string
	for _, f := range filters {
		op, value, err := condition(f)
		if err != nil {
			return err
		}
		if perColumn[f.Column] > 1 {
			if f.Op != store.OpIn && f.Op != store.OpIsNull {
				value = quote(value)
			}
			grouped = append(grouped, f.Column+"."+op+"."+value)
			continue
		}
		query.Filter(f.Column, op, value)
	}

	if len(grouped) > 0 {
		query.And(strings.Join(grouped, ","), "")
	}
	return nil
}

func condition(f store.Filter) (op, value string, err error) {
	switch f.Op {
	case store.OpEq, store.OpGte, store.OpLte, store.OpLt:
		return string(f.Op), formatValue(f.Value), nil
	case store.OpIsNull:
		return "is", "null", nil
	case store.OpIn:
		values := f.InValues()
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = quote(v)
		}
		return "in", "(" + strings.Join(quoted, ",") + ")", nil
	default:
		return "", "", fmt.Errorf("unsupported filter operator %q", f.Op)
	}
}

// quote wraps values holding PostgREST reserved characters in double quotes
func quote(v string) string {
	if !strings.ContainsAny(v, `,()"`) {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

func formatValue(v any) string {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/jordanlanch/funneltrack/pkg/store"
)

// QueryObserver receives the duration of every statement by operation
// (insert, update, select)
type QueryObserver func(operation string, duration time.Duration)

// Store implements store.Store on top of a SQL database. Statements are
// built with ent's SQL builder for the client's dialect.
type Store struct {
	client   *Client
	replicas *Replicas
	observer QueryObserver
}

var _ store.Store = (*Store)(nil)

// NewStore creates a SQL table store. observer may be nil.
func NewStore(client *Client, observer QueryObserver) *Store {
	return &Store{client: client, observer: observer}
}

// UseReplicas routes Select to healthy read replicas. The Store takes
// ownership of r and closes it on Close.
func (s *Store) UseReplicas(r *Replicas) {
	s.replicas = r
}

// readClient picks a healthy replica, falling back to the primary
func (s *Store) readClient() *Client {
	if c := s.replicas.Next(); c != nil {
		return c
	}
	return s.client
}

// Insert writes a single row
func (s *Store) Insert(ctx context.Context, table string, row store.Row) error {
	if len(row) == 0 {
		return fmt.Errorf("insert into %s: empty row", table)
	}

	cols := sortedColumns(row)
	values := make([]any, len(cols))
	for i, col := range cols {
		v, err := toSQLValue(row[col])
		if err != nil {
			return fmt.Errorf("insert into %s: column %s: %w", table, col, err)
		}
		values[i] = v
	}

	query, args := entsql.Dialect(s.client.Dialect).
		Insert(table).
		Columns(cols...).
		Values(values...).
		Query()

	defer s.observe("insert", time.Now())
	if _, err := s.client.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// Update sets fields on every row matching filters and returns the number
// of rows touched
func (s *Store) Update(ctx context.Context, table string, fields store.Row, filters ...store.Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, store.ErrNoFilters
	}
	if len(fields) == 0 {
		return 0, fmt.Errorf("update %s: no fields", table)
	}

	pred, err := predicate(filters)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}

	u := entsql.Dialect(s.client.Dialect).Update(table)
	for _, col := range sortedColumns(fields) {
		v, err := toSQLValue(fields[col])
		if err != nil {
			return 0, fmt.Errorf("update %s: column %s: %w", table, col, err)
		}
		u.Set(col, v)
	}
	query, args := u.Where(pred).Query()

	defer s.observe("update", time.Now())
	res, err := s.client.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update %s: rows affected: %w", table, err)
	}
	return n, nil
}

// Select reads the rows matching q
func (s *Store) Select(ctx context.Context, q store.Query) ([]store.Row, error) {
	cols := q.Columns
	if len(cols) == 0 {
		cols = store.Columns[q.Table]
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("select from %s: unknown table", q.Table)
	}

	b := entsql.Dialect(s.client.Dialect)
	sel := b.Select(cols...).From(b.Table(q.Table))
	if len(q.Filters) > 0 {
		pred, err := predicate(q.Filters)
		if err != nil {
			return nil, fmt.Errorf("select from %s: %w", q.Table, err)
		}
		sel.Where(pred)
	}
	if q.OrderBy != "" {
		if q.Descending {
			sel.OrderBy(entsql.Desc(q.OrderBy))
		} else {
			sel.OrderBy(entsql.Asc(q.OrderBy))
		}
	}
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}
	query, args := sel.Query()

	defer s.observe("select", time.Now())
	rows, err := s.readClient().DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", q.Table, err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", q.Table, err)
	}
	return result, nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close closes the replicas and the primary connection
func (s *Store) Close() error {
	return errors.Join(s.replicas.Close(), s.client.Close())
}

func (s *Store) observe(operation string, start time.Time) {
	if s.observer != nil {
		s.observer(operation, time.Since(start))
	}
}

func predicate(filters []store.Filter) (*entsql.Predicate, error) {
	preds := make([]*entsql.Predicate, 0, len(filters))
	for _, f := range filters {
		switch f.Op {
		case store.OpEq:
			preds = append(preds, entsql.EQ(f.Column, sqlScalar(f.Value)))
		case store.OpGte:
			preds = append(preds, entsql.GTE(f.Column, sqlScalar(f.Value)))
		case store.OpLte:
			preds = append(preds, entsql.LTE(f.Column, sqlScalar(f.Value)))
		case store.OpLt:
			preds = append(preds, entsql.LT(f.Column, sqlScalar(f.Value)))
		case store.OpIsNull:
			preds = append(preds, entsql.IsNull(f.Column))
		case store.OpIn:
			values := f.InValues()
			args := make([]any, len(values))
			for i, v := range values {
				args[i] = v
			}
			preds = append(preds, entsql.In(f.Column, args...))
		default:
			return nil, fmt.Errorf("unsupported filter operator %q", f.Op)
		}
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return entsql.And(preds...), nil
}

func sqlScalar(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC()
	}
	return v
}

// toSQLValue converts a row value into something every supported driver
// accepts. Maps and slices are stored as JSON text.
func toSQLValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return val.UTC(), nil
	case *time.Time:
		if val == nil {
			return nil, nil
		}
		return val.UTC(), nil
	case map[string]any:
		if val == nil {
			return nil, nil
		}
		return marshalJSON(val)
	case []any, []string:
		return marshalJSON(val)
	case json.RawMessage:
		return string(val), nil
	default:
		return v, nil
	}
}

func marshalJSON(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanRows(rows *sql.Rows) ([]store.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []store.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(store.Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func sortedColumns(row store.Row) []string {
	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Package store defines the table store contract shared by the SQL and REST
// backends. A store accepts inserts, filtered updates and filtered selects
// against named tables, one round-trip per call.
package store

import (
	"context"
	"errors"
)

// Op is a filter comparison operator
type Op string

const (
	OpEq     Op = "eq"
	OpGte    Op = "gte"
	OpLte    Op = "lte"
	OpLt     Op = "lt"
	OpIsNull Op = "is_null"
	OpIn     Op = "in"
)

// Filter restricts the rows touched by Update or returned by Select
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Eq matches rows where column equals value
func Eq(column string, value any) Filter { return Filter{Column: column, Op: OpEq, Value: value} }

// Gte matches rows where column is greater than or equal to value
func Gte(column string, value any) Filter { return Filter{Column: column, Op: OpGte, Value: value} }

// Lte matches rows where column is less than or equal to value
func Lte(column string, value any) Filter { return Filter{Column: column, Op: OpLte, Value: value} }

// Lt matches rows where column is strictly less than value
func Lt(column string, value any) Filter { return Filter{Column: column, Op: OpLt, Value: value} }

// IsNull matches rows where column is NULL
func IsNull(column string) Filter { return Filter{Column: column, Op: OpIsNull} }

// In matches rows where column is one of values
func In(column string, values ...string) Filter {
	return Filter{Column: column, Op: OpIn, Value: values}
}

// Query describes a Select
type Query struct {
	Table      string
	Columns    []string
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// ErrNoFilters is returned by Update when called without filters
var ErrNoFilters = errors.New("store: update requires at least one filter")

// Store is a remote table store
type Store interface {
	Insert(ctx context.Context, table string, row Row) error
	Update(ctx context.Context, table string, fields Row, filters ...Filter) (int64, error)
	Select(ctx context.Context, q Query) ([]Row, error)
	Ping(ctx context.Context) error
	Close() error
}

// InValues returns the string values of an In filter
func (f Filter) InValues() []string {
	values, _ := f.Value.([]string)
	return values
}

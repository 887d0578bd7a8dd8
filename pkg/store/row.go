package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Row is a single record keyed by column name. Values keep the driver's
// representation; use the accessors to read them uniformly.
type Row map[string]any

// timeLayouts are tried in order when a timestamp arrives as text
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// String returns the column as a string, "" when absent or NULL
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the column as an int, 0 when absent or not numeric
func (r Row) Int(col string) int {
	switch v := r[col].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	case []byte:
		n, _ := strconv.Atoi(string(v))
		return n
	default:
		return 0
	}
}

// IntPtr returns the column as *int, nil when NULL
func (r Row) IntPtr(col string) *int {
	if r[col] == nil {
		return nil
	}
	n := r.Int(col)
	return &n
}

// Float returns the column as a float64, 0 when absent or not numeric
func (r Row) Float(col string) float64 {
	switch v := r[col].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	default:
		return 0
	}
}

// Bool returns the column as a bool. SQLite stores booleans as integers.
func (r Row) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case []byte:
		b, _ := strconv.ParseBool(string(v))
		return b
	default:
		return false
	}
}

// Time returns the column as a UTC time, nil when NULL or unparseable
func (r Row) Time(col string) *time.Time {
	var s string
	switch v := r[col].(type) {
	case time.Time:
		t := v.UTC()
		return &t
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// JSON decodes a JSON column into a generic map. Values already decoded by
// a REST backend are returned as-is.
func (r Row) JSON(col string) map[string]any {
	switch v := r[col].(type) {
	case map[string]any:
		return v
	case string:
		return decodeJSONObject([]byte(v))
	case []byte:
		return decodeJSONObject(v)
	default:
		return nil
	}
}

func decodeJSONObject(b []byte) map[string]any {
	if len(b) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}

package types

import (
	"sort"
	"strconv"
)

// Values is a column-to-value mapping used for inserts and updates. Keys are
// column names from this package; values are int64, float64, string, bool,
// []byte or nil.
type Values map[string]any

// Columns returns the keys of v in sorted order.
func (v Values) Columns() []string {
	cols := make([]string, 0, len(v))
	for c := range v {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Clone returns a shallow copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Row is one result row keyed by projected column name.
type Row map[string]any

// IsNull reports whether the column is absent or NULL.
func (r Row) IsNull(col string) bool {
	v, ok := r[col]
	return !ok || v == nil
}

// Int64 returns the column as an integer. NULL and unparseable values
// yield 0.
func (r Row) Int64(col string) int64 {
	n, _ := toInt64(r[col])
	return n
}

// Int returns the column as an int.
func (r Row) Int(col string) int { return int(r.Int64(col)) }

// NullInt64 returns the column as an integer pointer, nil for NULL.
func (r Row) NullInt64(col string) *int64 {
	n, ok := toInt64(r[col])
	if !ok {
		return nil
	}
	return &n
}

// Float64 returns the column as a float. NULL yields 0.
func (r Row) Float64(col string) float64 {
	switch v := r[col].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	}
	return 0
}

// String returns the column as text. NULL yields "".
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// Bool returns true for any non-zero integer value.
func (r Row) Bool(col string) bool {
	if b, ok := r[col].(bool); ok {
		return b
	}
	return r.Int64(col) != 0
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	case []byte:
		i, err := strconv.ParseInt(string(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nullable(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

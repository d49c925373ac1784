package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Row is one record of a dataset. Values are float64, string, bool or nil.
type Row map[string]any

// Float returns the value at key as a number. Numeric strings are not coerced.
func (r Row) Float(key string) (float64, bool) {
	return ToFloat(r[key])
}

// String returns the value at key formatted for display; nil yields "".
func (r Row) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := ToFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// ToFloat normalises the numeric representations rows can carry after a
// JSON or Firestore round trip.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Scalar is the single-row view of a snapshot dataset. Renderers must check
// Present before reading fields.
type Scalar struct {
	row     Row
	present bool
}

// ScalarOf wraps the first row of rows, or returns the empty variant.
func ScalarOf(rows []Row) Scalar {
	if len(rows) == 0 || rows[0] == nil {
		return Scalar{}
	}
	return Scalar{row: rows[0], present: true}
}

func (s Scalar) Present() bool { return s.present }

func (s Scalar) Row() Row { return s.row }

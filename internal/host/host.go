// Package host defines the narrow interfaces through which the panel talks to
// the platform it is embedded in: the tabular snapshot feed, the shared
// outbound variable, and the action trigger. The panel never reaches past
// these interfaces; everything behind them is host-owned and opaque.
package host

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Snapshot is one full delivery of tabular conversation data, column-oriented:
// each entry maps a column identifier to its array of cell values. Arrays for
// unbound optional columns may be missing or shorter than the bound ones.
type Snapshot struct {
	Columns map[string][]any
}

// RowCount returns the length of the named column's array, or 0 if the column
// is absent.
func (s Snapshot) RowCount(col string) int {
	return len(s.Columns[col])
}

// Has reports whether the snapshot carries the named column at all.
func (s Snapshot) Has(col string) bool {
	_, ok := s.Columns[col]
	return ok
}

// StringAt renders the cell at row i of the named column as a string.
// Missing columns, out-of-range rows and nil cells all come back as "".
func (s Snapshot) StringAt(col string, i int) string {
	cells, ok := s.Columns[col]
	if !ok || i < 0 || i >= len(cells) {
		return ""
	}
	switch v := cells[i].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		// Whole-valued floats are almost always ids or epoch stamps; keep
		// them free of a spurious decimal point.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// TimeAt parses the cell at row i of the named column as an instant. Numeric
// cells are epoch milliseconds when large enough to only make sense as such,
// epoch seconds otherwise. The second return is false when the cell is
// absent or unparseable.
func (s Snapshot) TimeAt(col string, i int) (time.Time, bool) {
	cells, ok := s.Columns[col]
	if !ok || i < 0 || i >= len(cells) {
		return time.Time{}, false
	}
	switch v := cells[i].(type) {
	case time.Time:
		return v, true
	case float64:
		return epochTime(int64(v)), true
	case int:
		return epochTime(int64(v)), true
	case int64:
		return epochTime(v), true
	case string:
		return parseTimeString(v)
	default:
		return time.Time{}, false
	}
}

// epoch values at or beyond 1e11 cannot be plausible second counts
// (that would be the year 5138), so treat them as milliseconds.
func epochTime(v int64) time.Time {
	if v >= 1e11 || v <= -1e11 {
		return time.UnixMilli(v)
	}
	return time.Unix(v, 0)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimeString(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return epochTime(n), true
	}
	return time.Time{}, false
}

// Source delivers snapshots. Whether the host pushes or the panel polls is a
// host detail; the panel simply asks for the current snapshot on every
// refresh cycle.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Variable is the single named shared variable used as the outbound channel.
type Variable interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, value string) error
}

// Trigger is an opaque host-defined automation. Invoke blocks until the host
// acknowledges the invocation and may fail.
type Trigger interface {
	Invoke(ctx context.Context) error
}

// Column describes one available source column.
type Column struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// Catalog enumerates the columns of the bound data source. Only the
// configuration surface consumes it.
type Catalog interface {
	Columns(ctx context.Context) ([]Column, error)
}

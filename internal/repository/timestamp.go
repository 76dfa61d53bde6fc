package repository

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// NormalizeTimestamp converts a stored creation time into epoch millis.
// Numbers are taken as millis, strings may be numeric or date-like.
// Anything else, including nil, becomes now.
func NormalizeTimestamp(v any, now time.Time) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case uint64:
		return int64(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return now.UnixMilli()
		}
		return int64(t)
	case float32:
		return int64(t)
	case json.Number:
		return NormalizeTimestamp(string(t), now)
	case time.Time:
		if t.IsZero() {
			return now.UnixMilli()
		}
		return t.UnixMilli()
	case *time.Time:
		if t == nil {
			return now.UnixMilli()
		}
		return NormalizeTimestamp(*t, now)
	case []byte:
		return NormalizeTimestamp(string(t), now)
	case string:
		return parseTimestampString(t, now)
	default:
		return now.UnixMilli()
	}
}

func parseTimestampString(s string, now time.Time) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.UnixMilli()
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int64(f)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UnixMilli()
		}
	}
	return now.UnixMilli()
}

package logs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Record is one parsed JSON log entry.
type Record struct {
	Time      time.Time
	Level     slog.Level
	Message   string
	Component string
	RunID     string
	Fields    map[string]any
}

var reservedKeys = map[string]struct{}{
	"ts": {}, "level": {}, "msg": {}, "component": {}, "run_id": {}, "source": {},
}

// Parse decodes a JSON log line. It reports false for lines that are not
// JSON objects.
func Parse(line string) (Record, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Record{}, false
	}
	rec := Record{Fields: map[string]any{}}
	if ts, ok := raw["ts"].(string); ok {
		rec.Time, _ = time.Parse(time.RFC3339, ts)
	}
	if lvl, ok := raw["level"].(string); ok {
		_ = rec.Level.UnmarshalText([]byte(lvl))
	}
	rec.Message, _ = raw["msg"].(string)
	rec.Component, _ = raw["component"].(string)
	rec.RunID, _ = raw["run_id"].(string)
	for k, v := range raw {
		if _, skip := reservedKeys[k]; !skip {
			rec.Fields[k] = v
		}
	}
	return rec, true
}

// Filter selects records. Zero values match everything.
type Filter struct {
	// RunID matches records whose run ID starts with it.
	RunID     string
	MinLevel  slog.Level
	Component string
}

// Match reports whether rec passes the filter.
func (f Filter) Match(rec Record) bool {
	if rec.Level < f.MinLevel {
		return false
	}
	if f.RunID != "" && !strings.HasPrefix(rec.RunID, f.RunID) {
		return false
	}
	if f.Component != "" && !strings.EqualFold(rec.Component, f.Component) {
		return false
	}
	return true
}

// Format renders rec on one line with its fields sorted by key.
func Format(rec Record) string {
	var b strings.Builder
	if !rec.Time.IsZero() {
		b.WriteString(rec.Time.Local().Format(time.DateTime))
		b.WriteByte(' ')
	}
	b.WriteString(rec.Level.String())
	if rec.Component != "" {
		fmt.Fprintf(&b, " [%s]", rec.Component)
	}
	b.WriteByte(' ')
	b.WriteString(rec.Message)

	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, rec.Fields[k])
	}
	return b.String()
}

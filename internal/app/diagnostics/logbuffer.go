package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Level classifies a captured line. The set mirrors the browser console
// surface the admin UI reports from, so "log" exists alongside "info".
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelLog   Level = "log"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Levels lists every recognized level.
func Levels() []Level {
	return []Level{LevelDebug, LevelInfo, LevelLog, LevelWarn, LevelError}
}

// Valid reports whether l is a member of the closed level set.
func (l Level) Valid() bool {
	switch l {
	case LevelDebug, LevelInfo, LevelLog, LevelWarn, LevelError:
		return true
	}
	return false
}

// Entry is one captured line.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
	Raw     []any
}

// Stats summarizes buffer state for diagnostic display.
type Stats struct {
	Count    int        `json:"count"`
	Capacity int        `json:"capacity"`
	Oldest   *time.Time `json:"oldest_timestamp,omitempty"`
	Newest   *time.Time `json:"newest_timestamp,omitempty"`
}

// DefaultMaxEntries caps the buffer when no explicit capacity is set.
const DefaultMaxEntries = 100

// LogBuffer captures recent log lines for debug endpoints and issue
// reports. It is a bounded FIFO: appending past capacity evicts the
// oldest entry, never errors, never blocks. One instance is shared by
// the whole process and handed to whoever needs a snapshot.
type LogBuffer struct {
	mu         sync.RWMutex
	entries    []Entry
	max        int
	enabled    map[Level]bool
	timestamps bool
	rawArgs    bool
}

// Option mutates buffer configuration. Options not supplied leave the
// current value untouched.
type Option func(*LogBuffer)

// WithMaxEntries sets capacity. Non-positive values are ignored.
func WithMaxEntries(n int) Option {
	return func(b *LogBuffer) {
		if n > 0 {
			b.max = n
		}
	}
}

// WithEnabledLevels replaces the enabled-level set. Unknown levels are
// ignored. An empty call disables capture entirely; that is the literal
// reading of the configuration, not a reset to defaults.
func WithEnabledLevels(levels ...Level) Option {
	return func(b *LogBuffer) {
		set := make(map[Level]bool, len(levels))
		for _, l := range levels {
			if l.Valid() {
				set[l] = true
			}
		}
		b.enabled = set
	}
}

// WithTimestamps toggles the timestamp prefix on formatted lines.
func WithTimestamps(on bool) Option {
	return func(b *LogBuffer) { b.timestamps = on }
}

// WithRawArguments toggles retention of the original argument list.
func WithRawArguments(on bool) Option {
	return func(b *LogBuffer) { b.rawArgs = on }
}

// NewLogBuffer builds a buffer with defaults (capacity 100, all levels,
// timestamps on, raw arguments off) and applies opts.
func NewLogBuffer(opts ...Option) *LogBuffer {
	b := &LogBuffer{
		max:        DefaultMaxEntries,
		enabled:    map[Level]bool{LevelDebug: true, LevelInfo: true, LevelLog: true, LevelWarn: true, LevelError: true},
		timestamps: true,
	}
	b.entries = make([]Entry, 0, b.max)
	b.Configure(opts...)
	return b
}

// Configure applies opts atomically. Shrinking capacity below the
// current length truncates immediately, keeping the most recent entries.
func (b *LogBuffer) Configure(opts ...Option) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if len(b.entries) > b.max {
		trimmed := make([]Entry, b.max)
		copy(trimmed, b.entries[len(b.entries)-b.max:])
		b.entries = trimmed
	}
}

// Capture appends one line. Disabled levels are dropped outright.
// Formatting failures never reach the caller; the entry carries a
// fallback message instead.
func (b *LogBuffer) Capture(level Level, args ...any) {
	msg := renderArgs(args)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.enabled[level] {
		return
	}
	entry := Entry{Time: time.Now().UTC(), Level: level, Message: msg}
	if b.rawArgs {
		entry.Raw = append([]any(nil), args...)
	}
	if len(b.entries) >= b.max {
		b.entries = b.entries[len(b.entries)-b.max+1:]
	}
	b.entries = append(b.entries, entry)
}

// GetAll returns every buffered line formatted, oldest first. The slice
// is a fresh copy.
func (b *LogBuffer) GetAll() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = b.format(e)
	}
	return out
}

// GetByLevel returns only lines whose level is in levels, original
// order preserved.
func (b *LogBuffer) GetByLevel(levels ...Level) []string {
	want := make(map[Level]bool, len(levels))
	for _, l := range levels {
		want[l] = true
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		if want[e.Level] {
			out = append(out, b.format(e))
		}
	}
	return out
}

// GetErrorsOnly is shorthand for GetByLevel(LevelError).
func (b *LogBuffer) GetErrorsOnly() []string {
	return b.GetByLevel(LevelError)
}

// GetRecent returns the last n lines, most recent last.
func (b *LogBuffer) GetRecent(n int) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n <= 0 {
		return []string{}
	}
	if n > len(b.entries) {
		n = len(b.entries)
	}
	out := make([]string, n)
	for i, e := range b.entries[len(b.entries)-n:] {
		out[i] = b.format(e)
	}
	return out
}

// Clear empties the buffer.
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = b.entries[:0]
}

// Stats reports count, capacity and the timestamp bounds.
func (b *LogBuffer) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := Stats{Count: len(b.entries), Capacity: b.max}
	if len(b.entries) > 0 {
		oldest := b.entries[0].Time
		newest := b.entries[len(b.entries)-1].Time
		s.Oldest = &oldest
		s.Newest = &newest
	}
	return s
}

// format renders one entry per the report contract:
// "[<timestamp>] [<LEVEL>] <message>", timestamp omitted when disabled.
// Callers hold at least the read lock.
func (b *LogBuffer) format(e Entry) string {
	tag := "[" + strings.ToUpper(string(e.Level)) + "] "
	if b.timestamps {
		return "[" + e.Time.Format(time.RFC3339) + "] " + tag + e.Message
	}
	return tag + e.Message
}

// renderArgs space-joins the rendered arguments. A panic anywhere in
// rendering becomes the message itself rather than escaping to the
// logging caller.
func renderArgs(args []any) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprintf("<log capture: formatting failed: %v>", r)
		}
	}()
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = renderArg(arg)
	}
	return strings.Join(parts, " ")
}

// renderArg dispatches on a small closed set of strategies: strings pass
// through, errors use their message, everything else is pretty-printed
// as JSON. The fallback must not use %v on the value: cyclic containers
// recurse without bound there.
func renderArg(arg any) string {
	switch v := arg.(type) {
	case string:
		return v
	case error:
		return v.Error()
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("[unserializable %T]", v)
		}
		return string(data)
	}
}

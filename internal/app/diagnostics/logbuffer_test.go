package diagnostics

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var linePattern = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z\] \[(DEBUG|INFO|LOG|WARN|ERROR)\] (.*)$`)

func TestCaptureBoundedByCapacity(t *testing.T) {
	buffer := NewLogBuffer(WithMaxEntries(5))

	for i := 0; i < 12; i++ {
		buffer.Capture(LevelInfo, fmt.Sprintf("line-%d", i))
		want := i + 1
		if want > 5 {
			want = 5
		}
		require.Equal(t, want, buffer.Stats().Count)
	}
}

func TestFIFOEviction(t *testing.T) {
	buffer := NewLogBuffer(WithMaxEntries(3), WithTimestamps(false))

	for i := 0; i < 7; i++ {
		buffer.Capture(LevelInfo, fmt.Sprintf("line-%d", i))
	}

	all := buffer.GetAll()
	require.Equal(t, []string{"[INFO] line-4", "[INFO] line-5", "[INFO] line-6"}, all)
}

func TestLevelFiltering(t *testing.T) {
	buffer := NewLogBuffer(WithTimestamps(false))

	buffer.Capture(LevelInfo, "a")
	buffer.Capture(LevelError, "b")
	buffer.Capture(LevelWarn, "c")
	buffer.Capture(LevelError, "d")

	errorsOnly := buffer.GetByLevel(LevelError)
	require.Equal(t, []string{"[ERROR] b", "[ERROR] d"}, errorsOnly)
	require.Equal(t, errorsOnly, buffer.GetErrorsOnly())
}

func TestConfigureTruncatesToRecent(t *testing.T) {
	buffer := NewLogBuffer(WithTimestamps(false))

	for i := 0; i < 100; i++ {
		buffer.Capture(LevelInfo, fmt.Sprintf("line-%d", i))
	}
	buffer.Configure(WithMaxEntries(10))

	all := buffer.GetAll()
	require.Len(t, all, 10)
	require.Equal(t, "[INFO] line-90", all[0])
	require.Equal(t, "[INFO] line-99", all[9])
}

func TestDefaultScenarioFormatting(t *testing.T) {
	buffer := NewLogBuffer()

	buffer.Capture(LevelInfo, "a")
	buffer.Capture(LevelError, "b")
	buffer.Capture(LevelWarn, "c")

	all := buffer.GetAll()
	require.Len(t, all, 3)
	for i, wantTail := range []string{"[INFO] a", "[ERROR] b", "[WARN] c"} {
		match := linePattern.FindStringSubmatch(all[i])
		require.NotNil(t, match, "line %q must carry a timestamp prefix", all[i])
		require.True(t, strings.HasSuffix(all[i], wantTail))
	}

	errorsOnly := buffer.GetErrorsOnly()
	require.Len(t, errorsOnly, 1)
	require.True(t, strings.HasSuffix(errorsOnly[0], "[ERROR] b"))
	require.Equal(t, 3, buffer.Stats().Count)
}

func TestEnabledLevelsDropDisabledCaptures(t *testing.T) {
	buffer := NewLogBuffer(WithEnabledLevels(LevelError), WithTimestamps(false))

	buffer.Capture(LevelInfo, "x")
	buffer.Capture(LevelError, "y")

	all := buffer.GetAll()
	require.Len(t, all, 1)
	require.Equal(t, "[ERROR] y", all[0])
}

func TestEmptyEnabledLevelsDropsEverything(t *testing.T) {
	buffer := NewLogBuffer(WithEnabledLevels())

	for _, level := range Levels() {
		buffer.Capture(level, "dropped")
	}

	require.Empty(t, buffer.GetAll())
	require.Equal(t, 0, buffer.Stats().Count)
}

func TestUnserializableArgumentFallsBack(t *testing.T) {
	buffer := NewLogBuffer(WithTimestamps(false))

	require.NotPanics(t, func() {
		buffer.Capture(LevelError, "payload:", make(chan int))
	})

	all := buffer.GetAll()
	require.Len(t, all, 1)
	require.Contains(t, all[0], "payload:")
	require.Contains(t, all[0], "unserializable")
}

func TestCyclicArgumentDoesNotPanic(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	buffer := NewLogBuffer(WithTimestamps(false))
	require.NotPanics(t, func() {
		buffer.Capture(LevelWarn, cyclic)
	})

	all := buffer.GetAll()
	require.Len(t, all, 1)
	require.Contains(t, all[0], "unserializable")
}

func TestStructuredArgumentPrettyPrinted(t *testing.T) {
	buffer := NewLogBuffer(WithTimestamps(false))

	buffer.Capture(LevelLog, "ctx", map[string]any{"status": 500})

	all := buffer.GetAll()
	require.Len(t, all, 1)
	require.Equal(t, "[LOG] ctx {\n  \"status\": 500\n}", all[0])
}

func TestErrorArgumentUsesMessage(t *testing.T) {
	buffer := NewLogBuffer(WithTimestamps(false))

	buffer.Capture(LevelError, "request failed:", fmt.Errorf("dial tcp: refused"))

	require.Equal(t, []string{"[ERROR] request failed: dial tcp: refused"}, buffer.GetAll())
}

func TestGetRecent(t *testing.T) {
	buffer := NewLogBuffer(WithTimestamps(false))
	for i := 0; i < 5; i++ {
		buffer.Capture(LevelInfo, fmt.Sprintf("line-%d", i))
	}

	require.Equal(t, []string{"[INFO] line-3", "[INFO] line-4"}, buffer.GetRecent(2))
	require.Len(t, buffer.GetRecent(50), 5)
	require.Empty(t, buffer.GetRecent(0))
}

func TestGetAllReturnsSnapshot(t *testing.T) {
	buffer := NewLogBuffer(WithTimestamps(false))
	buffer.Capture(LevelInfo, "a")

	snapshot := buffer.GetAll()
	snapshot[0] = "mutated"

	require.Equal(t, []string{"[INFO] a"}, buffer.GetAll())
}

func TestClear(t *testing.T) {
	buffer := NewLogBuffer()
	buffer.Capture(LevelInfo, "a")
	buffer.Clear()

	require.Empty(t, buffer.GetAll())
	stats := buffer.Stats()
	require.Equal(t, 0, stats.Count)
	require.Nil(t, stats.Oldest)
	require.Nil(t, stats.Newest)

	buffer.Capture(LevelInfo, "b")
	require.Equal(t, 1, buffer.Stats().Count)
}

func TestStatsBounds(t *testing.T) {
	buffer := NewLogBuffer(WithMaxEntries(10))
	buffer.Capture(LevelInfo, "first")
	buffer.Capture(LevelInfo, "last")

	stats := buffer.Stats()
	require.Equal(t, 2, stats.Count)
	require.Equal(t, 10, stats.Capacity)
	require.NotNil(t, stats.Oldest)
	require.NotNil(t, stats.Newest)
	require.False(t, stats.Newest.Before(*stats.Oldest))
}

func TestRawArgumentRetention(t *testing.T) {
	buffer := NewLogBuffer(WithRawArguments(true))
	buffer.Capture(LevelInfo, "msg", 42)

	buffer.mu.RLock()
	defer buffer.mu.RUnlock()
	require.Len(t, buffer.entries, 1)
	require.Equal(t, []any{"msg", 42}, buffer.entries[0].Raw)
}

func TestUnrecognizedLevelDropped(t *testing.T) {
	buffer := NewLogBuffer()
	buffer.Capture(Level("verbose"), "never stored")

	require.Empty(t, buffer.GetAll())
}

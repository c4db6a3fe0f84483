package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, observed := observer.New(zapcore.DebugLevel)
	return zap.New(core), observed
}

func TestCaptureTeesIntoBuffer(t *testing.T) {
	logger, _ := newObservedLogger()
	buffer := NewLogBuffer(WithTimestamps(false))

	captured, _ := AttachCapture(logger, buffer)
	captured.Info("backend ready")
	captured.Error("backend down")

	all := buffer.GetAll()
	require.Equal(t, []string{"[INFO] backend ready", "[ERROR] backend down"}, all)
}

func TestCaptureDoesNotAlterOriginalSink(t *testing.T) {
	logger, observed := newObservedLogger()
	buffer := NewLogBuffer()

	captured, _ := AttachCapture(logger, buffer)
	captured.Warn("slow response", zap.String("path", "/persons"), zap.Int("status", 200))

	entries := observed.All()
	require.Len(t, entries, 1)
	require.Equal(t, "slow response", entries[0].Message)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Len(t, entries[0].Context, 2)
	require.Equal(t, "path", entries[0].Context[0].Key)
}

func TestCaptureRendersFields(t *testing.T) {
	logger, _ := newObservedLogger()
	buffer := NewLogBuffer(WithTimestamps(false))

	captured, _ := AttachCapture(logger, buffer)
	captured.Info("request", zap.Int("status", 204))

	all := buffer.GetAll()
	require.Len(t, all, 1)
	require.Contains(t, all[0], "[INFO] request")
	require.Contains(t, all[0], "\"status\": 204")
}

func TestWithFieldsPropagate(t *testing.T) {
	logger, observed := newObservedLogger()
	buffer := NewLogBuffer(WithTimestamps(false))

	captured, _ := AttachCapture(logger, buffer)
	child := captured.With(zap.String("request_id", "r-1"))
	child.Info("handled")

	require.Len(t, observed.All(), 1)
	all := buffer.GetAll()
	require.Len(t, all, 1)
	require.Contains(t, all[0], "request_id")
	require.Contains(t, all[0], "r-1")
}

func TestDetachStopsCapture(t *testing.T) {
	logger, observed := newObservedLogger()
	buffer := NewLogBuffer(WithTimestamps(false))

	captured, handle := AttachCapture(logger, buffer)
	captured.Info("before")
	handle.Detach()
	captured.Info("after")

	require.Equal(t, []string{"[INFO] before"}, buffer.GetAll())
	// The real sink keeps receiving everything.
	require.Len(t, observed.All(), 2)
}

func TestDetachIsIdempotent(t *testing.T) {
	logger, _ := newObservedLogger()
	buffer := NewLogBuffer()

	captured, handle := AttachCapture(logger, buffer)
	handle.Detach()
	handle.Detach()
	captured.Info("never captured")

	require.Equal(t, 0, buffer.Stats().Count)
	require.True(t, handle.Detached())
}

func TestLevelMapping(t *testing.T) {
	logger, _ := newObservedLogger()
	buffer := NewLogBuffer(WithTimestamps(false))

	captured, _ := AttachCapture(logger, buffer)
	captured.Debug("d")
	captured.Info("i")
	captured.Warn("w")
	captured.Error("e")

	require.Equal(t, []string{"[DEBUG] d"}, buffer.GetByLevel(LevelDebug))
	require.Equal(t, []string{"[INFO] i"}, buffer.GetByLevel(LevelInfo))
	require.Equal(t, []string{"[WARN] w"}, buffer.GetByLevel(LevelWarn))
	require.Equal(t, []string{"[ERROR] e"}, buffer.GetErrorsOnly())
}

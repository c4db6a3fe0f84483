package diagnostics

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CaptureHandle detaches the capture tee. Detaching is one-way and
// idempotent: the wrapped logger keeps writing to its real sink, the
// buffer just stops growing. Re-attach by calling AttachCapture again.
type CaptureHandle struct {
	detached atomic.Bool
}

// Detach stops capture.
func (h *CaptureHandle) Detach() {
	h.detached.Store(true)
}

// Detached reports whether capture has been turned off.
func (h *CaptureHandle) Detached() bool {
	return h.detached.Load()
}

// AttachCapture wraps logger so every entry it writes is also appended
// to buffer. The wrapped core's own write happens first and is never
// altered; capture is strictly additive.
func AttachCapture(logger *zap.Logger, buffer *LogBuffer) (*zap.Logger, *CaptureHandle) {
	handle := &CaptureHandle{}
	wrapped := logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &captureCore{inner: core, buffer: buffer, handle: handle}
	}))
	return wrapped, handle
}

// captureCore tees entries into the LogBuffer after delegating to the
// real core.
type captureCore struct {
	inner  zapcore.Core
	buffer *LogBuffer
	handle *CaptureHandle
	fields []zapcore.Field
}

func (c *captureCore) Enabled(level zapcore.Level) bool {
	return c.inner.Enabled(level)
}

func (c *captureCore) With(fields []zapcore.Field) zapcore.Core {
	combined := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	combined = append(combined, c.fields...)
	combined = append(combined, fields...)
	return &captureCore{
		inner:  c.inner.With(fields),
		buffer: c.buffer,
		handle: c.handle,
		fields: combined,
	}
}

func (c *captureCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.inner.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *captureCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	// The original sink writes first; a capture failure must never cost
	// the caller its real log line.
	err := c.inner.Write(entry, fields)
	if !c.handle.Detached() {
		c.capture(entry, fields)
	}
	return err
}

func (c *captureCore) Sync() error {
	return c.inner.Sync()
}

func (c *captureCore) capture(entry zapcore.Entry, fields []zapcore.Field) {
	defer func() {
		// Absorb everything. The buffer is diagnostic overhead and may
		// not interrupt the logging path.
		_ = recover()
	}()
	args := []any{entry.Message}
	if len(c.fields) > 0 || len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for i := range c.fields {
			c.fields[i].AddTo(enc)
		}
		for i := range fields {
			fields[i].AddTo(enc)
		}
		args = append(args, enc.Fields)
	}
	c.buffer.Capture(levelFor(entry.Level), args...)
}

// levelFor maps zap levels onto the capture levels. Everything at error
// severity or above lands in the error bucket; LevelLog is reserved for
// lines that come in over HTTP or from the request logger.
func levelFor(level zapcore.Level) Level {
	switch {
	case level <= zapcore.DebugLevel:
		return LevelDebug
	case level == zapcore.InfoLevel:
		return LevelInfo
	case level == zapcore.WarnLevel:
		return LevelWarn
	default:
		return LevelError
	}
}

package retint

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/retint/internal/gpu"
	"github.com/gogpu/retint/internal/software"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for retint and its internal renderers.
// By default, retint produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by retint:
//   - [slog.LevelDebug]: draw scheduling, surface resizes, texture allocation
//   - [slog.LevelInfo]: lifecycle events (renderer ready, adapter selected, export done)
//   - [slog.LevelWarn]: non-fatal issues (CPU fallback, context loss)
//
// Example:
//
//	retint.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	gpu.SetLogger(l)
	software.SetLogger(l)
}

// Logger returns the current logger used by retint.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

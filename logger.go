package diesel2d

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by diesel2d and its sub-packages.
// Nothing is logged by default. Pass nil to restore the silent logger.
//
// Levels:
//   - [slog.LevelDebug]: resource lifecycle (swapchain builds, surface pools)
//   - [slog.LevelInfo]: device selection, renderer construction
//   - [slog.LevelWarn]: recoverable conditions (stale swapchain, bad coordinates)
//   - [slog.LevelError]: validation layer errors
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

package arena

import (
	"io"
	"log/slog"
	"runtime"
)

// Logger is used by arenas started without Config.Logger.
// It discards all output until replaced.
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// OutOfMemoryHandler is invoked when the backing buffer cannot be obtained.
// If it returns, StartUp fails with the error it was given.
type OutOfMemoryHandler func(err error)

// DefaultOutOfMemoryHandler returns a handler that logs the file and line of
// the StartUp call to l and then panics with the error.
func DefaultOutOfMemoryHandler(l *slog.Logger) OutOfMemoryHandler {
	if l == nil {
		l = Logger
	}
	return func(err error) {
		attrs := []any{slog.Any("err", err)}
		// 0: this closure, 1: StartUp, 2: StartUp's caller.
		if _, file, line, ok := runtime.Caller(2); ok {
			attrs = append(attrs, slog.String("file", file), slog.Int("line", line))
		}
		l.Error("could not allocate the requested memory", attrs...)
		panic(err)
	}
}

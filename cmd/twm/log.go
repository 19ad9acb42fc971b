package main

import (
	"context"
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// logging is the process logger. Level decides what is written; the config's
// log_level drives it unless --verbose pinned it to debug.
type logging struct {
	Logger *slog.Logger
	Level  *slog.LevelVar
	Pinned bool
}

func newLogging(w io.Writer, verbose bool) *logging {
	level := new(slog.LevelVar)
	if verbose {
		level.Set(slog.LevelDebug)
	}
	charm := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           charmlog.DebugLevel,
	})
	return &logging{
		Logger: slog.New(&levelHandler{level: level, next: charm}),
		Level:  level,
		Pinned: verbose,
	}
}

// levelHandler filters records by a level that can change at runtime.
type levelHandler struct {
	level slog.Leveler
	next  slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() && h.next.Enabled(ctx, l)
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, next: h.next.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, next: h.next.WithGroup(name)}
}

type ctxKey int

const loggingKey ctxKey = 0

func withLogging(ctx context.Context, l *logging) context.Context {
	return context.WithValue(ctx, loggingKey, l)
}

// loggingFromContext returns the logging attached by the root command, or
// one writing nowhere.
func loggingFromContext(ctx context.Context) *logging {
	if l, ok := ctx.Value(loggingKey).(*logging); ok {
		return l
	}
	return &logging{Logger: slog.New(slog.DiscardHandler), Level: new(slog.LevelVar)}
}

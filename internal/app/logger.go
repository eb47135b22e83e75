package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger returns a configured slog.Logger based on configuration. When
// LOG_FILE is set, records are also written as JSON to a rotating file.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg *Config, stdout io.Writer) *slog.Logger {
	level := slog.LevelInfo
	format := "pretty"
	var file string
	if cfg != nil {
		level = cfg.LogLevel
		format = cfg.LogFormat
		file = cfg.LogFile
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: level, AddSource: true})
	} else {
		handler = tint.NewHandler(stdout, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: time.RFC3339,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Value.Kind() == slog.KindAny {
					if _, ok := a.Value.Any().(error); ok {
						return tint.Attr(9, a)
					}
				}
				return a
			},
		})
	}

	if file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		}
		handler = fanout{
			handler,
			slog.NewJSONHandler(rotating, &slog.HandlerOptions{Level: level}),
		}
	}
	return slog.New(handler)
}

// fanout sends every record to each handler.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, 0, len(f))
	for _, h := range f {
		out = append(out, h.WithAttrs(attrs))
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, 0, len(f))
	for _, h := range f {
		out = append(out, h.WithGroup(name))
	}
	return out
}

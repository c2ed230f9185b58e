package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// SlogAPI implements API on top of log/slog, the default logger is used when Logger is nil.
type SlogAPI struct {
	Logger *slog.Logger
}

func (s SlogAPI) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// attrs turns report params into slog attributes. KV keeps its key, anything else is numbered.
func attrs(params []any) []slog.Attr {
	out := make([]slog.Attr, 0, len(params))
	for i, p := range params {
		switch value := p.(type) {
		case KV:
			out = append(out, slog.Any(value.Key, value.Value))
		case error:
			out = append(out, slog.String("err", value.Error()))
		default:
			out = append(out, slog.Any(fmt.Sprintf("params.%d", i), value))
		}
	}
	return out
}

func (s SlogAPI) report(level slog.Level, msg, id string, params []any) {
	list := attrs(params)
	if id != "" {
		list = append([]slog.Attr{slog.String("id", id)}, list...)
	}
	s.logger().LogAttrs(context.Background(), level, msg, list...)
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	s.report(slog.LevelError, "broken", id, params)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	s.report(slog.LevelWarn, "warning", id, params)
}

func (s SlogAPI) ReportDebug(message string, params ...any) {
	s.report(slog.LevelDebug, message, "", params)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	s.logger().LogAttrs(context.Background(), slog.LevelInfo, "count", slog.String("id", id), slog.Int64("n", count))
}

// InitSlog installs a text logger on stderr as the slog default, debug reports only show up when
// verbose is set.
func InitSlog(verbose bool) {
	var level slog.LevelVar
	if verbose {
		level.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level})))
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	deliverycontext "userhub/internal/delivery/context"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// statementLogger sends GORM's statement traces and messages to slog.
// Statements are logged with placeholders only: user rows carry email
// addresses and password hashes.
type statementLogger struct {
	base  *slog.Logger
	level logger.LogLevel
	slow  time.Duration
}

// newGormSlogLogger logs failed and slow statements; with debug on, every statement.
func newGormSlogLogger(base *slog.Logger, debug bool) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	return &statementLogger{
		base:  base,
		level: level,
		slow:  slowQueryThreshold,
	}
}

func (l *statementLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level

	return &clone
}

func (l *statementLogger) Info(ctx context.Context, msg string, args ...any) {
	l.message(ctx, logger.Info, slog.LevelInfo, msg, args)
}

func (l *statementLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.message(ctx, logger.Warn, slog.LevelWarn, msg, args)
}

func (l *statementLogger) Error(ctx context.Context, msg string, args ...any) {
	l.message(ctx, logger.Error, slog.LevelError, msg, args)
}

func (l *statementLogger) message(ctx context.Context, enabledAt logger.LogLevel, level slog.Level, msg string, args []any) {
	if l.level < enabledAt {
		return
	}

	l.logger(ctx).LogAttrs(ctx, level, "gorm", slog.String("message", fmt.Sprintf(msg, args...)))
}

// Trace logs one statement. A missing user row is an expected outcome of
// lookups, so gorm.ErrRecordNotFound is not reported as a failure.
func (l *statementLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level == logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)

	var (
		level slog.Level
		msg   string
		extra slog.Attr
	)
	switch {
	case failed && l.level >= logger.Error:
		level, msg, extra = slog.LevelError, "Statement failed", slog.String("error", err.Error())
	case l.slow > 0 && elapsed > l.slow && l.level >= logger.Warn:
		level, msg, extra = slog.LevelWarn, "Slow statement", slog.Duration("threshold", l.slow)
	case l.level >= logger.Info:
		level, msg = slog.LevelInfo, "Statement"
	default:
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if extra.Key != "" {
		attrs = append(attrs, extra)
	}

	l.logger(ctx).LogAttrs(ctx, level, msg, attrs...)
}

// ParamsFilter implements gorm.ParamsFilter so traced SQL keeps its placeholders.
func (l *statementLogger) ParamsFilter(_ context.Context, sql string, _ ...any) (string, []any) {
	return sql, nil
}

// logger prefers the request logger, which carries request_id and user_id.
func (l *statementLogger) logger(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, l.base)
}

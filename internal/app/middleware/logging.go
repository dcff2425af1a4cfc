package middleware

import (
	"context"
	"log/slog"
	"time"

	"rentcar/internal/app/commands"
	"rentcar/internal/app/queries"
	"rentcar/internal/domain/booking"
)

// Logging records each message key, its duration and the verdict code of a failure.
func Logging(logger *slog.Logger) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			logResult(ctx, logger, "command", cmd.Key(), start, err)
			return res, err
		})
	}
}

func QueryLogging(logger *slog.Logger) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := next.Ask(ctx, q)
			logResult(ctx, logger, "query", q.Key(), start, err)
			return res, err
		})
	}
}

func logResult(ctx context.Context, logger *slog.Logger, kind, key string, start time.Time, err error) {
	if logger == nil {
		return
	}
	attrs := []any{"kind", kind, "key", key, "duration", time.Since(start)}
	if err == nil {
		logger.DebugContext(ctx, "bus message handled", attrs...)
		return
	}
	code := booking.Code(err)
	attrs = append(attrs, "code", code, "error", err)
	if code == booking.CodeInternal || code == booking.CodeAvailabilityCheckFailed {
		logger.ErrorContext(ctx, "bus message failed", attrs...)
		return
	}
	logger.InfoContext(ctx, "bus message rejected", attrs...)
}

package middleware

import (
	"context"
	"log/slog"

	"rentcar/internal/app/commands"
	"rentcar/internal/app/outbox"
)

// OutboxFlush releases recorded events after every command. Rejections record
// events too, so the flush also runs when the handler fails. Delivery problems
// are logged and never change the command's result.
func OutboxFlush(box outbox.Outbox, logger *slog.Logger) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if flushErr := box.Flush(ctx); flushErr != nil {
				logger.WarnContext(ctx, "outbox flush failed", "command", cmd.Key(), "error", flushErr)
			}
			return res, err
		})
	}
}

// Package logger builds slog loggers for the application.
//
// Production uses a JSON handler; development uses a tint console handler.
// When a Sentry DSN is configured, warnings and errors are also forwarded to
// Sentry (errors become issues). Every logger is wrapped by a decorator that
// runs ContextExtractors on each call, so request-scoped values such as the
// request id are attached without passing them around:
//
//	log := logger.New(cfg.Logger, middlewares.RequestIDExtractor())
//	log.InfoContext(ctx, "key question transferred", slog.Int64("exam_id", id))
package logger

// Package logger builds *slog.Logger values from functional options.
//
// New picks a JSON or text handler, adds static attributes and wraps the
// result in ContextHandler, which copies request-scoped values such as the
// request id from the context of every record:
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "guardd"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "request rejected", logger.Kind("structured_parse"), logger.Reason("depth_exceeded"))
//
// Config carries the LOG_LEVEL, LOG_FORMAT, APP_ENV and SERVICE_NAME
// variables and converts them to options. WithTerminalFormat chooses text
// output for an interactive terminal and JSON otherwise.
//
// Components that accept a logger fall back to Discard, never to
// slog.Default.
package logger

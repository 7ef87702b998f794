// Package middlewares provides HTTP middleware for the postbox service.
//
// # Request ID
//
// RequestID tags each request with an ID taken from X-Request-ID or
// X-Correlation-ID, or generated as a UUID, and echoes it back. Pair it with
// RequestIDExtractor so every log record written with the request context,
// including per-batch dispatch summaries, carries "request_id":
//
//	app := internal.New(
//	    internal.WithCustomLogger(slog.New(logger.NewLogHandlerDecorator(h, middlewares.RequestIDExtractor()))),
//	    internal.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover turns handler panics into *PanicError for the ErrorHandler.
//
// # Timeout
//
// Timeout puts a deadline on the request context. Bulk dispatch observes the
// deadline, reports the items it did not start as canceled and answers with
// the batch report. Timeout returns *TimeoutError only when a handler past its
// deadline wrote nothing.
//
// # Logging
//
// Logging writes one access log record per request.
//
// # Order
//
//	internal.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Logging(middlewares.WithLoggingSkipPaths("/healthcheck")),
//	    middlewares.Timeout(cfg.RequestTimeout),
//	    middlewares.Recover(),
//	)
package middlewares

// Package internal is the small HTTP application framework the service is
// built on.
//
// An App is assembled from options and is immutable afterwards:
//
//	app := internal.New(
//	    internal.WithCustomLogger(log),
//	    internal.WithMiddleware(middlewares.Recover(), middlewares.RequestID()),
//	    internal.WithErrorHandler(handlers.ErrorHandler),
//	    internal.WithHealthChecks(internal.WithReadinessCheck("transport", ping)),
//	    internal.WithHandlers(handlers.NewMail(renderer, engine)),
//	)
//	err := app.Run(":3000", internal.ShutdownTimeout(30*time.Second))
//
// Handlers are HandlerFunc values that receive a Context and return an
// error. Returned errors go to the ErrorHandler, which renders them unless
// the handler already wrote a response. HTTPError carries a status code and
// a client-facing message.
//
// Run listens on the address, runs startup hooks, and on SIGINT, SIGTERM or
// cancellation of the base context shuts the server down gracefully before
// running shutdown hooks.
package internal

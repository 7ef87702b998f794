package internal

// Handler declares routes on a router.
//
// Example:
//
//	type Mail struct {
//	    engine *dispatch.Engine
//	}
//
//	func (h *Mail) Routes(r internal.Router) {
//	    r.POST("/send_single", h.sendSingle)
//	    r.POST("/send_bulk", h.sendBulk)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error hands it to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors returned from handlers.
type ErrorHandler func(Context, error) error

package handlers

import (
	"net/http"

	"github.com/dmitrymomot/postbox/internal"
)

// Health serves the plain "ok" response used by the healthcheck command.
type Health struct{}

// Routes implements internal.Handler.
func (Health) Routes(r internal.Router) {
	r.GET("/healthcheck", func(c internal.Context) error {
		return c.String(http.StatusOK, "ok")
	})
}

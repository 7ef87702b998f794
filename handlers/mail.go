package handlers

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/postbox/internal"
	"github.com/dmitrymomot/postbox/pkg/dispatch"
	"github.com/dmitrymomot/postbox/pkg/mailer"
)

// Mail serves template previews and the send endpoints.
type Mail struct {
	renderer *mailer.Renderer
	engine   *dispatch.Engine
}

// NewMail creates the mail handler.
func NewMail(r *mailer.Renderer, e *dispatch.Engine) *Mail {
	return &Mail{renderer: r, engine: e}
}

// Routes implements internal.Handler.
func (h *Mail) Routes(r internal.Router) {
	r.GET("/available_locales", h.locales)

	r.Route("/templates/{template_id}", func(r internal.Router) {
		r.GET("/html", h.renderHTML)
		r.POST("/html", h.renderHTML)
		r.GET("/text", h.renderText)
		r.POST("/text", h.renderText)
	})

	r.POST("/send_single", h.sendSingle)
	r.POST("/send_bulk", h.sendBulk)
}

func (h *Mail) locales(c internal.Context) error {
	return c.JSON(http.StatusOK, h.renderer.Locales())
}

// renderHTML previews a template. POST bodies are the template parameters.
func (h *Mail) renderHTML(c internal.Context) error {
	params, err := h.params(c)
	if err != nil {
		return err
	}

	out, err := h.renderer.RenderHTML(c.Param("template_id"), params, c.Query("lang"))
	if err != nil {
		return mailError(err)
	}
	return c.HTML(http.StatusOK, out.HTML)
}

func (h *Mail) renderText(c internal.Context) error {
	params, err := h.params(c)
	if err != nil {
		return err
	}

	out, err := h.renderer.Render(c.Param("template_id"), params, c.Query("lang"))
	if err != nil {
		return mailError(err)
	}
	return c.String(http.StatusOK, out.Text)
}

func (h *Mail) params(c internal.Context) ([]byte, error) {
	if c.Request().Method != http.MethodPost {
		return nil, nil
	}
	body, err := c.Body()
	if err != nil {
		return nil, bodyError(err)
	}
	return body, nil
}

func (h *Mail) sendSingle(c internal.Context) error {
	var req mailer.Request
	if err := c.BindJSON(&req); err != nil {
		return bodyError(err)
	}

	res := h.engine.Single(c, req)
	if !res.OK() {
		return internal.NewHTTPError(mailer.StatusCode(res.Kind), res.Message,
			internal.WithErrorCode(string(res.Kind)),
		)
	}
	return c.JSON(http.StatusOK, res)
}

// sendBulk answers 200 with one result per item whenever the batch was
// accepted; per-item failures are reported in the results.
func (h *Mail) sendBulk(c internal.Context) error {
	var reqs []mailer.Request
	if err := c.BindJSON(&reqs); err != nil {
		return bodyError(err)
	}

	results, err := h.engine.Bulk(c, reqs)
	if err != nil {
		if errors.Is(err, dispatch.ErrBatchTooLarge) {
			return internal.ErrBadRequest(err.Error(),
				internal.WithErrorCode(CodeBatchTooLarge),
				internal.WithError(err),
			)
		}
		return err
	}
	return c.JSON(http.StatusOK, results)
}

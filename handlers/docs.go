package handlers

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/postbox/internal"
)

//go:embed openapi.yaml
var openAPISource []byte

const (
	openAPIPath   = "/api-docs/openapi.json"
	swaggerUIPath = "/swagger-ui"
)

const swaggerUIPage = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>postbox API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.ui = SwaggerUIBundle({ url: "` + openAPIPath + `", dom_id: "#swagger-ui" });
  </script>
</body>
</html>
`

// Docs serves the OpenAPI document and a Swagger UI page for it.
// The root path redirects to the UI.
type Docs struct {
	document json.RawMessage
}

// NewDocs converts the embedded OpenAPI document to JSON once.
func NewDocs() (*Docs, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(openAPISource, &doc); err != nil {
		return nil, fmt.Errorf("handlers: parse openapi document: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("handlers: encode openapi document: %w", err)
	}
	return &Docs{document: out}, nil
}

// Routes implements internal.Handler.
func (d *Docs) Routes(r internal.Router) {
	r.GET("/", func(c internal.Context) error {
		http.Redirect(c.Response(), c.Request(), swaggerUIPath, http.StatusTemporaryRedirect)
		return nil
	})
	r.GET(openAPIPath, func(c internal.Context) error {
		return c.JSON(http.StatusOK, d.document)
	})
	r.GET(swaggerUIPath, func(c internal.Context) error {
		return c.HTML(http.StatusOK, swaggerUIPage)
	})
}

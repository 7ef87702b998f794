// Package handlers exposes the mail service over HTTP.
//
// Routes:
//
//	GET       /available_locales
//	GET|POST  /templates/{template_id}/html?lang=
//	GET|POST  /templates/{template_id}/text?lang=
//	POST      /send_single
//	POST      /send_bulk
//	GET       /healthcheck
//	GET       /api-docs/openapi.json
//	GET       /swagger-ui
//	GET       /                        redirects to /swagger-ui
//
// Template previews take their parameters from the POST body. Errors are
// rendered by ErrorHandler as {"error": "...", "code": "<Kind>"} with the
// HTTP status of the error kind. A bulk request that was accepted always
// answers 200; item failures are reported inside the result list.
package handlers

// Package health provides HTTP handlers for liveness and readiness checks.
//
// [LivenessHandler] always answers healthy while the process runs.
// [ReadinessHandler] runs a set of named [Checks] in parallel, each bounded
// by a shared timeout, and answers 503 when any of them fails:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "transport": smtpTransport.Ping,
//	}))
//
// Responses are plain text unless the client asks for JSON with an
// Accept: application/json header or ?format=json:
//
//	unhealthy
//	templates: healthy (41µs)
//	transport: unhealthy (5.001s): dial tcp 10.0.0.7:587: i/o timeout
//
// Both forms carry every check's status, duration and error, and are never
// cached.
package health

package health

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// StatusCode maps the overall status to 200 or 503.
func (r *Response) StatusCode() int {
	if r.Status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// LivenessHandler reports the process as up without running any check.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, &Response{Status: StatusHealthy})
	}
}

// ReadinessHandler runs checks on every request, so a dead SMTP relay
// takes the instance out of rotation until it answers again.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	cfg := newConfig(opts...)

	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, runChecks(r.Context(), checks, cfg))
	}
}

// write renders resp as JSON when asked via ?format=json or the Accept
// header, and as text otherwise: the overall status on the first line,
// then one "name: status (duration)" line per check sorted by name.
func write(w http.ResponseWriter, r *http.Request, resp *Response) {
	w.Header().Set("Cache-Control", "no-store")

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode())
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	var b strings.Builder
	b.WriteString(resp.Status)
	b.WriteByte('\n')

	for _, name := range slices.Sorted(maps.Keys(resp.Checks)) {
		c := resp.Checks[name]
		fmt.Fprintf(&b, "%s: %s (%s)", name, c.Status, c.Duration)
		if c.Error != "" {
			fmt.Fprintf(&b, ": %s", c.Error)
		}
		b.WriteByte('\n')
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(resp.StatusCode())
	_, _ = w.Write([]byte(b.String()))
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

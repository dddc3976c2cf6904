package api

import (
	"net/http"
	"time"
)

// TimeoutMiddleware adds a request timeout to prevent long-running requests.
// http.TimeoutHandler owns the ResponseWriter, so a handler that finishes
// after the deadline cannot write over the timeout response.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, `{"error": "request timed out"}`)
	}
}

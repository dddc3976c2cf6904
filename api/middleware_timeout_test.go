package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeoutMiddleware_PassesThroughFastHandler(t *testing.T) {
	h := TimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestTimeoutMiddleware_SlowHandlerCannotOverwriteTimeoutResponse(t *testing.T) {
	released := make(chan struct{})
	h := TimeoutMiddleware(20*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		// a write landing after the deadline must not reach the client
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("late"))
		close(released)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "timed out")
	assert.NotContains(t, rr.Body.String(), "late")

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("handler never observed the cancelled context")
	}
}

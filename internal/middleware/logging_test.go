package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddlewarePassesResponseThrough(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := New(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, `{"status":"unhealthy"}`, rec.Body.String())
}

func TestLoggingMiddlewareStreamsWithoutBuffering(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	flushed := false
	handler := New(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("chunk"))
		require.NoError(t, err)

		// The write must reach the underlying writer before the handler
		// returns, not after the middleware replays a buffer.
		if rec, ok := w.(*statusWriter).ResponseWriter.(*httptest.ResponseRecorder); ok {
			flushed = rec.Body.Len() > 0
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.True(t, flushed)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chunk", rec.Body.String())
}

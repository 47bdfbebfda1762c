package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestLogger_CapturesStatusAndRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Logger)

	var seen *responseWriter
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		seen, _ = w.(*responseWriter)
		w.WriteHeader(http.StatusCreated)
		w.WriteHeader(http.StatusInternalServerError) // ignored
		_, _ = w.Write([]byte("hello"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if seen == nil {
		t.Fatal("handler did not receive the wrapped writer")
	}
	if seen.status != http.StatusCreated || seen.bytes != 5 {
		t.Errorf("captured status=%d bytes=%d", seen.status, seen.bytes)
	}
}

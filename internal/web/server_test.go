package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRoutes(t *testing.T) {
	s := NewServer(8080, "127.0.0.1", Services{})

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		// Unconfigured services still route; they fail inside the handler.
		{http.MethodGet, "/api/media/list", http.StatusInternalServerError},
		{http.MethodPost, "/api/media/index-all", http.StatusInternalServerError},
		{http.MethodGet, "/api/media/upload", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		if rec.Code != tt.wantStatus {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.wantStatus)
		}
	}
}

func TestHealthCheckBody(t *testing.T) {
	s := NewServer(8080, "127.0.0.1", Services{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}

package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serve(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	fsys, err := FileSystem()
	if err != nil {
		t.Fatalf("FileSystem: %v", err)
	}
	w := httptest.NewRecorder()
	SPAHandler(fsys).ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSPAHandler(t *testing.T) {
	tests := []struct {
		path string
		code int
		want string
	}{
		{"/", http.StatusOK, "<title>BrowserPilot</title>"},
		{"/app.js", http.StatusOK, "/api/browser/status"},
		{"/some/client/route", http.StatusOK, "<title>BrowserPilot</title>"},
		{"/api/missing", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		w := serve(t, tt.path)
		if w.Code != tt.code {
			t.Errorf("GET %s: status %d, want %d", tt.path, w.Code, tt.code)
			continue
		}
		if tt.want != "" && !strings.Contains(w.Body.String(), tt.want) {
			t.Errorf("GET %s: body missing %q", tt.path, tt.want)
		}
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsRequest(t *testing.T, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	h := EnableCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(method, "/fleet/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestEnableCORSReflectsOrigin(t *testing.T) {
	w := corsRequest(t, http.MethodGet, "http://localhost:3000")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q, want request origin", got)
	}
}

func TestEnableCORSRestrictedList(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://dashboard.example.com")

	if w := corsRequest(t, http.MethodGet, "https://dashboard.example.com"); w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("listed origin should be reflected")
	}
	if w := corsRequest(t, http.MethodGet, "https://evil.example.com"); w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unlisted origin should not be reflected")
	}
}

func TestEnableCORSPreflight(t *testing.T) {
	w := corsRequest(t, http.MethodOptions, "http://localhost:3000")
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
}

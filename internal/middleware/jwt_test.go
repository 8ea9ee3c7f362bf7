package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42, "guardian")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != "guardian" {
		t.Errorf("Role = %q, want guardian", claims.Role)
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Fatal("expected error for garbage token")
	}
}

func authedRequest(t *testing.T, handler gin.HandlerFunc, header string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	token, err := GenerateToken(1, "driver")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if w := authedRequest(t, RequireAuth(), ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no header: status = %d, want 401", w.Code)
	}
	if w := authedRequest(t, RequireAuth(), "Bearer junk"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", w.Code)
	}
	if w := authedRequest(t, RequireAuth(), "Bearer "+token); w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
}

func TestRequireAuthWithRole(t *testing.T) {
	driverToken, err := GenerateToken(1, "driver")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if w := authedRequest(t, RequireAuthWithRole("admin"), "Bearer "+driverToken); w.Code != http.StatusForbidden {
		t.Errorf("wrong role: status = %d, want 403", w.Code)
	}
	if w := authedRequest(t, RequireAuthWithRole("driver", "admin"), "Bearer "+driverToken); w.Code != http.StatusOK {
		t.Errorf("matching role: status = %d, want 200", w.Code)
	}
}

func TestRequireAuthWithRoleBlocksHandler(t *testing.T) {
	token, err := GenerateToken(7, "guardian")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlerRan := false
	r.GET("/admin", RequireAuthWithRole("admin"), func(c *gin.Context) {
		handlerRan = true
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if handlerRan {
		t.Error("handler ran for a forbidden role")
	}
}

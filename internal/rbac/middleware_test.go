package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"disposal-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

func doRequest(t *testing.T, role string, allowed ...string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	if role != "" {
		r.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), "user-1", role))
			c.Next()
		})
	}
	r.GET("/guarded", RequireAnyRole(allowed...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequireAnyRole(t *testing.T) {
	if code := doRequest(t, RoleApprover, RoleApprover); code != http.StatusOK {
		t.Fatalf("expected 200 for allowed role, got %d", code)
	}
	if code := doRequest(t, RoleOperator, RoleApprover); code != http.StatusForbidden {
		t.Fatalf("expected 403 for disallowed role, got %d", code)
	}
	if code := doRequest(t, "", RoleApprover); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", code)
	}
}

func TestAdminBypassesChecks(t *testing.T) {
	if code := doRequest(t, RoleAdmin, RoleApprover); code != http.StatusOK {
		t.Fatalf("expected admin bypass, got %d", code)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ayushm3018/Vechicle-Request-System/internal/common/auth"
	"github.com/ayushm3018/Vechicle-Request-System/internal/common/config"
	"github.com/gin-gonic/gin"
)

func newAuthRouter(cfg config.AuthConfig, requiredRole string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/", JWTAuth(cfg, nil))
	if requiredRole != "" {
		grp.Use(RequireRole(requiredRole))
	}
	grp.GET("/ping", func(c *gin.Context) {
		ai, _ := AuthFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": ai.UserID, "role": ai.Role})
	})
	return r
}

func TestJWTAuthMissingToken(t *testing.T) {
	cfg := config.AuthConfig{Enabled: true, JWTSecret: "s"}
	r := newAuthRouter(cfg, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestJWTAuthValidToken(t *testing.T) {
	cfg := config.AuthConfig{Enabled: true, JWTSecret: "s"}
	token, _, err := auth.GenerateAccessToken(cfg, "u-1", "admin", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	r := newAuthRouter(cfg, "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestRequireRoleMismatch(t *testing.T) {
	cfg := config.AuthConfig{Enabled: true, JWTSecret: "s"}
	token, _, err := auth.GenerateAccessToken(cfg, "u-1", "employee", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	r := newAuthRouter(cfg, "admin")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestJWTAuthDisabledInjectsDebugPrincipal(t *testing.T) {
	cfg := config.AuthConfig{Enabled: false}

	// 角色门限的路由在鉴权关闭时也必须可达
	r := newAuthRouter(cfg, "admin")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with default debug principal, got %d body=%s", w.Code, w.Body.String())
	}

	// 调试头可以切换身份与角色
	r = newAuthRouter(cfg, "employee")
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Debug-User", "u-42")
	req.Header.Set("X-Debug-Role", "employee")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with debug headers, got %d", w.Code)
	}

	// 角色不匹配时照常 403
	r = newAuthRouter(cfg, "employee")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for debug admin on employee route, got %d", w.Code)
	}
}

func TestRateLimitExhaustsBucket(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RateLimit(NewTokenBucket(2, 0)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected first two requests allowed, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request limited, got %v", codes)
	}
}

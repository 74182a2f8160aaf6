package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/auth"
	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/gin-gonic/gin"
)

func newAuthRouter(cfg config.AuthConfig, t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/ping", AdminAuth(cfg), func(c *gin.Context) {
		ai, ok := AuthFromGin(c)
		if !ok {
			t.Fatalf("missing auth info in gin context")
		}
		c.JSON(http.StatusOK, gin.H{"subject": ai.Subject})
	})
	return r
}

func TestAdminAuthMiddleware(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "velocitymotors",
		Audience:  "velocitymotors-admin",
	}
	r := newAuthRouter(cfg, t)

	// 无 token 应拒绝
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// admin 角色 token 应放行
	token, _, err := auth.GenerateAccessToken(cfg, "a-1", []string{"admin"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with admin token, got %d body=%s", w.Code, w.Body.String())
	}

	// 非 admin 角色应拒绝
	token2, _, err := auth.GenerateAccessToken(cfg, "u-1", []string{"viewer"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token2)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-admin role, got %d", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	// 容量 2、不补充：第三次请求应被限流
	tb := NewTokenBucket(2, 0)
	r := gin.New()
	r.POST("/login", RateLimit(tb), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after bucket drained, got %d", w.Code)
	}
}

func TestTokenBucketRefill(t *testing.T) {
	tb := NewTokenBucket(1, 1000)
	if !tb.Allow(context.Background()) {
		t.Fatalf("expected first request allowed")
	}
	time.Sleep(5 * time.Millisecond)
	if !tb.Allow(context.Background()) {
		t.Fatalf("expected refilled request allowed")
	}
}

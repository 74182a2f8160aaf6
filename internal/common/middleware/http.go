package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"github.com/VelocityMotors/VelocityMotors/internal/common/auth"
	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/VelocityMotors/VelocityMotors/internal/common/logger"
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// WriteError 统一的错误响应：按 apperr 归类映射状态码，响应体带 error/kind。
func WriteError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{
		"error": err.Error(),
		"kind":  apperr.Kind(err),
	})
}

// Recovery 防止 panic 直接把进程打崩，并记录栈信息。
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if log != nil {
					log.Errorf("panic in http method=%s path=%s err=%v stack=%s",
						c.Request.Method, c.Request.URL.Path, r, string(debug.Stack()))
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal error",
					"kind":  "internal",
				})
			}
		}()
		c.Next()
	}
}

// AccessLog 记录每个 HTTP 请求的耗时/状态。
func AccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		cost := time.Since(start)

		if log == nil {
			return
		}
		fields := map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
			"cost":   cost.String(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.WithFields(fields).Warn("http request failed")
		} else {
			log.WithFields(fields).Info("http request ok")
		}
	}
}

// Tracing 基于 OpenTracing 的最小 HTTP server 中间件：
// - 从请求头提取上游 span context（uber-trace-id 等，取决于注入格式）
// - 创建 server span 并注入 request context，业务侧可用
//   opentracing.StartSpanFromContext 继续挂子 span（如网关调用）
func Tracing(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tracer := opentracing.GlobalTracer()

		var parent opentracing.SpanContext
		if sc, err := tracer.Extract(opentracing.HTTPHeaders,
			opentracing.HTTPHeadersCarrier(c.Request.Header)); err == nil {
			parent = sc
		}

		operation := fmt.Sprintf("%s %s", c.Request.Method, c.FullPath())

		var span opentracing.Span
		if parent != nil {
			span = tracer.StartSpan(operation, ext.RPCServerOption(parent))
		} else {
			span = tracer.StartSpan(operation)
		}
		defer span.Finish()

		ext.SpanKindRPCServer.Set(span)
		ext.HTTPMethod.Set(span, c.Request.Method)
		ext.HTTPUrl.Set(span, c.Request.URL.Path)
		if serviceName != "" {
			span.SetTag("service", serviceName)
		}

		c.Request = c.Request.WithContext(opentracing.ContextWithSpan(c.Request.Context(), span))
		c.Next()

		ext.HTTPStatusCode.Set(span, uint16(c.Writer.Status()))
		if c.Writer.Status() >= http.StatusInternalServerError {
			ext.Error.Set(span, true)
		}
	}
}

const authInfoKey = "auth_info"

// AuthInfo 从管理端 token 中解析出的最小身份信息。
type AuthInfo struct {
	Subject string   // 账号 ID
	Roles   []string // 角色列表
}

// AuthFromGin 取出 AdminAuth 写入的身份信息。
func AuthFromGin(c *gin.Context) (AuthInfo, bool) {
	v, ok := c.Get(authInfoKey)
	if !ok {
		return AuthInfo{}, false
	}
	ai, ok := v.(AuthInfo)
	return ai, ok
}

// AdminAuth 管理端路由鉴权：
// - 读取 `Authorization: Bearer <token>` 并校验 HS256 签名与 exp
// - 要求 roles 包含 admin
// - 解析结果写入 gin context
// cfg.Enabled=false 时放行（本地联调用）。
func AdminAuth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		raw := c.GetHeader("Authorization")
		if strings.TrimSpace(raw) == "" {
			WriteError(c, fmt.Errorf("missing authorization: %w", apperr.ErrAuth))
			return
		}

		claims, err := auth.ParseAccessToken(cfg, auth.BearerToken(raw))
		if err != nil {
			WriteError(c, fmt.Errorf("invalid token: %w", apperr.ErrAuth))
			return
		}

		if !hasRole(claims.Roles, "admin") {
			WriteError(c, fmt.Errorf("admin role required: %w", apperr.ErrAuth))
			return
		}

		c.Set(authInfoKey, AuthInfo{Subject: claims.Subject, Roles: claims.Roles})
		c.Next()
	}
}

// RateLimit 基于 RateLimiter 的限流中间件（用于 /admin/login）。
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow(c.Request.Context()) {
			WriteError(c, apperr.ErrRateLimited)
			return
		}
		c.Next()
	}
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if strings.EqualFold(strings.TrimSpace(r), want) {
			return true
		}
	}
	return false
}

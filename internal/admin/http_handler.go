package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/VelocityMotors/VelocityMotors/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

// HTTPHandler 管理员登录入口。登录接口带令牌桶限流。
type HTTPHandler struct {
	svc     *Service
	limiter *middleware.TokenBucket
}

func NewHTTPHandler(svc *Service, cfg config.AuthConfig) *HTTPHandler {
	rate := cfg.LoginRatePerMin
	if rate <= 0 {
		rate = 10
	}
	// 桶容量取每分钟配额，补充速率向下取整，最低每秒 1 个
	refill := int64(rate / 60)
	if refill < 1 {
		refill = 1
	}
	limiter := middleware.NewTokenBucket(int64(rate), refill)
	return &HTTPHandler{svc: svc, limiter: limiter}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/admin/login", middleware.RateLimit(h.limiter), h.Login)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, fmt.Errorf("invalid json: %w", apperr.ErrValidation))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      res.Token,
		"expires_at": res.ExpiresAt.Format(time.RFC3339),
		"admin": gin.H{
			"id":           res.Account.ID,
			"username":     res.Account.Username,
			"display_name": res.Account.DisplayName,
		},
	})
}

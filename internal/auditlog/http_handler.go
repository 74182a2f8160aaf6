package auditlog

import (
	"net/http"
	"strconv"

	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/VelocityMotors/VelocityMotors/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

// HTTPHandler 审计日志查询入口，仅限管理员。
type HTTPHandler struct {
	repo    *Repo
	authCfg config.AuthConfig
}

func NewHTTPHandler(repo *Repo, authCfg config.AuthConfig) *HTTPHandler {
	return &HTTPHandler{repo: repo, authCfg: authCfg}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/admin/logs", middleware.AdminAuth(h.authCfg), h.ListLogs)
}

func (h *HTTPHandler) ListLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

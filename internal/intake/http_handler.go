package intake

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/VelocityMotors/VelocityMotors/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

// HTTPHandler 留资/咨询的 REST 入口。
type HTTPHandler struct {
	svc     *Service
	authCfg config.AuthConfig
	limiter *middleware.SlidingWindow
}

func NewHTTPHandler(svc *Service, authCfg config.AuthConfig) *HTTPHandler {
	// 公开表单接口做窗口限流，挡住脚本灌水
	return &HTTPHandler{
		svc:     svc,
		authCfg: authCfg,
		limiter: middleware.NewSlidingWindow(time.Minute, 60),
	}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/contact", middleware.RateLimit(h.limiter), h.SubmitContact)
	r.POST("/inquiries", middleware.RateLimit(h.limiter), h.SubmitInquiry)

	admin := r.Group("/", middleware.AdminAuth(h.authCfg))
	admin.GET("/contacts", h.ListContacts)
	admin.GET("/inquiries", h.ListInquiries)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (h *HTTPHandler) SubmitContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, fmt.Errorf("invalid json: %w", apperr.ErrValidation))
		return
	}

	contact, err := h.svc.SubmitContact(c.Request.Context(), ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "contact_id": contact.ID})
}

type inquiryRequest struct {
	CarID       string `json:"car_id"`
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Message     string `json:"message"`
	PreferredAt string `json:"preferred_at"` // RFC3339，试驾预约必填
}

func (h *HTTPHandler) SubmitInquiry(c *gin.Context) {
	var req inquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, fmt.Errorf("invalid json: %w", apperr.ErrValidation))
		return
	}

	in := InquiryInput{
		CarID:   req.CarID,
		Kind:    InquiryKind(req.Kind),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}
	if req.PreferredAt != "" {
		t, err := time.Parse(time.RFC3339, req.PreferredAt)
		if err != nil {
			middleware.WriteError(c, fmt.Errorf("invalid preferred_at: %w", apperr.ErrValidation))
			return
		}
		in.PreferredAt = &t
	}

	q, err := h.svc.SubmitInquiry(c.Request.Context(), in)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "inquiry_id": q.ID})
}

func (h *HTTPHandler) ListContacts(c *gin.Context) {
	offset, limit := pagination(c)
	contacts, _, err := h.svc.ListContacts(c.Request.Context(), offset, limit)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

func (h *HTTPHandler) ListInquiries(c *gin.Context) {
	offset, limit := pagination(c)
	inquiries, _, err := h.svc.ListInquiries(c.Request.Context(), InquiryKind(c.Query("kind")), offset, limit)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, inquiries)
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.Query("offset"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	return offset, limit
}

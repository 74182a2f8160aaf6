package payment

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/VelocityMotors/VelocityMotors/internal/common/middleware"
	"github.com/VelocityMotors/VelocityMotors/internal/common/money"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// HTTPHandler 支付接口。POST /payments 对外开放，列表仅限管理员。
type HTTPHandler struct {
	processor *Processor
	repo      *Repo
	authCfg   config.AuthConfig
}

func NewHTTPHandler(processor *Processor, repo *Repo, authCfg config.AuthConfig) *HTTPHandler {
	return &HTTPHandler{processor: processor, repo: repo, authCfg: authCfg}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/payments", h.CreatePayment)
	r.GET("/payments", middleware.AdminAuth(h.authCfg), h.ListPayments)
}

// createPaymentRequest 对外支付请求体。transaction_id 与 payment_status
// 允许客户端携带（兼容旧客户端），但服务端不采信：交易号以网关
// 返回为准，状态由处理器决定。
type createPaymentRequest struct {
	OrderID       string          `json:"order_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	CarID         string          `json:"car_id"`
	CarName       string          `json:"car_name"`
	CarBrand      string          `json:"car_brand"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id"`
	PaymentStatus string          `json:"payment_status"`
}

type paymentView struct {
	Payment
	Amount decimal.Decimal `json:"amount"`
}

func toView(p *Payment) paymentView {
	return paymentView{Payment: *p, Amount: money.DecimalFromCents(p.AmountCents)}
}

func (h *HTTPHandler) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, fmt.Errorf("invalid json: %w", apperr.ErrValidation))
		return
	}

	cents, err := money.CentsFromDecimal(req.Amount)
	if err != nil {
		middleware.WriteError(c, fmt.Errorf("%v: %w", err, apperr.ErrValidation))
		return
	}

	p, err := h.processor.Process(c.Request.Context(), ProcessInput{
		OrderID:       req.OrderID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		CarName:       req.CarName,
		CarBrand:      req.CarBrand,
		Method:        req.PaymentMethod,
		AmountCents:   cents,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"payment_id":     p.ID,
		"transaction_id": p.TransactionID,
		"status":         p.Status,
	})
}

func (h *HTTPHandler) ListPayments(c *gin.Context) {
	offset, _ := strconv.Atoi(c.Query("offset"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	payments, _, err := h.repo.List(c.Request.Context(), offset, limit)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	views := make([]paymentView, 0, len(payments))
	for i := range payments {
		views = append(views, toView(&payments[i]))
	}
	c.JSON(http.StatusOK, views)
}

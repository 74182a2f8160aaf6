package order

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/VelocityMotors/VelocityMotors/internal/common/middleware"
	"github.com/VelocityMotors/VelocityMotors/internal/common/money"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// HTTPHandler 订单台账的 REST 入口。
type HTTPHandler struct {
	svc     *Service
	authCfg config.AuthConfig
}

func NewHTTPHandler(svc *Service, authCfg config.AuthConfig) *HTTPHandler {
	return &HTTPHandler{svc: svc, authCfg: authCfg}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/:id", h.GetOrder)
	r.POST("/orders/:id/cancel", h.CancelOrder)

	r.GET("/orders", middleware.AdminAuth(h.authCfg), h.ListOrders)
}

type createOrderRequest struct {
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	CarID         string          `json:"car_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// orderView 对外订单视图：金额以十进制输出。
type orderView struct {
	ID            string          `json:"id"`
	CarID         string          `json:"car_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
}

func toView(o *Order) orderView {
	return orderView{
		ID:            o.ID,
		CarID:         o.CarID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		TotalAmount:   money.DecimalFromCents(o.TotalAmountCents),
		Currency:      o.Currency,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		PaidAt:        o.PaidAt,
		CancelledAt:   o.CancelledAt,
	}
}

func (h *HTTPHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, fmt.Errorf("invalid json: %w", apperr.ErrValidation))
		return
	}

	cents, err := money.CentsFromDecimal(req.TotalAmount)
	if err != nil {
		middleware.WriteError(c, fmt.Errorf("%v: %w", err, apperr.ErrValidation))
		return
	}

	o, err := h.svc.CreateOrder(c.Request.Context(), CreateOrderInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		CarID:         req.CarID,
		AmountCents:   cents,
	})
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order_id": o.ID})
}

func (h *HTTPHandler) GetOrder(c *gin.Context) {
	o, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toView(o))
}

func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	o, err := h.svc.CancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order_id": o.ID, "status": o.Status})
}

func (h *HTTPHandler) ListOrders(c *gin.Context) {
	offset, _ := strconv.Atoi(c.Query("offset"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	orders, _, err := h.svc.ListOrders(c.Request.Context(), Status(c.Query("status")), offset, limit)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, toView(&orders[i]))
	}
	c.JSON(http.StatusOK, views)
}

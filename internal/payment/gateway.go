package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/opentracing/opentracing-go"
)

// ChargeRequest 发给支付网关的扣款请求。金额单位：分。
type ChargeRequest struct {
	IdempotencyKey string
	AmountCents    int64
	Currency       string
	Method         string
	Description    string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
}

// ChargeResult 网关返回的扣款结果。
type ChargeResult struct {
	TransactionID string
}

// Gateway 支付网关抽象。实现必须保证同一 IdempotencyKey
// 重复扣款返回同一 TransactionID。
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// HTTPGateway 对接外部 JSON 支付网关。
// 请求体携带商户密钥与测试模式标记，响应体为
// {"transaction_id": "..."} 或 {"error": {"code","message"}}。
type HTTPGateway struct {
	cfg    config.GatewayConfig
	client *http.Client
}

func NewHTTPGateway(cfg config.GatewayConfig) *HTTPGateway {
	return &HTTPGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
	}
}

type gatewayResponse struct {
	TransactionID string `json:"transaction_id"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *HTTPGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "gateway.charge")
	defer span.Finish()

	testMode := 0
	if g.cfg.TestMode {
		testMode = 1
	}
	payload := map[string]any{
		"method":          "charge",
		"authkey":         g.cfg.SecretKey,
		"idempotency_key": req.IdempotencyKey,
		"test":            testMode,
		"order": map[string]any{
			"amount":      fmt.Sprintf("%d.%02d", req.AmountCents/100, req.AmountCents%100),
			"currency":    req.Currency,
			"description": req.Description,
		},
		"customer": map[string]any{
			"name":  req.CustomerName,
			"email": req.CustomerEmail,
			"phone": req.CustomerPhone,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway call: %w: %v", apperr.ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w: %v", apperr.ErrGateway, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("gateway status %d: %w", resp.StatusCode, apperr.ErrGateway)
	}

	var out gatewayResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w: %v", apperr.ErrGateway, err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("gateway declined [%s]: %s: %w", out.Error.Code, out.Error.Message, apperr.ErrGateway)
	}
	if out.TransactionID == "" {
		return nil, fmt.Errorf("gateway response missing transaction id: %w", apperr.ErrGateway)
	}
	return &ChargeResult{TransactionID: out.TransactionID}, nil
}

// SimGateway 本地模拟网关：固定延迟后按幂等键生成确定性的交易号。
// FailNext 用于测试注入瞬时故障。
type SimGateway struct {
	Delay    time.Duration
	FailNext func() error // 每次调用前询问，返回非 nil 则本次失败
}

func NewSimGateway(cfg config.GatewayConfig) *SimGateway {
	return &SimGateway{Delay: time.Duration(cfg.SimDelayMS) * time.Millisecond}
}

func (g *SimGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if g.FailNext != nil {
		if err := g.FailNext(); err != nil {
			return nil, err
		}
	}
	if g.Delay > 0 {
		select {
		case <-time.After(g.Delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("gateway call: %w: %v", apperr.ErrGateway, ctx.Err())
		}
	}
	return &ChargeResult{TransactionID: "SIM-" + req.IdempotencyKey}, nil
}

// NewGateway 按配置选择网关实现。
func NewGateway(cfg config.GatewayConfig) Gateway {
	if cfg.Mode == "http" && cfg.BaseURL != "" {
		return NewHTTPGateway(cfg)
	}
	return NewSimGateway(cfg)
}

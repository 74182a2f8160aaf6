package apperr

import (
	"errors"
	"net/http"
)

// 业务错误哨兵值。各领域包用 fmt.Errorf("...: %w", ErrXxx) 包装后向上传递，
// 传输层统一用 errors.Is 归类并映射 HTTP 状态码。
var (
	ErrValidation           = errors.New("validation failed")            // 入参不合法
	ErrNotFound             = errors.New("resource not found")           // 资源不存在
	ErrAuth                 = errors.New("authentication failed")        // 管理端鉴权失败
	ErrGateway              = errors.New("payment gateway unavailable")  // 网关网络/超时，可重试
	ErrDuplicateTransaction = errors.New("duplicate transaction id")     // 交易号冲突（幂等）
	ErrInvalidState         = errors.New("invalid state transition")     // 状态机不允许的流转
	ErrAmountMismatch       = errors.New("amount mismatch")              // 金额与订单不一致，不可重试
	ErrRateLimited          = errors.New("too many requests")            // 触发限流
	ErrStorage              = errors.New("storage failure")              // 持久化异常
)

// Kind 返回错误的归类标签（写入响应体，便于前端/运维识别）。
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrGateway):
		return "gateway"
	case errors.Is(err, ErrDuplicateTransaction):
		return "duplicate_transaction"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrAmountMismatch):
		return "amount_mismatch"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrStorage):
		return "storage"
	default:
		return "internal"
	}
}

// HTTPStatus 返回错误对应的 HTTP 状态码。
// 约定见接口文档：400 校验 / 401 鉴权 / 404 缺失 / 409 冲突 / 429 限流 / 502 网关 / 500 其它。
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrAmountMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateTransaction), errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

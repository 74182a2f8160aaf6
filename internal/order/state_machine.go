package order

import (
	"fmt"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
)

// AllowTransition 定义订单状态机的允许流转关系。
// pending 之后的三个目标全部是终态：一笔订单至多发生一次终态流转，
// 终态之间、终态回退均不允许。
var AllowTransition = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusFailed, StatusCancelled},
	StatusPaid:      {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition 对订单应用状态变更，并维护关键时间字段。
// 同态流转是 no-op（对账重放依赖这一点保持幂等）。
func ApplyTransition(o *Order, to Status, now time.Time) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}
	from := o.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("order status %s -> %s: %w", from, to, apperr.ErrInvalidState)
	}
	if from == to {
		return nil
	}

	o.Status = to

	switch to {
	case StatusPaid:
		if o.PaidAt == nil {
			t := now
			o.PaidAt = &t
		}
	case StatusFailed:
		if o.FailedAt == nil {
			t := now
			o.FailedAt = &t
		}
	case StatusCancelled:
		if o.CancelledAt == nil {
			t := now
			o.CancelledAt = &t
		}
	}
	return nil
}

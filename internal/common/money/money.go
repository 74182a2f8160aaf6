package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// 金额在存储与比较时统一用整数分（int64），杜绝浮点舍入；
// 对外 JSON 里的金额是十进制数（75000 / 75000.50），用 decimal 做无损换算。

var hundred = decimal.NewFromInt(100)

// CentsFromDecimal 十进制金额转为分。超过两位小数视为非法入参。
func CentsFromDecimal(d decimal.Decimal) (int64, error) {
	scaled := d.Mul(hundred)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than two decimal places", d.String())
	}
	return scaled.IntPart(), nil
}

// DecimalFromCents 分转为十进制金额（用于响应体）。
func DecimalFromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}

// ParseCents 解析十进制金额字符串为分。
func ParseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return CentsFromDecimal(d)
}

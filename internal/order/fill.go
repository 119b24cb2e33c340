package order

import (
	"time"

	"execsim/internal/market"
)

// Fill 表示一笔子单成交回报。
type Fill struct {
	OrderID     string
	Timestamp   time.Time
	Price       float64
	Quantity    int
	Side        market.Side
	IsPartial   bool
	RequestedQt int
}

// RemainingQuantity 返回该笔请求尚未成交的数量。
func (f Fill) RemainingQuantity() int {
	return f.RequestedQt - f.Quantity
}

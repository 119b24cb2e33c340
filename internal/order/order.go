package order

import (
	"fmt"
	"time"

	"execsim/internal/market"
)

// Order 表示一张母单: 在时间窗口内需要完成的总量。
type Order struct {
	ID        string
	Symbol    string
	Quantity  int
	Side      market.Side
	StartTime time.Time
	EndTime   time.Time
}

// Duration 返回执行窗口长度。
func (o Order) Duration() time.Duration {
	return o.EndTime.Sub(o.StartTime)
}

// Template 以相对时长描述母单, 与具体执行时刻解耦。
type Template struct {
	Symbol   string
	Quantity int
	Side     market.Side
	Duration time.Duration
}

// NewTemplate 校验并创建母单模板。
func NewTemplate(symbol string, quantity int, side market.Side, duration time.Duration) (Template, error) {
	if symbol == "" {
		return Template{}, fmt.Errorf("order: symbol 不能为空")
	}
	if quantity <= 0 {
		return Template{}, fmt.Errorf("order: quantity 必须大于0, 实际 %d", quantity)
	}
	if side != market.Buy && side != market.Sell {
		return Template{}, fmt.Errorf("order: 无效的方向 %q", side)
	}
	if duration <= 0 {
		return Template{}, fmt.Errorf("order: duration 必须大于0, 实际 %s", duration)
	}
	return Template{Symbol: symbol, Quantity: quantity, Side: side, Duration: duration}, nil
}

// Materialize 在给定起始时刻落地为具体母单。
func (t Template) Materialize(orderID string, start time.Time) Order {
	return Order{
		ID:        orderID,
		Symbol:    t.Symbol,
		Quantity:  t.Quantity,
		Side:      t.Side,
		StartTime: start,
		EndTime:   start.Add(t.Duration),
	}
}

func (t Template) String() string {
	return fmt.Sprintf("Template{%s %s %d over %s}", t.Side, t.Symbol, t.Quantity, t.Duration)
}

package order

import "fmt"

// DecisionType 标识策略在一个 tick 上的动作类型。
type DecisionType int

const (
	NoActionDecision DecisionType = iota
	MarketDecision
	LimitDecision
)

func (t DecisionType) String() string {
	switch t {
	case MarketDecision:
		return "MARKET"
	case LimitDecision:
		return "LIMIT"
	default:
		return "NO_ACTION"
	}
}

// Decision 是策略对单个 tick 的下单决定。
// 仅能通过构造函数创建, 保证数量与限价为正。
type Decision struct {
	Type       DecisionType
	OrderID    string
	Quantity   int
	LimitPrice float64
}

// NoAction 表示本 tick 不下单。
func NoAction() Decision {
	return Decision{Type: NoActionDecision}
}

// NewMarketDecision 创建市价单决定。
func NewMarketDecision(orderID string, quantity int) (Decision, error) {
	if quantity <= 0 {
		return Decision{}, fmt.Errorf("order: 下单数量必须大于0, 实际 %d", quantity)
	}
	return Decision{Type: MarketDecision, OrderID: orderID, Quantity: quantity}, nil
}

// NewLimitDecision 创建限价单决定。
func NewLimitDecision(orderID string, quantity int, limitPrice float64) (Decision, error) {
	if quantity <= 0 {
		return Decision{}, fmt.Errorf("order: 下单数量必须大于0, 实际 %d", quantity)
	}
	if limitPrice <= 0 {
		return Decision{}, fmt.Errorf("order: 限价必须大于0, 实际 %f", limitPrice)
	}
	return Decision{Type: LimitDecision, OrderID: orderID, Quantity: quantity, LimitPrice: limitPrice}, nil
}

// IsNoAction 报告该决定是否为空动作。
func (d Decision) IsNoAction() bool {
	return d.Type == NoActionDecision
}

func (d Decision) String() string {
	if d.IsNoAction() {
		return "Decision{NO_ACTION}"
	}
	if d.Type == LimitDecision {
		return fmt.Sprintf("Decision{%s %s qty=%d px=%.4f}", d.Type, d.OrderID, d.Quantity, d.LimitPrice)
	}
	return fmt.Sprintf("Decision{%s %s qty=%d}", d.Type, d.OrderID, d.Quantity)
}

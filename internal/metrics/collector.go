package metrics

import (
	"fmt"
	"time"

	"execsim/internal/market"
	"execsim/internal/order"
)

// Collector 以事件溯源方式收集执行过程, 结束后计算 ExecutionMetrics。
// 实现 sim.EventListener, 注册到模拟器即可。
type Collector struct {
	parent     *order.Order
	arrival    float64
	arrivalMid float64

	decisions []decisionContext

	marketVWAP        float64
	marketMidVWAP     float64
	totalMarketValue  float64
	totalMarketVolume float64
	totalMidValue     float64
	totalMidTime      int64
	lastMid           float64
	lastTickTime      time.Time

	fills []fillContext
}

type decisionContext struct {
	orderID     string
	marketMid   float64
	quantity    float64
	isAmendment bool
}

type fillContext struct {
	fill      order.Fill
	marketMid float64
}

// NewCollector 创建空的指标收集器。
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) OnExecutionStart(parent order.Order, state market.State) {
	c.parent = &parent
	c.arrivalMid = state.Mid
	c.arrival = parent.Side.TouchPrice(state.Bid(), state.Ask())
	c.lastMid = c.arrivalMid
	c.lastTickTime = state.Time()
}

func (c *Collector) OnTick(state market.State) {
	volume := state.Volume()
	tradePrice := state.TradePrice()

	if volume > 0 && tradePrice > 0 {
		c.totalMarketValue += tradePrice * volume
		c.totalMarketVolume += volume
		c.marketVWAP = c.totalMarketValue / c.totalMarketVolume
	}

	if !c.lastTickTime.IsZero() {
		delta := state.Time().Sub(c.lastTickTime).Milliseconds()
		c.totalMidValue += c.lastMid * float64(delta)
		c.totalMidTime += delta
		if c.totalMidTime > 0 {
			c.marketMidVWAP = c.totalMidValue / float64(c.totalMidTime)
		}
	}

	c.lastMid = state.Mid
	c.lastTickTime = state.Time()
}

func (c *Collector) OnDecision(decision order.Decision, state market.State) {
	isAmendment := false
	for _, d := range c.decisions {
		if d.orderID == decision.OrderID {
			isAmendment = true
			break
		}
	}

	c.decisions = append(c.decisions, decisionContext{
		orderID:     decision.OrderID,
		marketMid:   state.Mid,
		quantity:    float64(decision.Quantity),
		isAmendment: isAmendment,
	})
}

func (c *Collector) OnFill(fill order.Fill, state market.State) {
	c.fills = append(c.fills, fillContext{fill: fill, marketMid: state.Mid})
}

func (c *Collector) OnExecutionComplete([]order.Fill, market.State) {}

// Calculate 在执行结束后计算全部指标。未收集到任何执行数据时报错。
func (c *Collector) Calculate() (ExecutionMetrics, error) {
	if c.parent == nil {
		return ExecutionMetrics{}, fmt.Errorf("metrics: 未收集到执行数据")
	}

	executionVWAP := c.executionVWAP()
	totalFilled := c.totalFilled()
	side := c.parent.Side

	arrivalSlippage := slippageBps(executionVWAP, c.arrival, side)

	return ExecutionMetrics{
		ArrivalPriceSlippage:    arrivalSlippage,
		DecisionPriceSlippage:   c.decisionSlippage(side),
		VWAPSlippage:            slippageBps(executionVWAP, c.marketVWAP, side),
		MidPriceSlippage:        slippageBps(executionVWAP, c.marketMidVWAP, side),
		ImplementationShortfall: arrivalSlippage,
		FillRatio:               totalFilled / float64(c.parent.Quantity),
		FillEfficiency:          c.fillEfficiency(),
		ImmediateExecutionRatio: c.immediateExecutionRatio(),
		AvgAmendmentsPerOrder:   c.avgAmendmentsPerOrder(),
		ArrivalPrice:            c.arrival,
		ExecutionVWAP:           executionVWAP,
		MarketVWAP:              c.marketVWAP,
		MarketMidVWAP:           c.marketMidVWAP,
	}, nil
}

func (c *Collector) executionVWAP() float64 {
	var totalValue, totalVolume float64
	for _, fc := range c.fills {
		totalValue += fc.fill.Price * float64(fc.fill.Quantity)
		totalVolume += float64(fc.fill.Quantity)
	}
	if totalVolume <= 0 {
		return 0
	}
	return totalValue / totalVolume
}

func (c *Collector) totalFilled() float64 {
	var total float64
	for _, fc := range c.fills {
		total += float64(fc.fill.Quantity)
	}
	return total
}

// slippageBps 计算执行价相对参考价的滑点(基点), SELL 方向取反。
// 参考价为 0 时返回 0。
func slippageBps(executionPrice, referencePrice float64, side market.Side) float64 {
	if referencePrice == 0 {
		return 0
	}
	diff := executionPrice - referencePrice
	if side == market.Sell {
		diff = -diff
	}
	return diff / referencePrice * 10000
}

// decisionSlippage 对每个非补单的决定, 用其成交 VWAP 与决定时刻中间价计算
// 滑点, 再对有成交的决定取平均。
func (c *Collector) decisionSlippage(side market.Side) float64 {
	if len(c.decisions) == 0 {
		return 0
	}

	var total float64
	count := 0

	for _, dc := range c.decisions {
		if dc.isAmendment {
			continue
		}

		var totalValue, totalQty float64
		for _, fc := range c.fills {
			if fc.fill.OrderID == dc.orderID {
				totalValue += fc.fill.Price * float64(fc.fill.Quantity)
				totalQty += float64(fc.fill.Quantity)
			}
		}

		if totalQty > 0 {
			fillVWAP := totalValue / totalQty
			total += slippageBps(fillVWAP, dc.marketMid, side)
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// fillEfficiency 为总成交量与总申报量之比, 补单会放大分母。
func (c *Collector) fillEfficiency() float64 {
	if len(c.decisions) == 0 {
		return 1.0
	}

	var totalRequested float64
	for _, d := range c.decisions {
		totalRequested += d.quantity
	}
	if totalRequested <= 0 {
		return 1.0
	}
	return c.totalFilled() / totalRequested
}

// immediateExecutionRatio 统计恰好一笔且非部分成交的子单占比。
func (c *Collector) immediateExecutionRatio() float64 {
	if len(c.fills) == 0 {
		return 1.0
	}

	fillsByOrder := make(map[string][]order.Fill)
	for _, fc := range c.fills {
		fillsByOrder[fc.fill.OrderID] = append(fillsByOrder[fc.fill.OrderID], fc.fill)
	}

	immediate := 0
	for _, fills := range fillsByOrder {
		if len(fills) == 1 && !fills[0].IsPartial {
			immediate++
		}
	}

	return float64(immediate) / float64(len(fillsByOrder))
}

// avgAmendmentsPerOrder 为决定总数与不同子单号数之比, 1.0 表示没有补单。
func (c *Collector) avgAmendmentsPerOrder() float64 {
	if len(c.decisions) == 0 {
		return 1.0
	}

	unique := make(map[string]struct{})
	for _, d := range c.decisions {
		unique[d.orderID] = struct{}{}
	}

	denom := len(unique)
	if denom < 1 {
		denom = 1
	}
	return float64(len(c.decisions)) / float64(denom)
}

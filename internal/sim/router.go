package sim

import (
	"math"

	"go.uber.org/zap"

	"execsim/internal/market"
	"execsim/internal/order"
)

// 各档位可用量占 tick 成交量的比例, 逐档累计。
const (
	tier1AtTradePrice     = 0.40
	tier2MildlyAggressive = 0.50
	tier3AtTouch          = 0.60
)

// priceLevel 表示一个可消耗的价格档位。
type priceLevel struct {
	volume float64
	price  float64
}

// fillResult 表示一次撮合的结果, nil 表示未成交。
type fillResult struct {
	price     float64
	quantity  int
	isPartial bool
}

// routeOrder 按订单类型与限价的激进程度路由撮合。
// 市价单按 touch 档(第三档)撮合; 限价单依据限价相对成交价/最优价的位置分档。
func (s *Simulator) routeOrder(decision order.Decision, ctx Context, side market.Side) *fillResult {
	if decision.Type == order.MarketDecision {
		return s.executeTiered(decision, ctx, side, 3)
	}

	limitPrice := decision.LimitPrice
	tp := ctx.TradePrice
	touch := side.TouchPrice(ctx.Bid, ctx.Ask)

	// 完全无竞争力的限价不成交
	if (side == market.Buy && limitPrice < ctx.Bid) || (side == market.Sell && limitPrice > ctx.Ask) {
		s.logger.Debug("限价无竞争力, 不成交",
			zap.Float64("limit", limitPrice),
			zap.Float64("bid", ctx.Bid),
			zap.Float64("ask", ctx.Ask))
		return nil
	}

	if side.IsPassiveLimit(limitPrice, ctx.Bid, ctx.Ask) && !isAtPrice(limitPrice, tp) {
		return s.executePassiveLimit(decision, ctx, side)
	}

	switch {
	case isAtPrice(limitPrice, tp):
		return s.executeTiered(decision, ctx, side, 1)
	case isBetween(limitPrice, tp, touch, side):
		return s.executeTiered(decision, ctx, side, 2)
	case isAtPrice(limitPrice, touch):
		return s.executeTiered(decision, ctx, side, 3)
	default:
		return s.executeTiered(decision, ctx, side, 4)
	}
}

func isAtPrice(price1, price2 float64) bool {
	return math.Abs(price1-price2) < 1e-5
}

// isBetween 判断限价是否严格位于成交价与最优价之间。
func isBetween(limitPrice, tp, touch float64, side market.Side) bool {
	if side == market.Buy {
		return limitPrice > tp && limitPrice < touch
	}
	return limitPrice < tp && limitPrice > touch
}

// executePassiveLimit 撮合被动限价单: 仅当成交价穿越限价时按限价成交, 无概率成分。
func (s *Simulator) executePassiveLimit(decision order.Decision, ctx Context, side market.Side) *fillResult {
	limitPrice := decision.LimitPrice

	if !side.IsPassiveLimit(limitPrice, ctx.Bid, ctx.Ask) {
		return nil
	}

	if side.MatchesTradePrice(limitPrice, ctx.TradePrice) {
		qty := int(math.Min(float64(decision.Quantity), math.Floor(ctx.BaseVolume)))
		s.logger.Debug("被动限价被成交价穿越, 按限价成交",
			zap.Float64("limit", limitPrice),
			zap.Int("quantity", qty))
		return &fillResult{price: limitPrice, quantity: qty, isPartial: qty < decision.Quantity}
	}

	s.logger.Debug("被动限价等待成交价穿越", zap.Float64("limit", limitPrice))
	return nil
}

// executeTiered 按激进档位撮合: 档位决定可用量, 价格档逐档消耗。
// 1=成交价(40%), 2=轻度激进(50%), 3=最优价(60%), 4=穿越最优价(60%+额外深度)。
func (s *Simulator) executeTiered(decision order.Decision, ctx Context, side market.Side, tier int) *fillResult {
	requestedQty := float64(decision.Quantity)
	tp := ctx.TradePrice
	touch := side.TouchPrice(ctx.Bid, ctx.Ask)
	tickVolume := ctx.TickVolume

	tier1Vol := math.Floor(tickVolume * tier1AtTradePrice)
	tier2Vol := math.Floor(tickVolume * tier2MildlyAggressive)
	tier3Vol := math.Floor(tickVolume * tier3AtTouch)

	var availableVolume float64
	var levels []priceLevel

	switch tier {
	case 1:
		availableVolume = tier1Vol
		levels = []priceLevel{{tier1Vol, tp}}
	case 2:
		availableVolume = tier2Vol
		levels = []priceLevel{
			{tier1Vol, tp},
			{tier2Vol - tier1Vol, tp},
		}
	case 3:
		availableVolume = tier3Vol
		levels = []priceLevel{
			{tier1Vol, tp},
			{tier2Vol - tier1Vol, tp},
			{tier3Vol - tier2Vol, touch},
		}
	case 4:
		priceDistance := math.Abs(decision.LimitPrice - touch)
		aggressiveness := 0.0
		if ctx.Spread > 0 {
			aggressiveness = priceDistance / ctx.Spread
		}
		extraVolume := math.Floor(tier3Vol * aggressiveness * s.depthFactor)
		availableVolume = tier3Vol + extraVolume
		levels = []priceLevel{
			{tier1Vol, tp},
			{tier2Vol - tier1Vol, tp},
			{tier3Vol - tier2Vol, touch},
		}
		if extraVolume > 0 {
			levels = append(levels, priceLevel{extraVolume, market.LinearVWAP(touch, priceDistance)})
		}
	}

	executedQty := int(math.Min(requestedQty, availableVolume))
	isPartial := float64(executedQty) < requestedQty

	vwap := sequentialVWAP(levels, float64(executedQty))

	s.logger.Debug("分档撮合",
		zap.Int("tier", tier),
		zap.Int("executed", executedQty),
		zap.Float64("available", availableVolume),
		zap.Float64("vwap", vwap),
		zap.Bool("partial", isPartial))

	return &fillResult{price: vwap, quantity: executedQty, isPartial: isPartial}
}

// sequentialVWAP 逐档消耗价格档位并计算加权均价, 总量为 0 时返回 0。
func sequentialVWAP(levels []priceLevel, totalQty float64) float64 {
	remaining := totalQty
	totalCost := 0.0

	for _, level := range levels {
		if remaining <= 0 {
			break
		}
		qty := math.Min(remaining, level.volume)
		totalCost += qty * level.price
		remaining -= qty
	}

	if totalQty <= 0 {
		return 0
	}
	return totalCost / totalQty
}

package sim

import (
	"fmt"
	"math"

	"execsim/internal/market"
)

// Context 是单个 tick 上与撮合相关的市场条件快照。
type Context struct {
	Bid        float64
	Ask        float64
	Spread     float64
	TradePrice float64
	TickVolume float64
	BaseVolume float64
}

// ContextFrom 按参与率从市场快照派生撮合上下文。
// BaseVolume = floor(tick 成交量 × 参与率)。
func ContextFrom(state market.State, participationRate float64) Context {
	return Context{
		Bid:        state.Bid(),
		Ask:        state.Ask(),
		Spread:     state.Spread(),
		TradePrice: state.TradePrice(),
		TickVolume: state.Volume(),
		BaseVolume: math.Floor(state.Volume() * participationRate),
	}
}

// HasLiquidity 报告本 tick 是否有可用流动性。
func (c Context) HasLiquidity() bool {
	return c.BaseVolume > 0
}

func (c Context) String() string {
	return fmt.Sprintf("Context{bid=%.4f, ask=%.4f, spread=%.4f, volume=%.0f, baseVolume=%.0f}",
		c.Bid, c.Ask, c.Spread, c.TickVolume, c.BaseVolume)
}

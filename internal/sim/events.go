package sim

import (
	"execsim/internal/market"
	"execsim/internal/order"
)

// EventListener 观察一次执行的完整生命周期。
type EventListener interface {
	OnExecutionStart(parent order.Order, state market.State)
	OnTick(state market.State)
	OnDecision(decision order.Decision, state market.State)
	OnFill(fill order.Fill, state market.State)
	OnExecutionComplete(fills []order.Fill, state market.State)
}

// NopListener 提供全部空实现, 监听器可内嵌后只覆盖关心的事件。
type NopListener struct{}

func (NopListener) OnExecutionStart(order.Order, market.State) {}

func (NopListener) OnTick(market.State) {}

func (NopListener) OnDecision(order.Decision, market.State) {}

func (NopListener) OnFill(order.Fill, market.State) {}

func (NopListener) OnExecutionComplete([]order.Fill, market.State) {}

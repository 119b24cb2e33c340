package market

import "time"

// State 是单个 tick 上的不可变市场快照。
type State struct {
	Tick Tick
	Mid  float64
}

// NewState 由 tick 构建快照并计算中间价。
func NewState(tick Tick) State {
	return State{
		Tick: tick,
		Mid:  (tick.Bid + tick.Ask) / 2.0,
	}
}

func (s State) Time() time.Time { return s.Tick.Timestamp }

func (s State) TimeMs() int64 { return s.Tick.Timestamp.UnixMilli() }

func (s State) Bid() float64 { return s.Tick.Bid }

func (s State) Ask() float64 { return s.Tick.Ask }

func (s State) TradePrice() float64 { return s.Tick.TradePrice }

func (s State) Volume() float64 { return s.Tick.Volume }

func (s State) Spread() float64 { return s.Tick.Ask - s.Tick.Bid }

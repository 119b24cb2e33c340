package window

import (
	"fmt"
	"time"

	"execsim/internal/market"
)

// TimeSelector 从一天的行情中选出执行窗口。
// orderDuration 为母单时长, 由调用方从订单模板传入。
type TimeSelector interface {
	Select(ticks []market.Tick, orderDuration time.Duration) (Window, error)
	Description() string
}

// FullDaySelector 选取首尾 tick 覆盖的完整区间。
type FullDaySelector struct{}

func (FullDaySelector) Select(ticks []market.Tick, _ time.Duration) (Window, error) {
	if len(ticks) == 0 {
		return Window{}, fmt.Errorf("window: 行情数据为空")
	}
	return NewWindow(ticks[0].Timestamp, ticks[len(ticks)-1].Timestamp)
}

func (FullDaySelector) Description() string { return "FullDay" }

// MarketOpenSelector 从开盘起执行一个母单时长。
type MarketOpenSelector struct{}

func (MarketOpenSelector) Select(ticks []market.Tick, orderDuration time.Duration) (Window, error) {
	if len(ticks) == 0 {
		return Window{}, fmt.Errorf("window: 行情数据为空")
	}
	start := ticks[0].Timestamp
	return NewWindow(start, start.Add(orderDuration))
}

func (MarketOpenSelector) Description() string { return "Market open" }

// MarketCloseSelector 以收盘为终点倒推一个母单时长。
type MarketCloseSelector struct{}

func (MarketCloseSelector) Select(ticks []market.Tick, orderDuration time.Duration) (Window, error) {
	if len(ticks) == 0 {
		return Window{}, fmt.Errorf("window: 行情数据为空")
	}
	end := ticks[len(ticks)-1].Timestamp
	return NewWindow(end.Add(-orderDuration), end)
}

func (MarketCloseSelector) Description() string { return "Market close" }

// CustomTimeSelector 从指定时刻(当日 HH:MM)起执行一个母单时长。
// 起点取第一笔不早于该时刻的 tick; 若全天都早于该时刻则取最后一笔。
type CustomTimeSelector struct {
	Hour   int
	Minute int
}

func (c CustomTimeSelector) Select(ticks []market.Tick, orderDuration time.Duration) (Window, error) {
	if len(ticks) == 0 {
		return Window{}, fmt.Errorf("window: 行情数据为空")
	}

	target := c.Hour*60 + c.Minute
	start := ticks[len(ticks)-1].Timestamp
	for _, tick := range ticks {
		ts := tick.Timestamp
		if ts.Hour()*60+ts.Minute() >= target {
			start = ts
			break
		}
	}

	return NewWindow(start, start.Add(orderDuration))
}

func (c CustomTimeSelector) Description() string {
	return fmt.Sprintf("Starting at %02d:%02d", c.Hour, c.Minute)
}

// FixedSelector 返回预先确定的窗口, 忽略行情与时长。
type FixedSelector struct {
	Window Window
}

func (f FixedSelector) Select([]market.Tick, time.Duration) (Window, error) {
	return f.Window, nil
}

func (f FixedSelector) Description() string {
	return "Fixed window: " + f.Window.String()
}

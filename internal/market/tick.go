package market

import "time"

// Tick 表示一条逐笔行情记录。Side 为该笔成交的主动方向(可为空)。
type Tick struct {
	Timestamp  time.Time
	Bid        float64
	Ask        float64
	TradePrice float64
	Volume     float64
	Side       string
}

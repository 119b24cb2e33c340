package market

import (
	"fmt"
	"math"
	"strings"
)

// priceEpsilon 用于价格比较的容差。
const priceEpsilon = 1e-5

// Side 表示订单方向。
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// ParseSide 将字符串解析为 Side(忽略大小写)。
func ParseSide(value string) (Side, error) {
	switch strings.ToUpper(value) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	}
	return "", fmt.Errorf("market: 无效的方向 %q, 仅支持 BUY/SELL", value)
}

func (s Side) String() string { return string(s) }

// TouchPrice 返回该方向可立即成交的最优价: BUY 取卖一, SELL 取买一。
func (s Side) TouchPrice(bid, ask float64) float64 {
	if s == Buy {
		return ask
	}
	return bid
}

// IsAggressiveLimit 判断限价是否穿越价差。
func (s Side) IsAggressiveLimit(limitPrice, bid, ask float64) bool {
	if s == Buy {
		return limitPrice >= ask
	}
	return limitPrice <= bid
}

// IsPassiveLimit 判断限价是否位于价差内侧(含本方最优价)。
func (s Side) IsPassiveLimit(limitPrice, bid, ask float64) bool {
	if s == Buy {
		return limitPrice >= bid && limitPrice < ask
	}
	return limitPrice <= ask && limitPrice > bid
}

// IsAtTouch 判断限价是否恰好位于本方最优价。
func (s Side) IsAtTouch(limitPrice, bid, ask float64) bool {
	return math.Abs(s.TouchPrice(bid, ask)-limitPrice) < priceEpsilon
}

// MatchesTradePrice 判断给定成交价能否触发该限价单。
// BUY: 成交价不高于限价; SELL: 成交价不低于限价。成交价非正时恒为 false。
func (s Side) MatchesTradePrice(limitPrice, tradePrice float64) bool {
	if tradePrice <= 0 {
		return false
	}
	if s == Buy {
		return tradePrice <= limitPrice
	}
	return tradePrice >= limitPrice
}

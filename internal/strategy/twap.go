package strategy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"execsim/internal/market"
	"execsim/internal/order"
)

// OrderType 是 TWAP 子单的下单方式。
type OrderType int

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimitAggressive
	OrderTypeLimitPassive
)

// ParseOrderType 解析下单方式字符串(忽略大小写)。
func ParseOrderType(value string) (OrderType, error) {
	switch strings.ToUpper(value) {
	case "", "MARKET":
		return OrderTypeMarket, nil
	case "LIMIT_AGGRESSIVE":
		return OrderTypeLimitAggressive, nil
	case "LIMIT_PASSIVE":
		return OrderTypeLimitPassive, nil
	}
	return 0, fmt.Errorf("strategy: 无效的下单方式 %q", value)
}

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimitAggressive:
		return "LIMIT_AGGRESSIVE"
	case OrderTypeLimitPassive:
		return "LIMIT_PASSIVE"
	default:
		return "MARKET"
	}
}

// TWAP 将母单均匀切分到等长时间片执行。
// 每片在其中点时刻下单; 部分成交在同一片内以相同子单号补单。
type TWAP struct {
	numberOfSlices    int
	orderType         OrderType
	aggressivenessBps float64
	logger            *zap.Logger

	parent        order.Order
	remaining     int
	currentSlice  int
	sliceInterval time.Duration
	nextSliceTime time.Time

	expectedQtyThisSlice int
	filledQtyThisSlice   int
}

// NewTWAP 创建 TWAP 策略, 切片数必须为正。
func NewTWAP(numberOfSlices int, orderType OrderType, aggressivenessBps float64, logger *zap.Logger) (*TWAP, error) {
	if numberOfSlices <= 0 {
		return nil, fmt.Errorf("strategy: 切片数必须大于0, 实际 %d", numberOfSlices)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TWAP{
		numberOfSlices:    numberOfSlices,
		orderType:         orderType,
		aggressivenessBps: aggressivenessBps,
		logger:            logger,
	}, nil
}

// Initialize 绑定母单并计算切片时刻表。
func (t *TWAP) Initialize(parent order.Order, _ []market.Tick) error {
	duration := parent.EndTime.Sub(parent.StartTime)
	if duration <= 0 {
		return fmt.Errorf("strategy: 母单结束时间必须晚于开始时间")
	}

	t.parent = parent
	t.remaining = parent.Quantity
	t.currentSlice = 0
	t.expectedQtyThisSlice = 0
	t.filledQtyThisSlice = 0
	t.sliceInterval = duration / time.Duration(t.numberOfSlices)
	t.nextSliceTime = parent.StartTime.Add(t.sliceInterval / 2)

	t.logger.Debug("TWAP 初始化",
		zap.String("order", parent.ID),
		zap.Int("quantity", parent.Quantity),
		zap.Int("slices", t.numberOfSlices),
		zap.Duration("slice_interval", t.sliceInterval))

	return nil
}

// OnTick 在到达切片时刻时下发该片剩余数量的子单。
func (t *TWAP) OnTick(state market.State) (order.Decision, error) {
	if t.remaining <= 0 || t.currentSlice >= t.numberOfSlices {
		return order.NoAction(), nil
	}

	if state.Time().Before(t.nextSliceTime) {
		return order.NoAction(), nil
	}

	if t.expectedQtyThisSlice == 0 {
		// 均匀分摊, 余数落在前几片
		base := t.parent.Quantity / t.numberOfSlices
		remainder := t.parent.Quantity % t.numberOfSlices
		if t.currentSlice < remainder {
			t.expectedQtyThisSlice = base + 1
		} else {
			t.expectedQtyThisSlice = base
		}
		t.filledQtyThisSlice = 0

		t.logger.Debug("TWAP 开始切片",
			zap.Int("slice", t.currentSlice+1),
			zap.Int("expected", t.expectedQtyThisSlice),
			zap.Int("remaining_total", t.remaining))
	}

	qty := t.expectedQtyThisSlice - t.filledQtyThisSlice
	orderID := fmt.Sprintf("%s_TWAP_%d", t.parent.ID, t.currentSlice+1)

	switch t.orderType {
	case OrderTypeLimitAggressive:
		return order.NewLimitDecision(orderID, qty, t.aggressivePrice(state))
	case OrderTypeLimitPassive:
		return order.NewLimitDecision(orderID, qty, t.passivePrice(state))
	default:
		return order.NewMarketDecision(orderID, qty)
	}
}

// OnFill 更新进度: 全部成交则推进到下一片, 部分成交留在本片补单。
func (t *TWAP) OnFill(fill order.Fill) {
	t.remaining -= fill.Quantity
	t.filledQtyThisSlice += fill.Quantity

	if !fill.IsPartial {
		t.currentSlice++
		t.nextSliceTime = t.nextSliceTime.Add(t.sliceInterval)
		t.expectedQtyThisSlice = 0
		t.filledQtyThisSlice = 0
	}
}

// IsComplete 报告母单是否执行完毕。
func (t *TWAP) IsComplete() bool {
	return t.remaining <= 0 || t.currentSlice >= t.numberOfSlices
}

// aggressivePrice 返回穿越价差的限价: BUY 卖一上浮, SELL 买一下浮。
func (t *TWAP) aggressivePrice(state market.State) float64 {
	factor := t.aggressivenessBps / 10000.0
	if t.parent.Side == market.Buy {
		return state.Ask() * (1 + factor)
	}
	return state.Bid() * (1 - factor)
}

// passivePrice 返回排队价: BUY 挂买一, SELL 挂卖一。
func (t *TWAP) passivePrice(state market.State) float64 {
	if t.parent.Side == market.Buy {
		return state.Bid()
	}
	return state.Ask()
}

func (t *TWAP) Name() string {
	switch t.orderType {
	case OrderTypeLimitAggressive:
		return fmt.Sprintf("TWAP(%d, Aggressive %sbps)", t.numberOfSlices,
			strconv.FormatFloat(t.aggressivenessBps, 'f', -1, 64))
	case OrderTypeLimitPassive:
		return fmt.Sprintf("TWAP(%d, Passive)", t.numberOfSlices)
	default:
		return fmt.Sprintf("TWAP(%d)", t.numberOfSlices)
	}
}

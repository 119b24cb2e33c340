package sim

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"execsim/internal/market"
	"execsim/internal/order"
)

const (
	defaultMaxParticipation = 0.5
	defaultDepthFactor      = 0.5
)

// Strategy 是执行策略在模拟器中的契约。
// OnTick 在每个 tick 被询问一次; OnFill 在子单成交后回调。
type Strategy interface {
	Initialize(parent order.Order, ticks []market.Tick) error
	OnTick(state market.State) (order.Decision, error)
	OnFill(fill order.Fill)
	IsComplete() bool
	Name() string
}

// Config 控制模拟器的撮合参数。零值字段回落到默认值。
type Config struct {
	MaxParticipationRate float64
	DepthFactor          float64
	Latency              time.Duration
	Seed                 int64
}

// Simulator 逐 tick 回放行情并撮合策略下发的子单。
// 上一 tick 的决定先于新决定执行, 避免前视偏差并模拟真实下单延迟。
type Simulator struct {
	maxParticipationRate float64
	depthFactor          float64
	latency              time.Duration
	rng                  *rand.Rand
	listeners            []EventListener
	logger               *zap.Logger
}

// NewSimulator 创建模拟器, logger 传 nil 时使用空实现。
func NewSimulator(cfg Config, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxParticipationRate <= 0 {
		cfg.MaxParticipationRate = defaultMaxParticipation
	}
	if cfg.DepthFactor <= 0 {
		cfg.DepthFactor = defaultDepthFactor
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		maxParticipationRate: cfg.MaxParticipationRate,
		depthFactor:          cfg.DepthFactor,
		latency:              cfg.Latency,
		rng:                  rand.New(rand.NewSource(seed)),
		logger:               logger,
	}
}

// AddListener 注册一个生命周期监听器。
func (s *Simulator) AddListener(listener EventListener) {
	s.listeners = append(s.listeners, listener)
}

// MaxParticipationRate 返回撮合用的最大参与率。
func (s *Simulator) MaxParticipationRate() float64 {
	return s.maxParticipationRate
}

// Simulate 逐 tick 驱动策略并返回全部成交。
func (s *Simulator) Simulate(strategy Strategy, parent order.Order, ticks []market.Tick) ([]order.Fill, error) {
	if len(ticks) == 0 {
		return nil, fmt.Errorf("sim: 行情数据为空, 无法模拟")
	}

	s.logger.Info("开始模拟",
		zap.String("strategy", strategy.Name()),
		zap.String("order", parent.ID),
		zap.Float64("max_participation_rate", s.maxParticipationRate),
		zap.Duration("latency", s.latency))

	if err := strategy.Initialize(parent, ticks); err != nil {
		return nil, fmt.Errorf("sim: 策略初始化失败: %w", err)
	}

	var fills []order.Fill
	var pending order.Decision
	var pendingTime time.Time
	hasPending := false

	s.notifyExecutionStart(parent, market.NewState(ticks[0]))

	for _, tick := range ticks {
		state := market.NewState(tick)
		now := state.Time()

		s.notifyTick(state)

		if hasPending {
			elapsed := now.Sub(pendingTime)
			if elapsed >= s.latency {
				fill := s.executeDecision(pending, state, parent.Side)
				if fill != nil {
					fills = append(fills, *fill)
					s.notifyFill(*fill, state)
					strategy.OnFill(*fill)
					if fill.IsPartial {
						s.logger.Debug("部分成交",
							zap.Int("filled", fill.Quantity),
							zap.Int("requested", fill.RequestedQt))
					}
				}
				hasPending = false
			} else {
				s.logger.Debug("等待延迟窗口",
					zap.Duration("elapsed", elapsed),
					zap.Duration("required", s.latency))
			}
		}

		decision, err := strategy.OnTick(state)
		if err != nil {
			return nil, fmt.Errorf("sim: 策略 OnTick 失败: %w", err)
		}

		if !decision.IsNoAction() {
			s.notifyDecision(decision, state)
			pending = decision
			pendingTime = now
			hasPending = true
		}

		if strategy.IsComplete() {
			s.logger.Info("策略执行完成", zap.Int("fills", len(fills)))
			break
		}
	}

	if hasPending {
		s.logger.Warn("数据耗尽, 最后一笔子单未能执行", zap.String("order", pending.OrderID))
	}

	s.logger.Info("模拟结束", zap.Int("fills", len(fills)))

	s.notifyExecutionComplete(fills, market.NewState(ticks[len(ticks)-1]))

	return fills, nil
}

// executeDecision 对当前 tick 撮合一个排队中的决定, nil 表示未成交。
func (s *Simulator) executeDecision(decision order.Decision, state market.State, side market.Side) *order.Fill {
	ctx := ContextFrom(state, s.maxParticipationRate)

	if !ctx.HasLiquidity() {
		s.logger.Debug("流动性不足, 拒绝撮合", zap.Float64("tick_volume", ctx.TickVolume))
		return nil
	}

	result := s.routeOrder(decision, ctx, side)
	if result == nil {
		return nil
	}

	return &order.Fill{
		OrderID:     decision.OrderID,
		Timestamp:   state.Time(),
		Price:       result.price,
		Quantity:    result.quantity,
		Side:        side,
		IsPartial:   result.isPartial,
		RequestedQt: decision.Quantity,
	}
}

func (s *Simulator) notifyExecutionStart(parent order.Order, state market.State) {
	for _, l := range s.listeners {
		l.OnExecutionStart(parent, state)
	}
}

func (s *Simulator) notifyTick(state market.State) {
	for _, l := range s.listeners {
		l.OnTick(state)
	}
}

func (s *Simulator) notifyDecision(decision order.Decision, state market.State) {
	for _, l := range s.listeners {
		l.OnDecision(decision, state)
	}
}

func (s *Simulator) notifyFill(fill order.Fill, state market.State) {
	for _, l := range s.listeners {
		l.OnFill(fill, state)
	}
}

func (s *Simulator) notifyExecutionComplete(fills []order.Fill, state market.State) {
	for _, l := range s.listeners {
		l.OnExecutionComplete(fills, state)
	}
}

package batch

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"execsim/internal/config"
	"execsim/internal/market"
	"execsim/internal/metrics"
	"execsim/internal/order"
	"execsim/internal/sim"
	"execsim/internal/window"
)

// Task 是批量回测中一次独立的模拟: 一个策略在一天的一个时间窗口上执行母单。
type Task struct {
	Strategy config.StrategyConfig
	TimeSpec string
	Date     string
}

// Result 是单次模拟的产出。
type Result struct {
	RunID    string
	Strategy string
	Date     string
	TimeSpec string
	Window   window.Window
	Fills    []order.Fill
	Metrics  metrics.ExecutionMetrics
	Elapsed  time.Duration
}

// FilledQuantity 返回总成交量。
func (r Result) FilledQuantity() int {
	total := 0
	for _, f := range r.Fills {
		total += f.Quantity
	}
	return total
}

// run 执行单个任务: 加载当日数据, 选窗口, 落地母单, 模拟并计算指标。
func (r *Runner) run(task Task) (Result, error) {
	started := time.Now()

	ticks, err := r.manager.Load(r.template.Symbol, task.Date)
	if err != nil {
		return Result{}, err
	}

	timeSel, err := window.ParseTimeSpec(task.TimeSpec)
	if err != nil {
		return Result{}, err
	}
	win, err := timeSel.Select(ticks, r.template.Duration)
	if err != nil {
		return Result{}, err
	}

	windowTicks := sliceWindow(ticks, win)
	if len(windowTicks) == 0 {
		return Result{}, fmt.Errorf("batch: 窗口 %s 内没有 tick 数据", win)
	}

	strat, err := r.registry.Create(task.Strategy.Name, task.Strategy.Params, r.logger)
	if err != nil {
		return Result{}, err
	}

	runID := uuid.NewString()
	orderID := fmt.Sprintf("BATCH_%s_%s", task.Date, runID[:8])
	parent := r.template.Materialize(orderID, win.Start)

	simulator := sim.NewSimulator(r.simCfg, r.logger)
	collector := metrics.NewCollector()
	simulator.AddListener(collector)

	fills, err := simulator.Simulate(strat, parent, windowTicks)
	if err != nil {
		return Result{}, err
	}

	m, err := collector.Calculate()
	if err != nil {
		return Result{}, err
	}

	result := Result{
		RunID:    runID,
		Strategy: strat.Name(),
		Date:     task.Date,
		TimeSpec: task.TimeSpec,
		Window:   win,
		Fills:    fills,
		Metrics:  m,
		Elapsed:  time.Since(started),
	}

	r.logger.Info("模拟任务完成",
		zap.String("strategy", result.Strategy),
		zap.String("date", task.Date),
		zap.String("time", task.TimeSpec),
		zap.Int("fills", len(fills)),
		zap.Duration("elapsed", result.Elapsed))

	return result, nil
}

// sliceWindow 截取窗口内的 tick(闭区间)。
func sliceWindow(ticks []market.Tick, win window.Window) []market.Tick {
	var out []market.Tick
	for _, t := range ticks {
		if t.Timestamp.Before(win.Start) {
			continue
		}
		if t.Timestamp.After(win.End) {
			break
		}
		out = append(out, t)
	}
	return out
}

package batch

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"execsim/internal/config"
	"execsim/internal/data"
	"execsim/internal/order"
	"execsim/internal/sim"
	"execsim/internal/strategy"
	"execsim/internal/window"
)

// Runner 将策略、时间窗口与日期做笛卡尔积, 逐一(或并行)运行模拟任务。
// 单个任务失败只记日志, 不影响其余任务。
type Runner struct {
	manager  *data.Manager
	registry *strategy.Registry
	template order.Template
	simCfg   sim.Config
	batchCfg config.BatchConfig
	logger   *zap.Logger
}

// NewRunner 创建批量回测执行器。
func NewRunner(manager *data.Manager, registry *strategy.Registry, template order.Template,
	simCfg sim.Config, batchCfg config.BatchConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		manager:  manager,
		registry: registry,
		template: template,
		simCfg:   simCfg,
		batchCfg: batchCfg,
		logger:   logger,
	}
}

// BuildTasks 解析日期选择器并展开全部任务。
func (r *Runner) BuildTasks() ([]Task, error) {
	available, err := r.manager.Dates(r.template.Symbol)
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return nil, fmt.Errorf("batch: 标的 %s 没有可用交易日", r.template.Symbol)
	}

	dates, err := r.resolveDates(available)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	for _, stratCfg := range r.batchCfg.Strategies {
		for _, timeSpec := range r.batchCfg.Times {
			if _, err := window.ParseTimeSpec(timeSpec); err != nil {
				return nil, err
			}
			for _, date := range dates {
				tasks = append(tasks, Task{Strategy: stratCfg, TimeSpec: timeSpec, Date: date})
			}
		}
	}
	return tasks, nil
}

// resolveDates 解析全部日期选择器并按出现顺序去重。
func (r *Runner) resolveDates(available []string) ([]string, error) {
	seen := make(map[string]struct{})
	var dates []string

	for _, spec := range r.batchCfg.Dates {
		selector, err := window.ParseDateSpec(spec, r.simCfg.Seed)
		if err != nil {
			return nil, err
		}
		selected, err := selector.Select(available)
		if err != nil {
			return nil, err
		}
		for _, d := range selected {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
	}

	if len(dates) == 0 {
		return nil, fmt.Errorf("batch: 日期选择结果为空")
	}
	return dates, nil
}

// Run 执行全部任务并返回成功的结果。
func (r *Runner) Run(ctx context.Context) (Results, error) {
	tasks, err := r.BuildTasks()
	if err != nil {
		return nil, err
	}

	r.logger.Info("批量回测开始",
		zap.Int("tasks", len(tasks)),
		zap.Bool("parallel", r.batchCfg.Parallel),
		zap.Int("max_workers", r.batchCfg.MaxWorkers))

	var results Results
	if r.batchCfg.Parallel {
		results = r.runParallel(ctx, tasks)
	} else {
		results = r.runSequential(ctx, tasks)
	}

	r.logger.Info("批量回测结束",
		zap.Int("succeeded", len(results)),
		zap.Int("failed", len(tasks)-len(results)))

	return results, nil
}

func (r *Runner) runSequential(ctx context.Context, tasks []Task) Results {
	var results Results
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("批量回测被取消", zap.Error(err))
			break
		}
		result, err := r.run(task)
		if err != nil {
			r.logTaskFailure(task, err)
			continue
		}
		results = append(results, result)
	}
	return results
}

func (r *Runner) runParallel(ctx context.Context, tasks []Task) Results {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.batchCfg.MaxWorkers)

	var mu sync.Mutex
	results := make(Results, 0, len(tasks))

	for _, task := range tasks {
		task := task
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return nil
			}
			result, err := r.run(task)
			if err != nil {
				r.logTaskFailure(task, err)
				return nil
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	// 并行完成顺序不定, 结果排序保持输出稳定
	results.sortStable()
	return results
}

func (r *Runner) logTaskFailure(task Task, err error) {
	r.logger.Error("模拟任务失败",
		zap.String("strategy", task.Strategy.Name),
		zap.String("date", task.Date),
		zap.String("time", task.TimeSpec),
		zap.Error(err))
}

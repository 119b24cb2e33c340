package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"execsim/internal/batch"
	"execsim/internal/config"
	"execsim/internal/data"
	"execsim/internal/log"
	"execsim/internal/market"
	"execsim/internal/order"
	"execsim/internal/report"
	"execsim/internal/sim"
	"execsim/internal/store"
	"execsim/internal/strategy"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "配置文件路径，默认使用 configs/config.yaml")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("回测运行异常", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("回测已完成")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	manager, err := data.NewManager(cfg.Data.Dir, logger)
	if err != nil {
		return err
	}

	side, err := market.ParseSide(cfg.Order.Side)
	if err != nil {
		return err
	}
	template, err := order.NewTemplate(cfg.Order.Symbol, cfg.Order.Quantity, side, cfg.Order.Duration)
	if err != nil {
		return err
	}

	registry := strategy.NewRegistry()
	var names []string
	for _, info := range registry.List() {
		names = append(names, info.Name)
	}
	logger.Info("可用策略", zap.String("strategies", strings.Join(names, ", ")))

	runner := batch.NewRunner(manager, registry, template, sim.Config{
		MaxParticipationRate: cfg.Simulator.MaxParticipationRate,
		DepthFactor:          cfg.Simulator.DepthFactor,
		Latency:              cfg.Simulator.Latency,
		Seed:                 cfg.Simulator.Seed,
	}, cfg.Batch, logger)

	results, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("全部模拟任务失败")
	}

	if err := report.WriteTable(os.Stdout, results); err != nil {
		return err
	}

	written, err := report.Export(cfg.Report.OutputDir, cfg.Report.Formats, results)
	if err != nil {
		return err
	}
	for _, path := range written {
		logger.Info("结果已导出", zap.String("file", path))
	}

	if cfg.Database.Enabled {
		if err := persist(ctx, cfg, results, logger); err != nil {
			return err
		}
	}

	return nil
}

func persist(ctx context.Context, cfg *config.Config, results batch.Results, logger *zap.Logger) error {
	sqliteStore, err := store.NewSQLite(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sqliteStore.Close(); closeErr != nil {
			logger.Warn("关闭数据库失败", zap.Error(closeErr))
		}
	}()

	resultStore, err := store.NewResultStore(sqliteStore, logger)
	if err != nil {
		return err
	}
	return resultStore.SaveResults(ctx, results)
}

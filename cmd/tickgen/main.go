package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"execsim/internal/config"
	"execsim/internal/log"
	"execsim/internal/tickgen"
)

func main() {
	var (
		configPath string
		days       int
		outputDir  string
	)
	flag.StringVar(&configPath, "config", "", "配置文件路径，默认使用 configs/config.yaml")
	flag.IntVar(&days, "days", 0, "覆盖配置中的 tickgen.days")
	flag.StringVar(&outputDir, "out", "", "覆盖配置中的 tickgen.output_dir")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if days > 0 {
		cfg.TickGen.Days = days
	}
	if outputDir != "" {
		cfg.TickGen.OutputDir = outputDir
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	service, err := tickgen.NewService(cfg.TickGen, logger)
	if err != nil {
		logger.Error("初始化数据生成服务失败", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := service.Run(ctx); err != nil {
		logger.Error("数据生成失败", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("数据生成完成")
}

package tickgen

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"execsim/internal/config"
)

// Service 串联K线拉取、活跃度分析与合成 tick 落盘。
type Service struct {
	cfg     config.TickGenConfig
	fetcher *Fetcher
	logger  *zap.Logger
}

// NewService 创建数据生成服务。
func NewService(cfg config.TickGenConfig, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Markets) == 0 {
		return nil, fmt.Errorf("tickgen: 未配置市场")
	}

	fetcher, err := NewFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Service{cfg: cfg, fetcher: fetcher, logger: logger}, nil
}

// Run 为每个配置的市场生成合成 tick 数据文件。
func (s *Service) Run(ctx context.Context) error {
	for _, symbol := range s.cfg.Markets {
		if err := s.generateMarket(ctx, symbol); err != nil {
			return fmt.Errorf("tickgen: 生成 %s 数据失败: %w", symbol, err)
		}
	}
	return nil
}

func (s *Service) generateMarket(ctx context.Context, symbol string) error {
	candles, err := s.fetcher.FetchCandles(ctx, exchangeSymbol(symbol), s.cfg.Days)
	if err != nil {
		return err
	}
	if len(candles) == 0 {
		return fmt.Errorf("交易所未返回K线")
	}

	stats, err := Analyze(candles)
	if err != nil {
		return err
	}
	s.logger.Info("市场活跃度分析完成",
		zap.String("symbol", symbol),
		zap.Float64("avg_volume", stats.AvgVolume),
		zap.Float64("atr", stats.LastATR))

	gen := NewGenerator(s.cfg)
	dates, byDay := GroupByDay(candles)

	for _, date := range dates {
		dayCandles := byDay[date]
		target := DayTickTarget(dayCandles, stats, s.cfg.TicksPerMin)
		ticks := gen.GenerateDay(dayCandles, target)

		path, err := WriteDay(s.cfg.OutputDir, symbol, date, ticks)
		if err != nil {
			return err
		}
		s.logger.Info("合成 tick 数据已写入",
			zap.String("symbol", symbol),
			zap.String("date", date),
			zap.Int("ticks", len(ticks)),
			zap.String("file", path))
	}

	return nil
}

// exchangeSymbol 将本地市场命名转换为交易所符号, 如 BTC-USDT -> BTC/USDT。
func exchangeSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "-", "/")
}

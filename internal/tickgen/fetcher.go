package tickgen

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"execsim/internal/config"
)

// Fetcher 从交易所拉取K线并实现重试机制。
type Fetcher struct {
	cfg      config.TickGenConfig
	logger   *zap.Logger
	exchange *ccxt.Binance

	marketsMu     sync.Mutex
	marketsLoaded bool
}

// NewFetcher 构造交易所K线拉取器, 目前仅支持 binance。
func NewFetcher(cfg config.TickGenConfig, logger *zap.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !strings.EqualFold(cfg.Exchange, "binance") {
		return nil, fmt.Errorf("tickgen: 不支持的交易所 %q", cfg.Exchange)
	}

	ex := ccxt.NewBinance(map[string]interface{}{
		"enableRateLimit": true,
		"options": map[string]interface{}{
			"adjustForTimeDifference": true,
		},
	})

	return &Fetcher{
		cfg:      cfg,
		logger:   logger,
		exchange: ex,
	}, nil
}

// FetchCandles 拉取指定市场最近 days 天的K线, 按时间升序返回。
func (f *Fetcher) FetchCandles(ctx context.Context, symbol string, days int) ([]Candle, error) {
	if days <= 0 {
		days = 1
	}

	since := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()
	var candles []Candle

	for {
		var raw []ccxt.OHLCV

		err := f.callWithRetry(ctx, fmt.Sprintf("fetch_ohlcv_%s", symbol), func() error {
			if err := f.ensureMarketsLoaded(ctx); err != nil {
				return err
			}

			result, err := f.exchange.FetchOHLCV(
				symbol,
				ccxt.WithFetchOHLCVTimeframe(f.cfg.Timeframe),
				ccxt.WithFetchOHLCVSince(since),
				ccxt.WithFetchOHLCVLimit(1000),
			)
			if err != nil {
				return err
			}

			raw = result
			return nil
		})
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			break
		}

		for _, item := range raw {
			candles = append(candles, Candle{
				Timestamp: time.UnixMilli(item.Timestamp).UTC(),
				Open:      item.Open,
				High:      item.High,
				Low:       item.Low,
				Close:     item.Close,
				Volume:    item.Volume,
			})
		}

		next := raw[len(raw)-1].Timestamp + 1
		if next <= since || len(raw) < 1000 {
			break
		}
		since = next
	}

	f.logger.Info("K线拉取完成",
		zap.String("symbol", symbol),
		zap.Int("candles", len(candles)))
	return candles, nil
}

func (f *Fetcher) ensureMarketsLoaded(ctx context.Context) error {
	if f.marketsLoaded {
		return nil
	}

	f.marketsMu.Lock()
	defer f.marketsMu.Unlock()

	if f.marketsLoaded {
		return nil
	}

	loadErr := f.callWithRetry(ctx, "load_markets", func() error {
		_, err := f.exchange.LoadMarkets()
		return err
	})
	if loadErr != nil {
		return loadErr
	}

	f.marketsLoaded = true
	f.logger.Info("已完成市场元数据加载")
	return nil
}

func (f *Fetcher) callWithRetry(ctx context.Context, operation string, fn func() error) error {
	attempt := 0
	delay := f.cfg.Retry.MinDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	maxDelay := f.cfg.Retry.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		attempt++
		err := fn()
		if err == nil {
			if attempt > 1 {
				f.logger.Info("交易所调用重试后成功",
					zap.String("operation", operation),
					zap.Int("attempts", attempt))
			}
			return nil
		}

		if !retryable(err) || attempt >= f.cfg.Retry.MaxAttempts {
			f.logger.Error("交易所调用失败",
				zap.String("operation", operation),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return err
		}

		wait := delay
		if wait > maxDelay {
			wait = maxDelay
		}

		f.logger.Warn("交易所调用失败，等待重试",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var ccxtErr *ccxt.Error
	if errors.As(err, &ccxtErr) {
		switch ccxtErr.Type {
		case ccxt.NetworkErrorErrType,
			ccxt.RequestTimeoutErrType,
			ccxt.ExchangeNotAvailableErrType,
			ccxt.RateLimitExceededErrType,
			ccxt.DDoSProtectionErrType,
			ccxt.BadResponseErrType,
			ccxt.NullResponseErrType:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

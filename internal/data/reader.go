package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"execsim/internal/market"
)

// 支持的时间戳格式, 依次尝试。无时区信息时按 UTC 处理。
var timestampLayouts = []string{
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
}

// ReadTicks 解析 CSV 文件中的 tick 数据。
// 格式: timestamp,bid,ask,trade_price,volume,side, 首行为表头。
// 解析失败的行记录日志后跳过, 不中断读取。
func ReadTicks(path string, logger *zap.Logger) ([]market.Tick, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("data: 打开文件失败: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var ticks []market.Tick
	lineIdx := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("data: 读取 %s 第 %d 行失败: %w", path, lineIdx+1, err)
		}
		lineIdx++

		if lineIdx == 1 {
			continue // 表头
		}
		if len(record) < 6 {
			continue
		}

		tick, err := parseTick(record)
		if err != nil {
			logger.Warn("跳过无法解析的行",
				zap.String("file", path),
				zap.Int("line", lineIdx),
				zap.Error(err))
			continue
		}
		ticks = append(ticks, tick)
	}

	logger.Debug("加载 tick 数据完成", zap.String("file", path), zap.Int("ticks", len(ticks)))
	return ticks, nil
}

func parseTick(record []string) (market.Tick, error) {
	ts, err := parseTimestamp(strings.TrimSpace(record[0]))
	if err != nil {
		return market.Tick{}, err
	}

	fields := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
		if err != nil {
			return market.Tick{}, fmt.Errorf("解析第 %d 列失败: %w", i+2, err)
		}
		fields[i] = v
	}

	return market.Tick{
		Timestamp:  ts,
		Bid:        fields[0],
		Ask:        fields[1],
		TradePrice: fields[2],
		Volume:     fields[3],
		Side:       strings.TrimSpace(record[5]),
	}, nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析时间戳 %q", value)
}

package tickgen

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"execsim/internal/market"
)

const timestampLayout = "2006-01-02 15:04:05.999999Z07:00"

// WriteDay 将一天的 tick 写入 <dir>/<SYMBOL>/<date>.csv, 返回文件路径。
// 列顺序与回测数据读取端一致。
func WriteDay(dir, symbol, date string, ticks []market.Tick) (string, error) {
	symbolDir := filepath.Join(dir, strings.ReplaceAll(symbol, "/", "-"))
	if err := os.MkdirAll(symbolDir, 0o755); err != nil {
		return "", fmt.Errorf("tickgen: 创建输出目录失败: %w", err)
	}

	path := filepath.Join(symbolDir, date+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("tickgen: 创建数据文件失败: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "bid", "ask", "trade_price", "volume", "side"}); err != nil {
		return "", fmt.Errorf("tickgen: 写入表头失败: %w", err)
	}

	for _, tick := range ticks {
		row := []string{
			tick.Timestamp.UTC().Format(timestampLayout),
			strconv.FormatFloat(tick.Bid, 'f', 4, 64),
			strconv.FormatFloat(tick.Ask, 'f', 4, 64),
			strconv.FormatFloat(tick.TradePrice, 'f', 4, 64),
			strconv.FormatFloat(tick.Volume, 'f', 0, 64),
			tick.Side,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("tickgen: 写入数据行失败: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("tickgen: 写入 %s 失败: %w", path, err)
	}
	return path, nil
}

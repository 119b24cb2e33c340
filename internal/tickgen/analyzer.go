package tickgen

import (
	"fmt"

	talib "github.com/markcheno/go-talib"
)

const (
	volumeSMAPeriod = 20
	atrPeriod       = 14

	minActivityRatio = 0.5
	maxActivityRatio = 2.0
)

// Stats 保存从K线提取的活跃度统计。
type Stats struct {
	AvgVolume float64
	LastATR   float64
}

// Analyze 计算成交量均线与 ATR, 用于缩放每日的 tick 数量。
func Analyze(candles []Candle) (Stats, error) {
	if len(candles) == 0 {
		return Stats{}, fmt.Errorf("tickgen: 分析失败: 输入K线为空")
	}

	volumes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	for i, c := range candles {
		volumes[i] = c.Volume
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
	}

	avgVolume := 0.0
	if len(volumes) >= volumeSMAPeriod {
		sma := talib.Sma(volumes, volumeSMAPeriod)
		avgVolume = sma[len(sma)-1]
	} else {
		for _, v := range volumes {
			avgVolume += v
		}
		avgVolume /= float64(len(volumes))
	}

	lastATR := 0.0
	if len(candles) > atrPeriod {
		atr := talib.Atr(highs, lows, closes, atrPeriod)
		lastATR = atr[len(atr)-1]
	}

	return Stats{AvgVolume: avgVolume, LastATR: lastATR}, nil
}

// DayTickTarget 估算某一天应生成的 tick 总数。
// 按当日平均成交量相对整体水平的比值缩放, 比值截断在[0.5, 2.0]。
func DayTickTarget(dayCandles []Candle, stats Stats, ticksPerMin int) int {
	base := ticksPerMin * len(dayCandles)
	if stats.AvgVolume <= 0 || len(dayCandles) == 0 {
		return base
	}

	dayVolume := 0.0
	for _, c := range dayCandles {
		dayVolume += c.Volume
	}
	dayAvg := dayVolume / float64(len(dayCandles))

	ratio := dayAvg / stats.AvgVolume
	if ratio < minActivityRatio {
		ratio = minActivityRatio
	}
	if ratio > maxActivityRatio {
		ratio = maxActivityRatio
	}

	return int(ratio * float64(base))
}

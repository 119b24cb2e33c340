package tickgen

import "time"

// Candle 表示一根 OHLCV K线。
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Date 返回K线所属的 UTC 日期 (YYYY-MM-DD)。
func (c Candle) Date() string {
	return c.Timestamp.UTC().Format("2006-01-02")
}

// GroupByDay 按 UTC 日期分组K线, 返回日期升序的键列表与分组。
func GroupByDay(candles []Candle) ([]string, map[string][]Candle) {
	groups := make(map[string][]Candle)
	var dates []string
	for _, c := range candles {
		date := c.Date()
		if _, ok := groups[date]; !ok {
			dates = append(dates, date)
		}
		groups[date] = append(groups[date], c)
	}
	return dates, groups
}

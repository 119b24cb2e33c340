package window

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimeSpec 将配置字符串解析为窗口选择器。
// 支持 full-day / market-open / market-close / HH:MM。
func ParseTimeSpec(spec string) (TimeSelector, error) {
	switch strings.ToLower(strings.TrimSpace(spec)) {
	case "full-day":
		return FullDaySelector{}, nil
	case "market-open":
		return MarketOpenSelector{}, nil
	case "market-close":
		return MarketCloseSelector{}, nil
	}

	t, err := time.Parse("15:04", strings.TrimSpace(spec))
	if err != nil {
		return nil, fmt.Errorf("window: 无法解析时间窗口 %q (支持 full-day/market-open/market-close/HH:MM)", spec)
	}
	return CustomTimeSelector{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// ParseDateSpec 将配置字符串解析为日期选择器。
// 支持 latest / all / random:N / YYYY-MM-DD。随机选择使用给定种子。
func ParseDateSpec(spec string, seed int64) (DateSelector, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	switch s {
	case "latest":
		return LatestDateSelector{}, nil
	case "all":
		return AllDatesSelector{}, nil
	}

	if strings.HasPrefix(s, "random:") {
		count, err := strconv.Atoi(strings.TrimPrefix(s, "random:"))
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("window: 无法解析随机天数 %q", spec)
		}
		return RandomDaysSelector{Count: count, Seed: seed}, nil
	}

	if _, err := time.Parse("2006-01-02", s); err != nil {
		return nil, fmt.Errorf("window: 无法解析日期 %q (支持 latest/all/random:N/YYYY-MM-DD)", spec)
	}
	return SingleDateSelector{Date: s}, nil
}

package window

import (
	"fmt"
	"math/rand"
	"sort"
)

// DateSelector 从可用交易日(YYYY-MM-DD, 已排序)中挑选回测日期。
type DateSelector interface {
	Select(available []string) ([]string, error)
	Description() string
}

// SingleDateSelector 选取指定的一天。
type SingleDateSelector struct {
	Date string
}

func (s SingleDateSelector) Select(available []string) ([]string, error) {
	for _, d := range available {
		if d == s.Date {
			return []string{s.Date}, nil
		}
	}
	return nil, fmt.Errorf("window: 日期 %s 无可用数据", s.Date)
}

func (s SingleDateSelector) Description() string { return "Single date: " + s.Date }

// LatestDateSelector 选取最近的一天。
type LatestDateSelector struct{}

func (LatestDateSelector) Select(available []string) ([]string, error) {
	if len(available) == 0 {
		return nil, fmt.Errorf("window: 没有可用交易日")
	}
	sorted := append([]string(nil), available...)
	sort.Strings(sorted)
	return []string{sorted[len(sorted)-1]}, nil
}

func (LatestDateSelector) Description() string { return "Latest date" }

// AllDatesSelector 选取全部可用交易日。
type AllDatesSelector struct{}

func (AllDatesSelector) Select(available []string) ([]string, error) {
	return append([]string(nil), available...), nil
}

func (AllDatesSelector) Description() string { return "All available dates" }

// RandomDaysSelector 随机选取 N 天, 种子固定时结果可复现。
type RandomDaysSelector struct {
	Count int
	Seed  int64
}

func (r RandomDaysSelector) Select(available []string) ([]string, error) {
	if r.Count <= 0 {
		return nil, fmt.Errorf("window: 随机天数必须大于0, 实际 %d", r.Count)
	}
	if len(available) <= r.Count {
		return append([]string(nil), available...), nil
	}

	shuffled := append([]string(nil), available...)
	rng := rand.New(rand.NewSource(r.Seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:r.Count], nil
}

func (r RandomDaysSelector) Description() string {
	return fmt.Sprintf("%d random days", r.Count)
}

package batch

import (
	"sort"
)

// Results 是一组模拟结果, 提供过滤与聚合。所有方法均不修改原集合。
type Results []Result

// ByStrategy 按策略名过滤。
func (rs Results) ByStrategy(name string) Results {
	return rs.Filter(func(r Result) bool { return r.Strategy == name })
}

// ByDate 按日期过滤。
func (rs Results) ByDate(date string) Results {
	return rs.Filter(func(r Result) bool { return r.Date == date })
}

// ByTime 按时间窗口过滤。
func (rs Results) ByTime(timeSpec string) Results {
	return rs.Filter(func(r Result) bool { return r.TimeSpec == timeSpec })
}

// Filter 按谓词过滤。
func (rs Results) Filter(pred func(Result) bool) Results {
	var out Results
	for _, r := range rs {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// Strategies 返回出现过的策略名(按出现顺序去重)。
func (rs Results) Strategies() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range rs {
		if _, ok := seen[r.Strategy]; ok {
			continue
		}
		seen[r.Strategy] = struct{}{}
		names = append(names, r.Strategy)
	}
	return names
}

// AvgMetric 求某指标的平均值, 集合为空或指标未知时返回 0。
func (rs Results) AvgMetric(name string) float64 {
	var total float64
	count := 0
	for _, r := range rs {
		if v, ok := r.Metrics.Value(name); ok {
			total += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// Best 返回某指标最小的结果(滑点类指标越小越好)。
func (rs Results) Best(name string) (Result, bool) {
	return rs.extreme(name, func(a, b float64) bool { return a < b })
}

// Worst 返回某指标最大的结果。
func (rs Results) Worst(name string) (Result, bool) {
	return rs.extreme(name, func(a, b float64) bool { return a > b })
}

func (rs Results) extreme(name string, better func(a, b float64) bool) (Result, bool) {
	found := false
	var best Result
	var bestValue float64

	for _, r := range rs {
		v, ok := r.Metrics.Value(name)
		if !ok {
			continue
		}
		if !found || better(v, bestValue) {
			found = true
			best = r
			bestValue = v
		}
	}
	return best, found
}

// Ranking 是一个策略在某指标上的平均表现。
type Ranking struct {
	Strategy string
	Value    float64
}

// StrategyRankings 按策略分组求某指标均值, 升序排列(越小越好)。
func (rs Results) StrategyRankings(name string) []Ranking {
	totals := make(map[string]float64)
	counts := make(map[string]int)

	for _, r := range rs {
		v, ok := r.Metrics.Value(name)
		if !ok {
			continue
		}
		totals[r.Strategy] += v
		counts[r.Strategy]++
	}

	rankings := make([]Ranking, 0, len(totals))
	for strat, total := range totals {
		rankings = append(rankings, Ranking{Strategy: strat, Value: total / float64(counts[strat])})
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Value != rankings[j].Value {
			return rankings[i].Value < rankings[j].Value
		}
		return rankings[i].Strategy < rankings[j].Strategy
	})
	return rankings
}

// sortStable 按策略、日期、时间窗口排序, 并行运行后保证输出稳定。
func (rs Results) sortStable() {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Strategy != rs[j].Strategy {
			return rs[i].Strategy < rs[j].Strategy
		}
		if rs[i].Date != rs[j].Date {
			return rs[i].Date < rs[j].Date
		}
		return rs[i].TimeSpec < rs[j].TimeSpec
	})
}

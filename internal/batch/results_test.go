package batch

import (
	"math"
	"testing"

	"execsim/internal/metrics"
)

func sampleResults() Results {
	return Results{
		{Strategy: "TWAP(4)", Date: "2025-06-02", TimeSpec: "market-open",
			Metrics: metrics.ExecutionMetrics{ArrivalPriceSlippage: 2.0, FillRatio: 1.0}},
		{Strategy: "TWAP(4)", Date: "2025-06-03", TimeSpec: "market-open",
			Metrics: metrics.ExecutionMetrics{ArrivalPriceSlippage: 4.0, FillRatio: 0.8}},
		{Strategy: "TWAP(8)", Date: "2025-06-02", TimeSpec: "market-open",
			Metrics: metrics.ExecutionMetrics{ArrivalPriceSlippage: 1.0, FillRatio: 0.9}},
		{Strategy: "TWAP(8)", Date: "2025-06-03", TimeSpec: "market-close",
			Metrics: metrics.ExecutionMetrics{ArrivalPriceSlippage: 5.0, FillRatio: 1.0}},
	}
}

func TestResultsFiltering(t *testing.T) {
	rs := sampleResults()

	if got := rs.ByStrategy("TWAP(4)"); len(got) != 2 {
		t.Errorf("ByStrategy = %d results, want 2", len(got))
	}
	if got := rs.ByDate("2025-06-02"); len(got) != 2 {
		t.Errorf("ByDate = %d results, want 2", len(got))
	}
	if got := rs.ByTime("market-close"); len(got) != 1 {
		t.Errorf("ByTime = %d results, want 1", len(got))
	}
	if got := rs.Filter(func(r Result) bool { return r.Metrics.FillRatio == 1.0 }); len(got) != 2 {
		t.Errorf("Filter = %d results, want 2", len(got))
	}
}

func TestResultsAvgMetric(t *testing.T) {
	rs := sampleResults()
	if got := rs.AvgMetric("arrival_price_slippage"); math.Abs(got-3.0) > 1e-9 {
		t.Errorf("avg slippage = %f, want 3.0", got)
	}
	if got := (Results{}).AvgMetric("arrival_price_slippage"); got != 0 {
		t.Errorf("avg of empty = %f, want 0", got)
	}
	if got := rs.AvgMetric("unknown_metric"); got != 0 {
		t.Errorf("avg of unknown metric = %f, want 0", got)
	}
}

func TestResultsBestWorst(t *testing.T) {
	rs := sampleResults()

	best, ok := rs.Best("arrival_price_slippage")
	if !ok {
		t.Fatalf("expected a best result")
	}
	if best.Strategy != "TWAP(8)" || best.Date != "2025-06-02" {
		t.Errorf("best = %s/%s", best.Strategy, best.Date)
	}

	worst, ok := rs.Worst("arrival_price_slippage")
	if !ok {
		t.Fatalf("expected a worst result")
	}
	if worst.Strategy != "TWAP(8)" || worst.Date != "2025-06-03" {
		t.Errorf("worst = %s/%s", worst.Strategy, worst.Date)
	}

	if _, ok := (Results{}).Best("arrival_price_slippage"); ok {
		t.Errorf("empty results must report no best")
	}
}

func TestStrategyRankings(t *testing.T) {
	rs := sampleResults()
	rankings := rs.StrategyRankings("arrival_price_slippage")
	if len(rankings) != 2 {
		t.Fatalf("got %d rankings, want 2", len(rankings))
	}
	// TWAP(4) averages 3.0, TWAP(8) also 3.0: tie broken by name.
	if rankings[0].Strategy != "TWAP(4)" {
		t.Errorf("first ranking = %s", rankings[0].Strategy)
	}
	for _, r := range rankings {
		if math.Abs(r.Value-3.0) > 1e-9 {
			t.Errorf("%s avg = %f, want 3.0", r.Strategy, r.Value)
		}
	}
}

func TestStrategiesDeduplicates(t *testing.T) {
	rs := sampleResults()
	names := rs.Strategies()
	if len(names) != 2 || names[0] != "TWAP(4)" || names[1] != "TWAP(8)" {
		t.Errorf("strategies = %v", names)
	}
}

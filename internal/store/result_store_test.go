package store

import (
	"context"
	"testing"
	"time"

	"execsim/internal/batch"
	"execsim/internal/config"
	"execsim/internal/metrics"
	"execsim/internal/order"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLite(config.DatabaseConfig{
		InMemory:     true,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndListRuns(t *testing.T) {
	rs, err := NewResultStore(newTestStore(t), nil)
	if err != nil {
		t.Fatalf("NewResultStore: %v", err)
	}

	results := batch.Results{
		{
			RunID:    "run-1",
			Strategy: "TWAP(4)",
			Date:     "2025-06-02",
			TimeSpec: "market-open",
			Fills: []order.Fill{
				{OrderID: "o1", Quantity: 250, RequestedQt: 250},
				{OrderID: "o2", Quantity: 250, RequestedQt: 250},
			},
			Metrics: metrics.ExecutionMetrics{ArrivalPriceSlippage: 2.5, FillRatio: 0.5},
			Elapsed: 120 * time.Millisecond,
		},
		{
			RunID:    "run-2",
			Strategy: "TWAP(8)",
			Date:     "2025-06-02",
			TimeSpec: "market-open",
			Metrics:  metrics.ExecutionMetrics{ArrivalPriceSlippage: 1.5, FillRatio: 1.0},
		},
	}

	if err := rs.SaveResults(context.Background(), results); err != nil {
		t.Fatalf("SaveResults: %v", err)
	}

	records, err := rs.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// Newest first.
	if records[0].RunID != "run-2" {
		t.Errorf("first record = %s, want run-2", records[0].RunID)
	}
	rec := records[1]
	if rec.Strategy != "TWAP(4)" || rec.FillCount != 2 || rec.FilledQty != 500 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Metrics.ArrivalPriceSlippage != 2.5 {
		t.Errorf("metrics round trip failed: %+v", rec.Metrics)
	}
	if rec.ElapsedMs != 120 {
		t.Errorf("elapsed = %d ms", rec.ElapsedMs)
	}
}

func TestListRunsRespectsLimit(t *testing.T) {
	rs, err := NewResultStore(newTestStore(t), nil)
	if err != nil {
		t.Fatalf("NewResultStore: %v", err)
	}

	var results batch.Results
	for i := 0; i < 5; i++ {
		results = append(results, batch.Result{
			RunID: "run", Strategy: "TWAP(4)", Date: "2025-06-02", TimeSpec: "full-day",
		})
	}
	if err := rs.SaveResults(context.Background(), results); err != nil {
		t.Fatalf("SaveResults: %v", err)
	}

	records, err := rs.ListRuns(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

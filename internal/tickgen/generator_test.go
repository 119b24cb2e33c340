package tickgen

import (
	"testing"
	"time"

	"execsim/internal/config"
	"execsim/internal/data"
)

func testCfg() config.TickGenConfig {
	return config.TickGenConfig{
		TicksPerMin: 8,
		SpreadMean:  0.0002,
		SpreadVol:   0.00005,
		VolNoise:    0.3,
		TrendWeight: 0.7,
		Seed:        42,
	}
}

func testCandles() []Candle {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	return []Candle{
		{Timestamp: base, Open: 100.0, High: 101.0, Low: 99.5, Close: 100.8, Volume: 5000},
		{Timestamp: base.Add(time.Minute), Open: 100.8, High: 101.2, Low: 100.2, Close: 100.4, Volume: 3000},
	}
}

func TestGenerateDayDeterministic(t *testing.T) {
	candles := testCandles()

	first := NewGenerator(testCfg()).GenerateDay(candles, 0)
	second := NewGenerator(testCfg()).GenerateDay(candles, 0)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("tick %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGenerateDayShape(t *testing.T) {
	candles := testCandles()
	ticks := NewGenerator(testCfg()).GenerateDay(candles, 0)

	if len(ticks) != 16 {
		t.Fatalf("got %d ticks, want 16 (8 per minute)", len(ticks))
	}

	var volume float64
	for i, tick := range ticks {
		if tick.Bid <= 0 || tick.Ask <= tick.Bid {
			t.Errorf("tick %d: bad quote bid=%f ask=%f", i, tick.Bid, tick.Ask)
		}
		if tick.TradePrice <= 0 {
			t.Errorf("tick %d: trade price %f", i, tick.TradePrice)
		}
		if tick.Side != "buy" && tick.Side != "sell" {
			t.Errorf("tick %d: side %q", i, tick.Side)
		}
		if i > 0 && tick.Timestamp.Before(ticks[i-1].Timestamp) {
			t.Errorf("tick %d: timestamps not monotonic", i)
		}
		volume += tick.Volume
	}

	// Volumes are floored per tick, so the day total can only fall short.
	if volume > 8000 || volume < 8000-16 {
		t.Errorf("total volume = %f, want near 8000", volume)
	}
}

func TestGenerateDayUsesTickTarget(t *testing.T) {
	candles := testCandles()
	ticks := NewGenerator(testCfg()).GenerateDay(candles, 100)

	// U-shape allocation keeps the total near the target.
	if len(ticks) < 80 || len(ticks) > 110 {
		t.Errorf("got %d ticks for target 100", len(ticks))
	}
}

func TestGenerateDayEmpty(t *testing.T) {
	if ticks := NewGenerator(testCfg()).GenerateDay(nil, 0); ticks != nil {
		t.Errorf("expected nil for empty candles, got %d ticks", len(ticks))
	}
}

func TestDayTickTargetScalesWithVolume(t *testing.T) {
	candles := testCandles()
	stats := Stats{AvgVolume: 4000}

	// Day average equals overall average, no scaling.
	if got := DayTickTarget(candles, stats, 8); got != 16 {
		t.Errorf("neutral target = %d, want 16", got)
	}

	// Quiet day clamps at the lower bound.
	if got := DayTickTarget(candles, Stats{AvgVolume: 1e9}, 8); got != 8 {
		t.Errorf("quiet target = %d, want 8", got)
	}

	// Busy day clamps at the upper bound.
	if got := DayTickTarget(candles, Stats{AvgVolume: 1}, 8); got != 32 {
		t.Errorf("busy target = %d, want 32", got)
	}

	// Unknown baseline falls back to ticks_per_min.
	if got := DayTickTarget(candles, Stats{}, 8); got != 16 {
		t.Errorf("fallback target = %d, want 16", got)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	if _, err := Analyze(nil); err == nil {
		t.Fatal("expected error for empty candles")
	}
}

func TestGroupByDayPreservesOrder(t *testing.T) {
	d1 := time.Date(2025, 6, 2, 23, 59, 0, 0, time.UTC)
	d2 := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	candles := []Candle{
		{Timestamp: d1}, {Timestamp: d2}, {Timestamp: d2.Add(time.Minute)},
	}

	dates, groups := GroupByDay(candles)
	if len(dates) != 2 || dates[0] != "2025-06-02" || dates[1] != "2025-06-03" {
		t.Fatalf("dates = %v", dates)
	}
	if len(groups["2025-06-03"]) != 2 {
		t.Errorf("group sizes = %d/%d", len(groups["2025-06-02"]), len(groups["2025-06-03"]))
	}
}

func TestWriteDayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	candles := testCandles()
	ticks := NewGenerator(testCfg()).GenerateDay(candles, 0)

	path, err := WriteDay(dir, "BTC/USDT", "2025-06-02", ticks)
	if err != nil {
		t.Fatalf("WriteDay: %v", err)
	}

	loaded, err := data.ReadTicks(path, nil)
	if err != nil {
		t.Fatalf("ReadTicks: %v", err)
	}
	if len(loaded) != len(ticks) {
		t.Fatalf("round trip lost ticks: wrote %d, read %d", len(ticks), len(loaded))
	}
	if !loaded[0].Timestamp.Equal(ticks[0].Timestamp) {
		t.Errorf("timestamp = %v, want %v", loaded[0].Timestamp, ticks[0].Timestamp)
	}
	if loaded[0].Bid != ticks[0].Bid || loaded[0].Side != ticks[0].Side {
		t.Errorf("first tick = %+v, want %+v", loaded[0], ticks[0])
	}
}

package order

import (
	"testing"
	"time"

	"execsim/internal/market"
)

func TestNewTemplateValidation(t *testing.T) {
	cases := []struct {
		name     string
		symbol   string
		quantity int
		side     market.Side
		duration time.Duration
		wantErr  bool
	}{
		{"valid", "BTC-USD", 10000, market.Buy, 30 * time.Minute, false},
		{"empty symbol", "", 10000, market.Buy, 30 * time.Minute, true},
		{"zero quantity", "BTC-USD", 0, market.Buy, 30 * time.Minute, true},
		{"negative quantity", "BTC-USD", -5, market.Sell, 30 * time.Minute, true},
		{"invalid side", "BTC-USD", 10000, market.Side("HOLD"), 30 * time.Minute, true},
		{"zero duration", "BTC-USD", 10000, market.Buy, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTemplate(tc.symbol, tc.quantity, tc.side, tc.duration)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTemplateMaterialize(t *testing.T) {
	tpl, err := NewTemplate("BTC-USD", 10000, market.Sell, time.Hour)
	if err != nil {
		t.Fatalf("NewTemplate: %v", err)
	}
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	o := tpl.Materialize("parent-1", start)
	if o.ID != "parent-1" {
		t.Errorf("order id = %s", o.ID)
	}
	if !o.StartTime.Equal(start) {
		t.Errorf("start = %v", o.StartTime)
	}
	if !o.EndTime.Equal(start.Add(time.Hour)) {
		t.Errorf("end = %v", o.EndTime)
	}
	if o.Duration() != time.Hour {
		t.Errorf("duration = %v", o.Duration())
	}
}

func TestDecisionConstructors(t *testing.T) {
	if d := NoAction(); !d.IsNoAction() {
		t.Fatalf("NoAction should be no-action")
	}

	if _, err := NewMarketDecision("o1", 0); err == nil {
		t.Errorf("market decision with zero qty should fail")
	}
	if _, err := NewMarketDecision("o1", -10); err == nil {
		t.Errorf("market decision with negative qty should fail")
	}
	d, err := NewMarketDecision("o1", 100)
	if err != nil {
		t.Fatalf("NewMarketDecision: %v", err)
	}
	if d.Type != MarketDecision || d.Quantity != 100 {
		t.Errorf("unexpected decision %+v", d)
	}

	if _, err := NewLimitDecision("o2", 100, 0); err == nil {
		t.Errorf("limit decision with zero price should fail")
	}
	if _, err := NewLimitDecision("o2", 0, 10.0); err == nil {
		t.Errorf("limit decision with zero qty should fail")
	}
	ld, err := NewLimitDecision("o2", 100, 10.01)
	if err != nil {
		t.Fatalf("NewLimitDecision: %v", err)
	}
	if ld.Type != LimitDecision || ld.LimitPrice != 10.01 {
		t.Errorf("unexpected decision %+v", ld)
	}
}

func TestFillRemainingQuantity(t *testing.T) {
	f := Fill{Quantity: 300, RequestedQt: 500, IsPartial: true}
	if got := f.RemainingQuantity(); got != 200 {
		t.Errorf("remaining = %d, want 200", got)
	}
	full := Fill{Quantity: 500, RequestedQt: 500}
	if got := full.RemainingQuantity(); got != 0 {
		t.Errorf("remaining = %d, want 0", got)
	}
}

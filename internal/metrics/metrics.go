package metrics

// ExecutionMetrics 汇总一次执行的滑点与质量指标。
// 滑点均以基点计, 正值为成本, 负值为改善。
type ExecutionMetrics struct {
	// 滑点
	ArrivalPriceSlippage  float64 `json:"arrival_price_slippage"`
	DecisionPriceSlippage float64 `json:"decision_price_slippage"`
	VWAPSlippage          float64 `json:"vwap_slippage"`
	MidPriceSlippage      float64 `json:"mid_price_slippage"`

	// 执行质量
	ImplementationShortfall float64 `json:"implementation_shortfall"`
	FillRatio               float64 `json:"fill_ratio"`
	FillEfficiency          float64 `json:"fill_efficiency"`
	ImmediateExecutionRatio float64 `json:"immediate_execution_ratio"`
	AvgAmendmentsPerOrder   float64 `json:"avg_amendments_per_order"`

	// 参考价
	ArrivalPrice  float64 `json:"arrival_price"`
	ExecutionVWAP float64 `json:"execution_vwap"`
	MarketVWAP    float64 `json:"market_vwap"`
	MarketMidVWAP float64 `json:"market_mid_vwap"`
}

// Value 按名称取指标值, 供排名与报表使用。
func (m ExecutionMetrics) Value(name string) (float64, bool) {
	switch name {
	case "arrival_price_slippage":
		return m.ArrivalPriceSlippage, true
	case "decision_price_slippage":
		return m.DecisionPriceSlippage, true
	case "vwap_slippage":
		return m.VWAPSlippage, true
	case "mid_price_slippage":
		return m.MidPriceSlippage, true
	case "implementation_shortfall":
		return m.ImplementationShortfall, true
	case "fill_ratio":
		return m.FillRatio, true
	case "fill_efficiency":
		return m.FillEfficiency, true
	case "immediate_execution_ratio":
		return m.ImmediateExecutionRatio, true
	case "avg_amendments_per_order":
		return m.AvgAmendmentsPerOrder, true
	case "arrival_price":
		return m.ArrivalPrice, true
	case "execution_vwap":
		return m.ExecutionVWAP, true
	case "market_vwap":
		return m.MarketVWAP, true
	case "market_mid_vwap":
		return m.MarketMidVWAP, true
	}
	return 0, false
}

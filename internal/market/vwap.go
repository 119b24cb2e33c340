package market

// PriceVolume 表示一个价格档位及其可成交量。
type PriceVolume struct {
	Price  float64
	Volume float64
}

// VWAP 计算一组价格档位的成交量加权均价, 总量为 0 时返回 0。
func VWAP(levels []PriceVolume) float64 {
	var totalValue, totalVolume float64
	for _, lv := range levels {
		totalValue += lv.Price * lv.Volume
		totalVolume += lv.Volume
	}
	if totalVolume <= 0 {
		return 0
	}
	return totalValue / totalVolume
}

// LinearVWAP 假设从最优价到 touch+depth 线性吃单, 均价即中点。
func LinearVWAP(touchPrice, depth float64) float64 {
	return touchPrice + depth/2.0
}

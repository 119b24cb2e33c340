package tickgen

import (
	"math"
	"math/rand"
	"time"

	"execsim/internal/config"
	"execsim/internal/market"
)

// Generator 基于K线生成确定性的合成 tick 数据。
// 同一种子与输入产生完全相同的序列。
type Generator struct {
	cfg config.TickGenConfig
	rng *rand.Rand
}

// NewGenerator 创建 Generator, 随机源由配置的种子初始化。
func NewGenerator(cfg config.TickGenConfig) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// GenerateDay 为一天的K线生成合成 tick。totalTicks 为当日目标数量,
// 非正数时退化为每分钟固定 ticks_per_min 条。
func (g *Generator) GenerateDay(candles []Candle, totalTicks int) []market.Tick {
	if len(candles) == 0 {
		return nil
	}

	perMinute := g.distributeTicks(len(candles), totalTicks)

	var ticks []market.Tick
	for i, candle := range candles {
		n := perMinute[i]
		mids := g.midPath(candle, n)
		volumes := g.allocateVolumes(candle.Volume, n)
		step := time.Minute / time.Duration(n)

		bullish := candle.Close > candle.Open

		for j := 0; j < n; j++ {
			mid := mids[j]
			bid, ask := g.quote(mid)
			side, tradePrice := g.trade(bid, ask, bullish)

			ticks = append(ticks, market.Tick{
				Timestamp:  candle.Timestamp.Add(time.Duration(j) * step),
				Bid:        round4(bid),
				Ask:        round4(ask),
				TradePrice: round4(tradePrice),
				Volume:     math.Floor(volumes[j]),
				Side:       side,
			})
		}
	}

	return ticks
}

// distributeTicks 按 U 形日内活跃度曲线分配每分钟的 tick 数量。
// 开盘与收盘附近活跃, 盘中回落。
func (g *Generator) distributeTicks(minutes, totalTicks int) []int {
	counts := make([]int, minutes)
	if totalTicks <= 0 {
		for i := range counts {
			counts[i] = g.cfg.TicksPerMin
		}
		return counts
	}

	weights := make([]float64, minutes)
	sum := 0.0
	for i := range weights {
		t := float64(i) / float64(minutes)
		w := 3.0*math.Exp(-10*t) + 3.0*math.Exp(-10*(1-t)) + 1.0
		w *= 1.0 + 0.1*g.rng.NormFloat64()
		if w < 0.1 {
			w = 0.1
		}
		weights[i] = w
		sum += w
	}

	for i, w := range weights {
		n := int(w / sum * float64(totalTicks))
		if n < 1 {
			n = 1
		}
		counts[i] = n
	}
	return counts
}

// midPath 在开盘价与收盘价之间生成带噪声的中间价路径, 并截断在K线高低区间内。
func (g *Generator) midPath(candle Candle, n int) []float64 {
	mids := make([]float64, n)
	delta := candle.Close - candle.Open
	noiseScale := (candle.High - candle.Low) / 200

	for i := 0; i < n; i++ {
		frac := 0.0
		if n > 1 {
			frac = float64(i) / float64(n-1)
		}
		mid := candle.Open + delta*frac
		mid += g.cfg.TrendWeight * delta * frac
		mid += g.rng.NormFloat64() * noiseScale

		if mid < candle.Low {
			mid = candle.Low
		}
		if mid > candle.High {
			mid = candle.High
		}
		mids[i] = mid
	}
	return mids
}

// allocateVolumes 将K线成交量随机分摊到各 tick。
func (g *Generator) allocateVolumes(total float64, n int) []float64 {
	weights := make([]float64, n)
	sum := 0.0
	for i := range weights {
		w := math.Abs(1 + g.cfg.VolNoise*g.rng.NormFloat64())
		weights[i] = w
		sum += w
	}

	volumes := make([]float64, n)
	if sum <= 0 {
		return volumes
	}
	for i, w := range weights {
		volumes[i] = w / sum * total
	}
	return volumes
}

// quote 围绕中间价生成买卖报价。
func (g *Generator) quote(mid float64) (bid, ask float64) {
	pct := g.cfg.SpreadMean + g.cfg.SpreadVol*g.rng.NormFloat64()
	if pct <= 0 {
		pct = g.cfg.SpreadMean
	}
	spread := mid * pct
	return mid - spread/2, mid + spread/2
}

// trade 决定成交方向与价格, 阳线时买方主动概率上调。
func (g *Generator) trade(bid, ask float64, bullish bool) (string, float64) {
	probBuy := 0.45
	if bullish {
		probBuy = 0.55
	}

	jitter := 0.999 + 0.002*g.rng.Float64()
	if g.rng.Float64() < probBuy {
		return "buy", ask * jitter
	}
	return "sell", bid * jitter
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

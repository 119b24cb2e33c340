package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"execsim/internal/batch"
)

// rankMetric 是对比表用于标记最优结果的指标。
const rankMetric = "arrival_price_slippage"

// WriteTable 将结果渲染为对齐的对比表, 到场滑点最低的行以 * 标记。
func WriteTable(w io.Writer, results batch.Results) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "没有可用的模拟结果")
		return err
	}

	best, hasBest := results.Best(rankMetric)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tDATE\tTIME\tFILLS\tFILLED\tARRIVAL BPS\tVWAP BPS\tFILL RATIO\tAMEND/ORD\t")

	for _, r := range results {
		marker := ""
		if hasBest && r.RunID == best.RunID {
			marker = " *"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%d\t%d\t%.2f\t%.2f\t%.2f%%\t%.2f\t\n",
			r.Strategy, marker, r.Date, r.TimeSpec,
			len(r.Fills), r.FilledQuantity(),
			r.Metrics.ArrivalPriceSlippage,
			r.Metrics.VWAPSlippage,
			r.Metrics.FillRatio*100,
			r.Metrics.AvgAmendmentsPerOrder)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("report: 渲染对比表失败: %w", err)
	}

	rankings := results.StrategyRankings(rankMetric)
	if len(rankings) > 1 {
		fmt.Fprintln(w, "\n策略排名 (平均到场滑点, 越低越好):")
		for i, rank := range rankings {
			fmt.Fprintf(w, "  %d. %s: %.2f bps\n", i+1, rank.Strategy, rank.Value)
		}
	}

	return nil
}

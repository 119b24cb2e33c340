package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"execsim/internal/batch"
)

// WriteCSV 将结果导出为 CSV。
func WriteCSV(w io.Writer, results batch.Results) error {
	cw := csv.NewWriter(w)

	header := []string{
		"run_id", "strategy", "date", "time_spec", "fill_count", "filled_qty",
		"arrival_price_slippage", "decision_price_slippage", "vwap_slippage", "mid_price_slippage",
		"implementation_shortfall", "fill_ratio", "fill_efficiency",
		"immediate_execution_ratio", "avg_amendments_per_order",
		"arrival_price", "execution_vwap", "market_vwap", "market_mid_vwap",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: 写入 CSV 表头失败: %w", err)
	}

	for _, r := range results {
		m := r.Metrics
		row := []string{
			r.RunID, r.Strategy, r.Date, r.TimeSpec,
			strconv.Itoa(len(r.Fills)), strconv.Itoa(r.FilledQuantity()),
			formatFloat(m.ArrivalPriceSlippage), formatFloat(m.DecisionPriceSlippage),
			formatFloat(m.VWAPSlippage), formatFloat(m.MidPriceSlippage),
			formatFloat(m.ImplementationShortfall), formatFloat(m.FillRatio),
			formatFloat(m.FillEfficiency), formatFloat(m.ImmediateExecutionRatio),
			formatFloat(m.AvgAmendmentsPerOrder),
			formatFloat(m.ArrivalPrice), formatFloat(m.ExecutionVWAP),
			formatFloat(m.MarketVWAP), formatFloat(m.MarketMidVWAP),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("report: 写入 CSV 行失败: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: 导出 CSV 失败: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// jsonResult 是 JSON 导出的行结构。
type jsonResult struct {
	RunID     string      `json:"run_id"`
	Strategy  string      `json:"strategy"`
	Date      string      `json:"date"`
	TimeSpec  string      `json:"time_spec"`
	FillCount int         `json:"fill_count"`
	FilledQty int         `json:"filled_qty"`
	ElapsedMs int64       `json:"elapsed_ms"`
	Metrics   interface{} `json:"metrics"`
}

// WriteJSON 将结果导出为 JSON 数组。
func WriteJSON(w io.Writer, results batch.Results) error {
	rows := make([]jsonResult, 0, len(results))
	for _, r := range results {
		rows = append(rows, jsonResult{
			RunID:     r.RunID,
			Strategy:  r.Strategy,
			Date:      r.Date,
			TimeSpec:  r.TimeSpec,
			FillCount: len(r.Fills),
			FilledQty: r.FilledQuantity(),
			ElapsedMs: r.Elapsed.Milliseconds(),
			Metrics:   r.Metrics,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("report: 导出 JSON 失败: %w", err)
	}
	return nil
}

// Export 按配置的格式将结果写入输出目录, 返回生成的文件路径。
func Export(dir string, formats []string, results batch.Results) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: 创建输出目录失败: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102_150405")
	var written []string

	for _, format := range formats {
		var path string
		var write func(io.Writer, batch.Results) error

		switch format {
		case "csv":
			path = filepath.Join(dir, fmt.Sprintf("results_%s.csv", stamp))
			write = WriteCSV
		case "json":
			path = filepath.Join(dir, fmt.Sprintf("results_%s.json", stamp))
			write = WriteJSON
		case "table":
			continue // 对比表输出到终端, 不落盘
		default:
			return written, fmt.Errorf("report: 不支持的导出格式 %q", format)
		}

		f, err := os.Create(path)
		if err != nil {
			return written, fmt.Errorf("report: 创建导出文件失败: %w", err)
		}
		if err := write(f, results); err != nil {
			_ = f.Close()
			return written, err
		}
		if err := f.Close(); err != nil {
			return written, fmt.Errorf("report: 关闭导出文件失败: %w", err)
		}
		written = append(written, path)
	}

	return written, nil
}

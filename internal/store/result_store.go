package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"execsim/internal/batch"
	"execsim/internal/metrics"
)

// ResultStore 持久化批量回测结果。
type ResultStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// RunRecord 是数据库中的一条模拟记录。
type RunRecord struct {
	ID        int64
	RunID     string
	Strategy  string
	Date      string
	TimeSpec  string
	FillCount int
	FilledQty int
	ElapsedMs int64
	Metrics   metrics.ExecutionMetrics
	CreatedAt time.Time
}

// NewResultStore 初始化结果存储, 创建所需表结构。
func NewResultStore(store *Store, logger *zap.Logger) (*ResultStore, error) {
	if store == nil {
		return nil, fmt.Errorf("store: store 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rs := &ResultStore{db: store.DB(), logger: logger}
	if err := rs.initSchema(); err != nil {
		return nil, err
	}
	return rs, nil
}

func (rs *ResultStore) initSchema() error {
	stmt := `
CREATE TABLE IF NOT EXISTS simulation_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	strategy TEXT NOT NULL,
	date TEXT NOT NULL,
	time_spec TEXT NOT NULL,
	fill_count INTEGER NOT NULL,
	filled_qty INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	metrics TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_simulation_runs_strategy ON simulation_runs(strategy);
CREATE INDEX IF NOT EXISTS idx_simulation_runs_date ON simulation_runs(date);
`
	if _, err := rs.db.Exec(stmt); err != nil {
		return fmt.Errorf("store: 初始化表失败: %w", err)
	}
	return nil
}

// SaveResults 写入一批模拟结果。
func (rs *ResultStore) SaveResults(ctx context.Context, results batch.Results) error {
	for _, result := range results {
		if err := rs.save(ctx, result); err != nil {
			return err
		}
	}
	rs.logger.Info("批量回测结果已持久化", zap.Int("rows", len(results)))
	return nil
}

func (rs *ResultStore) save(ctx context.Context, result batch.Result) error {
	payload, err := json.Marshal(result.Metrics)
	if err != nil {
		return fmt.Errorf("store: 序列化指标失败: %w", err)
	}

	_, err = rs.db.ExecContext(ctx,
		`INSERT INTO simulation_runs
		(run_id, strategy, date, time_spec, fill_count, filled_qty, elapsed_ms, metrics, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.Strategy, result.Date, result.TimeSpec,
		len(result.Fills), result.FilledQuantity(), result.Elapsed.Milliseconds(),
		string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: 写入模拟结果失败: %w", err)
	}
	return nil
}

// ListRuns 按时间倒序列出最近的模拟记录。
func (rs *ResultStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := rs.db.QueryContext(ctx,
		`SELECT id, run_id, strategy, date, time_spec, fill_count, filled_qty, elapsed_ms, metrics, created_at
		FROM simulation_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: 查询模拟记录失败: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var payload, createdAt string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Strategy, &rec.Date, &rec.TimeSpec,
			&rec.FillCount, &rec.FilledQty, &rec.ElapsedMs, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("store: 解析模拟记录失败: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.Metrics); err != nil {
			return nil, fmt.Errorf("store: 解析指标失败: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

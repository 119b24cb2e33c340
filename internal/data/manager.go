package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"execsim/internal/market"
)

// Manager 管理一个 tick 数据目录, 布局为 <root>/<SYMBOL>/<YYYY-MM-DD>.csv。
// 已加载的交易日缓存在内存中, 并发批量回测下只读共享。
type Manager struct {
	root   string
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string][]market.Tick
}

// NewManager 创建数据管理器, 目录不存在时报错。
func NewManager(root string, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("data: 数据目录不可用: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data: %s 不是目录", root)
	}
	return &Manager{
		root:   root,
		logger: logger,
		cache:  make(map[string][]market.Tick),
	}, nil
}

// Symbols 列出有数据的标的。
func (m *Manager) Symbols() ([]string, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil, fmt.Errorf("data: 读取数据目录失败: %w", err)
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Dates 列出某标的的可用交易日(升序)。
func (m *Manager) Dates(symbol string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(m.root, symbol))
	if err != nil {
		return nil, fmt.Errorf("data: 读取标的 %s 的数据目录失败: %w", symbol, err)
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(name, ".csv"))
	}
	sort.Strings(dates)
	return dates, nil
}

// Load 加载某标的某交易日的全部 tick, 结果缓存且调用方不得修改。
func (m *Manager) Load(symbol, date string) ([]market.Tick, error) {
	key := symbol + "/" + date

	m.mu.Lock()
	if ticks, ok := m.cache[key]; ok {
		m.mu.Unlock()
		return ticks, nil
	}
	m.mu.Unlock()

	path := filepath.Join(m.root, symbol, date+".csv")
	ticks, err := ReadTicks(path, m.logger)
	if err != nil {
		return nil, err
	}
	if len(ticks) == 0 {
		return nil, fmt.Errorf("data: %s 在 %s 没有有效 tick 数据", symbol, date)
	}

	m.mu.Lock()
	m.cache[key] = ticks
	m.mu.Unlock()

	m.logger.Info("加载交易日数据",
		zap.String("symbol", symbol),
		zap.String("date", date),
		zap.Int("ticks", len(ticks)))

	return ticks, nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了回测系统运行所需的全部配置项。
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Data      DataConfig      `mapstructure:"data"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Order     OrderConfig     `mapstructure:"order"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Report    ReportConfig    `mapstructure:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	TickGen   TickGenConfig   `mapstructure:"tickgen"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// DataConfig 描述历史 tick 数据目录。
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// SimulatorConfig 控制撮合模拟器行为。
type SimulatorConfig struct {
	MaxParticipationRate float64       `mapstructure:"max_participation_rate"`
	DepthFactor          float64       `mapstructure:"depth_factor"`
	Latency              time.Duration `mapstructure:"latency"`
	Seed                 int64         `mapstructure:"seed"`
}

// OrderConfig 描述母单模板。
type OrderConfig struct {
	Symbol   string        `mapstructure:"symbol"`
	Quantity int           `mapstructure:"quantity"`
	Side     string        `mapstructure:"side"`
	Duration time.Duration `mapstructure:"duration"`
}

// StrategyConfig 描述一个待回测的策略及其参数。
type StrategyConfig struct {
	Name   string                 `mapstructure:"name"`
	Params map[string]interface{} `mapstructure:"params"`
}

// BatchConfig 控制批量回测的笛卡尔积与并发。
type BatchConfig struct {
	Strategies []StrategyConfig `mapstructure:"strategies"`
	Times      []string         `mapstructure:"times"`
	Dates      []string         `mapstructure:"dates"`
	Parallel   bool             `mapstructure:"parallel"`
	MaxWorkers int              `mapstructure:"max_workers"`
}

// DatabaseConfig 管理结果数据库连接。
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// ReportConfig 控制结果导出。
type ReportConfig struct {
	Formats   []string `mapstructure:"formats"`
	OutputDir string   `mapstructure:"output_dir"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// RetryConfig 统一控制交易所调用的重试机制。
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	MinDelay    time.Duration `mapstructure:"min_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// TickGenConfig 控制合成 tick 数据生成。
type TickGenConfig struct {
	Exchange    string      `mapstructure:"exchange"`
	Markets     []string    `mapstructure:"markets"`
	Timeframe   string      `mapstructure:"timeframe"`
	Days        int         `mapstructure:"days"`
	TicksPerMin int         `mapstructure:"ticks_per_min"`
	SpreadMean  float64     `mapstructure:"spread_mean"`
	SpreadVol   float64     `mapstructure:"spread_vol"`
	VolNoise    float64     `mapstructure:"vol_noise"`
	TrendWeight float64     `mapstructure:"trend_weight"`
	Seed        int64       `mapstructure:"seed"`
	OutputDir   string      `mapstructure:"output_dir"`
	Retry       RetryConfig `mapstructure:"retry"`
}

var validReportFormats = map[string]bool{
	"table": true,
	"csv":   true,
	"json":  true,
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Data.Dir == "" {
		err = multierr.Append(err, errors.New("data.dir 不能为空"))
	}
	if c.Simulator.MaxParticipationRate <= 0 || c.Simulator.MaxParticipationRate > 1 {
		err = multierr.Append(err, errors.New("simulator.max_participation_rate 必须位于(0,1]"))
	}
	if c.Simulator.DepthFactor <= 0 {
		err = multierr.Append(err, errors.New("simulator.depth_factor 必须大于0"))
	}
	if c.Simulator.Latency < 0 {
		err = multierr.Append(err, errors.New("simulator.latency 不能为负"))
	}
	if c.Order.Symbol == "" {
		err = multierr.Append(err, errors.New("order.symbol 不能为空"))
	}
	if c.Order.Quantity <= 0 {
		err = multierr.Append(err, errors.New("order.quantity 必须大于0"))
	}
	side := strings.ToUpper(c.Order.Side)
	if side != "BUY" && side != "SELL" {
		err = multierr.Append(err, errors.New("order.side 必须为 BUY 或 SELL"))
	}
	if c.Order.Duration <= 0 {
		err = multierr.Append(err, errors.New("order.duration 必须大于0"))
	}
	if len(c.Batch.Strategies) == 0 {
		err = multierr.Append(err, errors.New("batch.strategies 至少配置一个策略"))
	}
	for i, s := range c.Batch.Strategies {
		if s.Name == "" {
			err = multierr.Append(err, fmt.Errorf("batch.strategies[%d].name 不能为空", i))
		}
	}
	if c.Batch.Parallel && c.Batch.MaxWorkers <= 0 {
		err = multierr.Append(err, errors.New("batch.max_workers 在并行模式下必须大于0"))
	}
	if c.Database.Enabled {
		if c.Database.Path == "" && !c.Database.InMemory {
			err = multierr.Append(err, errors.New("database.path 不能为空"))
		}
		if c.Database.MaxOpenConns <= 0 {
			err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
		}
		if c.Database.MaxIdleConns < 0 {
			err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
		}
		if c.Database.ConnMaxLifetime < 0 {
			err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
		}
	}
	for _, format := range c.Report.Formats {
		if !validReportFormats[strings.ToLower(format)] {
			err = multierr.Append(err, fmt.Errorf("report.formats 不支持 %q", format))
		}
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}
	err = multierr.Append(err, c.validateTickGen())

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}

func (c *Config) validateTickGen() error {
	var err error

	if c.TickGen.Exchange == "" {
		err = multierr.Append(err, errors.New("tickgen.exchange 不能为空"))
	}
	if c.TickGen.Timeframe == "" {
		err = multierr.Append(err, errors.New("tickgen.timeframe 不能为空"))
	}
	if c.TickGen.Days <= 0 {
		err = multierr.Append(err, errors.New("tickgen.days 必须大于0"))
	}
	if c.TickGen.TicksPerMin <= 0 {
		err = multierr.Append(err, errors.New("tickgen.ticks_per_min 必须大于0"))
	}
	if c.TickGen.SpreadMean <= 0 {
		err = multierr.Append(err, errors.New("tickgen.spread_mean 必须大于0"))
	}
	if c.TickGen.SpreadVol < 0 {
		err = multierr.Append(err, errors.New("tickgen.spread_vol 不能为负"))
	}
	if c.TickGen.VolNoise < 0 || c.TickGen.VolNoise > 1 {
		err = multierr.Append(err, errors.New("tickgen.vol_noise 必须位于[0,1]"))
	}
	if c.TickGen.TrendWeight < 0 || c.TickGen.TrendWeight > 1 {
		err = multierr.Append(err, errors.New("tickgen.trend_weight 必须位于[0,1]"))
	}
	if c.TickGen.OutputDir == "" {
		err = multierr.Append(err, errors.New("tickgen.output_dir 不能为空"))
	}
	if c.TickGen.Retry.MaxAttempts <= 0 {
		err = multierr.Append(err, errors.New("tickgen.retry.max_attempts 必须大于0"))
	}
	if c.TickGen.Retry.MinDelay <= 0 || c.TickGen.Retry.MaxDelay <= 0 {
		err = multierr.Append(err, errors.New("tickgen.retry.delay 必须为正"))
	}
	if c.TickGen.Retry.MinDelay > c.TickGen.Retry.MaxDelay {
		err = multierr.Append(err, errors.New("tickgen.retry.min_delay 不能大于 max_delay"))
	}

	return err
}

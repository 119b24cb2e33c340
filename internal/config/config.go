package config

import (
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "configs/config.yaml"
	envPrefix         = "execsim"
)

// Load 读取配置文件并结合环境变量返回 Config。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = defaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("未找到配置文件 %q: %w", path, err)
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")

	v.SetDefault("data.dir", "data/ticks")

	v.SetDefault("simulator.max_participation_rate", 0.5)
	v.SetDefault("simulator.depth_factor", 0.5)
	v.SetDefault("simulator.latency", "0s")
	v.SetDefault("simulator.seed", 0)

	v.SetDefault("order.symbol", "BTC-USD")
	v.SetDefault("order.quantity", 10000)
	v.SetDefault("order.side", "BUY")
	v.SetDefault("order.duration", "30m")

	v.SetDefault("batch.times", []string{"full-day"})
	v.SetDefault("batch.dates", []string{"latest"})
	v.SetDefault("batch.parallel", false)
	v.SetDefault("batch.max_workers", 4)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.path", "data/execsim.db")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 4)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.in_memory", false)

	v.SetDefault("report.formats", []string{"table"})
	v.SetDefault("report.output_dir", "reports")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})

	v.SetDefault("tickgen.exchange", "binance")
	v.SetDefault("tickgen.markets", []string{"BTC-USDT"})
	v.SetDefault("tickgen.timeframe", "1m")
	v.SetDefault("tickgen.days", 1)
	v.SetDefault("tickgen.ticks_per_min", 8)
	v.SetDefault("tickgen.spread_mean", 0.0002)
	v.SetDefault("tickgen.spread_vol", 0.00005)
	v.SetDefault("tickgen.vol_noise", 0.3)
	v.SetDefault("tickgen.trend_weight", 0.7)
	v.SetDefault("tickgen.seed", 42)
	v.SetDefault("tickgen.output_dir", "data/ticks")
	v.SetDefault("tickgen.retry.max_attempts", 5)
	v.SetDefault("tickgen.retry.min_delay", "500ms")
	v.SetDefault("tickgen.retry.max_delay", "5s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

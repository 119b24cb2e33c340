package strategy

import (
	"fmt"
	"sort"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"

	"execsim/internal/sim"
)

// ParameterInfo 描述策略的一个可配置参数。
type ParameterInfo struct {
	Name        string
	Type        string
	Description string
	Default     string
}

// Info 是注册表中一个策略的元信息。
type Info struct {
	Name        string
	Description string
	Parameters  []ParameterInfo
}

// Factory 按参数表创建一个全新的策略实例。
type Factory func(params map[string]interface{}, logger *zap.Logger) (sim.Strategy, error)

type entry struct {
	info    Info
	factory Factory
}

// Registry 维护可用执行策略的显式注册表。
// 每次 Create 返回全新实例, 并行批量回测依赖这一点。
type Registry struct {
	entries map[string]entry
}

// NewRegistry 创建注册表并登记内置策略。
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]entry)}
	r.register(twapInfo(), newTWAPFromParams)
	return r
}

func (r *Registry) register(info Info, factory Factory) {
	r.entries[info.Name] = entry{info: info, factory: factory}
}

// Has 报告策略是否已注册。
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Create 按名称与参数创建策略实例。
func (r *Registry) Create(name string, params map[string]interface{}, logger *zap.Logger) (sim.Strategy, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("strategy: 未注册的策略 %q", name)
	}
	strat, err := e.factory(params, logger)
	if err != nil {
		return nil, fmt.Errorf("strategy: 创建策略 %q 失败: %w", name, err)
	}
	return strat, nil
}

// List 返回按名称排序的策略元信息。
func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.entries))
	for _, e := range r.entries {
		infos = append(infos, e.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func twapInfo() Info {
	return Info{
		Name:        "TWAP",
		Description: "时间加权均价执行, 将母单均匀切分到等长时间片",
		Parameters: []ParameterInfo{
			{Name: "number_of_slices", Type: "int", Description: "切片数量"},
			{Name: "order_type", Type: "string", Description: "MARKET / LIMIT_AGGRESSIVE / LIMIT_PASSIVE", Default: "MARKET"},
			{Name: "aggressiveness_bps", Type: "float", Description: "LIMIT_AGGRESSIVE 模式下穿越买一卖一的基点数", Default: "0"},
		},
	}
}

type twapParams struct {
	NumberOfSlices    int     `mapstructure:"number_of_slices"`
	OrderType         string  `mapstructure:"order_type"`
	AggressivenessBps float64 `mapstructure:"aggressiveness_bps"`
}

func newTWAPFromParams(params map[string]interface{}, logger *zap.Logger) (sim.Strategy, error) {
	var p twapParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	orderType, err := ParseOrderType(p.OrderType)
	if err != nil {
		return nil, err
	}
	return NewTWAP(p.NumberOfSlices, orderType, p.AggressivenessBps, logger)
}

func decodeParams(params map[string]interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("构建参数解码器失败: %w", err)
	}
	if err := decoder.Decode(params); err != nil {
		return fmt.Errorf("解析策略参数失败: %w", err)
	}
	return nil
}

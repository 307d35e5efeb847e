package config

import (
	"fmt"
	"math"
	"time"

	"github.com/tsinghua-fib-lab/greensplit/entity"
	"gopkg.in/yaml.v2"
)

// 默认值
const (
	DefaultIntersection   = "intersection_1_1"
	DefaultCycleLength    = 240.
	DefaultSaturationRate = 0.5
	DefaultSolveTimeout   = 5 * time.Second
)

// Load 严格解析YAML配置，未知字段视为错误
func Load(data []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, fmt.Errorf("%w: %v", entity.ErrConfiguration, err)
	}
	return c, nil
}

// RuntimeConfig 运行时配置
// 功能：存储补全默认值并校验后的配置
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 优化控制配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：补全默认值并校验配置
// 参数：config-原始配置对象
// 返回：运行时配置指针，配置非法时返回ErrConfiguration
// 算法说明：
// 1. 未指定的路口、周期、饱和流率、超时使用默认值
// 2. 车流与路网必须各有一个数据来源，使用MongoDB时必须提供uri
// 3. 周期长度与饱和流率必须为正数
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	c := config.Control
	if c.Intersection == "" {
		c.Intersection = DefaultIntersection
	}
	if c.CycleLength == 0 {
		c.CycleLength = DefaultCycleLength
	}
	if c.SaturationRate == 0 {
		c.SaturationRate = DefaultSaturationRate
	}
	if c.SolveTimeout == 0 {
		c.SolveTimeout = DefaultSolveTimeout
	}
	config.Control = c

	for name, p := range map[string]InputPath{"flow": config.Input.Flow, "roadnet": config.Input.Roadnet} {
		if p.Empty() {
			return nil, fmt.Errorf("%w: input.%s must specify file or db+col", entity.ErrConfiguration, name)
		}
		if p.File == "" && config.Input.URI == "" {
			return nil, fmt.Errorf("%w: input.%s reads from mongodb but input.uri is empty", entity.ErrConfiguration, name)
		}
	}
	if err := CheckParams(c.CycleLength, c.SaturationRate); err != nil {
		return nil, err
	}
	if c.SolveTimeout < 0 {
		return nil, fmt.Errorf("%w: negative solve_timeout %v", entity.ErrConfiguration, c.SolveTimeout)
	}
	return &RuntimeConfig{All: config, C: c}, nil
}

// CheckParams 校验运行参数：周期长度与饱和流率必须为有限正数
func CheckParams(cycleLength, saturationRate float64) error {
	if math.IsNaN(cycleLength) || math.IsInf(cycleLength, 0) || cycleLength <= 0 {
		return fmt.Errorf("%w: cycle length must be positive, got %v", entity.ErrConfiguration, cycleLength)
	}
	if math.IsNaN(saturationRate) || math.IsInf(saturationRate, 0) || saturationRate <= 0 {
		return fmt.Errorf("%w: saturation rate must be positive, got %v", entity.ErrConfiguration, saturationRate)
	}
	return nil
}

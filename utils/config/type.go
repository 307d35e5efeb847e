package config

import "time"

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：File优先级高于MongoDB
type InputPath struct {
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
	File string `yaml:"file,omitempty"` // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// Empty 未指定任何数据来源
func (p InputPath) Empty() bool {
	return p.File == "" && (p.DB == "" || p.Col == "")
}

func (p InputPath) String() string {
	if p.File != "" {
		return p.File
	}
	return p.DB + "." + p.Col
}

// Input 指定所有输入数据的配置项
type Input struct {
	URI     string    `yaml:"uri,omitempty"` // MongoDB连接字符串
	Flow    InputPath `yaml:"flow"`          // 车流
	Roadnet InputPath `yaml:"roadnet"`       // 路网
}

// ControlWindow 需求统计时间窗口（秒），0/0表示全部记录
type ControlWindow struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// Control 优化控制配置
// 功能：定义单次优化的核心参数
// 说明：cycle_length与saturation_rate可以在每次运行时被调用方覆盖
type Control struct {
	Intersection   string        `yaml:"intersection"`            // 待优化的路口ID
	CycleLength    float64       `yaml:"cycle_length"`            // 周期长度（秒）
	SaturationRate float64       `yaml:"saturation_rate"`         // 饱和流率（辆/秒/相位）
	SolveTimeout   time.Duration `yaml:"solve_timeout,omitempty"` // 线性规划求解超时
	Window         ControlWindow `yaml:"window,omitempty"`
}

// Output 结果输出配置
type Output struct {
	File string `yaml:"file,omitempty"` // 按扩展名选择格式：.json .yaml .msgpack
}

// Config YAML配置文件的根结构
type Config struct {
	Input   Input   `yaml:"input"`   // 输入
	Control Control `yaml:"control"` // 优化过程控制
	Output  Output  `yaml:"output,omitempty"`
}

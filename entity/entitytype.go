package entity

import "fmt"

// 策略常量：单相位绿灯时长上下界（秒），与周期长度无关
const (
	MinGreen = 10.
	MaxGreen = 60.
)

// 数值容差，用于校验Σgreen=C等等式约束
const Tolerance = 1e-6

// PhaseLabel 第i个（从0开始）相位的标签，P1, P2, ...
func PhaseLabel(i int) string {
	return fmt.Sprintf("P%d", i+1)
}

// ArrivalRecord 车辆到达记录
// 功能：描述一辆车从哪条道路进入路网以及进入时刻，聚合器只使用这两项
type ArrivalRecord struct {
	OriginRoad string  // 起始道路ID（route[0]）
	StartTime  float64 // 出发时刻（秒）
}

// Flow 车流文件中的一条记录
// 说明：只解析route与startTime等时间字段，vehicle等其他字段忽略
type Flow struct {
	Route     []string `json:"route" bson:"route" yaml:"route"`
	Interval  float64  `json:"interval" bson:"interval" yaml:"interval"`
	StartTime float64  `json:"startTime" bson:"startTime" yaml:"startTime"`
	EndTime   float64  `json:"endTime" bson:"endTime" yaml:"endTime"`
}

// Roadnet 路网描述
type Roadnet struct {
	Intersections []Intersection `json:"intersections" bson:"intersections"`
	Roads         []Road         `json:"roads" bson:"roads"`
}

// Intersection 路口
type Intersection struct {
	ID           string       `json:"id" bson:"id"`
	Roads        []string     `json:"roads" bson:"roads"`
	TrafficLight TrafficLight `json:"trafficLight" bson:"trafficLight"`
	Virtual      bool         `json:"virtual" bson:"virtual"`
}

// TrafficLight 路口信号灯，只关心相位数量
type TrafficLight struct {
	LightPhases []LightPhase `json:"lightphases" bson:"lightphases"`
}

type LightPhase struct {
	Time               float64 `json:"time" bson:"time"`
	AvailableRoadLinks []int   `json:"availableRoadLinks" bson:"availableRoadLinks"`
}

// Road 道路，起终点路口用于找出驶入某路口的道路
type Road struct {
	ID                string `json:"id" bson:"id"`
	StartIntersection string `json:"startIntersection" bson:"startIntersection"`
	EndIntersection   string `json:"endIntersection" bson:"endIntersection"`
}

// RoadDemand 道路->到达车辆数，没有到达的道路不出现
type RoadDemand map[string]int

// PhaseDemand 相位->需求车辆数
type PhaseDemand map[string]int

// Get 获取相位需求，不存在的相位视为0
func (d PhaseDemand) Get(phase string) int {
	return d[phase]
}

// RoadCount 排序后的道路需求
type RoadCount struct {
	Road  string `json:"road" yaml:"road"`
	Count int    `json:"count" yaml:"count"`
}

// Assignment 需求聚合结果
// 功能：记录道路需求排序以及相位到道路、相位到需求的映射
// 说明：Phases按需求降序排列，长度为min(相位数, 有到达记录的道路数)
type Assignment struct {
	IntersectionID string            `json:"intersection_id" yaml:"intersection_id"`
	NumLightPhases int               `json:"num_light_phases" yaml:"num_light_phases"`
	Ranked         []RoadCount       `json:"ranked" yaml:"ranked"`
	Phases         []string          `json:"phases" yaml:"phases"`
	PhaseToRoad    map[string]string `json:"phase_to_road" yaml:"phase_to_road"`
	Demand         PhaseDemand       `json:"demand" yaml:"demand"`
}

// Solution 绿信比优化结果，也是校验器的唯一输入
type Solution struct {
	Phases    []string           `json:"phases" yaml:"phases"`
	Green     map[string]float64 `json:"green" yaml:"green"`
	Served    map[string]float64 `json:"served" yaml:"served"`
	Demand    PhaseDemand        `json:"demand" yaml:"demand"`
	Objective float64            `json:"objective" yaml:"objective"` // Σ served*demand
}

// TotalGreen 所有相位绿灯时长之和（缺失相位按0计）
func (s *Solution) TotalGreen() float64 {
	total := 0.
	for _, p := range s.Phases {
		total += s.Green[p]
	}
	return total
}

// FindingKind 校验发现的类别
type FindingKind string

const (
	FindingTotalGreenMismatch      FindingKind = "total-green-mismatch"
	FindingServedExceedsDemand     FindingKind = "served-exceeds-demand"
	FindingServedExceedsSaturation FindingKind = "served-exceeds-saturation"
	FindingGreenOutOfBounds        FindingKind = "green-out-of-bounds"
	FindingStarvedPhase            FindingKind = "starved-high-demand-phase"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning" // 提示性，不代表约束被违反
)

// Finding 校验发现
type Finding struct {
	Kind     FindingKind `json:"kind" yaml:"kind"`
	Severity Severity    `json:"severity" yaml:"severity"`
	Phase    string      `json:"phase,omitempty" yaml:"phase,omitempty"` // 全局检查为空
	Value    float64     `json:"value" yaml:"value"`
	Limit    float64     `json:"limit" yaml:"limit"`
	Message  string      `json:"message" yaml:"message"`
}

func (f Finding) String() string {
	if f.Phase == "" {
		return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Kind, f.Message)
	}
	return fmt.Sprintf("[%s] %s %s: %s", f.Severity, f.Phase, f.Kind, f.Message)
}

package task

import (
	"context"
	"fmt"
	"time"

	"github.com/tsinghua-fib-lab/greensplit/clock"
	"github.com/tsinghua-fib-lab/greensplit/entity"
	"github.com/tsinghua-fib-lab/greensplit/entity/demand"
	"github.com/tsinghua-fib-lab/greensplit/entity/junction"
	"github.com/tsinghua-fib-lab/greensplit/entity/junction/trafficlight"
	"github.com/tsinghua-fib-lab/greensplit/entity/junction/validate"
	"github.com/tsinghua-fib-lab/greensplit/utils/config"
	"github.com/tsinghua-fib-lab/greensplit/utils/input"
	"github.com/tsinghua-fib-lab/greensplit/utils/metrics"
)

// Params 单次运行参数，零值字段使用配置中的值
type Params struct {
	Intersection   string  `json:"intersection,omitempty"`
	CycleLength    float64 `json:"cycle_length,omitempty"`
	SaturationRate float64 `json:"saturation_rate,omitempty"`
}

// Request 优化请求
// 说明：Flows与Roadnet同时给出时直接使用，都不给出时按配置加载输入，只给出其一返回ErrConfiguration
type Request struct {
	Params
	Flows   []entity.Flow   `json:"flows,omitempty"`
	Roadnet *entity.Roadnet `json:"roadnet,omitempty"`
}

// Result 一次优化的完整结果
type Result struct {
	IntersectionID string             `json:"intersection_id" yaml:"intersection_id"`
	CycleLength    float64            `json:"cycle_length" yaml:"cycle_length"`
	SaturationRate float64            `json:"saturation_rate" yaml:"saturation_rate"`
	Window         string             `json:"window" yaml:"window"`
	WindowSeconds  float64            `json:"window_seconds" yaml:"window_seconds"` // 无上界时为0
	Arrivals       int                `json:"arrivals" yaml:"arrivals"`
	Assignment     *entity.Assignment `json:"assignment" yaml:"assignment"`
	Solution       *entity.Solution   `json:"solution" yaml:"solution"`
	Findings       []entity.Finding   `json:"findings" yaml:"findings"`
}

// Context 优化任务上下文
// 功能：持有只读的运行时配置、求解器与指标，串联加载、聚合、求解、校验
// 说明：不保存任何与单次运行有关的状态，可以被多个请求同时使用
type Context struct {
	runtimeConfig *config.RuntimeConfig
	window        clock.Window
	solver        *trafficlight.GreenSplit
	metrics       *metrics.Collector

	// 输入加载函数，默认为input.Load
	load func(context.Context, config.Input) (*input.Input, error)
}

// NewContext 创建优化任务上下文，m可以为nil
func NewContext(rc *config.RuntimeConfig, m *metrics.Collector) *Context {
	return &Context{
		runtimeConfig: rc,
		window:        clock.New(rc.C.Window),
		solver:        trafficlight.NewGreenSplit(trafficlight.WithTimeout(rc.C.SolveTimeout)),
		metrics:       m,
		load:          input.Load,
	}
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Run 按配置重新加载输入并执行一次优化
func (ctx *Context) Run(c context.Context, p Params) (*Result, error) {
	in, err := ctx.load(c, ctx.runtimeConfig.All.Input)
	if err != nil {
		ctx.metrics.ObserveRun(err)
		return nil, err
	}
	return ctx.Execute(c, in, p)
}

// Handle 处理一次优化请求，只携带flows或roadnet之一时返回ErrConfiguration
func (ctx *Context) Handle(c context.Context, req Request) (*Result, error) {
	if (req.Flows == nil) != (req.Roadnet == nil) {
		err := fmt.Errorf("%w: inline input needs both flows and roadnet", entity.ErrConfiguration)
		ctx.metrics.ObserveRun(err)
		return nil, err
	}
	if req.Flows != nil {
		return ctx.Execute(c, &input.Input{Flows: req.Flows, Roadnet: req.Roadnet}, req.Params)
	}
	return ctx.Run(c, req.Params)
}

// Execute 在已加载的输入上执行一次优化
// 功能：需求聚合 -> 绿信比求解 -> 结果校验
// 参数：c-上下文，in-车流与路网，p-运行参数
// 返回：优化结果；任一阶段失败时返回对应的错误，不做重试
// 算法说明：
// 1. 参数补全与校验
// 2. 按时间窗口把车流转换为到达记录
// 3. 建立路口索引，聚合出相位需求
// 4. 在超时限制内求解线性规划
// 5. 校验求解结果，发现只记录不报错
func (ctx *Context) Execute(c context.Context, in *input.Input, p Params) (res *Result, err error) {
	defer func() { ctx.metrics.ObserveRun(err) }()

	p = ctx.resolve(p)
	if err = config.CheckParams(p.CycleLength, p.SaturationRate); err != nil {
		return nil, err
	}
	if in == nil || in.Roadnet == nil {
		return nil, fmt.Errorf("%w: roadnet is missing", entity.ErrConfiguration)
	}

	records, err := demand.FromFlows(in.Flows, ctx.window)
	if err != nil {
		return nil, err
	}
	jm := junction.NewManager()
	jm.Init(in.Roadnet.Intersections, in.Roadnet.Roads)
	log.Debugf("indexed %d intersections", jm.Len())
	assignment, err := demand.Aggregate(records, jm, p.Intersection)
	if err != nil {
		return nil, err
	}
	log.Infof("intersection %s: %d arrivals, phases %v, demand %v",
		p.Intersection, len(records), assignment.Phases, assignment.Demand)

	start := time.Now()
	sol, err := ctx.solver.Solve(c, assignment.Demand, assignment.Phases, p.CycleLength, p.SaturationRate)
	ctx.metrics.ObserveSolve(time.Since(start))
	if err != nil {
		log.Warnf("solve failed for intersection %s: %v", p.Intersection, err)
		return nil, err
	}

	findings := validate.Check(sol, p.CycleLength, p.SaturationRate)
	ctx.metrics.ObserveFindings(findings)
	for _, f := range findings {
		log.Warn(f.String())
	}

	return &Result{
		IntersectionID: p.Intersection,
		CycleLength:    p.CycleLength,
		SaturationRate: p.SaturationRate,
		Window:         ctx.window.String(),
		WindowSeconds:  ctx.window.Duration(),
		Arrivals:       len(records),
		Assignment:     assignment,
		Solution:       sol,
		Findings:       findings,
	}, nil
}

func (ctx *Context) resolve(p Params) Params {
	c := ctx.runtimeConfig.C
	if p.Intersection == "" {
		p.Intersection = c.Intersection
	}
	if p.CycleLength == 0 {
		p.CycleLength = c.CycleLength
	}
	if p.SaturationRate == 0 {
		p.SaturationRate = c.SaturationRate
	}
	return p
}

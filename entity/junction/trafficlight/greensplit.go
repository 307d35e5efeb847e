// 提供单路口绿信比优化
// 在固定周期内为各相位分配绿灯时长，最大化需求加权的通行车辆数，使用线性规划单纯形法求解
package trafficlight

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/greensplit/entity"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	// 单纯形法最优性判定容差
	simplexTol = 1e-10
	// 数值噪声阈值，小于该值的越界视为0
	snapTol = 1e-9
	// 平局打破项系数（相对饱和流率），保证不改变主目标的最优值
	tieBreakEpsilon = 1e-4
)

// 每个相位在标准型中占用的列：绿灯（平移后）、通行量、上界松弛、饱和松弛、需求松弛
const colsPerPhase = 5

// GreenSplit 绿信比求解器
// 功能：把相位需求、周期长度、饱和流率构造成线性规划并求解
// 说明：无内部状态，可以被多个goroutine同时使用
type GreenSplit struct {
	minGreen float64
	maxGreen float64
	timeout  time.Duration
}

type Option func(*GreenSplit)

// WithTimeout 设置单次求解的超时时间，<=0表示不设超时
func WithTimeout(d time.Duration) Option {
	return func(g *GreenSplit) {
		g.timeout = d
	}
}

// NewGreenSplit 创建绿信比求解器，绿灯上下界为策略常量[MinGreen, MaxGreen]
func NewGreenSplit(opts ...Option) *GreenSplit {
	g := &GreenSplit{
		minGreen: entity.MinGreen,
		maxGreen: entity.MaxGreen,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Solve 求解绿信比
// 功能：在Σgreen=C、minGreen<=green<=maxGreen、served<=S*green、served<=demand约束下最大化Σserved*demand
// 参数：ctx-上下文，demand-相位需求，phases-相位列表（顺序决定平局时的优先级），cycle-周期长度C，saturation-饱和流率S
// 返回：各相位绿灯时长与通行车辆数
// 算法说明：
//  1. 参数检查：非有限数值、负饱和流率、负需求、重复相位返回ErrConfiguration
//  2. 可行性检查：C必须落在[minGreen*k, maxGreen*k]内，否则返回ErrInfeasible
//  3. 转换为标准型 min cᵀx, Ax=b, x>=0：
//     - 绿灯平移 g' = green - minGreen >= 0
//     - Σg' = C - k*minGreen
//     - g' + u = maxGreen - minGreen
//     - served - S*g' + a = S*minGreen
//     - served + d = demand
//  4. 目标为 -Σdemand*served - ε*Σw*g'，w按相位顺序严格递减，
//     多个最优解时把富余绿灯优先分给排在前面的相位
//  5. 在超时限制内调用单纯形法，提取绿灯与通行量
//
// 说明：不存在的相位需求视为0
func (g *GreenSplit) Solve(
	ctx context.Context,
	demand entity.PhaseDemand,
	phases []string,
	cycle, saturation float64,
) (*entity.Solution, error) {
	if err := g.check(demand, phases, cycle, saturation); err != nil {
		return nil, err
	}
	k := len(phases)
	lower, upper := g.minGreen*float64(k), g.maxGreen*float64(k)
	if k == 0 {
		return nil, fmt.Errorf("%w: no phase to allocate %.2fs of green", entity.ErrInfeasible, cycle)
	}
	if cycle < lower-entity.Tolerance || cycle > upper+entity.Tolerance {
		return nil, fmt.Errorf(
			"%w: cycle length %.2fs outside [%.2f, %.2f] for %d phases",
			entity.ErrInfeasible, cycle, lower, upper, k,
		)
	}

	c, A, b := g.standardForm(demand, phases, cycle, saturation)
	x, err := g.simplex(ctx, c, A, b)
	if err != nil {
		return nil, err
	}

	sol := &entity.Solution{
		Phases: append([]string(nil), phases...),
		Green:  make(map[string]float64, k),
		Served: make(map[string]float64, k),
		Demand: make(entity.PhaseDemand, k),
	}
	for i, p := range phases {
		d := demand.Get(p)
		green := g.minGreen + snap(x[i*colsPerPhase])
		served := snap(x[i*colsPerPhase+1])
		sol.Green[p] = green
		sol.Served[p] = served
		sol.Demand[p] = d
		sol.Objective += served * float64(d)
	}
	log.Debugf("solved %d phases: cycle=%.2f saturation=%.3f objective=%.3f", k, cycle, saturation, sol.Objective)
	return sol, nil
}

func (g *GreenSplit) check(demand entity.PhaseDemand, phases []string, cycle, saturation float64) error {
	if math.IsNaN(cycle) || math.IsInf(cycle, 0) {
		return fmt.Errorf("%w: invalid cycle length %v", entity.ErrConfiguration, cycle)
	}
	if math.IsNaN(saturation) || math.IsInf(saturation, 0) || saturation < 0 {
		return fmt.Errorf("%w: invalid saturation rate %v", entity.ErrConfiguration, saturation)
	}
	if dup := lo.FindDuplicates(phases); len(dup) > 0 {
		return fmt.Errorf("%w: duplicated phases %v", entity.ErrConfiguration, dup)
	}
	for _, p := range phases {
		if demand.Get(p) < 0 {
			return fmt.Errorf("%w: negative demand %d for phase %s", entity.ErrConfiguration, demand.Get(p), p)
		}
	}
	return nil
}

// standardForm 构造标准型线性规划的c, A, b
func (g *GreenSplit) standardForm(
	demand entity.PhaseDemand,
	phases []string,
	cycle, saturation float64,
) ([]float64, *mat.Dense, []float64) {
	k := len(phases)
	m, n := 1+3*k, colsPerPhase*k
	A := mat.NewDense(m, n, nil)
	b := make([]float64, m)
	c := make([]float64, n)

	epsilon := tieBreakEpsilon
	if saturation > 0 {
		epsilon *= saturation
	}
	b[0] = math.Min(math.Max(0, cycle-g.minGreen*float64(k)), (g.maxGreen-g.minGreen)*float64(k))
	for i, p := range phases {
		gi, si := i*colsPerPhase, i*colsPerPhase+1
		ui, ai, di := gi+2, gi+3, gi+4
		r := 1 + 3*i

		// Σg'
		A.Set(0, gi, 1)
		// g' + u = max - min
		A.Set(r, gi, 1)
		A.Set(r, ui, 1)
		b[r] = g.maxGreen - g.minGreen
		// served - S*g' + a = S*min
		A.Set(r+1, si, 1)
		A.Set(r+1, gi, -saturation)
		A.Set(r+1, ai, 1)
		b[r+1] = saturation * g.minGreen
		// served + d = demand
		A.Set(r+2, si, 1)
		A.Set(r+2, di, 1)
		b[r+2] = float64(demand.Get(p))

		c[si] = -float64(demand.Get(p))
		c[gi] = -epsilon * float64(k-i) / float64(k)
	}
	return c, A, b
}

type simplexResult struct {
	x   []float64
	err error
}

// simplex 在超时限制内运行单纯形法
// 说明：超时后放弃等待，后台的求解结束后自行退出
func (g *GreenSplit) simplex(ctx context.Context, c []float64, A *mat.Dense, b []float64) ([]float64, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, ctxError(err, g.timeout)
	}

	done := make(chan simplexResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- simplexResult{err: fmt.Errorf("%w: simplex panic: %v", entity.ErrSolver, r)}
			}
		}()
		_, x, err := lp.Simplex(c, A, b, simplexTol, nil)
		done <- simplexResult{x: x, err: err}
	}()

	select {
	case r := <-done:
		switch {
		case r.err == nil:
			return r.x, nil
		case errors.Is(r.err, entity.ErrSolver):
			return nil, r.err
		case errors.Is(r.err, lp.ErrInfeasible):
			return nil, fmt.Errorf("%w: %v", entity.ErrInfeasible, r.err)
		default:
			return nil, fmt.Errorf("%w: %v", entity.ErrSolver, r.err)
		}
	case <-ctx.Done():
		return nil, ctxError(ctx.Err(), g.timeout)
	}
}

func ctxError(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: no result within %v", entity.ErrSolverTimeout, timeout)
	}
	return fmt.Errorf("%w: %w", entity.ErrSolver, err)
}

// snap 去除数值噪声
func snap(v float64) float64 {
	if math.Abs(v) < snapTol {
		return 0
	}
	return v
}

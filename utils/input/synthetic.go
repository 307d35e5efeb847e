package input

import (
	"fmt"
	"slices"

	"github.com/tsinghua-fib-lab/greensplit/entity"
	"github.com/tsinghua-fib-lab/greensplit/utils/randengine"
)

// SyntheticOptions 合成车流参数
type SyntheticOptions struct {
	Roads   []string  // 驶入路口的道路
	Weights []float64 // 各道路的到达权重，为空时均匀分布
	Rate    float64   // 全部道路合计的到达率（辆/秒）
	Horizon float64   // 生成时段长度（秒）
	Seed    uint64
}

// Synthesize 合成车流
// 功能：在[0, Horizon)内按泊松过程生成车辆到达，并按权重随机分配起始道路
// 返回：按startTime升序的车流；同样的参数与种子得到同样的结果
func Synthesize(opt SyntheticOptions) ([]entity.Flow, error) {
	if len(opt.Roads) == 0 {
		return nil, fmt.Errorf("%w: no road to generate flows for", entity.ErrConfiguration)
	}
	if opt.Rate <= 0 || opt.Horizon <= 0 {
		return nil, fmt.Errorf("%w: rate and horizon must be positive", entity.ErrConfiguration)
	}
	weights := opt.Weights
	if len(weights) == 0 {
		weights = slices.Repeat([]float64{1}, len(opt.Roads))
	}
	if len(weights) != len(opt.Roads) {
		return nil, fmt.Errorf("%w: %d weights for %d roads", entity.ErrConfiguration, len(weights), len(opt.Roads))
	}

	engine := randengine.New(opt.Seed)
	flows := make([]entity.Flow, 0, int(opt.Rate*opt.Horizon))
	for t := engine.Exponential(opt.Rate); t < opt.Horizon; t += engine.Exponential(opt.Rate) {
		i := engine.DiscreteDistribution(weights)
		if i < 0 {
			return nil, fmt.Errorf("%w: all road weights are zero", entity.ErrConfiguration)
		}
		flows = append(flows, entity.Flow{
			Route:     []string{opt.Roads[i]},
			StartTime: t,
			EndTime:   t,
		})
	}
	log.Infof("synthesized %d flows on %d roads over %.0fs", len(flows), len(opt.Roads), opt.Horizon)
	return flows, nil
}

// 需求聚合：将车辆到达记录统计为道路需求，并按需求降序把道路分配给信号相位
package demand

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/greensplit/clock"
	"github.com/tsinghua-fib-lab/greensplit/entity"
)

// FromFlows 将车流记录转换为到达记录
// 功能：取每条记录route[0]作为起始道路，startTime作为到达时刻
// 参数：flows-车流记录，window-需求统计时间窗口
// 返回：窗口内的到达记录；route为空时返回ErrConfiguration
func FromFlows(flows []entity.Flow, window clock.Window) ([]entity.ArrivalRecord, error) {
	records := make([]entity.ArrivalRecord, 0, len(flows))
	skipped := 0
	for i, f := range flows {
		if len(f.Route) == 0 || f.Route[0] == "" {
			return nil, fmt.Errorf("%w: flow record %d has an empty route", entity.ErrConfiguration, i)
		}
		if !window.Contains(f.StartTime) {
			skipped++
			continue
		}
		records = append(records, entity.ArrivalRecord{OriginRoad: f.Route[0], StartTime: f.StartTime})
	}
	if skipped > 0 {
		log.Debugf("skip %d flow records outside window %v", skipped, window)
	}
	return records, nil
}

// Count 按起始道路统计到达车辆数
// 返回：道路需求，以及道路在记录中首次出现的顺序
func Count(records []entity.ArrivalRecord) (entity.RoadDemand, []string) {
	roads := lo.Map(records, func(r entity.ArrivalRecord, _ int) string { return r.OriginRoad })
	return lo.CountValues(roads), lo.Uniq(roads)
}

// Rank 按需求降序排列道路
// 功能：稳定排序，需求相同时保持order中的先后顺序
// 参数：counts-道路需求，order-道路顺序（通常为首次出现顺序）
// 说明：counts中存在但order中缺失的道路按ID字典序追加在order之后；需求为0的道路被丢弃
func Rank(counts entity.RoadDemand, order []string) []entity.RoadCount {
	seen := make(map[string]struct{}, len(order))
	roads := make([]string, 0, len(counts))
	for _, road := range order {
		if _, ok := seen[road]; ok {
			continue
		}
		seen[road] = struct{}{}
		roads = append(roads, road)
	}
	missing := lo.Filter(lo.Keys(counts), func(road string, _ int) bool {
		_, ok := seen[road]
		return !ok
	})
	slices.Sort(missing)
	roads = append(roads, missing...)

	ranked := lo.FilterMap(roads, func(road string, _ int) (entity.RoadCount, bool) {
		c := counts[road]
		return entity.RoadCount{Road: road, Count: c}, c > 0
	})
	slices.SortStableFunc(ranked, func(a, b entity.RoadCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return ranked
}

// Aggregate 聚合到达记录为相位需求
// 功能：统计道路需求，找到指定路口，把需求最大的若干条道路依次分配给P1、P2……
// 参数：records-到达记录，jm-路口管理器，intersectionID-路口ID
// 返回：相位分配结果；路口不存在时返回ErrConfiguration
// 算法说明：
// 1. 按起始道路统计到达车辆数
// 2. 在路网中查找路口，取其信号相位数N
// 3. 按需求降序（稳定）排列道路，取前min(N, 道路数)条
// 4. 依次标记为P1..Pk，记录相位->道路、相位->需求
// 说明：道路少于相位时，多余的相位不出现在结果中
func Aggregate(records []entity.ArrivalRecord, jm entity.IJunctionManager, intersectionID string) (*entity.Assignment, error) {
	counts, order := Count(records)

	j, err := jm.GetOrError(intersectionID)
	if err != nil {
		return nil, err
	}
	n := len(j.TrafficLight.LightPhases)

	ranked := Rank(counts, order)
	k := min(n, len(ranked))
	a := &entity.Assignment{
		IntersectionID: intersectionID,
		NumLightPhases: n,
		Ranked:         ranked,
		Phases:         make([]string, 0, k),
		PhaseToRoad:    make(map[string]string, k),
		Demand:         make(entity.PhaseDemand, k),
	}
	for i, rc := range ranked[:k] {
		phase := entity.PhaseLabel(i)
		a.Phases = append(a.Phases, phase)
		a.PhaseToRoad[phase] = rc.Road
		a.Demand[phase] = rc.Count
	}
	if k < n {
		log.Infof("intersection %s has %d light phases but only %d roads with arrivals", intersectionID, n, k)
	}
	return a, nil
}

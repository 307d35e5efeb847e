package junction

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/greensplit/entity"
)

// JunctionManager 路口管理器
// 功能：按ID索引路网中的路口，并记录驶入每个路口的道路
type JunctionManager struct {
	data          map[string]*entity.Intersection
	intersections []*entity.Intersection
	incoming      map[string][]string
}

// NewManager 创建路口管理器实例
func NewManager() *JunctionManager {
	return &JunctionManager{
		data:          make(map[string]*entity.Intersection),
		intersections: make([]*entity.Intersection, 0),
		incoming:      make(map[string][]string),
	}
}

// Init 初始化所有路口
// 功能：根据路网数据建立ID->路口映射表以及路口->驶入道路映射表
// 参数：intersections-路口列表，roads-道路列表（可以为空）
// 说明：ID重复时后出现的路口被忽略并记录警告
func (m *JunctionManager) Init(intersections []entity.Intersection, roads []entity.Road) {
	m.intersections = make([]*entity.Intersection, 0, len(intersections))
	m.data = make(map[string]*entity.Intersection, len(intersections))
	for i := range intersections {
		j := &intersections[i]
		if _, ok := m.data[j.ID]; ok {
			log.Warnf("duplicated intersection id %s, ignore", j.ID)
			continue
		}
		m.data[j.ID] = j
		m.intersections = append(m.intersections, j)
	}
	m.incoming = lo.MapValues(
		lo.GroupBy(roads, func(r entity.Road) string { return r.EndIntersection }),
		func(rs []entity.Road, _ string) []string {
			return lo.Map(rs, func(r entity.Road, _ int) string { return r.ID })
		},
	)
	log.Debugf("init %d intersections, %d roads", len(m.intersections), len(roads))
}

// Get 根据ID获取路口，如果不存在则panic
func (m *JunctionManager) Get(id string) *entity.Intersection {
	if j, ok := m.data[id]; !ok {
		log.Panicf("no id %s in junction data", id)
		return nil
	} else {
		return j
	}
}

// GetOrError 根据ID获取路口（带错误处理）
// 功能：通过路口ID查找对应的路口，如果不存在则返回ErrConfiguration
func (m *JunctionManager) GetOrError(id string) (*entity.Intersection, error) {
	if j, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("%w: intersection %q not found in roadnet", entity.ErrConfiguration, id)
	} else {
		return j, nil
	}
}

// IncomingRoads 驶入指定路口的道路ID列表
func (m *JunctionManager) IncomingRoads(id string) []string {
	return m.incoming[id]
}

// Len 路口数量
func (m *JunctionManager) Len() int {
	return len(m.intersections)
}

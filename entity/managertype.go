package entity

// Manager依赖倒置

// entity/junction/manager.go的依赖倒置
type IJunctionManager interface {
	Init(intersections []Intersection, roads []Road) // 初始化

	// 输入路口ID，查找路口，如果不存在则panic
	Get(id string) *Intersection
	// 输入路口ID，查找路口，如果不存在则返回error
	GetOrError(id string) (*Intersection, error)
	// 驶入路口的道路ID（按路网中的顺序）
	IncomingRoads(id string) []string
}

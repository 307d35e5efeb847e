// 随机数引擎，包装了golang.org/x/exp/rand，提供合成车流所需的随机数生成方法
package randengine

import (
	"flag"
	"math"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎（非线程安全）
type Engine struct {
	*rand.Rand
}

// New 创建随机数引擎，实际种子为seed加上命令行的种子偏移量
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// DiscreteDistribution 按给定权重生成下标
// 返回：[0, len(weight))内的下标；权重全为0或为空时返回-1
// 算法说明：
// 1. 计算总权重并在[0, 总权重)内取随机数
// 2. 累加权重，返回第一个累积值超过随机数的下标
func (e *Engine) DiscreteDistribution(weight []float64) int {
	total := .0
	for _, w := range weight {
		total += w
	}
	if total <= 0 {
		return -1
	}
	random := total * e.Float64()
	sum := 0.
	for i, w := range weight {
		sum += w
		if sum > random {
			return i
		}
	}
	// 浮点误差导致未命中时取最后一个正权重
	for i := len(weight) - 1; i >= 0; i-- {
		if weight[i] > 0 {
			return i
		}
	}
	return -1
}

// Exponential 生成均值为1/rate的指数分布随机数，用于泊松到达的时间间隔
func (e *Engine) Exponential(rate float64) float64 {
	if rate <= 0 {
		return math.Inf(1)
	}
	return e.ExpFloat64() / rate
}

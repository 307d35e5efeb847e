package randengine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/greensplit/utils/randengine"
)

func TestDeterministic(t *testing.T) {
	a, b := randengine.New(7), randengine.New(7)
	for range 20 {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestDiscreteDistribution(t *testing.T) {
	e := randengine.New(1)
	hits := make([]int, 3)
	for range 10000 {
		hits[e.DiscreteDistribution([]float64{1, 0, 3})]++
	}
	assert.Zero(t, hits[1])
	assert.InDelta(t, 0.75, float64(hits[2])/10000, 0.03)

	assert.Equal(t, -1, e.DiscreteDistribution(nil))
	assert.Equal(t, -1, e.DiscreteDistribution([]float64{0, 0}))
}

func TestExponential(t *testing.T) {
	e := randengine.New(3)
	sum := 0.
	for range 20000 {
		v := e.Exponential(0.5)
		assert.GreaterOrEqual(t, v, 0.)
		sum += v
	}
	assert.InDelta(t, 2, sum/20000, 0.1)
	assert.True(t, math.IsInf(e.Exponential(0), 1))
}

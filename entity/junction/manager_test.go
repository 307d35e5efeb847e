package junction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/greensplit/entity"
	"github.com/tsinghua-fib-lab/greensplit/entity/junction"
)

func TestManager(t *testing.T) {
	m := junction.NewManager()
	var _ entity.IJunctionManager = m

	m.Init(
		[]entity.Intersection{
			{ID: "intersection_1_1", TrafficLight: entity.TrafficLight{LightPhases: make([]entity.LightPhase, 4)}},
			{ID: "intersection_1_2"},
			{ID: "intersection_1_1"},
		},
		[]entity.Road{
			{ID: "road_0_1_0", StartIntersection: "intersection_0_1", EndIntersection: "intersection_1_1"},
			{ID: "road_1_0_1", StartIntersection: "intersection_1_0", EndIntersection: "intersection_1_1"},
			{ID: "road_1_1_0", StartIntersection: "intersection_1_1", EndIntersection: "intersection_1_2"},
		},
	)
	assert.Equal(t, 2, m.Len())

	j, err := m.GetOrError("intersection_1_1")
	require.NoError(t, err)
	assert.Len(t, j.TrafficLight.LightPhases, 4)
	assert.Equal(t, j, m.Get("intersection_1_1"))

	_, err = m.GetOrError("intersection_9_9")
	assert.ErrorIs(t, err, entity.ErrConfiguration)
	assert.Panics(t, func() { m.Get("intersection_9_9") })

	assert.Equal(t, []string{"road_0_1_0", "road_1_0_1"}, m.IncomingRoads("intersection_1_1"))
	assert.Equal(t, []string{"road_1_1_0"}, m.IncomingRoads("intersection_1_2"))
	assert.Empty(t, m.IncomingRoads("intersection_0_1"))
}

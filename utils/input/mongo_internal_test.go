package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/greensplit/entity"
	"go.mongodb.org/mongo-driver/bson"
)

func raw(t *testing.T, v any) bson.Raw {
	t.Helper()
	data, err := bson.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestDecodeRoadnet(t *testing.T) {
	docs := []document{
		{Class: classIntersection, Data: raw(t, entity.Intersection{
			ID:           "intersection_1_1",
			TrafficLight: entity.TrafficLight{LightPhases: make([]entity.LightPhase, 4)},
		})},
		{Class: classRoad, Data: raw(t, entity.Road{ID: "r", EndIntersection: "intersection_1_1"})},
		{Class: "lane", Data: raw(t, bson.M{"id": "x"})},
	}
	rn, err := decodeRoadnet(docs)
	require.NoError(t, err)
	require.Len(t, rn.Intersections, 1)
	assert.Len(t, rn.Intersections[0].TrafficLight.LightPhases, 4)
	assert.Equal(t, []entity.Road{{ID: "r", EndIntersection: "intersection_1_1"}}, rn.Roads)

	_, err = decodeRoadnet([]document{{Class: classRoad, Data: raw(t, bson.M{"id": 12})}})
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}

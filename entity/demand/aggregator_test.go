package demand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/greensplit/clock"
	"github.com/tsinghua-fib-lab/greensplit/entity"
	"github.com/tsinghua-fib-lab/greensplit/entity/demand"
	"github.com/tsinghua-fib-lab/greensplit/entity/junction"
)

func records(roads ...string) []entity.ArrivalRecord {
	out := make([]entity.ArrivalRecord, len(roads))
	for i, r := range roads {
		out[i] = entity.ArrivalRecord{OriginRoad: r, StartTime: float64(i)}
	}
	return out
}

func manager(phases int) *junction.JunctionManager {
	m := junction.NewManager()
	m.Init([]entity.Intersection{{
		ID:           "intersection_1_1",
		TrafficLight: entity.TrafficLight{LightPhases: make([]entity.LightPhase, phases)},
	}}, nil)
	return m
}

func TestFromFlows(t *testing.T) {
	flows := []entity.Flow{
		{Route: []string{"road_a", "road_x"}, StartTime: 0},
		{Route: []string{"road_b"}, StartTime: 100},
		{Route: []string{"road_a"}, StartTime: 4000},
	}
	rs, err := demand.FromFlows(flows, clock.Window{})
	require.NoError(t, err)
	assert.Equal(t, []entity.ArrivalRecord{
		{OriginRoad: "road_a", StartTime: 0},
		{OriginRoad: "road_b", StartTime: 100},
		{OriginRoad: "road_a", StartTime: 4000},
	}, rs)

	rs, err = demand.FromFlows(flows, clock.Window{Start: 0, End: 3600})
	require.NoError(t, err)
	assert.Len(t, rs, 2)

	_, err = demand.FromFlows([]entity.Flow{{Route: nil}}, clock.Window{})
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}

func TestCount(t *testing.T) {
	counts, order := demand.Count(records("b", "a", "b", "c", "a", "b"))
	assert.Equal(t, entity.RoadDemand{"a": 2, "b": 3, "c": 1}, counts)
	assert.Equal(t, []string{"b", "a", "c"}, order)

	counts, order = demand.Count(nil)
	assert.Empty(t, counts)
	assert.Empty(t, order)
}

func TestRankIsStable(t *testing.T) {
	counts := entity.RoadDemand{"x": 2, "y": 5, "z": 2, "w": 2, "zero": 0}
	ranked := demand.Rank(counts, []string{"z", "y", "x"})
	assert.Equal(t, []entity.RoadCount{
		{Road: "y", Count: 5},
		{Road: "z", Count: 2},
		{Road: "x", Count: 2},
		{Road: "w", Count: 2},
	}, ranked)
}

func TestAggregate(t *testing.T) {
	rs := records("n", "e", "n", "s", "e", "n", "w", "s", "n")
	a, err := demand.Aggregate(rs, manager(2), "intersection_1_1")
	require.NoError(t, err)
	assert.Equal(t, 2, a.NumLightPhases)
	assert.Equal(t, []string{"P1", "P2"}, a.Phases)
	assert.Equal(t, map[string]string{"P1": "n", "P2": "e"}, a.PhaseToRoad)
	assert.Equal(t, entity.PhaseDemand{"P1": 4, "P2": 2}, a.Demand)
	assert.Len(t, a.Ranked, 4)
}

func TestAggregateFewerRoadsThanPhases(t *testing.T) {
	a, err := demand.Aggregate(records("a", "b", "a"), manager(4), "intersection_1_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, a.Phases)
	assert.NotContains(t, a.Demand, "P3")
	assert.NotContains(t, a.PhaseToRoad, "P4")
	assert.Equal(t, 0, a.Demand.Get("P3"))
}

func TestAggregateMissingIntersection(t *testing.T) {
	_, err := demand.Aggregate(records("a"), manager(4), "intersection_9_9")
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}

func TestAggregateNoArrivals(t *testing.T) {
	a, err := demand.Aggregate(nil, manager(4), "intersection_1_1")
	require.NoError(t, err)
	assert.Empty(t, a.Phases)
	assert.Empty(t, a.Demand)
}

package input_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/greensplit/entity"
	"github.com/tsinghua-fib-lab/greensplit/utils/config"
	"github.com/tsinghua-fib-lab/greensplit/utils/input"
)

const roadnetJSON = `{
  "intersections": [
    {"id": "intersection_1_1", "roads": ["road_0_1_0", "road_1_1_2"], "virtual": false,
     "trafficLight": {"lightphases": [{"time": 5, "availableRoadLinks": []}, {"time": 30, "availableRoadLinks": [0, 1]}]}}
  ],
  "roads": [
    {"id": "road_0_1_0", "startIntersection": "intersection_0_1", "endIntersection": "intersection_1_1"}
  ]
}`

const flowJSON = `[
  {"vehicle": {"length": 5}, "route": ["road_0_1_0", "road_1_1_0"], "interval": 2, "startTime": 0, "endTime": 0},
  {"vehicle": {"length": 5}, "route": ["road_2_1_2"], "interval": 2, "startTime": 12, "endTime": 12}
]`

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFiles(t *testing.T) {
	in, err := input.Load(context.Background(), config.Input{
		Flow:    config.InputPath{File: write(t, "flow.json", flowJSON)},
		Roadnet: config.InputPath{File: write(t, "roadnet.json", roadnetJSON)},
	})
	require.NoError(t, err)
	require.Len(t, in.Flows, 2)
	assert.Equal(t, []string{"road_0_1_0", "road_1_1_0"}, in.Flows[0].Route)
	assert.Equal(t, 12., in.Flows[1].StartTime)
	require.Len(t, in.Roadnet.Intersections, 1)
	assert.Len(t, in.Roadnet.Intersections[0].TrafficLight.LightPhases, 2)
	assert.Equal(t, "intersection_1_1", in.Roadnet.Roads[0].EndIntersection)
}

func TestLoadErrors(t *testing.T) {
	roadnet := config.InputPath{File: write(t, "roadnet.json", roadnetJSON)}

	_, err := input.Load(context.Background(), config.Input{
		Flow:    config.InputPath{File: filepath.Join(t.TempDir(), "missing.json")},
		Roadnet: roadnet,
	})
	assert.ErrorIs(t, err, entity.ErrConfiguration)

	_, err = input.Load(context.Background(), config.Input{
		Flow:    config.InputPath{File: write(t, "flow.json", "{not json")},
		Roadnet: roadnet,
	})
	assert.ErrorIs(t, err, entity.ErrConfiguration)

	_, err = input.Load(context.Background(), config.Input{
		URI:     "notmongo://localhost",
		Flow:    config.InputPath{DB: "tso", Col: "flow"},
		Roadnet: roadnet,
	})
	assert.ErrorIs(t, err, entity.ErrConfiguration)

	_, err = input.Load(context.Background(), config.Input{
		Flow:    config.InputPath{DB: "tso", Col: "flow"},
		Roadnet: roadnet,
	})
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}

func TestWriteFlowsRoundTrip(t *testing.T) {
	flows := []entity.Flow{{Route: []string{"a"}, StartTime: 1.5, EndTime: 1.5}}
	path := filepath.Join(t.TempDir(), "gen.json")
	require.NoError(t, input.WriteFlows(path, flows))

	in, err := input.Load(context.Background(), config.Input{
		Flow:    config.InputPath{File: path},
		Roadnet: config.InputPath{File: write(t, "roadnet.json", roadnetJSON)},
	})
	require.NoError(t, err)
	assert.Equal(t, flows, in.Flows)
}

func TestSynthesize(t *testing.T) {
	opt := input.SyntheticOptions{
		Roads:   []string{"n", "e", "s"},
		Weights: []float64{3, 1, 0},
		Rate:    0.5,
		Horizon: 3600,
		Seed:    11,
	}
	flows, err := input.Synthesize(opt)
	require.NoError(t, err)
	assert.InDelta(t, 1800, len(flows), 200)

	counts := map[string]int{}
	last := 0.
	for _, f := range flows {
		require.Len(t, f.Route, 1)
		counts[f.Route[0]]++
		assert.GreaterOrEqual(t, f.StartTime, last)
		assert.Less(t, f.StartTime, opt.Horizon)
		last = f.StartTime
	}
	assert.Zero(t, counts["s"])
	assert.Greater(t, counts["n"], counts["e"])

	again, err := input.Synthesize(opt)
	require.NoError(t, err)
	assert.Equal(t, flows, again)
}

func TestSynthesizeInvalid(t *testing.T) {
	_, err := input.Synthesize(input.SyntheticOptions{Rate: 1, Horizon: 10})
	assert.ErrorIs(t, err, entity.ErrConfiguration)
	_, err = input.Synthesize(input.SyntheticOptions{Roads: []string{"a"}, Horizon: 10})
	assert.ErrorIs(t, err, entity.ErrConfiguration)
	_, err = input.Synthesize(input.SyntheticOptions{Roads: []string{"a"}, Weights: []float64{1, 2}, Rate: 1, Horizon: 10})
	assert.ErrorIs(t, err, entity.ErrConfiguration)
	_, err = input.Synthesize(input.SyntheticOptions{Roads: []string{"a"}, Weights: []float64{0}, Rate: 1, Horizon: 1000})
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}

func TestLoadRoadnet(t *testing.T) {
	rn, err := input.LoadRoadnet(context.Background(), config.Input{
		Roadnet: config.InputPath{File: write(t, "roadnet.json", roadnetJSON)},
	})
	require.NoError(t, err)
	assert.Len(t, rn.Roads, 1)

	_, err = input.LoadRoadnet(context.Background(), config.Input{Roadnet: config.InputPath{DB: "tso", Col: "roadnet"}})
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}

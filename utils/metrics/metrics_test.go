package metrics_test

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/greensplit/entity"
	"github.com/tsinghua-fib-lab/greensplit/utils/metrics"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, metrics.OutcomeOK, metrics.Outcome(nil))
	assert.Equal(t, metrics.OutcomeConfiguration, metrics.Outcome(fmt.Errorf("%w: x", entity.ErrConfiguration)))
	assert.Equal(t, metrics.OutcomeInfeasible, metrics.Outcome(fmt.Errorf("%w: x", entity.ErrInfeasible)))
	assert.Equal(t, metrics.OutcomeTimeout, metrics.Outcome(entity.ErrSolverTimeout))
	assert.Equal(t, metrics.OutcomeSolver, metrics.Outcome(errors.New("boom")))
}

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	c.ObserveRun(nil)
	c.ObserveRun(nil)
	c.ObserveRun(entity.ErrInfeasible)
	c.ObserveSolve(3 * time.Millisecond)
	c.ObserveFindings([]entity.Finding{
		{Kind: entity.FindingStarvedPhase, Severity: entity.SeverityWarning},
		{Kind: entity.FindingStarvedPhase, Severity: entity.SeverityWarning},
	})

	assert.Equal(t, 2., testutil.ToFloat64(c.Runs.WithLabelValues(metrics.OutcomeOK)))
	assert.Equal(t, 1., testutil.ToFloat64(c.Runs.WithLabelValues(metrics.OutcomeInfeasible)))
	assert.Equal(t, 2., testutil.ToFloat64(c.Findings.WithLabelValues(string(entity.FindingStarvedPhase), "warning")))

	families, err := reg.Gather()
	require.NoError(t, err)
	var samples uint64
	for _, mf := range families {
		if mf.GetName() == "greensplit_solve_duration_seconds" {
			samples = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(1), samples)
}

func TestCollectorReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := metrics.NewCollector(reg)
	require.NoError(t, err)
	b, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	a.ObserveRun(nil)
	assert.Equal(t, 1., testutil.ToFloat64(b.Runs.WithLabelValues(metrics.OutcomeOK)))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.NewCollector(reg)
	require.NoError(t, err)
	c.ObserveRun(nil)

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(body), `greensplit_runs_total{outcome="ok"} 1`)
}

func TestNilCollector(t *testing.T) {
	var c *metrics.Collector
	assert.NotPanics(t, func() {
		c.ObserveRun(nil)
		c.ObserveSolve(time.Second)
		c.ObserveFindings([]entity.Finding{{}})
	})
}

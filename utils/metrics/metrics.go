// 优化过程的Prometheus指标
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tsinghua-fib-lab/greensplit/entity"
)

// 运行结果标签
const (
	OutcomeOK            = "ok"
	OutcomeConfiguration = "configuration_error"
	OutcomeInfeasible    = "infeasible"
	OutcomeTimeout       = "timeout"
	OutcomeSolver        = "solver_error"
)

// Collector 优化指标集合
// 说明：nil Collector的所有方法都是空操作
type Collector struct {
	gatherer prometheus.Gatherer

	Runs          *prometheus.CounterVec
	SolveDuration prometheus.Histogram
	Findings      *prometheus.CounterVec
}

// NewCollector 在reg上注册指标，reg为nil时使用默认注册器
// 说明：重复注册时复用已存在的指标
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "greensplit_runs_total",
		Help: "Number of green split optimisation runs by outcome.",
	}, []string{"outcome"}), "greensplit_runs_total")
	if err != nil {
		return nil, err
	}

	hist, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "greensplit_solve_duration_seconds",
		Help:    "Wall time of the linear program solve.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}), "greensplit_solve_duration_seconds")
	if err != nil {
		return nil, err
	}

	findings, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "greensplit_findings_total",
		Help: "Validation findings by kind and severity.",
	}, []string{"kind", "severity"}), "greensplit_findings_total")
	if err != nil {
		return nil, err
	}

	return &Collector{gatherer: gatherer, Runs: runs, SolveDuration: hist, Findings: findings}, nil
}

// Handler /metrics的HTTP处理器
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// ObserveRun 按错误类别记录一次运行
func (c *Collector) ObserveRun(err error) {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues(Outcome(err)).Inc()
}

// ObserveSolve 记录一次求解耗时
func (c *Collector) ObserveSolve(d time.Duration) {
	if c == nil {
		return
	}
	c.SolveDuration.Observe(d.Seconds())
}

// ObserveFindings 记录校验发现
func (c *Collector) ObserveFindings(findings []entity.Finding) {
	if c == nil {
		return
	}
	for _, f := range findings {
		c.Findings.WithLabelValues(string(f.Kind), string(f.Severity)).Inc()
	}
}

// Outcome 错误对应的结果标签
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, entity.ErrConfiguration):
		return OutcomeConfiguration
	case errors.Is(err, entity.ErrInfeasible):
		return OutcomeInfeasible
	case errors.Is(err, entity.ErrSolverTimeout):
		return OutcomeTimeout
	default:
		return OutcomeSolver
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

package main

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"lg/fitin-go-api/nutrition"
)

const (
	metricsNamespace = "fitin"
	metricsSubsystem = "api"
)

type metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// targetsComputed counts successful calculator runs that were saved, by goal.
	targetsComputed *prometheus.CounterVec
	// calculatorRejections counts calculator errors by kind:
	// invalid_profile, invalid_goal or infeasible.
	calculatorRejections *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "requests_total",
			Help:      "The total number of handled requests",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Request handling duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		targetsComputed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "targets_computed_total",
			Help:      "Nutrition targets computed and saved, by goal",
		}, []string{"goal"}),
		calculatorRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "calculator_rejections_total",
			Help:      "Calculator errors, by kind",
		}, []string{"kind"}),
	}
}

// rejectionKind maps a calculator error onto its metric label.
func rejectionKind(err error) string {
	switch {
	case errors.Is(err, nutrition.ErrInvalidGoal):
		return "invalid_goal"
	case errors.Is(err, nutrition.ErrGoalInfeasible):
		return "infeasible"
	case errors.Is(err, nutrition.ErrInvalidProfile):
		return "invalid_profile"
	default:
		return "other"
	}
}

func (m *metrics) calculatorRejected(err error) {
	if m == nil || err == nil {
		return
	}
	m.calculatorRejections.WithLabelValues(rejectionKind(err)).Inc()
}

func (m *metrics) targetsSaved(goal nutrition.Goal) {
	if m == nil {
		return
	}
	m.targetsComputed.WithLabelValues(goal.String()).Inc()
}

// middleware records request count and latency per matched route. Unmatched
// routes are labelled "unmatched" to keep cardinality bounded.
func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// setupPrometheus creates the registry served on /metrics, with build info,
// runtime and process collectors.
func setupPrometheus() *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promRegistry
}

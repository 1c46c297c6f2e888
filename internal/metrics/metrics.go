package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-cmms/pkg/permissions"
)

// Metrics owns the application's Prometheus registry
type Metrics struct {
	registry *prometheus.Registry

	// AuthorizationDecisions counts gate outcomes by module, action and cause
	AuthorizationDecisions *prometheus.CounterVec

	// BackfillRuns counts permission backfill runs by result (success/failed)
	BackfillRuns *prometheus.CounterVec

	// BackfillUsersUpdated counts users that received missing module entries
	BackfillUsersUpdated prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AuthorizationDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cmms_authorization_decisions_total",
				Help: "Permission gate decisions",
			},
			[]string{"module", "action", "outcome", "cause"},
		),
		BackfillRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cmms_permission_backfill_runs_total",
				Help: "Permission backfill runs",
			},
			[]string{"result"},
		),
		BackfillUsersUpdated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cmms_permission_backfill_users_updated_total",
				Help: "Users that received missing module permissions",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AuthorizationDecisions,
		m.BackfillRuns,
		m.BackfillUsersUpdated,
	)

	return m
}

// ObserveDecision records one gate decision. Unknown module names are folded
// into a single label value to keep cardinality bounded.
func (m *Metrics) ObserveDecision(d permissions.Decision) {
	module := string(d.Module)
	if !d.Module.Valid() {
		module = "unknown"
	}
	action := string(d.Action)
	if !d.Action.Valid() {
		action = "unknown"
	}
	outcome := "deny"
	if d.Allowed {
		outcome = "allow"
	}
	m.AuthorizationDecisions.WithLabelValues(module, action, outcome, string(d.Cause)).Inc()
}

// ObserveBackfill records one backfill run
func (m *Metrics) ObserveBackfill(updated int, err error) {
	if err != nil {
		m.BackfillRuns.WithLabelValues("failed").Inc()
	} else {
		m.BackfillRuns.WithLabelValues("success").Inc()
	}
	m.BackfillUsersUpdated.Add(float64(updated))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MetricsApi exposes /metrics
type MetricsApi struct {
	metrics *Metrics
}

func NewMetricsApi(m *Metrics) *MetricsApi {
	return &MetricsApi{metrics: m}
}

func (a *MetricsApi) Setup(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.metrics.registry, promhttp.HandlerOpts{})))
}

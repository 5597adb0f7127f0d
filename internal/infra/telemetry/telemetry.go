package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// CoreMetrics exposes counters for the access and monitoring pipelines.
type CoreMetrics struct {
	GrantsTotal       *prometheus.CounterVec
	Revocations       prometheus.Counter
	AlertsFired       *prometheus.CounterVec
	SessionsSwept     prometheus.Counter
	CollectorFailures *prometheus.CounterVec
	RiskEscalations   prometheus.Counter
}

// NewCoreMetrics constructs and registers the core counters.
func NewCoreMetrics(namespace string, reg prometheus.Registerer) (*CoreMetrics, error) {
	if namespace == "" {
		namespace = "aegis"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	grants := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "access",
		Name:      "grants_total",
		Help:      "Access grants partitioned by level and outcome.",
	}, []string{"level", "outcome"})

	revocations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "access",
		Name:      "revocations_total",
		Help:      "Total session revocations.",
	})

	alerts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "monitor",
		Name:      "alerts_fired_total",
		Help:      "Alerts fired partitioned by severity and source.",
	}, []string{"severity", "source"})

	swept := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "swept_total",
		Help:      "Expired sessions removed by the sweep task.",
	})

	collectorFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "monitor",
		Name:      "collector_failures_total",
		Help:      "Collector failures partitioned by collector name.",
	}, []string{"collector"})

	escalations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "risk",
		Name:      "escalations_total",
		Help:      "Risk assessments that crossed the escalation threshold.",
	})

	for _, c := range []prometheus.Collector{grants, revocations, alerts, swept, collectorFailures, escalations} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, fmt.Errorf("register collector: %w", err)
			}
		}
	}

	return &CoreMetrics{
		GrantsTotal:       grants,
		Revocations:       revocations,
		AlertsFired:       alerts,
		SessionsSwept:     swept,
		CollectorFailures: collectorFailures,
		RiskEscalations:   escalations,
	}, nil
}

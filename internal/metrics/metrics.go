// Package metrics counts deployment runs and pushes them to a Prometheus
// Pushgateway, since a CI job never lives long enough to be scraped.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

const namespace = "ftpdeploy"

type Metrics struct {
	cfg      Config
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess prometheus.Gauge

	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		cfg:      cfg,
		registry: registry,

		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Deployment runs by sync mode and final status.",
		}, []string{"mode", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of deployment runs.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), //nolint:mnd //1s..~8.5m
		}, []string{"mode"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful deployment.",
		}),

		logger: logger,
	}

	registry.MustRegister(m.runs, m.duration, m.lastSuccess)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(mode, status string, elapsed time.Duration, success bool) {
	m.runs.WithLabelValues(mode, status).Inc()
	m.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
	if success {
		m.lastSuccess.SetToCurrentTime()
	}
}

// Push sends the registry to the configured Pushgateway. Without one it does
// nothing.
func (m *Metrics) Push(ctx context.Context) error {
	if m.cfg.PushgatewayURL == "" {
		return nil
	}

	job := m.cfg.Job
	if job == "" {
		job = namespace
	}

	if err := push.New(m.cfg.PushgatewayURL, job).
		Gatherer(m.registry).
		PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}

	m.logger.Debug("metrics pushed", zap.String("url", m.cfg.PushgatewayURL), zap.String("job", job))
	return nil
}

// Package metrics records the pipeline counters through OpenTelemetry and
// exposes them for Prometheus scraping.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
)

const meterName = "github.com/pmarkun/editaisparticipativos"

// Metrics is safe to use as a nil pointer; every method becomes a no-op.
type Metrics struct {
	ballotsReceived     metric.Int64Counter
	ballotsRejected     metric.Int64Counter
	confirmations       metric.Int64Counter
	notificationsFailed metric.Int64Counter
	callsByPhase        metric.Int64Gauge
}

func New(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.ballotsReceived, err = meter.Int64Counter("ballots_received",
		metric.WithDescription("Ballots accepted for confirmation")); err != nil {
		return nil, fmt.Errorf("failed to create ballots_received metric: %w", err)
	}

	if m.ballotsRejected, err = meter.Int64Counter("ballots_rejected",
		metric.WithDescription("Ballots refused at intake, by reason")); err != nil {
		return nil, fmt.Errorf("failed to create ballots_rejected metric: %w", err)
	}

	if m.confirmations, err = meter.Int64Counter("confirmations",
		metric.WithDescription("Confirmation link clicks, by outcome")); err != nil {
		return nil, fmt.Errorf("failed to create confirmations metric: %w", err)
	}

	if m.notificationsFailed, err = meter.Int64Counter("notifications_failed",
		metric.WithDescription("Confirmation messages that could not be sent")); err != nil {
		return nil, fmt.Errorf("failed to create notifications_failed metric: %w", err)
	}

	if m.callsByPhase, err = meter.Int64Gauge("calls_by_phase",
		metric.WithDescription("Calls currently in each phase")); err != nil {
		return nil, fmt.Errorf("failed to create calls_by_phase metric: %w", err)
	}

	return &m, nil
}

// Noop returns metrics backed by a meter that records nothing.
func Noop() *Metrics {
	m, _ := New(noop.NewMeterProvider().Meter(meterName))
	return m
}

// Exporter bundles the metrics with the HTTP handler that serves them.
type Exporter struct {
	Metrics  *Metrics
	Handler  http.Handler
	provider *sdkmetric.MeterProvider
}

// NewPrometheus wires an OpenTelemetry meter provider to a dedicated
// Prometheus registry.
func NewPrometheus() (*Exporter, error) {
	const op = "metrics.NewPrometheus"

	registry := prometheus.NewRegistry()

	promExporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create Prometheus exporter: %w", op, err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(promExporter))

	m, err := New(provider.Meter(meterName))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Exporter{
		Metrics:  m,
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		provider: provider,
	}, nil
}

func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}

func (m *Metrics) BallotReceived(ctx context.Context) {
	if m == nil {
		return
	}
	m.ballotsReceived.Add(ctx, 1)
}

func (m *Metrics) BallotRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.ballotsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) Confirmation(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.confirmations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) NotificationFailed(ctx context.Context) {
	if m == nil {
		return
	}
	m.notificationsFailed.Add(ctx, 1)
}

// CallsByPhase records a count for every known phase, zero included.
func (m *Metrics) CallsByPhase(ctx context.Context, counts map[entity.Phase]int) {
	if m == nil {
		return
	}
	for _, phase := range entity.Phases {
		m.callsByPhase.Record(ctx, int64(counts[phase]),
			metric.WithAttributes(attribute.String("phase", string(phase))))
	}
}

package telemetry

import (
	"fmt"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Global telemetry handles
var (
	Meter = otel.Meter("github.com/yairfalse/lookout")

	// PrometheusRegistry for Prometheus scraping (dual export pattern)
	// The OTEL exporter automatically registers itself with this registry
	PrometheusRegistry *promclient.Registry

	RefreshesTotal      metric.Int64Counter
	RefreshErrors       metric.Int64Counter
	RefreshDuration     metric.Float64Histogram
	InstancesReconciled metric.Int64Counter
	MetricQueriesTotal  metric.Int64Counter
	MetricQueryErrors   metric.Int64Counter
)

// Instruments are usable before InitMetrics: the default meter provider
// hands out no-op instruments, so library code never nil-checks.
func init() {
	_ = initInstruments()
}

// InitMetrics wires the OTEL meter provider to a Prometheus registry and
// creates the service instruments.
func InitMetrics() error {
	PrometheusRegistry = promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(PrometheusRegistry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	Meter = otel.Meter("github.com/yairfalse/lookout")

	return initInstruments()
}

func initInstruments() error {
	var err error

	RefreshesTotal, err = Meter.Int64Counter("lookout_refreshes_total",
		metric.WithDescription("Inventory refresh operations started"))
	if err != nil {
		return err
	}

	RefreshErrors, err = Meter.Int64Counter("lookout_refresh_errors_total",
		metric.WithDescription("Inventory refresh operations that failed"))
	if err != nil {
		return err
	}

	RefreshDuration, err = Meter.Float64Histogram("lookout_refresh_duration_seconds",
		metric.WithDescription("Inventory refresh duration"))
	if err != nil {
		return err
	}

	InstancesReconciled, err = Meter.Int64Counter("lookout_instances_reconciled_total",
		metric.WithDescription("Instance records created, updated, or deleted by reconciliation"))
	if err != nil {
		return err
	}

	MetricQueriesTotal, err = Meter.Int64Counter("lookout_metric_queries_total",
		metric.WithDescription("Watched-metric retrieval calls"))
	if err != nil {
		return err
	}

	MetricQueryErrors, err = Meter.Int64Counter("lookout_metric_query_errors_total",
		metric.WithDescription("Watched-metric retrieval calls that failed"))
	return err
}

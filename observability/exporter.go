package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

const (
	avlRotationCount = "avl.rotation.count"
	avlRotationKind  = "avl.rotation.kind"

	AVLRotationDescription = "The number of rebalancing rotations by kind (left, right, left-right, right-left)."
)

// AVLViews reshapes the tree stats for export. The rotation counter keeps
// only its kind attribute so every tree reports at most four series.
func AVLViews() []metric.View {
	return []metric.View{
		metric.NewView(
			metric.Instrument{Name: avlRotationCount},
			metric.Stream{
				Description: AVLRotationDescription,
				AttributeFilter: func(kv attribute.KeyValue) bool {
					return kv.Key == avlRotationKind
				},
			},
		),
	}
}

func newMeterProvider(reader metric.Reader) *metric.MeterProvider {
	opts := []metric.Option{metric.WithReader(reader)}
	for _, view := range AVLViews() {
		opts = append(opts, metric.WithView(view))
	}
	mp := metric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	return mp
}

// InitConsoleMetrics serves for test/dev environment. The tree stats
// (tree.WithAVLStats) are pushed to the stdout exporter every interval.
// The returned callback flushes and shuts the provider down.
func InitConsoleMetrics(interval, timeout time.Duration, opts ...stdoutmetric.Option) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := newMeterProvider(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	))
	return mp.Shutdown, nil
}

// InitPrometheusMetrics serves for the product environment, the metrics
// are fetched by HTTP from the registerer's handler.
func InitPrometheusMetrics(opts ...prometheus.Option) (func(ctx context.Context) error, error) {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, err
	}
	return newMeterProvider(exporter).Shutdown, nil
}

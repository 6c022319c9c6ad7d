package observability

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/benz9527/xavl/lib/tree"
)

type testMemOut struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (out *testMemOut) Write(p []byte) (int, error) {
	out.lock.Lock()
	defer out.lock.Unlock()
	return out.buf.Write(p)
}

func (out *testMemOut) String() string {
	out.lock.Lock()
	defer out.lock.Unlock()
	return out.buf.String()
}

func TestInitConsoleMetrics(t *testing.T) {
	out := &testMemOut{}
	shutdown, err := InitConsoleMetrics(time.Hour, time.Second, stdoutmetric.WithWriter(out))
	require.NoError(t, err)

	avl := tree.NewOrderedAVLTree[int](tree.WithAVLStats[int]("console"))
	avl.PutAll(3, 1, 2)
	avl.RemoveValue(1)

	// the final collection happens on shutdown
	require.NoError(t, shutdown(context.Background()))
	exported := out.String()
	require.Contains(t, exported, tree.AVLTreeStatsName+"/console")
	require.Contains(t, exported, "avl.put.count")
	require.Contains(t, exported, "avl.remove.count")
	require.Contains(t, exported, "avl.rotation.count")
	require.Contains(t, exported, AVLRotationDescription)
}

func TestAVLViews_RotationKindOnly(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	opts := []sdkmetric.Option{sdkmetric.WithReader(reader)}
	for _, view := range AVLViews() {
		opts = append(opts, sdkmetric.WithView(view))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	defer func() {
		_ = mp.Shutdown(context.Background())
	}()

	counter, err := mp.Meter("views-test").Int64Counter("avl.rotation.count")
	require.NoError(t, err)
	ctx := context.Background()
	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("avl.rotation.kind", "left"),
		attribute.Int("avl.tree.size", 7),
	))
	counter.Add(ctx, 2, metric.WithAttributes(
		attribute.String("avl.rotation.kind", "left"),
		attribute.Int("avl.tree.size", 8),
	))

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)
	m := rm.ScopeMetrics[0].Metrics[0]
	require.Equal(t, AVLRotationDescription, m.Description)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	// both measurements fold into the single kind series
	require.Len(t, sum.DataPoints, 1)
	require.Equal(t, int64(3), sum.DataPoints[0].Value)
	require.Equal(t, 1, sum.DataPoints[0].Attributes.Len())
	kind, ok := sum.DataPoints[0].Attributes.Value("avl.rotation.kind")
	require.True(t, ok)
	require.Equal(t, "left", kind.AsString())
}

func TestInitPrometheusMetrics(t *testing.T) {
	reg := promclient.NewRegistry()
	shutdown, err := InitPrometheusMetrics(prometheus.WithRegisterer(reg))
	require.NoError(t, err)
	defer func() {
		_ = shutdown(context.Background())
	}()

	avl := tree.NewOrderedAVLTree[int](tree.WithAVLStats[int]("prometheus"))
	avl.PutAll(lo.Range(10)...)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := lo.Map(families, func(mf *dto.MetricFamily, _ int) string { return mf.GetName() })
	require.True(t, lo.ContainsBy(names, func(name string) bool {
		return strings.HasPrefix(name, "avl_put_count")
	}), "families: %v", names)
	require.True(t, lo.ContainsBy(names, func(name string) bool {
		return strings.HasPrefix(name, "avl_node_count")
	}), "families: %v", names)

	rotations, ok := lo.Find(families, func(mf *dto.MetricFamily) bool {
		return strings.HasPrefix(mf.GetName(), "avl_rotation_count")
	})
	require.True(t, ok, "families: %v", names)
	require.Equal(t, AVLRotationDescription, rotations.GetHelp())
	require.NotEmpty(t, rotations.GetMetric())
	for _, m := range rotations.GetMetric() {
		kinds := lo.FilterMap(m.GetLabel(), func(lp *dto.LabelPair, _ int) (string, bool) {
			return lp.GetValue(), lp.GetName() == "avl_rotation_kind"
		})
		require.Equal(t, []string{"left"}, kinds)
	}
}

func TestInitAppStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	otel.SetMeterProvider(mp)

	InitAppStats(ctx, "test", mp.Shutdown)
	// the second call is ignored
	InitAppStats(ctx, "ignored", nil)

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(ctx, &rm))
	scopes := lo.Map(rm.ScopeMetrics, func(sm metricdata.ScopeMetrics, _ int) string { return sm.Scope.Name })
	require.Contains(t, scopes, AppStatsName+"/test")
	require.NotContains(t, scopes, AppStatsName+"/ignored")

	var goroutines int64
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != AppStatsName+"/test" {
			continue
		}
		for _, m := range sm.Metrics {
			if m.Name != "app.core.goroutines" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			require.Len(t, sum.DataPoints, 1)
			goroutines = sum.DataPoints[0].Value
		}
	}
	require.Positive(t, goroutines)
}

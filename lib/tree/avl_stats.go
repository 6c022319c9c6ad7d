package tree

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	AVLTreeStatsName = "xavl/avl"
)

type avlStats struct {
	nodeCount     metric.Int64UpDownCounter
	cursorCount   metric.Int64UpDownCounter
	putCount      metric.Int64Counter
	removeCount   metric.Int64Counter
	rotationCount metric.Int64Counter
	rotationAttrs [4]metric.AddOption
}

func (stats *avlStats) RecordNodeCount(delta int64) {
	if stats == nil {
		return
	}
	stats.nodeCount.Add(context.Background(), delta)
}

func (stats *avlStats) RecordCursorCount(delta int64) {
	if stats == nil {
		return
	}
	stats.cursorCount.Add(context.Background(), delta)
}

func (stats *avlStats) IncreasePutCount() {
	if stats == nil {
		return
	}
	stats.putCount.Add(context.Background(), 1)
	stats.nodeCount.Add(context.Background(), 1)
}

func (stats *avlStats) IncreaseRemoveCount() {
	if stats == nil {
		return
	}
	stats.removeCount.Add(context.Background(), 1)
	stats.nodeCount.Add(context.Background(), -1)
}

func (stats *avlStats) IncreaseRotationCount(kind AVLRotation) {
	if stats == nil || int(kind) >= len(stats.rotationAttrs) {
		return
	}
	stats.rotationCount.Add(context.Background(), 1, stats.rotationAttrs[kind])
}

func newAVLStats(name string) *avlStats {
	if name == "" {
		name = "default"
	}
	meter := otel.Meter(fmt.Sprintf("%s/%s", AVLTreeStatsName, name))
	stats := &avlStats{
		nodeCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"avl.node.count",
			metric.WithDescription("The number of values stored in the avl tree."),
		)),
		cursorCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"avl.cursor.count",
			metric.WithDescription("The number of registered cursors, the default cursor included."),
		)),
		putCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"avl.put.count",
			metric.WithDescription("The number of values put into the avl tree."),
		)),
		removeCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"avl.remove.count",
			metric.WithDescription("The number of values removed from the avl tree."),
		)),
		rotationCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"avl.rotation.count",
			metric.WithDescription("The number of rebalancing rotations."),
		)),
	}
	for _, kind := range []AVLRotation{RotateLeft, RotateRight, RotateLeftRight, RotateRightLeft} {
		stats.rotationAttrs[kind] = metric.WithAttributeSet(attribute.NewSet(
			attribute.String("avl.rotation.kind", kind.String()),
		))
	}
	return stats
}
